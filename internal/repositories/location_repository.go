package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/atlasroam/atlas/backend/internal/apperrors"
	"github.com/atlasroam/atlas/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LocationRepository defines the interface for map-pin data operations.
// All mutations are scoped to the owning user; a write that matches nothing
// returns ErrNotFound whether the pin is missing or owned by someone else.
type LocationRepository interface {
	CreateLocation(ctx context.Context, location *models.Location) error
	ListLocationsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Location, error)
	UpdateLocation(ctx context.Context, location *models.Location) error
	DeleteLocation(ctx context.Context, id, userID primitive.ObjectID) error
}

// MongoLocationRepository implements LocationRepository for MongoDB
type MongoLocationRepository struct {
	collection *mongo.Collection
}

// NewMongoLocationRepository creates a new MongoLocationRepository
func NewMongoLocationRepository(db *mongo.Database) *MongoLocationRepository {
	return &MongoLocationRepository{collection: db.Collection("locations")}
}

// CreateLocation pins a new location
func (r *MongoLocationRepository) CreateLocation(ctx context.Context, location *models.Location) error {
	location.ID = primitive.NewObjectID()
	location.DatePinned = time.Now()
	if location.Color == "" {
		location.Color = "#2A9D8F"
	}
	_, err := r.collection.InsertOne(ctx, location)
	return err
}

// ListLocationsByUser retrieves all pins owned by the user
func (r *MongoLocationRepository) ListLocationsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Location, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var locations []models.Location
	if err = cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// UpdateLocation replaces the mutable fields of a pin owned by the user
func (r *MongoLocationRepository) UpdateLocation(ctx context.Context, location *models.Location) error {
	update := bson.M{"$set": bson.M{
		"name":        location.Name,
		"description": location.Description,
		"coordinates": location.Coordinates,
		"visitDate":   location.VisitDate,
		"color":       location.Color,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": location.ID, "user": location.UserID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("location %s: %w", location.ID.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

// DeleteLocation removes a pin owned by the user
func (r *MongoLocationRepository) DeleteLocation(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("location %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return nil
}
