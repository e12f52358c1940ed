package repositories

import (
	"context"
	"fmt"

	"github.com/atlasroam/atlas/backend/internal/apperrors"
	"github.com/atlasroam/atlas/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// TipRepository defines the interface for travel-tip data operations
type TipRepository interface {
	GetRandomTip(ctx context.Context) (*models.Tip, error)
}

// MongoTipRepository implements TipRepository for MongoDB
type MongoTipRepository struct {
	collection *mongo.Collection
}

// NewMongoTipRepository creates a new MongoTipRepository
func NewMongoTipRepository(db *mongo.Database) *MongoTipRepository {
	return &MongoTipRepository{collection: db.Collection("tips")}
}

// GetRandomTip samples one tip at random
func (r *MongoTipRepository) GetRandomTip(ctx context.Context) (*models.Tip, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$sample", Value: bson.D{{Key: "size", Value: 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tips []models.Tip
	if err = cursor.All(ctx, &tips); err != nil {
		return nil, err
	}
	if len(tips) == 0 {
		return nil, fmt.Errorf("no tips available: %w", apperrors.ErrNotFound)
	}
	return &tips[0], nil
}
