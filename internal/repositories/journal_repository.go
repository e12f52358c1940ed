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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// JournalRepository defines the interface for journal data operations
type JournalRepository interface {
	CreateJournal(ctx context.Context, journal *models.Journal) error
	GetJournalByID(ctx context.Context, id primitive.ObjectID) (*models.Journal, error)
	ListVisibleJournals(ctx context.Context, userID primitive.ObjectID) ([]models.Journal, error)
}

// MongoJournalRepository implements JournalRepository for MongoDB
type MongoJournalRepository struct {
	collection *mongo.Collection
}

// NewMongoJournalRepository creates a new MongoJournalRepository
func NewMongoJournalRepository(db *mongo.Database) *MongoJournalRepository {
	return &MongoJournalRepository{collection: db.Collection("journals")}
}

// CreateJournal creates a new journal in MongoDB. The caller is responsible
// for having filled SharedWith with the owner's accepted connections; the
// list is frozen here and never updated afterwards.
func (r *MongoJournalRepository) CreateJournal(ctx context.Context, journal *models.Journal) error {
	journal.ID = primitive.NewObjectID()
	if journal.Date.IsZero() {
		journal.Date = time.Now()
	}
	if journal.SharedWith == nil {
		journal.SharedWith = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, journal)
	return err
}

// GetJournalByID retrieves a journal by ID from MongoDB
func (r *MongoJournalRepository) GetJournalByID(ctx context.Context, id primitive.ObjectID) (*models.Journal, error) {
	var journal models.Journal
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&journal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("journal %s: %w", id.Hex(), apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &journal, nil
}

// ListVisibleJournals retrieves the journals the user may see: their own plus
// the ones whose creation-time sharedWith snapshot includes them, newest first
func (r *MongoJournalRepository) ListVisibleJournals(ctx context.Context, userID primitive.ObjectID) ([]models.Journal, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"userId": userID},
		bson.M{"sharedWith": userID},
	}}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var journals []models.Journal
	if err = cursor.All(ctx, &journals); err != nil {
		return nil, err
	}
	return journals, nil
}
