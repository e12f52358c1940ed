package repositories

import (
	"context"
	"time"

	"github.com/atlasroam/atlas/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	// ToggleLike flips the user's like on a journal: present likes are
	// deleted, absent ones created, with the journal's likesCount adjusted
	// in the same transaction. Returns the resulting state and count.
	ToggleLike(ctx context.Context, userID, journalID primitive.ObjectID) (liked bool, likesCount int, err error)
	HasUserLiked(ctx context.Context, userID, journalID primitive.ObjectID) (bool, error)
}

// MongoLikeRepository implements LikeRepository for MongoDB
type MongoLikeRepository struct {
	client   *mongo.Client
	likes    *mongo.Collection
	journals *mongo.Collection
}

// NewMongoLikeRepository creates a new MongoLikeRepository
func NewMongoLikeRepository(client *mongo.Client, db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{
		client:   client,
		likes:    db.Collection("likes"),
		journals: db.Collection("journals"),
	}
}

// ToggleLike implements the like toggle as a single transaction
func (r *MongoLikeRepository) ToggleLike(ctx context.Context, userID, journalID primitive.ObjectID) (bool, int, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return false, 0, err
	}
	defer session.EndSession(ctx)

	var liked bool
	var likesCount int

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		filter := bson.M{
			"userId":     userID,
			"targetType": models.TargetJournal,
			"targetId":   journalID,
		}

		var existing models.Like
		findErr := r.likes.FindOne(sc, filter).Decode(&existing)
		switch findErr {
		case nil:
			if _, err := r.likes.DeleteOne(sc, bson.M{"_id": existing.ID}); err != nil {
				return nil, err
			}
			liked = false
			count, err := r.adjustCount(sc, journalID, -1)
			if err != nil {
				return nil, err
			}
			likesCount = count
		case mongo.ErrNoDocuments:
			like := models.Like{
				ID:         primitive.NewObjectID(),
				UserID:     userID,
				TargetType: models.TargetJournal,
				TargetID:   journalID,
				CreatedAt:  time.Now(),
			}
			if _, err := r.likes.InsertOne(sc, like); err != nil {
				return nil, err
			}
			liked = true
			count, err := r.adjustCount(sc, journalID, 1)
			if err != nil {
				return nil, err
			}
			likesCount = count
		default:
			return nil, findErr
		}
		return nil, nil
	})
	if err != nil {
		return false, 0, err
	}
	return liked, likesCount, nil
}

func (r *MongoLikeRepository) adjustCount(sc mongo.SessionContext, journalID primitive.ObjectID, delta int) (int, error) {
	var journal models.Journal
	err := r.journals.FindOneAndUpdate(sc,
		bson.M{"_id": journalID},
		bson.M{"$inc": bson.M{"likesCount": delta}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&journal)
	if err != nil {
		return 0, err
	}
	return journal.LikesCount, nil
}

// HasUserLiked reports whether the user currently likes the journal
func (r *MongoLikeRepository) HasUserLiked(ctx context.Context, userID, journalID primitive.ObjectID) (bool, error) {
	count, err := r.likes.CountDocuments(ctx, bson.M{
		"userId":     userID,
		"targetType": models.TargetJournal,
		"targetId":   journalID,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
