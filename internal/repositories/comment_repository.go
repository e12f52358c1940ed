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

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	// AddComment appends the comment and increments the journal's
	// commentsCount in the same transaction, returning the new count.
	AddComment(ctx context.Context, comment *models.Comment) (commentsCount int, err error)
	ListCommentsForJournal(ctx context.Context, journalID primitive.ObjectID) ([]models.Comment, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	client   *mongo.Client
	comments *mongo.Collection
	journals *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(client *mongo.Client, db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{
		client:   client,
		comments: db.Collection("comments"),
		journals: db.Collection("journals"),
	}
}

// AddComment appends a comment inside a transaction
func (r *MongoCommentRepository) AddComment(ctx context.Context, comment *models.Comment) (int, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return 0, err
	}
	defer session.EndSession(ctx)

	comment.ID = primitive.NewObjectID()
	comment.TargetType = models.TargetJournal
	comment.CreatedAt = time.Now()

	var commentsCount int
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.comments.InsertOne(sc, comment); err != nil {
			return nil, err
		}
		var journal models.Journal
		err := r.journals.FindOneAndUpdate(sc,
			bson.M{"_id": comment.TargetID},
			bson.M{"$inc": bson.M{"commentsCount": 1}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&journal)
		if err != nil {
			return nil, err
		}
		commentsCount = journal.CommentsCount
		return nil, nil
	})
	if err != nil {
		return 0, err
	}
	return commentsCount, nil
}

// ListCommentsForJournal retrieves a journal's comments, newest first
func (r *MongoCommentRepository) ListCommentsForJournal(ctx context.Context, journalID primitive.ObjectID) ([]models.Comment, error) {
	filter := bson.M{"targetId": journalID, "targetType": models.TargetJournal}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.comments.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
