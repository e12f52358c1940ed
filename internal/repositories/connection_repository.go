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

// ConnectionRepository defines the interface for connection data operations.
// AcceptConnection and RemoveConnection are multi-document operations
// (connection status, both user counters, friend-event audit log) and must be
// atomic: a concurrent accept and remove on the same connection may not leave
// counters and status disagreeing.
type ConnectionRepository interface {
	CreateConnection(ctx context.Context, conn *models.Connection) error
	GetConnectionByID(ctx context.Context, id primitive.ObjectID) (*models.Connection, error)
	GetConnectionByPair(ctx context.Context, a, b primitive.ObjectID) (*models.Connection, error)
	ListConnectionsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error)
	ListAcceptedByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error)
	ListPendingForRecipient(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error)
	AcceptConnection(ctx context.Context, conn *models.Connection) error
	RemoveConnection(ctx context.Context, conn *models.Connection) error
	DeleteConnection(ctx context.Context, id primitive.ObjectID) error
	CountAccepted(ctx context.Context, userID primitive.ObjectID) (followers, following int64, err error)
}

// MongoConnectionRepository implements ConnectionRepository for MongoDB
type MongoConnectionRepository struct {
	client      *mongo.Client
	connections *mongo.Collection
	users       *mongo.Collection
	events      *mongo.Collection
}

// NewMongoConnectionRepository creates a new MongoConnectionRepository
func NewMongoConnectionRepository(client *mongo.Client, db *mongo.Database) *MongoConnectionRepository {
	return &MongoConnectionRepository{
		client:      client,
		connections: db.Collection("connections"),
		users:       db.Collection("users"),
		events:      db.Collection("friend_requests"),
	}
}

// CreateConnection inserts a new pending connection. The unique index on
// pairKey makes the loser of a concurrent duplicate insert fail with
// ErrConflict instead of silently creating a second record.
func (r *MongoConnectionRepository) CreateConnection(ctx context.Context, conn *models.Connection) error {
	conn.ID = primitive.NewObjectID()
	conn.Status = models.ConnectionPending
	conn.PairKey = models.PairKey(conn.Requester, conn.Recipient)
	conn.CreatedAt = time.Now()
	_, err := r.connections.InsertOne(ctx, conn)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("connection for pair %s: %w", conn.PairKey, apperrors.ErrConflict)
	}
	return err
}

// GetConnectionByID retrieves a connection by ID
func (r *MongoConnectionRepository) GetConnectionByID(ctx context.Context, id primitive.ObjectID) (*models.Connection, error) {
	var conn models.Connection
	err := r.connections.FindOne(ctx, bson.M{"_id": id}).Decode(&conn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("connection %s: %w", id.Hex(), apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &conn, nil
}

// GetConnectionByPair retrieves the connection between two users regardless
// of which side requested it
func (r *MongoConnectionRepository) GetConnectionByPair(ctx context.Context, a, b primitive.ObjectID) (*models.Connection, error) {
	var conn models.Connection
	err := r.connections.FindOne(ctx, bson.M{"pairKey": models.PairKey(a, b)}).Decode(&conn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("connection between %s and %s: %w", a.Hex(), b.Hex(), apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &conn, nil
}

// ListConnectionsByUser retrieves every connection the user is a party to,
// in any status
func (r *MongoConnectionRepository) ListConnectionsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error) {
	return r.list(ctx, bson.M{"$or": bson.A{
		bson.M{"requester": userID},
		bson.M{"recipient": userID},
	}})
}

// ListAcceptedByUser retrieves the user's accepted connections
func (r *MongoConnectionRepository) ListAcceptedByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error) {
	return r.list(ctx, bson.M{
		"status": models.ConnectionAccepted,
		"$or": bson.A{
			bson.M{"requester": userID},
			bson.M{"recipient": userID},
		},
	})
}

// ListPendingForRecipient retrieves pending requests addressed to the user
func (r *MongoConnectionRepository) ListPendingForRecipient(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error) {
	return r.list(ctx, bson.M{"recipient": userID, "status": models.ConnectionPending})
}

func (r *MongoConnectionRepository) list(ctx context.Context, filter bson.M) ([]models.Connection, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.connections.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var conns []models.Connection
	if err = cursor.All(ctx, &conns); err != nil {
		return nil, err
	}
	return conns, nil
}

// AcceptConnection moves a pending connection to accepted, increments the
// requester's followingCount and the recipient's followersCount, and appends
// the friend-event audit record, all in one transaction.
func (r *MongoConnectionRepository) AcceptConnection(ctx context.Context, conn *models.Connection) error {
	return r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.connections.UpdateOne(sc,
			bson.M{"_id": conn.ID, "status": models.ConnectionPending},
			bson.M{"$set": bson.M{"status": models.ConnectionAccepted}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			// Already accepted or deleted by a concurrent request.
			return fmt.Errorf("pending connection %s: %w", conn.ID.Hex(), apperrors.ErrNotFound)
		}

		if _, err := r.users.UpdateOne(sc, bson.M{"_id": conn.Requester},
			bson.M{"$inc": bson.M{"profile.followingCount": 1}}); err != nil {
			return err
		}
		if _, err := r.users.UpdateOne(sc, bson.M{"_id": conn.Recipient},
			bson.M{"$inc": bson.M{"profile.followersCount": 1}}); err != nil {
			return err
		}

		event := models.FriendEvent{
			ID:        primitive.NewObjectID(),
			Requester: conn.Requester,
			Recipient: conn.Recipient,
			Status:    models.ConnectionAccepted,
			Type:      "follow",
			CreatedAt: time.Now(),
		}
		_, err = r.events.InsertOne(sc, event)
		return err
	})
}

// RemoveConnection deletes the connection and, when it was accepted, reverses
// the two counters (floored at zero) and purges the pair's audit records, all
// in one transaction.
func (r *MongoConnectionRepository) RemoveConnection(ctx context.Context, conn *models.Connection) error {
	return r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.connections.DeleteOne(sc, bson.M{"_id": conn.ID})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return fmt.Errorf("connection %s: %w", conn.ID.Hex(), apperrors.ErrNotFound)
		}

		if conn.Status != models.ConnectionAccepted {
			return nil
		}

		// Decrements only apply while the counter is above zero.
		if _, err := r.users.UpdateOne(sc,
			bson.M{"_id": conn.Requester, "profile.followingCount": bson.M{"$gt": 0}},
			bson.M{"$inc": bson.M{"profile.followingCount": -1}}); err != nil {
			return err
		}
		if _, err := r.users.UpdateOne(sc,
			bson.M{"_id": conn.Recipient, "profile.followersCount": bson.M{"$gt": 0}},
			bson.M{"$inc": bson.M{"profile.followersCount": -1}}); err != nil {
			return err
		}

		_, err = r.events.DeleteMany(sc, bson.M{
			"requester": conn.Requester,
			"recipient": conn.Recipient,
		})
		return err
	})
}

// DeleteConnection removes a connection outright, with no counter side
// effects. Used for rejection, where the pending record is simply discarded.
func (r *MongoConnectionRepository) DeleteConnection(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.connections.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("connection %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

// CountAccepted recomputes the user's counters from the connection store:
// followers are accepted connections where the user is the recipient,
// following where the user is the requester.
func (r *MongoConnectionRepository) CountAccepted(ctx context.Context, userID primitive.ObjectID) (int64, int64, error) {
	followers, err := r.connections.CountDocuments(ctx, bson.M{
		"recipient": userID, "status": models.ConnectionAccepted,
	})
	if err != nil {
		return 0, 0, err
	}
	following, err := r.connections.CountDocuments(ctx, bson.M{
		"requester": userID, "status": models.ConnectionAccepted,
	})
	if err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}

func (r *MongoConnectionRepository) inTransaction(ctx context.Context, fn func(mongo.SessionContext) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
