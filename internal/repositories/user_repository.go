package repositories

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/atlasroam/atlas/backend/internal/apperrors"
	"github.com/atlasroam/atlas/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	ListUsers(ctx context.Context, exclude primitive.ObjectID, limit int64) ([]models.User, error)
	SearchUsers(ctx context.Context, exclude primitive.ObjectID, query, searchType string) ([]models.User, error)
	FindSuggestionCandidates(ctx context.Context, excludeIDs []primitive.ObjectID, interestTokens []string, locationPrefix string, limit int64) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	AdjustLocationsCount(ctx context.Context, id primitive.ObjectID, delta int) error
	SetSocialCounters(ctx context.Context, id primitive.ObjectID, followers, following int) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser creates a new user in MongoDB
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	if user.Profile.JoinedDate.IsZero() {
		user.Profile.JoinedDate = user.CreatedAt
	}
	if user.Profile.Avatar == "" {
		user.Profile.Avatar = "/placeholder.svg"
	}
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("email %q taken: %w", user.Email, apperrors.ErrConflict)
	}
	return err
}

// GetUserByID retrieves a user by ID from MongoDB
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user %s: %w", id.Hex(), apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email from MongoDB
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs retrieves the users whose ids appear in ids, in no particular order
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListUsers retrieves up to limit users, excluding the given user
func (r *MongoUserRepository) ListUsers(ctx context.Context, exclude primitive.ObjectID, limit int64) ([]models.User, error) {
	findOptions := options.Find().SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$ne": exclude}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SearchUsers searches users by name, email, location, or interests.
// searchType narrows the match to "location" or "interest"; anything else
// searches across all fields.
func (r *MongoUserRepository) SearchUsers(ctx context.Context, exclude primitive.ObjectID, query, searchType string) ([]models.User, error) {
	filter := bson.M{"_id": bson.M{"$ne": exclude}}
	if query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
		switch searchType {
		case "location":
			filter["profile.location"] = pattern
		case "interest":
			filter["profile.interests"] = pattern
		default:
			filter["$or"] = bson.A{
				bson.M{"name": pattern},
				bson.M{"email": pattern},
				bson.M{"profile.location": pattern},
				bson.M{"profile.interests": pattern},
			}
		}
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindSuggestionCandidates retrieves users outside excludeIDs that share an
// interest token or match the location prefix. With no interests the filter
// falls back to location only; with neither, only the exclusion applies.
func (r *MongoUserRepository) FindSuggestionCandidates(ctx context.Context, excludeIDs []primitive.ObjectID, interestTokens []string, locationPrefix string, limit int64) ([]models.User, error) {
	filter := bson.M{"_id": bson.M{"$nin": excludeIDs}}

	if len(interestTokens) > 0 {
		or := bson.A{}
		for _, token := range interestTokens {
			// Match the token as a whole comma-delimited entry, not as an
			// arbitrary substring of a longer interest.
			or = append(or, bson.M{"profile.interests": primitive.Regex{
				Pattern: `(^|,\s*)` + regexp.QuoteMeta(token) + `(\s*,|$)`,
				Options: "i",
			}})
		}
		if locationPrefix != "" {
			or = append(or, bson.M{"profile.location": primitive.Regex{
				Pattern: regexp.QuoteMeta(locationPrefix),
				Options: "i",
			}})
		}
		filter["$or"] = or
	} else if locationPrefix != "" {
		filter["profile.location"] = primitive.Regex{
			Pattern: regexp.QuoteMeta(locationPrefix),
			Options: "i",
		}
	}

	findOptions := options.Find().SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser replaces the mutable profile fields of an existing user
func (r *MongoUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	update := bson.M{"$set": bson.M{
		"name":    user.Name,
		"profile": user.Profile,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", user.ID.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

// UpdatePassword replaces the stored password hash
func (r *MongoUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"password": passwordHash}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

// AdjustLocationsCount shifts the locationsCount counter by delta. Negative
// deltas only apply while the counter is above zero, so it never goes negative.
func (r *MongoUserRepository) AdjustLocationsCount(ctx context.Context, id primitive.ObjectID, delta int) error {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["profile.locationsCount"] = bson.M{"$gt": 0}
	}
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"profile.locationsCount": delta}})
	return err
}

// SetSocialCounters overwrites both social counters with recomputed values
func (r *MongoUserRepository) SetSocialCounters(ctx context.Context, id primitive.ObjectID, followers, following int) error {
	update := bson.M{"$set": bson.M{
		"profile.followersCount": followers,
		"profile.followingCount": following,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return nil
}
