package models

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile holds the public profile fields and the denormalized counters.
// The counters are maintained incrementally by the connection workflow and
// the location handlers; they are a cache of values derivable from the
// connections and locations collections.
type Profile struct {
	Avatar         string    `json:"avatar" bson:"avatar"`
	Bio            string    `json:"bio,omitempty" bson:"bio,omitempty"`
	Location       string    `json:"location,omitempty" bson:"location,omitempty"`
	Interests      string    `json:"interests,omitempty" bson:"interests,omitempty"` // comma-joined free text
	JoinedDate     time.Time `json:"joinedDate" bson:"joinedDate"`
	LocationsCount int       `json:"locationsCount" bson:"locationsCount"`
	FollowersCount int       `json:"followersCount" bson:"followersCount"`
	FollowingCount int       `json:"followingCount" bson:"followingCount"`
}

// User represents a traveler account stored in MongoDB
type User struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"` // unique index
	Password  string             `json:"-" bson:"password"`  // bcrypt hash, never serialized
	Profile   Profile            `json:"profile" bson:"profile"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// InterestTokens splits the comma-joined interests field into trimmed,
// non-empty tokens.
func (p Profile) InterestTokens() []string {
	if p.Interests == "" {
		return nil
	}
	parts := strings.Split(p.Interests, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if token := strings.TrimSpace(part); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// LocationPrefix returns the first comma-delimited segment of the free-text
// location, the part suggestion matching keys on (e.g. "Lisbon" from
// "Lisbon, Portugal").
func (p Profile) LocationPrefix() string {
	if p.Location == "" {
		return ""
	}
	return strings.TrimSpace(strings.Split(p.Location, ",")[0])
}

// UserCompact is the trimmed-down author representation embedded in journal
// and comment responses.
type UserCompact struct {
	ID     primitive.ObjectID `json:"id"`
	Name   string             `json:"name"`
	Avatar string             `json:"avatar"`
}

// ToCompact converts a User to its compact representation
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:     u.ID,
		Name:   u.Name,
		Avatar: u.Profile.Avatar,
	}
}

// RegisterRequest defines the request body for account registration
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest defines the request body for signing in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest defines the request body for profile self-service updates
type UpdateProfileRequest struct {
	Name      string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Avatar    string `json:"avatar,omitempty"`
	Bio       string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Location  string `json:"location,omitempty" validate:"omitempty,max=120"`
	Interests string `json:"interests,omitempty" validate:"omitempty,max=500"`
}

// UpdateAccountRequest defines the request body for credential changes
type UpdateAccountRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
