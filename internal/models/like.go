package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetType identifies the kind of entity a like or comment points at.
type TargetType string

const (
	TargetJournal TargetType = "Journal"
	TargetTip     TargetType = "Tip"
)

// Like represents a like on a journal (or, schema-wise, a tip). At most one
// like exists per (userId, targetType, targetId); the like endpoint toggles it.
type Like struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"userId" bson:"userId"`
	TargetType TargetType         `json:"targetType" bson:"targetType"`
	TargetID   primitive.ObjectID `json:"targetId" bson:"targetId"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// LikeResult is the response payload of the like toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}
