package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment on a journal. Unlike likes, a user may leave
// any number of comments on the same target. Comments are immutable; there is
// no edit or delete.
type Comment struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"userId" bson:"userId"`
	TargetType TargetType         `json:"targetType" bson:"targetType"`
	TargetID   primitive.ObjectID `json:"targetId" bson:"targetId"`
	Content    string             `json:"content" bson:"content"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// CommentWithAuthor is a comment with the author's public info resolved.
type CommentWithAuthor struct {
	Comment
	Author UserCompact `json:"author"`
}

// CreateCommentRequest defines the request body for commenting on a journal
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// CommentResult is the response payload of the comment endpoint.
type CommentResult struct {
	Comment       CommentWithAuthor `json:"comment"`
	CommentsCount int               `json:"commentsCount"`
}
