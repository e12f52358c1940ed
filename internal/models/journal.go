package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JournalAuthor is the denormalized author snapshot embedded in a journal.
type JournalAuthor struct {
	Name   string `json:"name" bson:"name"`
	Avatar string `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

// Journal represents a travel journal entry stored in MongoDB.
//
// SharedWith is computed once at creation time from the owner's
// currently-accepted connections. It is a snapshot, not a live view:
// connections formed after creation do not grant visibility to this entry.
type Journal struct {
	ID            primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Title         string               `json:"title" bson:"title"`
	Content       string               `json:"content" bson:"content"`
	Excerpt       string               `json:"excerpt,omitempty" bson:"excerpt,omitempty"`
	Location      string               `json:"location,omitempty" bson:"location,omitempty"`
	Tags          []string             `json:"tags,omitempty" bson:"tags,omitempty"`
	Author        JournalAuthor        `json:"author" bson:"author"`
	UserID        primitive.ObjectID   `json:"userId" bson:"userId"` // immutable owner reference
	SharedWith    []primitive.ObjectID `json:"sharedWith" bson:"sharedWith"`
	LikesCount    int                  `json:"likesCount" bson:"likesCount"`
	CommentsCount int                  `json:"commentsCount" bson:"commentsCount"`
	Date          time.Time            `json:"date" bson:"date"`
}

// CreateJournalRequest defines the request body for creating a new journal
type CreateJournalRequest struct {
	Title    string   `json:"title" validate:"required,min=1,max=140"`
	Content  string   `json:"content" validate:"required,min=1"`
	Excerpt  string   `json:"excerpt,omitempty" validate:"omitempty,max=280"`
	Location string   `json:"location,omitempty" validate:"omitempty,max=120"`
	Tags     []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=40"`
}
