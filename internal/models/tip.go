package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Tip is a daily travel tip served at random on the dashboard.
type Tip struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title    string             `json:"title" bson:"title"`
	Content  string             `json:"content" bson:"content"`
	Category string             `json:"category" bson:"category"`
	Tags     []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	Likes    int                `json:"likes" bson:"likes"`
}
