package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coordinates is a latitude/longitude pair for a map pin.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Location represents a map pin owned by a single user.
type Location struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID      primitive.ObjectID `json:"user" bson:"user"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Coordinates Coordinates        `json:"coordinates" bson:"coordinates"`
	VisitDate   string             `json:"visitDate,omitempty" bson:"visitDate,omitempty"`
	Color       string             `json:"color" bson:"color"`
	DatePinned  time.Time          `json:"datePinned" bson:"datePinned"`
}

// CreateLocationRequest defines the request body for pinning a map location
type CreateLocationRequest struct {
	Name        string       `json:"name" validate:"required,min=1,max=120"`
	Description string       `json:"description,omitempty" validate:"omitempty,max=500"`
	Coordinates *Coordinates `json:"coordinates" validate:"required"`
	VisitDate   string       `json:"visitDate,omitempty"`
	Color       string       `json:"color,omitempty" validate:"omitempty,hexcolor"`
}
