package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConnectionStatus is the lifecycle state of a connection between two users.
// Rejected connections are deleted outright, so only pending and accepted
// ever appear in storage.
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

// Connection is the live relationship record between two users. It is
// directional only at creation time (who requested); once accepted the
// relationship is symmetric for all read purposes.
type Connection struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Requester primitive.ObjectID `json:"requester" bson:"requester"`
	Recipient primitive.ObjectID `json:"recipient" bson:"recipient"`
	Status    ConnectionStatus   `json:"status" bson:"status"`
	// PairKey is the lexicographically ordered hex pair "min:max". A unique
	// index on it guarantees at most one record per unordered pair no matter
	// which side requested, including under concurrent requests.
	PairKey   string    `json:"-" bson:"pairKey"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// PairKey computes the canonical unordered-pair key for two user ids.
func PairKey(a, b primitive.ObjectID) string {
	ah, bh := a.Hex(), b.Hex()
	if ah < bh {
		return ah + ":" + bh
	}
	return bh + ":" + ah
}

// OtherParty returns the connection participant that is not userID.
func (c *Connection) OtherParty(userID primitive.ObjectID) primitive.ObjectID {
	if c.Requester == userID {
		return c.Recipient
	}
	return c.Requester
}

// IsParty reports whether userID is the requester or the recipient.
func (c *Connection) IsParty(userID primitive.ObjectID) bool {
	return c.Requester == userID || c.Recipient == userID
}

// FriendEvent is an append-only audit record written when a connection is
// accepted. It is an event log keyed by the connection pair, not a second
// source of live relationship state; matching events are bulk-deleted when
// the connection is removed.
type FriendEvent struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Requester primitive.ObjectID `json:"requester" bson:"requester"`
	Recipient primitive.ObjectID `json:"recipient" bson:"recipient"`
	Status    ConnectionStatus   `json:"status" bson:"status"`
	Type      string             `json:"type" bson:"type"` // "follow"
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// CreateConnectionRequest defines the request body for sending a connection request
type CreateConnectionRequest struct {
	RecipientID string `json:"recipientId" validate:"required,len=24,hexadecimal"`
}

// RespondConnectionRequest defines the request body for accepting/rejecting a request
type RespondConnectionRequest struct {
	RequestID string `json:"requestId" validate:"required,len=24,hexadecimal"`
	Action    string `json:"action" validate:"required,oneof=accepted rejected"`
}

// RoammateUser is a user annotated with the viewer's relationship to them,
// as returned by the connection listing and search endpoints.
type RoammateUser struct {
	User
	// ConnectionStatus is "accepted", "pending" (viewer requested),
	// "incoming" (viewer is the recipient), or empty for no relationship.
	ConnectionStatus string `json:"connectionStatus,omitempty"`
	// ConnectionID is set for accepted entries so the client can remove the
	// connection directly.
	ConnectionID string `json:"connectionId,omitempty"`
}

// PendingConnection is a pending request with the requester's public profile
// resolved, as shown in the recipient's inbox.
type PendingConnection struct {
	ID        primitive.ObjectID `json:"id"`
	Requester User               `json:"requester"`
	Status    ConnectionStatus   `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

// SuggestedUser is a non-connected user scored for discovery.
type SuggestedUser struct {
	User
	RelevanceScore  int  `json:"relevanceScore"`
	CommonInterests int  `json:"commonInterests"`
	LocationMatch   bool `json:"locationMatch"`
}
