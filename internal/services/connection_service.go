package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/atlasroam/atlas/backend/internal/apperrors"
	"github.com/atlasroam/atlas/backend/internal/models"
	"github.com/atlasroam/atlas/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// listUsersLimit caps the roammate browse listing.
const listUsersLimit = 20

// ConnectionService is the workflow engine for the connection state machine:
// request, accept/reject, removal, and the counter and audit side effects of
// each transition.
type ConnectionService struct {
	connectionRepository repositories.ConnectionRepository
	userRepository       repositories.UserRepository
}

// NewConnectionService creates a new ConnectionService
func NewConnectionService(connRepo repositories.ConnectionRepository, userRepo repositories.UserRepository) *ConnectionService {
	return &ConnectionService{
		connectionRepository: connRepo,
		userRepository:       userRepo,
	}
}

// Request creates a pending connection from requester to recipient. It fails
// with a ConnectionExistsError when any record already exists for the pair,
// telling the requester the standing status.
func (s *ConnectionService) Request(ctx context.Context, requesterID, recipientID primitive.ObjectID) error {
	if requesterID == recipientID {
		return fmt.Errorf("cannot send a connection request to yourself: %w", apperrors.ErrValidation)
	}

	if _, err := s.userRepository.GetUserByID(ctx, recipientID); err != nil {
		return err
	}

	if existing, err := s.connectionRepository.GetConnectionByPair(ctx, requesterID, recipientID); err == nil {
		return &apperrors.ConnectionExistsError{Status: string(existing.Status)}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	conn := &models.Connection{
		Requester: requesterID,
		Recipient: recipientID,
	}
	err := s.connectionRepository.CreateConnection(ctx, conn)
	if errors.Is(err, apperrors.ErrConflict) {
		// Lost a race with a concurrent request for the same pair. Report the
		// record that won.
		if existing, lookupErr := s.connectionRepository.GetConnectionByPair(ctx, requesterID, recipientID); lookupErr == nil {
			return &apperrors.ConnectionExistsError{Status: string(existing.Status)}
		}
		return &apperrors.ConnectionExistsError{Status: string(models.ConnectionPending)}
	}
	return err
}

// Respond accepts or rejects a pending request. Only the recipient may
// respond. Acceptance flips the status and applies the counter increments and
// the audit write atomically; rejection deletes the record outright.
func (s *ConnectionService) Respond(ctx context.Context, requestID primitive.ObjectID, action string, actingUserID primitive.ObjectID) error {
	conn, err := s.connectionRepository.GetConnectionByID(ctx, requestID)
	if err != nil {
		return err
	}

	if conn.Recipient != actingUserID {
		return fmt.Errorf("only the recipient may respond to a connection request: %w", apperrors.ErrForbidden)
	}

	switch models.ConnectionStatus(action) {
	case models.ConnectionAccepted:
		return s.connectionRepository.AcceptConnection(ctx, conn)
	case models.ConnectionRejected:
		return s.connectionRepository.DeleteConnection(ctx, conn.ID)
	default:
		return fmt.Errorf("invalid action %q: %w", action, apperrors.ErrValidation)
	}
}

// Remove deletes a connection. Either party may remove it; an accepted
// connection additionally reverses both counters (floored at zero) and purges
// the pair's audit records.
func (s *ConnectionService) Remove(ctx context.Context, connectionID, actingUserID primitive.ObjectID) error {
	conn, err := s.connectionRepository.GetConnectionByID(ctx, connectionID)
	if err != nil {
		return err
	}

	if !conn.IsParty(actingUserID) {
		return fmt.Errorf("only a party to the connection may remove it: %w", apperrors.ErrForbidden)
	}

	return s.connectionRepository.RemoveConnection(ctx, conn)
}

// ListConnected returns the users the given user holds an accepted connection
// with, annotated with the connection id so the client can remove it.
func (s *ConnectionService) ListConnected(ctx context.Context, userID primitive.ObjectID) ([]models.RoammateUser, error) {
	conns, err := s.connectionRepository.ListAcceptedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	connByOther := make(map[primitive.ObjectID]*models.Connection, len(conns))
	otherIDs := make([]primitive.ObjectID, 0, len(conns))
	for i := range conns {
		other := conns[i].OtherParty(userID)
		connByOther[other] = &conns[i]
		otherIDs = append(otherIDs, other)
	}

	users, err := s.userRepository.GetUsersByIDs(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	result := make([]models.RoammateUser, 0, len(users))
	for _, user := range users {
		conn := connByOther[user.ID]
		result = append(result, models.RoammateUser{
			User:             user,
			ConnectionStatus: string(models.ConnectionAccepted),
			ConnectionID:     conn.ID.Hex(),
		})
	}
	return result, nil
}

// ListPending returns the pending requests addressed to the user, with each
// requester's public profile resolved.
func (s *ConnectionService) ListPending(ctx context.Context, userID primitive.ObjectID) ([]models.PendingConnection, error) {
	conns, err := s.connectionRepository.ListPendingForRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}

	requesterIDs := make([]primitive.ObjectID, 0, len(conns))
	for _, conn := range conns {
		requesterIDs = append(requesterIDs, conn.Requester)
	}
	users, err := s.userRepository.GetUsersByIDs(ctx, requesterIDs)
	if err != nil {
		return nil, err
	}
	userByID := make(map[primitive.ObjectID]models.User, len(users))
	for _, user := range users {
		userByID[user.ID] = user
	}

	result := make([]models.PendingConnection, 0, len(conns))
	for _, conn := range conns {
		result = append(result, models.PendingConnection{
			ID:        conn.ID,
			Requester: userByID[conn.Requester],
			Status:    conn.Status,
			CreatedAt: conn.CreatedAt,
		})
	}
	return result, nil
}

// ListAll returns a browse listing of other users annotated with the viewer's
// relationship to each.
func (s *ConnectionService) ListAll(ctx context.Context, userID primitive.ObjectID) ([]models.RoammateUser, error) {
	users, err := s.userRepository.ListUsers(ctx, userID, listUsersLimit)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, userID, users)
}

// Search returns users matching the query annotated with the viewer's
// relationship to each. searchType may narrow to "location" or "interest".
func (s *ConnectionService) Search(ctx context.Context, userID primitive.ObjectID, query, searchType string) ([]models.RoammateUser, error) {
	users, err := s.userRepository.SearchUsers(ctx, userID, query, searchType)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, userID, users)
}

func (s *ConnectionService) annotate(ctx context.Context, viewerID primitive.ObjectID, users []models.User) ([]models.RoammateUser, error) {
	conns, err := s.connectionRepository.ListConnectionsByUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	connByOther := make(map[primitive.ObjectID]*models.Connection, len(conns))
	for i := range conns {
		connByOther[conns[i].OtherParty(viewerID)] = &conns[i]
	}

	result := make([]models.RoammateUser, 0, len(users))
	for _, user := range users {
		entry := models.RoammateUser{User: user}
		if conn, ok := connByOther[user.ID]; ok {
			switch conn.Status {
			case models.ConnectionAccepted:
				entry.ConnectionStatus = "accepted"
				entry.ConnectionID = conn.ID.Hex()
			case models.ConnectionPending:
				if conn.Requester == viewerID {
					entry.ConnectionStatus = "pending"
				} else {
					entry.ConnectionStatus = "incoming"
				}
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

// RecountCounters recomputes both social counters from the connection store
// and overwrites the denormalized values. The incremental counters are an
// optimization; this is the reconciliation path when they drift.
func (s *ConnectionService) RecountCounters(ctx context.Context, userID primitive.ObjectID) error {
	followers, following, err := s.connectionRepository.CountAccepted(ctx, userID)
	if err != nil {
		return err
	}
	return s.userRepository.SetSocialCounters(ctx, userID, int(followers), int(following))
}
