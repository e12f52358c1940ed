package services

import (
	"context"
	"fmt"

	"github.com/atlasroam/atlas/backend/internal/apperrors"
	"github.com/atlasroam/atlas/backend/internal/models"
	"github.com/atlasroam/atlas/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JournalService owns journal creation and the visibility-filtered reads.
type JournalService struct {
	journalRepository    repositories.JournalRepository
	connectionRepository repositories.ConnectionRepository
	userRepository       repositories.UserRepository
}

// NewJournalService creates a new JournalService
func NewJournalService(
	journalRepo repositories.JournalRepository,
	connRepo repositories.ConnectionRepository,
	userRepo repositories.UserRepository,
) *JournalService {
	return &JournalService{
		journalRepository:    journalRepo,
		connectionRepository: connRepo,
		userRepository:       userRepo,
	}
}

// Create stores a new journal for the owner. The sharedWith list is snapshot
// from the owner's currently-accepted connections at this moment and never
// updated afterwards: connections formed later do not see this entry.
func (s *JournalService) Create(ctx context.Context, ownerID primitive.ObjectID, req models.CreateJournalRequest) (*models.Journal, error) {
	owner, err := s.userRepository.GetUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	conns, err := s.connectionRepository.ListAcceptedByUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sharedWith := make([]primitive.ObjectID, 0, len(conns))
	for i := range conns {
		sharedWith = append(sharedWith, conns[i].OtherParty(ownerID))
	}

	journal := &models.Journal{
		Title:    req.Title,
		Content:  req.Content,
		Excerpt:  req.Excerpt,
		Location: req.Location,
		Tags:     req.Tags,
		Author: models.JournalAuthor{
			Name:   owner.Name,
			Avatar: owner.Profile.Avatar,
		},
		UserID:     ownerID,
		SharedWith: sharedWith,
	}
	if err := s.journalRepository.CreateJournal(ctx, journal); err != nil {
		return nil, err
	}
	return journal, nil
}

// ListVisible returns the journals visible to the user: their own plus those
// whose creation-time snapshot shared them with the user, newest first.
func (s *JournalService) ListVisible(ctx context.Context, userID primitive.ObjectID) ([]models.Journal, error) {
	return s.journalRepository.ListVisibleJournals(ctx, userID)
}

// Get returns a single journal, applying the same visibility rule as the
// listing: the owner and the snapshot audience may read it, nobody else.
func (s *JournalService) Get(ctx context.Context, userID, journalID primitive.ObjectID) (*models.Journal, error) {
	journal, err := s.journalRepository.GetJournalByID(ctx, journalID)
	if err != nil {
		return nil, err
	}

	if journal.UserID == userID {
		return journal, nil
	}
	for _, id := range journal.SharedWith {
		if id == userID {
			return journal, nil
		}
	}
	return nil, fmt.Errorf("journal is not shared with you: %w", apperrors.ErrForbidden)
}
