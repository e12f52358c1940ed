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

// SocialService is the visibility resolver: it derives, from the connection
// store, whether a user may see and interact with another user's journals,
// and applies the like/comment operations that gate on it.
type SocialService struct {
	connectionRepository repositories.ConnectionRepository
	journalRepository    repositories.JournalRepository
	likeRepository       repositories.LikeRepository
	commentRepository    repositories.CommentRepository
	userRepository       repositories.UserRepository
}

// NewSocialService creates a new SocialService
func NewSocialService(
	connRepo repositories.ConnectionRepository,
	journalRepo repositories.JournalRepository,
	likeRepo repositories.LikeRepository,
	commentRepo repositories.CommentRepository,
	userRepo repositories.UserRepository,
) *SocialService {
	return &SocialService{
		connectionRepository: connRepo,
		journalRepository:    journalRepo,
		likeRepository:       likeRepo,
		commentRepository:    commentRepo,
		userRepository:       userRepo,
	}
}

// IsConnected reports whether an accepted connection exists for the unordered
// pair. Symmetric by construction: the pair lookup ignores direction.
func (s *SocialService) IsConnected(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	conn, err := s.connectionRepository.GetConnectionByPair(ctx, a, b)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return conn.Status == models.ConnectionAccepted, nil
}

// CanInteract reports whether actingUser may like or comment on content owned
// by owner. Delegates to IsConnected; a user is never connected to themselves,
// so owners cannot interact with their own journals.
func (s *SocialService) CanInteract(ctx context.Context, actingUser, owner primitive.ObjectID) (bool, error) {
	return s.IsConnected(ctx, actingUser, owner)
}

// authorizeInteraction checks that the user may like or comment on the
// journal: they must hold an accepted connection with the owner AND be in the
// journal's creation-time audience. A connection formed after the journal was
// created does not open older entries for interaction.
func (s *SocialService) authorizeInteraction(ctx context.Context, userID primitive.ObjectID, journal *models.Journal) error {
	allowed, err := s.CanInteract(ctx, userID, journal.UserID)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("must be connected to interact with this journal: %w", apperrors.ErrForbidden)
	}
	for _, id := range journal.SharedWith {
		if id == userID {
			return nil
		}
	}
	return fmt.Errorf("journal is not shared with you: %w", apperrors.ErrForbidden)
}

// ToggleLike flips the user's like on a journal and returns the resulting
// state. Two consecutive toggles restore the original like count.
func (s *SocialService) ToggleLike(ctx context.Context, userID, journalID primitive.ObjectID) (*models.LikeResult, error) {
	journal, err := s.journalRepository.GetJournalByID(ctx, journalID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeInteraction(ctx, userID, journal); err != nil {
		return nil, err
	}

	liked, likesCount, err := s.likeRepository.ToggleLike(ctx, userID, journalID)
	if err != nil {
		return nil, err
	}
	return &models.LikeResult{Liked: liked, LikesCount: likesCount}, nil
}

// AddComment appends a comment to a journal and returns it with the author's
// public info resolved, plus the journal's new comment count.
func (s *SocialService) AddComment(ctx context.Context, userID, journalID primitive.ObjectID, content string) (*models.CommentResult, error) {
	journal, err := s.journalRepository.GetJournalByID(ctx, journalID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeInteraction(ctx, userID, journal); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		UserID:   userID,
		TargetID: journalID,
		Content:  content,
	}
	commentsCount, err := s.commentRepository.AddComment(ctx, comment)
	if err != nil {
		return nil, err
	}

	author, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.CommentResult{
		Comment: models.CommentWithAuthor{
			Comment: *comment,
			Author:  author.ToCompact(),
		},
		CommentsCount: commentsCount,
	}, nil
}

// ListComments returns a journal's comments, newest first, with authors
// resolved in one batched lookup.
func (s *SocialService) ListComments(ctx context.Context, journalID primitive.ObjectID) ([]models.CommentWithAuthor, error) {
	if _, err := s.journalRepository.GetJournalByID(ctx, journalID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepository.ListCommentsForJournal(ctx, journalID)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]primitive.ObjectID, 0, len(comments))
	seen := make(map[primitive.ObjectID]bool, len(comments))
	for _, comment := range comments {
		if !seen[comment.UserID] {
			seen[comment.UserID] = true
			authorIDs = append(authorIDs, comment.UserID)
		}
	}
	authors, err := s.userRepository.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	authorByID := make(map[primitive.ObjectID]models.UserCompact, len(authors))
	for i := range authors {
		authorByID[authors[i].ID] = authors[i].ToCompact()
	}

	result := make([]models.CommentWithAuthor, 0, len(comments))
	for _, comment := range comments {
		result = append(result, models.CommentWithAuthor{
			Comment: comment,
			Author:  authorByID[comment.UserID],
		})
	}
	return result, nil
}
