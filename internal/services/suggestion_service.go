package services

import (
	"context"
	"sort"
	"strings"

	"github.com/atlasroam/atlas/backend/internal/models"
	"github.com/atlasroam/atlas/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// suggestionLimit caps the number of suggestions returned.
const suggestionLimit = 10

// locationBonus is added to the relevance score when the candidate's location
// contains the acting user's location prefix.
const locationBonus = 3

// SuggestionService ranks non-connected users for discovery by shared
// interests and location.
type SuggestionService struct {
	userRepository       repositories.UserRepository
	connectionRepository repositories.ConnectionRepository
}

// NewSuggestionService creates a new SuggestionService
func NewSuggestionService(userRepo repositories.UserRepository, connRepo repositories.ConnectionRepository) *SuggestionService {
	return &SuggestionService{
		userRepository:       userRepo,
		connectionRepository: connRepo,
	}
}

// Suggestions returns up to suggestionLimit users scored by relevance,
// descending. The exclusion set covers the acting user and every user with
// any connection record (pending or accepted) involving them. Ties break by
// ascending user id so the ordering is deterministic.
func (s *SuggestionService) Suggestions(ctx context.Context, userID primitive.ObjectID) ([]models.SuggestedUser, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	conns, err := s.connectionRepository.ListConnectionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	excludeIDs := make([]primitive.ObjectID, 0, len(conns)+1)
	excludeIDs = append(excludeIDs, userID)
	for i := range conns {
		excludeIDs = append(excludeIDs, conns[i].OtherParty(userID))
	}

	tokens := user.Profile.InterestTokens()
	locationPrefix := user.Profile.LocationPrefix()

	candidates, err := s.userRepository.FindSuggestionCandidates(ctx, excludeIDs, tokens, locationPrefix, suggestionLimit)
	if err != nil {
		return nil, err
	}

	suggestions := make([]models.SuggestedUser, 0, len(candidates))
	for _, candidate := range candidates {
		common := commonInterestCount(tokens, candidate.Profile.InterestTokens())
		locationMatch := matchesLocation(locationPrefix, candidate.Profile.Location)

		score := common
		if locationMatch {
			score += locationBonus
		}

		suggestions = append(suggestions, models.SuggestedUser{
			User:            candidate,
			RelevanceScore:  score,
			CommonInterests: common,
			LocationMatch:   locationMatch,
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].RelevanceScore != suggestions[j].RelevanceScore {
			return suggestions[i].RelevanceScore > suggestions[j].RelevanceScore
		}
		return suggestions[i].ID.Hex() < suggestions[j].ID.Hex()
	})

	if len(suggestions) > suggestionLimit {
		suggestions = suggestions[:suggestionLimit]
	}
	return suggestions, nil
}

// commonInterestCount counts how many of the viewer's interest tokens appear
// among the candidate's, comparing case-insensitively.
func commonInterestCount(mine, theirs []string) int {
	if len(mine) == 0 || len(theirs) == 0 {
		return 0
	}
	theirSet := make(map[string]bool, len(theirs))
	for _, token := range theirs {
		theirSet[strings.ToLower(token)] = true
	}
	count := 0
	for _, token := range mine {
		if theirSet[strings.ToLower(token)] {
			count++
		}
	}
	return count
}

// matchesLocation reports whether the candidate's free-text location contains
// the viewer's location prefix, case-insensitively.
func matchesLocation(prefix, candidateLocation string) bool {
	if prefix == "" || candidateLocation == "" {
		return false
	}
	return strings.Contains(strings.ToLower(candidateLocation), strings.ToLower(prefix))
}
