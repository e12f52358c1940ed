package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atlasroam/atlas/backend/internal/apperrors"
	"github.com/atlasroam/atlas/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes mirroring the Mongo implementations' contracts:
// same sentinel errors, same pair-uniqueness and floored-counter semantics.

type memUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *memUserRepo) CreateUser(_ context.Context, user *models.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return fmt.Errorf("email %q taken: %w", user.Email, apperrors.ErrConflict)
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
}

func (r *memUserRepo) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var result []models.User
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			result = append(result, *user)
		}
	}
	return result, nil
}

func (r *memUserRepo) ListUsers(_ context.Context, exclude primitive.ObjectID, limit int64) ([]models.User, error) {
	var result []models.User
	for _, user := range r.users {
		if user.ID != exclude {
			result = append(result, *user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID.Hex() < result[j].ID.Hex() })
	if int64(len(result)) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *memUserRepo) SearchUsers(_ context.Context, exclude primitive.ObjectID, query, searchType string) ([]models.User, error) {
	q := strings.ToLower(query)
	var result []models.User
	for _, user := range r.users {
		if user.ID == exclude {
			continue
		}
		var haystack string
		switch searchType {
		case "location":
			haystack = user.Profile.Location
		case "interest":
			haystack = user.Profile.Interests
		default:
			haystack = user.Name + " " + user.Email + " " + user.Profile.Location + " " + user.Profile.Interests
		}
		if q == "" || strings.Contains(strings.ToLower(haystack), q) {
			result = append(result, *user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID.Hex() < result[j].ID.Hex() })
	return result, nil
}

func (r *memUserRepo) FindSuggestionCandidates(_ context.Context, excludeIDs []primitive.ObjectID, interestTokens []string, locationPrefix string, limit int64) ([]models.User, error) {
	excluded := make(map[primitive.ObjectID]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	matches := func(user *models.User) bool {
		if len(interestTokens) == 0 && locationPrefix == "" {
			return true
		}
		if locationPrefix != "" &&
			strings.Contains(strings.ToLower(user.Profile.Location), strings.ToLower(locationPrefix)) {
			return true
		}
		if len(interestTokens) == 0 {
			return false
		}
		theirs := make(map[string]bool)
		for _, token := range user.Profile.InterestTokens() {
			theirs[strings.ToLower(token)] = true
		}
		for _, token := range interestTokens {
			if theirs[strings.ToLower(token)] {
				return true
			}
		}
		return false
	}

	var result []models.User
	for _, user := range r.users {
		if excluded[user.ID] || !matches(user) {
			continue
		}
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID.Hex() < result[j].ID.Hex() })
	if int64(len(result)) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *memUserRepo) UpdateUser(_ context.Context, user *models.User) error {
	existing, ok := r.users[user.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", user.ID.Hex(), apperrors.ErrNotFound)
	}
	existing.Name = user.Name
	existing.Profile = user.Profile
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id primitive.ObjectID, passwordHash string) error {
	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	user.Password = passwordHash
	return nil
}

func (r *memUserRepo) AdjustLocationsCount(_ context.Context, id primitive.ObjectID, delta int) error {
	user, ok := r.users[id]
	if !ok {
		return nil
	}
	if delta < 0 && user.Profile.LocationsCount == 0 {
		return nil
	}
	user.Profile.LocationsCount += delta
	return nil
}

func (r *memUserRepo) SetSocialCounters(_ context.Context, id primitive.ObjectID, followers, following int) error {
	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	user.Profile.FollowersCount = followers
	user.Profile.FollowingCount = following
	return nil
}

type memConnectionRepo struct {
	conns  map[primitive.ObjectID]*models.Connection
	events []models.FriendEvent
	users  *memUserRepo
}

func newMemConnectionRepo(users *memUserRepo) *memConnectionRepo {
	return &memConnectionRepo{
		conns: make(map[primitive.ObjectID]*models.Connection),
		users: users,
	}
}

func (r *memConnectionRepo) CreateConnection(_ context.Context, conn *models.Connection) error {
	pairKey := models.PairKey(conn.Requester, conn.Recipient)
	for _, existing := range r.conns {
		if existing.PairKey == pairKey {
			return fmt.Errorf("connection for pair %s: %w", pairKey, apperrors.ErrConflict)
		}
	}
	conn.ID = primitive.NewObjectID()
	conn.Status = models.ConnectionPending
	conn.PairKey = pairKey
	conn.CreatedAt = time.Now()
	r.conns[conn.ID] = conn
	return nil
}

func (r *memConnectionRepo) GetConnectionByID(_ context.Context, id primitive.ObjectID) (*models.Connection, error) {
	conn, ok := r.conns[id]
	if !ok {
		return nil, fmt.Errorf("connection %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	copied := *conn
	return &copied, nil
}

func (r *memConnectionRepo) GetConnectionByPair(_ context.Context, a, b primitive.ObjectID) (*models.Connection, error) {
	pairKey := models.PairKey(a, b)
	for _, conn := range r.conns {
		if conn.PairKey == pairKey {
			copied := *conn
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("connection between %s and %s: %w", a.Hex(), b.Hex(), apperrors.ErrNotFound)
}

func (r *memConnectionRepo) ListConnectionsByUser(_ context.Context, userID primitive.ObjectID) ([]models.Connection, error) {
	return r.filter(func(c *models.Connection) bool { return c.IsParty(userID) }), nil
}

func (r *memConnectionRepo) ListAcceptedByUser(_ context.Context, userID primitive.ObjectID) ([]models.Connection, error) {
	return r.filter(func(c *models.Connection) bool {
		return c.IsParty(userID) && c.Status == models.ConnectionAccepted
	}), nil
}

func (r *memConnectionRepo) ListPendingForRecipient(_ context.Context, userID primitive.ObjectID) ([]models.Connection, error) {
	return r.filter(func(c *models.Connection) bool {
		return c.Recipient == userID && c.Status == models.ConnectionPending
	}), nil
}

func (r *memConnectionRepo) filter(keep func(*models.Connection) bool) []models.Connection {
	var result []models.Connection
	for _, conn := range r.conns {
		if keep(conn) {
			result = append(result, *conn)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID.Hex() < result[j].ID.Hex() })
	return result
}

func (r *memConnectionRepo) AcceptConnection(_ context.Context, conn *models.Connection) error {
	stored, ok := r.conns[conn.ID]
	if !ok || stored.Status != models.ConnectionPending {
		return fmt.Errorf("pending connection %s: %w", conn.ID.Hex(), apperrors.ErrNotFound)
	}
	stored.Status = models.ConnectionAccepted
	if requester, ok := r.users.users[conn.Requester]; ok {
		requester.Profile.FollowingCount++
	}
	if recipient, ok := r.users.users[conn.Recipient]; ok {
		recipient.Profile.FollowersCount++
	}
	r.events = append(r.events, models.FriendEvent{
		ID:        primitive.NewObjectID(),
		Requester: conn.Requester,
		Recipient: conn.Recipient,
		Status:    models.ConnectionAccepted,
		Type:      "follow",
		CreatedAt: time.Now(),
	})
	return nil
}

func (r *memConnectionRepo) RemoveConnection(_ context.Context, conn *models.Connection) error {
	stored, ok := r.conns[conn.ID]
	if !ok {
		return fmt.Errorf("connection %s: %w", conn.ID.Hex(), apperrors.ErrNotFound)
	}
	delete(r.conns, conn.ID)
	if stored.Status != models.ConnectionAccepted {
		return nil
	}
	if requester, ok := r.users.users[conn.Requester]; ok && requester.Profile.FollowingCount > 0 {
		requester.Profile.FollowingCount--
	}
	if recipient, ok := r.users.users[conn.Recipient]; ok && recipient.Profile.FollowersCount > 0 {
		recipient.Profile.FollowersCount--
	}
	kept := r.events[:0]
	for _, event := range r.events {
		if event.Requester != conn.Requester || event.Recipient != conn.Recipient {
			kept = append(kept, event)
		}
	}
	r.events = kept
	return nil
}

func (r *memConnectionRepo) DeleteConnection(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.conns[id]; !ok {
		return fmt.Errorf("connection %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	delete(r.conns, id)
	return nil
}

func (r *memConnectionRepo) CountAccepted(_ context.Context, userID primitive.ObjectID) (int64, int64, error) {
	var followers, following int64
	for _, conn := range r.conns {
		if conn.Status != models.ConnectionAccepted {
			continue
		}
		if conn.Recipient == userID {
			followers++
		}
		if conn.Requester == userID {
			following++
		}
	}
	return followers, following, nil
}

type memJournalRepo struct {
	journals map[primitive.ObjectID]*models.Journal
}

func newMemJournalRepo() *memJournalRepo {
	return &memJournalRepo{journals: make(map[primitive.ObjectID]*models.Journal)}
}

func (r *memJournalRepo) CreateJournal(_ context.Context, journal *models.Journal) error {
	journal.ID = primitive.NewObjectID()
	if journal.Date.IsZero() {
		journal.Date = time.Now()
	}
	if journal.SharedWith == nil {
		journal.SharedWith = []primitive.ObjectID{}
	}
	r.journals[journal.ID] = journal
	return nil
}

func (r *memJournalRepo) GetJournalByID(_ context.Context, id primitive.ObjectID) (*models.Journal, error) {
	journal, ok := r.journals[id]
	if !ok {
		return nil, fmt.Errorf("journal %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	copied := *journal
	return &copied, nil
}

func (r *memJournalRepo) ListVisibleJournals(_ context.Context, userID primitive.ObjectID) ([]models.Journal, error) {
	var result []models.Journal
	for _, journal := range r.journals {
		if journal.UserID == userID {
			result = append(result, *journal)
			continue
		}
		for _, id := range journal.SharedWith {
			if id == userID {
				result = append(result, *journal)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

type likeKey struct {
	user    primitive.ObjectID
	journal primitive.ObjectID
}

type memLikeRepo struct {
	likes    map[likeKey]bool
	journals *memJournalRepo
}

func newMemLikeRepo(journals *memJournalRepo) *memLikeRepo {
	return &memLikeRepo{likes: make(map[likeKey]bool), journals: journals}
}

func (r *memLikeRepo) ToggleLike(_ context.Context, userID, journalID primitive.ObjectID) (bool, int, error) {
	journal, ok := r.journals.journals[journalID]
	if !ok {
		return false, 0, fmt.Errorf("journal %s: %w", journalID.Hex(), apperrors.ErrNotFound)
	}
	key := likeKey{user: userID, journal: journalID}
	if r.likes[key] {
		delete(r.likes, key)
		journal.LikesCount--
		return false, journal.LikesCount, nil
	}
	r.likes[key] = true
	journal.LikesCount++
	return true, journal.LikesCount, nil
}

func (r *memLikeRepo) HasUserLiked(_ context.Context, userID, journalID primitive.ObjectID) (bool, error) {
	return r.likes[likeKey{user: userID, journal: journalID}], nil
}

type memCommentRepo struct {
	comments []models.Comment
	journals *memJournalRepo
}

func newMemCommentRepo(journals *memJournalRepo) *memCommentRepo {
	return &memCommentRepo{journals: journals}
}

func (r *memCommentRepo) AddComment(_ context.Context, comment *models.Comment) (int, error) {
	journal, ok := r.journals.journals[comment.TargetID]
	if !ok {
		return 0, fmt.Errorf("journal %s: %w", comment.TargetID.Hex(), apperrors.ErrNotFound)
	}
	comment.ID = primitive.NewObjectID()
	comment.TargetType = models.TargetJournal
	comment.CreatedAt = time.Now().Add(time.Duration(len(r.comments)) * time.Millisecond)
	r.comments = append(r.comments, *comment)
	journal.CommentsCount++
	return journal.CommentsCount, nil
}

func (r *memCommentRepo) ListCommentsForJournal(_ context.Context, journalID primitive.ObjectID) ([]models.Comment, error) {
	var result []models.Comment
	for _, comment := range r.comments {
		if comment.TargetID == journalID {
			result = append(result, comment)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// fixture wires the full fake repository set behind the services under test.
type fixture struct {
	users       *memUserRepo
	connections *memConnectionRepo
	journals    *memJournalRepo
	likes       *memLikeRepo
	comments    *memCommentRepo

	connectionService *ConnectionService
	socialService     *SocialService
	journalService    *JournalService
	suggestionService *SuggestionService
}

func newFixture() *fixture {
	users := newMemUserRepo()
	connections := newMemConnectionRepo(users)
	journals := newMemJournalRepo()
	likes := newMemLikeRepo(journals)
	comments := newMemCommentRepo(journals)

	return &fixture{
		users:             users,
		connections:       connections,
		journals:          journals,
		likes:             likes,
		comments:          comments,
		connectionService: NewConnectionService(connections, users),
		socialService:     NewSocialService(connections, journals, likes, comments, users),
		journalService:    NewJournalService(journals, connections, users),
		suggestionService: NewSuggestionService(users, connections),
	}
}

func (f *fixture) addUser(name, email string, profile models.Profile) *models.User {
	user := &models.User{Name: name, Email: email, Profile: profile}
	if err := f.users.CreateUser(context.Background(), user); err != nil {
		panic(err)
	}
	return user
}

// connect runs the full request/accept workflow between two users and returns
// the accepted connection.
func (f *fixture) connect(requester, recipient primitive.ObjectID) *models.Connection {
	ctx := context.Background()
	if err := f.connectionService.Request(ctx, requester, recipient); err != nil {
		panic(err)
	}
	conn, err := f.connections.GetConnectionByPair(ctx, requester, recipient)
	if err != nil {
		panic(err)
	}
	if err := f.connectionService.Respond(ctx, conn.ID, "accepted", recipient); err != nil {
		panic(err)
	}
	conn, err = f.connections.GetConnectionByPair(ctx, requester, recipient)
	if err != nil {
		panic(err)
	}
	return conn
}
