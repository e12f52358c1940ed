package services

import (
	"context"
	"errors"
	"testing"

	"github.com/atlasroam/atlas/backend/internal/apperrors"
	"github.com/atlasroam/atlas/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRequestCreatesPendingConnection(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})
	bob := f.addUser("Bob", "bob@example.com", models.Profile{})

	require.NoError(t, f.connectionService.Request(ctx, alice.ID, bob.ID))

	conn, err := f.connections.GetConnectionByPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, conn.Status)
	assert.Equal(t, alice.ID, conn.Requester)
	assert.Equal(t, bob.ID, conn.Recipient)
	assert.Equal(t, models.PairKey(alice.ID, bob.ID), conn.PairKey)
}

func TestRequestToSelfRejected(t *testing.T) {
	f := newFixture()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})

	err := f.connectionService.Request(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRequestToMissingRecipient(t *testing.T) {
	f := newFixture()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})

	err := f.connectionService.Request(context.Background(), alice.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDuplicateRequestFailsInBothDirections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})
	bob := f.addUser("Bob", "bob@example.com", models.Profile{})

	require.NoError(t, f.connectionService.Request(ctx, alice.ID, bob.ID))

	var existsErr *apperrors.ConnectionExistsError

	err := f.connectionService.Request(ctx, alice.ID, bob.ID)
	require.ErrorAs(t, err, &existsErr)
	assert.Equal(t, "pending", existsErr.Status)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// The reverse direction hits the same pair record.
	err = f.connectionService.Request(ctx, bob.ID, alice.ID)
	require.ErrorAs(t, err, &existsErr)
	assert.Equal(t, "pending", existsErr.Status)
}

func TestDuplicateRequestReportsAcceptedStatus(t *testing.T) {
	f := newFixture()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})
	bob := f.addUser("Bob", "bob@example.com", models.Profile{})
	f.connect(alice.ID, bob.ID)

	var existsErr *apperrors.ConnectionExistsError
	err := f.connectionService.Request(context.Background(), bob.ID, alice.ID)
	require.ErrorAs(t, err, &existsErr)
	assert.Equal(t, "accepted", existsErr.Status)
}

func TestRespondOnlyRecipientMayAct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})
	bob := f.addUser("Bob", "bob@example.com", models.Profile{})
	mallory := f.addUser("Mallory", "mallory@example.com", models.Profile{})

	require.NoError(t, f.connectionService.Request(ctx, alice.ID, bob.ID))
	conn, err := f.connections.GetConnectionByPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// Neither the requester nor a third party may respond.
	assert.ErrorIs(t, f.connectionService.Respond(ctx, conn.ID, "accepted", alice.ID), apperrors.ErrForbidden)
	assert.ErrorIs(t, f.connectionService.Respond(ctx, conn.ID, "accepted", mallory.ID), apperrors.ErrForbidden)

	// The record is untouched.
	conn, err = f.connections.GetConnectionByID(ctx, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, conn.Status)
}

func TestRespondUnknownRequest(t *testing.T) {
	f := newFixture()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})

	err := f.connectionService.Respond(context.Background(), primitive.NewObjectID(), "accepted", alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRespondInvalidAction(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})
	bob := f.addUser("Bob", "bob@example.com", models.Profile{})

	require.NoError(t, f.connectionService.Request(ctx, alice.ID, bob.ID))
	conn, err := f.connections.GetConnectionByPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.connectionService.Respond(ctx, conn.ID, "maybe", bob.ID), apperrors.ErrValidation)
}

func TestAcceptIncrementsCountersAndRecordsEvent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})
	bob := f.addUser("Bob", "bob@example.com", models.Profile{})

	conn := f.connect(alice.ID, bob.ID)
	assert.Equal(t, models.ConnectionAccepted, conn.Status)

	aliceAfter, err := f.users.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	bobAfter, err := f.users.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, aliceAfter.Profile.FollowingCount)
	assert.Equal(t, 0, aliceAfter.Profile.FollowersCount)
	assert.Equal(t, 1, bobAfter.Profile.FollowersCount)
	assert.Equal(t, 0, bobAfter.Profile.FollowingCount)

	require.Len(t, f.connections.events, 1)
	event := f.connections.events[0]
	assert.Equal(t, alice.ID, event.Requester)
	assert.Equal(t, bob.ID, event.Recipient)
	assert.Equal(t, models.ConnectionAccepted, event.Status)
	assert.Equal(t, "follow", event.Type)
}

func TestRejectDeletesRequestWithoutCounters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})
	bob := f.addUser("Bob", "bob@example.com", models.Profile{})

	require.NoError(t, f.connectionService.Request(ctx, alice.ID, bob.ID))
	conn, err := f.connections.GetConnectionByPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, f.connectionService.Respond(ctx, conn.ID, "rejected", bob.ID))

	_, err = f.connections.GetConnectionByPair(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	bobAfter, err := f.users.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, bobAfter.Profile.FollowersCount)
	assert.Empty(t, f.connections.events)

	// The pair may try again after a rejection.
	assert.NoError(t, f.connectionService.Request(ctx, alice.ID, bob.ID))
}

func TestRemoveAcceptedReversesCounters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})
	bob := f.addUser("Bob", "bob@example.com", models.Profile{})
	conn := f.connect(alice.ID, bob.ID)

	// Either party may remove; here the recipient does.
	require.NoError(t, f.connectionService.Remove(ctx, conn.ID, bob.ID))

	aliceAfter, err := f.users.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	bobAfter, err := f.users.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, aliceAfter.Profile.FollowingCount)
	assert.Zero(t, bobAfter.Profile.FollowersCount)
	assert.Empty(t, f.connections.events)

	// A second removal finds nothing.
	assert.ErrorIs(t, f.connectionService.Remove(ctx, conn.ID, bob.ID), apperrors.ErrNotFound)
}

func TestRemovePendingLeavesCountersUntouched(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})
	bob := f.addUser("Bob", "bob@example.com", models.Profile{})

	require.NoError(t, f.connectionService.Request(ctx, alice.ID, bob.ID))
	conn, err := f.connections.GetConnectionByPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, f.connectionService.Remove(ctx, conn.ID, alice.ID))

	aliceAfter, err := f.users.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, aliceAfter.Profile.FollowingCount)
}

func TestRemoveRequiresParty(t *testing.T) {
	f := newFixture()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})
	bob := f.addUser("Bob", "bob@example.com", models.Profile{})
	mallory := f.addUser("Mallory", "mallory@example.com", models.Profile{})
	conn := f.connect(alice.ID, bob.ID)

	err := f.connectionService.Remove(context.Background(), conn.ID, mallory.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCounterDecrementFlooredAtZero(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})
	bob := f.addUser("Bob", "bob@example.com", models.Profile{})
	conn := f.connect(alice.ID, bob.ID)

	// Simulate drift: counters were lost before the removal runs.
	require.NoError(t, f.users.SetSocialCounters(ctx, alice.ID, 0, 0))
	require.NoError(t, f.users.SetSocialCounters(ctx, bob.ID, 0, 0))

	require.NoError(t, f.connectionService.Remove(ctx, conn.ID, alice.ID))

	aliceAfter, err := f.users.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	bobAfter, err := f.users.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, aliceAfter.Profile.FollowingCount)
	assert.Zero(t, bobAfter.Profile.FollowersCount)
}

func TestListConnectedAnnotatesConnectionID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})
	bob := f.addUser("Bob", "bob@example.com", models.Profile{})
	carol := f.addUser("Carol", "carol@example.com", models.Profile{})
	conn := f.connect(alice.ID, bob.ID)
	require.NoError(t, f.connectionService.Request(ctx, alice.ID, carol.ID))

	connected, err := f.connectionService.ListConnected(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, connected, 1)
	assert.Equal(t, bob.ID, connected[0].User.ID)
	assert.Equal(t, "accepted", connected[0].ConnectionStatus)
	assert.Equal(t, conn.ID.Hex(), connected[0].ConnectionID)
}

func TestListPendingResolvesRequesters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})
	bob := f.addUser("Bob", "bob@example.com", models.Profile{})
	require.NoError(t, f.connectionService.Request(ctx, alice.ID, bob.ID))

	// Pending requests show for the recipient only.
	pending, err := f.connectionService.ListPending(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Alice", pending[0].Requester.Name)
	assert.Equal(t, models.ConnectionPending, pending[0].Status)

	pending, err = f.connectionService.ListPending(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestListAllAnnotatesRelationship(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})
	bob := f.addUser("Bob", "bob@example.com", models.Profile{})
	carol := f.addUser("Carol", "carol@example.com", models.Profile{})
	dave := f.addUser("Dave", "dave@example.com", models.Profile{})
	eve := f.addUser("Eve", "eve@example.com", models.Profile{})

	f.connect(alice.ID, bob.ID)
	require.NoError(t, f.connectionService.Request(ctx, alice.ID, carol.ID))
	require.NoError(t, f.connectionService.Request(ctx, dave.ID, alice.ID))

	all, err := f.connectionService.ListAll(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, all, 4)

	statusByID := make(map[primitive.ObjectID]string, len(all))
	for _, entry := range all {
		assert.NotEqual(t, alice.ID, entry.User.ID)
		statusByID[entry.User.ID] = entry.ConnectionStatus
	}
	assert.Equal(t, "accepted", statusByID[bob.ID])
	assert.Equal(t, "pending", statusByID[carol.ID])
	assert.Equal(t, "incoming", statusByID[dave.ID])
	assert.Equal(t, "", statusByID[eve.ID])
}

func TestRecountCountersFixesDrift(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.addUser("Alice", "alice@example.com", models.Profile{})
	bob := f.addUser("Bob", "bob@example.com", models.Profile{})
	carol := f.addUser("Carol", "carol@example.com", models.Profile{})
	f.connect(alice.ID, bob.ID)
	f.connect(carol.ID, alice.ID)

	require.NoError(t, f.users.SetSocialCounters(ctx, alice.ID, 99, 99))

	require.NoError(t, f.connectionService.RecountCounters(ctx, alice.ID))

	aliceAfter, err := f.users.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, aliceAfter.Profile.FollowersCount)
	assert.Equal(t, 1, aliceAfter.Profile.FollowingCount)
}

func TestConnectionExistsErrorUnwrapsToConflict(t *testing.T) {
	err := &apperrors.ConnectionExistsError{Status: "pending"}
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Contains(t, err.Error(), "pending")
}
