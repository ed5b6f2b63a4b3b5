package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniconnect/backend/internal/app/models"
	"github.com/uniconnect/backend/internal/app/models/dto"
	"github.com/uniconnect/backend/internal/pkg/apperrors"
)

func newConnectionFixture() (*ConnectionService, *fakeConnectionStore, *fakeUserStore, *fakeNotifier) {
	users := newFakeUserStore(
		&models.User{ID: 1, RoleType: models.RoleStudent, IsActive: true, EmailVerified: true},
		&models.User{ID: 2, RoleType: models.RoleAlumni, IsActive: true, EmailVerified: true},
		&models.User{ID: 3, RoleType: models.RoleStudent, IsActive: true, EmailVerified: false},
		&models.User{ID: 4, RoleType: models.RoleStudent, IsActive: false, EmailVerified: true},
	)
	conns := newFakeConnectionStore()
	notifier := &fakeNotifier{}
	svc := NewConnectionService(conns, users, newGate(users, conns, nil), notifier, zerolog.Nop())
	return svc, conns, users, notifier
}

func TestSendRequest(t *testing.T) {
	svc, _, _, _ := newConnectionFixture()
	ctx := context.Background()

	resp, err := svc.SendRequest(ctx, 1, &dto.SendConnectionRequest{RecipientID: 2})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, int64(1), resp.RequesterID)
	assert.Equal(t, int64(2), resp.RecipientID)
}

func TestSendRequest_Self(t *testing.T) {
	svc, _, _, _ := newConnectionFixture()

	_, err := svc.SendRequest(context.Background(), 1, &dto.SendConnectionRequest{RecipientID: 1})
	assert.ErrorIs(t, err, apperrors.ErrSelfConnection)
}

func TestSendRequest_UnverifiedEmail(t *testing.T) {
	svc, _, _, _ := newConnectionFixture()

	_, err := svc.SendRequest(context.Background(), 3, &dto.SendConnectionRequest{RecipientID: 1})
	assert.ErrorIs(t, err, apperrors.ErrEmailNotVerified)
}

func TestSendRequest_InactiveRecipient(t *testing.T) {
	svc, _, _, _ := newConnectionFixture()

	_, err := svc.SendRequest(context.Background(), 1, &dto.SendConnectionRequest{RecipientID: 4})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestSendRequest_DuplicateEitherDirection(t *testing.T) {
	svc, _, _, _ := newConnectionFixture()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, 1, &dto.SendConnectionRequest{RecipientID: 2})
	require.NoError(t, err)

	_, err = svc.SendRequest(ctx, 1, &dto.SendConnectionRequest{RecipientID: 2})
	assert.ErrorIs(t, err, apperrors.ErrConnectionExists)

	// A counter-request from the other side collides with the same pair
	_, err = svc.SendRequest(ctx, 2, &dto.SendConnectionRequest{RecipientID: 1})
	assert.ErrorIs(t, err, apperrors.ErrConnectionExists)
}

func TestRespond_Accept(t *testing.T) {
	svc, _, _, notifier := newConnectionFixture()
	ctx := context.Background()

	created, err := svc.SendRequest(ctx, 1, &dto.SendConnectionRequest{RecipientID: 2})
	require.NoError(t, err)

	resp, err := svc.Respond(ctx, 2, created.ID, "accept")
	require.NoError(t, err)
	assert.Equal(t, "ACCEPTED", resp.Status)
	assert.NotNil(t, resp.RespondedAt)

	// Both parties are told a new chat opened
	require.Len(t, notifier.callsOf("accepted"), 1)
}

func TestRespond_Reject(t *testing.T) {
	svc, _, _, notifier := newConnectionFixture()
	ctx := context.Background()

	created, err := svc.SendRequest(ctx, 1, &dto.SendConnectionRequest{RecipientID: 2})
	require.NoError(t, err)

	resp, err := svc.Respond(ctx, 2, created.ID, "reject")
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", resp.Status)
	assert.Empty(t, notifier.callsOf("accepted"))
}

func TestRespond_OnlyRecipient(t *testing.T) {
	svc, _, _, _ := newConnectionFixture()
	ctx := context.Background()

	created, err := svc.SendRequest(ctx, 1, &dto.SendConnectionRequest{RecipientID: 2})
	require.NoError(t, err)

	// The requester cannot answer their own request
	_, err = svc.Respond(ctx, 1, created.ID, "accept")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestRespond_OneShot(t *testing.T) {
	svc, _, _, _ := newConnectionFixture()
	ctx := context.Background()

	created, err := svc.SendRequest(ctx, 1, &dto.SendConnectionRequest{RecipientID: 2})
	require.NoError(t, err)

	_, err = svc.Respond(ctx, 2, created.ID, "accept")
	require.NoError(t, err)

	// A second response of either kind is refused
	_, err = svc.Respond(ctx, 2, created.ID, "reject")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyResponded)
	_, err = svc.Respond(ctx, 2, created.ID, "accept")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyResponded)
}

func TestStatusWith(t *testing.T) {
	svc, _, _, _ := newConnectionFixture()
	ctx := context.Background()

	status, err := svc.StatusWith(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "NONE", status.Status)

	created, err := svc.SendRequest(ctx, 1, &dto.SendConnectionRequest{RecipientID: 2})
	require.NoError(t, err)

	status, err = svc.StatusWith(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", status.Status)
	assert.True(t, status.IsRequester)

	status, err = svc.StatusWith(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, status.IsRequester)

	_, err = svc.Respond(ctx, 2, created.ID, "accept")
	require.NoError(t, err)

	status, err = svc.StatusWith(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "ACCEPTED", status.Status)
}

func TestRemove_ClosesMessageChannel(t *testing.T) {
	svc, conns, users, _ := newConnectionFixture()
	ctx := context.Background()

	created, err := svc.SendRequest(ctx, 1, &dto.SendConnectionRequest{RecipientID: 2})
	require.NoError(t, err)
	_, err = svc.Respond(ctx, 2, created.ID, "accept")
	require.NoError(t, err)

	gate := newGate(users, conns, nil)
	ok, err := gate.CanMessage(ctx, 1, 2)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.Remove(ctx, 1, 2))

	ok, err = gate.CanMessage(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBlock(t *testing.T) {
	svc, _, _, _ := newConnectionFixture()
	ctx := context.Background()

	// Blocking without a prior connection creates the blocked row
	require.NoError(t, svc.Block(ctx, 1, 2))

	status, err := svc.StatusWith(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "BLOCKED", status.Status)

	// A blocked pair refuses new requests
	_, err = svc.SendRequest(ctx, 2, &dto.SendConnectionRequest{RecipientID: 1})
	assert.ErrorIs(t, err, apperrors.ErrConnectionBlocked)
}

func TestListConnections(t *testing.T) {
	svc, _, _, _ := newConnectionFixture()
	ctx := context.Background()

	created, err := svc.SendRequest(ctx, 1, &dto.SendConnectionRequest{RecipientID: 2})
	require.NoError(t, err)

	incoming, err := svc.ListIncoming(ctx, 2, 1, 10)
	require.NoError(t, err)
	assert.Len(t, incoming.Connections, 1)

	sent, err := svc.ListSent(ctx, 1, 1, 10)
	require.NoError(t, err)
	assert.Len(t, sent.Connections, 1)

	accepted, err := svc.ListConnections(ctx, 1, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, accepted.Connections)

	_, err = svc.Respond(ctx, 2, created.ID, "accept")
	require.NoError(t, err)

	accepted, err = svc.ListConnections(ctx, 1, 1, 10)
	require.NoError(t, err)
	assert.Len(t, accepted.Connections, 1)
}
