package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniconnect/backend/internal/app/models"
	"github.com/uniconnect/backend/internal/pkg/apperrors"
)

type fakeConnectionReader struct {
	conns map[[2]int64]*models.Connection
}

func (f *fakeConnectionReader) GetBetween(_ context.Context, a, b int64) (*models.Connection, error) {
	if c, ok := f.conns[[2]int64{a, b}]; ok {
		return c, nil
	}
	if c, ok := f.conns[[2]int64{b, a}]; ok {
		return c, nil
	}
	return nil, apperrors.ErrConnectionNotFound
}

type fakeUserReader struct {
	users map[int64]*models.User
}

func (f *fakeUserReader) GetByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

type fakeJobReader struct {
	jobs map[int64]*models.Job
}

func (f *fakeJobReader) GetByID(_ context.Context, id int64) (*models.Job, error) {
	if j, ok := f.jobs[id]; ok {
		return j, nil
	}
	return nil, apperrors.ErrJobNotFound
}

func newTestService(conns map[[2]int64]*models.Connection, users map[int64]*models.User, jobs map[int64]*models.Job) *AuthorizationService {
	return NewAuthorizationService(
		&fakeUserReader{users: users},
		&fakeConnectionReader{conns: conns},
		&fakeJobReader{jobs: jobs},
	)
}

func TestCanMessage(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		status models.ConnectionStatus
		want   bool
	}{
		{"accepted connection allows messaging", models.ConnectionAccepted, true},
		{"pending connection blocks messaging", models.ConnectionPending, false},
		{"rejected connection blocks messaging", models.ConnectionRejected, false},
		{"blocked connection blocks messaging", models.ConnectionBlocked, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(map[[2]int64]*models.Connection{
				{1, 2}: {RequesterID: 1, RecipientID: 2, Status: tt.status},
			}, nil, nil)

			got, err := svc.CanMessage(ctx, 1, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Direction must not matter.
			reverse, err := svc.CanMessage(ctx, 2, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, reverse)
		})
	}
}

func TestCanMessage_NoConnection(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	got, err := svc.CanMessage(context.Background(), 3, 4)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestCanMessage_Self(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	got, err := svc.CanMessage(context.Background(), 5, 5)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestValidateCanMessage_Forbidden(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	err := svc.ValidateCanMessage(context.Background(), 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Contains(t, err.Error(), "You can only send messages to your connections")
}

func TestValidateAlumni(t *testing.T) {
	users := map[int64]*models.User{
		1: {ID: 1, RoleType: models.RoleAlumni},
		2: {ID: 2, RoleType: models.RoleStudent},
	}
	svc := newTestService(nil, users, nil)
	ctx := context.Background()

	assert.NoError(t, svc.ValidateAlumni(ctx, 1))
	assert.ErrorIs(t, svc.ValidateAlumni(ctx, 2), ErrNotAlumni)
	assert.ErrorIs(t, svc.ValidateAlumni(ctx, 99), apperrors.ErrUserNotFound)
}

func TestValidateStudent(t *testing.T) {
	users := map[int64]*models.User{
		1: {ID: 1, RoleType: models.RoleAlumni},
		2: {ID: 2, RoleType: models.RoleStudent},
		3: {ID: 3, RoleType: models.RoleAdmin},
	}
	svc := newTestService(nil, users, nil)
	ctx := context.Background()

	assert.NoError(t, svc.ValidateStudent(ctx, 2))
	assert.ErrorIs(t, svc.ValidateStudent(ctx, 1), ErrNotStudent)
	assert.ErrorIs(t, svc.ValidateStudent(ctx, 3), ErrNotStudent)
	assert.ErrorIs(t, svc.ValidateStudent(ctx, 99), apperrors.ErrUserNotFound)

	// Role errors sit in the forbidden family so the API answers 403.
	assert.ErrorIs(t, svc.ValidateStudent(ctx, 1), apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, svc.ValidateAlumni(ctx, 2), apperrors.ErrPermissionDenied)
}

func TestValidateJobOwnership(t *testing.T) {
	jobs := map[int64]*models.Job{
		10: {ID: 10, PostedByID: 1},
	}
	svc := newTestService(nil, nil, jobs)
	ctx := context.Background()

	assert.NoError(t, svc.ValidateJobOwnership(ctx, 10, 1))
	assert.ErrorIs(t, svc.ValidateJobOwnership(ctx, 10, 2), ErrPermissionDenied)
	assert.ErrorIs(t, svc.ValidateJobOwnership(ctx, 11, 1), apperrors.ErrJobNotFound)
}

func TestValidateEmailVerified(t *testing.T) {
	users := map[int64]*models.User{
		1: {ID: 1, EmailVerified: true},
		2: {ID: 2, EmailVerified: false},
	}
	svc := newTestService(nil, users, nil)
	ctx := context.Background()

	assert.NoError(t, svc.ValidateEmailVerified(ctx, 1))
	assert.ErrorIs(t, svc.ValidateEmailVerified(ctx, 2), apperrors.ErrEmailNotVerified)
}
