package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/uniconnect/backend/internal/app/auth"
	"github.com/uniconnect/backend/internal/app/models"
	"github.com/uniconnect/backend/internal/app/models/dto"
	"github.com/uniconnect/backend/internal/pkg/apperrors"
)

// jobFixture wires a job service with a verified alumni (1), a student (2),
// an unverified alumni (3), a second verified alumni (4) and an admin (5).
func jobFixture() (*JobService, *fakeJobStore) {
	users := newFakeUserStore(
		&models.User{ID: 1, RoleType: models.RoleAlumni, IsActive: true, EmailVerified: true},
		&models.User{ID: 2, RoleType: models.RoleStudent, IsActive: true, EmailVerified: true},
		&models.User{ID: 3, RoleType: models.RoleAlumni, IsActive: true, EmailVerified: false},
		&models.User{ID: 4, RoleType: models.RoleAlumni, IsActive: true, EmailVerified: true},
		&models.User{ID: 5, RoleType: models.RoleAdmin, IsActive: true, EmailVerified: true},
	)
	jobs := newFakeJobStore()
	svc := NewJobService(jobs, appauth.NewAuthorizationService(users, newFakeConnectionStore(), jobs), zerolog.Nop())
	return svc, jobs
}

func validJobRequest() *dto.CreateJobRequest {
	return &dto.CreateJobRequest{
		Title:       "Backend Engineer",
		Company:     "Acme",
		Location:    "Bengaluru",
		JobType:     "FULL_TIME",
		Description: "Build services",
	}
}

func TestCreateJob(t *testing.T) {
	svc, _ := jobFixture()

	resp, err := svc.CreateJob(context.Background(), 1, validJobRequest())
	require.NoError(t, err)
	assert.True(t, resp.IsActive)
	assert.Equal(t, "FULL_TIME", resp.JobType)
	assert.NotZero(t, resp.ID)
}

func TestCreateJob_StudentsRefused(t *testing.T) {
	svc, _ := jobFixture()

	_, err := svc.CreateJob(context.Background(), 2, validJobRequest())
	assert.ErrorIs(t, err, appauth.ErrNotAlumni)
}

func TestCreateJob_UnverifiedRefused(t *testing.T) {
	svc, _ := jobFixture()

	_, err := svc.CreateJob(context.Background(), 3, validJobRequest())
	assert.ErrorIs(t, err, apperrors.ErrEmailNotVerified)
}

func TestCreateJob_PastDeadline(t *testing.T) {
	svc, _ := jobFixture()

	req := validJobRequest()
	past := time.Now().Add(-time.Hour)
	req.ApplicationDeadline = &past

	_, err := svc.CreateJob(context.Background(), 1, req)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestUpdateJob_OwnerOnly(t *testing.T) {
	svc, _ := jobFixture()
	ctx := context.Background()

	created, err := svc.CreateJob(ctx, 1, validJobRequest())
	require.NoError(t, err)

	update := &dto.UpdateJobRequest{
		Title:       "Senior Backend Engineer",
		Company:     "Acme",
		Location:    "Bengaluru",
		JobType:     "FULL_TIME",
		Description: "Build bigger services",
	}

	_, err = svc.UpdateJob(ctx, 2, created.ID, update)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	resp, err := svc.UpdateJob(ctx, 1, created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Engineer", resp.Title)
}

func TestUpdateJob_Deactivate(t *testing.T) {
	svc, _ := jobFixture()
	ctx := context.Background()

	created, err := svc.CreateJob(ctx, 1, validJobRequest())
	require.NoError(t, err)

	inactive := false
	update := &dto.UpdateJobRequest{
		Title:       created.Title,
		Company:     created.Company,
		Location:    created.Location,
		JobType:     created.JobType,
		Description: created.Description,
		IsActive:    &inactive,
	}

	resp, err := svc.UpdateJob(ctx, 1, created.ID, update)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)

	// A deactivated posting refuses applications
	_, err = svc.Apply(ctx, 2, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrJobClosed)
}

func TestApply(t *testing.T) {
	svc, _ := jobFixture()
	ctx := context.Background()

	created, err := svc.CreateJob(ctx, 1, validJobRequest())
	require.NoError(t, err)

	resp, err := svc.Apply(ctx, 2, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "APPLIED", resp.Status)
	assert.Equal(t, created.ID, resp.JobID)
}

func TestApply_OncePerJob(t *testing.T) {
	svc, _ := jobFixture()
	ctx := context.Background()

	created, err := svc.CreateJob(ctx, 1, validJobRequest())
	require.NoError(t, err)

	_, err = svc.Apply(ctx, 2, created.ID)
	require.NoError(t, err)

	_, err = svc.Apply(ctx, 2, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyApplied)
}

func TestApply_StudentsOnly(t *testing.T) {
	svc, _ := jobFixture()
	ctx := context.Background()

	created, err := svc.CreateJob(ctx, 1, validJobRequest())
	require.NoError(t, err)

	// Owner, another alumni and an admin are all refused; only students apply.
	for _, applicantID := range []int64{1, 4, 5} {
		_, err = svc.Apply(ctx, applicantID, created.ID)
		assert.ErrorIs(t, err, appauth.ErrNotStudent)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	}
}

func TestApply_ClosedByDeadline(t *testing.T) {
	svc, jobs := jobFixture()
	ctx := context.Background()

	created, err := svc.CreateJob(ctx, 1, validJobRequest())
	require.NoError(t, err)

	// Push the deadline into the past behind the service's back
	past := time.Now().Add(-time.Hour)
	jobs.jobs[created.ID].ApplicationDeadline = &past

	_, err = svc.Apply(ctx, 2, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrJobClosed)
}

func TestUpdateApplicationStatus_PosterOnly(t *testing.T) {
	svc, _ := jobFixture()
	ctx := context.Background()

	created, err := svc.CreateJob(ctx, 1, validJobRequest())
	require.NoError(t, err)
	applied, err := svc.Apply(ctx, 2, created.ID)
	require.NoError(t, err)

	_, err = svc.UpdateApplicationStatus(ctx, 2, applied.ID, "SHORTLISTED")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	resp, err := svc.UpdateApplicationStatus(ctx, 1, applied.ID, "SHORTLISTED")
	require.NoError(t, err)
	assert.Equal(t, "SHORTLISTED", resp.Status)
}

func TestListApplications_PosterOnly(t *testing.T) {
	svc, _ := jobFixture()
	ctx := context.Background()

	created, err := svc.CreateJob(ctx, 1, validJobRequest())
	require.NoError(t, err)
	_, err = svc.Apply(ctx, 2, created.ID)
	require.NoError(t, err)

	_, err = svc.ListApplications(ctx, 2, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	list, err := svc.ListApplications(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Len(t, list.Applications, 1)
}

func TestExportApplicants(t *testing.T) {
	svc, _ := jobFixture()
	ctx := context.Background()

	created, err := svc.CreateJob(ctx, 1, validJobRequest())
	require.NoError(t, err)
	_, err = svc.Apply(ctx, 2, created.ID)
	require.NoError(t, err)

	_, _, err = svc.ExportApplicants(ctx, 2, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	data, filename, err := svc.ExportApplicants(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Contains(t, filename, ".xlsx")
}
