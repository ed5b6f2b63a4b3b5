package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	appauth "github.com/uniconnect/backend/internal/app/auth"
	"github.com/uniconnect/backend/internal/app/models"
	"github.com/uniconnect/backend/internal/app/models/dto"
	"github.com/uniconnect/backend/internal/pkg/apperrors"
	"github.com/uniconnect/backend/internal/pkg/export"
	"github.com/uniconnect/backend/internal/pkg/helpers"
)

// JobStore is the persistence surface the job service needs
type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id int64) (*models.Job, error)
	List(ctx context.Context, filter *dto.JobFilterRequest, offset uint64, limit int) ([]*models.Job, int64, error)
	ListByPoster(ctx context.Context, posterID int64, offset uint64, limit int) ([]*models.Job, int64, error)
	Update(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, id int64) error
	CreateApplication(ctx context.Context, app *models.JobApplication) error
	GetApplication(ctx context.Context, id int64) (*models.JobApplication, error)
	ListApplications(ctx context.Context, jobID int64) ([]*models.JobApplication, error)
	ListApplicationsByApplicant(ctx context.Context, applicantID int64) ([]*models.JobApplication, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status models.ApplicationStatus) error
}

// JobService handles job postings and applications. Posting is an alumni
// privilege; editing and reviewing applications belong to the poster.
type JobService struct {
	jobStore      JobStore
	authorization *appauth.AuthorizationService
	logger        zerolog.Logger
}

// NewJobService creates a new JobService
func NewJobService(
	jobStore JobStore,
	authorization *appauth.AuthorizationService,
	logger zerolog.Logger,
) *JobService {
	return &JobService{
		jobStore:      jobStore,
		authorization: authorization,
		logger:        logger,
	}
}

// CreateJob publishes a new posting. Verified alumni only.
func (s *JobService) CreateJob(ctx context.Context, posterID int64, req *dto.CreateJobRequest) (*dto.JobResponse, error) {
	if err := s.authorization.ValidateAlumni(ctx, posterID); err != nil {
		return nil, err
	}
	if err := s.authorization.ValidateEmailVerified(ctx, posterID); err != nil {
		return nil, err
	}
	if err := validateJobDates(req.ApplicationDeadline, req.ExpiresAt); err != nil {
		return nil, err
	}

	job := &models.Job{
		PostedByID:          posterID,
		Title:               req.Title,
		Company:             req.Company,
		Location:            req.Location,
		JobType:             models.JobType(req.JobType),
		Description:         req.Description,
		Requirements:        req.Requirements,
		SalaryRange:         req.SalaryRange,
		ApplicationDeadline: req.ApplicationDeadline,
		ExpiresAt:           req.ExpiresAt,
		IsActive:            true,
	}
	if err := s.jobStore.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job posting: %w", err)
	}

	response := dto.ToJobResponse(job)
	return &response, nil
}

// UpdateJob edits a posting the caller owns
func (s *JobService) UpdateJob(ctx context.Context, userID, jobID int64, req *dto.UpdateJobRequest) (*dto.JobResponse, error) {
	if err := s.authorization.ValidateJobOwnership(ctx, jobID, userID); err != nil {
		return nil, err
	}
	if err := validateJobDates(req.ApplicationDeadline, req.ExpiresAt); err != nil {
		return nil, err
	}

	job, err := s.jobStore.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	job.Title = req.Title
	job.Company = req.Company
	job.Location = req.Location
	job.JobType = models.JobType(req.JobType)
	job.Description = req.Description
	job.Requirements = req.Requirements
	job.SalaryRange = req.SalaryRange
	job.ApplicationDeadline = req.ApplicationDeadline
	job.ExpiresAt = req.ExpiresAt
	if req.IsActive != nil {
		job.IsActive = *req.IsActive
	}

	if err := s.jobStore.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job posting: %w", err)
	}

	response := dto.ToJobResponse(job)
	return &response, nil
}

// DeleteJob removes a posting the caller owns, applications included
func (s *JobService) DeleteJob(ctx context.Context, userID, jobID int64) error {
	if err := s.authorization.ValidateJobOwnership(ctx, jobID, userID); err != nil {
		return err
	}
	return s.jobStore.Delete(ctx, jobID)
}

// GetJob returns one posting
func (s *JobService) GetJob(ctx context.Context, jobID int64) (*dto.JobResponse, error) {
	job, err := s.jobStore.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	response := dto.ToJobResponse(job)
	return &response, nil
}

// ListJobs returns active, unexpired postings matching the filter
func (s *JobService) ListJobs(ctx context.Context, filter *dto.JobFilterRequest) (*dto.JobListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)

	jobs, total, err := s.jobStore.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}

	responses := make([]dto.JobResponse, 0, len(jobs))
	for _, job := range jobs {
		responses = append(responses, dto.ToJobResponse(job))
	}

	return &dto.JobListResponse{
		Jobs:           responses,
		PaginationInfo: helpers.NewPaginationInfo(total, filter.Page, limit),
	}, nil
}

// ListMyJobs returns the caller's own postings, inactive ones included
func (s *JobService) ListMyJobs(ctx context.Context, userID int64, page, pageSize int) (*dto.JobListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)

	jobs, total, err := s.jobStore.ListByPoster(ctx, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}

	responses := make([]dto.JobResponse, 0, len(jobs))
	for _, job := range jobs {
		responses = append(responses, dto.ToJobResponse(job))
	}

	return &dto.JobListResponse{
		Jobs:           responses,
		PaginationInfo: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

// Apply submits an application to an open posting. Students only, one per
// user per job.
func (s *JobService) Apply(ctx context.Context, applicantID, jobID int64) (*dto.JobApplicationResponse, error) {
	if err := s.authorization.ValidateStudent(ctx, applicantID); err != nil {
		return nil, err
	}

	job, err := s.jobStore.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if !job.AcceptsApplications(time.Now()) {
		return nil, apperrors.ErrJobClosed
	}

	app := &models.JobApplication{
		JobID:       jobID,
		ApplicantID: applicantID,
		Status:      models.ApplicationApplied,
	}
	if err := s.jobStore.CreateApplication(ctx, app); err != nil {
		return nil, err
	}

	response := dto.ToJobApplicationResponse(app)
	return &response, nil
}

// ListApplications returns the applications to a posting the caller owns
func (s *JobService) ListApplications(ctx context.Context, userID, jobID int64) (*dto.JobApplicationListResponse, error) {
	if err := s.authorization.ValidateJobOwnership(ctx, jobID, userID); err != nil {
		return nil, err
	}

	apps, err := s.jobStore.ListApplications(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	responses := make([]dto.JobApplicationResponse, 0, len(apps))
	for _, app := range apps {
		responses = append(responses, dto.ToJobApplicationResponse(app))
	}

	return &dto.JobApplicationListResponse{Applications: responses}, nil
}

// ListMyApplications returns the caller's applications across postings
func (s *JobService) ListMyApplications(ctx context.Context, userID int64) (*dto.JobApplicationListResponse, error) {
	apps, err := s.jobStore.ListApplicationsByApplicant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	responses := make([]dto.JobApplicationResponse, 0, len(apps))
	for _, app := range apps {
		responses = append(responses, dto.ToJobApplicationResponse(app))
	}

	return &dto.JobApplicationListResponse{Applications: responses}, nil
}

// UpdateApplicationStatus moves an application through review. Poster only.
func (s *JobService) UpdateApplicationStatus(ctx context.Context, userID, applicationID int64, status string) (*dto.JobApplicationResponse, error) {
	app, err := s.jobStore.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if err := s.authorization.ValidateJobOwnership(ctx, app.JobID, userID); err != nil {
		return nil, err
	}

	if err := s.jobStore.UpdateApplicationStatus(ctx, applicationID, models.ApplicationStatus(status)); err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}
	app.Status = models.ApplicationStatus(status)

	response := dto.ToJobApplicationResponse(app)
	return &response, nil
}

// ExportApplicants builds an XLSX workbook of a posting's applicants.
// Poster only. Returns the file bytes and a suggested filename.
func (s *JobService) ExportApplicants(ctx context.Context, userID, jobID int64) ([]byte, string, error) {
	if err := s.authorization.ValidateJobOwnership(ctx, jobID, userID); err != nil {
		return nil, "", err
	}

	job, err := s.jobStore.GetByID(ctx, jobID)
	if err != nil {
		return nil, "", err
	}

	apps, err := s.jobStore.ListApplications(ctx, jobID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list applications: %w", err)
	}

	data, err := export.WriteApplicantsXLSX(job, apps)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build export: %w", err)
	}

	return data, export.ExportFilename(job), nil
}

// validateJobDates rejects deadlines or expiries in the past
func validateJobDates(deadline, expiresAt *time.Time) error {
	now := time.Now()
	if deadline != nil && deadline.Before(now) {
		return apperrors.NewBadRequestError("Application deadline must be in the future")
	}
	if expiresAt != nil && expiresAt.Before(now) {
		return apperrors.NewBadRequestError("Expiry must be in the future")
	}
	return nil
}
