package dto

import (
	"time"

	"github.com/uniconnect/backend/internal/app/models"
)

// --- Request DTOs ---

// CreateJobRequest represents a new job posting
type CreateJobRequest struct {
	Title               string     `json:"title" binding:"required,min=3,max=200"`
	Company             string     `json:"company" binding:"required,max=200"`
	Location            string     `json:"location" binding:"required,max=200"`
	JobType             string     `json:"jobType" binding:"required,oneof=FULL_TIME PART_TIME INTERNSHIP CONTRACT"`
	Description         string     `json:"description" binding:"required"`
	Requirements        *string    `json:"requirements"`
	SalaryRange         *string    `json:"salaryRange" binding:"omitempty,max=100"`
	ApplicationDeadline *time.Time `json:"applicationDeadline"`
	ExpiresAt           *time.Time `json:"expiresAt"`
}

// UpdateJobRequest represents edits to an existing posting
type UpdateJobRequest struct {
	Title               string     `json:"title" binding:"required,min=3,max=200"`
	Company             string     `json:"company" binding:"required,max=200"`
	Location            string     `json:"location" binding:"required,max=200"`
	JobType             string     `json:"jobType" binding:"required,oneof=FULL_TIME PART_TIME INTERNSHIP CONTRACT"`
	Description         string     `json:"description" binding:"required"`
	Requirements        *string    `json:"requirements"`
	SalaryRange         *string    `json:"salaryRange" binding:"omitempty,max=100"`
	ApplicationDeadline *time.Time `json:"applicationDeadline"`
	ExpiresAt           *time.Time `json:"expiresAt"`
	IsActive            *bool      `json:"isActive"`
}

// JobFilterRequest represents listing and search parameters
type JobFilterRequest struct {
	Query    *string `form:"q"` // Full-text search over title, company, description and location
	JobType  *string `form:"jobType" binding:"omitempty,oneof=FULL_TIME PART_TIME INTERNSHIP CONTRACT"`
	Location *string `form:"location"`
	Company  *string `form:"company"`
	Page     int     `form:"page,default=1" binding:"min=1"`
	PageSize int     `form:"pageSize,default=10" binding:"min=1,max=100"`
}

// UpdateApplicationStatusRequest moves an application through review
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=APPLIED SHORTLISTED REJECTED HIRED"`
}

// --- Response DTOs ---

// JobResponse represents a job posting
type JobResponse struct {
	ID                  int64      `json:"id"`
	Title               string     `json:"title"`
	Company             string     `json:"company"`
	Location            string     `json:"location"`
	JobType             string     `json:"jobType"`
	Description         string     `json:"description"`
	Requirements        *string    `json:"requirements,omitempty"`
	SalaryRange         *string    `json:"salaryRange,omitempty"`
	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty"`
	ExpiresAt           *time.Time `json:"expiresAt,omitempty"`
	IsActive            bool       `json:"isActive"`
	CreatedAt           time.Time  `json:"createdAt"`
	ApplicationCount    int        `json:"applicationCount,omitempty"`

	PostedBy *UserBasicResponse `json:"postedBy,omitempty"`
}

// JobListResponse represents a paginated job listing
type JobListResponse struct {
	Jobs []JobResponse `json:"jobs"`
	PaginationInfo
}

// JobApplicationResponse represents one application to a posting
type JobApplicationResponse struct {
	ID        int64     `json:"id"`
	JobID     int64     `json:"jobId"`
	Status    string    `json:"status"`
	AppliedAt time.Time `json:"appliedAt"`

	Applicant *UserBasicResponse `json:"applicant,omitempty"`
	Job       *JobResponse       `json:"job,omitempty"`
}

// JobApplicationListResponse represents the applications of a posting
type JobApplicationListResponse struct {
	Applications []JobApplicationResponse `json:"applications"`
}

// ToJobResponse maps a job model to its API representation
func ToJobResponse(job *models.Job) JobResponse {
	return JobResponse{
		ID:                  job.ID,
		Title:               job.Title,
		Company:             job.Company,
		Location:            job.Location,
		JobType:             string(job.JobType),
		Description:         job.Description,
		Requirements:        job.Requirements,
		SalaryRange:         job.SalaryRange,
		ApplicationDeadline: job.ApplicationDeadline,
		ExpiresAt:           job.ExpiresAt,
		IsActive:            job.IsActive,
		CreatedAt:           job.CreatedAt,
		ApplicationCount:    job.ApplicationCount,
		PostedBy:            ToUserBasicResponse(job.PostedBy),
	}
}

// ToJobApplicationResponse maps an application model to its API representation
func ToJobApplicationResponse(app *models.JobApplication) JobApplicationResponse {
	resp := JobApplicationResponse{
		ID:        app.ID,
		JobID:     app.JobID,
		Status:    string(app.Status),
		AppliedAt: app.AppliedAt,
		Applicant: ToUserBasicResponse(app.Applicant),
	}
	if app.Job != nil {
		job := ToJobResponse(app.Job)
		resp.Job = &job
	}
	return resp
}
