package models

import "time"

// Job represents a job posting created by an alumni user
type Job struct {
	ID                  int64      `json:"id" db:"id"`
	PostedByID          int64      `json:"postedById" db:"posted_by_id"`
	Title               string     `json:"title" db:"title"`
	Company             string     `json:"company" db:"company"`
	Location            string     `json:"location" db:"location"`
	JobType             JobType    `json:"jobType" db:"job_type"`
	Description         string     `json:"description" db:"description"`
	Requirements        *string    `json:"requirements,omitempty" db:"requirements"`
	SalaryRange         *string    `json:"salaryRange,omitempty" db:"salary_range"`
	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty" db:"application_deadline"`
	ExpiresAt           *time.Time `json:"expiresAt,omitempty" db:"expires_at"`
	IsActive            bool       `json:"isActive" db:"is_active"`
	CreatedAt           time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time  `json:"updatedAt" db:"updated_at"`

	// Related entities
	PostedBy         *User `json:"postedBy,omitempty"`
	ApplicationCount int   `json:"applicationCount,omitempty" db:"-"`
}

// AcceptsApplications reports whether the posting can still be applied to.
func (j *Job) AcceptsApplications(now time.Time) bool {
	if !j.IsActive {
		return false
	}
	if j.ApplicationDeadline != nil && now.After(*j.ApplicationDeadline) {
		return false
	}
	if j.ExpiresAt != nil && now.After(*j.ExpiresAt) {
		return false
	}
	return true
}

// JobApplication represents a student's application to a job posting
type JobApplication struct {
	ID          int64             `json:"id" db:"id"`
	JobID       int64             `json:"jobId" db:"job_id"`
	ApplicantID int64             `json:"applicantId" db:"applicant_id"`
	Status      ApplicationStatus `json:"status" db:"status"`
	AppliedAt   time.Time         `json:"appliedAt" db:"applied_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`

	// Related entities
	Applicant *User `json:"applicant,omitempty"`
	Job       *Job  `json:"job,omitempty"`
}
