package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uniconnect/backend/internal/app/models"
	"github.com/uniconnect/backend/internal/app/models/dto"
	"github.com/uniconnect/backend/internal/pkg/apperrors"
	"github.com/uniconnect/backend/internal/pkg/dberrors"
)

// JobRepository handles database operations for job postings and applications
type JobRepository struct {
	db *pgxpool.Pool
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db *pgxpool.Pool) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `j.id, j.posted_by_id, j.title, j.company, j.location, j.job_type,
	j.description, j.requirements, j.salary_range, j.application_deadline,
	j.expires_at, j.is_active, j.created_at, j.updated_at`

func scanJob(row pgx.Row) (*models.Job, error) {
	var j models.Job
	err := row.Scan(
		&j.ID,
		&j.PostedByID,
		&j.Title,
		&j.Company,
		&j.Location,
		&j.JobType,
		&j.Description,
		&j.Requirements,
		&j.SalaryRange,
		&j.ApplicationDeadline,
		&j.ExpiresAt,
		&j.IsActive,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// Create inserts a new job posting
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (
			posted_by_id, title, company, location, job_type, description,
			requirements, salary_range, application_deadline, expires_at, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		job.PostedByID,
		job.Title,
		job.Company,
		job.Location,
		job.JobType,
		job.Description,
		job.Requirements,
		job.SalaryRange,
		job.ApplicationDeadline,
		job.ExpiresAt,
		job.IsActive,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)

	if err != nil {
		return fmt.Errorf("error creating job: %w", err)
	}

	return nil
}

// GetByID retrieves a job posting with its poster
func (r *JobRepository) GetByID(ctx context.Context, id int64) (*models.Job, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			u.first_name, u.last_name, u.email, u.role_type, u.headline, u.profile_photo_url
		FROM jobs j
		JOIN users u ON j.posted_by_id = u.id
		WHERE j.id = $1
	`, jobColumns)

	var j models.Job
	var poster models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&j.ID,
		&j.PostedByID,
		&j.Title,
		&j.Company,
		&j.Location,
		&j.JobType,
		&j.Description,
		&j.Requirements,
		&j.SalaryRange,
		&j.ApplicationDeadline,
		&j.ExpiresAt,
		&j.IsActive,
		&j.CreatedAt,
		&j.UpdatedAt,
		&poster.FirstName,
		&poster.LastName,
		&poster.Email,
		&poster.RoleType,
		&poster.Headline,
		&poster.ProfilePhotoURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, fmt.Errorf("error retrieving job: %w", err)
	}

	poster.ID = j.PostedByID
	j.PostedBy = &poster
	return &j, nil
}

// List retrieves visible job postings matching the filters. Expired and
// deactivated posts are hidden from the listing.
func (r *JobRepository) List(ctx context.Context, filter *dto.JobFilterRequest, offset uint64, limit int) ([]*models.Job, int64, error) {
	base := squirrel.Select().
		From("jobs j").
		Where(squirrel.Eq{"j.is_active": true}).
		Where("(j.expires_at IS NULL OR j.expires_at > NOW())").
		PlaceholderFormat(squirrel.Dollar)

	if filter.Query != nil && *filter.Query != "" {
		base = base.Where(
			"j.search_vector @@ plainto_tsquery('english', ?)",
			*filter.Query,
		)
	}
	if filter.JobType != nil && *filter.JobType != "" {
		base = base.Where(squirrel.Eq{"j.job_type": *filter.JobType})
	}
	if filter.Location != nil && *filter.Location != "" {
		base = base.Where("j.location ILIKE ?", "%"+*filter.Location+"%")
	}
	if filter.Company != nil && *filter.Company != "" {
		base = base.Where("j.company ILIKE ?", "%"+*filter.Company+"%")
	}

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building count SQL: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting jobs: %w", err)
	}

	listSQL, listArgs, err := base.
		Columns(jobColumns,
			"u.first_name", "u.last_name", "u.email", "u.role_type", "u.headline", "u.profile_photo_url").
		JoinClause("JOIN users u ON j.posted_by_id = u.id").
		OrderBy("j.created_at DESC", "j.id DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building list SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		var j models.Job
		var poster models.User
		err := rows.Scan(
			&j.ID,
			&j.PostedByID,
			&j.Title,
			&j.Company,
			&j.Location,
			&j.JobType,
			&j.Description,
			&j.Requirements,
			&j.SalaryRange,
			&j.ApplicationDeadline,
			&j.ExpiresAt,
			&j.IsActive,
			&j.CreatedAt,
			&j.UpdatedAt,
			&poster.FirstName,
			&poster.LastName,
			&poster.Email,
			&poster.RoleType,
			&poster.Headline,
			&poster.ProfilePhotoURL,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning job row: %w", err)
		}
		poster.ID = j.PostedByID
		j.PostedBy = &poster
		jobs = append(jobs, &j)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating job rows: %w", err)
	}

	return jobs, total, nil
}

// ListByPoster retrieves every posting of one owner, including inactive ones
func (r *JobRepository) ListByPoster(ctx context.Context, posterID int64, offset uint64, limit int) ([]*models.Job, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM jobs WHERE posted_by_id = $1`, posterID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting jobs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s,
			(SELECT COUNT(*) FROM job_applications a WHERE a.job_id = j.id)
		FROM jobs j
		WHERE j.posted_by_id = $1
		ORDER BY j.created_at DESC, j.id DESC
		OFFSET $2 LIMIT $3
	`, jobColumns)

	rows, err := r.db.Query(ctx, query, posterID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing jobs by poster: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		var j models.Job
		err := rows.Scan(
			&j.ID,
			&j.PostedByID,
			&j.Title,
			&j.Company,
			&j.Location,
			&j.JobType,
			&j.Description,
			&j.Requirements,
			&j.SalaryRange,
			&j.ApplicationDeadline,
			&j.ExpiresAt,
			&j.IsActive,
			&j.CreatedAt,
			&j.UpdatedAt,
			&j.ApplicationCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning job row: %w", err)
		}
		jobs = append(jobs, &j)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating job rows: %w", err)
	}

	return jobs, total, nil
}

// Update rewrites the editable fields of a posting
func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	query := `
		UPDATE jobs
		SET title = $2, company = $3, location = $4, job_type = $5, description = $6,
			requirements = $7, salary_range = $8, application_deadline = $9,
			expires_at = $10, is_active = $11, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		job.ID,
		job.Title,
		job.Company,
		job.Location,
		job.JobType,
		job.Description,
		job.Requirements,
		job.SalaryRange,
		job.ApplicationDeadline,
		job.ExpiresAt,
		job.IsActive,
	)
	if err != nil {
		return fmt.Errorf("error updating job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrJobNotFound
	}

	return nil
}

// Delete removes a posting and its applications
func (r *JobRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrJobNotFound
	}
	return nil
}

// CreateApplication inserts a new application for a posting
func (r *JobRepository) CreateApplication(ctx context.Context, app *models.JobApplication) error {
	query := `
		INSERT INTO job_applications (job_id, applicant_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, applied_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		app.JobID,
		app.ApplicantID,
		app.Status,
	).Scan(&app.ID, &app.AppliedAt, &app.UpdatedAt)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "job_applications_job_applicant_key") {
			return apperrors.ErrAlreadyApplied
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrJobNotFound
		}
		return fmt.Errorf("error creating application: %w", err)
	}

	return nil
}

// GetApplication retrieves a single application by ID
func (r *JobRepository) GetApplication(ctx context.Context, id int64) (*models.JobApplication, error) {
	query := `
		SELECT id, job_id, applicant_id, status, applied_at, updated_at
		FROM job_applications
		WHERE id = $1
	`

	var a models.JobApplication
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.JobID,
		&a.ApplicantID,
		&a.Status,
		&a.AppliedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationMissing
		}
		return nil, fmt.Errorf("error retrieving application: %w", err)
	}

	return &a, nil
}

// ListApplications retrieves the applications of a posting with applicants
func (r *JobRepository) ListApplications(ctx context.Context, jobID int64) ([]*models.JobApplication, error) {
	query := `
		SELECT a.id, a.job_id, a.applicant_id, a.status, a.applied_at, a.updated_at,
			u.first_name, u.last_name, u.email, u.role_type, u.college, u.branch,
			u.graduation_year, u.headline, u.profile_photo_url
		FROM job_applications a
		JOIN users u ON a.applicant_id = u.id
		WHERE a.job_id = $1
		ORDER BY a.applied_at ASC, a.id ASC
	`

	rows, err := r.db.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.JobApplication
	for rows.Next() {
		var a models.JobApplication
		var applicant models.User
		err := rows.Scan(
			&a.ID,
			&a.JobID,
			&a.ApplicantID,
			&a.Status,
			&a.AppliedAt,
			&a.UpdatedAt,
			&applicant.FirstName,
			&applicant.LastName,
			&applicant.Email,
			&applicant.RoleType,
			&applicant.College,
			&applicant.Branch,
			&applicant.GraduationYear,
			&applicant.Headline,
			&applicant.ProfilePhotoURL,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning application row: %w", err)
		}
		applicant.ID = a.ApplicantID
		a.Applicant = &applicant
		apps = append(apps, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows: %w", err)
	}

	return apps, nil
}

// ListApplicationsByApplicant retrieves a user's applications with the jobs
func (r *JobRepository) ListApplicationsByApplicant(ctx context.Context, applicantID int64) ([]*models.JobApplication, error) {
	query := fmt.Sprintf(`
		SELECT a.id, a.job_id, a.applicant_id, a.status, a.applied_at, a.updated_at,
			%s
		FROM job_applications a
		JOIN jobs j ON a.job_id = j.id
		WHERE a.applicant_id = $1
		ORDER BY a.applied_at DESC, a.id DESC
	`, jobColumns)

	rows, err := r.db.Query(ctx, query, applicantID)
	if err != nil {
		return nil, fmt.Errorf("error listing applications by applicant: %w", err)
	}
	defer rows.Close()

	var apps []*models.JobApplication
	for rows.Next() {
		var a models.JobApplication
		var j models.Job
		err := rows.Scan(
			&a.ID,
			&a.JobID,
			&a.ApplicantID,
			&a.Status,
			&a.AppliedAt,
			&a.UpdatedAt,
			&j.ID,
			&j.PostedByID,
			&j.Title,
			&j.Company,
			&j.Location,
			&j.JobType,
			&j.Description,
			&j.Requirements,
			&j.SalaryRange,
			&j.ApplicationDeadline,
			&j.ExpiresAt,
			&j.IsActive,
			&j.CreatedAt,
			&j.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning application row: %w", err)
		}
		a.Job = &j
		apps = append(apps, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows: %w", err)
	}

	return apps, nil
}

// UpdateApplicationStatus moves an application to a new review status
func (r *JobRepository) UpdateApplicationStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	result, err := r.db.Exec(ctx, `
		UPDATE job_applications
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("error updating application status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrApplicationMissing
	}
	return nil
}
