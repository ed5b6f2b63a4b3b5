package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/uniconnect/backend/internal/app/models"
)

func TestWriteApplicantsXLSX(t *testing.T) {
	job := &models.Job{ID: 7, Title: "Backend Engineer", Company: "Acme"}
	appliedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	apps := []*models.JobApplication{
		{
			JobID:     7,
			Status:    models.ApplicationApplied,
			AppliedAt: appliedAt,
			Applicant: &models.User{
				FirstName:      "Jane",
				LastName:       "Doe",
				Email:          "jane@university.edu",
				College:        "Engineering College",
				Branch:         "CS",
				GraduationYear: 2024,
			},
		},
		{
			JobID:     7,
			Status:    models.ApplicationShortlisted,
			AppliedAt: appliedAt.Add(time.Hour),
			Applicant: &models.User{
				FirstName: "Max",
				LastName:  "Roe",
				Email:     "max@university.edu",
			},
		},
	}

	data, err := WriteApplicantsXLSX(job, apps)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ApplicantsSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Applicant", rows[0][0])
	assert.Equal(t, "Jane Doe", rows[1][0])
	assert.Equal(t, "jane@university.edu", rows[1][1])
	assert.Equal(t, "APPLIED", rows[1][5])
	assert.Equal(t, "Max Roe", rows[2][0])
	assert.Equal(t, "SHORTLISTED", rows[2][5])
}

func TestWriteApplicantsXLSX_Empty(t *testing.T) {
	job := &models.Job{ID: 3}

	data, err := WriteApplicantsXLSX(job, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ApplicantsSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "applicants-job-9.xlsx", ExportFilename(&models.Job{ID: 9}))
}
