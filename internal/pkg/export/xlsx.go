package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/uniconnect/backend/internal/app/models"
)

// ApplicantsSheetName is the worksheet holding the applicant rows.
const ApplicantsSheetName = "Applicants"

var applicantHeaders = []string{
	"Applicant", "Email", "College", "Branch", "Graduation Year", "Status", "Applied At",
}

// WriteApplicantsXLSX renders the applications of a job posting into an
// XLSX workbook and returns its bytes. Rows keep the order they were given in.
func WriteApplicantsXLSX(job *models.Job, applications []*models.JobApplication) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ApplicantsSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	for col, header := range applicantHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(ApplicantsSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		lastCell, _ := excelize.CoordinatesToCellName(len(applicantHeaders), 1)
		_ = f.SetCellStyle(ApplicantsSheetName, "A1", lastCell, headerStyle)
	}

	for i, app := range applications {
		row := i + 2
		values := applicantRow(app)
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(ApplicantsSheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func applicantRow(app *models.JobApplication) []interface{} {
	name, email, college, branch := "", "", "", ""
	gradYear := 0
	if app.Applicant != nil {
		name = app.Applicant.FullName()
		email = app.Applicant.Email
		college = app.Applicant.College
		branch = app.Applicant.Branch
		gradYear = app.Applicant.GraduationYear
	}
	return []interface{}{
		name,
		email,
		college,
		branch,
		gradYear,
		string(app.Status),
		app.AppliedAt.Format(time.RFC3339),
	}
}

// ExportFilename builds a download filename from the posting title.
func ExportFilename(job *models.Job) string {
	return fmt.Sprintf("applicants-job-%d.xlsx", job.ID)
}
