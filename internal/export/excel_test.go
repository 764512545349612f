package export

import (
	"bytes"
	"testing"
	"time"

	"ats-go/internal/constants"
	"ats-go/internal/service"
	"ats-go/internal/storage/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestApplicationsReport(t *testing.T) {
	job := &models.Job{ID: "job-1", JobTitle: "Data Engineer", Status: constants.JobStatusOpen}
	applied := time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local)
	rows := []service.ApplicationRow{
		{
			JobApplication: models.JobApplication{
				MatchScore:   88,
				ScoreDetails: []byte(`{"skills_match":90,"experience_match":85,"education_match":80}`),
				Stage:        constants.StageApplied,
				AppliedAt:    applied,
			},
			CandidateName:  "Ada",
			CandidateEmail: "ada@example.com",
		},
		{
			JobApplication: models.JobApplication{
				MatchScore: 20,
				Stage:      constants.StageNotAFit,
				AppliedAt:  applied,
			},
			CandidateName:  "Bob",
			CandidateEmail: "bob@example.com",
		},
	}

	data, err := ApplicationsReport(job, rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, applicationsSheet}, f.GetSheetList())

	got, err := f.GetRows(applicationsSheet)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Candidate", got[0][1])
	assert.Equal(t, []string{"1", "Ada", "ada@example.com", "88", "90", "85", "80", "Applied", "2026-03-01 09:30:00"}, got[1])
	assert.Equal(t, "Bob", got[2][1])
	assert.Equal(t, "0", got[2][4], "缺失的分项分数按 0 导出")

	title, err := f.GetCellValue(summarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Data Engineer", title)
	total, err := f.GetCellValue(summarySheet, "B6")
	require.NoError(t, err)
	assert.Equal(t, "2", total)
}

func TestApplicationsReport_Empty(t *testing.T) {
	data, err := ApplicationsReport(&models.Job{ID: "j", JobTitle: "Empty"}, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(applicationsSheet)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFilename(t *testing.T) {
	name := Filename(&models.Job{ID: "abc"}, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "applications_abc_2026-01-02.xlsx", name)
}
