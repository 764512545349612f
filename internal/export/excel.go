package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"ats-go/internal/constants"
	"ats-go/internal/service"
	"ats-go/internal/storage/models"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet      = "Summary"
	applicationsSheet = "Applications"
)

// ContentType .xlsx 的 MIME 类型
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var scoreDetailKeys = []string{"skills_match", "experience_match", "education_match"}

// ApplicationsReport 生成岗位申请报表：概要页 + 按匹配分数排序的申请明细页
func ApplicationsReport(job *models.Job, rows []service.ApplicationRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(applicationsSheet); err != nil {
		return nil, err
	}

	if err := writeSummarySheet(f, job, rows); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeApplicationsSheet(f, rows); err != nil {
		return nil, fmt.Errorf("failed to create applications sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename 下载时使用的文件名
func Filename(job *models.Job, now time.Time) string {
	return fmt.Sprintf("applications_%s_%s.xlsx", job.ID, now.Format("2006-01-02"))
}

func writeSummarySheet(f *excelize.File, job *models.Job, rows []service.ApplicationRow) error {
	f.SetColWidth(summarySheet, "A", "A", 25)
	f.SetColWidth(summarySheet, "B", "B", 50)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	f.SetCellValue(summarySheet, "A1", "Job Applications Report")
	f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
	f.MergeCell(summarySheet, "A1", "B1")

	applied, notAFit := 0, 0
	var total float64
	for _, r := range rows {
		total += r.MatchScore
		if r.Stage == constants.StageNotAFit {
			notAFit++
		} else {
			applied++
		}
	}
	avg := 0.0
	if len(rows) > 0 {
		avg = total / float64(len(rows))
	}

	lines := []struct {
		label string
		value interface{}
	}{
		{"Job Title:", job.JobTitle},
		{"Status:", job.Status},
		{"Generated:", time.Now().Format("2006-01-02 15:04:05")},
		{"Total Applications:", len(rows)},
		{"Not a Fit:", notAFit},
		{"In Pipeline:", applied},
		{"Average Score:", fmt.Sprintf("%.2f", avg)},
	}
	for i, l := range lines {
		row := i + 3
		label := fmt.Sprintf("A%d", row)
		f.SetCellValue(summarySheet, label, l.label)
		f.SetCellStyle(summarySheet, label, label, labelStyle)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), l.value)
	}
	return nil
}

func writeApplicationsSheet(f *excelize.File, rows []service.ApplicationRow) error {
	headers := []string{"Rank", "Candidate", "Email", "Match Score", "Skills", "Experience", "Education", "Stage", "Applied At"}
	widths := []float64{8, 25, 30, 12, 12, 12, 12, 14, 20}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(applicationsSheet, col, col, w)
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return err
	}
	fitStyle, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
		Border: border,
	})
	if err != nil {
		return err
	}
	notFitStyle, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
		Border: border,
	})
	if err != nil {
		return err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(applicationsSheet, cell, h)
		f.SetCellStyle(applicationsSheet, cell, cell, headerStyle)
	}

	for i, r := range rows {
		row := i + 2
		details := scoreDetails(r.ScoreDetails)
		values := []interface{}{
			i + 1,
			r.CandidateName,
			r.CandidateEmail,
			r.MatchScore,
			details[scoreDetailKeys[0]],
			details[scoreDetailKeys[1]],
			details[scoreDetailKeys[2]],
			r.Stage,
			r.AppliedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(applicationsSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}

		style := fitStyle
		if r.Stage == constants.StageNotAFit {
			style = notFitStyle
		}
		f.SetCellStyle(applicationsSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("I%d", row), style)
	}

	if len(rows) > 0 {
		f.AutoFilter(applicationsSheet, fmt.Sprintf("A1:I%d", len(rows)+1), []excelize.AutoFilterOptions{})
	}
	return f.SetPanes(applicationsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// scoreDetails 解析分项分数，缺失或格式不对时按 0 处理
func scoreDetails(raw []byte) map[string]float64 {
	m := map[string]float64{}
	if len(raw) == 0 {
		return m
	}
	_ = json.Unmarshal(raw, &m)
	return m
}
