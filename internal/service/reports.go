package service

import (
	"context"
	"fmt"

	"ats-go/internal/constants"
	"ats-go/internal/storage/models"

	"gorm.io/gorm"
)

// SummaryStats 招聘整体统计
type SummaryStats struct {
	TotalJobs         int64 `json:"total_jobs"`
	OpenJobs          int64 `json:"open_jobs"`
	ClosedJobs        int64 `json:"closed_jobs"`
	TotalApplications int64 `json:"total_applications"`
}

// JobStatusCount 各状态的岗位数
type JobStatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// ReportService 报表
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// Summary 岗位数、开放/关闭岗位数与申请总数
func (s *ReportService) Summary(ctx context.Context) (*SummaryStats, error) {
	db := s.db.WithContext(ctx)
	var stats SummaryStats

	if err := db.Model(&models.Job{}).Count(&stats.TotalJobs).Error; err != nil {
		return nil, fmt.Errorf("统计岗位失败: %w", err)
	}
	if err := db.Model(&models.Job{}).Where("status = ?", constants.JobStatusOpen).Count(&stats.OpenJobs).Error; err != nil {
		return nil, fmt.Errorf("统计开放岗位失败: %w", err)
	}
	if err := db.Model(&models.Job{}).Where("status = ?", constants.JobStatusClosed).Count(&stats.ClosedJobs).Error; err != nil {
		return nil, fmt.Errorf("统计关闭岗位失败: %w", err)
	}
	if err := db.Model(&models.JobApplication{}).Count(&stats.TotalApplications).Error; err != nil {
		return nil, fmt.Errorf("统计申请失败: %w", err)
	}
	return &stats, nil
}

// JobsByStatus 按状态分组的岗位数
func (s *ReportService) JobsByStatus(ctx context.Context) ([]JobStatusCount, error) {
	rows := []JobStatusCount{}
	err := s.db.WithContext(ctx).
		Model(&models.Job{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("按状态统计岗位失败: %w", err)
	}
	return rows, nil
}
