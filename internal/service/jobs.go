package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ats-go/internal/ai"
	"ats-go/internal/constants"
	"ats-go/internal/logger"
	"ats-go/internal/processor"
	"ats-go/internal/storage/models"
	"ats-go/pkg/utils"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// StageTemplateInput 创建岗位时附带的面试阶段
type StageTemplateInput struct {
	StageName       string `json:"stage_name"`
	InterviewerInfo string `json:"interviewer_info"`
	Sequence        int    `json:"sequence"`
}

// CreateJobRequest 创建岗位请求
type CreateJobRequest struct {
	JobTitle           string               `json:"job_title"`
	Description        string               `json:"description"`
	DepartmentID       string               `json:"department_id"`
	PortfolioID        string               `json:"portfolio_id"`
	Status             string               `json:"status"`
	ExperienceRequired string               `json:"experience_required"`
	JobType            string               `json:"job_type"`
	Location           string               `json:"location"`
	RequiredSkills     []string             `json:"required_skills"`
	InterviewStages    []StageTemplateInput `json:"interview_stages"`
}

// GenerateJDRequest AI 生成岗位描述请求
type GenerateJDRequest struct {
	Title      string   `json:"title"`
	Skills     []string `json:"skills"`
	Experience string   `json:"experience"`
}

// JobService 岗位相关操作
type JobService struct {
	db    *gorm.DB
	ai    *ai.Client
	cache Cache
	log   zerolog.Logger
}

// NewJobService 创建岗位服务，cache 可以为 nil
func NewJobService(db *gorm.DB, aiClient *ai.Client, cache Cache) *JobService {
	return &JobService{
		db:    db,
		ai:    aiClient,
		cache: cache,
		log:   logger.Named("job-service"),
	}
}

// Create 在一个事务中创建岗位、必备技能关联和面试阶段模板
func (s *JobService) Create(ctx context.Context, req CreateJobRequest, actorID string) (*models.Job, error) {
	title := strings.TrimSpace(req.JobTitle)
	if title == "" {
		return nil, invalid("job_title is required")
	}
	status := req.Status
	if status == "" {
		status = constants.JobStatusOpen
	}
	if status != constants.JobStatusOpen && status != constants.JobStatusClosed {
		return nil, invalid("unknown job status %q", status)
	}

	job := models.Job{
		ID:                 models.NewID(),
		JobTitle:           title,
		Description:        req.Description,
		DepartmentID:       utils.StringPtr(req.DepartmentID),
		PortfolioID:        utils.StringPtr(req.PortfolioID),
		Status:             status,
		ExperienceRequired: req.ExperienceRequired,
		JobType:            req.JobType,
		Location:           req.Location,
		CreatedBy:          actorID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("RequiredSkills", "InterviewStages").Create(&job).Error; err != nil {
			return fmt.Errorf("创建岗位失败: %w", err)
		}

		for _, name := range processor.NormalizeSkills(req.RequiredSkills) {
			skill, err := processor.FindOrCreateSkill(tx, name, actorID)
			if err != nil {
				return err
			}
			if err := tx.Model(&job).Association("RequiredSkills").Append(skill); err != nil {
				return fmt.Errorf("关联岗位技能失败: %w", err)
			}
		}

		for _, st := range req.InterviewStages {
			tmpl := models.InterviewStageTemplate{
				ID:              models.NewID(),
				JobID:           job.ID,
				StageName:       st.StageName,
				InterviewerInfo: st.InterviewerInfo,
				Sequence:        st.Sequence,
			}
			if err := tx.Create(&tmpl).Error; err != nil {
				return fmt.Errorf("创建面试阶段失败: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("job_title", title).Msg("创建岗位失败")
		return nil, err
	}

	s.log.Info().Str("job_id", job.ID).Str("actor", actorID).Msg("岗位已创建")
	return s.Get(ctx, job.ID)
}

// List 分页列出岗位
func (s *JobService) List(ctx context.Context, skip, limit int) ([]models.Job, error) {
	skip, limit = utils.ClampPage(skip, limit, 100, 1000)
	jobs := []models.Job{}
	err := s.db.WithContext(ctx).
		Preload("RequiredSkills").
		Preload("InterviewStages").
		Order("created_at").
		Offset(skip).Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("查询岗位列表失败: %w", err)
	}
	return jobs, nil
}

// Get 按 ID 读取岗位及其技能和面试阶段
func (s *JobService) Get(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	err := s.db.WithContext(ctx).
		Preload("RequiredSkills").
		Preload("InterviewStages", func(db *gorm.DB) *gorm.DB { return db.Order("sequence") }).
		First(&job, "id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("job")
	}
	if err != nil {
		return nil, fmt.Errorf("查询岗位失败: %w", err)
	}
	return &job, nil
}

// Applications 列出岗位下的申请，可按阶段过滤，按匹配分数降序
func (s *JobService) Applications(ctx context.Context, jobID, stage string) ([]models.JobApplication, error) {
	if err := s.ensureJob(ctx, jobID); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Where("job_id = ?", jobID)
	if stage != "" {
		q = q.Where("stage = ?", stage)
	}
	apps := []models.JobApplication{}
	if err := q.Order("match_score DESC").Order("applied_at").Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("查询申请列表失败: %w", err)
	}
	return apps, nil
}

// ApplicationRow 导出报表中的一行
type ApplicationRow struct {
	models.JobApplication
	CandidateName  string
	CandidateEmail string
}

// ApplicationRows 与 Applications 相同的排序，额外带上候选人姓名与邮箱
func (s *JobService) ApplicationRows(ctx context.Context, jobID string) ([]ApplicationRow, error) {
	apps, err := s.Applications(ctx, jobID, "")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.CandidateID)
	}
	var candidates []models.Candidate
	if len(ids) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&candidates).Error; err != nil {
			return nil, fmt.Errorf("查询候选人失败: %w", err)
		}
	}
	byID := make(map[string]models.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	rows := make([]ApplicationRow, 0, len(apps))
	for _, a := range apps {
		c := byID[a.CandidateID]
		rows = append(rows, ApplicationRow{JobApplication: a, CandidateName: c.FullName, CandidateEmail: c.Email})
	}
	return rows, nil
}

// StageTemplates 岗位的面试阶段，按 Sequence 升序；岗位没有配置时返回空列表
func (s *JobService) StageTemplates(ctx context.Context, jobID string) ([]models.InterviewStageTemplate, error) {
	stages := []models.InterviewStageTemplate{}
	err := s.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("sequence").
		Find(&stages).Error
	if err != nil {
		return nil, fmt.Errorf("查询面试阶段失败: %w", err)
	}
	return stages, nil
}

// GenerateJobDescription 调用 AI 生成岗位描述。配置了缓存时，相同输入直接返回缓存结果
func (s *JobService) GenerateJobDescription(ctx context.Context, req GenerateJDRequest) (string, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return "", invalid("title is required")
	}

	var key string
	if s.cache != nil {
		key = s.cache.FormatKey(constants.KeyGeneratedJD,
			utils.HashParts(title, strings.Join(req.Skills, ","), req.Experience))
		var cached string
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
			s.log.Warn().Err(err).Msg("读取岗位描述缓存失败")
		} else if hit {
			return cached, nil
		}
	}

	jd, err := s.ai.GenerateJobDescription(ctx, title, req.Skills, req.Experience)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, jd, 0); err != nil {
			s.log.Warn().Err(err).Msg("写入岗位描述缓存失败")
		}
	}
	return jd, nil
}

func (s *JobService) ensureJob(ctx context.Context, jobID string) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", jobID).Count(&n).Error; err != nil {
		return fmt.Errorf("查询岗位失败: %w", err)
	}
	if n == 0 {
		return notFound("job")
	}
	return nil
}
