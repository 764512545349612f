package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"ats-go/internal/ai"
	"ats-go/internal/constants"
	"ats-go/internal/logger"
	"ats-go/internal/outbox"
	"ats-go/internal/storage"
	"ats-go/internal/storage/models"
	"ats-go/pkg/utils"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ApplicationProfile 申请详情页
type ApplicationProfile struct {
	Application        models.JobApplication `json:"application"`
	Candidate          models.Candidate      `json:"candidate"`
	Job                models.Job            `json:"job"`
	AllCandidateSkills []models.Skill        `json:"all_candidate_skills"`
	MatchedSkills      []models.Skill        `json:"matched_skills"`
}

// UpdateStageRequest 阶段变更
type UpdateStageRequest struct {
	Stage string `json:"stage"`
	Notes string `json:"notes"`
}

// ApplicationService 申请的查询与工作流操作
type ApplicationService struct {
	db       *gorm.DB
	files    storage.FileStore
	ai       *ai.Client
	cache    Cache
	exchange string
	log      zerolog.Logger
}

// NewApplicationService 创建申请服务，cache 可以为 nil
func NewApplicationService(db *gorm.DB, files storage.FileStore, aiClient *ai.Client, cache Cache, exchange string) *ApplicationService {
	if exchange == "" {
		exchange = "ats.events"
	}
	return &ApplicationService{
		db:       db,
		files:    files,
		ai:       aiClient,
		cache:    cache,
		exchange: exchange,
		log:      logger.Named("application-service"),
	}
}

// Get 按 ID 读取申请
func (s *ApplicationService) Get(ctx context.Context, applicationID string) (*models.JobApplication, error) {
	var app models.JobApplication
	err := s.db.WithContext(ctx).First(&app, "id = ?", applicationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("application")
	}
	if err != nil {
		return nil, fmt.Errorf("查询申请失败: %w", err)
	}
	return &app, nil
}

// Profile 申请、候选人、岗位，以及候选人技能与岗位必备技能的交集（忽略大小写）
func (s *ApplicationService) Profile(ctx context.Context, applicationID string) (*ApplicationProfile, error) {
	app, err := s.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	profile := &ApplicationProfile{Application: *app}
	if err := db.First(&profile.Candidate, "id = ?", app.CandidateID).Error; err != nil {
		return nil, fmt.Errorf("查询候选人失败: %w", err)
	}
	if err := db.Preload("RequiredSkills").First(&profile.Job, "id = ?", app.JobID).Error; err != nil {
		return nil, fmt.Errorf("查询岗位失败: %w", err)
	}

	profile.AllCandidateSkills = []models.Skill{}
	err = db.Model(&models.Skill{}).
		Joins("JOIN candidate_skills ON candidate_skills.skill_id = skills.id").
		Where("candidate_skills.candidate_id = ?", app.CandidateID).
		Order("skills.skill_name").
		Find(&profile.AllCandidateSkills).Error
	if err != nil {
		return nil, fmt.Errorf("查询候选人技能失败: %w", err)
	}

	required := make(map[string]struct{}, len(profile.Job.RequiredSkills))
	for _, sk := range profile.Job.RequiredSkills {
		required[strings.ToLower(sk.SkillName)] = struct{}{}
	}
	profile.MatchedSkills = []models.Skill{}
	for _, sk := range profile.AllCandidateSkills {
		if _, ok := required[strings.ToLower(sk.SkillName)]; ok {
			profile.MatchedSkills = append(profile.MatchedSkills, sk)
		}
	}
	return profile, nil
}

// Insights 为申请生成面试筛选报告。结果按 (技能摘要, 岗位描述) 缓存
func (s *ApplicationService) Insights(ctx context.Context, applicationID string) (*ai.Insights, error) {
	app, err := s.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var candidate models.Candidate
	var job models.Job
	if err := db.First(&candidate, "id = ?", app.CandidateID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询候选人失败: %w", err)
	}
	if err := db.First(&job, "id = ?", app.JobID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询岗位失败: %w", err)
	}
	if strings.TrimSpace(candidate.ResumeSummary) == "" || strings.TrimSpace(job.Description) == "" {
		return nil, invalid("data missing for analysis")
	}

	var key string
	if s.cache != nil {
		key = s.cache.FormatKey(constants.KeyInsights, utils.HashParts(candidate.TechnicalSkillsSummary, job.Description))
		var cached ai.Insights
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
			s.log.Warn().Err(err).Msg("读取洞察缓存失败")
		} else if hit {
			return &cached, nil
		}
	}

	insights, err := s.ai.GetInsights(ctx, candidate.TechnicalSkillsSummary, job.Description)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, insights, 0); err != nil {
			s.log.Warn().Err(err).Msg("写入洞察缓存失败")
		}
	}
	return insights, nil
}

// UpdateStage 在一个事务中修改阶段、追加阶段日志并登记 application.stage_changed 事件
func (s *ApplicationService) UpdateStage(ctx context.Context, applicationID string, req UpdateStageRequest, actorID string) (*models.JobApplication, error) {
	stage := strings.TrimSpace(req.Stage)
	if stage == "" {
		return nil, invalid("stage is required")
	}

	var updated models.JobApplication
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, "id = ?", applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("application")
			}
			return fmt.Errorf("查询申请失败: %w", err)
		}
		previous := updated.Stage
		now := time.Now()

		err := tx.Model(&models.JobApplication{}).Where("id = ?", applicationID).Updates(map[string]interface{}{
			"stage":      stage,
			"updated_at": now,
			"updated_by": actorID,
		}).Error
		if err != nil {
			return fmt.Errorf("更新申请阶段失败: %w", err)
		}
		updated.Stage = stage
		updated.UpdatedAt = &now
		updated.UpdatedBy = actorID

		entry := models.ApplicationStageLog{
			ID:             models.NewID(),
			ApplicationID:  applicationID,
			Status:         stage,
			AssignorUserID: actorID,
			Notes:          req.Notes,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("写入阶段日志失败: %w", err)
		}

		event := storage.ApplicationStageChangedMessage{
			ApplicationID:  applicationID,
			CandidateID:    updated.CandidateID,
			JobID:          updated.JobID,
			PreviousStage:  previous,
			Stage:          stage,
			Notes:          req.Notes,
			AssignorUserID: actorID,
			OccurredAt:     now,
		}
		return outbox.Enqueue(tx, s.exchange, applicationID, constants.EventApplicationStageChanged, event)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("application_id", applicationID).
		Str("stage", stage).
		Str("actor", actorID).
		Msg("申请阶段已更新")
	return &updated, nil
}

// History 申请的阶段变更记录，按时间升序
func (s *ApplicationService) History(ctx context.Context, applicationID string) ([]models.ApplicationStageLog, error) {
	logs := []models.ApplicationStageLog{}
	err := s.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC").
		Order("id").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("查询阶段记录失败: %w", err)
	}
	return logs, nil
}

// OpenResume 打开候选人最近一次上传的简历原件，返回下载时使用的文件名
func (s *ApplicationService) OpenResume(ctx context.Context, candidateID string) (io.ReadCloser, string, error) {
	var candidate models.Candidate
	err := s.db.WithContext(ctx).First(&candidate, "id = ?", candidateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && candidate.ResumeFilePath == "") {
		return nil, "", notFound("resume file")
	}
	if err != nil {
		return nil, "", fmt.Errorf("查询候选人失败: %w", err)
	}

	rc, err := s.files.Open(ctx, candidate.ResumeFilePath)
	if errors.Is(err, storage.ErrFileNotFound) {
		return nil, "", notFound("resume file")
	}
	if err != nil {
		return nil, "", err
	}
	return rc, storage.OriginalFilename(candidate.ResumeFilePath), nil
}
