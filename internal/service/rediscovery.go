package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"ats-go/internal/ai"
	"ats-go/internal/constants"
	"ats-go/internal/logger"
	"ats-go/internal/storage/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// RediscoveredCandidate 人才库中与岗位匹配的候选人
type RediscoveredCandidate struct {
	CandidateID  string  `json:"candidate_id"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	MatchScore   float64 `json:"match_score"`
	MatchSummary string  `json:"match_summary"`
}

// RediscoveryResult 人才再发现结果
type RediscoveryResult struct {
	JobTitle           string                  `json:"job_title"`
	MatchingCandidates []RediscoveredCandidate `json:"matching_candidates"`
}

// RediscoveryService 从已有候选人中找出适合新岗位的人
type RediscoveryService struct {
	db  *gorm.DB
	ai  *ai.Client
	log zerolog.Logger
}

// NewRediscoveryService 创建人才再发现服务
func NewRediscoveryService(db *gorm.DB, aiClient *ai.Client) *RediscoveryService {
	return &RediscoveryService{db: db, ai: aiClient, log: logger.Named("rediscovery")}
}

// Rediscover 对每个没有申请过该岗位、且有简历摘要的候选人调用一次 ScoreSummary。
// 单个候选人的 AI 错误只跳过该候选人；分数严格大于阈值才入选，结果按分数降序
func (s *RediscoveryService) Rediscover(ctx context.Context, jobID string) (*RediscoveryResult, error) {
	db := s.db.WithContext(ctx)

	var job models.Job
	if err := db.First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("job")
		}
		return nil, fmt.Errorf("查询岗位失败: %w", err)
	}

	var applied []string
	if err := db.Model(&models.JobApplication{}).Where("job_id = ?", jobID).Distinct().Pluck("candidate_id", &applied).Error; err != nil {
		return nil, fmt.Errorf("查询已申请候选人失败: %w", err)
	}
	skip := make(map[string]struct{}, len(applied))
	for _, id := range applied {
		skip[id] = struct{}{}
	}

	var pool []models.Candidate
	if err := db.Order("created_at").Find(&pool).Error; err != nil {
		return nil, fmt.Errorf("查询人才库失败: %w", err)
	}

	result := &RediscoveryResult{JobTitle: job.JobTitle, MatchingCandidates: []RediscoveredCandidate{}}
	for _, c := range pool {
		if strings.TrimSpace(c.ResumeSummary) == "" {
			continue
		}
		if _, ok := skip[c.ID]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		match, err := s.ai.ScoreSummary(ctx, c.ResumeSummary, job.Description)
		if err != nil {
			s.log.Warn().Err(err).Str("candidate_id", c.ID).Msg("候选人评分失败，跳过")
			continue
		}
		if match.MatchScore <= constants.RediscoveryScoreThreshold {
			continue
		}
		summary := match.MatchSummary
		if summary == "" {
			summary = "No summary provided."
		}
		result.MatchingCandidates = append(result.MatchingCandidates, RediscoveredCandidate{
			CandidateID:  c.ID,
			FullName:     c.FullName,
			Email:        c.Email,
			MatchScore:   match.MatchScore,
			MatchSummary: summary,
		})
	}

	sort.SliceStable(result.MatchingCandidates, func(i, j int) bool {
		return result.MatchingCandidates[i].MatchScore > result.MatchingCandidates[j].MatchScore
	})
	s.log.Info().
		Str("job_id", jobID).
		Int("pool", len(pool)).
		Int("matches", len(result.MatchingCandidates)).
		Msg("人才再发现完成")
	return result, nil
}
