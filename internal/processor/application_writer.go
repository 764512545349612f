package processor

import (
	"context"
	"fmt"
	"time"

	"ats-go/internal/ai"
	"ats-go/internal/constants"
	"ats-go/internal/logger"
	"ats-go/internal/outbox"
	"ats-go/internal/storage"
	"ats-go/internal/storage/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const defaultEventsExchange = "ats.events"

// DeriveStage 匹配分数达到阈值（含）时为 Applied，否则为 Not a Fit
func DeriveStage(score float64) string {
	if score >= constants.StageScoreThreshold {
		return constants.StageApplied
	}
	return constants.StageNotAFit
}

// ApplicationWriter 写入申请记录，并在同一事务中登记 application.created 事件
type ApplicationWriter struct {
	exchange string
	log      zerolog.Logger
}

// NewApplicationWriter 创建申请写入器
func NewApplicationWriter(exchange string) *ApplicationWriter {
	if exchange == "" {
		exchange = defaultEventsExchange
	}
	return &ApplicationWriter{
		exchange: exchange,
		log:      logger.Named("application-writer"),
	}
}

// Create 插入一条申请。分数与分项分数按 AI 返回原样保存
func (w *ApplicationWriter) Create(ctx context.Context, tx *gorm.DB, candidateID, jobID string, analysis *ai.AnalysisResult, actorID string) (*models.JobApplication, error) {
	details, err := models.ScoreMapToJSON(analysis.ScoreDetails)
	if err != nil {
		return nil, fmt.Errorf("序列化分项分数失败: %w", err)
	}

	app := models.JobApplication{
		ID:           models.NewID(),
		CandidateID:  candidateID,
		JobID:        jobID,
		MatchScore:   analysis.MatchScore,
		ScoreDetails: details,
		Stage:        DeriveStage(analysis.MatchScore),
		CreatedBy:    actorID,
	}
	tx = tx.WithContext(ctx)
	if err := tx.Create(&app).Error; err != nil {
		return nil, fmt.Errorf("创建申请记录失败: %w", err)
	}

	event := storage.ApplicationCreatedMessage{
		ApplicationID: app.ID,
		CandidateID:   candidateID,
		JobID:         jobID,
		MatchScore:    app.MatchScore,
		Stage:         app.Stage,
		CreatedBy:     actorID,
		OccurredAt:    time.Now(),
	}
	if err := outbox.Enqueue(tx, w.exchange, app.ID, constants.EventApplicationCreated, event); err != nil {
		return nil, err
	}

	w.log.Debug().
		Str("application_id", app.ID).
		Str("stage", app.Stage).
		Float64("match_score", app.MatchScore).
		Msg("申请记录已创建")
	return &app, nil
}
