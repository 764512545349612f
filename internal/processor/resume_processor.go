package processor // 简历导入流水线：提取文本、AI 分析、合并候选人、写入申请

import (
	"context"
	"errors"
	"strings"
	"time"

	"ats-go/internal/logger"
	"ats-go/internal/storage"
	"ats-go/internal/storage/models"
	"ats-go/internal/tracing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("ats-go/processor")

// ApplicationWithCandidate 新建的申请及其候选人的身份信息
type ApplicationWithCandidate struct {
	models.JobApplication
	CandidateName  string `json:"candidate_name"`
	CandidateEmail string `json:"candidate_email"`
}

// ResumeProcessor 串联提取器、分析器、合并器与写入器。
// 每份简历在调用方的 goroutine 上顺序处理完成，不启动后台任务
type ResumeProcessor struct {
	db         *gorm.DB
	files      storage.FileStore
	extractor  TextExtractor
	analyzer   Analyzer
	reconciler *Reconciler
	writer     *ApplicationWriter
	log        zerolog.Logger
}

// NewResumeProcessor 创建简历处理器
func NewResumeProcessor(db *gorm.DB, files storage.FileStore, extractor TextExtractor, analyzer Analyzer, opts ...ProcessorOption) *ResumeProcessor {
	p := &ResumeProcessor{
		db:         db,
		files:      files,
		extractor:  extractor,
		analyzer:   analyzer,
		reconciler: NewReconciler(),
		writer:     NewApplicationWriter(""),
		log:        logger.Named("resume-processor"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessResume 处理一份简历并为 job 创建申请。
// 原始文件在事务开始前保存；事务失败时删除该文件，避免留下孤立文件
func (p *ResumeProcessor) ProcessResume(ctx context.Context, data []byte, filename string, job *models.Job, actorID string) (*ApplicationWithCandidate, error) {
	ctx, span := tracer.Start(ctx, "ResumeProcessor.ProcessResume", trace.WithAttributes(
		attribute.String("job_id", job.ID),
		attribute.String("file.name", tracing.SafeAttributeValue("file.name", filename, tracing.DefaultMaxLength)),
		attribute.Int("file.size", len(data)),
	))
	defer span.End()

	log := p.log.With().Str("filename", filename).Str("job_id", job.ID).Logger()
	startTime := time.Now()

	// 1. 提取文本
	text, err := p.extractor.ExtractText(ctx, data, filename)
	if err != nil {
		log.Warn().Err(err).Msg("提取简历文本失败")
		return nil, p.fail(span, newProcessError(filename, OpExtract, err), tracing.ErrorTypeExtraction)
	}

	// 2. AI 分析
	analysis, err := p.analyzer.Analyze(ctx, text, job.Description)
	if err != nil {
		log.Warn().Err(err).Msg("AI分析简历失败")
		return nil, p.fail(span, newProcessError(filename, OpAnalyze, err), tracing.ErrorTypeAI)
	}
	if strings.TrimSpace(analysis.ExtractedEmail) == "" {
		log.Warn().Msg("简历中未提取到邮箱")
		return nil, p.fail(span, newProcessError(filename, OpAnalyze, ErrMissingEmail), tracing.ErrorTypeValidation)
	}
	span.SetAttributes(
		attribute.Float64("match_score", analysis.MatchScore),
		attribute.String("candidate.email", tracing.SafeAttributeValue("candidate.email", analysis.ExtractedEmail, tracing.DefaultMaxLength)),
	)

	// 3. 保存原始文件
	storedPath, err := p.files.Save(ctx, storage.GenerateStoredName(filename), data)
	if err != nil {
		log.Error().Err(err).Msg("保存简历文件失败")
		perr := newProcessError(filename, OpSaveFile, ErrFileStoreFailed)
		perr.Cause = err
		return nil, p.fail(span, perr, tracing.ErrorTypeFileStore)
	}

	// 4. 单个事务：候选人、技能关联、申请、outbox 事件
	var result *ApplicationWithCandidate
	txErr := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidate, err := p.reconciler.Reconcile(ctx, tx, analysis, storedPath, actorID)
		if err != nil {
			return err
		}
		app, err := p.writer.Create(ctx, tx, candidate.ID, job.ID, analysis, actorID)
		if err != nil {
			return err
		}
		result = &ApplicationWithCandidate{
			JobApplication: *app,
			CandidateName:  candidate.FullName,
			CandidateEmail: candidate.Email,
		}
		return nil
	})
	if txErr != nil {
		if delErr := p.files.Delete(context.WithoutCancel(ctx), storedPath); delErr != nil {
			log.Error().Err(delErr).Str("path", storedPath).Msg("事务失败后删除简历文件失败")
		}
		log.Error().Err(txErr).Msg("简历入库事务失败，已回滚")
		if errors.Is(txErr, ErrMissingEmail) {
			return nil, p.fail(span, newProcessError(filename, OpAnalyze, ErrMissingEmail), tracing.ErrorTypeValidation)
		}
		return nil, p.fail(span, NewTransactionError(filename, txErr), tracing.ErrorTypeDB)
	}

	span.SetAttributes(
		attribute.String("application_id", result.ID),
		attribute.String("stage", result.Stage),
	)
	span.SetStatus(codes.Ok, "处理成功")
	log.Info().
		Str("application_id", result.ID).
		Str("candidate_id", result.CandidateID).
		Str("stage", result.Stage).
		Dur("elapsed", time.Since(startTime)).
		Msg("简历处理完成")
	return result, nil
}

func (p *ResumeProcessor) fail(span trace.Span, err *ResumeProcessError, errorType tracing.ErrorType) error {
	tracing.RecordErrorWithInfo(span, err, errorType, attribute.String("processor.op", err.Op))
	return err
}

