package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"ats-go/internal/logger"
	"ats-go/internal/tracing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ats-go/ai")

// Generator 向外部模型发送一条提示词并返回文本回复
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AnalysisResult 简历与岗位描述的分析结果
type AnalysisResult struct {
	MatchScore             float64            `json:"match_score"`
	ScoreDetails           map[string]float64 `json:"score_details"`
	ResumeSummary          string             `json:"resume_summary"`
	TechnicalSkillsSummary string             `json:"technical_skills_summary"`
	ExtractedEmail         string             `json:"extracted_email"`
	ExtractedName          string             `json:"extracted_name"`
	ExtractedSkills        []string           `json:"extracted_skills"`
}

// Insights 面试前的快速筛选报告
type Insights struct {
	Summary            string   `json:"summary"`
	Strengths          []string `json:"strengths"`
	Weaknesses         []string `json:"weaknesses"`
	InterviewQuestions []string `json:"interview_questions"`
}

// SummaryMatch 候选人摘要与岗位描述的匹配分
type SummaryMatch struct {
	MatchScore   float64 `json:"match_score"`
	MatchSummary string  `json:"match_summary"`
}

type jobDescriptionResponse struct {
	JobDescription string `json:"job_description"`
}

// Client 封装所有 AI 调用。gen 为 nil 时所有调用直接返回 ErrAIServiceUnavailable
type Client struct {
	gen Generator
	log zerolog.Logger
}

// Option Client 的配置选项
type Option func(*Client)

// WithLogger 设置日志记录器
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient 创建 AI 客户端
func NewClient(gen Generator, opts ...Option) *Client {
	c := &Client{
		gen: gen,
		log: logger.Named("ai"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available 是否配置了生成模型
func (c *Client) Available() bool {
	return c != nil && c.gen != nil
}

// Analyze 分析简历文本与岗位描述
func (c *Client) Analyze(ctx context.Context, resumeText, jobDescription string) (*AnalysisResult, error) {
	var result AnalysisResult
	if err := c.generateJSON(ctx, "analyze", buildAnalyzePrompt(resumeText, jobDescription), &result); err != nil {
		return nil, err
	}
	result.ExtractedEmail = strings.TrimSpace(result.ExtractedEmail)
	result.ExtractedName = strings.TrimSpace(result.ExtractedName)
	return &result, nil
}

// GenerateJobDescription 根据标题、技能和经验要求生成 Markdown 格式的岗位描述
func (c *Client) GenerateJobDescription(ctx context.Context, title string, skills []string, experience string) (string, error) {
	var resp jobDescriptionResponse
	prompt := buildJobDescriptionPrompt(title, skills, experience)
	if err := c.generateJSON(ctx, "generate_job_description", prompt, &resp); err != nil {
		return "", err
	}
	return resp.JobDescription, nil
}

// GetInsights 基于候选人技能摘要生成筛选报告
func (c *Client) GetInsights(ctx context.Context, skillsSummary, jobDescription string) (*Insights, error) {
	var insights Insights
	if err := c.generateJSON(ctx, "insights", buildInsightsPrompt(skillsSummary, jobDescription), &insights); err != nil {
		return nil, err
	}
	return &insights, nil
}

// ScoreSummary 为人才再发现打分
func (c *Client) ScoreSummary(ctx context.Context, candidateSummary, jobDescription string) (*SummaryMatch, error) {
	var match SummaryMatch
	if err := c.generateJSON(ctx, "score_summary", buildScoreSummaryPrompt(candidateSummary, jobDescription), &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// generateJSON 调用一次生成器并把回复解析到 dest，不做重试
func (c *Client) generateJSON(ctx context.Context, op, prompt string, dest interface{}) error {
	if !c.Available() {
		return ErrAIServiceUnavailable
	}

	ctx, span := tracer.Start(ctx, "ai."+op, trace.WithAttributes(
		attribute.String("ai.operation", op),
		attribute.String("ai.prompt", tracing.SafePrompt(prompt)),
		attribute.Int("ai.prompt_length", len(prompt)),
	))
	defer span.End()

	startTime := time.Now()
	raw, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		c.log.Error().Err(err).Str("op", op).Dur("elapsed", time.Since(startTime)).Msg("调用AI服务失败")
		err = unavailable(err)
		tracing.RecordError(span, err, tracing.ErrorTypeAI)
		return err
	}
	span.SetAttributes(attribute.Int("ai.response_length", len(raw)))

	if err := decodeJSON(raw, dest); err != nil {
		var invalid *ResponseInvalidError
		if errors.As(err, &invalid) {
			c.log.Warn().Str("op", op).Str("raw", tracing.TruncateString(invalid.Raw, 500)).Msg("AI返回内容无法解析为JSON")
		}
		tracing.RecordError(span, err, tracing.ErrorTypeAI)
		return err
	}

	c.log.Debug().Str("op", op).Dur("elapsed", time.Since(startTime)).Msg("AI调用完成")
	return nil
}
