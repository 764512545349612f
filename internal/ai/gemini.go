package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ats-go/internal/config"

	"google.golang.org/genai"
)

// GeminiGenerator 通过 Gemini API 生成文本
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator 使用 API key 创建 Gemini 生成器
func NewGeminiGenerator(ctx context.Context, cfg config.AIConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key 不能为空")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if timeout > 0 {
		cc.HTTPOptions.Timeout = &timeout
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("创建 Gemini 客户端失败: %w", err)
	}

	return &GeminiGenerator{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

// Generate 发送单轮文本请求，返回第一个候选的全部文本片段
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if g.temperature > 0 {
		genCfg.Temperature = genai.Ptr(g.temperature)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}
