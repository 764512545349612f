package ai

import (
	"context"
	"fmt"
	"time"

	"ats-go/internal/config"
	"ats-go/pkg/agent"
	"ats-go/pkg/ratelimit"
)

// NewGeneratorFromConfig 按配置创建生成器。未配置 API key 时返回 nil，
// 此时 Client 的所有调用返回 ErrAIServiceUnavailable
func NewGeneratorFromConfig(ctx context.Context, cfg config.AIConfig) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}

	switch cfg.Provider {
	case config.ProviderGemini, "":
		g, err := NewGeminiGenerator(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.QPM > 0 {
			return ratelimit.NewLimited(g, cfg.QPM), nil
		}
		return g, nil

	case config.ProviderOpenAICompatible:
		m, err := agent.NewOpenAICompatibleChatModel(cfg.APIKey, cfg.Model, cfg.APIURL,
			agent.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second),
			agent.WithTemperature(cfg.Temperature),
		)
		if err != nil {
			return nil, err
		}
		if cfg.QPM > 0 {
			return NewChatModelGenerator(ratelimit.NewRateLimitedLLMModel(m, cfg.QPM)), nil
		}
		return NewChatModelGenerator(m), nil

	default:
		return nil, fmt.Errorf("不支持的AI提供方: %s", cfg.Provider)
	}
}

// NewClientFromConfig 创建生成器并包装为 Client
func NewClientFromConfig(ctx context.Context, cfg config.AIConfig, opts ...Option) (*Client, error) {
	gen, err := NewGeneratorFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewClient(gen, opts...), nil
}
