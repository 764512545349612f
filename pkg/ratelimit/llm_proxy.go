package ratelimit

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"
)

// RateLimitedLLMModel 对LLM模型的调用进行限流的代理
type RateLimitedLLMModel struct {
	original    model.ToolCallingChatModel
	rateLimiter *rate.Limiter
}

var _ model.ToolCallingChatModel = (*RateLimitedLLMModel)(nil)

// NewRateLimitedLLMModel 创建一个新的限流LLM模型代理
func NewRateLimitedLLMModel(original model.ToolCallingChatModel, qpm int) *RateLimitedLLMModel {
	return &RateLimitedLLMModel{
		original:    original,
		rateLimiter: NewLimiter(qpm),
	}
}

// Generate 等待令牌后调用原模型
func (rl *RateLimitedLLMModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	if err := rl.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("等待限流令牌失败: %w", err)
	}
	return rl.original.Generate(ctx, messages, options...)
}

// Stream 等待令牌后调用原模型
func (rl *RateLimitedLLMModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if err := rl.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("等待限流令牌失败: %w", err)
	}
	return rl.original.Stream(ctx, messages, options...)
}

// WithTools 代理WithTools方法，新模型与原代理共享同一个限流器
func (rl *RateLimitedLLMModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	newModel, err := rl.original.WithTools(tools)
	if err != nil {
		return nil, err
	}
	return &RateLimitedLLMModel{
		original:    newModel,
		rateLimiter: rl.rateLimiter,
	}, nil
}
