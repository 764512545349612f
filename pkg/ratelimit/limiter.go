package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// NewLimiter 按每分钟请求数创建令牌桶，桶容量为 QPM 的一半（至少为 1），允许少量突发
func NewLimiter(qpm int) *rate.Limiter {
	if qpm <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := qpm / 2
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(qpm)), burst)
}

// TextGenerator 单轮文本生成接口
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Limited 在调用下游生成器之前等待令牌。不做重试
type Limited struct {
	next    TextGenerator
	limiter *rate.Limiter
}

// NewLimited 包装一个生成器
func NewLimited(next TextGenerator, qpm int) *Limited {
	return &Limited{
		next:    next,
		limiter: NewLimiter(qpm),
	}
}

func (l *Limited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("等待限流令牌失败: %w", err)
	}
	return l.next.Generate(ctx, prompt)
}
