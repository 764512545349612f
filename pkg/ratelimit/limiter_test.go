package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type countingGenerator struct {
	calls int
}

func (g *countingGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls++
	return "echo:" + prompt, nil
}

func TestNewLimiter(t *testing.T) {
	unlimited := NewLimiter(0)
	assert.Equal(t, rate.Inf, unlimited.Limit())

	l := NewLimiter(60)
	assert.InDelta(t, 1.0, float64(l.Limit()), 1e-9)
	assert.Equal(t, 30, l.Burst())

	assert.Equal(t, 1, NewLimiter(1).Burst())
}

func TestLimited_PassesThrough(t *testing.T) {
	next := &countingGenerator{}
	l := NewLimited(next, 0)

	for i := 0; i < 5; i++ {
		out, err := l.Generate(context.Background(), "hi")
		require.NoError(t, err)
		assert.Equal(t, "echo:hi", out)
	}
	assert.Equal(t, 5, next.calls)
}

func TestLimited_WaitExceedsDeadline(t *testing.T) {
	next := &countingGenerator{}
	l := NewLimited(next, 1)

	_, err := l.Generate(context.Background(), "first")
	require.NoError(t, err)

	// 第二个令牌要等一分钟，超过截止时间时立即失败，且不调用下游
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = l.Generate(ctx, "second")
	require.Error(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestLimited_CanceledContext(t *testing.T) {
	next := &countingGenerator{}
	l := NewLimited(next, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Generate(ctx, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, next.calls)
}
