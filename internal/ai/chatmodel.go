package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModelGenerator 把 eino 聊天模型适配为 Generator，每次调用只发送一条用户消息
type ChatModelGenerator struct {
	model model.ToolCallingChatModel
}

var _ Generator = (*ChatModelGenerator)(nil)

// NewChatModelGenerator 包装一个 eino 聊天模型
func NewChatModelGenerator(m model.ToolCallingChatModel) *ChatModelGenerator {
	return &ChatModelGenerator{model: m}
}

func (g *ChatModelGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := g.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("chat model generate: %w", err)
	}
	if msg == nil || msg.Content == "" {
		return "", errors.New("chat model returned an empty response")
	}
	return msg.Content, nil
}
