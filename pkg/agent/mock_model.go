package agent

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// MockResponse MockChatModel 的单次预期响应
type MockResponse struct {
	Content string
	Error   error
}

// MockChatModel 用于测试的 model.ToolCallingChatModel 模拟实现。
// 按顺序返回 Responses，用完后重复最后一条
type MockChatModel struct {
	mu               sync.Mutex
	Responses        []MockResponse
	responseIndex    int
	ReceivedMessages [][]*schema.Message
}

var _ model.ToolCallingChatModel = (*MockChatModel)(nil)

// NewMockChatModel 创建一个返回固定响应的 MockChatModel
func NewMockChatModel(content string, err error) *MockChatModel {
	return NewMockChatModelSequential([]MockResponse{{Content: content, Error: err}})
}

// NewMockChatModelSequential 创建一个按顺序返回不同响应的 MockChatModel
func NewMockChatModelSequential(responses []MockResponse) *MockChatModel {
	if len(responses) == 0 {
		responses = []MockResponse{{Error: errors.New("mock model has no responses configured")}}
	}
	return &MockChatModel{Responses: responses}
}

// Generate 记录收到的消息并返回下一条预设响应
func (m *MockChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	received := make([]*schema.Message, len(input))
	copy(received, input)
	m.ReceivedMessages = append(m.ReceivedMessages, received)

	resp := m.Responses[m.responseIndex]
	if m.responseIndex < len(m.Responses)-1 {
		m.responseIndex++
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return schema.AssistantMessage(resp.Content, nil), nil
}

// Stream 未实现
func (m *MockChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not implemented in MockChatModel")
}

// WithTools 返回自身
func (m *MockChatModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

// Calls 已发生的 Generate 调用次数
func (m *MockChatModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ReceivedMessages)
}
