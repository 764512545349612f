package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ats-go/internal/logger"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
)

const (
	// DashScope 的 OpenAI 兼容接口
	defaultAPIURL    = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
	defaultModelName = "qwen-turbo"
	defaultTimeout   = 120 * time.Second
)

// OpenAICompatibleChatModel 调用 OpenAI 兼容的 chat/completions 接口（通义千问、DeepSeek 等）。
// 只支持单次非流式生成
type OpenAICompatibleChatModel struct {
	apiKey      string
	modelName   string
	apiURL      string
	temperature float32
	httpClient  *http.Client
	log         zerolog.Logger
}

var _ model.ToolCallingChatModel = (*OpenAICompatibleChatModel)(nil)

// ChatModelOption 模型的配置选项
type ChatModelOption func(*OpenAICompatibleChatModel)

// WithTimeout 设置 HTTP 请求超时
func WithTimeout(d time.Duration) ChatModelOption {
	return func(m *OpenAICompatibleChatModel) {
		if d > 0 {
			m.httpClient.Timeout = d
		}
	}
}

// WithTemperature 设置采样温度
func WithTemperature(t float32) ChatModelOption {
	return func(m *OpenAICompatibleChatModel) {
		m.temperature = t
	}
}

// WithHTTPClient 替换 HTTP 客户端
func WithHTTPClient(c *http.Client) ChatModelOption {
	return func(m *OpenAICompatibleChatModel) {
		if c != nil {
			m.httpClient = c
		}
	}
}

// NewOpenAICompatibleChatModel 创建模型实例。modelName 和 apiURL 为空时使用默认值
func NewOpenAICompatibleChatModel(apiKey, modelName, apiURL string, opts ...ChatModelOption) (*OpenAICompatibleChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultModelName
	}
	if strings.TrimSpace(apiURL) == "" {
		apiURL = defaultAPIURL
	}

	m := &OpenAICompatibleChatModel{
		apiKey:     apiKey,
		modelName:  modelName,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        logger.Named("llm"),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.log.Info().Str("api_url", apiURL).Str("model", modelName).Msg("使用 OpenAI 兼容 LLM 客户端")
	return m, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Generate 实现 model.ChatModel 接口
func (m *OpenAICompatibleChatModel) Generate(ctx context.Context, messages []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	reqPayload := chatCompletionRequest{
		Model:    m.modelName,
		Messages: make([]chatMessage, 0, len(messages)),
	}
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		reqPayload.Messages = append(reqPayload.Messages, chatMessage{Role: string(msg.Role), Content: msg.Content})
	}
	if m.temperature > 0 {
		t := m.temperature
		reqPayload.Temperature = &t
	}

	jsonData, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	httpResp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	m.log.Debug().
		Int("status", httpResp.StatusCode).
		Int("body_bytes", len(bodyBytes)).
		Dur("elapsed", time.Since(startTime)).
		Msg("收到 LLM 响应")

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API 请求失败，状态 %s: %s", httpResp.Status, truncate(string(bodyBytes), 500))
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(bodyBytes, &resp); err != nil {
		return nil, fmt.Errorf("反序列化 API 响应失败: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("API 返回错误 %s: %s", resp.Error.Code, resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("API 返回的 choices 为空")
	}

	content := ""
	if resp.Choices[0].Message.Content != nil {
		content = *resp.Choices[0].Message.Content
	}
	return schema.AssistantMessage(content, nil), nil
}

// Stream 不支持
func (m *OpenAICompatibleChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("OpenAICompatibleChatModel 不支持 Stream")
}

// WithTools 不绑定任何工具，返回自身
func (m *OpenAICompatibleChatModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
