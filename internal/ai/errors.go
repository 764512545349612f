package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrAIServiceUnavailable 未配置生成模型，或调用外部模型失败
	ErrAIServiceUnavailable = errors.New("AI service unavailable")

	// ErrAIResponseInvalid 模型返回的内容无法解析为预期的 JSON
	ErrAIResponseInvalid = errors.New("AI response is not valid JSON")
)

// ResponseInvalidError 保留模型的原始输出，便于排查
type ResponseInvalidError struct {
	Raw   string
	Cause error
}

func (e *ResponseInvalidError) Error() string {
	if e.Cause == nil {
		return ErrAIResponseInvalid.Error()
	}
	return fmt.Sprintf("%s: %v", ErrAIResponseInvalid.Error(), e.Cause)
}

func (e *ResponseInvalidError) Unwrap() error {
	return e.Cause
}

// Is 让 errors.Is(err, ErrAIResponseInvalid) 成立
func (e *ResponseInvalidError) Is(target error) bool {
	return target == ErrAIResponseInvalid
}

// unavailable 包装生成器返回的传输层错误
func unavailable(cause error) error {
	return fmt.Errorf("%w: %w", ErrAIServiceUnavailable, cause)
}
