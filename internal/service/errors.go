package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 请求的资源不存在
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput 请求参数不合法或与现有数据冲突
	ErrInvalidInput = errors.New("invalid input")

	// ErrInactiveUser 令牌有效但用户已停用
	ErrInactiveUser = errors.New("inactive user")

	// ErrUnauthorized 令牌缺失或无法匹配任何用户
	ErrUnauthorized = errors.New("invalid or missing API token")
)

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
