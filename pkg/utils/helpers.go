package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// StringPtr 返回字符串的指针，空串返回 nil
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// TimePtr returns a pointer to a time.Time object
func TimePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// SHA256Hex 计算字节切片的 SHA-256 十六进制摘要
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashParts 用 "|" 连接各部分后计算 SHA-256，用于缓存键
func HashParts(parts ...string) string {
	return SHA256Hex([]byte(strings.Join(parts, "|")))
}

// ClampPage 规范化分页参数
func ClampPage(skip, limit, defaultLimit, maxLimit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}
