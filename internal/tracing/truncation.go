package tracing

import (
	"strings"
)

// DefaultMaxLength span 属性值的默认长度上限
const DefaultMaxLength = 200

const (
	maxSQLLength      = 500
	maxRedisKeyLength = 100
	maxPromptLength   = 300
)

// sensitiveKeys 属性名包含其中任一片段时，值按个人信息掩码
var sensitiveKeys = []string{
	"email",
	"phone",
	"candidate_name",
	"full_name",
	"password",
	"token",
	"secret",
}

// SafeAttributeValue 敏感属性掩码，其余按 maxLength 截断
func SafeAttributeValue(name, value string, maxLength int) string {
	lower := strings.ToLower(name)
	for _, key := range sensitiveKeys {
		if strings.Contains(lower, key) {
			return MaskPII(value)
		}
	}
	return TruncateString(value, maxLength)
}

// MaskPII 保留首尾字符，中间替换为 '*'。
// 不超过 4 个字符时首尾各留 1 个（"王小明" -> "王*明"），更长的首尾各留 2 个
func MaskPII(value string) string {
	runes := []rune(value)
	n := len(runes)
	switch n {
	case 0:
		return ""
	case 1:
		return "*"
	case 2:
		return string(runes[0]) + "*"
	}

	keep := 2
	if n <= 4 {
		keep = 1
	}
	return string(runes[:keep]) + strings.Repeat("*", n-2*keep) + string(runes[n-keep:])
}

// TruncateString 超过 maxLength 个字符时保留首尾，中间用 "..." 连接
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	side := (maxLength - 3) / 2
	if side < 1 {
		side = 1
	}
	return string(runes[:side]) + "..." + string(runes[len(runes)-side:])
}

// SafeSQL gorm span 中记录的 SQL
func SafeSQL(sql string) string {
	return TruncateString(sql, maxSQLLength)
}

// SafeRedisKey redis span 中记录的键
func SafeRedisKey(key string) string {
	return TruncateString(key, maxRedisKeyLength)
}

// SafePrompt AI 调用 span 中记录的提示词
func SafePrompt(prompt string) string {
	return TruncateString(prompt, maxPromptLength)
}
