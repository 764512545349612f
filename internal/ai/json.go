package ai

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"
)

// fencedBlock 匹配 ```json ... ``` 或不带语言标记的 ``` ... ```
var fencedBlock = regexp.MustCompile("(?s)```(?i:json)?\\s*(.*?)```")

// ExtractJSON 从模型回复中取出 JSON 文本：
// 先取代码块内容，其次从第一个 '{' 开始做括号配平扫描（跳过字符串内的括号），
// 都不成立时返回去掉首尾空白的原文
func ExtractJSON(text string) string {
	text = strings.TrimPrefix(text, "\uFEFF")

	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if obj := scanBalancedObject(text); obj != "" {
		return obj
	}
	return strings.TrimSpace(text)
}

// scanBalancedObject 返回从第一个 '{' 开始、括号配平的子串；不完整时返回空串
func scanBalancedObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inStr := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// decodeJSON 解析模型输出。第一次失败时修复字符串内未转义的双引号再试一次
func decodeJSON(raw string, dest interface{}) error {
	jsonStr := ExtractJSON(raw)
	if !utf8.ValidString(jsonStr) {
		jsonStr = strings.ToValidUTF8(jsonStr, "")
	}

	err := json.Unmarshal([]byte(jsonStr), dest)
	if err == nil {
		return nil
	}
	if fixErr := json.Unmarshal([]byte(repairUnescapedQuotes(jsonStr)), dest); fixErr == nil {
		return nil
	}
	return &ResponseInvalidError{Raw: raw, Cause: err}
}

// repairUnescapedQuotes 把字符串字面量内部的裸双引号改写为 \"。
// 一个 " 只有在其后第一个非空白字符是 : , ] } 之一时才被视为字符串结束
func repairUnescapedQuotes(src string) string {
	var b strings.Builder
	inStr := false
	escaped := false

	for i := 0; i < len(src); i++ {
		c := src[i]

		switch {
		case c == '"' && !escaped:
			if !inStr {
				inStr = true
				b.WriteByte(c)
				break
			}
			j := i + 1
			for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\n' || src[j] == '\r') {
				j++
			}
			if j >= len(src) || src[j] == ':' || src[j] == ',' || src[j] == ']' || src[j] == '}' {
				inStr = false
				b.WriteByte(c)
			} else {
				b.WriteString("\\\"")
			}
			escaped = false
		case c == '\\' && !escaped:
			escaped = true
			b.WriteByte(c)
		default:
			b.WriteByte(c)
			escaped = false
		}
	}
	return b.String()
}
