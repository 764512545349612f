package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json代码块", "Here you go:\n```json\n{\"a\": 1}\n```\nthanks", `{"a": 1}`},
		{"无语言标记代码块", "```\n{\"a\": 2}\n```", `{"a": 2}`},
		{"大写JSON标记", "```JSON\n{\"a\": 3}```", `{"a": 3}`},
		{"前后有说明文字", "Sure! {\"a\": {\"b\": 1}} hope it helps", `{"a": {"b": 1}}`},
		{"字符串中的括号", `prefix {"s": "has } brace and \" quote {"} suffix`, `{"s": "has } brace and \" quote {"}`},
		{"BOM", "\uFEFF{\"a\": 4}", `{"a": 4}`},
		{"不完整对象退回原文", "  {\"a\": 1  ", `{"a": 1`},
		{"无对象", "  no json here  ", "no json here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestDecodeJSON_RepairsInnerQuotes(t *testing.T) {
	raw := `{"summary": "led the "Spring Launch" campaign", "strengths": ["copy"]}`
	var out Insights
	require.NoError(t, decodeJSON(raw, &out))
	assert.Equal(t, `led the "Spring Launch" campaign`, out.Summary)
	assert.Equal(t, []string{"copy"}, out.Strengths)
}

func TestDecodeJSON_Invalid(t *testing.T) {
	raw := "I am sorry, I cannot help with that."
	var out Insights
	err := decodeJSON(raw, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAIResponseInvalid))

	var invalid *ResponseInvalidError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, raw, invalid.Raw)
}
