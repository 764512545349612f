package processor

import (
	"context"

	"ats-go/internal/ai"
)

// TextExtractor 从文件字节中提取纯文本，parser.Extractor 实现了该接口
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, filename string) (string, error)
}

// Analyzer 用岗位描述分析简历文本，ai.Client 实现了该接口
type Analyzer interface {
	Analyze(ctx context.Context, resumeText, jobDescription string) (*ai.AnalysisResult, error)
}
