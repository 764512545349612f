package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"ats-go/internal/logger"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/rs/zerolog"
)

const defaultPDFParseTimeout = 30 * time.Second

// EinoPDFTextExtractor 使用 Eino PDF Parser 提取文本
type EinoPDFTextExtractor struct {
	parser  *pdf.PDFParser
	log     zerolog.Logger
	timeout time.Duration
}

// EinoPDFOption PDF提取器的配置选项
type EinoPDFOption func(*EinoPDFTextExtractor)

// WithEinoLogger 配置自定义日志记录器
func WithEinoLogger(l zerolog.Logger) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.log = l
	}
}

// WithParseTimeout 设置单个文件的解析超时
func WithParseTimeout(d time.Duration) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEinoPDFTextExtractor 初始化 Eino PDF 文本提取器
// 不按页面分割，整个文档的文本作为一个 Document 返回
func NewEinoPDFTextExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}

	extractor := &EinoPDFTextExtractor{
		parser:  p,
		log:     logger.Named("pdf-extractor"),
		timeout: defaultPDFParseTimeout,
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor, nil
}

// ExtractText 从 PDF 字节中提取全部文本，页面按顺序拼接
func (e *EinoPDFTextExtractor) ExtractText(ctx context.Context, data []byte, filename string) (string, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	docs, err := e.parser.Parse(ctx, bytes.NewReader(data),
		einoParser.WithURI(filename),
		einoParser.WithExtraMeta(map[string]any{"source_file": filename}),
	)
	if err != nil {
		e.log.Debug().Err(err).Str("filename", filename).Dur("elapsed", time.Since(startTime)).Msg("PDF解析失败")
		return "", fmt.Errorf("eino PDF parser failed: %w", err)
	}

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		parts = append(parts, doc.Content)
	}
	text := strings.Join(parts, "\n")

	e.log.Debug().
		Str("filename", filename).
		Int("documents", len(docs)).
		Int("chars", len(text)).
		Dur("elapsed", time.Since(startTime)).
		Msg("PDF提取完成")
	return text, nil
}
