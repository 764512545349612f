package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"ats-go/internal/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ats-go/parser")

// TextExtractor 从单个文件的字节中提取纯文本
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, filename string) (string, error)
}

// Extractor 按扩展名分发到 PDF 或 DOCX 提取器
type Extractor struct {
	pdf  TextExtractor
	docx TextExtractor
}

var _ TextExtractor = (*Extractor)(nil)

// ExtractorOption Extractor 的配置选项
type ExtractorOption func(*Extractor)

// WithPDFExtractor 替换 PDF 提取器
func WithPDFExtractor(e TextExtractor) ExtractorOption {
	return func(x *Extractor) {
		x.pdf = e
	}
}

// WithDocxExtractor 替换 DOCX 提取器
func WithDocxExtractor(e TextExtractor) ExtractorOption {
	return func(x *Extractor) {
		x.docx = e
	}
}

// NewExtractor 创建默认的提取器：eino PDF 解析器 + docx 解析器
func NewExtractor(ctx context.Context, opts ...ExtractorOption) (*Extractor, error) {
	x := &Extractor{}
	for _, opt := range opts {
		opt(x)
	}
	if x.pdf == nil {
		pdfExtractor, err := NewEinoPDFTextExtractor(ctx)
		if err != nil {
			return nil, err
		}
		x.pdf = pdfExtractor
	}
	if x.docx == nil {
		x.docx = NewDocxTextExtractor()
	}
	return x, nil
}

// ExtractText 提取文本。所有失败都以 *ExtractionError 返回，不会返回部分文本
func (x *Extractor) ExtractText(ctx context.Context, data []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	ctx, span := tracer.Start(ctx, "Extractor.ExtractText", trace.WithAttributes(
		attribute.String("file.extension", ext),
		attribute.Int("file.size", len(data)),
	))
	defer span.End()

	var impl TextExtractor
	switch ext {
	case ".pdf":
		impl = x.pdf
	case ".docx":
		impl = x.docx
	default:
		err := newExtractionError(filename, fmt.Errorf("%w: %q (only .pdf and .docx are accepted)", ErrUnsupportedFileType, ext))
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		return "", err
	}

	text, err := impl.ExtractText(ctx, data, filename)
	if err != nil {
		err = newExtractionError(filename, err)
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		err := newExtractionError(filename, ErrNoExtractableText)
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		return "", err
	}

	span.SetAttributes(attribute.Int("text.length", len(text)))
	return text, nil
}
