package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFileType 文件扩展名既不是 .pdf 也不是 .docx
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrNoExtractableText 解析成功但没有任何文字，通常是扫描件或图片型 PDF
	ErrNoExtractableText = errors.New("no text could be extracted from the document (possibly image-based)")
)

// ExtractionError 文本提取失败，记录文件名与底层原因
type ExtractionError struct {
	Filename string
	Cause    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.Filename, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

func newExtractionError(filename string, cause error) *ExtractionError {
	return &ExtractionError{Filename: filename, Cause: cause}
}
