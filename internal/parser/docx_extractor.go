package parser

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// wordprocessingML 命名空间
const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// DocxTextExtractor 从 .docx 中提取段落文本，每个段落一行
type DocxTextExtractor struct{}

// NewDocxTextExtractor 创建 DOCX 文本提取器
func NewDocxTextExtractor() *DocxTextExtractor {
	return &DocxTextExtractor{}
}

// ExtractText 读取 word/document.xml 并按段落拼接文本
func (d *DocxTextExtractor) ExtractText(_ context.Context, data []byte, _ string) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	defer doc.Close()

	return paragraphsFromDocumentXML(doc.Editable().GetContent())
}

// paragraphsFromDocumentXML 收集每个 w:p 下所有 w:t 的文字，段落之间用换行分隔
func paragraphsFromDocumentXML(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var (
		paragraphs []string
		current    strings.Builder
		depth      int // 当前所在 w:p 的嵌套层数
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					current.Reset()
				}
				depth++
			case "t":
				inText = true
			case "tab":
				if depth > 0 {
					current.WriteByte('\t')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				depth--
				if depth == 0 {
					paragraphs = append(paragraphs, current.String())
				}
			}
		case xml.CharData:
			if inText && depth > 0 {
				current.Write(t)
			}
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}
