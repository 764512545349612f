package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const testDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

// buildDocx 构造一个最小的 docx 文件，body 为 w:body 的内容
func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := []struct{ name, content string }{
		{"[Content_Types].xml", testContentTypes},
		{"word/document.xml", document},
		{"word/_rels/document.xml.rels", testDocumentRels},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDocxTextExtractor_Paragraphs(t *testing.T) {
	data := buildDocx(t,
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t xml:space="preserve">Email: </w:t></w:r><w:r><w:t>jane@example.com</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Skills</w:t><w:tab/><w:t>Go, SQL</w:t></w:r></w:p>`)

	text, err := NewDocxTextExtractor().ExtractText(context.Background(), data, "cv.docx")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nEmail: jane@example.com\nSkills\tGo, SQL", text)
}

func TestDocxTextExtractor_TableParagraphs(t *testing.T) {
	data := buildDocx(t,
		`<w:p><w:r><w:t>Experience</w:t></w:r></w:p>`+
			`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>2020-2024</w:t></w:r></w:p></w:tc>`+
			`<w:tc><w:p><w:r><w:t>Backend Engineer</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`)

	text, err := NewDocxTextExtractor().ExtractText(context.Background(), data, "cv.docx")
	require.NoError(t, err)
	assert.Equal(t, "Experience\n2020-2024\nBackend Engineer", text)
}

func TestDocxTextExtractor_Empty(t *testing.T) {
	data := buildDocx(t, `<w:p></w:p><w:p><w:r><w:t>   </w:t></w:r></w:p>`)

	// 提取器本身返回空白文本，由 Extractor 转换为 ErrNoExtractableText
	text, err := NewDocxTextExtractor().ExtractText(context.Background(), data, "blank.docx")
	require.NoError(t, err)
	assert.Equal(t, "\n   ", text)

	x := &Extractor{pdf: &stubExtractor{}, docx: NewDocxTextExtractor()}
	_, err = x.ExtractText(context.Background(), data, "blank.docx")
	assert.ErrorIs(t, err, ErrNoExtractableText)
}

func TestDocxTextExtractor_NotAZip(t *testing.T) {
	_, err := NewDocxTextExtractor().ExtractText(context.Background(), []byte("plain text"), "cv.docx")
	assert.Error(t, err)
}
