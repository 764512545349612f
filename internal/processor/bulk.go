package processor

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"ats-go/internal/constants"
	"ats-go/internal/storage/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BulkFailure 压缩包中处理失败的单个文件
type BulkFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// BulkReport 批量导入结果，两个列表都保持压缩包内的顺序
type BulkReport struct {
	Successful []ApplicationWithCandidate `json:"successful_uploads"`
	Failed     []BulkFailure              `json:"failed_uploads"`
}

// ProcessArchive 依次处理 zip 中的每个文件。单个文件的失败只记录在报告中，不影响其他文件；
// 只有压缩包本身无法读取时才返回错误
func (p *ResumeProcessor) ProcessArchive(ctx context.Context, archive []byte, job *models.Job, actorID string) (*BulkReport, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	ctx, span := tracer.Start(ctx, "ResumeProcessor.ProcessArchive", trace.WithAttributes(
		attribute.String("job_id", job.ID),
		attribute.Int("archive.entries", len(zr.File)),
	))
	defer span.End()

	report := &BulkReport{
		Successful: []ApplicationWithCandidate{},
		Failed:     []BulkFailure{},
	}

	for _, entry := range zr.File {
		if skipEntry(entry) {
			continue
		}

		data, err := readEntry(entry)
		if err != nil {
			perr := newProcessError(entry.Name, OpReadEntry, err)
			report.Failed = append(report.Failed, BulkFailure{Filename: entry.Name, Error: perr.Error()})
			continue
		}

		app, err := p.ProcessResume(ctx, data, entry.Name, job, actorID)
		if err != nil {
			report.Failed = append(report.Failed, BulkFailure{Filename: entry.Name, Error: err.Error()})
			continue
		}
		report.Successful = append(report.Successful, *app)
	}

	span.SetAttributes(
		attribute.Int("bulk.successful", len(report.Successful)),
		attribute.Int("bulk.failed", len(report.Failed)),
	)
	p.log.Info().
		Str("job_id", job.ID).
		Int("successful", len(report.Successful)).
		Int("failed", len(report.Failed)).
		Msg("批量简历处理完成")
	return report, nil
}

// skipEntry 目录和 macOS 元数据不算作失败，直接跳过
func skipEntry(f *zip.File) bool {
	return strings.HasSuffix(f.Name, "/") ||
		f.FileInfo().IsDir() ||
		strings.HasPrefix(f.Name, constants.MacOSMetadataPrefix)
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
