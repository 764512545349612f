package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"ats-go/internal/config"
	"ats-go/internal/logger"
	"ats-go/internal/tracing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	minioScheme       = "minio://"
	resumeObjectDir   = "resumes/"
	minioNoSuchKey    = "NoSuchKey"
	minioNoSuchBucket = "NoSuchBucket"
)

var minioTracer = otel.Tracer("ats-go/storage/minio")

var _ FileStore = (*MinIOFileStore)(nil)

// MinIOFileStore 把简历保存到 MinIO，路径形如 minio://<bucket>/resumes/<name>
type MinIOFileStore struct {
	client *minio.Client
	bucket string
	log    zerolog.Logger
}

// NewMinIOFileStore 创建MinIO客户端并确保存储桶存在
func NewMinIOFileStore(ctx context.Context, cfg *config.MinIOConfig) (*MinIOFileStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	bucket := cfg.ResumesBucket
	if bucket == "" {
		bucket = "resumes"
	}

	s := &MinIOFileStore{
		client: client,
		bucket: bucket,
		log:    logger.Named("minio"),
	}
	if err := s.ensureBucketExists(ctx, cfg.Location); err != nil {
		return nil, err
	}

	s.log.Info().Str("endpoint", cfg.Endpoint).Str("bucket", bucket).Msg("MinIO文件存储初始化成功")
	return s, nil
}

func (s *MinIOFileStore) ensureBucketExists(ctx context.Context, location string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("创建存储桶 %s 失败: %w", s.bucket, err)
	}
	s.log.Info().Str("bucket", s.bucket).Msg("存储桶已创建")
	return nil
}

// objectPath 生成记录到数据库的路径
func (s *MinIOFileStore) objectPath(key string) string {
	return minioScheme + s.bucket + "/" + key
}

// parseMinIOPath 解析 minio://<bucket>/<key>
func parseMinIOPath(p string) (bucket, key string, err error) {
	if !strings.HasPrefix(p, minioScheme) {
		return "", "", fmt.Errorf("不是MinIO路径: %s", p)
	}
	rest := strings.TrimPrefix(p, minioScheme)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("无效的MinIO路径: %s", p)
	}
	return parts[0], parts[1], nil
}

// Save 上传简历并返回 minio:// 路径
func (s *MinIOFileStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	key := resumeObjectDir + name
	ctx, span := minioTracer.Start(ctx, "MinIO.Save", trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("minio.bucket", s.bucket),
			attribute.String("minio.object", key),
			attribute.Int("file.size", len(data)),
		))
	defer span.End()

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: ContentTypeFor(name)})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeFileStore)
		return "", fmt.Errorf("上传对象 %s/%s 失败: %w", s.bucket, key, err)
	}
	return s.objectPath(key), nil
}

// Delete 删除对象，对象不存在时视为成功
func (s *MinIOFileStore) Delete(ctx context.Context, p string) error {
	if p == "" {
		return nil
	}
	bucket, key, err := parseMinIOPath(p)
	if err != nil {
		return err
	}
	ctx, span := minioTracer.Start(ctx, "MinIO.Delete", trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("minio.bucket", bucket), attribute.String("minio.object", key)))
	defer span.End()

	if err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if isMinIONotFound(err) {
			return nil
		}
		tracing.RecordError(span, err, tracing.ErrorTypeFileStore)
		return fmt.Errorf("删除对象 %s 失败: %w", p, err)
	}
	return nil
}

// Open 获取对象内容用于下载
func (s *MinIOFileStore) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	bucket, key, err := parseMinIOPath(p)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if isMinIONotFound(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("获取对象 %s 失败: %w", p, err)
	}
	// GetObject 是惰性的，先 Stat 一次以便把不存在转换为 ErrFileNotFound
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if isMinIONotFound(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("获取对象 %s 状态失败: %w", p, err)
	}
	return obj, nil
}

func isMinIONotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == minioNoSuchKey || code == minioNoSuchBucket
}
