package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"ats-go/internal/config"

	"github.com/gofrs/uuid/v5"
)

// ErrFileNotFound 存储中找不到对应的简历文件
var ErrFileNotFound = errors.New("resume file not found")

// defaultOriginalName 无法还原原始文件名时使用
const defaultOriginalName = "resume"

// FileStore 简历原件的持久化。路径由 Save 返回，作为 Candidate.ResumeFilePath 保存
type FileStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Delete(ctx context.Context, path string) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// NewFileStore 按 storage.file_store 创建本地或 MinIO 文件存储
func NewFileStore(ctx context.Context, cfg *config.Config) (FileStore, error) {
	switch cfg.Storage.FileStore {
	case config.FileStoreMinIO:
		return NewMinIOFileStore(ctx, &cfg.MinIO)
	case config.FileStoreLocal, "":
		return NewLocalFileStore(cfg.Storage.LocalDir)
	default:
		return nil, fmt.Errorf("不支持的文件存储类型: %s", cfg.Storage.FileStore)
	}
}

// GenerateStoredName 生成 "<uuidv4>_<清洗后的原文件名>"，避免同名文件互相覆盖
func GenerateStoredName(original string) string {
	return uuid.Must(uuid.NewV4()).String() + "_" + sanitizeFilename(original)
}

// sanitizeFilename 只保留字母数字、'.' 和 '_'
func sanitizeFilename(name string) string {
	name = path.Base(filepath.ToSlash(name))
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimRightFunc(b.String(), unicode.IsSpace)
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return defaultOriginalName
	}
	return cleaned
}

// OriginalFilename 从存储路径还原下载时展示的文件名：去掉第一个 '_' 及之前的 uuid 部分
func OriginalFilename(storedPath string) string {
	base := path.Base(filepath.ToSlash(storedPath))
	if base == "." || base == "/" {
		return defaultOriginalName
	}
	if idx := strings.Index(base, "_"); idx >= 0 {
		base = base[idx+1:]
	}
	if base == "" {
		return defaultOriginalName
	}
	return base
}

// ContentTypeFor 根据扩展名推断下载时的 Content-Type
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
