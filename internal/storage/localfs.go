package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var _ FileStore = (*LocalFileStore)(nil)

// LocalFileStore 把简历保存在本地目录
type LocalFileStore struct {
	dir string
}

// NewLocalFileStore 创建本地文件存储，目录不存在时自动创建
func NewLocalFileStore(dir string) (*LocalFileStore, error) {
	if dir == "" {
		dir = "resumes"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建简历目录 %s 失败: %w", dir, err)
	}
	return &LocalFileStore{dir: dir}, nil
}

// Dir 返回存储目录
func (s *LocalFileStore) Dir() string {
	return s.dir
}

// Save 写入文件并返回其路径
func (s *LocalFileStore) Save(_ context.Context, name string, data []byte) (string, error) {
	p := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("保存简历文件失败: %w", err)
	}
	return p, nil
}

// Delete 删除文件，文件已不存在时视为成功
func (s *LocalFileStore) Delete(_ context.Context, path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("删除简历文件 %s 失败: %w", path, err)
	}
	return nil
}

// Open 打开文件用于下载
func (s *LocalFileStore) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("打开简历文件失败: %w", err)
	}
	return f, nil
}
