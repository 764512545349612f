package models

import "github.com/gofrs/uuid/v5"

// NewID 生成按时间有序的 UUIDv7 主键
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
