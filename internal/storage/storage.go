package storage

import (
	"context"
	"fmt"

	"ats-go/internal/config"
	"ats-go/internal/logger"
)

// Storage 存储管理器，聚合所有存储相关依赖
type Storage struct {
	// 关系型数据库（必需）
	DB *GormDatabase

	// 简历原件（必需）
	Files FileStore

	// 键值缓存（可选）
	Redis *Redis

	// 消息队列（可选）
	RabbitMQ *RabbitMQ
}

// NewStorage 创建存储管理器。数据库与文件存储初始化失败时直接返回错误，
// Redis 与 RabbitMQ 是可选组件，失败只记录警告。
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	s := &Storage{}
	var err error

	s.DB, err = NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("初始化数据库失败: %w", err)
	}

	s.Files, err = NewFileStore(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("初始化文件存储失败: %w", err)
	}

	if cfg.Redis.Address != "" {
		s.Redis, err = NewRedisAdapter(&cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("初始化Redis失败，AI结果缓存已禁用")
			s.Redis = nil
		}
	} else {
		logger.Info().Msg("Redis未配置, 跳过初始化")
	}

	if cfg.RabbitMQ.URL != "" {
		s.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ)
		if err == nil {
			err = s.RabbitMQ.SetupTopology()
			if err != nil {
				_ = s.RabbitMQ.Close()
				s.RabbitMQ = nil
			}
		}
		if err != nil {
			logger.Warn().Err(err).Msg("初始化RabbitMQ失败，事件将保留在 outbox 中")
			s.RabbitMQ = nil
		}
	}

	return s, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭Redis连接失败")
		}
	}
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭数据库连接失败")
		}
	}
}
