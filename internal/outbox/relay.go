package outbox // 发件箱模式（Outbox Pattern）：业务事务内写事件，后台中继发布到 RabbitMQ

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ats-go/internal/config"
	"ats-go/internal/logger"
	"ats-go/internal/storage/models"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPollingInterval = 5 * time.Second
	defaultBatchSize       = 10
	defaultMaxRetryCount   = 5
)

// Publisher 消息发布器，storage.RabbitMQ 实现了该接口
type Publisher interface {
	PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error
}

// Enqueue 在调用方的事务中写入一条待发布事件。事件类型同时作为路由键
func Enqueue(tx *gorm.DB, exchange, aggregateID, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化 outbox 事件 %s 失败: %w", eventType, err)
	}
	msg := models.OutboxMessage{
		AggregateID:      aggregateID,
		EventType:        eventType,
		Payload:          string(body),
		TargetExchange:   exchange,
		TargetRoutingKey: eventType,
		Status:           models.OutboxStatusPending,
	}
	if err := tx.Create(&msg).Error; err != nil {
		return fmt.Errorf("写入 outbox 事件 %s 失败: %w", eventType, err)
	}
	return nil
}

// MessageRelay 轮询 outbox 表并将消息发布到消息代理。
type MessageRelay struct {
	db              *gorm.DB
	publisher       Publisher
	log             zerolog.Logger
	pollingInterval time.Duration
	batchSize       int
	maxRetryCount   int
	done            chan struct{}
	stopped         chan struct{}
	tracer          trace.Tracer
}

// NewMessageRelay 创建一个新的 MessageRelay 实例。
func NewMessageRelay(db *gorm.DB, publisher Publisher, cfg config.OutboxConfig) *MessageRelay {
	r := &MessageRelay{
		db:              db,
		publisher:       publisher,
		log:             logger.Named("outbox-relay"),
		pollingInterval: config.GetDuration(cfg.PollInterval, defaultPollingInterval),
		batchSize:       cfg.BatchSize,
		maxRetryCount:   cfg.MaxRetries,
		done:            make(chan struct{}),
		stopped:         make(chan struct{}),
		tracer:          otel.Tracer("ats-go/outbox"),
	}
	if r.batchSize <= 0 {
		r.batchSize = defaultBatchSize
	}
	if r.maxRetryCount <= 0 {
		r.maxRetryCount = defaultMaxRetryCount
	}
	return r
}

// Start 开始消息中继的轮询过程。
func (r *MessageRelay) Start() {
	r.log.Info().Dur("interval", r.pollingInterval).Msg("MessageRelay starting")
	ticker := time.NewTicker(r.pollingInterval)

	go func() {
		defer close(r.stopped)
		for {
			select {
			case <-r.done:
				ticker.Stop()
				r.log.Info().Msg("MessageRelay stopped")
				return
			case <-ticker.C:
				if _, err := r.processPendingMessages(context.Background()); err != nil {
					r.log.Error().Err(err).Msg("处理待发布消息失败")
				}
			}
		}
	}()
}

// Stop 优雅地停止消息中继服务，等待当前批次结束
func (r *MessageRelay) Stop() {
	close(r.done)
	<-r.stopped
}

// processPendingMessages 获取并处理一批待处理消息，返回本批处理的条数
func (r *MessageRelay) processPendingMessages(ctx context.Context) (int, error) {
	var messages []models.OutboxMessage

	// 空轮询不创建 span
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, tx.Error
	}
	defer tx.Rollback()

	// FOR UPDATE SKIP LOCKED 让多个实例可以同时中继；sqlite 方言会忽略该子句
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", models.OutboxStatusPending).
		Order("created_at asc").
		Order("id asc").
		Limit(r.batchSize).
		Find(&messages).Error
	if err != nil {
		return 0, fmt.Errorf("获取待发布消息失败: %w", err)
	}

	if len(messages) == 0 {
		return 0, tx.Commit().Error
	}

	ctx, span := r.tracer.Start(ctx, "outbox.ProcessBatch",
		trace.WithAttributes(
			attribute.Int("messaging.batch.message_count", len(messages)),
		),
	)
	defer span.End()

	for i := range messages {
		msg := &messages[i]
		err := r.publisher.PublishMessage(ctx, msg.TargetExchange, msg.TargetRoutingKey, []byte(msg.Payload), true)
		if err != nil {
			msg.RetryCount++
			msg.ErrorMessage = err.Error()
			if msg.RetryCount >= r.maxRetryCount {
				msg.Status = models.OutboxStatusFailed
			}
			r.log.Warn().Err(err).
				Uint64("message_id", msg.ID).
				Str("aggregate_id", msg.AggregateID).
				Int("retries", msg.RetryCount).
				Msg("发布 outbox 消息失败")
		} else {
			now := time.Now()
			msg.Status = models.OutboxStatusSent
			msg.ProcessedAt = &now
			msg.ErrorMessage = ""
		}

		// 更新失败时整个事务回滚，消息在下一次轮询中被重新拾取
		if err := tx.Save(msg).Error; err != nil {
			return 0, fmt.Errorf("更新 outbox 消息 %d 失败: %w", msg.ID, err)
		}
	}

	return len(messages), tx.Commit().Error
}
