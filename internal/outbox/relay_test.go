package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ats-go/internal/config"
	"ats-go/internal/storage"
	"ats-go/internal/storage/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type published struct {
	exchange   string
	routingKey string
	body       string
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (f *fakePublisher) PublishMessage(_ context.Context, exchange, routingKey string, message []byte, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange, routingKey, string(message)})
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := storage.NewDatabase(&config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		Path:        ":memory:",
		LogLevel:    1,
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db.DB()
}

func TestEnqueueAndRelay(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if err := Enqueue(tx, "ats.events", "app-1", "application.created", map[string]string{"application_id": "app-1"}); err != nil {
			return err
		}
		return Enqueue(tx, "ats.events", "app-1", "application.stage_changed", map[string]string{"stage": "Shortlisted"})
	}))

	pub := &fakePublisher{}
	relay := NewMessageRelay(db, pub, config.OutboxConfig{BatchSize: 10})

	n, err := relay.processPendingMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, pub.sent, 2)
	assert.Equal(t, "ats.events", pub.sent[0].exchange)
	assert.Equal(t, "application.created", pub.sent[0].routingKey)
	assert.JSONEq(t, `{"application_id":"app-1"}`, pub.sent[0].body)
	assert.Equal(t, "application.stage_changed", pub.sent[1].routingKey)

	var msgs []models.OutboxMessage
	require.NoError(t, db.Order("id").Find(&msgs).Error)
	for _, m := range msgs {
		assert.Equal(t, models.OutboxStatusSent, m.Status)
		assert.NotNil(t, m.ProcessedAt)
	}

	// 已发送的消息不会重复发布
	n, err = relay.processPendingMessages(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, pub.sent, 2)
}

func TestRelay_RetryThenFail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, Enqueue(db, "ats.events", "app-2", "application.created", map[string]int{"n": 1}))

	pub := &fakePublisher{err: errors.New("broker down")}
	relay := NewMessageRelay(db, pub, config.OutboxConfig{MaxRetries: 2})

	_, err := relay.processPendingMessages(ctx)
	require.NoError(t, err)

	var msg models.OutboxMessage
	require.NoError(t, db.First(&msg).Error)
	assert.Equal(t, models.OutboxStatusPending, msg.Status)
	assert.Equal(t, 1, msg.RetryCount)
	assert.Equal(t, "broker down", msg.ErrorMessage)

	_, err = relay.processPendingMessages(ctx)
	require.NoError(t, err)
	require.NoError(t, db.First(&msg).Error)
	assert.Equal(t, models.OutboxStatusFailed, msg.Status)
	assert.Equal(t, 2, msg.RetryCount)

	// FAILED 状态不再被拾取
	n, err := relay.processPendingMessages(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewMessageRelay_Defaults(t *testing.T) {
	relay := NewMessageRelay(nil, &fakePublisher{}, config.OutboxConfig{})
	assert.Equal(t, defaultBatchSize, relay.batchSize)
	assert.Equal(t, defaultMaxRetryCount, relay.maxRetryCount)
	assert.Equal(t, defaultPollingInterval, relay.pollingInterval)
}
