package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ats-go/internal/config"
	"ats-go/internal/storage/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/gorm"
)

func newTestDatabase(t *testing.T) *GormDatabase {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		Path:        ":memory:",
		LogLevel:    1,
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDatabase_SQLiteAutoMigrate(t *testing.T) {
	db := newTestDatabase(t)

	for _, m := range models.AllModels() {
		assert.True(t, db.DB().Migrator().HasTable(m), "缺少表: %T", m)
	}
	assert.True(t, db.DB().Migrator().HasTable("job_required_skills"))
}

func TestNewDatabase_UnknownDriver(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")

	_, err = NewDatabase(nil)
	assert.Error(t, err)
}

func TestDatabase_DuplicateKeyTranslated(t *testing.T) {
	db := newTestDatabase(t)

	first := models.Skill{ID: "s1", SkillName: "Go", NameKey: "go"}
	require.NoError(t, db.DB().Create(&first).Error)

	dup := models.Skill{ID: "s2", SkillName: "GO", NameKey: "go"}
	err := db.DB().Create(&dup).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "应翻译为 ErrDuplicatedKey, got %v", err)
}

func TestDatabase_TransactionRollback(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&models.Candidate{ID: "c1", Email: "a@b.c"}).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.DB().Model(&models.Candidate{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDBSystemAttr(t *testing.T) {
	assert.Equal(t, "postgresql", dbSystemAttr(config.DriverPostgres).Value.AsString())
	assert.Equal(t, "sqlite", dbSystemAttr(config.DriverSQLite).Value.AsString())
	assert.Equal(t, "mysql", dbSystemAttr(config.DriverMySQL).Value.AsString())
}

func TestGormTracingPlugin_TruncatesStatement(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	plugin := NewGormTracingPlugin(config.DriverSQLite, "test")
	plugin.tracer = tp.Tracer("test")
	require.NoError(t, db.Use(plugin))

	long := "SELECT 1 /* " + strings.Repeat("x", 2000) + " */"
	require.NoError(t, db.Exec(long).Error)

	spans := rec.Ended()
	require.NotEmpty(t, spans)
	var statement string
	for _, kv := range spans[len(spans)-1].Attributes() {
		if kv.Key == "db.statement" {
			statement = kv.Value.AsString()
		}
	}
	require.NotEmpty(t, statement)
	assert.Less(t, len(statement), len(long))
	assert.Contains(t, statement, "...")
	assert.True(t, strings.HasPrefix(statement, "SELECT 1"))
}
