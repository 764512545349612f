package storage

import (
	"context"
	"fmt"
	"time"

	"ats-go/internal/config"
	"ats-go/internal/logger"
	"ats-go/internal/storage/models"
	"ats-go/internal/tracing"

	"github.com/glebarez/sqlite"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbTracer = otel.Tracer("ats-go/storage/database")

type spanContextKey struct{}

// GormTracingPlugin 是一个GORM插件，用于向OpenTelemetry中添加数据库操作的追踪点
type GormTracingPlugin struct {
	tracer         trace.Tracer
	dbName         string
	dbSystem       attribute.KeyValue
	disableErrSkip bool
}

// Name 返回插件名称
func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

// Initialize 注册GORM回调以启用追踪
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("otel:before_create", p.before("CREATE")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("otel:after_create", p.after()); err != nil {
		return err
	}

	if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("SELECT")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otel:after_query", p.after()); err != nil {
		return err
	}

	if err := cb.Update().Before("gorm:update").Register("otel:before_update", p.before("UPDATE")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("otel:after_update", p.after()); err != nil {
		return err
	}

	if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("DELETE")); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after()); err != nil {
		return err
	}

	if err := cb.Row().Before("gorm:row").Register("otel:before_row", p.before("ROW")); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("otel:after_row", p.after()); err != nil {
		return err
	}

	if err := cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("RAW")); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after())
}

func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		if p.disableErrSkip && db.Statement.SkipHooks {
			return
		}

		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		tableName := db.Statement.Table
		if tableName == "" {
			tableName = "unknown"
		}

		opts := []trace.SpanStartOption{
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				p.dbSystem,
				attribute.String("db.name", p.dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", tableName),
			),
		}

		newCtx, span := p.tracer.Start(ctx, fmt.Sprintf("%s %s", operation, tableName), opts...)
		db.Statement.Context = context.WithValue(newCtx, spanContextKey{}, span)
	}
}

func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		if db.Statement.Context == nil {
			return
		}
		span, ok := db.Statement.Context.Value(spanContextKey{}).(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if sql := db.Statement.SQL.String(); sql != "" {
			span.SetAttributes(attribute.String("db.statement", tracing.SafeSQL(sql)))
		}

		if db.Error != nil {
			if db.Error == gorm.ErrRecordNotFound {
				// 查询不到记录属于正常业务分支
				span.SetAttributes(attribute.String("error.type", "record_not_found"))
				span.SetStatus(codes.Ok, "record not found")
			} else {
				span.SetAttributes(
					attribute.String("error.type", "database_error"),
					attribute.String("error.message", db.Error.Error()),
				)
				span.RecordError(db.Error)
				span.SetStatus(codes.Error, db.Error.Error())
			}
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
}

// NewGormTracingPlugin 创建一个新的GORM追踪插件
func NewGormTracingPlugin(driver, dbName string) *GormTracingPlugin {
	return &GormTracingPlugin{
		tracer:         dbTracer,
		dbName:         dbName,
		dbSystem:       dbSystemAttr(driver),
		disableErrSkip: true,
	}
}

// WithDisableErrSkip 设置是否禁用错误跳过
func (p *GormTracingPlugin) WithDisableErrSkip(disable bool) *GormTracingPlugin {
	p.disableErrSkip = disable
	return p
}

func dbSystemAttr(driver string) attribute.KeyValue {
	switch driver {
	case config.DriverPostgres:
		return semconv.DBSystemPostgreSQL
	case config.DriverSQLite:
		return semconv.DBSystemSqlite
	default:
		return semconv.DBSystemMySQL
	}
}

// Database 关系数据库接口
type Database interface {
	// DB 返回GORM数据库连接实例
	DB() *gorm.DB

	// Transaction 在单个事务中执行 fn，fn 返回错误时整体回滚
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Close 关闭数据库连接
	Close() error
}

var _ Database = (*GormDatabase)(nil)

// GormDatabase 基于 GORM 的关系数据库实现，支持 mysql / postgres / sqlite
type GormDatabase struct {
	db  *gorm.DB
	cfg *config.DatabaseConfig
}

// gormLogWriter 把 gorm 的日志输出转到 zerolog
type gormLogWriter struct{}

func (gormLogWriter) Printf(format string, args ...interface{}) {
	l := logger.Named("gorm")
	l.Info().Msgf(format, args...)
}

func gormLogLevel(level int) gormlogger.LogLevel {
	switch level {
	case 1:
		return gormlogger.Silent
	case 2:
		return gormlogger.Error
	case 3:
		return gormlogger.Warn
	case 4:
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverMySQL, "":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds",
			cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database, connectTimeout(cfg))
		return mysql.Open(dsn), nil
	case config.DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable connect_timeout=%d",
			cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, connectTimeout(cfg))
		return postgres.Open(dsn), nil
	case config.DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		return sqlite.Open(path + "?_pragma=busy_timeout(5000)"), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}
}

func connectTimeout(cfg *config.DatabaseConfig) int {
	if cfg.ConnectTimeoutSeconds > 0 {
		return cfg.ConnectTimeoutSeconds
	}
	return 10
}

// NewDatabase 按配置打开数据库连接，注册追踪插件，并在需要时自动迁移表结构
func NewDatabase(cfg *config.DatabaseConfig) (*GormDatabase, error) {
	if cfg == nil {
		return nil, fmt.Errorf("数据库配置不能为空")
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true, // 唯一键冲突统一翻译为 gorm.ErrDuplicatedKey
		Logger: gormlogger.New(gormLogWriter{}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
		}),
		// sqlite 的内存库只有一个连接，预编译缓存意义不大
		PrepareStmt: cfg.Driver != config.DriverSQLite,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败(%s): %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// sqlite 单写者；内存库每个连接是独立的库，必须固定为一个连接
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	} else {
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute)
	}

	d := &GormDatabase{db: db, cfg: cfg}

	if err := db.Use(NewGormTracingPlugin(cfg.Driver, cfg.Database)); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("注册追踪插件失败: %w", err)
	}

	if cfg.AutoMigrate {
		if err := d.AutoMigrate(); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	logger.Info().Str("driver", cfg.Driver).Msg("成功连接到数据库")
	return d, nil
}

// AutoMigrate 使用GORM自动迁移全部表结构，迁移期间关闭SQL日志
func (d *GormDatabase) AutoMigrate() error {
	silentDB := d.db.Session(&gorm.Session{Logger: d.db.Logger.LogMode(gormlogger.Silent)})
	if err := silentDB.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("GORM自动迁移失败: %w", err)
	}
	logger.Info().Msg("GORM数据库结构迁移成功")
	return nil
}

// DB 返回GORM数据库连接实例
func (d *GormDatabase) DB() *gorm.DB {
	return d.db
}

// Transaction 在事务中执行 fn
func (d *GormDatabase) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	ctx, span := dbTracer.Start(ctx, "Database.Transaction", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	err := d.db.WithContext(ctx).Transaction(fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Close 关闭数据库连接
func (d *GormDatabase) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return sqlDB.Close()
}
