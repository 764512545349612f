package logger // 日志记录器相关的组件和功能

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzerolog "github.com/hertz-contrib/logger/zerolog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Logger 默认的全局日志实例，应用中其他地方可以直接使用
	Logger = log.Logger
)

// Config 日志配置结构体
type Config struct {
	Level        string `json:"level" yaml:"level"`                 // debug, info, warn, error
	Format       string `json:"format" yaml:"format"`               // json 或 pretty
	TimeFormat   string `json:"time_format" yaml:"time_format"`     // 时间戳格式
	ReportCaller bool   `json:"report_caller" yaml:"report_caller"` // 是否记录调用位置
	File         string `json:"file" yaml:"file"`                   // 可选，同时写入的日志文件
}

// Init 根据配置初始化全局日志，并把 hertz 的 hlog 桥接到同一个 zerolog 实例
func Init(config Config) error {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	var output io.Writer = os.Stdout
	if config.Format == "pretty" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: config.TimeFormat,
		}
	}

	if config.File != "" {
		fileWriter, err := os.OpenFile(config.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("无法打开日志文件 %s: %w", config.File, err)
		}
		output = zerolog.MultiLevelWriter(output, fileWriter)
	}

	contextLogger := zerolog.New(output).Level(level).With().Timestamp()
	if config.ReportCaller {
		contextLogger = contextLogger.Caller()
	}

	// 替换全局日志记录器
	Logger = contextLogger.Logger()
	log.Logger = Logger

	hlog.SetLogger(hertzzerolog.From(Logger))
	hlog.SetLevel(hertzLevel(level))
	return nil
}

// hertzLevel 将 zerolog 级别映射为 hlog 级别
func hertzLevel(level zerolog.Level) hlog.Level {
	switch level {
	case zerolog.TraceLevel:
		return hlog.LevelTrace
	case zerolog.DebugLevel:
		return hlog.LevelDebug
	case zerolog.WarnLevel:
		return hlog.LevelWarn
	case zerolog.ErrorLevel:
		return hlog.LevelError
	case zerolog.FatalLevel, zerolog.PanicLevel:
		return hlog.LevelFatal
	default:
		return hlog.LevelInfo
	}
}

// Named 返回带 component 字段的子日志
func Named(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// Debug 开始一条调试级别的日志事件
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info 开始一条信息级别的日志事件
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn 开始一条警告级别的日志事件
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error 开始一条错误级别的日志事件
func Error() *zerolog.Event {
	return Logger.Error()
}

// Fatal 开始一条致命错误级别的日志事件，记录后程序将退出
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}

// Ctx 从上下文中获取日志记录器；上下文中没有时返回全局日志
func Ctx(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &Logger
	}
	return l
}

// WithContext 将全局日志记录器添加到上下文中
func WithContext(ctx context.Context) context.Context {
	return Logger.WithContext(ctx)
}
