package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ats-go/internal/ai"
	"ats-go/internal/api/handler"
	"ats-go/internal/api/router"
	"ats-go/internal/config"
	"ats-go/internal/logger"
	"ats-go/internal/outbox"
	"ats-go/internal/parser"
	"ats-go/internal/processor"
	"ats-go/internal/service"
	"ats-go/internal/storage"
	"ats-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app/server"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

// application 运行期共享的组件
type application struct {
	storage   *storage.Storage
	processor *processor.ResumeProcessor
	jobs      *service.JobService
	users     *service.UserService
	handler   *handler.Handler
}

// buildApplication 初始化存储、AI 客户端、提取器和各业务服务
func buildApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	st, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("初始化存储管理器失败: %w", err)
	}

	aiClient, err := ai.NewClientFromConfig(ctx, cfg.AI)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("初始化AI客户端失败: %w", err)
	}
	if !aiClient.Available() {
		logger.Warn().Msg("未配置AI服务密钥，简历分析相关接口将返回 503")
	}

	extractor, err := parser.NewExtractor(ctx)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("初始化文本提取器失败: %w", err)
	}

	db := st.DB.DB()
	cache := service.CacheFrom(st.Redis)
	exchange := cfg.RabbitMQ.EventsExchange

	settings := service.NewSettingsService(db)
	if err := settings.EnsureDefaults(ctx, service.DefaultAISettings(cfg.AI)); err != nil {
		st.Close()
		return nil, err
	}

	a := &application{
		storage:   st,
		processor: processor.NewResumeProcessor(db, st.Files, extractor, aiClient, processor.WithEventsExchange(exchange)),
		jobs:      service.NewJobService(db, aiClient, cache),
		users:     service.NewUserService(db),
	}
	a.handler = handler.New(handler.Deps{
		Processor:    a.processor,
		Jobs:         a.jobs,
		Skills:       service.NewSkillService(db),
		Applications: service.NewApplicationService(db, st.Files, aiClient, cache, exchange),
		Rediscovery:  service.NewRediscoveryService(db, aiClient),
		Reports:      service.NewReportService(db),
		Org:          service.NewOrgService(db),
		Users:        a.users,
		Settings:     settings,
	})
	return a, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	shutdownTracing, err := tracing.InitProvider(ctx, cfg.Tracing, version)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error().Err(err).Msg("关闭 tracer provider 失败")
		}
	}()

	a, err := buildApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.storage.Close()

	// outbox 中继：没有可用的 RabbitMQ 时事件保留在表中，等下次启动再发布
	var relay *outbox.MessageRelay
	if cfg.Outbox.Enabled && a.storage.RabbitMQ != nil {
		relay = outbox.NewMessageRelay(a.storage.DB.DB(), a.storage.RabbitMQ, cfg.Outbox)
		relay.Start()
	}

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodyMB<<20),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	router.RegisterRoutes(h, a.handler, router.Options{
		Users:           a.users,
		AllowQueryToken: cfg.Auth.AllowQueryToken,
	})

	go func() {
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()
	logger.Info().Str("address", cfg.Server.Address).Msg("HTTP服务已启动")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ExitTimeoutSeconds)*time.Second)
	defer cancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
	}
	if relay != nil {
		relay.Stop()
	}

	logger.Info().Msg("优雅退出完成")
	return nil
}
