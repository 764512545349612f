package main

import (
	"fmt"
	"os"

	"ats-go/internal/config"
	"ats-go/internal/logger"

	"github.com/spf13/cobra"
)

const (
	app = "ats"

	defaultConfigFile = "config.yaml"
)

// version 在构建时通过 -ldflags 注入
var version = "dev"

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "ats 是一个简历导入与招聘流程管理服务",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute 执行根命令
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "配置文件路径")
	rootCmd.AddCommand(serveCmd, migrateCmd, ingestCmd, userCmd, configCmd)
}

// loadConfig 读取配置并初始化日志。
// 未显式指定且默认配置文件不存在时，使用 sqlite + 本地文件存储的默认配置
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	_, statErr := os.Stat(cfgFile)
	if !cmd.Flags().Changed("config") && os.IsNotExist(statErr) {
		cfg = config.DefaultConfig()
	} else {
		var err error
		cfg, err = config.LoadConfig(cfgFile)
		if err != nil {
			return nil, err
		}
	}

	if err := logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
		File:         cfg.Logger.File,
	}); err != nil {
		return nil, err
	}
	logger.Logger = logger.Logger.With().
		Str("app", app).
		Str("version", version).
		Logger()

	if os.IsNotExist(statErr) && !cmd.Flags().Changed("config") {
		logger.Warn().Str("path", cfgFile).Msg("配置文件不存在，使用默认配置")
	}
	return cfg, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "配置文件相关命令",
}

var configSampleCmd = &cobra.Command{
	Use:   "sample <path>",
	Short: "生成一份示例配置文件",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.CreateSampleConfig(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "示例配置已写入 %s\n", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSampleCmd)
}
