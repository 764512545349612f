package main

import (
	"ats-go/internal/logger"
	"ats-go/internal/storage"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "创建或更新数据库表结构",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		// 由本命令显式迁移
		cfg.Database.AutoMigrate = false
		db, err := storage.NewDatabase(&cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.AutoMigrate(); err != nil {
			return err
		}
		logger.Info().Str("driver", cfg.Database.Driver).Msg("数据库迁移完成")
		return nil
	},
}
