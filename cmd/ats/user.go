package main

import (
	"fmt"

	"ats-go/internal/constants"
	"ats-go/internal/service"
	"ats-go/internal/storage"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "用户管理",
}

var (
	userEmail string
	userName  string
	userRole  string
)

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "创建用户并输出一次性 API 令牌",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		db, err := storage.NewDatabase(&cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		user, token, err := service.NewUserService(db.DB()).Create(cmd.Context(), userEmail, userName, userRole)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "用户已创建: %s (%s, %s)\n", user.Email, user.ID, user.Role)
		fmt.Fprintf(out, "API 令牌（仅显示一次）: %s\n", token)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "邮箱 (必填)")
	userCreateCmd.Flags().StringVar(&userName, "name", "", "姓名")
	userCreateCmd.Flags().StringVar(&userRole, "role", constants.RoleHR, "角色: Admin, HR, Interviewer")
	_ = userCreateCmd.MarkFlagRequired("email")
	userCmd.AddCommand(userCreateCmd)
}
