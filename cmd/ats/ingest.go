package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ats-go/internal/processor"

	"github.com/spf13/cobra"
)

var (
	ingestJobID   string
	ingestActorID string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.zip|file.pdf|file.docx>",
	Short: "从本地文件导入简历并为岗位创建申请，结果以 JSON 输出",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("读取文件失败: %w", err)
		}

		a, err := buildApplication(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.storage.Close()

		job, err := a.jobs.Get(ctx, ingestJobID)
		if err != nil {
			return err
		}

		var report *processor.BulkReport
		if strings.EqualFold(filepath.Ext(args[0]), ".zip") {
			report, err = a.processor.ProcessArchive(ctx, data, job, ingestActorID)
			if err != nil {
				return err
			}
		} else {
			report = &processor.BulkReport{
				Successful: []processor.ApplicationWithCandidate{},
				Failed:     []processor.BulkFailure{},
			}
			name := filepath.Base(args[0])
			result, err := a.processor.ProcessResume(ctx, data, name, job, ingestActorID)
			if err != nil {
				report.Failed = append(report.Failed, processor.BulkFailure{Filename: name, Error: err.Error()})
			} else {
				report.Successful = append(report.Successful, *result)
			}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestJobID, "job", "", "目标岗位ID (必填)")
	ingestCmd.Flags().StringVar(&ingestActorID, "actor", "", "记录为创建者的用户ID")
	_ = ingestCmd.MarkFlagRequired("job")
}
