package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"questlog/internal/ops"
)

func newBackupCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the data directory to a tar.gz",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("questlog-backup-%s.tar.gz",
					time.Now().Format("20060102-150405"))
			}
			if err := ops.BackupDataDir(cfg.Data.Dir, out, newLogger(cfg)); err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "archive path (default questlog-backup-<ts>.tar.gz)")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <archive>",
		Short: "Restore the data directory from a backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return ops.RestoreDataDir(args[0], cfg.Data.Dir, newLogger(cfg))
		},
	}
}
