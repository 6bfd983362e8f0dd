package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"questlog/internal/clock"
	"questlog/internal/history"
	"questlog/internal/quest"
	"questlog/internal/template"
)

func newGenerateCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run one generation pass against the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			templates, err := template.NewFileRepo(cfg.Data.Dir)
			if err != nil {
				return err
			}
			quests, err := quest.NewFileRepo(cfg.Data.Dir)
			if err != nil {
				return err
			}
			records, err := history.NewFileRepo(cfg.Data.Dir)
			if err != nil {
				return err
			}

			gen := quest.NewGenerator(
				templates.ForUser(user),
				quests.ForUser(user),
				history.NewCounter(records.ForUser(user)),
				clock.RealClock{},
				logger,
			)
			res, err := gen.Generate()
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVar(&user, "user", "default", "user scope to generate for")
	return cmd
}
