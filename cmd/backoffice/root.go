package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cabinet-comptable/backoffice/internal/pkg/config"
	"github.com/cabinet-comptable/backoffice/pkg/logger"
)

// env is filled by the root command before any subcommand runs.
type env struct {
	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:          "backoffice",
		Short:        "Back office of an accounting firm",
		Long:         "backoffice serves the client book, credentials, tasks, invoicing and fiscal calendar API.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.log = logger.New(logger.Options{
				Level:   cfg.LogLevel,
				Pretty:  cfg.IsDevelopment(),
				File:    cfg.LogFile,
				Service: "backoffice",
			})
			return nil
		},
	}
	root.AddCommand(newServeCmd(e), newCreateSuperadminCmd(e))
	return root
}
