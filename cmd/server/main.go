package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coderace-dev/coderace/internal/app"
	"github.com/coderace-dev/coderace/internal/config"
	"github.com/coderace-dev/coderace/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var overrides config.Config

	cmd := &cobra.Command{
		Use:           "coderace-server",
		Short:         "Two-player competitive coding race server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			bootLog := log.New("info")

			cfg, path, err := config.Load(bootLog, configPath)
			if err != nil {
				return err
			}
			cfg.UpdateFrom(overrides)

			logger := log.New(cfg.LogLevel)
			logger.Info().Str("config", path).Msg("configuration loaded")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}

			if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("server exited with error")
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&overrides.BaseURL, "base-url", "", "base URL used in shareable race links")
	cmd.Flags().StringVar(&overrides.QuestionsPath, "questions", "", "path to the questions JSON file")
	cmd.Flags().DurationVar(&overrides.RaceDuration, "race-duration", 0, "how long a race runs before timing out")
	cmd.Flags().StringVar(&overrides.PythonBin, "python", "", "python interpreter used for grading")
	cmd.Flags().StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")

	return cmd
}
