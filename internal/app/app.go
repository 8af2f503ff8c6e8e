package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/coderace-dev/coderace/internal/config"
	"github.com/coderace-dev/coderace/internal/core"
	"github.com/coderace-dev/coderace/internal/grader"
	"github.com/coderace-dev/coderace/internal/problem"
	transporthttp "github.com/coderace-dev/coderace/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	bank, err := problem.LoadBank(cfg.QuestionsPath)
	if err != nil {
		return nil, fmt.Errorf("load problem bank: %w", err)
	}
	logger.Info().Str("path", cfg.QuestionsPath).Int("problems", bank.Len()).Msg("problem bank loaded")

	g := grader.NewPython(cfg.PythonBin, cfg.GradeTimeout)

	hub := core.NewHub(bank, g, core.Config{
		CountdownFrom: cfg.CountdownFrom,
		RaceDuration:  cfg.RaceDuration,
	}, logger)

	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	a.log.Info().Str("addr", a.server.Addr).Msg("server listening")

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}
