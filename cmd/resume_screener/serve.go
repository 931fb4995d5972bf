package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/inference"
	"github.com/jonathan/resume-screener/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the prediction API and web UI",
		Long: `Start an HTTP server exposing POST /predict, POST /predict/file, the web UI at /,
and the /health and /ready probes. Artifacts are loaded at startup (unless
inference.eager_load is false) and retried lazily while unavailable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, a)
		},
	}
	cmd.Flags().IntP("port", "p", 5000, "Port to listen on")
	return cmd
}

func runServe(cmd *cobra.Command, a *app) error {
	cfg, err := a.loadConfig(cmd, map[string]string{"port": "server.port"})
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, "stdout")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	engine, store, err := newEngine(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Inference.EagerLoad {
		if engine.Start(ctx) != inference.StatusAvailable {
			log.Warn("starting without a model; predictions return Model Unavailable until the artifacts load",
				zap.Error(store.Err()))
		}
	}

	srv := server.New(engine, server.OptionsFromConfig(cfg), log)
	return srv.Start(ctx)
}
