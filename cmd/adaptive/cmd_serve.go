package main

import (
	"adaptive/internal/config"
	"adaptive/internal/gemini"
	"adaptive/internal/relay"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat relay server",
	Long: `Serves POST /api/chat, GET /api/test-gemini and GET /healthz.

When the config file exists it is watched, and changes to the gemini section
take effect without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	server := relay.NewServer(gctx, cfg)

	g.Go(func() error {
		return server.ListenAndServe(gctx)
	})

	if _, err := os.Stat(configPath); err == nil {
		watcher, err := relay.NewConfigWatcher(configPath, func(c *config.Config) {
			server.Apply(gctx, c.Gemini)
		})
		if err != nil {
			logger.Warn("Config hot reload disabled", zap.Error(err))
		} else {
			g.Go(func() error { return watcher.Run(gctx) })
		}
	}

	logger.Info("Relay started",
		zap.String("addr", cfg.Server.Addr),
		zap.String("transport", cfg.Gemini.Transport),
		zap.Bool("credential", cfg.Gemini.HasCredential()))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Relay stopped")
	return nil
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check the Gemini credential and connectivity",
	Args:  cobra.NoArgs,
	RunE:  runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Gemini.GetTimeout())
	defer cancel()

	gen, err := gemini.New(ctx, cfg.Gemini)
	if err != nil && !errors.Is(err, gemini.ErrMissingCredential) {
		return err
	}

	result := gemini.Probe(ctx, gen, cfg.Gemini.APIKey, cfg.Gemini.ProbeModel)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("probe failed: %s", result.Error)
	}
	return nil
}
