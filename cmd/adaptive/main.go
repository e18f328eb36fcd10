package main

import (
	"adaptive/internal/config"
	"adaptive/internal/logging"
	"adaptive/internal/session"
	"adaptive/internal/store"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "adaptive",
	Short: "Adaptive - technical assessment workspace",
	Long: `Adaptive runs the chat relay for the assessment workspace and drives a
candidate session from the terminal.

The relay forwards assistant questions, together with the candidate's current
file and the problem statement, to the Gemini API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if verbose {
			loaded.Logging.Level = "debug"
		}
		if err := logging.Initialize(loaded.Logging.Options()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg = loaded
		logger = logging.Base().Named("cli")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "adaptive.yaml", "Config file")

	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionBeginCmd)
	sessionCmd.AddCommand(sessionResetCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(submitCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openSessions opens the configured key-value backend. Callers close the KV.
func openSessions() (*session.Store, store.KV, error) {
	kv, err := store.Open(cfg.Session.Store, cfg.Session.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session store: %w", err)
	}
	logger.Debug("Session store opened",
		zap.String("backend", cfg.Session.Store),
		zap.String("path", cfg.Session.Path))
	return session.New(kv), kv, nil
}
