// Package cli implements the command-line interface for latamai using cobra.
// It provides the terminal chat, the web server, one-shot questions, the
// sources listing and configuration management.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/buker/latamai/internal/backend"
	"github.com/buker/latamai/internal/config"
	"github.com/buker/latamai/internal/logging"
	"github.com/buker/latamai/internal/settings"
	"github.com/buker/latamai/internal/tui"
)

var (
	// Version is set at build time via -ldflags
	Version = "dev"

	rootCmd = &cobra.Command{
		Use:   "latamai",
		Short: "Q&A assistant for Latin America and the Caribbean",
		Long: `latamai answers questions about Latin America and the Caribbean
(culture, biodiversity, HDI, defense and country comparisons) using a local
knowledge backend.

When run without subcommands, it opens the terminal chat.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runChat,
	}
)

func init() {
	cobra.OnInitialize(config.Init)

	// Global flags
	rootCmd.PersistentFlags().String("backend-url", "", "Chat endpoint of the knowledge backend")
	rootCmd.PersistentFlags().String("sources-url", "", "Sources endpoint of the knowledge backend")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	// Bind flags to viper
	config.BindFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and returns any error encountered.
// This is the main entry point for the CLI application. Errors whose
// user-facing message was already printed are not printed again.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

// loadConfig returns the merged configuration after validating it.
func loadConfig() (*config.Config, error) {
	cfg := config.Get()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, out io.Writer) (*log.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: out,
	})
}

func newBackend(cfg *config.Config, logger *log.Logger) *backend.Client {
	return backend.New(backend.Options{
		ChatURL:        cfg.Backend.ChatURL,
		SourcesURL:     cfg.Backend.SourcesURL,
		ChatTimeout:    cfg.Backend.ChatTimeout,
		SourcesTimeout: cfg.Backend.SourcesTimeout,
		Logger:         logger,
	})
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The chat owns the terminal, so logs go to a file.
	logFile, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	logger, err := newLogger(cfg, logFile)
	if err != nil {
		return err
	}

	store := settings.NewFileStore(cfg.UI.SettingsPath, logger)
	program := tui.NewProgram(tui.Options{
		Backend:  newBackend(cfg, logger),
		Settings: store,
		Logger:   logger,
	}, store)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	logger.Info("starting terminal chat", "backend", cfg.Backend.ChatURL)
	if err := program.Run(ctx); err != nil {
		return fmt.Errorf("terminal chat: %w", err)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "latamai version %s\n", Version)
	},
}
