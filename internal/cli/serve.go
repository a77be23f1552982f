package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/buker/latamai/internal/config"
	"github.com/buker/latamai/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web chat and the API proxy",
	Long: `Serve the landing page, the web chat and the /api routes that proxy
questions and source listings to the knowledge backend.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default "+config.DefaultAddr+")")
	config.BindServeFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Addr:      cfg.Server.Addr,
		Backend:   newBackend(cfg, logger),
		Logger:    logger,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
		Version:   Version,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	return srv.Run(ctx)
}
