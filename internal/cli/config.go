package cli

import (
	"fmt"
	"io"

	"github.com/buker/latamai/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and manage latamai configuration settings.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		showConfig(cmd.OutOrStdout(), config.Get())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		showConfigPath(cmd.OutOrStdout(), config.GetConfigPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

func showConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out, "----------------------")
	fmt.Fprintf(out, "Chat URL:         %s\n", cfg.Backend.ChatURL)
	fmt.Fprintf(out, "Sources URL:      %s\n", cfg.Backend.SourcesURL)
	fmt.Fprintf(out, "Chat timeout:     %s\n", cfg.Backend.ChatTimeout)
	fmt.Fprintf(out, "Sources timeout:  %s\n", cfg.Backend.SourcesTimeout)
	fmt.Fprintln(out, "\nServer:")
	fmt.Fprintf(out, "  Address:        %s\n", cfg.Server.Addr)
	fmt.Fprintf(out, "  Rate limit:     %g/s (burst %d)\n", cfg.Server.RateLimit, cfg.Server.RateBurst)
	fmt.Fprintln(out, "\nTerminal chat:")
	fmt.Fprintf(out, "  Settings file:  %s\n", cfg.UI.SettingsPath)
	fmt.Fprintf(out, "  Log file:       %s\n", cfg.Log.File)
	fmt.Fprintf(out, "  Log level:      %s\n", cfg.Log.Level)
}

func showConfigPath(out io.Writer, path string) {
	if path == "" {
		fmt.Fprintln(out, "No config file found. Create one at:")
		fmt.Fprintln(out, "  "+config.GetDefaultConfigPath()+" (global)")
		fmt.Fprintln(out, "  ./.latamai.yaml (project)")
		return
	}
	fmt.Fprintf(out, "Config file: %s\n", path)
}
