package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/buker/latamai/internal/logging"
	"github.com/buker/latamai/internal/settings"
)

var themeCmd = &cobra.Command{
	Use:       "theme [auto|light|dark]",
	Short:     "Show or set the theme preference",
	Long:      `Without arguments, print the saved theme preference. With one, save it.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(settings.ModeAuto), string(settings.ModeLight), string(settings.ModeDark)},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store := settings.NewFileStore(cfg.UI.SettingsPath, logging.Discard())
		return runTheme(cmd.OutOrStdout(), store, args)
	},
}

func runTheme(out io.Writer, store settings.Store, args []string) error {
	if len(args) == 0 {
		mode, err := store.Load()
		if err != nil {
			return fmt.Errorf("failed to load theme: %w", err)
		}
		fmt.Fprintf(out, "Tema: %s (%s)\n", mode.Label(), mode)
		return nil
	}

	mode, err := settings.ParseMode(args[0])
	if err != nil {
		return err
	}
	if err := store.Save(mode); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	fmt.Fprintf(out, "Tema: %s (%s)\n", mode.Label(), mode)
	return nil
}
