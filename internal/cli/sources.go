package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/buker/latamai/internal/backend"
	"github.com/buker/latamai/internal/chat"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the data sources known to the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg, os.Stderr)
		if err != nil {
			return err
		}
		return listSources(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), newBackend(cfg, logger))
	},
}

type sourcesClient interface {
	Sources(ctx context.Context) (*chat.SourcesResponse, error)
}

func listSources(ctx context.Context, out, errOut io.Writer, client sourcesClient) error {
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := client.Sources(ctx)
	if err != nil {
		fmt.Fprintln(errOut, backend.Message(err, backend.EndpointSources))
		if detail := backend.Detail(err); detail != "" {
			fmt.Fprintln(errOut, detail)
		}
		return fmt.Errorf("%w: %v", errReported, err)
	}

	if len(resp.Sources) == 0 {
		fmt.Fprintln(out, "No hay fuentes registradas.")
		return nil
	}
	for _, s := range resp.Sources {
		fmt.Fprintln(out, formatDataSource(s))
	}
	return nil
}

func formatDataSource(s chat.DataSource) string {
	line := fmt.Sprintf("- %s (%s)", s.Name, s.ID)
	if s.URL != "" {
		line += " " + s.URL
	}
	return line
}
