package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/buker/latamai/internal/backend"
	"github.com/buker/latamai/internal/chat"
	"github.com/buker/latamai/internal/markdown"
	"github.com/buker/latamai/internal/settings"
	"github.com/buker/latamai/internal/stream"
	"github.com/buker/latamai/internal/tui"
	"github.com/buker/latamai/internal/tui/views"
)

// defaultWidth is used when the output is not a terminal.
const defaultWidth = 80

var noStream bool

var askCmd = &cobra.Command{
	Use:   "ask QUESTION...",
	Short: "Ask one question and print the answer",
	Long: `Send a single question to the knowledge backend and print the answer
with its sources.

On a terminal the answer is revealed progressively; press Ctrl+C to stop the
reveal. Use --no-stream to print it at once.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAskCmd,
}

func init() {
	askCmd.Flags().BoolVar(&noStream, "no-stream", false, "Print the answer at once")
}

// chatClient is the part of the backend client used by ask.
type chatClient interface {
	Chat(ctx context.Context, req chat.Request) (*chat.Response, error)
}

type askOptions struct {
	Stream bool
	Width  int
	Styles tui.Styles
	Clock  stream.Clock
}

// errReported marks an error whose message was already printed.
var errReported = errors.New("request failed")

func runAskCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	fd := int(os.Stdout.Fd())
	tty := term.IsTerminal(fd)
	width := defaultWidth
	if tty {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			width = w
		}
	}

	mode, err := settings.NewFileStore(cfg.UI.SettingsPath, logger).Load()
	if err != nil {
		logger.Debug("loading theme", "err", err)
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	return runAsk(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), newBackend(cfg, logger), strings.Join(args, " "), askOptions{
		Stream: tty && !noStream,
		Width:  width,
		Styles: tui.StylesFor(mode, lipgloss.HasDarkBackground()),
	})
}

// runAsk asks question and writes the answer to out. Backend failures are
// printed to errOut in user-facing form and reported as errReported.
func runAsk(ctx context.Context, out, errOut io.Writer, client chatClient, question string, opts askOptions) error {
	resp, err := client.Chat(ctx, chat.NewRequest(question, nil))
	if err != nil {
		fmt.Fprintln(errOut, backend.Message(err, backend.EndpointChat))
		if detail := backend.Detail(err); detail != "" {
			fmt.Fprintln(errOut, detail)
		}
		return fmt.Errorf("%w: %v", errReported, err)
	}

	nodes := markdown.Render(resp.Text())
	if opts.Stream {
		params := stream.ParamsFor(utf8.RuneCountInString(resp.Text()))
		if err := reveal(ctx, out, markdown.Plain(nodes), params, opts); err != nil {
			if !errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, opts.Styles.Notice.Render(views.StoppedText))
			return nil
		}
	} else {
		fmt.Fprintln(out, views.Markdown(nodes, opts.Width, opts.Styles))
	}

	meta := resp.Meta()
	if len(meta.Sources) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, views.Footer(meta, opts.Width, opts.Styles))
	}
	return nil
}

// reveal plays the wrapped plain text, writing each new suffix as it
// becomes visible. params come from the raw answer so the pace matches the
// other chat views.
func reveal(ctx context.Context, out io.Writer, text string, params stream.Params, opts askOptions) error {
	if opts.Width > 0 {
		text = wordwrap.String(text, opts.Width)
	}

	printed := 0
	err := stream.PlayWith(ctx, text, params, opts.Clock, func(ev stream.Event) error {
		if ev.Kind != stream.Partial {
			return nil
		}
		runes := []rune(ev.Text)
		if len(runes) > printed {
			if _, err := io.WriteString(out, string(runes[printed:])); err != nil {
				return err
			}
			printed = len(runes)
		}
		return nil
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out)
	return err
}
