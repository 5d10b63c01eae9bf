package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/rajsexperiments/scanner-final/internal/client"
	"github.com/rajsexperiments/scanner-final/internal/config"
	"github.com/rajsexperiments/scanner-final/internal/logging"
	"github.com/rajsexperiments/scanner-final/internal/notify"
)

// app carries resolved configuration and global flags into subcommands.
type app struct {
	cfg      config.Config
	proxyURL string
	lang     string
	logLevel string
	json     bool
	logger   *slog.Logger

	// stderr is shared by the logger, notifications and the bell.
	stderr io.Writer
	notes  notify.Notifier
}

// NewRootCmd builds the scanner command tree.
func NewRootCmd() *cobra.Command {
	a := &app{logger: logging.Discard(), stderr: io.Discard, notes: notify.Discard{}}

	root := &cobra.Command{
		Use:   "scanner",
		Short: "Scanner - QR scan ledger client",
		Long: `scanner records QR scans of serialized items at supply-chain checkpoints
and reads back the ledger's logs, stock summary and dashboards through the
proxy API. It can also run a local development ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.proxyURL, "proxy", "", "proxy base URL (default $SCANNER_PROXY_URL or http://127.0.0.1:8080)")
	pf.StringVar(&a.lang, "lang", "", "notification language: en, fr or it (default $SCANNER_LANG or $LANG)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVar(&a.json, "json", false, "output in JSON format")

	root.AddCommand(
		a.scanCmd(),
		a.logsCmd(),
		a.summaryCmd(),
		a.productsCmd(),
		a.clientsCmd(),
		a.usersCmd(),
		a.statusCmd(),
		a.liveCmd(),
		a.clearCmd(),
		a.ledgerCmd(),
	)
	return root
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.proxyURL == "" {
		a.proxyURL = cfg.ProxyURL
	}
	if a.lang == "" {
		a.lang = cfg.Lang
	}
	if a.logLevel == "" {
		a.logLevel = cfg.LogLevel
	}
	a.stderr = logging.NewLockedWriter(cmd.ErrOrStderr())
	a.logger = logging.New(a.logLevel, cfg.LogFormat, a.stderr)
	a.notes = notify.NewWriter(a.stderr, a.tag())
	return nil
}

// tag resolves the notification language. LANG values such as
// "fr_FR.UTF-8" are reduced to a BCP 47 tag first.
func (a *app) tag() language.Tag {
	pref := a.lang
	if pref == "" {
		pref = os.Getenv("LANG")
	}
	pref, _, _ = strings.Cut(pref, ".")
	return notify.Match(strings.ReplaceAll(pref, "_", "-"))
}

func (a *app) store() *client.Store {
	return client.NewStore(
		client.NewHTTPClient(a.proxyURL, nil),
		client.WithNotifier(a.notes),
		client.WithLogger(a.logger),
		client.WithRefreshTimeout(a.cfg.LedgerTimeout()),
	)
}

// outputJSON writes v as indented JSON to the command's output.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
