package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
	"github.com/rajsexperiments/scanner-final/internal/scan"
)

func (a *app) scanCmd() *cobra.Command {
	var (
		event    string
		location string
		clientID string
		input    string
		cooldown time.Duration
		bell     bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Record scans read line by line from a decoder",
		Long: `scan reads decoded QR payloads, one per line, from --input (default
stdin) and records each as a scan at the given checkpoint. Repeated reads
within the cooldown are dropped.`,
		Example: `  zbarcam --raw | scanner scan --event BOUTIQUE_STOCK_SCAN --location Nice-Boutique
  scanner scan --event DELIVERY_B2B --location Warehouse --client C-100 --input serials.txt`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, closeSrc, err := openInput(cmd, input)
			if err != nil {
				return err
			}
			defer closeSrc()

			st := a.store()
			cam := scan.NewLineCamera(src)
			defer cam.Close()
			opts := []scan.Option{
				scan.WithCooldown(cooldown),
				scan.WithNotifier(a.notes),
				scan.WithLogger(a.logger),
				scan.WithAppendTimeout(a.cfg.LedgerTimeout()),
			}
			if bell {
				opts = append(opts, scan.WithFeedback(&scan.Bell{W: a.stderr}))
			}
			ctl := scan.NewController(cam, st, opts...)

			ctl.SetEvent(types.ScanEvent(event))
			ctl.SetLocation(location)
			ctl.SetClient(clientID)
			if err := ctl.Start(cmd.Context()); err != nil {
				var verr *scan.ValidationError
				if errors.As(err, &verr) {
					return fmt.Errorf("cannot start scanning: %w", err)
				}
				return err
			}

			select {
			case <-cam.Done():
			case <-cmd.Context().Done():
			}
			ctl.Close()
			ctl.Wait()
			st.Wait()

			logs := st.Logs()
			if a.json {
				return outputJSON(cmd.OutOrStdout(), logs)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d scan(s) recorded.\n", len(logs))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&event, "event", "", "scan event, e.g. PRODUCTION_SCAN or DELIVERY_B2B")
	f.StringVar(&location, "location", "", "checkpoint location")
	f.StringVar(&clientID, "client", "", "B2B client id (required for DELIVERY_B2B)")
	f.StringVar(&input, "input", "-", "file of decoded payloads, - for stdin")
	f.DurationVar(&cooldown, "cooldown", scan.DefaultCooldown, "ignore decodes for this long after each accepted scan")
	f.BoolVar(&bell, "bell", false, "ring the terminal bell on each accepted scan")
	return cmd
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
