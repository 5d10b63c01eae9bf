package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rajsexperiments/scanner-final/internal/client"
)

func (a *app) logsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "List recorded scans, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st := a.store()
			if err := st.FetchLogs(ctx); err != nil {
				return err
			}
			if a.json {
				return outputJSON(cmd.OutOrStdout(), st.Logs())
			}
			// Names are cosmetic; failures were already reported.
			_ = st.FetchProducts(ctx)
			_ = st.FetchB2BClients(ctx)

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "TIMESTAMP\tSERIAL\tPRODUCT\tEVENT\tLOCATION\tCLIENT")
			for _, l := range st.Logs() {
				name, ok := st.ProductName(l.SerialNumber)
				if !ok {
					name = "?"
				}
				buyer := ""
				if l.ClientID != "" {
					buyer = st.ClientName(l.ClientID)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					l.Timestamp, l.SerialNumber, name, l.ScanEvent, l.Location, dash(buyer))
			}
			return tw.Flush()
		},
	}
}

func (a *app) clearCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Erase the whole scan log (Warehouse Manager only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("SCANNER_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and --password (or $SCANNER_PASSWORD) are required")
			}

			ctx := cmd.Context()
			st := a.store()
			sess := client.NewSession(st, a.notes)
			user, err := sess.Login(ctx, email, password)
			if err != nil {
				return err
			}
			if err := st.ClearAllLogs(ctx, user); err != nil {
				return err
			}
			st.Wait()
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().StringVar(&password, "password", "", "user password")
	return cmd
}
