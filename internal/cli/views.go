package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rajsexperiments/scanner-final/internal/client"
)

func (a *app) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show in-stock counts per product",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.store()
			if err := st.FetchSummary(cmd.Context()); err != nil {
				return err
			}
			items := st.Summary()
			total, unique := client.SummaryTotals(items)
			if a.json {
				return outputJSON(cmd.OutOrStdout(), map[string]any{
					"items":          items,
					"totalItems":     total,
					"uniqueProducts": unique,
				})
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "PRODUCT ID\tNAME\tCOUNT")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", it.ProductID, it.ProductName, it.Count)
			}
			fmt.Fprintf(tw, "\t%d product(s)\t%d\n", unique, total)
			return tw.Flush()
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the latest status of every item",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.store()
			if err := st.FetchCakeStatus(cmd.Context()); err != nil {
				return err
			}
			items := client.FilterCakeStatus(st.CakeStatus(), search)
			if a.json {
				return outputJSON(cmd.OutOrStdout(), items)
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "SERIAL\tSTATUS\tLOCATION\tLAST UPDATE")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.SerialNumber, it.Status, it.CurrentLocation, it.LastUpdate)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive serial number filter")
	return cmd
}

func (a *app) liveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "live",
		Short: "Show today's production, stock locations and sales",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.store()
			if err := st.FetchLiveOperations(cmd.Context()); err != nil {
				return err
			}
			live, _ := st.LiveOperations()
			if a.json {
				return outputJSON(cmd.OutOrStdout(), live)
			}

			p, inv, s := live.ProductionSummary, live.InventoryByLocation, live.SalesSummary
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Production:  %d today, %d total\n", p.ProducedToday, p.TotalProduced)
			fmt.Fprintf(w, "Stock:       warehouse %d, in transit %d, boutique %d, marché %d, saleya %d\n",
				inv.InProductionWarehouse, inv.InTransit, inv.AtBoutique, inv.AtMarche, inv.AtSaleya)
			fmt.Fprintf(w, "Sales:       %d B2C today, %d B2B today, %d total\n",
				s.SoldTodayB2C, s.DeliveredTodayB2B, s.TotalSoldDelivered)
			return nil
		},
	}
}
