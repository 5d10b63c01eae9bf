package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
)

func (a *app) productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the product catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.store()
			if err := st.FetchProducts(cmd.Context()); err != nil {
				return err
			}
			return a.printProducts(cmd, st.Products())
		},
	}

	var p types.Product
	add := &cobra.Command{
		Use:   "add",
		Short: "Create or update a product",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if p.ID == "" || p.Name == "" {
				return errors.New("--id and --name are required")
			}
			st := a.store()
			if err := st.AddProduct(cmd.Context(), p); err != nil {
				return err
			}
			st.Wait()
			return a.printProducts(cmd, st.Products())
		},
	}
	f := add.Flags()
	f.StringVar(&p.ID, "id", "", "product id, the serial prefix (e.g. OLV-001)")
	f.StringVar(&p.Name, "name", "", "product name")
	f.StringVar(&p.Category, "category", "", "category")
	f.StringVar(&p.UnitOfMeasure, "unit", "", "unit of measure")
	f.Float64Var(&p.UnitCost, "unit-cost", 0, "unit cost")
	f.StringVar(&p.SupplierName, "supplier", "", "supplier name")
	f.IntVar(&p.ReorderLevel, "reorder-level", 0, "reorder level")
	f.IntVar(&p.ReorderQuantity, "reorder-quantity", 0, "reorder quantity")
	f.StringVar(&p.StorageLocation, "storage", "", "storage location")
	f.IntVar(&p.ShelfLifeDays, "shelf-life-days", 0, "shelf life in days")
	f.BoolVar(&p.IsPerishable, "perishable", false, "product is perishable")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.store()
			if err := st.DeleteProduct(cmd.Context(), args[0]); err != nil {
				return err
			}
			st.Wait()
			return a.printProducts(cmd, st.Products())
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}

func (a *app) printProducts(cmd *cobra.Command, products []types.Product) error {
	if a.json {
		return outputJSON(cmd.OutOrStdout(), products)
	}
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tUNIT\tPERISHABLE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", p.ID, p.Name, dash(p.Category), dash(p.UnitOfMeasure), p.IsPerishable)
	}
	return tw.Flush()
}

func (a *app) clientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clients",
		Short: "List B2B clients",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.store()
			if err := st.FetchB2BClients(cmd.Context()); err != nil {
				return err
			}
			clients := st.B2BClients()
			if a.json {
				return outputJSON(cmd.OutOrStdout(), clients)
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tCONTACT\tADDRESS")
			for _, c := range clients {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ClientID, c.ClientName, dash(c.ContactPerson), dash(c.Address))
			}
			return tw.Flush()
		},
	}
}

func (a *app) usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the user directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.store()
			if err := st.FetchUsers(cmd.Context()); err != nil {
				return err
			}
			users := st.Users()
			for i := range users {
				users[i].Password = ""
			}
			if a.json {
				return outputJSON(cmd.OutOrStdout(), users)
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "EMAIL\tNAME\tROLE\tLOCATION")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.Email, u.Name, u.Role, dash(u.Location))
			}
			return tw.Flush()
		},
	}
}
