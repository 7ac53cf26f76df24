package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"food_routing_admin/internal/models"
	"food_routing_admin/internal/routeview"
)

var (
	filterQuery string
	sortColumn  string
	sortDesc    bool
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the route table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withTimeout(cmd)
		defer cancel()
		cons, err := connect(ctx)
		if err != nil {
			return err
		}

		cons.OnFilterChange(filterQuery)
		column := sortColumn
		if column == "" && sortDesc {
			column = string(routeview.ColumnRouteNumber)
		}
		if column != "" {
			if _, err := cons.OnSortClick(column); err != nil {
				return err
			}
			if sortDesc {
				if _, err := cons.OnSortClick(column); err != nil {
					return err
				}
			}
		}
		printRoutes(cmd.OutOrStdout(), cons.Render().Routes)
		return nil
	},
}

var volunteersCmd = &cobra.Command{
	Use:   "volunteers",
	Short: "Print all volunteers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withTimeout(cmd)
		defer cancel()
		cons, err := connect(ctx)
		if err != nil {
			return err
		}
		w := table(cmd.OutOrStdout(), "ID", "NAME", "ADDRESS", "PHONE", "NOTES")
		for _, v := range cons.Store().Volunteers() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", v.ID, v.FullName(), v.Address, v.PhoneNumber, v.Notes)
		}
		return w.Flush()
	},
}

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "Print all employed drivers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withTimeout(cmd)
		defer cancel()
		cons, err := connect(ctx)
		if err != nil {
			return err
		}
		w := table(cmd.OutOrStdout(), "ID", "NAME", "ADDRESS", "PHONE", "NOTES")
		for _, d := range cons.Store().Drivers() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", d.ID, d.FullName(), d.Address, d.PhoneNumber, d.Notes)
		}
		return w.Flush()
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <volunteer|driver|route> <key>",
	Short: "Delete one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := models.ParseKind(args[0])
		if err != nil {
			return err
		}
		key, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid key %q", args[1])
		}

		ctx, cancel := withTimeout(cmd)
		defer cancel()
		cons, err := connect(ctx)
		if err != nil {
			return err
		}
		if err := cons.OnDeleteRequest(ctx, kind, key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", models.Ref{Kind: kind, Key: key})
		return nil
	},
}

func table(out io.Writer, headers ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, h)
	}
	fmt.Fprintln(w)
	return w
}

func printRoutes(out io.Writer, rows []models.RouteRow) {
	w := table(out, "ROUTE", "PICKUP", "DROPOFF", "DRIVER", "NAME")
	for _, r := range rows {
		name := r.DriverName
		if !r.DriverResolved {
			name = "(unknown)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			r.RouteNumber,
			routeview.JoinLocations(r.PickupLocations),
			routeview.JoinLocations(r.DropoffLocations),
			r.DriverLabel(),
			name,
		)
	}
	w.Flush()
}
