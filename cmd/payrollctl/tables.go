package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"paycompliance/internal/service"

	"github.com/spf13/cobra"
)

func newTablesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables [country year]",
		Short: "List loaded tax tables, or print one as JSON",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or <country> <year>, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := root.registry()
			if err != nil {
				return err
			}
			svc := service.NewTaxTableService(registry, nil, root.logger())

			if len(args) == 2 {
				year, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("year %q is not a number", args[1])
				}
				table, err := svc.Get(cmd.Context(), args[0], year)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), table)
			}

			res, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "source: %s\n", res.Source)
			fmt.Fprintln(tw, "COUNTRY\tYEAR\tCURRENCY\tPAYROLL\tOVERTIME")
			for _, t := range res.Tables {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%t\t%s\n", t.Country, t.Year, t.Currency, t.Payroll, t.OvertimeMethod)
			}
			return tw.Flush()
		},
	}
}
