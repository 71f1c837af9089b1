package main

import (
	"time"

	"paycompliance/internal/payroll"

	"github.com/spf13/cobra"
)

func newProjectCmd(root *rootOptions) *cobra.Command {
	var (
		profile profileFlags
		year    int
	)

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project annual payroll, taxes and employer cost",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := profile.dto()
			if err != nil {
				return err
			}
			freq, err := payroll.ParseFrequency(p.PayFrequency)
			if err != nil {
				return err
			}

			registry, err := root.registry()
			if err != nil {
				return err
			}
			summary, err := payroll.NewEngine(registry).Project(payroll.CompensationProfile{
				EmployeeID:         p.EmployeeID,
				MonthlySalary:      p.MonthlySalary,
				PayFrequency:       freq,
				CountryCode:        p.CountryCode,
				State:              p.State,
				Currency:           p.Currency,
				ExemptFromOvertime: p.ExemptFromOvertime,
				OvertimeConsent:    p.OvertimeConsent,
			}, year)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}

	profile.register(cmd, string(payroll.Monthly))
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "tax year")
	return cmd
}
