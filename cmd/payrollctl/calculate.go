package main

import (
	"fmt"
	"strings"

	"paycompliance/internal/payroll"
	"paycompliance/internal/service"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type profileFlags struct {
	employeeID string
	country    string
	state      string
	currency   string
	salary     string
	frequency  string
	consent    bool
	exempt     bool
}

func (f *profileFlags) register(cmd *cobra.Command, defaultFrequency string) {
	cmd.Flags().StringVar(&f.employeeID, "employee", "cli", "employee identifier echoed in the result")
	cmd.Flags().StringVar(&f.country, "country", "MX", "ISO country code")
	cmd.Flags().StringVar(&f.state, "state", "", "state or province")
	cmd.Flags().StringVar(&f.currency, "currency", "", "currency (default: the table's currency)")
	cmd.Flags().StringVar(&f.salary, "salary", "", "monthly salary")
	cmd.Flags().StringVar(&f.frequency, "frequency", defaultFrequency, "pay frequency: daily, weekly, biweekly, monthly or bimonthly")
	cmd.Flags().BoolVar(&f.consent, "overtime-consent", false, "employee consented to overtime")
	cmd.Flags().BoolVar(&f.exempt, "exempt", false, "employee is exempt from overtime")
	_ = cmd.MarkFlagRequired("salary")
}

func (f *profileFlags) dto() (*service.ProfileDTO, error) {
	salary, err := parseAmount("salary", f.salary)
	if err != nil {
		return nil, err
	}
	return &service.ProfileDTO{
		EmployeeID:         f.employeeID,
		MonthlySalary:      salary,
		PayFrequency:       f.frequency,
		CountryCode:        strings.ToUpper(f.country),
		State:              f.state,
		Currency:           f.currency,
		ExemptFromOvertime: f.exempt,
		OvertimeConsent:    f.consent,
	}, nil
}

func newCalculateCmd(root *rootOptions) *cobra.Command {
	var (
		profile profileFlags
		start   string
		end     string
		amounts = map[string]*string{}
	)
	amountFlags := []string{"overtime-hours", "bonuses", "commissions", "other-income", "loans", "advances", "other-deductions"}

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate gross-to-net payroll for one pay period",
		Example: `  payrollctl calculate --country MX --salary 15000 --frequency biweekly \
    --start 2024-01-01 --end 2024-01-15`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := profile.dto()
			if err != nil {
				return err
			}
			values := make(map[string]decimal.Decimal, len(amountFlags))
			for _, name := range amountFlags {
				v, err := parseAmount(name, *amounts[name])
				if err != nil {
					return err
				}
				values[name] = v
			}

			registry, err := root.registry()
			if err != nil {
				return err
			}
			svc := service.NewPayrollService(payroll.NewEngine(registry), nil, nil, root.logger())

			calc, err := svc.Calculate(cmd.Context(), service.CalculatePayrollDTO{
				Profile:         p,
				PeriodStart:     start,
				PeriodEnd:       end,
				OvertimeHours:   values["overtime-hours"],
				Bonuses:         values["bonuses"],
				Commissions:     values["commissions"],
				OtherIncome:     values["other-income"],
				Loans:           values["loans"],
				Advances:        values["advances"],
				OtherDeductions: values["other-deductions"],
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), calc)
		},
	}

	profile.register(cmd, string(payroll.Monthly))
	cmd.Flags().StringVar(&start, "start", "", "period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "period end (YYYY-MM-DD)")
	for _, name := range amountFlags {
		amounts[name] = cmd.Flags().String(name, "0", strings.ReplaceAll(name, "-", " "))
	}
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func parseAmount(name, raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %q is not a number", name, raw)
	}
	return d, nil
}
