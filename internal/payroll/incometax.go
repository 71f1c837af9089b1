package payroll

import (
	"paycompliance/internal/apperror"
	"paycompliance/internal/taxtable"

	"github.com/shopspring/decimal"
)

type IncomeTaxResult struct {
	MonthlyTaxableIncome decimal.Decimal `json:"monthly_taxable_income"`
	BracketLower         decimal.Decimal `json:"bracket_lower"`
	BracketFixed         decimal.Decimal `json:"bracket_fixed"`
	MarginalRate         decimal.Decimal `json:"marginal_rate"`

	MonthlyTaxOwed  decimal.Decimal `json:"monthly_tax_owed"`
	MonthlySubsidy  decimal.Decimal `json:"monthly_subsidy"`
	MonthlyWithheld decimal.Decimal `json:"monthly_withheld"`

	// Period figures. SubsidyApplied is the part of the subsidy actually
	// used, so TaxOwed - SubsidyApplied == Withheld holds exactly.
	TaxOwed        decimal.Decimal `json:"tax_owed"`
	SubsidyApplied decimal.Decimal `json:"subsidy_applied"`
	Withheld       decimal.Decimal `json:"withheld"`
}

// IncomeTaxCalculator applies the progressive bracket table and the
// employment subsidy. The caller passes income already net of the employee
// social-security contribution.
type IncomeTaxCalculator struct{}

func (IncomeTaxCalculator) Calculate(periodTaxable decimal.Decimal, f Frequency, daysInPeriod int, table *taxtable.Table) (IncomeTaxResult, error) {
	if table == nil || table.IncomeTax == nil {
		return IncomeTaxResult{}, apperror.Configuration("no income tax rules configured")
	}

	monthly, err := ToMonthly(periodTaxable, f, daysInPeriod)
	if err != nil {
		return IncomeTaxResult{}, err
	}

	res := IncomeTaxResult{MonthlyTaxableIncome: monthly}
	if !monthly.IsPositive() {
		return res, nil
	}

	bracket, ok := findBracket(table.IncomeTax.Brackets, monthly)
	if !ok {
		return IncomeTaxResult{}, apperror.Configuration("no income tax bracket for monthly income %s", monthly.StringFixed(2))
	}
	res.BracketLower = bracket.Lower
	res.BracketFixed = bracket.Fixed
	res.MarginalRate = bracket.Rate
	res.MonthlyTaxOwed = RoundMoney(bracket.Fixed.Add(monthly.Sub(bracket.Lower).Mul(bracket.Rate)))

	res.MonthlySubsidy = findSubsidy(table.IncomeTax.Subsidy, monthly)
	res.MonthlyWithheld = decimal.Max(decimal.Zero, res.MonthlyTaxOwed.Sub(res.MonthlySubsidy))

	// Period tax is prorated from the rounded monthly figure, so it can differ
	// by a cent from rounding the unrounded bracket result once.
	owed, err := FromMonthly(res.MonthlyTaxOwed, f, daysInPeriod)
	if err != nil {
		return IncomeTaxResult{}, err
	}
	withheld, err := FromMonthly(res.MonthlyWithheld, f, daysInPeriod)
	if err != nil {
		return IncomeTaxResult{}, err
	}
	res.TaxOwed = RoundMoney(owed)
	res.Withheld = RoundMoney(withheld)
	res.SubsidyApplied = res.TaxOwed.Sub(res.Withheld)

	return res, nil
}

// findBracket returns the first bracket containing income. Published tables
// leave one-cent gaps between bands; income that lands in a gap (possible
// after frequency conversion) uses the highest band whose lower bound it
// has passed.
func findBracket(brackets []taxtable.Bracket, income decimal.Decimal) (taxtable.Bracket, bool) {
	for _, b := range brackets {
		if b.Contains(income) {
			return b, true
		}
	}
	for i := len(brackets) - 1; i >= 0; i-- {
		if income.GreaterThanOrEqual(brackets[i].Lower) {
			return brackets[i], true
		}
	}
	return taxtable.Bracket{}, false
}

func findSubsidy(table []taxtable.SubsidyBracket, income decimal.Decimal) decimal.Decimal {
	for _, s := range table {
		if s.Contains(income) {
			return s.Amount
		}
	}
	for i := len(table) - 1; i >= 0; i-- {
		if income.GreaterThanOrEqual(table[i].Lower) {
			return table[i].Amount
		}
	}
	return decimal.Zero
}
