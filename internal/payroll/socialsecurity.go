package payroll

import (
	"paycompliance/internal/apperror"
	"paycompliance/internal/taxtable"

	"github.com/shopspring/decimal"
)

// ContributionLine is one statutory contribution at period frequency.
type ContributionLine struct {
	Name     string          `json:"name"`
	Employee decimal.Decimal `json:"employee"`
	Employer decimal.Decimal `json:"employer"`
}

type SocialSecurityResult struct {
	Scheme        string             `json:"scheme"`
	DailyBase     decimal.Decimal    `json:"daily_base"`
	MonthlyBase   decimal.Decimal    `json:"monthly_base"`
	Lines         []ContributionLine `json:"lines"`
	EmployeeTotal decimal.Decimal    `json:"employee_total"`
	EmployerTotal decimal.Decimal    `json:"employer_total"`
}

// SocialSecurityCalculator computes employee and employer statutory
// insurance contributions. It is stateless.
type SocialSecurityCalculator struct{}

// Calculate works from the gross salary of one period. Every line is rounded
// once at period frequency and the totals are sums of the rounded lines.
func (SocialSecurityCalculator) Calculate(periodSalary decimal.Decimal, f Frequency, daysInPeriod int, table *taxtable.Table) (SocialSecurityResult, error) {
	if table == nil || table.SocialSecurity == nil {
		return SocialSecurityResult{}, apperror.Configuration("no social security rules configured")
	}
	if periodSalary.IsNegative() {
		return SocialSecurityResult{}, apperror.Validation("salary must not be negative")
	}

	monthly, err := ToMonthly(periodSalary, f, daysInPeriod)
	if err != nil {
		return SocialSecurityResult{}, err
	}

	rules := table.SocialSecurity
	switch rules.Scheme {
	case taxtable.SchemeReferenceUnit:
		return referenceUnitContributions(monthly, f, daysInPeriod, table.ReferenceUnit, rules)
	case taxtable.SchemeCappedRate:
		return cappedRateContributions(monthly, f, daysInPeriod, rules)
	}
	return SocialSecurityResult{}, apperror.Configuration("unknown social security scheme %q", rules.Scheme)
}

func referenceUnitContributions(monthly decimal.Decimal, f Frequency, days int, ru decimal.Decimal, rules *taxtable.SocialSecurityRules) (SocialSecurityResult, error) {
	floor := ru.Mul(rules.FloorMultiple)
	ceiling := ru.Mul(rules.CeilingMultiple)
	base := clamp(monthly.Div(daysPerMonth), floor, ceiling)
	excess := decimal.Max(decimal.Zero, base.Sub(ru.Mul(rules.ExcessThresholdMultiple)))

	res := SocialSecurityResult{
		Scheme:      rules.Scheme,
		DailyBase:   base,
		MonthlyBase: base.Mul(daysPerMonth),
		Lines:       make([]ContributionLine, 0, len(rules.Components)),
	}

	for _, c := range rules.Components {
		var dailyBasis decimal.Decimal
		switch c.Basis {
		case taxtable.BasisReferenceUnit:
			dailyBasis = ru
		case taxtable.BasisExcess:
			dailyBasis = excess
		default:
			dailyBasis = base
		}

		employee, err := dailyToPeriod(dailyBasis.Mul(c.EmployeeRate), f, days)
		if err != nil {
			return SocialSecurityResult{}, err
		}
		employer, err := dailyToPeriod(dailyBasis.Mul(c.EmployerRate), f, days)
		if err != nil {
			return SocialSecurityResult{}, err
		}
		res.add(ContributionLine{Name: c.Name, Employee: employee, Employer: employer})
	}
	return res, nil
}

func cappedRateContributions(monthly decimal.Decimal, f Frequency, days int, rules *taxtable.SocialSecurityRules) (SocialSecurityResult, error) {
	res := SocialSecurityResult{
		Scheme:      rules.Scheme,
		MonthlyBase: monthly,
		Lines:       make([]ContributionLine, 0, len(rules.Components)),
	}

	for _, c := range rules.Components {
		base := monthly
		if c.MonthlyCap != nil {
			base = decimal.Min(base, *c.MonthlyCap)
		}

		employee, err := FromMonthly(base.Mul(c.EmployeeRate), f, days)
		if err != nil {
			return SocialSecurityResult{}, err
		}
		employer, err := FromMonthly(base.Mul(c.EmployerRate), f, days)
		if err != nil {
			return SocialSecurityResult{}, err
		}
		res.add(ContributionLine{Name: c.Name, Employee: RoundMoney(employee), Employer: RoundMoney(employer)})
	}
	return res, nil
}

func (r *SocialSecurityResult) add(line ContributionLine) {
	r.Lines = append(r.Lines, line)
	r.EmployeeTotal = r.EmployeeTotal.Add(line.Employee)
	r.EmployerTotal = r.EmployerTotal.Add(line.Employer)
}

// dailyToPeriod scales a daily contribution to a month and then to the
// period, rounding once.
func dailyToPeriod(daily decimal.Decimal, f Frequency, days int) (decimal.Decimal, error) {
	amount, err := FromMonthly(daily.Mul(daysPerMonth), f, days)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundMoney(amount), nil
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
