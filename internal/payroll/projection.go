package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectionSummary annualises a regular month with no overtime or variable
// pay.
type ProjectionSummary struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	Country    string `json:"country"`
	Currency   string `json:"currency"`

	MonthlyGross decimal.Decimal `json:"monthly_gross"`
	MonthlyNet   decimal.Decimal `json:"monthly_net"`

	AnnualGross                  decimal.Decimal `json:"annual_gross"`
	AnnualSocialSecurityEmployee decimal.Decimal `json:"annual_social_security_employee"`
	AnnualHousingFundEmployee    decimal.Decimal `json:"annual_housing_fund_employee"`
	AnnualIncomeTax              decimal.Decimal `json:"annual_income_tax"`
	AnnualNet                    decimal.Decimal `json:"annual_net"`
	AnnualEmployerCost           decimal.Decimal `json:"annual_employer_cost"`
	EffectiveTaxRate             decimal.Decimal `json:"effective_tax_rate"`
}

var monthsPerYear = decimal.NewFromInt(12)

// Project runs one monthly calculation for January of year and scales it to
// twelve months.
func (e *Engine) Project(profile CompensationProfile, year int) (ProjectionSummary, error) {
	monthly := profile
	monthly.PayFrequency = Monthly

	calc, err := e.Calculate(Input{
		Profile: monthly,
		Period:  MonthPeriod(year, time.January),
	})
	if err != nil {
		return ProjectionSummary{}, err
	}

	s := ProjectionSummary{
		EmployeeID:   profile.EmployeeID,
		Year:         year,
		Country:      calc.Metadata.Country,
		Currency:     calc.Metadata.Currency,
		MonthlyGross: calc.Income.Gross,
		MonthlyNet:   calc.NetPay,

		AnnualGross:                  calc.Income.Gross.Mul(monthsPerYear),
		AnnualSocialSecurityEmployee: calc.Deductions.SocialSecurityEmployee.Mul(monthsPerYear),
		AnnualHousingFundEmployee:    calc.Deductions.HousingFundEmployee.Mul(monthsPerYear),
		AnnualIncomeTax:              calc.Deductions.IncomeTaxWithheld.Mul(monthsPerYear),
		AnnualNet:                    calc.NetPay.Mul(monthsPerYear),
		AnnualEmployerCost:           calc.EmployerCosts.Total.Mul(monthsPerYear),
	}
	if s.AnnualGross.IsPositive() {
		s.EffectiveTaxRate = s.AnnualIncomeTax.Div(s.AnnualGross).Round(4)
	}
	return s, nil
}
