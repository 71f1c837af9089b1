package payroll

import (
	"strings"
	"time"

	"paycompliance/internal/apperror"
	"paycompliance/internal/taxtable"

	"github.com/shopspring/decimal"
)

// TableProvider resolves the tax table for a country and year.
type TableProvider interface {
	Table(country string, year int) (*taxtable.Table, error)
}

// Input is one payroll run for one employee. Overtime is supplied either as
// hours, priced here, or as an amount already priced by the overtime
// service; not both.
type Input struct {
	Profile        CompensationProfile
	Period         PayPeriod
	OvertimeHours  decimal.Decimal
	OvertimeAmount decimal.Decimal
	Bonuses        decimal.Decimal
	Commissions    decimal.Decimal
	OtherIncome    decimal.Decimal
	Deductions     OtherDeductions
}

type OtherDeductions struct {
	Loans    decimal.Decimal `json:"loans"`
	Advances decimal.Decimal `json:"advances"`
	Other    decimal.Decimal `json:"other"`
}

type Income struct {
	Base        decimal.Decimal `json:"base"`
	Overtime    decimal.Decimal `json:"overtime"`
	Bonuses     decimal.Decimal `json:"bonuses"`
	Commissions decimal.Decimal `json:"commissions"`
	Other       decimal.Decimal `json:"other"`
	Gross       decimal.Decimal `json:"gross"`
}

// Deductions lists what is taken from the employee. IncomeTaxOwed and
// SubsidyApplied explain IncomeTaxWithheld and are not part of Total.
type Deductions struct {
	SocialSecurityEmployee decimal.Decimal `json:"social_security_employee"`
	HousingFundEmployee    decimal.Decimal `json:"housing_fund_employee"`
	IncomeTaxWithheld      decimal.Decimal `json:"income_tax_withheld"`
	IncomeTaxOwed          decimal.Decimal `json:"income_tax_owed"`
	SubsidyApplied         decimal.Decimal `json:"subsidy_applied"`
	Loans                  decimal.Decimal `json:"loans"`
	Advances               decimal.Decimal `json:"advances"`
	Other                  decimal.Decimal `json:"other"`
	Total                  decimal.Decimal `json:"total"`
}

type EmployerCosts struct {
	SocialSecurityEmployer decimal.Decimal `json:"social_security_employer"`
	HousingFundEmployer    decimal.Decimal `json:"housing_fund_employer"`
	Total                  decimal.Decimal `json:"total"`
}

type Metadata struct {
	EmployeeID   string    `json:"employee_id"`
	CalculatedAt time.Time `json:"calculated_at"`
	Frequency    Frequency `json:"frequency"`
	Currency     string    `json:"currency"`
	Country      string    `json:"country"`
	TaxYear      int       `json:"tax_year"`
	PeriodStart  string    `json:"period_start"`
	PeriodEnd    string    `json:"period_end"`
	DaysInPeriod int       `json:"days_in_period"`
}

type Breakdown struct {
	SocialSecurity SocialSecurityResult `json:"social_security"`
	HousingFund    HousingFundResult    `json:"housing_fund"`
	IncomeTax      IncomeTaxResult      `json:"income_tax"`
	Overtime       *OvertimeCalculation `json:"overtime,omitempty"`
}

// Calculation is the immutable result of one payroll run. Its top-level
// JSON shape is what payslip rendering consumes.
type Calculation struct {
	Income        Income          `json:"income"`
	Deductions    Deductions      `json:"deductions"`
	NetPay        decimal.Decimal `json:"net_pay"`
	EmployerCosts EmployerCosts   `json:"employer_costs"`
	Metadata      Metadata        `json:"metadata"`
	Breakdown     Breakdown       `json:"breakdown"`
}

// Engine runs gross-to-net payroll. It holds no mutable state; equal inputs
// produce equal results.
type Engine struct {
	tables   TableProvider
	now      func() time.Time
	social   SocialSecurityCalculator
	housing  HousingFundCalculator
	tax      IncomeTaxCalculator
	overtime OvertimePayCalculator
}

type EngineOption func(*Engine)

// WithClock fixes the timestamp stamped into results.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(tables TableProvider, opts ...EngineOption) *Engine {
	e := &Engine{tables: tables, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Calculate(in Input) (Calculation, error) {
	period, err := normalize(&in)
	if err != nil {
		return Calculation{}, err
	}

	table, err := e.tables.Table(in.Profile.CountryCode, period.Year())
	if err != nil {
		return Calculation{}, err
	}
	if !table.HasPayroll() {
		return Calculation{}, apperror.Configuration("payroll is not configured for %s %d", table.Country, table.Year)
	}

	minimum, _ := ToMonthly(table.ReferenceUnit, Daily, 0)
	if in.Profile.MonthlySalary.LessThan(minimum) {
		return Calculation{}, apperror.Validation("monthly salary %s is below the statutory minimum %s",
			in.Profile.MonthlySalary.StringFixed(2), minimum.StringFixed(2))
	}

	days := period.DaysInPeriod()
	f := period.Frequency

	base, err := FromMonthly(in.Profile.MonthlySalary, f, days)
	if err != nil {
		return Calculation{}, err
	}
	base = RoundMoney(base)

	var breakdown Breakdown
	overtimePay := in.OvertimeAmount
	if in.OvertimeHours.IsPositive() {
		ot, err := e.priceOvertime(in, table)
		if err != nil {
			return Calculation{}, err
		}
		breakdown.Overtime = &ot
		overtimePay = ot.TotalOvertimeAmount
	}

	income := Income{
		Base:        base,
		Overtime:    overtimePay,
		Bonuses:     in.Bonuses,
		Commissions: in.Commissions,
		Other:       in.OtherIncome,
	}
	income.Gross = base.Add(overtimePay).Add(in.Bonuses).Add(in.Commissions).Add(in.OtherIncome)

	breakdown.SocialSecurity, err = e.social.Calculate(income.Gross, f, days, table)
	if err != nil {
		return Calculation{}, err
	}
	breakdown.HousingFund, err = e.housing.Calculate(income.Gross, f, days, table)
	if err != nil {
		return Calculation{}, err
	}

	taxable := income.Gross.Sub(breakdown.SocialSecurity.EmployeeTotal)
	breakdown.IncomeTax, err = e.tax.Calculate(taxable, f, days, table)
	if err != nil {
		return Calculation{}, err
	}

	ded := Deductions{
		SocialSecurityEmployee: breakdown.SocialSecurity.EmployeeTotal,
		HousingFundEmployee:    breakdown.HousingFund.Employee,
		IncomeTaxWithheld:      breakdown.IncomeTax.Withheld,
		IncomeTaxOwed:          breakdown.IncomeTax.TaxOwed,
		SubsidyApplied:         breakdown.IncomeTax.SubsidyApplied,
		Loans:                  in.Deductions.Loans,
		Advances:               in.Deductions.Advances,
		Other:                  in.Deductions.Other,
	}
	ded.Total = ded.SocialSecurityEmployee.
		Add(ded.HousingFundEmployee).
		Add(ded.IncomeTaxWithheld).
		Add(ded.Loans).
		Add(ded.Advances).
		Add(ded.Other)

	net := income.Gross.Sub(ded.Total)
	if net.IsNegative() {
		return Calculation{}, apperror.ErrNegativeNetPay.WithMessage(
			"deductions %s exceed gross income %s", ded.Total.StringFixed(2), income.Gross.StringFixed(2))
	}

	employer := EmployerCosts{
		SocialSecurityEmployer: breakdown.SocialSecurity.EmployerTotal,
		HousingFundEmployer:    breakdown.HousingFund.Employer,
	}
	employer.Total = income.Gross.Add(employer.SocialSecurityEmployer).Add(employer.HousingFundEmployer)

	currency := in.Profile.Currency
	if currency == "" {
		currency = table.Currency
	}

	return Calculation{
		Income:        income,
		Deductions:    ded,
		NetPay:        net,
		EmployerCosts: employer,
		Breakdown:     breakdown,
		Metadata: Metadata{
			EmployeeID:   in.Profile.EmployeeID,
			CalculatedAt: e.now().UTC(),
			Frequency:    f,
			Currency:     currency,
			Country:      table.Country,
			TaxYear:      table.Year,
			PeriodStart:  period.Start.Format(time.DateOnly),
			PeriodEnd:    period.End.Format(time.DateOnly),
			DaysInPeriod: days,
		},
	}, nil
}

// priceOvertime assumes a full standard day and week were already worked,
// so every requested hour is beyond the regular schedule.
func (e *Engine) priceOvertime(in Input, table *taxtable.Table) (OvertimeCalculation, error) {
	rate, err := HourlyRate(in.Profile.MonthlySalary, table.Limits)
	if err != nil {
		return OvertimeCalculation{}, err
	}
	return e.overtime.Calculate(OvertimeInput{
		EmployeeID:        in.Profile.EmployeeID,
		HourlyRate:        rate,
		Hours:             in.OvertimeHours,
		DailyHoursWorked:  table.Limits.StandardDailyHours,
		WeeklyHoursWorked: table.Limits.StandardWeeklyHours,
	}, table)
}

// normalize validates the input and resolves the period frequency.
func normalize(in *Input) (PayPeriod, error) {
	p := &in.Profile
	if strings.TrimSpace(p.EmployeeID) == "" {
		return PayPeriod{}, apperror.Validation("employee id is required")
	}
	if strings.TrimSpace(p.CountryCode) == "" {
		return PayPeriod{}, apperror.Validation("country code is required")
	}
	if p.PayFrequency == "" {
		return PayPeriod{}, apperror.Validation("pay frequency is required")
	}
	if !p.PayFrequency.Valid() {
		return PayPeriod{}, apperror.Validation("unsupported pay frequency %q", p.PayFrequency)
	}
	if !p.MonthlySalary.IsPositive() {
		return PayPeriod{}, apperror.Validation("monthly salary must be positive")
	}

	period := in.Period
	if period.Frequency == "" {
		period.Frequency = p.PayFrequency
	}
	if period.Frequency != p.PayFrequency {
		return PayPeriod{}, apperror.Validation("period frequency %q does not match profile frequency %q", period.Frequency, p.PayFrequency)
	}
	if err := period.validate(); err != nil {
		return PayPeriod{}, err
	}

	amounts := []struct {
		name  string
		value decimal.Decimal
	}{
		{"overtime hours", in.OvertimeHours},
		{"overtime amount", in.OvertimeAmount},
		{"bonuses", in.Bonuses},
		{"commissions", in.Commissions},
		{"other income", in.OtherIncome},
		{"loans", in.Deductions.Loans},
		{"advances", in.Deductions.Advances},
		{"other deductions", in.Deductions.Other},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return PayPeriod{}, apperror.Validation("%s must not be negative", a.name)
		}
	}
	if in.OvertimeHours.IsPositive() && in.OvertimeAmount.IsPositive() {
		return PayPeriod{}, apperror.Validation("supply overtime hours or a priced overtime amount, not both")
	}

	return period, nil
}
