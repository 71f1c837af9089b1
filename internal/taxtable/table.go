package taxtable

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Social-security schemes.
const (
	SchemeReferenceUnit = "reference_unit"
	SchemeCappedRate    = "capped_rate"
)

// Contribution bases for a social-security component.
const (
	BasisReferenceUnit = "reference_unit"
	BasisExcess        = "excess"
	BasisSalary        = "salary"
)

// Overtime pay methods.
const (
	MethodTiered               = "tiered"
	MethodWeeklyThreshold      = "weekly_threshold"
	MethodDailyWeeklyThreshold = "daily_weekly_threshold"
)

// Table holds every statutory constant for one country and year. A Table is
// never mutated after it has been loaded.
type Table struct {
	Country       string          `yaml:"country" json:"country"`
	Year          int             `yaml:"year" json:"year"`
	Currency      string          `yaml:"currency" json:"currency"`
	ReferenceUnit decimal.Decimal `yaml:"reference_unit" json:"reference_unit"` // daily value

	SocialSecurity *SocialSecurityRules `yaml:"social_security" json:"social_security,omitempty"`
	HousingFund    *HousingFundRules    `yaml:"housing_fund" json:"housing_fund,omitempty"`
	IncomeTax      *IncomeTaxRules      `yaml:"income_tax" json:"income_tax,omitempty"`
	Overtime       OvertimeRules        `yaml:"overtime" json:"overtime"`
	Limits         CountryLimits        `yaml:"limits" json:"limits"`
}

type SocialSecurityRules struct {
	Scheme                  string                  `yaml:"scheme" json:"scheme"`
	FloorMultiple           decimal.Decimal         `yaml:"floor_multiple" json:"floor_multiple"`
	CeilingMultiple         decimal.Decimal         `yaml:"ceiling_multiple" json:"ceiling_multiple"`
	ExcessThresholdMultiple decimal.Decimal         `yaml:"excess_threshold_multiple" json:"excess_threshold_multiple"`
	Components              []ContributionComponent `yaml:"components" json:"components"`
}

// ContributionComponent is one line of the contribution schedule. MonthlyCap
// only applies to the capped_rate scheme.
type ContributionComponent struct {
	Name         string           `yaml:"name" json:"name"`
	Basis        string           `yaml:"basis" json:"basis"`
	EmployeeRate decimal.Decimal  `yaml:"employee_rate" json:"employee_rate"`
	EmployerRate decimal.Decimal  `yaml:"employer_rate" json:"employer_rate"`
	MonthlyCap   *decimal.Decimal `yaml:"monthly_cap" json:"monthly_cap,omitempty"`
}

type HousingFundRules struct {
	FloorMultiple   decimal.Decimal `yaml:"floor_multiple" json:"floor_multiple"`
	CeilingMultiple decimal.Decimal `yaml:"ceiling_multiple" json:"ceiling_multiple"`
	EmployerRate    decimal.Decimal `yaml:"employer_rate" json:"employer_rate"`
	EmployeeRate    decimal.Decimal `yaml:"employee_rate" json:"employee_rate"`
}

type IncomeTaxRules struct {
	Brackets []Bracket        `yaml:"brackets" json:"brackets"`
	Subsidy  []SubsidyBracket `yaml:"subsidy" json:"subsidy,omitempty"`
}

// Bracket is a monthly income-tax band. A nil Upper means open-ended.
type Bracket struct {
	Lower decimal.Decimal  `yaml:"lower" json:"lower"`
	Upper *decimal.Decimal `yaml:"upper" json:"upper,omitempty"`
	Fixed decimal.Decimal  `yaml:"fixed" json:"fixed"`
	Rate  decimal.Decimal  `yaml:"rate" json:"rate"`
}

type SubsidyBracket struct {
	Lower  decimal.Decimal  `yaml:"lower" json:"lower"`
	Upper  *decimal.Decimal `yaml:"upper" json:"upper,omitempty"`
	Amount decimal.Decimal  `yaml:"amount" json:"amount"`
}

// Contains reports whether income falls inside the band.
func (b Bracket) Contains(income decimal.Decimal) bool {
	return income.GreaterThanOrEqual(b.Lower) && (b.Upper == nil || income.LessThanOrEqual(*b.Upper))
}

func (b SubsidyBracket) Contains(income decimal.Decimal) bool {
	return income.GreaterThanOrEqual(b.Lower) && (b.Upper == nil || income.LessThanOrEqual(*b.Upper))
}

type OvertimeRules struct {
	Method string         `yaml:"method" json:"method"`
	Tiers  []OvertimeTier `yaml:"tiers" json:"tiers,omitempty"`

	DailyThreshold       decimal.Decimal `yaml:"daily_threshold" json:"daily_threshold"`
	WeeklyThreshold      decimal.Decimal `yaml:"weekly_threshold" json:"weekly_threshold"`
	DailyDoubleThreshold decimal.Decimal `yaml:"daily_double_threshold" json:"daily_double_threshold"`
	Multiplier           decimal.Decimal `yaml:"multiplier" json:"multiplier"`
	DoubleMultiplier     decimal.Decimal `yaml:"double_multiplier" json:"double_multiplier"`
}

// OvertimeTier covers hours up to UpToHours (cumulative). The last tier
// leaves UpToHours nil.
type OvertimeTier struct {
	Label      string           `yaml:"label" json:"label"`
	UpToHours  *decimal.Decimal `yaml:"up_to_hours" json:"up_to_hours,omitempty"`
	Multiplier decimal.Decimal  `yaml:"multiplier" json:"multiplier"`
}

// CountryLimits are the legal overtime caps and approval policy. Nil caps
// mean the jurisdiction sets none.
type CountryLimits struct {
	MaxDailyHours        *decimal.Decimal `yaml:"max_daily_hours" json:"max_daily_hours,omitempty"`
	MaxWeeklyHours       *decimal.Decimal `yaml:"max_weekly_hours" json:"max_weekly_hours,omitempty"`
	MaxAnnualHours       *decimal.Decimal `yaml:"max_annual_hours" json:"max_annual_hours,omitempty"`
	ApprovalRequired     bool             `yaml:"approval_required" json:"approval_required"`
	ConsentRequired      bool             `yaml:"consent_required" json:"consent_required"`
	ExemptionApplies     bool             `yaml:"exemption_applies" json:"exemption_applies"`
	AutoApprovalMaxHours decimal.Decimal  `yaml:"auto_approval_max_hours" json:"auto_approval_max_hours"`
	StandardDailyHours   decimal.Decimal  `yaml:"standard_daily_hours" json:"standard_daily_hours"`
	StandardWeeklyHours  decimal.Decimal  `yaml:"standard_weekly_hours" json:"standard_weekly_hours"`
	MonthlyHours         decimal.Decimal  `yaml:"monthly_hours" json:"monthly_hours"`
}

// HasPayroll reports whether the table carries enough to run a full payroll
// calculation. Overtime-only tables (EU) do not.
func (t *Table) HasPayroll() bool {
	return t.SocialSecurity != nil && t.IncomeTax != nil && t.ReferenceUnit.IsPositive()
}

func (t *Table) key() Key {
	return Key{Country: t.Country, Year: t.Year}
}

// Key identifies a table.
type Key struct {
	Country string `json:"country"`
	Year    int    `json:"year"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s-%d", k.Country, k.Year)
}

// NormalizeCountry upper-cases and trims a country code.
func NormalizeCountry(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (t *Table) validate() error {
	t.Country = NormalizeCountry(t.Country)
	if t.Country == "" {
		return fmt.Errorf("country is required")
	}
	if t.Year <= 0 {
		return fmt.Errorf("%s: year is required", t.Country)
	}
	if t.ReferenceUnit.IsNegative() {
		return fmt.Errorf("%s: reference_unit must not be negative", t.key())
	}

	if ss := t.SocialSecurity; ss != nil {
		if ss.Scheme != SchemeReferenceUnit && ss.Scheme != SchemeCappedRate {
			return fmt.Errorf("%s: unknown social_security scheme %q", t.key(), ss.Scheme)
		}
		if ss.Scheme == SchemeReferenceUnit && ss.CeilingMultiple.LessThan(ss.FloorMultiple) {
			return fmt.Errorf("%s: social_security ceiling below floor", t.key())
		}
		for _, c := range ss.Components {
			if c.EmployeeRate.IsNegative() || c.EmployerRate.IsNegative() {
				return fmt.Errorf("%s: negative rate on component %q", t.key(), c.Name)
			}
			switch c.Basis {
			case BasisReferenceUnit, BasisExcess, BasisSalary:
			default:
				return fmt.Errorf("%s: unknown basis %q on component %q", t.key(), c.Basis, c.Name)
			}
		}
	}

	if hf := t.HousingFund; hf != nil {
		if hf.EmployerRate.IsNegative() || hf.EmployeeRate.IsNegative() {
			return fmt.Errorf("%s: negative housing_fund rate", t.key())
		}
		if hf.CeilingMultiple.LessThan(hf.FloorMultiple) {
			return fmt.Errorf("%s: housing_fund ceiling below floor", t.key())
		}
	}

	if it := t.IncomeTax; it != nil {
		if len(it.Brackets) == 0 {
			return fmt.Errorf("%s: income_tax has no brackets", t.key())
		}
		if !sort.SliceIsSorted(it.Brackets, func(i, j int) bool {
			return it.Brackets[i].Lower.LessThan(it.Brackets[j].Lower)
		}) {
			return fmt.Errorf("%s: income_tax brackets must be ordered by lower bound", t.key())
		}
		for _, b := range it.Brackets {
			if b.Rate.IsNegative() || b.Fixed.IsNegative() {
				return fmt.Errorf("%s: negative income_tax bracket at %s", t.key(), b.Lower)
			}
		}
		if !sort.SliceIsSorted(it.Subsidy, func(i, j int) bool {
			return it.Subsidy[i].Lower.LessThan(it.Subsidy[j].Lower)
		}) {
			return fmt.Errorf("%s: subsidy brackets must be ordered by lower bound", t.key())
		}
	}

	switch t.Overtime.Method {
	case MethodTiered:
		if len(t.Overtime.Tiers) == 0 {
			return fmt.Errorf("%s: tiered overtime needs at least one tier", t.key())
		}
		if t.Overtime.Tiers[len(t.Overtime.Tiers)-1].UpToHours != nil {
			return fmt.Errorf("%s: last overtime tier must be open-ended", t.key())
		}
	case MethodWeeklyThreshold, MethodDailyWeeklyThreshold:
		if !t.Overtime.Multiplier.IsPositive() {
			return fmt.Errorf("%s: overtime multiplier must be positive", t.key())
		}
	default:
		return fmt.Errorf("%s: unknown overtime method %q", t.key(), t.Overtime.Method)
	}

	if !t.Limits.MonthlyHours.IsPositive() {
		return fmt.Errorf("%s: limits.monthly_hours must be positive", t.key())
	}

	return nil
}
