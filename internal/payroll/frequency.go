package payroll

import (
	"strings"

	"paycompliance/internal/apperror"

	"github.com/shopspring/decimal"
)

// Frequency is how often an employee is paid.
type Frequency string

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Biweekly  Frequency = "biweekly"
	Monthly   Frequency = "monthly"
	Bimonthly Frequency = "bimonthly"
)

var (
	daysPerMonth  = decimal.NewFromInt(30)
	weeksPerMonth = decimal.RequireFromString("4.33")
	two           = decimal.NewFromInt(2)
)

// ParseFrequency accepts the canonical lower-case names.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", apperror.Validation("unsupported pay frequency %q", s)
	}
	return f, nil
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Biweekly, Monthly, Bimonthly:
		return true
	}
	return false
}

// ToMonthly converts a per-period amount to its monthly equivalent. It is the
// inverse of FromMonthly: for daily pay a positive daysInPeriod means amount
// covers that many days. No rounding is applied.
func ToMonthly(amount decimal.Decimal, f Frequency, daysInPeriod int) (decimal.Decimal, error) {
	switch f {
	case Daily:
		if daysInPeriod > 0 {
			return amount.Mul(daysPerMonth).Div(decimal.NewFromInt(int64(daysInPeriod))), nil
		}
		return amount.Mul(daysPerMonth), nil
	case Weekly:
		return amount.Mul(weeksPerMonth), nil
	case Biweekly:
		return amount.Mul(two), nil
	case Monthly:
		return amount, nil
	case Bimonthly:
		return amount.Div(two), nil
	}
	return decimal.Zero, apperror.Validation("unsupported pay frequency %q", f)
}

// FromMonthly converts a monthly amount to one pay period. For daily pay a
// positive daysInPeriod scales the daily amount to the whole period.
// No rounding is applied.
func FromMonthly(amount decimal.Decimal, f Frequency, daysInPeriod int) (decimal.Decimal, error) {
	switch f {
	case Daily:
		if daysInPeriod > 0 {
			return amount.Mul(decimal.NewFromInt(int64(daysInPeriod))).Div(daysPerMonth), nil
		}
		return amount.Div(daysPerMonth), nil
	case Weekly:
		return amount.Div(weeksPerMonth), nil
	case Biweekly:
		return amount.Div(two), nil
	case Monthly:
		return amount, nil
	case Bimonthly:
		return amount.Mul(two), nil
	}
	return decimal.Zero, apperror.Validation("unsupported pay frequency %q", f)
}

// Convert moves an amount between two frequencies through its monthly
// equivalent. daysInPeriod applies to both sides.
func Convert(amount decimal.Decimal, from, to Frequency, daysInPeriod int) (decimal.Decimal, error) {
	monthly, err := ToMonthly(amount, from, daysInPeriod)
	if err != nil {
		return decimal.Zero, err
	}
	return FromMonthly(monthly, to, daysInPeriod)
}

// RoundMoney applies the single rounding rule used for every monetary
// sub-calculation: two places, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
