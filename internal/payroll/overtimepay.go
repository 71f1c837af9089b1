package payroll

import (
	"paycompliance/internal/apperror"
	"paycompliance/internal/taxtable"

	"github.com/shopspring/decimal"
)

// Tier labels for threshold-based methods.
const (
	TierStraight = "straight"
	TierPremium  = "premium"
	TierDouble   = "double"
)

// OvertimeInput carries the hours to price. DailyHoursWorked and
// WeeklyHoursWorked are the hours already worked that day and week before
// these overtime hours; threshold methods need them.
type OvertimeInput struct {
	EmployeeID        string
	RequestID         string
	HourlyRate        decimal.Decimal
	Hours             decimal.Decimal
	DailyHoursWorked  decimal.Decimal
	WeeklyHoursWorked decimal.Decimal
}

type OvertimeTierAmount struct {
	Label      string          `json:"label"`
	Hours      decimal.Decimal `json:"hours"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Amount     decimal.Decimal `json:"amount"`
}

// OvertimeCalculation is the priced result for one block of overtime.
type OvertimeCalculation struct {
	EmployeeID          string               `json:"employee_id"`
	RequestID           string               `json:"request_id,omitempty"`
	Tiers               []OvertimeTierAmount `json:"tiers"`
	Hours               decimal.Decimal      `json:"hours"`
	BaseHourlyRate      decimal.Decimal      `json:"base_hourly_rate"`
	BlendedMultiplier   decimal.Decimal      `json:"blended_multiplier"`
	TotalOvertimeAmount decimal.Decimal      `json:"total_overtime_amount"`
	Country             string               `json:"country"`
	Currency            string               `json:"currency"`
}

// OvertimePayCalculator partitions hours into multiplier tiers using the
// country's overtime method.
type OvertimePayCalculator struct{}

func (OvertimePayCalculator) Calculate(in OvertimeInput, table *taxtable.Table) (OvertimeCalculation, error) {
	if table == nil {
		return OvertimeCalculation{}, apperror.Configuration("no overtime rules configured")
	}
	if in.Hours.IsNegative() {
		return OvertimeCalculation{}, apperror.Validation("overtime hours must not be negative")
	}
	if in.HourlyRate.IsNegative() {
		return OvertimeCalculation{}, apperror.Validation("hourly rate must not be negative")
	}

	var tiers []OvertimeTierAmount
	rules := table.Overtime
	switch rules.Method {
	case taxtable.MethodTiered:
		tiers = tieredSplit(in.Hours, rules.Tiers)
	case taxtable.MethodWeeklyThreshold:
		premium := hoursBeyond(in.WeeklyHoursWorked, in.Hours, rules.WeeklyThreshold)
		tiers = []OvertimeTierAmount{
			{Label: TierStraight, Hours: in.Hours.Sub(premium), Multiplier: decimal.Zero},
			{Label: TierPremium, Hours: premium, Multiplier: rules.Multiplier},
		}
	case taxtable.MethodDailyWeeklyThreshold:
		daily := hoursBeyond(in.DailyHoursWorked, in.Hours, rules.DailyThreshold)
		weekly := hoursBeyond(in.WeeklyHoursWorked, in.Hours, rules.WeeklyThreshold)
		overtime := decimal.Max(daily, weekly)
		double := decimal.Min(overtime, hoursBeyond(in.DailyHoursWorked, in.Hours, rules.DailyDoubleThreshold))
		tiers = []OvertimeTierAmount{
			{Label: TierStraight, Hours: in.Hours.Sub(overtime), Multiplier: decimal.Zero},
			{Label: TierPremium, Hours: overtime.Sub(double), Multiplier: rules.Multiplier},
			{Label: TierDouble, Hours: double, Multiplier: rules.DoubleMultiplier},
		}
	default:
		return OvertimeCalculation{}, apperror.Configuration("unknown overtime method %q", rules.Method)
	}

	res := OvertimeCalculation{
		EmployeeID:     in.EmployeeID,
		RequestID:      in.RequestID,
		Hours:          in.Hours,
		BaseHourlyRate: in.HourlyRate,
		Country:        table.Country,
		Currency:       table.Currency,
		Tiers:          make([]OvertimeTierAmount, 0, len(tiers)),
	}

	raw := decimal.Zero
	weighted := decimal.Zero
	for _, t := range tiers {
		if !t.Hours.IsPositive() {
			continue
		}
		amount := t.Hours.Mul(in.HourlyRate).Mul(t.Multiplier)
		raw = raw.Add(amount)
		weighted = weighted.Add(t.Hours.Mul(t.Multiplier))
		t.Amount = RoundMoney(amount)
		res.Tiers = append(res.Tiers, t)
	}

	res.TotalOvertimeAmount = RoundMoney(raw)
	if in.Hours.IsPositive() {
		res.BlendedMultiplier = weighted.Div(in.Hours).Round(4)
	}
	return res, nil
}

// tieredSplit fills each tier up to its cumulative ceiling.
func tieredSplit(hours decimal.Decimal, tiers []taxtable.OvertimeTier) []OvertimeTierAmount {
	out := make([]OvertimeTierAmount, 0, len(tiers))
	consumed := decimal.Zero
	for _, t := range tiers {
		remaining := hours.Sub(consumed)
		if !remaining.IsPositive() {
			break
		}
		take := remaining
		if t.UpToHours != nil {
			take = decimal.Min(remaining, decimal.Max(decimal.Zero, t.UpToHours.Sub(consumed)))
		}
		out = append(out, OvertimeTierAmount{Label: t.Label, Hours: take, Multiplier: t.Multiplier})
		consumed = consumed.Add(take)
	}
	return out
}

// hoursBeyond returns how many of the added hours fall past threshold given
// the hours already worked.
func hoursBeyond(worked, added, threshold decimal.Decimal) decimal.Decimal {
	before := decimal.Max(decimal.Zero, worked.Sub(threshold))
	after := decimal.Max(decimal.Zero, worked.Add(added).Sub(threshold))
	return after.Sub(before)
}

// HourlyRate derives the base hourly rate from the monthly salary and the
// country's paid hours per month.
func HourlyRate(monthlySalary decimal.Decimal, limits taxtable.CountryLimits) (decimal.Decimal, error) {
	if !limits.MonthlyHours.IsPositive() {
		return decimal.Zero, apperror.Configuration("monthly hours not configured")
	}
	return monthlySalary.Div(limits.MonthlyHours), nil
}
