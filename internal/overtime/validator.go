package overtime

import (
	"fmt"
	"strings"
	"time"

	"paycompliance/internal/apperror"
	"paycompliance/internal/taxtable"

	"github.com/shopspring/decimal"
)

// Violation rules, reported in the order they are checked.
const (
	RuleWorkDateInPast     = "work_date_in_past"
	RuleAdvanceWindow      = "advance_window_exceeded"
	RuleMinimumHours       = "hours_below_minimum"
	RuleMaximumHours       = "hours_above_maximum"
	RuleDailyCap           = "daily_cap_exceeded"
	RuleWeeklyCap          = "weekly_cap_exceeded"
	RuleAnnualCap          = "annual_cap_exceeded"
	RuleConsentMissing     = "consent_required"
	RuleExemptFromOvertime = "employee_exempt"
)

// AdvanceWindowDays is how far ahead overtime may be requested.
const AdvanceWindowDays = 30

var (
	MinRequestHours = decimal.RequireFromString("0.5")
	MaxRequestHours = decimal.NewFromInt(12)
)

type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// AccumulatedHours is overtime already on record (pending or approved) for
// the day, ISO week and calendar year of the new request.
type AccumulatedHours struct {
	Daily  decimal.Decimal `json:"daily"`
	Weekly decimal.Decimal `json:"weekly"`
	Annual decimal.Decimal `json:"annual"`
}

type ValidationInput struct {
	EmployeeID         string
	WorkDate           time.Time
	Hours              decimal.Decimal
	ExemptFromOvertime bool
	OvertimeConsent    bool
	Accumulated        AccumulatedHours
	Limits             *taxtable.CountryLimits
	Today              time.Time
}

// Validator checks a proposed request against legal limits. Business-rule
// failures are returned as violations; only malformed input is an error.
type Validator struct{}

func (Validator) Validate(in ValidationInput) ([]Violation, error) {
	if strings.TrimSpace(in.EmployeeID) == "" {
		return nil, apperror.Validation("employee id is required")
	}
	if in.WorkDate.IsZero() {
		return nil, apperror.Validation("work date is required")
	}
	if in.Today.IsZero() {
		return nil, apperror.Validation("reference date is required")
	}
	if in.Limits == nil {
		return nil, apperror.Configuration("country limits are required")
	}

	var out []Violation
	add := func(rule, format string, args ...interface{}) {
		out = append(out, Violation{Rule: rule, Message: fmt.Sprintf(format, args...)})
	}

	workDate := civil(in.WorkDate)
	today := civil(in.Today)
	if workDate.Before(today) {
		add(RuleWorkDateInPast, "work date %s is in the past", workDate.Format(time.DateOnly))
	} else if workDate.After(today.AddDate(0, 0, AdvanceWindowDays)) {
		add(RuleAdvanceWindow, "work date %s is more than %d days ahead", workDate.Format(time.DateOnly), AdvanceWindowDays)
	}

	if in.Hours.LessThan(MinRequestHours) {
		add(RuleMinimumHours, "requested %s hours, minimum is %s", in.Hours, MinRequestHours)
	}
	if in.Hours.GreaterThan(MaxRequestHours) {
		add(RuleMaximumHours, "requested %s hours, maximum is %s", in.Hours, MaxRequestHours)
	}

	l := in.Limits
	checkCap := func(rule, period string, limit *decimal.Decimal, already decimal.Decimal) {
		if limit == nil {
			return
		}
		total := already.Add(in.Hours)
		if total.GreaterThan(*limit) {
			add(rule, "%s overtime would reach %s hours, limit is %s", period, total, *limit)
		}
	}
	checkCap(RuleDailyCap, "daily", l.MaxDailyHours, in.Accumulated.Daily)
	checkCap(RuleWeeklyCap, "weekly", l.MaxWeeklyHours, in.Accumulated.Weekly)
	checkCap(RuleAnnualCap, "annual", l.MaxAnnualHours, in.Accumulated.Annual)

	if l.ConsentRequired && !in.OvertimeConsent {
		add(RuleConsentMissing, "employee has not agreed to overtime")
	}
	if l.ExemptionApplies && in.ExemptFromOvertime {
		add(RuleExemptFromOvertime, "employee is exempt from overtime")
	}

	return out, nil
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekBounds returns the Monday and Sunday of the ISO week containing t.
func WeekBounds(t time.Time) (time.Time, time.Time) {
	d := civil(t)
	offset := (int(d.Weekday()) + 6) % 7
	monday := d.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}

// YearBounds returns the first and last day of t's calendar year.
func YearBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
}
