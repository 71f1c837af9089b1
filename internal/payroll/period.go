package payroll

import (
	"time"

	"paycompliance/internal/apperror"

	"github.com/shopspring/decimal"
)

// CompensationProfile is the read-only view of an employee that the engine
// needs. It is owned by the HR system.
type CompensationProfile struct {
	EmployeeID         string
	MonthlySalary      decimal.Decimal
	PayFrequency       Frequency
	CountryCode        string
	State              string
	Currency           string
	ExemptFromOvertime bool
	OvertimeConsent    bool
}

// PayPeriod is an inclusive date range paid at one frequency.
type PayPeriod struct {
	Start     time.Time
	End       time.Time
	Frequency Frequency
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysInPeriod counts calendar days, both ends included.
func (p PayPeriod) DaysInPeriod() int {
	return int(civil(p.End).Sub(civil(p.Start)).Hours()/24) + 1
}

// Year is the tax year the period is settled in.
func (p PayPeriod) Year() int {
	return p.End.Year()
}

func (p PayPeriod) validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return apperror.Validation("pay period start and end are required")
	}
	if civil(p.End).Before(civil(p.Start)) {
		return apperror.Validation("pay period ends before it starts")
	}
	return nil
}

// MonthPeriod returns one calendar month paid monthly.
func MonthPeriod(year int, month time.Month) PayPeriod {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return PayPeriod{
		Start:     start,
		End:       start.AddDate(0, 1, -1),
		Frequency: Monthly,
	}
}
