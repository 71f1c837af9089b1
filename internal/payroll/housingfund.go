package payroll

import (
	"paycompliance/internal/taxtable"

	"github.com/shopspring/decimal"
)

type HousingFundResult struct {
	MonthlyBase decimal.Decimal `json:"monthly_base"`
	Employee    decimal.Decimal `json:"employee"`
	Employer    decimal.Decimal `json:"employer"`
}

// HousingFundCalculator computes housing-fund contributions on a monthly
// base clamped to multiples of the monthly reference unit.
type HousingFundCalculator struct{}

// Calculate returns a zero result for jurisdictions without a housing fund.
func (HousingFundCalculator) Calculate(periodSalary decimal.Decimal, f Frequency, daysInPeriod int, table *taxtable.Table) (HousingFundResult, error) {
	if table == nil || table.HousingFund == nil {
		return HousingFundResult{}, nil
	}

	monthly, err := ToMonthly(periodSalary, f, daysInPeriod)
	if err != nil {
		return HousingFundResult{}, err
	}

	rules := table.HousingFund
	ruMonthly, err := ToMonthly(table.ReferenceUnit, Daily, 0)
	if err != nil {
		return HousingFundResult{}, err
	}
	base := clamp(monthly, ruMonthly.Mul(rules.FloorMultiple), ruMonthly.Mul(rules.CeilingMultiple))

	employer, err := FromMonthly(base.Mul(rules.EmployerRate), f, daysInPeriod)
	if err != nil {
		return HousingFundResult{}, err
	}
	employee, err := FromMonthly(base.Mul(rules.EmployeeRate), f, daysInPeriod)
	if err != nil {
		return HousingFundResult{}, err
	}

	return HousingFundResult{
		MonthlyBase: base,
		Employee:    RoundMoney(employee),
		Employer:    RoundMoney(employer),
	}, nil
}
