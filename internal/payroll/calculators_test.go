package payroll_test

import (
	"errors"
	"testing"

	"paycompliance/internal/apperror"
	"paycompliance/internal/payroll"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocialSecurity_MexicoBiweekly(t *testing.T) {
	res, err := payroll.SocialSecurityCalculator{}.Calculate(dec("7500"), payroll.Biweekly, 15, table(t, "MX"))
	require.NoError(t, err)

	assertDecimal(t, "500", res.DailyBase)
	assertDecimal(t, "188.60", res.EmployeeTotal)
	assertDecimal(t, "1084.73", res.EmployerTotal)

	lines := map[string]payroll.ContributionLine{}
	for _, l := range res.Lines {
		lines[l.Name] = l
	}
	assertDecimal(t, "10.46", lines["excess"].Employee)
	assertDecimal(t, "28.76", lines["excess"].Employer)
	assertDecimal(t, "332.22", lines["fixed_quota"].Employer)
	assertDecimal(t, "0", lines["fixed_quota"].Employee)
	assertDecimal(t, "84.38", lines["old_age"].Employee)
}

func TestSocialSecurity_LinesSumToTotals(t *testing.T) {
	res, err := payroll.SocialSecurityCalculator{}.Calculate(dec("23456.78"), payroll.Monthly, 31, table(t, "MX"))
	require.NoError(t, err)

	employee, employer := dec("0"), dec("0")
	for _, l := range res.Lines {
		employee = employee.Add(l.Employee)
		employer = employer.Add(l.Employer)
	}
	assert.True(t, employee.Equal(res.EmployeeTotal))
	assert.True(t, employer.Equal(res.EmployerTotal))
}

func TestSocialSecurity_BaseClampedToFloorAndCeiling(t *testing.T) {
	mx := table(t, "MX")

	low, err := payroll.SocialSecurityCalculator{}.Calculate(dec("3000"), payroll.Monthly, 30, mx)
	require.NoError(t, err)
	assertDecimal(t, "108.57", low.DailyBase)

	high, err := payroll.SocialSecurityCalculator{}.Calculate(dec("100000"), payroll.Monthly, 30, mx)
	require.NoError(t, err)
	assertDecimal(t, "2714.25", high.DailyBase)
}

func TestSocialSecurity_CappedRate(t *testing.T) {
	us, err := payroll.SocialSecurityCalculator{}.Calculate(dec("20000"), payroll.Monthly, 31, table(t, "US"))
	require.NoError(t, err)
	assertDecimal(t, "1161.10", us.EmployeeTotal)
	assertDecimal(t, "1161.10", us.EmployerTotal)

	ca, err := payroll.SocialSecurityCalculator{}.Calculate(dec("6000"), payroll.Monthly, 31, table(t, "CA"))
	require.NoError(t, err)
	assertDecimal(t, "427.08", ca.EmployeeTotal)
	assertDecimal(t, "462.05", ca.EmployerTotal)
}

func TestSocialSecurity_NoRules(t *testing.T) {
	_, err := payroll.SocialSecurityCalculator{}.Calculate(dec("1000"), payroll.Monthly, 30, table(t, "EU"))
	assert.True(t, errors.Is(err, apperror.ErrConfiguration))
}

func TestHousingFund_Mexico(t *testing.T) {
	mx := table(t, "MX")

	res, err := payroll.HousingFundCalculator{}.Calculate(dec("7500"), payroll.Biweekly, 15, mx)
	require.NoError(t, err)
	assertDecimal(t, "375", res.Employer)
	assertDecimal(t, "0", res.Employee)

	capped, err := payroll.HousingFundCalculator{}.Calculate(dec("50000"), payroll.Monthly, 30, mx)
	require.NoError(t, err)
	assertDecimal(t, "16285.50", capped.MonthlyBase)
	assertDecimal(t, "814.28", capped.Employer)

	floored, err := payroll.HousingFundCalculator{}.Calculate(dec("2000"), payroll.Monthly, 30, mx)
	require.NoError(t, err)
	assertDecimal(t, "162.86", floored.Employer)
}

func TestHousingFund_NotConfiguredIsZero(t *testing.T) {
	res, err := payroll.HousingFundCalculator{}.Calculate(dec("7500"), payroll.Monthly, 30, table(t, "US"))
	require.NoError(t, err)
	assert.True(t, res.Employer.IsZero())
	assert.True(t, res.Employee.IsZero())
}

func TestIncomeTax_MexicoBiweekly(t *testing.T) {
	res, err := payroll.IncomeTaxCalculator{}.Calculate(dec("7311.40"), payroll.Biweekly, 15, table(t, "MX"))
	require.NoError(t, err)

	assertDecimal(t, "14622.80", res.MonthlyTaxableIncome)
	assertDecimal(t, "12935.83", res.BracketLower)
	assertDecimal(t, "1485.19", res.MonthlyTaxOwed)
	assertDecimal(t, "0", res.MonthlySubsidy)
	assertDecimal(t, "742.60", res.TaxOwed)
	assertDecimal(t, "742.60", res.Withheld)
	assertDecimal(t, "0", res.SubsidyApplied)
}

func TestIncomeTax_PeriodTaxProratesRoundedMonthlyTax(t *testing.T) {
	res, err := payroll.IncomeTaxCalculator{}.Calculate(dec("7311.40"), payroll.Biweekly, 15, table(t, "MX"))
	require.NoError(t, err)

	// bracket result 1485.185024 rounds to 1485.19, and half of that is 742.595
	unrounded := res.BracketFixed.Add(res.MonthlyTaxableIncome.Sub(res.BracketLower).Mul(res.MarginalRate))
	assertDecimal(t, "742.59", payroll.RoundMoney(unrounded.Div(dec("2"))))
	assertDecimal(t, "742.60", res.TaxOwed)
	assertDecimal(t, payroll.RoundMoney(res.MonthlyTaxOwed.Div(dec("2"))).String(), res.TaxOwed)
}

func TestIncomeTax_SubsidyFloorsWithholdingAtZero(t *testing.T) {
	res, err := payroll.IncomeTaxCalculator{}.Calculate(dec("5000"), payroll.Monthly, 31, table(t, "MX"))
	require.NoError(t, err)

	assertDecimal(t, "286.57", res.MonthlyTaxOwed)
	assertDecimal(t, "324.87", res.MonthlySubsidy)
	assertDecimal(t, "0", res.Withheld)
	assertDecimal(t, "286.57", res.SubsidyApplied)
	assert.True(t, res.TaxOwed.Sub(res.SubsidyApplied).Equal(res.Withheld))
}

func TestIncomeTax_CentGapUsesLowerBracket(t *testing.T) {
	res, err := payroll.IncomeTaxCalculator{}.Calculate(dec("746.045"), payroll.Monthly, 31, table(t, "MX"))
	require.NoError(t, err)

	assertDecimal(t, "0.01", res.BracketLower)
	assertDecimal(t, "14.32", res.MonthlyTaxOwed)
}

func TestIncomeTax_UnitedStates(t *testing.T) {
	res, err := payroll.IncomeTaxCalculator{}.Calculate(dec("5000"), payroll.Monthly, 31, table(t, "US"))
	require.NoError(t, err)

	assertDecimal(t, "687.75", res.Withheld)
	assertDecimal(t, "0", res.SubsidyApplied)
}

func TestIncomeTax_NonPositiveIncome(t *testing.T) {
	res, err := payroll.IncomeTaxCalculator{}.Calculate(dec("0"), payroll.Monthly, 31, table(t, "MX"))
	require.NoError(t, err)
	assert.True(t, res.Withheld.IsZero())
	assert.True(t, res.TaxOwed.IsZero())
}
