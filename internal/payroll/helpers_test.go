package payroll_test

import (
	"testing"
	"time"

	"paycompliance/internal/taxtable"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !assert.True(t, got.Equal(dec(want)), msgAndArgs...) {
		t.Logf("want %s, got %s", want, got.String())
	}
}

func loadRegistry(t *testing.T) *taxtable.Registry {
	t.Helper()
	reg, err := taxtable.Load(taxtable.Embedded())
	require.NoError(t, err)
	return reg
}

func table(t *testing.T, country string) *taxtable.Table {
	t.Helper()
	tb, err := loadRegistry(t).Table(country, 2024)
	require.NoError(t, err)
	return tb
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
