package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"paycompliance/internal/apperror"
	"paycompliance/internal/middleware"
	"paycompliance/internal/payroll"
	"paycompliance/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_ReturnsPayslip(t *testing.T) {
	var got service.CalculatePayrollDTO
	svc := &fakePayrollService{
		calculateFn: func(_ context.Context, req service.CalculatePayrollDTO) (payroll.Calculation, error) {
			got = req
			return payroll.Calculation{NetPay: decimal.RequireFromString("6568.80")}, nil
		},
	}
	r := newRouter(NewPayrollHandler(svc, auth()))

	w, res := do(t, r, http.MethodPost, "/api/payroll/calculate", token(t, managerID, middleware.RoleManager), map[string]interface{}{
		"employee_id":  employeeID,
		"period_start": "2024-01-01",
		"period_end":   "2024-01-15",
		"bonuses":      "250.50",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, got.Bonuses.Equal(decimal.RequireFromString("250.50")))
	assert.Equal(t, "6568.8", res.Data.(map[string]interface{})["net_pay"])
}

func TestCalculate_Errors(t *testing.T) {
	svc := &fakePayrollService{
		calculateFn: func(context.Context, service.CalculatePayrollDTO) (payroll.Calculation, error) {
			return payroll.Calculation{}, apperror.Configuration("no tax table for BR 2024")
		},
	}
	r := newRouter(NewPayrollHandler(svc, auth()))
	bearer := token(t, managerID, middleware.RoleManager)

	w, res := do(t, r, http.MethodPost, "/api/payroll/calculate", bearer, map[string]interface{}{"period_end": "2024-01-15"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Period Start is required", res.Error)

	w, res = do(t, r, http.MethodPost, "/api/payroll/calculate", bearer, map[string]interface{}{
		"employee_id":  employeeID,
		"period_start": "2024-01-01",
		"period_end":   "2024-01-15",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperror.CodeConfiguration, res.Code)
	assert.Equal(t, "no tax table for BR 2024", res.Error)

	w, _ = do(t, r, http.MethodPost, "/api/payroll/calculate", token(t, employeeID, middleware.RoleEmployee), map[string]interface{}{})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/payroll/calculate", "", map[string]interface{}{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProject_YearDefaultsToCurrent(t *testing.T) {
	var gotYear int
	var gotEmployee string
	svc := &fakePayrollService{
		projectFn: func(_ context.Context, employee string, year int) (payroll.ProjectionSummary, error) {
			gotEmployee, gotYear = employee, year
			return payroll.ProjectionSummary{EmployeeID: employee, Year: year}, nil
		},
	}
	h := NewPayrollHandler(svc, auth())
	h.now = func() time.Time { return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC) }
	r := newRouter(h)
	bearer := token(t, managerID, middleware.RoleAdmin)

	w, _ := do(t, r, http.MethodGet, "/api/payroll/projection/"+employeeID, bearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, employeeID, gotEmployee)
	assert.Equal(t, 2025, gotYear)

	w, _ = do(t, r, http.MethodGet, "/api/payroll/projection/"+employeeID+"?year=2024", bearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2024, gotYear)

	w, res := do(t, r, http.MethodGet, "/api/payroll/projection/"+employeeID+"?year=next", bearer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "year must be a number", res.Error)
}
