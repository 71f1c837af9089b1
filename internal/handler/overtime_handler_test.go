package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"paycompliance/internal/apperror"
	"paycompliance/internal/middleware"
	"paycompliance/internal/payroll"
	"paycompliance/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateBody(employee string) map[string]interface{} {
	return map[string]interface{}{
		"employee_id":     employee,
		"work_date":       "2024-03-05",
		"hours_requested": "2.0",
		"type":            "regular",
		"reason":          "quarter close",
	}
}

func TestCreateRequest_Created(t *testing.T) {
	var gotRequester string
	svc := &fakeOvertimeService{
		createFn: func(_ context.Context, requesterID string, req service.CreateOvertimeRequestDTO) (service.OvertimeRequestResponse, error) {
			gotRequester = requesterID
			return service.OvertimeRequestResponse{ID: "req-1", EmployeeID: req.EmployeeID, Status: "PENDING", Version: 1}, nil
		},
	}
	r := newRouter(NewOvertimeHandler(svc, auth(), nil))

	w, res := do(t, r, http.MethodPost, "/api/overtime-requests", token(t, employeeID, middleware.RoleEmployee), validCreateBody(employeeID))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, employeeID, gotRequester)
	data := res.Data.(map[string]interface{})
	assert.Equal(t, "PENDING", data["status"])
}

func TestCreateRequest_EmployeeCannotFileForOthers(t *testing.T) {
	svc := &fakeOvertimeService{
		createFn: func(context.Context, string, service.CreateOvertimeRequestDTO) (service.OvertimeRequestResponse, error) {
			t.Fatal("service must not be called")
			return service.OvertimeRequestResponse{}, nil
		},
	}
	r := newRouter(NewOvertimeHandler(svc, auth(), nil))

	w, res := do(t, r, http.MethodPost, "/api/overtime-requests", token(t, employeeID, middleware.RoleEmployee), validCreateBody(managerID))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperror.CodeForbidden, res.Code)
}

func TestCreateRequest_BindingError(t *testing.T) {
	r := newRouter(NewOvertimeHandler(&fakeOvertimeService{}, auth(), nil))
	body := validCreateBody(employeeID)
	delete(body, "reason")

	w, res := do(t, r, http.MethodPost, "/api/overtime-requests", token(t, managerID, middleware.RoleManager), body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, res.Code)
	assert.Equal(t, "Reason is required", res.Error)
}

func TestCreateRequest_ComplianceViolationCarriesDetails(t *testing.T) {
	svc := &fakeOvertimeService{
		createFn: func(context.Context, string, service.CreateOvertimeRequestDTO) (service.OvertimeRequestResponse, error) {
			return service.OvertimeRequestResponse{}, apperror.ErrComplianceLimitExceeded.
				WithMessage("weekly overtime cap exceeded").
				WithDetails([]string{"weekly_cap"})
		},
	}
	r := newRouter(NewOvertimeHandler(svc, auth(), nil))

	w, res := do(t, r, http.MethodPost, "/api/overtime-requests", token(t, managerID, middleware.RoleManager), validCreateBody(employeeID))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperror.CodeComplianceLimit, res.Code)
	assert.Equal(t, "weekly overtime cap exceeded", res.Error)
	assert.Equal(t, []interface{}{"weekly_cap"}, res.Details)
}

func TestCreateRequest_InternalErrorIsNotLeaked(t *testing.T) {
	svc := &fakeOvertimeService{
		createFn: func(context.Context, string, service.CreateOvertimeRequestDTO) (service.OvertimeRequestResponse, error) {
			return service.OvertimeRequestResponse{}, errors.New("pq: connection refused")
		},
	}
	r := newRouter(NewOvertimeHandler(svc, auth(), nil))

	w, res := do(t, r, http.MethodPost, "/api/overtime-requests", token(t, managerID, middleware.RoleManager), validCreateBody(employeeID))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternalError, res.Code)
	assert.NotContains(t, res.Error, "connection refused")
}

func TestCreateRequest_RunsIdempotencyGuardFirst(t *testing.T) {
	guard := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"status": "error", "code": "REQUEST_IN_PROGRESS"})
	}
	r := newRouter(NewOvertimeHandler(&fakeOvertimeService{}, auth(), guard))

	w, res := do(t, r, http.MethodPost, "/api/overtime-requests", token(t, managerID, middleware.RoleManager), validCreateBody(employeeID))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "REQUEST_IN_PROGRESS", res.Code)
}

func TestOvertimeRoutes_RateLimitedPerUser(t *testing.T) {
	svc := &fakeOvertimeService{
		listFn: func(_ context.Context, _ service.OvertimeListFilter) ([]service.OvertimeRequestResponse, int64, error) {
			return nil, 0, nil
		},
	}
	r := newRouter(NewOvertimeHandler(svc, auth(), nil).WithUserRateLimit(middleware.RateLimitByUser(0.001, 1)))

	employeeToken := token(t, employeeID, middleware.RoleEmployee)
	w, _ := do(t, r, http.MethodGet, "/api/overtime-requests", employeeToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/overtime-requests", employeeToken, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// a different caller has an untouched budget
	w, _ = do(t, r, http.MethodGet, "/api/overtime-requests", token(t, managerID, middleware.RoleManager), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// rejected logins never reach the limiter
	w, _ = do(t, r, http.MethodGet, "/api/overtime-requests", "bad-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListRequests_EmployeeScopedToSelf(t *testing.T) {
	var got service.OvertimeListFilter
	svc := &fakeOvertimeService{
		listFn: func(_ context.Context, filter service.OvertimeListFilter) ([]service.OvertimeRequestResponse, int64, error) {
			got = filter
			return []service.OvertimeRequestResponse{{ID: "req-1"}}, 1, nil
		},
	}
	r := newRouter(NewOvertimeHandler(svc, auth(), nil))

	w, res := do(t, r, http.MethodGet, "/api/overtime-requests?employee_id="+managerID+"&status=pending&page=2&limit=5",
		token(t, employeeID, middleware.RoleEmployee), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, employeeID, got.EmployeeID)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 5, got.Limit)
	data := res.Data.(map[string]interface{})
	assert.EqualValues(t, 1, data["total"])
}

func TestGetRequest_HidesOtherEmployeesRequests(t *testing.T) {
	svc := &fakeOvertimeService{
		getFn: func(_ context.Context, id string) (service.OvertimeRequestResponse, error) {
			return service.OvertimeRequestResponse{ID: id, EmployeeID: managerID}, nil
		},
	}
	r := newRouter(NewOvertimeHandler(svc, auth(), nil))

	w, res := do(t, r, http.MethodGet, "/api/overtime-requests/req-1", token(t, employeeID, middleware.RoleEmployee), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperror.CodeNotFound, res.Code)
}

func TestDecideRequest(t *testing.T) {
	var gotApprover string
	svc := &fakeOvertimeService{
		decideFn: func(_ context.Context, id, approverID string, req service.DecisionDTO) (service.OvertimeRequestResponse, error) {
			gotApprover = approverID
			if req.Action == "reject" {
				return service.OvertimeRequestResponse{}, apperror.ErrConcurrentModification
			}
			return service.OvertimeRequestResponse{ID: id, Status: "APPROVED", Version: 2}, nil
		},
	}
	r := newRouter(NewOvertimeHandler(svc, auth(), nil))

	t.Run("manager approves", func(t *testing.T) {
		w, res := do(t, r, http.MethodPut, "/api/overtime-requests/req-1/decision", token(t, managerID, middleware.RoleManager),
			map[string]string{"action": "approve"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, managerID, gotApprover)
		assert.Equal(t, "APPROVED", res.Data.(map[string]interface{})["status"])
	})

	t.Run("conflict maps to 409", func(t *testing.T) {
		w, res := do(t, r, http.MethodPut, "/api/overtime-requests/req-1/decision", token(t, managerID, middleware.RoleManager),
			map[string]string{"action": "reject", "comments": "budget"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, apperror.CodeConcurrentModification, res.Code)
	})

	t.Run("employee is refused", func(t *testing.T) {
		w, _ := do(t, r, http.MethodPut, "/api/overtime-requests/req-1/decision", token(t, employeeID, middleware.RoleEmployee),
			map[string]string{"action": "approve"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown action", func(t *testing.T) {
		w, res := do(t, r, http.MethodPut, "/api/overtime-requests/req-1/decision", token(t, managerID, middleware.RoleManager),
			map[string]string{"action": "escalate"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Action must be one of: approve reject", res.Error)
	})
}

func TestWithdrawRequest_PassesCaller(t *testing.T) {
	var gotRequester string
	svc := &fakeOvertimeService{
		withdrawFn: func(_ context.Context, id, requesterID string) (service.OvertimeRequestResponse, error) {
			gotRequester = requesterID
			return service.OvertimeRequestResponse{ID: id, Status: "WITHDRAWN"}, nil
		},
	}
	r := newRouter(NewOvertimeHandler(svc, auth(), nil))

	w, _ := do(t, r, http.MethodPut, "/api/overtime-requests/req-1/withdraw", token(t, employeeID, middleware.RoleEmployee), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, employeeID, gotRequester)
}

func TestOvertimePay_DefaultsToCurrentMonth(t *testing.T) {
	var got payroll.PayPeriod
	svc := &fakeOvertimeService{
		payFn: func(_ context.Context, employee string, period payroll.PayPeriod) (service.OvertimePaySummary, error) {
			got = period
			return service.OvertimePaySummary{EmployeeID: employee}, nil
		},
	}
	h := NewOvertimeHandler(svc, auth(), nil)
	h.now = func() time.Time { return time.Date(2024, time.February, 14, 10, 0, 0, 0, time.UTC) }
	r := newRouter(h)

	w, _ := do(t, r, http.MethodGet, "/api/overtime-pay/"+employeeID, token(t, managerID, middleware.RoleManager), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-02-01", got.Start.Format(time.DateOnly))
	assert.Equal(t, "2024-02-29", got.End.Format(time.DateOnly))
	assert.Empty(t, got.Frequency)
}

func TestOvertimePay_QueryOverrides(t *testing.T) {
	var got payroll.PayPeriod
	svc := &fakeOvertimeService{
		payFn: func(_ context.Context, _ string, period payroll.PayPeriod) (service.OvertimePaySummary, error) {
			got = period
			return service.OvertimePaySummary{}, nil
		},
	}
	r := newRouter(NewOvertimeHandler(svc, auth(), nil))
	bearer := token(t, managerID, middleware.RoleManager)

	w, _ := do(t, r, http.MethodGet, "/api/overtime-pay/"+employeeID+"?start=2024-01-01&end=2024-01-15&frequency=Biweekly", bearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payroll.Biweekly, got.Frequency)
	assert.Equal(t, 15, got.DaysInPeriod())

	w, res := do(t, r, http.MethodGet, "/api/overtime-pay/"+employeeID+"?start=01/01/2024", bearer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, res.Code)

	w, _ = do(t, r, http.MethodGet, "/api/overtime-pay/"+employeeID+"?frequency=fortnightly", bearer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
