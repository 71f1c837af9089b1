package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"paycompliance/internal/apperror"
	"paycompliance/internal/middleware"
	"paycompliance/internal/payroll"
	"paycompliance/internal/service"
	"paycompliance/internal/taxtable"
	"paycompliance/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	employeeID = "6f1c2a3b-4d5e-4f60-8a9b-0c1d2e3f4a5b"
	managerID  = "0b6a4c1e-2f3d-4a5b-9c8d-7e6f5a4b3c2d"
)

var testSecret = []byte("handler-test-secret")

func init() {
	gin.SetMode(gin.TestMode)
	apperror.Init()
}

func token(t *testing.T, sub, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString(testSecret)
	require.NoError(t, err)
	return s
}

type routable interface {
	RegisterRoutes(router *gin.RouterGroup)
}

func newRouter(h routable) *gin.Engine {
	r := gin.New()
	h.RegisterRoutes(&r.RouterGroup)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, bearer string, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var res response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return w, res
}

// --- fakes ---

type fakeOvertimeService struct {
	createFn   func(ctx context.Context, requesterID string, req service.CreateOvertimeRequestDTO) (service.OvertimeRequestResponse, error)
	decideFn   func(ctx context.Context, id, approverID string, req service.DecisionDTO) (service.OvertimeRequestResponse, error)
	withdrawFn func(ctx context.Context, id, requesterID string) (service.OvertimeRequestResponse, error)
	getFn      func(ctx context.Context, id string) (service.OvertimeRequestResponse, error)
	listFn     func(ctx context.Context, filter service.OvertimeListFilter) ([]service.OvertimeRequestResponse, int64, error)
	payFn      func(ctx context.Context, employeeID string, period payroll.PayPeriod) (service.OvertimePaySummary, error)
}

func (f *fakeOvertimeService) CreateRequest(ctx context.Context, requesterID string, req service.CreateOvertimeRequestDTO) (service.OvertimeRequestResponse, error) {
	return f.createFn(ctx, requesterID, req)
}

func (f *fakeOvertimeService) DecideRequest(ctx context.Context, id, approverID string, req service.DecisionDTO) (service.OvertimeRequestResponse, error) {
	return f.decideFn(ctx, id, approverID, req)
}

func (f *fakeOvertimeService) WithdrawRequest(ctx context.Context, id, requesterID string) (service.OvertimeRequestResponse, error) {
	return f.withdrawFn(ctx, id, requesterID)
}

func (f *fakeOvertimeService) GetRequest(ctx context.Context, id string) (service.OvertimeRequestResponse, error) {
	return f.getFn(ctx, id)
}

func (f *fakeOvertimeService) ListRequests(ctx context.Context, filter service.OvertimeListFilter) ([]service.OvertimeRequestResponse, int64, error) {
	return f.listFn(ctx, filter)
}

func (f *fakeOvertimeService) CalculateOvertimePay(ctx context.Context, employeeID string, period payroll.PayPeriod) (service.OvertimePaySummary, error) {
	return f.payFn(ctx, employeeID, period)
}

type fakePayrollService struct {
	calculateFn func(ctx context.Context, req service.CalculatePayrollDTO) (payroll.Calculation, error)
	projectFn   func(ctx context.Context, employeeID string, year int) (payroll.ProjectionSummary, error)
}

func (f *fakePayrollService) Calculate(ctx context.Context, req service.CalculatePayrollDTO) (payroll.Calculation, error) {
	return f.calculateFn(ctx, req)
}

func (f *fakePayrollService) Project(ctx context.Context, employeeID string, year int) (payroll.ProjectionSummary, error) {
	return f.projectFn(ctx, employeeID, year)
}

type fakeTaxTableService struct {
	listFn   func(ctx context.Context) (service.TaxTablesResponse, error)
	getFn    func(ctx context.Context, country string, year int) (*taxtable.Table, error)
	reloadFn func(ctx context.Context, userID string) (service.TaxTablesResponse, error)
}

func (f *fakeTaxTableService) List(ctx context.Context) (service.TaxTablesResponse, error) {
	return f.listFn(ctx)
}

func (f *fakeTaxTableService) Get(ctx context.Context, country string, year int) (*taxtable.Table, error) {
	return f.getFn(ctx, country, year)
}

func (f *fakeTaxTableService) Reload(ctx context.Context, userID string) (service.TaxTablesResponse, error) {
	return f.reloadFn(ctx, userID)
}

type fakeAuditService struct {
	getFn func(ctx context.Context, filter service.AuditLogFilter) ([]service.AuditLogResponse, int64, error)
}

func (f *fakeAuditService) GetAuditLogs(ctx context.Context, filter service.AuditLogFilter) ([]service.AuditLogResponse, int64, error) {
	return f.getFn(ctx, filter)
}

func auth() *middleware.Authenticator {
	return middleware.NewAuthenticator(testSecret)
}
