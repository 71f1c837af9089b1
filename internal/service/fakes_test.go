package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"paycompliance/internal/events"
	"paycompliance/internal/model"
	"paycompliance/internal/repository"
	"paycompliance/internal/taxtable"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// today is a Monday.
var today = time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return today }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func loadRegistry(t *testing.T) *taxtable.Registry {
	t.Helper()
	reg, err := taxtable.Load(taxtable.Embedded())
	require.NoError(t, err)
	return reg
}

type fakeTxManager struct {
	calls  int
	locked []uuid.UUID
	lockFn func(ctx context.Context, employeeID uuid.UUID) error
}

func (f *fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

func (f *fakeTxManager) LockEmployee(ctx context.Context, employeeID uuid.UUID) error {
	f.locked = append(f.locked, employeeID)
	if f.lockFn != nil {
		return f.lockFn(ctx, employeeID)
	}
	return nil
}

type fakeOvertimeRepo struct {
	createFn               func(ctx context.Context, req *model.OvertimeRequest) error
	findByIDFn             func(ctx context.Context, id uuid.UUID) (*model.OvertimeRequest, error)
	listFn                 func(ctx context.Context, filter repository.OvertimeFilter) ([]model.OvertimeRequest, int64, error)
	updateStatusFn         func(ctx context.Context, req *model.OvertimeRequest) error
	sumHoursFn             func(ctx context.Context, employeeID uuid.UUID, from, to time.Time, statuses []string) (decimal.Decimal, error)
	listByStatusInPeriodFn func(ctx context.Context, employeeID uuid.UUID, from, to time.Time, statuses []string) ([]model.OvertimeRequest, error)
}

func (f *fakeOvertimeRepo) Create(ctx context.Context, req *model.OvertimeRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return nil
}

func (f *fakeOvertimeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.OvertimeRequest, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeOvertimeRepo) List(ctx context.Context, filter repository.OvertimeFilter) ([]model.OvertimeRequest, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return nil, 0, nil
}

func (f *fakeOvertimeRepo) UpdateStatus(ctx context.Context, req *model.OvertimeRequest) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, req)
	}
	req.Version++
	return nil
}

func (f *fakeOvertimeRepo) SumHours(ctx context.Context, employeeID uuid.UUID, from, to time.Time, statuses []string) (decimal.Decimal, error) {
	if f.sumHoursFn != nil {
		return f.sumHoursFn(ctx, employeeID, from, to, statuses)
	}
	return decimal.Zero, nil
}

func (f *fakeOvertimeRepo) ListByStatusInPeriod(ctx context.Context, employeeID uuid.UUID, from, to time.Time, statuses []string) ([]model.OvertimeRequest, error) {
	if f.listByStatusInPeriodFn != nil {
		return f.listByStatusInPeriodFn(ctx, employeeID, from, to, statuses)
	}
	return nil, nil
}

type fakeProfileRepo struct {
	findByIDFn func(ctx context.Context, id uuid.UUID) (*model.EmployeeProfile, error)
}

func (f *fakeProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.EmployeeProfile, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditLog
	logFn   func(ctx context.Context, entry *model.AuditLog) error
	listFn  func(ctx context.Context, filter repository.AuditFilter) ([]model.AuditLog, int64, error)
}

func (f *fakeAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	if f.logFn != nil {
		if err := f.logFn(ctx, entry); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, filter repository.AuditFilter) ([]model.AuditLog, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return nil, 0, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []events.OvertimeEvent
	err    error
}

func (f *fakeNotifier) NotifyOvertime(ctx context.Context, event events.OvertimeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func profile(country string, salary string) *model.EmployeeProfile {
	return &model.EmployeeProfile{
		ID:            uuid.New(),
		CompanyID:     uuid.New(),
		FullName:      "Ana Torres",
		MonthlySalary: dec(salary),
		PayFrequency:  "biweekly",
		CountryCode:   country,
	}
}
