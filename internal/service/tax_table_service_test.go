package service_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"paycompliance/internal/apperror"
	"paycompliance/internal/model"
	"paycompliance/internal/repository"
	"paycompliance/internal/service"
	"paycompliance/internal/taxtable"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxTableService_List(t *testing.T) {
	svc := service.NewTaxTableService(loadRegistry(t), &fakeAuditRepo{}, nil)

	res, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "embedded", res.Source)

	byCountry := map[string]service.TaxTableSummary{}
	for _, s := range res.Tables {
		byCountry[s.Country] = s
	}
	assert.True(t, byCountry["MX"].Payroll)
	assert.Equal(t, taxtable.MethodTiered, byCountry["MX"].OvertimeMethod)
	assert.False(t, byCountry["EU"].Payroll)
}

func TestTaxTableService_Get(t *testing.T) {
	svc := service.NewTaxTableService(loadRegistry(t), &fakeAuditRepo{}, nil)

	tbl, err := svc.Get(context.Background(), "us", 2024)
	require.NoError(t, err)
	assert.Equal(t, "USD", tbl.Currency)

	_, err = svc.Get(context.Background(), "MX", 1999)
	assert.True(t, errors.Is(err, apperror.ErrConfiguration))
}

func TestTaxTableService_Reload(t *testing.T) {
	dir := t.TempDir()
	data, err := fs.ReadFile(taxtable.Embedded().FS, "es-2024.yaml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "es-2024.yaml"), data, 0o644))

	reg, err := taxtable.Load(taxtable.Dir(dir))
	require.NoError(t, err)
	audit := &fakeAuditRepo{}
	svc := service.NewTaxTableService(reg, audit, nil)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("country: \"\"\nyear: 2024\n"), 0o644))
	_, err = svc.Reload(context.Background(), uuid.NewString())
	assert.True(t, errors.Is(err, apperror.ErrConfiguration))
	assert.Empty(t, audit.entries)

	require.NoError(t, os.Remove(filepath.Join(dir, "broken.yaml")))
	res, err := svc.Reload(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Len(t, res.Tables, 1)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, model.ActionReloadTaxTables, audit.entries[0].Action)
}

func TestAuditService_GetAuditLogs(t *testing.T) {
	user := uuid.New()
	repo := &fakeAuditRepo{listFn: func(ctx context.Context, filter repository.AuditFilter) ([]model.AuditLog, int64, error) {
		assert.Equal(t, 1, filter.Page)
		assert.Equal(t, 20, filter.Limit)
		assert.Equal(t, model.ActionApproveOvertimeRequest, filter.Action)
		return []model.AuditLog{
			{ID: uuid.New(), UserID: &user, Action: model.ActionApproveOvertimeRequest},
			{ID: uuid.New(), Action: model.ActionApproveOvertimeRequest},
		}, 2, nil
	}}

	logs, total, err := service.NewAuditService(repo).GetAuditLogs(context.Background(), service.AuditLogFilter{Action: "approve_overtime_request"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, user.String(), logs[0].UserID)
	assert.Empty(t, logs[1].UserID)
}
