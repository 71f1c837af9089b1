package repository_test

import (
	"context"
	"errors"
	"testing"

	"paycompliance/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionManager_LockEmployeeInsideTx(t *testing.T) {
	deps := setupRepoTest(t)
	tm := repository.NewTransactionManager(deps.db)
	employeeID := uuid.New()

	deps.mock.ExpectBegin()
	deps.mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
		WithArgs("overtime:" + employeeID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	deps.mock.ExpectCommit()

	err := tm.RunInTx(context.Background(), func(txCtx context.Context) error {
		return tm.LockEmployee(txCtx, employeeID)
	})
	require.NoError(t, err)
	assert.NoError(t, deps.mock.ExpectationsWereMet())
}

func TestTransactionManager_LockEmployeeOutsideTx(t *testing.T) {
	deps := setupRepoTest(t)
	tm := repository.NewTransactionManager(deps.db)

	err := tm.LockEmployee(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNoTransaction)
	assert.NoError(t, deps.mock.ExpectationsWereMet())
}

func TestTransactionManager_NestedRunJoinsOuterTx(t *testing.T) {
	deps := setupRepoTest(t)
	tm := repository.NewTransactionManager(deps.db)
	boom := errors.New("boom")

	deps.mock.ExpectBegin()
	deps.mock.ExpectRollback()

	err := tm.RunInTx(context.Background(), func(txCtx context.Context) error {
		return tm.RunInTx(txCtx, func(context.Context) error { return boom })
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, deps.mock.ExpectationsWereMet())
}
