package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type contextKey string

const txKey contextKey = "gorm_tx"

// ErrNoTransaction is returned when a lock is requested outside RunInTx.
var ErrNoTransaction = errors.New("repository: no transaction in context")

// TransactionManager runs a unit of work in one database transaction. The
// transaction travels in the context so repositories join it through GetDB.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
	// LockEmployee holds a transaction-scoped lock on employeeID so that
	// accumulated-hours checks and the insert they guard cannot interleave
	// with another request for the same employee.
	LockEmployee(txCtx context.Context, employeeID uuid.UUID) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

// RunInTx joins the caller's transaction when one is already in ctx.
func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey, tx))
	})
}

func (t *transactionManager) LockEmployee(ctx context.Context, employeeID uuid.UUID) error {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if !ok {
		return ErrNoTransaction
	}
	return tx.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", employeeLockKey(employeeID)).
		Error
}

func employeeLockKey(employeeID uuid.UUID) string {
	return "overtime:" + employeeID.String()
}

// GetDB returns the transaction in ctx, or rootDB outside one.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
