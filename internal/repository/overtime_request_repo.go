package repository

import (
	"context"
	"errors"
	"time"

	"paycompliance/internal/apperror"
	"paycompliance/internal/model"
	"paycompliance/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrConcurrentModification is returned by UpdateStatus when the stored
// version no longer matches.
var ErrConcurrentModification = apperror.ErrConcurrentModification

type OvertimeFilter struct {
	EmployeeID *uuid.UUID
	Status     string
	Page       int
	Limit      int
}

type OvertimeRequestRepository interface {
	Create(ctx context.Context, req *model.OvertimeRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.OvertimeRequest, error)
	List(ctx context.Context, filter OvertimeFilter) ([]model.OvertimeRequest, int64, error)
	UpdateStatus(ctx context.Context, req *model.OvertimeRequest) error
	SumHours(ctx context.Context, employeeID uuid.UUID, from, to time.Time, statuses []string) (decimal.Decimal, error)
	ListByStatusInPeriod(ctx context.Context, employeeID uuid.UUID, from, to time.Time, statuses []string) ([]model.OvertimeRequest, error)
}

type overtimeRequestRepository struct {
	db *gorm.DB
}

func NewOvertimeRequestRepository(db *gorm.DB) OvertimeRequestRepository {
	return &overtimeRequestRepository{db: db}
}

func (r *overtimeRequestRepository) Create(ctx context.Context, req *model.OvertimeRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Version == 0 {
		req.Version = 1
	}
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *overtimeRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.OvertimeRequest, error) {
	var req model.OvertimeRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound.WithMessage("overtime request %s not found", id)
		}
		return nil, err
	}
	return &req, nil
}

func (r *overtimeRequestRepository) List(ctx context.Context, filter OvertimeFilter) ([]model.OvertimeRequest, int64, error) {
	var requests []model.OvertimeRequest
	var total int64

	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.EmployeeID != nil {
			db = db.Where("employee_id = ?", *filter.EmployeeID)
		}
		return db
	}

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.OvertimeRequest{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := pagination.New(filter.Page, filter.Limit)
	if err := db.Scopes(scope, page.Scope).Order("work_date DESC, created_at DESC").Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// UpdateStatus writes the workflow fields only if the row still carries the
// version the caller read, then bumps req.Version.
func (r *overtimeRequestRepository) UpdateStatus(ctx context.Context, req *model.OvertimeRequest) error {
	res := GetDB(ctx, r.db).
		Model(&model.OvertimeRequest{}).
		Where("id = ? AND version = ?", req.ID, req.Version).
		Updates(map[string]interface{}{
			"status":            req.Status,
			"approved_by":       req.ApprovedBy,
			"approved_at":       req.ApprovedAt,
			"rejection_reason":  req.RejectionReason,
			"decision_comments": req.DecisionComments,
			"version":           gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentModification.WithMessage("overtime request %s was modified concurrently", req.ID)
	}
	req.Version++
	return nil
}

func (r *overtimeRequestRepository) SumHours(ctx context.Context, employeeID uuid.UUID, from, to time.Time, statuses []string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := GetDB(ctx, r.db).
		Model(&model.OvertimeRequest{}).
		Select("COALESCE(SUM(hours_requested), 0)").
		Where("employee_id = ? AND work_date BETWEEN ? AND ? AND status IN ?", employeeID, from, to, statuses).
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *overtimeRequestRepository) ListByStatusInPeriod(ctx context.Context, employeeID uuid.UUID, from, to time.Time, statuses []string) ([]model.OvertimeRequest, error) {
	var requests []model.OvertimeRequest
	err := GetDB(ctx, r.db).
		Where("employee_id = ? AND work_date BETWEEN ? AND ? AND status IN ?", employeeID, from, to, statuses).
		Order("work_date ASC, created_at ASC").
		Find(&requests).Error
	return requests, err
}
