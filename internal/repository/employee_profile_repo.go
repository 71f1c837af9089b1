package repository

import (
	"context"
	"errors"

	"paycompliance/internal/apperror"
	"paycompliance/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmployeeProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.EmployeeProfile, error)
}

type employeeProfileRepository struct {
	db *gorm.DB
}

func NewEmployeeProfileRepository(db *gorm.DB) EmployeeProfileRepository {
	return &employeeProfileRepository{db: db}
}

func (r *employeeProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.EmployeeProfile, error) {
	var p model.EmployeeProfile
	if err := GetDB(ctx, r.db).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound.WithMessage("employee profile %s not found", id)
		}
		return nil, err
	}
	return &p, nil
}
