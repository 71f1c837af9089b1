package database

import (
	"time"

	"paycompliance/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewConnection opens the PostgreSQL pool with gorm logging sent to logger.
// Schema changes are left to Migrate.
func NewConnection(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: NewZapLogger(logger, gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Migrate creates or updates the service's tables. Employee profiles are owned
// by the HR system; the table is migrated so a standalone deployment can be
// seeded.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.OvertimeRequest{},
		&model.EmployeeProfile{},
		&model.AuditLog{},
	)
}
