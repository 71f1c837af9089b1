package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateOvertimeRequest   = "CREATE_OVERTIME_REQUEST"
	ActionApproveOvertimeRequest  = "APPROVE_OVERTIME_REQUEST"
	ActionRejectOvertimeRequest   = "REJECT_OVERTIME_REQUEST"
	ActionWithdrawOvertimeRequest = "WITHDRAW_OVERTIME_REQUEST"
	ActionReloadTaxTables         = "RELOAD_TAX_TABLES"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for automatic transitions
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
