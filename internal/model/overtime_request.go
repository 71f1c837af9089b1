package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OvertimePending      = "PENDING"
	OvertimeApproved     = "APPROVED"
	OvertimeAutoApproved = "AUTO_APPROVED"
	OvertimeRejected     = "REJECTED"
	OvertimeWithdrawn    = "WITHDRAWN"
)

const (
	OvertimeTypeRegular    = "regular"
	OvertimeTypeWeekend    = "weekend"
	OvertimeTypeHoliday    = "holiday"
	OvertimeTypeNightShift = "night_shift"
	OvertimeTypeEmergency  = "emergency"
)

// OvertimeRequest is mutated only through workflow transitions. Version is
// checked and incremented on every status write.
type OvertimeRequest struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_overtime_employee_date" json:"employee_id"`
	CompanyID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	WorkDate         time.Time       `gorm:"type:date;not null;index:idx_overtime_employee_date" json:"work_date"`
	StartTime        string          `gorm:"type:varchar(5)" json:"start_time"` // HH:MM
	EndTime          string          `gorm:"type:varchar(5)" json:"end_time"`
	HoursRequested   decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"hours_requested"`
	Type             string          `gorm:"type:varchar(20);not null" json:"type"`
	Reason           string          `gorm:"type:text" json:"reason"`
	Status           string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	RequestedBy      *uuid.UUID      `gorm:"type:uuid" json:"requested_by"`
	ApprovedBy       *uuid.UUID      `gorm:"type:uuid" json:"approved_by"`
	ApprovedAt       *time.Time      `json:"approved_at"`
	RejectionReason  string          `gorm:"type:text" json:"rejection_reason,omitempty"`
	DecisionComments string          `gorm:"type:text" json:"decision_comments,omitempty"`
	Version          int             `gorm:"not null;default:1" json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
