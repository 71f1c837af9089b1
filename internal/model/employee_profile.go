package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EmployeeProfile is the compensation profile synchronised from the HR
// system. This service only reads it.
type EmployeeProfile struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	FullName           string          `gorm:"type:varchar(255)" json:"full_name"`
	MonthlySalary      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"monthly_salary"`
	PayFrequency       string          `gorm:"type:varchar(20);not null" json:"pay_frequency"`
	CountryCode        string          `gorm:"type:varchar(2);not null" json:"country_code"`
	State              string          `gorm:"type:varchar(100)" json:"state,omitempty"`
	Currency           string          `gorm:"type:varchar(3)" json:"currency"`
	ExemptFromOvertime bool            `gorm:"not null;default:false" json:"exempt_from_overtime"`
	OvertimeConsent    bool            `gorm:"not null;default:false" json:"overtime_consent"`
	UpdatedAt          time.Time       `json:"updated_at"`
}
