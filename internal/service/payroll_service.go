package service

import (
	"context"
	"strings"

	"paycompliance/internal/apperror"
	"paycompliance/internal/contextutil"
	"paycompliance/internal/model"
	"paycompliance/internal/payroll"
	"paycompliance/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- DTOs ---

// ProfileDTO is an inline compensation profile for employees not yet synced
// from the HR system.
type ProfileDTO struct {
	EmployeeID         string          `json:"employee_id" binding:"required"`
	MonthlySalary      decimal.Decimal `json:"monthly_salary" swaggertype:"string"`
	PayFrequency       string          `json:"pay_frequency" binding:"required,oneof=daily weekly biweekly monthly bimonthly"`
	CountryCode        string          `json:"country_code" binding:"required,len=2"`
	State              string          `json:"state"`
	Currency           string          `json:"currency"`
	ExemptFromOvertime bool            `json:"exempt_from_overtime"`
	OvertimeConsent    bool            `json:"overtime_consent"`
}

type CalculatePayrollDTO struct {
	EmployeeID              string          `json:"employee_id"`
	Profile                 *ProfileDTO     `json:"profile"`
	PeriodStart             string          `json:"period_start" binding:"required"` // YYYY-MM-DD
	PeriodEnd               string          `json:"period_end" binding:"required"`
	OvertimeHours           decimal.Decimal `json:"overtime_hours" swaggertype:"string"`
	IncludeApprovedOvertime bool            `json:"include_approved_overtime"`
	Bonuses                 decimal.Decimal `json:"bonuses" swaggertype:"string"`
	Commissions             decimal.Decimal `json:"commissions" swaggertype:"string"`
	OtherIncome             decimal.Decimal `json:"other_income" swaggertype:"string"`
	Loans                   decimal.Decimal `json:"loans" swaggertype:"string"`
	Advances                decimal.Decimal `json:"advances" swaggertype:"string"`
	OtherDeductions         decimal.Decimal `json:"other_deductions" swaggertype:"string"`
}

// --- Interface ---

// PayrollCalculator is satisfied by *payroll.Engine.
type PayrollCalculator interface {
	Calculate(in payroll.Input) (payroll.Calculation, error)
	Project(profile payroll.CompensationProfile, year int) (payroll.ProjectionSummary, error)
}

type PayrollService interface {
	Calculate(ctx context.Context, req CalculatePayrollDTO) (payroll.Calculation, error)
	Project(ctx context.Context, employeeID string, year int) (payroll.ProjectionSummary, error)
}

type payrollService struct {
	engine   PayrollCalculator
	profiles repository.EmployeeProfileRepository
	overtime OvertimeService
	logger   *zap.Logger
}

func NewPayrollService(engine PayrollCalculator, profiles repository.EmployeeProfileRepository, overtime OvertimeService, logger *zap.Logger) PayrollService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &payrollService{
		engine:   engine,
		profiles: profiles,
		overtime: overtime,
		logger:   logger.Named("payroll"),
	}
}

// --- Implementation ---

func (s *payrollService) Calculate(ctx context.Context, req CalculatePayrollDTO) (payroll.Calculation, error) {
	profile, err := s.resolveProfile(ctx, req.EmployeeID, req.Profile)
	if err != nil {
		return payroll.Calculation{}, err
	}

	start, err := parseDate(req.PeriodStart, "period_start")
	if err != nil {
		return payroll.Calculation{}, err
	}
	end, err := parseDate(req.PeriodEnd, "period_end")
	if err != nil {
		return payroll.Calculation{}, err
	}
	period := payroll.PayPeriod{Start: start, End: end, Frequency: profile.PayFrequency}

	in := payroll.Input{
		Profile:       profile,
		Period:        period,
		OvertimeHours: req.OvertimeHours,
		Bonuses:       req.Bonuses,
		Commissions:   req.Commissions,
		OtherIncome:   req.OtherIncome,
		Deductions: payroll.OtherDeductions{
			Loans:    req.Loans,
			Advances: req.Advances,
			Other:    req.OtherDeductions,
		},
	}

	if req.IncludeApprovedOvertime {
		if s.overtime == nil || req.Profile != nil {
			return payroll.Calculation{}, apperror.Validation("approved overtime can only be included for a registered employee")
		}
		summary, otErr := s.overtime.CalculateOvertimePay(ctx, profile.EmployeeID, period)
		if otErr != nil {
			return payroll.Calculation{}, otErr
		}
		in.OvertimeAmount = summary.TotalAmount
	}

	calc, err := s.engine.Calculate(in)
	if err != nil {
		return payroll.Calculation{}, err
	}

	contextutil.GetLogger(ctx, s.logger).Info("payroll calculated",
		zap.String("employee_id", calc.Metadata.EmployeeID),
		zap.String("country", calc.Metadata.Country),
		zap.String("period_end", calc.Metadata.PeriodEnd),
	)
	return calc, nil
}

func (s *payrollService) Project(ctx context.Context, employeeID string, year int) (payroll.ProjectionSummary, error) {
	if year < 2000 || year > 2100 {
		return payroll.ProjectionSummary{}, apperror.Validation("year %d is out of range", year)
	}
	profile, err := s.resolveProfile(ctx, employeeID, nil)
	if err != nil {
		return payroll.ProjectionSummary{}, err
	}
	return s.engine.Project(profile, year)
}

// --- Helpers ---

func (s *payrollService) resolveProfile(ctx context.Context, employeeID string, inline *ProfileDTO) (payroll.CompensationProfile, error) {
	if inline != nil {
		return payroll.CompensationProfile{
			EmployeeID:         strings.TrimSpace(inline.EmployeeID),
			MonthlySalary:      inline.MonthlySalary,
			PayFrequency:       payroll.Frequency(strings.ToLower(inline.PayFrequency)),
			CountryCode:        inline.CountryCode,
			State:              inline.State,
			Currency:           inline.Currency,
			ExemptFromOvertime: inline.ExemptFromOvertime,
			OvertimeConsent:    inline.OvertimeConsent,
		}, nil
	}
	if strings.TrimSpace(employeeID) == "" {
		return payroll.CompensationProfile{}, apperror.Validation("employee_id or profile is required")
	}

	id, err := parseID(employeeID, "employee_id")
	if err != nil {
		return payroll.CompensationProfile{}, err
	}
	p, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return payroll.CompensationProfile{}, err
	}
	return toCompensationProfile(p), nil
}

func toCompensationProfile(p *model.EmployeeProfile) payroll.CompensationProfile {
	return payroll.CompensationProfile{
		EmployeeID:         p.ID.String(),
		MonthlySalary:      p.MonthlySalary,
		PayFrequency:       payroll.Frequency(strings.ToLower(p.PayFrequency)),
		CountryCode:        p.CountryCode,
		State:              p.State,
		Currency:           p.Currency,
		ExemptFromOvertime: p.ExemptFromOvertime,
		OvertimeConsent:    p.OvertimeConsent,
	}
}
