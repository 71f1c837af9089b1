package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"paycompliance/internal/apperror"
	"paycompliance/internal/contextutil"
	"paycompliance/internal/events"
	"paycompliance/internal/model"
	"paycompliance/internal/overtime"
	"paycompliance/internal/payroll"
	"paycompliance/internal/repository"
	"paycompliance/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Statuses that count toward the daily, weekly and annual caps.
var capStatuses = []string{model.OvertimePending, model.OvertimeApproved, model.OvertimeAutoApproved}

// Statuses that are paid.
var payableStatuses = []string{model.OvertimeApproved, model.OvertimeAutoApproved}

// --- DTOs ---

type CreateOvertimeRequestDTO struct {
	EmployeeID     string          `json:"employee_id" binding:"required,uuid"`
	WorkDate       string          `json:"work_date" binding:"required"` // YYYY-MM-DD
	StartTime      string          `json:"start_time"`
	EndTime        string          `json:"end_time"`
	HoursRequested decimal.Decimal `json:"hours_requested" swaggertype:"string"`
	Type           string          `json:"type" binding:"required,oneof=regular weekend holiday night_shift emergency"`
	Reason         string          `json:"reason" binding:"required"`
}

type DecisionDTO struct {
	Action   string `json:"action" binding:"required,oneof=approve reject"`
	Comments string `json:"comments"` // mandatory reason when rejecting
}

type OvertimeListFilter struct {
	EmployeeID string
	Status     string
	Page       int
	Limit      int
}

type OvertimeRequestResponse struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employee_id"`
	CompanyID        string          `json:"company_id"`
	WorkDate         string          `json:"work_date"`
	StartTime        string          `json:"start_time,omitempty"`
	EndTime          string          `json:"end_time,omitempty"`
	HoursRequested   decimal.Decimal `json:"hours_requested" swaggertype:"string"`
	Type             string          `json:"type"`
	Reason           string          `json:"reason"`
	Status           string          `json:"status"`
	RequestedBy      *string         `json:"requested_by"`
	ApprovedBy       *string         `json:"approved_by"`
	ApprovedAt       *string         `json:"approved_at"`
	RejectionReason  string          `json:"rejection_reason,omitempty"`
	DecisionComments string          `json:"decision_comments,omitempty"`
	Version          int             `json:"version"`
	CreatedAt        string          `json:"created_at"`
}

// OvertimePaySummary is the priced approved overtime of one employee in a
// pay period.
type OvertimePaySummary struct {
	EmployeeID  string                        `json:"employee_id"`
	PeriodStart string                        `json:"period_start"`
	PeriodEnd   string                        `json:"period_end"`
	Frequency   payroll.Frequency             `json:"frequency"`
	Currency    string                        `json:"currency"`
	TotalHours  decimal.Decimal               `json:"total_hours" swaggertype:"string"`
	TotalAmount decimal.Decimal               `json:"total_amount" swaggertype:"string"`
	Breakdown   []payroll.OvertimeCalculation `json:"breakdown"`
}

// --- Interface ---

type OvertimeService interface {
	CreateRequest(ctx context.Context, requesterID string, req CreateOvertimeRequestDTO) (OvertimeRequestResponse, error)
	DecideRequest(ctx context.Context, id, approverID string, req DecisionDTO) (OvertimeRequestResponse, error)
	WithdrawRequest(ctx context.Context, id, requesterID string) (OvertimeRequestResponse, error)
	GetRequest(ctx context.Context, id string) (OvertimeRequestResponse, error)
	ListRequests(ctx context.Context, filter OvertimeListFilter) ([]OvertimeRequestResponse, int64, error)
	CalculateOvertimePay(ctx context.Context, employeeID string, period payroll.PayPeriod) (OvertimePaySummary, error)
}

type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	now func() time.Time
}

// WithClock replaces time.Now for date checks and decision timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(o *serviceOptions) { o.now = now }
}

func buildOptions(opts []ServiceOption) serviceOptions {
	o := serviceOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type overtimeService struct {
	txManager repository.TransactionManager
	requests  repository.OvertimeRequestRepository
	profiles  repository.EmployeeProfileRepository
	audit     repository.AuditRepository
	tables    payroll.TableProvider
	notifier  Notifier
	logger    *zap.Logger

	validator  overtime.Validator
	workflow   *overtime.Workflow
	calculator payroll.OvertimePayCalculator
	now        func() time.Time
}

func NewOvertimeService(
	txManager repository.TransactionManager,
	requests repository.OvertimeRequestRepository,
	profiles repository.EmployeeProfileRepository,
	audit repository.AuditRepository,
	tables payroll.TableProvider,
	notifier Notifier,
	logger *zap.Logger,
	opts ...ServiceOption,
) OvertimeService {
	o := buildOptions(opts)
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &overtimeService{
		txManager: txManager,
		requests:  requests,
		profiles:  profiles,
		audit:     audit,
		tables:    tables,
		notifier:  notifier,
		logger:    logger.Named("overtime"),
		workflow:  overtime.NewWorkflow(o.now),
		now:       o.now,
	}
}

// --- Implementation ---

func (s *overtimeService) CreateRequest(ctx context.Context, requesterID string, req CreateOvertimeRequestDTO) (OvertimeRequestResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	employeeID, err := parseID(req.EmployeeID, "employee_id")
	if err != nil {
		return OvertimeRequestResponse{}, err
	}
	workDate, err := parseDate(req.WorkDate, "work_date")
	if err != nil {
		return OvertimeRequestResponse{}, err
	}
	if !req.HoursRequested.IsPositive() {
		return OvertimeRequestResponse{}, apperror.Validation("hours_requested must be greater than zero")
	}
	var requester *uuid.UUID
	if requesterID != "" {
		parsed, parseErr := parseID(requesterID, "requester")
		if parseErr != nil {
			return OvertimeRequestResponse{}, parseErr
		}
		requester = &parsed
	}

	profile, err := s.profiles.FindByID(ctx, employeeID)
	if err != nil {
		return OvertimeRequestResponse{}, err
	}
	table, err := s.tables.Table(profile.CountryCode, workDate.Year())
	if err != nil {
		return OvertimeRequestResponse{}, err
	}

	otReq := model.OvertimeRequest{
		ID:             uuid.New(),
		EmployeeID:     employeeID,
		CompanyID:      profile.CompanyID,
		WorkDate:       workDate,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		HoursRequested: req.HoursRequested,
		Type:           req.Type,
		Reason:         strings.TrimSpace(req.Reason),
		RequestedBy:    requester,
		Version:        1,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if lockErr := s.txManager.LockEmployee(txCtx, employeeID); lockErr != nil {
			return fmt.Errorf("failed to lock employee overtime: %w", lockErr)
		}
		accumulated, accErr := s.accumulatedHours(txCtx, employeeID, workDate)
		if accErr != nil {
			return accErr
		}

		violations, valErr := s.validator.Validate(overtime.ValidationInput{
			EmployeeID:         employeeID.String(),
			WorkDate:           workDate,
			Hours:              req.HoursRequested,
			ExemptFromOvertime: profile.ExemptFromOvertime,
			OvertimeConsent:    profile.OvertimeConsent,
			Accumulated:        accumulated,
			Limits:             &table.Limits,
			Today:              s.now(),
		})
		if valErr != nil {
			return valErr
		}
		if len(violations) > 0 {
			log.Info("overtime request rejected by compliance rules",
				zap.String("employee_id", employeeID.String()),
				zap.Int("violations", len(violations)),
			)
			return apperror.ErrComplianceLimitExceeded.
				WithMessage("overtime request violates %d compliance rule(s)", len(violations)).
				WithDetails(violations)
		}

		s.workflow.ApplyCreation(&otReq, table.Limits)

		if createErr := s.requests.Create(txCtx, &otReq); createErr != nil {
			return fmt.Errorf("failed to create overtime request: %w", createErr)
		}
		return s.writeAudit(txCtx, requester, model.ActionCreateOvertimeRequest, &otReq, map[string]interface{}{
			"hours_requested": otReq.HoursRequested.String(),
			"work_date":       otReq.WorkDate.Format(time.DateOnly),
			"status":          otReq.Status,
		})
	})
	if err != nil {
		return OvertimeRequestResponse{}, err
	}

	log.Info("overtime request created",
		zap.String("request_id", otReq.ID.String()),
		zap.String("status", otReq.Status),
	)

	eventType := events.EventOvertimeRequested
	if otReq.Status == model.OvertimeAutoApproved {
		eventType = events.EventOvertimeApproved
	}
	s.notify(ctx, eventType, &otReq, requester)

	return toOvertimeResponse(otReq), nil
}

func (s *overtimeService) DecideRequest(ctx context.Context, id, approverID string, req DecisionDTO) (OvertimeRequestResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	requestID, err := parseID(id, "id")
	if err != nil {
		return OvertimeRequestResponse{}, err
	}
	approver, err := parseID(approverID, "approver")
	if err != nil {
		return OvertimeRequestResponse{}, err
	}

	var otReq *model.OvertimeRequest
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		found, findErr := s.requests.FindByID(txCtx, requestID)
		if findErr != nil {
			return findErr
		}
		otReq = found

		if decideErr := s.workflow.Decide(otReq, req.Action, approver, strings.TrimSpace(req.Comments)); decideErr != nil {
			return decideErr
		}
		if updateErr := s.requests.UpdateStatus(txCtx, otReq); updateErr != nil {
			return updateErr
		}

		action := model.ActionApproveOvertimeRequest
		if otReq.Status == model.OvertimeRejected {
			action = model.ActionRejectOvertimeRequest
		}
		return s.writeAudit(txCtx, &approver, action, otReq, map[string]interface{}{
			"status":   otReq.Status,
			"comments": otReq.DecisionComments,
		})
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConcurrentModification) {
			log.Warn("overtime decision lost a concurrent update", zap.String("request_id", id), zap.Error(err))
		}
		return OvertimeRequestResponse{}, err
	}

	log.Info("overtime request decided",
		zap.String("request_id", otReq.ID.String()),
		zap.String("status", otReq.Status),
	)

	eventType := events.EventOvertimeApproved
	if otReq.Status == model.OvertimeRejected {
		eventType = events.EventOvertimeRejected
	}
	s.notify(ctx, eventType, otReq, &approver)

	return toOvertimeResponse(*otReq), nil
}

func (s *overtimeService) WithdrawRequest(ctx context.Context, id, requesterID string) (OvertimeRequestResponse, error) {
	requestID, err := parseID(id, "id")
	if err != nil {
		return OvertimeRequestResponse{}, err
	}
	requester, err := parseID(requesterID, "requester")
	if err != nil {
		return OvertimeRequestResponse{}, err
	}

	var otReq *model.OvertimeRequest
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		found, findErr := s.requests.FindByID(txCtx, requestID)
		if findErr != nil {
			return findErr
		}
		otReq = found

		if wErr := s.workflow.Withdraw(otReq, requester); wErr != nil {
			return wErr
		}
		if updateErr := s.requests.UpdateStatus(txCtx, otReq); updateErr != nil {
			return updateErr
		}
		return s.writeAudit(txCtx, &requester, model.ActionWithdrawOvertimeRequest, otReq, map[string]interface{}{
			"status": otReq.Status,
		})
	})
	if err != nil {
		return OvertimeRequestResponse{}, err
	}

	s.notify(ctx, events.EventOvertimeWithdrawn, otReq, &requester)
	return toOvertimeResponse(*otReq), nil
}

func (s *overtimeService) GetRequest(ctx context.Context, id string) (OvertimeRequestResponse, error) {
	requestID, err := parseID(id, "id")
	if err != nil {
		return OvertimeRequestResponse{}, err
	}
	otReq, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return OvertimeRequestResponse{}, err
	}
	return toOvertimeResponse(*otReq), nil
}

func (s *overtimeService) ListRequests(ctx context.Context, filter OvertimeListFilter) ([]OvertimeRequestResponse, int64, error) {
	page := pagination.New(filter.Page, filter.Limit)
	filter.Page, filter.Limit = page.Page, page.Limit

	repoFilter := repository.OvertimeFilter{
		Status: strings.ToUpper(filter.Status),
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.EmployeeID != "" {
		employeeID, err := parseID(filter.EmployeeID, "employee_id")
		if err != nil {
			return nil, 0, err
		}
		repoFilter.EmployeeID = &employeeID
	}

	requests, total, err := s.requests.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list overtime requests: %w", err)
	}

	res := make([]OvertimeRequestResponse, 0, len(requests))
	for _, r := range requests {
		res = append(res, toOvertimeResponse(r))
	}
	return res, total, nil
}

// CalculateOvertimePay prices every paid request in the period in work-date
// order. Hours from earlier requests on the same day or week count as worked
// time for later ones.
func (s *overtimeService) CalculateOvertimePay(ctx context.Context, employeeID string, period payroll.PayPeriod) (OvertimePaySummary, error) {
	id, err := parseID(employeeID, "employee_id")
	if err != nil {
		return OvertimePaySummary{}, err
	}
	if period.Start.IsZero() || period.End.IsZero() || period.End.Before(period.Start) {
		return OvertimePaySummary{}, apperror.Validation("a valid pay period is required")
	}

	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return OvertimePaySummary{}, err
	}
	if period.Frequency == "" {
		period.Frequency = payroll.Frequency(strings.ToLower(profile.PayFrequency))
	}

	requests, err := s.requests.ListByStatusInPeriod(ctx, id, period.Start, period.End, payableStatuses)
	if err != nil {
		return OvertimePaySummary{}, fmt.Errorf("failed to load approved overtime: %w", err)
	}

	summary := OvertimePaySummary{
		EmployeeID:  id.String(),
		PeriodStart: period.Start.Format(time.DateOnly),
		PeriodEnd:   period.End.Format(time.DateOnly),
		Frequency:   period.Frequency,
		Currency:    profile.Currency,
		TotalHours:  decimal.Zero,
		TotalAmount: decimal.Zero,
		Breakdown:   make([]payroll.OvertimeCalculation, 0, len(requests)),
	}

	perDay := map[string]decimal.Decimal{}
	perWeek := map[string]decimal.Decimal{}
	for _, r := range requests {
		table, tErr := s.tables.Table(profile.CountryCode, r.WorkDate.Year())
		if tErr != nil {
			return OvertimePaySummary{}, tErr
		}
		rate, rErr := payroll.HourlyRate(profile.MonthlySalary, table.Limits)
		if rErr != nil {
			return OvertimePaySummary{}, rErr
		}

		dayKey := r.WorkDate.Format(time.DateOnly)
		monday, _ := overtime.WeekBounds(r.WorkDate)
		weekKey := monday.Format(time.DateOnly)

		calc, cErr := s.calculator.Calculate(payroll.OvertimeInput{
			EmployeeID:        id.String(),
			RequestID:         r.ID.String(),
			HourlyRate:        rate,
			Hours:             r.HoursRequested,
			DailyHoursWorked:  table.Limits.StandardDailyHours.Add(perDay[dayKey]),
			WeeklyHoursWorked: table.Limits.StandardWeeklyHours.Add(perWeek[weekKey]),
		}, table)
		if cErr != nil {
			return OvertimePaySummary{}, cErr
		}

		perDay[dayKey] = perDay[dayKey].Add(r.HoursRequested)
		perWeek[weekKey] = perWeek[weekKey].Add(r.HoursRequested)

		summary.TotalHours = summary.TotalHours.Add(calc.Hours)
		summary.TotalAmount = summary.TotalAmount.Add(calc.TotalOvertimeAmount)
		if summary.Currency == "" {
			summary.Currency = calc.Currency
		}
		summary.Breakdown = append(summary.Breakdown, calc)
	}

	return summary, nil
}

// --- Helpers ---

func (s *overtimeService) accumulatedHours(ctx context.Context, employeeID uuid.UUID, workDate time.Time) (overtime.AccumulatedHours, error) {
	var acc overtime.AccumulatedHours
	var err error

	if acc.Daily, err = s.requests.SumHours(ctx, employeeID, workDate, workDate, capStatuses); err != nil {
		return acc, fmt.Errorf("failed to sum daily overtime: %w", err)
	}
	weekStart, weekEnd := overtime.WeekBounds(workDate)
	if acc.Weekly, err = s.requests.SumHours(ctx, employeeID, weekStart, weekEnd, capStatuses); err != nil {
		return acc, fmt.Errorf("failed to sum weekly overtime: %w", err)
	}
	yearStart, yearEnd := overtime.YearBounds(workDate)
	if acc.Annual, err = s.requests.SumHours(ctx, employeeID, yearStart, yearEnd, capStatuses); err != nil {
		return acc, fmt.Errorf("failed to sum annual overtime: %w", err)
	}
	return acc, nil
}

func (s *overtimeService) writeAudit(ctx context.Context, userID *uuid.UUID, action string, req *model.OvertimeRequest, details map[string]interface{}) error {
	details["employee_id"] = req.EmployeeID.String()
	payload, _ := json.Marshal(details)
	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   req.ID.String(),
		EntityName: "overtime_request",
		Details:    string(payload),
	}
	if err := s.audit.Log(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// notify runs after commit. A delivery failure never undoes the transition.
func (s *overtimeService) notify(ctx context.Context, eventType string, req *model.OvertimeRequest, actor *uuid.UUID) {
	event := events.OvertimeEvent{
		EventType:      eventType,
		RequestID:      req.ID.String(),
		EmployeeID:     req.EmployeeID.String(),
		CompanyID:      req.CompanyID.String(),
		Status:         req.Status,
		HoursRequested: req.HoursRequested.String(),
		WorkDate:       req.WorkDate.Format(time.DateOnly),
		OccurredAt:     s.now().UTC(),
	}
	if actor != nil {
		event.ActorID = actor.String()
	}
	if err := s.notifier.NotifyOvertime(ctx, event); err != nil {
		contextutil.GetLogger(ctx, s.logger).Warn("overtime notification failed",
			zap.String("event_type", eventType),
			zap.String("request_id", event.RequestID),
			zap.Error(err),
		)
	}
}

func toOvertimeResponse(r model.OvertimeRequest) OvertimeRequestResponse {
	res := OvertimeRequestResponse{
		ID:               r.ID.String(),
		EmployeeID:       r.EmployeeID.String(),
		CompanyID:        r.CompanyID.String(),
		WorkDate:         r.WorkDate.Format(time.DateOnly),
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		HoursRequested:   r.HoursRequested,
		Type:             r.Type,
		Reason:           r.Reason,
		Status:           r.Status,
		RejectionReason:  r.RejectionReason,
		DecisionComments: r.DecisionComments,
		Version:          r.Version,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
	}
	if r.RequestedBy != nil {
		v := r.RequestedBy.String()
		res.RequestedBy = &v
	}
	if r.ApprovedBy != nil {
		v := r.ApprovedBy.String()
		res.ApprovedBy = &v
	}
	if r.ApprovedAt != nil {
		v := r.ApprovedAt.Format(time.RFC3339)
		res.ApprovedAt = &v
	}
	return res
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid %s: %q is not a UUID", field, raw)
	}
	return id, nil
}

func parseDate(raw, field string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperror.Validation("invalid %s: expected YYYY-MM-DD", field)
	}
	return t, nil
}
