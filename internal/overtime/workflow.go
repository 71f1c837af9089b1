package overtime

import (
	"strings"
	"time"

	"paycompliance/internal/apperror"
	"paycompliance/internal/model"
	"paycompliance/internal/taxtable"

	"github.com/google/uuid"
)

// Decision actions.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// IsTerminal reports whether no further transition is allowed from status.
func IsTerminal(status string) bool {
	switch status {
	case model.OvertimeApproved, model.OvertimeAutoApproved, model.OvertimeRejected, model.OvertimeWithdrawn:
		return true
	}
	return false
}

// Workflow is the request lifecycle:
//
//	PENDING -> APPROVED | AUTO_APPROVED | REJECTED | WITHDRAWN
//
// Every non-PENDING state is terminal.
type Workflow struct {
	now func() time.Time
}

func NewWorkflow(now func() time.Time) *Workflow {
	if now == nil {
		now = time.Now
	}
	return &Workflow{now: now}
}

// ApplyCreation sets the initial status of a new request and reports
// whether it was auto-approved.
func (w *Workflow) ApplyCreation(req *model.OvertimeRequest, limits taxtable.CountryLimits) bool {
	req.Status = model.OvertimePending
	if !autoApprovable(req, limits) {
		return false
	}
	now := w.now()
	req.Status = model.OvertimeAutoApproved
	req.ApprovedAt = &now
	return true
}

func autoApprovable(req *model.OvertimeRequest, limits taxtable.CountryLimits) bool {
	if req.Type == model.OvertimeTypeEmergency {
		return true
	}
	return !limits.ApprovalRequired && req.HoursRequested.LessThan(limits.AutoApprovalMaxHours)
}

// Decide applies an approve or reject action.
func (w *Workflow) Decide(req *model.OvertimeRequest, action string, approverID uuid.UUID, comments string) error {
	switch action {
	case ActionApprove:
		return w.Approve(req, approverID, comments)
	case ActionReject:
		return w.Reject(req, approverID, comments)
	}
	return apperror.Validation("unknown action %q, expected approve or reject", action)
}

func (w *Workflow) Approve(req *model.OvertimeRequest, approverID uuid.UUID, comments string) error {
	if err := w.checkPending(req); err != nil {
		return err
	}
	if approverID == uuid.Nil {
		return apperror.Validation("approver is required")
	}
	now := w.now()
	req.Status = model.OvertimeApproved
	req.ApprovedBy = &approverID
	req.ApprovedAt = &now
	req.DecisionComments = comments
	return nil
}

// Reject records the reason on the request; it is mandatory.
func (w *Workflow) Reject(req *model.OvertimeRequest, approverID uuid.UUID, reason string) error {
	if err := w.checkPending(req); err != nil {
		return err
	}
	if approverID == uuid.Nil {
		return apperror.Validation("approver is required")
	}
	if strings.TrimSpace(reason) == "" {
		return apperror.Validation("a rejection reason is required")
	}
	now := w.now()
	req.Status = model.OvertimeRejected
	req.ApprovedBy = &approverID
	req.ApprovedAt = &now
	req.RejectionReason = reason
	req.DecisionComments = reason
	return nil
}

// Withdraw cancels a pending request on behalf of whoever filed it.
func (w *Workflow) Withdraw(req *model.OvertimeRequest, requesterID uuid.UUID) error {
	if err := w.checkPending(req); err != nil {
		return err
	}
	if req.RequestedBy != nil && *req.RequestedBy != requesterID {
		return apperror.ErrForbidden.WithMessage("only the requester may withdraw this request")
	}
	req.Status = model.OvertimeWithdrawn
	return nil
}

func (w *Workflow) checkPending(req *model.OvertimeRequest) error {
	if IsTerminal(req.Status) {
		return apperror.ErrConcurrentModification.WithMessage("overtime request %s is already %s", req.ID, req.Status)
	}
	if req.Status != model.OvertimePending {
		return apperror.Validation("overtime request %s has unknown status %q", req.ID, req.Status)
	}
	return nil
}
