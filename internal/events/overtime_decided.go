package events

import "time"

const OvertimeRequestTopic = "payroll.overtime.request.v1"

const (
	EventOvertimeRequested = "overtime.requested"
	EventOvertimeApproved  = "overtime.approved"
	EventOvertimeRejected  = "overtime.rejected"
	EventOvertimeWithdrawn = "overtime.withdrawn"
)

// OvertimeEvent is published after an overtime request changes state.
type OvertimeEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id"`
	EmployeeID     string    `json:"employee_id"`
	CompanyID      string    `json:"company_id"`
	Status         string    `json:"status"`
	HoursRequested string    `json:"hours_requested"`
	WorkDate       string    `json:"work_date"`
	ActorID        string    `json:"actor_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
