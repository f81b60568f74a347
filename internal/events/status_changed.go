package events

import "time"

const (
	MovementLifecycleTopic = "hr.movement.lifecycle.v1"
	TransferLifecycleTopic = "hr.transfer.lifecycle.v1"
	LeaveLifecycleTopic    = "hr.leave.lifecycle.v1"

	EventMovementStatusChanged = "movement_status_changed"
	EventTransferStatusChanged = "transfer_status_changed"
	EventLeaveStatusChanged    = "leave_status_changed"
)

// StatusChangedEvent is published for every lifecycle transition of a
// movement, transfer, leave or employee.
type StatusChangedEvent struct {
	EventType     string    `json:"event_type"`
	AggregateType string    `json:"aggregate_type"`
	AggregateID   string    `json:"aggregate_id"`
	CompanyID     string    `json:"company_id"`
	EmployeeID    string    `json:"employee_id"`
	FromStatus    string    `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	ActorID       string    `json:"actor_id"`
	Remarks       string    `json:"remarks,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// LifecycleTopics are consumed by the audit trail.
var LifecycleTopics = []string{
	EmployeeLifecycleTopic,
	MovementLifecycleTopic,
	TransferLifecycleTopic,
	LeaveLifecycleTopic,
}
