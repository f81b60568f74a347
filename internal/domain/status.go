package domain

// Status is shared by every lifecycle entity and by the report summaries
// that count them.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"

	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half_day"
	StatusLeave   Status = "leave"

	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusOnLeave    Status = "on_leave"
	StatusTerminated Status = "terminated"
)

// FilterAll is the filter value that imposes no constraint.
const FilterAll = "all"

var (
	MovementStatuses   = []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusCompleted}
	LeaveStatuses      = []Status{StatusPending, StatusApproved, StatusRejected}
	TransferStatuses   = []Status{StatusPending, StatusApproved, StatusRejected, StatusCompleted}
	AttendanceStatuses = []Status{StatusPresent, StatusAbsent, StatusLate, StatusHalfDay, StatusLeave}
	EmployeeStatuses   = []Status{StatusActive, StatusInactive, StatusOnLeave, StatusTerminated}
)

func (s Status) String() string { return string(s) }

func (s Status) In(set []Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// Transitions maps a state to the states reachable from it in one step.
type Transitions map[Status][]Status

func (t Transitions) Allows(from, to Status) bool {
	return to.In(t[from])
}

// Terminal reports whether no transition leaves s.
func (t Transitions) Terminal(s Status) bool {
	return len(t[s]) == 0
}
