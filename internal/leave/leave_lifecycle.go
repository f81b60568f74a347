package leave

import (
	"strings"
	"time"

	"hr-backoffice/internal/domain"
	leaveerrors "hr-backoffice/internal/leave/errors"
)

const dateLayout = "2006-01-02"

var transitions = domain.Transitions{
	domain.StatusPending: {domain.StatusApproved, domain.StatusRejected},
}

func CanTransition(from, to domain.Status) bool {
	return transitions.Allows(from, to)
}

// TotalDays counts calendar days in the inclusive range.
func TotalDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

type period struct {
	leaveType Type
	start     time.Time
	end       time.Time
	reason    string
}

func validatePeriod(leaveType, start, end, reason string) (period, error) {
	t := Type(strings.ToLower(strings.TrimSpace(leaveType)))
	if !t.Valid() {
		return period{}, leaveerrors.ErrInvalidLeaveType
	}

	startDate, err := time.Parse(dateLayout, strings.TrimSpace(start))
	if err != nil {
		return period{}, leaveerrors.ErrInvalidDateFormat
	}
	endDate, err := time.Parse(dateLayout, strings.TrimSpace(end))
	if err != nil {
		return period{}, leaveerrors.ErrInvalidDateFormat
	}
	if endDate.Before(startDate) {
		return period{}, leaveerrors.ErrInvalidDateRange
	}

	return period{
		leaveType: t,
		start:     startDate,
		end:       endDate,
		reason:    strings.TrimSpace(reason),
	}, nil
}
