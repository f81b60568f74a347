package movement

import (
	"strings"
	"time"

	"hr-backoffice/internal/domain"
	movementerrors "hr-backoffice/internal/movement/errors"
)

// transitions is the movement state machine. rejected, cancelled and
// completed have no outgoing edges.
var transitions = domain.Transitions{
	domain.StatusPending:  {domain.StatusApproved, domain.StatusRejected, domain.StatusCancelled},
	domain.StatusApproved: {domain.StatusCompleted},
}

func CanTransition(from, to domain.Status) bool {
	return transitions.Allows(from, to)
}

func IsTerminal(s domain.Status) bool {
	return transitions.Terminal(s)
}

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDatetime accepts RFC3339 and the zone-less forms sent by
// datetime-local inputs. Zone-less values are read as UTC.
func ParseDatetime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, movementerrors.ErrInvalidDatetime
}

// Duration returns to-from in whole hours, rounded up.
func Duration(from, to time.Time) int {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	return int((d + time.Hour - 1) / time.Hour)
}

type newMovement struct {
	movementType Type
	from         time.Time
	to           time.Time
	purpose      string
	destination  string
	remarks      *string
}

func validateCreate(req CreateMovementRequest) (newMovement, error) {
	t := Type(strings.ToLower(strings.TrimSpace(req.MovementType)))
	if !t.Valid() {
		return newMovement{}, movementerrors.ErrInvalidMovementType
	}

	from, err := ParseDatetime(req.FromDatetime)
	if err != nil {
		return newMovement{}, err
	}
	to, err := ParseDatetime(req.ToDatetime)
	if err != nil {
		return newMovement{}, err
	}
	if !to.After(from) {
		return newMovement{}, movementerrors.ErrInvalidTimeRange
	}

	purpose := strings.TrimSpace(req.Purpose)
	if purpose == "" {
		return newMovement{}, movementerrors.ErrPurposeRequired
	}
	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		return newMovement{}, movementerrors.ErrDestinationRequired
	}

	return newMovement{
		movementType: t,
		from:         from,
		to:           to,
		purpose:      purpose,
		destination:  destination,
		remarks:      normalizeRemarks(req.Remarks),
	}, nil
}

// normalizeRemarks trims remarks and maps blank input to nil.
func normalizeRemarks(r *string) *string {
	if r == nil {
		return nil
	}
	v := strings.TrimSpace(*r)
	if v == "" {
		return nil
	}
	return &v
}
