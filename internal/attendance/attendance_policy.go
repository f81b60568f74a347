package attendance

import (
	"math"
	"time"

	"hr-backoffice/internal/domain"
)

const halfDayThreshold = 4 * time.Hour

// Policy holds the company working-day rules used to derive status and hours.
type Policy struct {
	// WorkStart is the offset from midnight after which a check-in is late.
	WorkStart time.Duration
	// WorkHours is the standard day; time worked above it is overtime.
	WorkHours time.Duration
}

func DefaultPolicy() Policy {
	return Policy{WorkStart: 9*time.Hour + 15*time.Minute, WorkHours: 8 * time.Hour}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CheckInStatus is late strictly after WorkStart, present otherwise.
func (p Policy) CheckInStatus(at time.Time) domain.Status {
	if at.Sub(startOfDay(at)) > p.WorkStart {
		return domain.StatusLate
	}
	return domain.StatusPresent
}

// Hours derives worked and overtime hours, both rounded to 2 decimals.
func (p Policy) Hours(in, out time.Time) (working, overtime float64) {
	worked := out.Sub(in)
	if worked < 0 {
		worked = 0
	}
	working = round2(worked.Hours())
	if extra := worked - p.WorkHours; extra > 0 {
		overtime = round2(extra.Hours())
	}
	return working, overtime
}

// CheckOutStatus downgrades the check-in status to half_day for short days.
func (p Policy) CheckOutStatus(current domain.Status, in, out time.Time) domain.Status {
	if out.Sub(in) < halfDayThreshold {
		return domain.StatusHalfDay
	}
	return current
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
