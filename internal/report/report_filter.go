package report

import (
	"net/http"
	"strings"
	"time"

	"hr-backoffice/internal/domain"
	reporterrors "hr-backoffice/internal/report/errors"
	"hr-backoffice/internal/shared/apperror"
	"hr-backoffice/internal/shared/response"

	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
)

type Kind string

const (
	KindMovements  Kind = "movements"
	KindAttendance Kind = "attendance"
	KindLeaves     Kind = "leaves"
	KindTransfers  Kind = "transfers"
	KindEmployees  Kind = "employees"
)

var Kinds = []Kind{KindMovements, KindAttendance, KindLeaves, KindTransfers, KindEmployees}

const (
	dateLayout = "2006-01-02"

	// DefaultWindowDays is the rolling window applied when no date range is given.
	DefaultWindowDays = 30
)

// Common holds the keys every report understands.
type Common struct {
	StartDate    string `form:"start_date"`
	EndDate      string `form:"end_date"`
	Status       string `form:"status"`
	DepartmentID string `form:"department_id"`
	BranchID     string `form:"branch_id"`
	EmployeeID   string `form:"employee_id"`
	Page         int    `form:"page"`
	PerPage      int    `form:"per_page"`
}

type MovementFilter struct {
	Common
	MovementType string `form:"movement_type"`
}

type AttendanceFilter struct {
	Common
}

type LeaveFilter struct {
	Common
	LeaveType string `form:"leave_type"`
}

type TransferFilter struct {
	Common
}

type EmployeeFilter struct {
	Common
	Gender        string `form:"gender"`
	DesignationID string `form:"designation_id"`
	JoinStartDate string `form:"join_start_date"`
	JoinEndDate   string `form:"join_end_date"`
	Search        string `form:"search"`
}

// Filter is one of the per-report filter structs above.
type Filter interface {
	Kind() Kind
	Base() *Common
	// Reset puts every enumerated key back to "all", clears the rest and
	// restores the default date window.
	Reset(now time.Time)
	criteria(now time.Time) (criteria, error)
}

func (MovementFilter) Kind() Kind   { return KindMovements }
func (AttendanceFilter) Kind() Kind { return KindAttendance }
func (LeaveFilter) Kind() Kind      { return KindLeaves }
func (TransferFilter) Kind() Kind   { return KindTransfers }
func (EmployeeFilter) Kind() Kind   { return KindEmployees }

func (f *MovementFilter) Base() *Common   { return &f.Common }
func (f *AttendanceFilter) Base() *Common { return &f.Common }
func (f *LeaveFilter) Base() *Common      { return &f.Common }
func (f *TransferFilter) Base() *Common   { return &f.Common }
func (f *EmployeeFilter) Base() *Common   { return &f.Common }

// NewFilter returns an empty filter for the named report.
func NewFilter(kind Kind) (Filter, error) {
	switch kind {
	case KindMovements:
		return &MovementFilter{}, nil
	case KindAttendance:
		return &AttendanceFilter{}, nil
	case KindLeaves:
		return &LeaveFilter{}, nil
	case KindTransfers:
		return &TransferFilter{}, nil
	case KindEmployees:
		return &EmployeeFilter{}, nil
	}
	return nil, reporterrors.ErrUnknownReport
}

// DecodeFilter rebuilds a filter from raw query values, the same way gin binds
// a report request.
func DecodeFilter(kind Kind, query map[string][]string) (Filter, error) {
	f, err := NewFilter(kind)
	if err != nil {
		return nil, err
	}
	if err := binding.MapFormWithTag(f, query, "form"); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidInput, "invalid report filter", http.StatusBadRequest)
	}
	return f, nil
}

func (c *Common) reset(now time.Time) {
	start, end := defaultWindow(now)
	*c = Common{
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		Status:    domain.FilterAll,
		Page:      1,
		PerPage:   response.DefaultPerPage,
	}
}

func (f *MovementFilter) Reset(now time.Time) {
	f.Common.reset(now)
	f.MovementType = domain.FilterAll
}

func (f *AttendanceFilter) Reset(now time.Time) { f.Common.reset(now) }

func (f *LeaveFilter) Reset(now time.Time) {
	f.Common.reset(now)
	f.LeaveType = domain.FilterAll
}

func (f *TransferFilter) Reset(now time.Time) { f.Common.reset(now) }

func (f *EmployeeFilter) Reset(now time.Time) {
	f.Common.reset(now)
	f.Gender = domain.FilterAll
	f.DesignationID = ""
	f.JoinStartDate = ""
	f.JoinEndDate = ""
	f.Search = ""
}

// criteria is a validated filter. to bounds are exclusive.
type criteria struct {
	from, to      *time.Time
	status        domain.Status
	departmentID  string
	branchID      string
	employeeID    string
	category      string
	designationID string
	joinFrom      *time.Time
	joinTo        *time.Time
	search        string
	page, perPage int
}

func (c criteria) offset() int { return (c.page - 1) * c.perPage }

func defaultWindow(now time.Time) (time.Time, time.Time) {
	end := truncateDay(now)
	return end.AddDate(0, 0, -(DefaultWindowDays - 1)), end
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, v, time.UTC)
	if err != nil {
		return nil, reporterrors.ErrInvalidDate
	}
	return &t, nil
}

// dateRange parses an inclusive date range. With withDefault, missing bounds
// fall back to the rolling window.
func dateRange(start, end string, now time.Time, withDefault bool) (*time.Time, *time.Time, error) {
	from, err := parseDate(start)
	if err != nil {
		return nil, nil, err
	}
	to, err := parseDate(end)
	if err != nil {
		return nil, nil, err
	}

	if withDefault {
		switch {
		case from == nil && to == nil:
			s, e := defaultWindow(now)
			from, to = &s, &e
		case from == nil:
			s := to.AddDate(0, 0, -(DefaultWindowDays - 1))
			from = &s
		case to == nil:
			e := truncateDay(now)
			if e.Before(*from) {
				e = *from
			}
			to = &e
		}
	}

	if from != nil && to != nil && from.After(*to) {
		return nil, nil, reporterrors.ErrInvalidDateRange
	}
	if to != nil {
		next := to.AddDate(0, 0, 1)
		to = &next
	}
	return from, to, nil
}

func enumValue(v string, allowed []string, invalid error) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" || v == domain.FilterAll {
		return "", nil
	}
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", invalid
}

func idValue(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" || v == domain.FilterAll {
		return "", nil
	}
	if _, err := uuid.Parse(v); err != nil {
		return "", reporterrors.ErrInvalidID
	}
	return v, nil
}

func (c Common) resolve(now time.Time, statuses []domain.Status, withDefaultWindow bool) (criteria, error) {
	var out criteria
	var err error

	if out.from, out.to, err = dateRange(c.StartDate, c.EndDate, now, withDefaultWindow); err != nil {
		return criteria{}, err
	}

	status, err := enumValue(c.Status, statusStrings(statuses), reporterrors.ErrInvalidStatus)
	if err != nil {
		return criteria{}, err
	}
	out.status = domain.Status(status)

	if out.departmentID, err = idValue(c.DepartmentID); err != nil {
		return criteria{}, err
	}
	if out.branchID, err = idValue(c.BranchID); err != nil {
		return criteria{}, err
	}
	if out.employeeID, err = idValue(c.EmployeeID); err != nil {
		return criteria{}, err
	}

	out.page, out.perPage = response.NormalizePage(c.Page, c.PerPage)
	return out, nil
}

func statusStrings(statuses []domain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.String()
	}
	return out
}

func (f *MovementFilter) criteria(now time.Time) (criteria, error) {
	c, err := f.Common.resolve(now, domain.MovementStatuses, true)
	if err != nil {
		return criteria{}, err
	}
	c.category, err = enumValue(f.MovementType, movementTypes, reporterrors.ErrInvalidMovementType)
	return c, err
}

func (f *AttendanceFilter) criteria(now time.Time) (criteria, error) {
	return f.Common.resolve(now, domain.AttendanceStatuses, true)
}

func (f *LeaveFilter) criteria(now time.Time) (criteria, error) {
	c, err := f.Common.resolve(now, domain.LeaveStatuses, true)
	if err != nil {
		return criteria{}, err
	}
	c.category, err = enumValue(f.LeaveType, leaveTypes, reporterrors.ErrInvalidLeaveType)
	return c, err
}

func (f *TransferFilter) criteria(now time.Time) (criteria, error) {
	return f.Common.resolve(now, domain.TransferStatuses, true)
}

// The employee report is a roster: dates only narrow it when given.
func (f *EmployeeFilter) criteria(now time.Time) (criteria, error) {
	c, err := f.Common.resolve(now, domain.EmployeeStatuses, false)
	if err != nil {
		return criteria{}, err
	}
	if c.category, err = enumValue(f.Gender, genders, reporterrors.ErrInvalidGender); err != nil {
		return criteria{}, err
	}
	if c.designationID, err = idValue(f.DesignationID); err != nil {
		return criteria{}, err
	}
	if c.joinFrom, c.joinTo, err = dateRange(f.JoinStartDate, f.JoinEndDate, now, false); err != nil {
		return criteria{}, err
	}
	c.search = strings.TrimSpace(f.Search)
	return c, nil
}
