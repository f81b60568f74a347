package report

import (
	"testing"
	"time"

	"hr-backoffice/internal/domain"
	reporterrors "hr-backoffice/internal/report/errors"

	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func day(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func TestCriteria_DefaultWindow(t *testing.T) {
	c, err := (&MovementFilter{}).criteria(fixedNow)
	assert.NoError(t, err)

	assert.Equal(t, day("2024-02-15"), *c.from)
	assert.Equal(t, day("2024-03-16"), *c.to)
	assert.Equal(t, domain.Status(""), c.status)
	assert.Equal(t, 1, c.page)
	assert.Equal(t, 15, c.perPage)
}

func TestCriteria_PartialRange(t *testing.T) {
	c, err := (&AttendanceFilter{Common: Common{EndDate: "2024-01-31"}}).criteria(fixedNow)
	assert.NoError(t, err)
	assert.Equal(t, day("2024-01-02"), *c.from)
	assert.Equal(t, day("2024-02-01"), *c.to)

	c, err = (&AttendanceFilter{Common: Common{StartDate: "2024-03-01"}}).criteria(fixedNow)
	assert.NoError(t, err)
	assert.Equal(t, day("2024-03-01"), *c.from)
	assert.Equal(t, day("2024-03-16"), *c.to)
}

func TestCriteria_InclusiveEndDate(t *testing.T) {
	c, err := (&LeaveFilter{Common: Common{StartDate: "2024-01-10", EndDate: "2024-01-10"}}).criteria(fixedNow)
	assert.NoError(t, err)
	assert.Equal(t, day("2024-01-10"), *c.from)
	assert.Equal(t, day("2024-01-11"), *c.to)
}

func TestCriteria_AllImposesNoConstraint(t *testing.T) {
	f := &MovementFilter{
		Common:       Common{Status: "all", DepartmentID: "all", BranchID: "", EmployeeID: "all"},
		MovementType: "all",
	}
	c, err := f.criteria(fixedNow)
	assert.NoError(t, err)
	assert.Empty(t, c.status)
	assert.Empty(t, c.departmentID)
	assert.Empty(t, c.employeeID)
	assert.Empty(t, c.category)
}

func TestCriteria_Rejects(t *testing.T) {
	cases := map[string]struct {
		filter Filter
		want   error
	}{
		"bad date":            {&MovementFilter{Common: Common{StartDate: "15/03/2024"}}, reporterrors.ErrInvalidDate},
		"start after end":     {&MovementFilter{Common: Common{StartDate: "2024-03-02", EndDate: "2024-03-01"}}, reporterrors.ErrInvalidDateRange},
		"status of other set": {&MovementFilter{Common: Common{Status: "present"}}, reporterrors.ErrInvalidStatus},
		"leave cancelled":     {&LeaveFilter{Common: Common{Status: "cancelled"}}, reporterrors.ErrInvalidStatus},
		"movement type":       {&MovementFilter{MovementType: "vacation"}, reporterrors.ErrInvalidMovementType},
		"department id":       {&TransferFilter{Common: Common{DepartmentID: "sales"}}, reporterrors.ErrInvalidID},
		"gender":              {&EmployeeFilter{Gender: "unknown"}, reporterrors.ErrInvalidGender},
		"join range":          {&EmployeeFilter{JoinStartDate: "2024-02-01", JoinEndDate: "2024-01-01"}, reporterrors.ErrInvalidDateRange},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tc.filter.criteria(fixedNow)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCriteria_EmployeeRosterHasNoDefaultWindow(t *testing.T) {
	c, err := (&EmployeeFilter{Gender: "FEMALE", Search: "  ayu "}).criteria(fixedNow)
	assert.NoError(t, err)
	assert.Nil(t, c.from)
	assert.Nil(t, c.to)
	assert.Equal(t, "female", c.category)
	assert.Equal(t, "ayu", c.search)
}

func TestReset(t *testing.T) {
	f := &EmployeeFilter{
		Common:        Common{Status: "active", DepartmentID: "x", Page: 4},
		Gender:        "male",
		DesignationID: "y",
		Search:        "bob",
	}
	f.Reset(fixedNow)

	assert.Equal(t, "all", f.Status)
	assert.Equal(t, "all", f.Gender)
	assert.Empty(t, f.DepartmentID)
	assert.Empty(t, f.DesignationID)
	assert.Empty(t, f.Search)
	assert.Equal(t, "2024-02-15", f.StartDate)
	assert.Equal(t, "2024-03-15", f.EndDate)
	assert.Equal(t, 1, f.Page)

	m := &MovementFilter{MovementType: "official"}
	m.Reset(fixedNow)
	assert.Equal(t, "all", m.MovementType)

	_, err := m.criteria(fixedNow)
	assert.NoError(t, err)
}

func TestDecodeFilter(t *testing.T) {
	f, err := DecodeFilter(KindMovements, map[string][]string{
		"status":        {"approved"},
		"movement_type": {"official"},
		"page":          {"2"},
	})
	assert.NoError(t, err)

	mf, ok := f.(*MovementFilter)
	if assert.True(t, ok) {
		assert.Equal(t, "approved", mf.Status)
		assert.Equal(t, "official", mf.MovementType)
		assert.Equal(t, 2, mf.Page)
	}

	_, err = DecodeFilter("payroll", nil)
	assert.ErrorIs(t, err, reporterrors.ErrUnknownReport)

	_, err = DecodeFilter(KindLeaves, map[string][]string{"page": {"two"}})
	assert.Error(t, err)
}

func TestDefinitionsCoverEveryKind(t *testing.T) {
	for _, k := range Kinds {
		def, ok := lookup(k)
		if assert.True(t, ok, k) {
			assert.Equal(t, k, def.kind)
			assert.NotEmpty(t, def.statuses)
			assert.NotNil(t, def.newRows())
		}
	}
}
