package report

import (
	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/shared/connection"
	"hr-backoffice/internal/tenant"

	"gorm.io/gorm"
)

var (
	movementTypes = []string{"official", "personal"}
	leaveTypes    = []string{"annual", "sick", "unpaid"}
	genders       = []string{"male", "female"}
)

type metric struct {
	name string
	expr string
}

// definition describes where a report's rows live and which columns each
// filter key narrows.
type definition struct {
	kind    Kind
	title   string
	table   string
	alias   string
	joins   []string
	columns string

	dateColumn        string
	departmentColumns []string
	branchColumns     []string
	employeeColumn    string
	categoryColumn    string
	categories        []string
	statuses          []domain.Status
	metrics           []metric
	headers           []string

	extra   func(c criteria) []func(*gorm.DB) *gorm.DB
	newRows func() rowSet
}

const (
	joinEmployee   = "JOIN employees AS e ON e.id = r.employee_id"
	joinDepartment = "LEFT JOIN departments AS d ON d.id = e.department_id"

	durationHoursExpr = "CEIL(EXTRACT(EPOCH FROM (r.to_datetime - r.from_datetime)) / 3600)::int"
)

var definitions = map[Kind]definition{
	KindMovements: {
		kind:  KindMovements,
		title: "Movement Report",
		table: "movements AS r",
		alias: "r",
		joins: []string{joinEmployee, joinDepartment},
		columns: "r.id, r.employee_id, e.employee_number, e.full_name AS employee_name, " +
			"COALESCE(d.name, '') AS department_name, r.movement_type, r.from_datetime, r.to_datetime, " +
			durationHoursExpr + " AS duration_hours, r.purpose, r.destination, r.status, r.created_at",
		dateColumn:        "r.from_datetime",
		departmentColumns: []string{"e.department_id"},
		branchColumns:     []string{"e.branch_id"},
		employeeColumn:    "r.employee_id",
		categoryColumn:    "r.movement_type",
		categories:        movementTypes,
		statuses:          domain.MovementStatuses,
		metrics:           []metric{{name: "total_duration_hours", expr: durationHoursExpr}},
		headers:           []string{"No.", "Employee", "Type", "From", "To", "Hours", "Destination", "Status"},
		newRows:           func() rowSet { return &rows[MovementRecord]{} },
	},
	KindAttendance: {
		kind:  KindAttendance,
		title: "Attendance Report",
		table: "attendances AS r",
		alias: "r",
		joins: []string{joinEmployee, joinDepartment},
		columns: "r.id, r.employee_id, e.employee_number, e.full_name AS employee_name, " +
			"COALESCE(d.name, '') AS department_name, r.attendance_date, r.check_in, r.check_out, " +
			"r.working_hours, r.overtime_hours, r.status, r.created_at",
		dateColumn:        "r.attendance_date",
		departmentColumns: []string{"e.department_id"},
		branchColumns:     []string{"e.branch_id"},
		employeeColumn:    "r.employee_id",
		statuses:          domain.AttendanceStatuses,
		metrics: []metric{
			{name: "total_working_hours", expr: "r.working_hours"},
			{name: "total_overtime_hours", expr: "r.overtime_hours"},
		},
		headers: []string{"No.", "Employee", "Date", "In", "Out", "Worked", "Overtime", "Status"},
		newRows: func() rowSet { return &rows[AttendanceRecord]{} },
	},
	KindLeaves: {
		kind:  KindLeaves,
		title: "Leave Report",
		table: "leaves AS r",
		alias: "r",
		joins: []string{joinEmployee, joinDepartment},
		columns: "r.id, r.employee_id, e.employee_number, e.full_name AS employee_name, " +
			"COALESCE(d.name, '') AS department_name, r.leave_type, r.start_date, r.end_date, " +
			"r.total_days, r.status, r.created_at",
		dateColumn:        "r.start_date",
		departmentColumns: []string{"e.department_id"},
		branchColumns:     []string{"e.branch_id"},
		employeeColumn:    "r.employee_id",
		categoryColumn:    "r.leave_type",
		categories:        leaveTypes,
		statuses:          domain.LeaveStatuses,
		metrics:           []metric{{name: "total_days", expr: "r.total_days"}},
		headers:           []string{"No.", "Employee", "Type", "Start", "End", "Days", "Status"},
		newRows:           func() rowSet { return &rows[LeaveRecord]{} },
	},
	KindTransfers: {
		kind:  KindTransfers,
		title: "Transfer Report",
		table: "transfers AS r",
		alias: "r",
		joins: []string{
			joinEmployee,
			"LEFT JOIN branches AS fb ON fb.id = r.from_branch_id",
			"LEFT JOIN branches AS tb ON tb.id = r.to_branch_id",
			"LEFT JOIN departments AS fd ON fd.id = r.from_department_id",
			"LEFT JOIN departments AS td ON td.id = r.to_department_id",
		},
		columns: "r.id, r.employee_id, e.employee_number, e.full_name AS employee_name, " +
			"COALESCE(fb.name, '') AS from_branch_name, COALESCE(tb.name, '') AS to_branch_name, " +
			"COALESCE(fd.name, '') AS from_department_name, COALESCE(td.name, '') AS to_department_name, " +
			"r.effective_date, r.status, r.created_at",
		dateColumn:        "r.effective_date",
		departmentColumns: []string{"r.from_department_id", "r.to_department_id"},
		branchColumns:     []string{"r.from_branch_id", "r.to_branch_id"},
		employeeColumn:    "r.employee_id",
		statuses:          domain.TransferStatuses,
		headers:           []string{"No.", "Employee", "From", "To", "Effective", "Status"},
		newRows:           func() rowSet { return &rows[TransferRecord]{} },
	},
	KindEmployees: {
		kind:  KindEmployees,
		title: "Employee Report",
		table: "employees AS e",
		alias: "e",
		joins: []string{
			joinDepartment,
			"LEFT JOIN branches AS b ON b.id = e.branch_id",
			"LEFT JOIN designations AS g ON g.id = e.designation_id",
		},
		columns: "e.id, e.employee_number, e.full_name, e.email, e.gender, " +
			"COALESCE(d.name, '') AS department_name, COALESCE(b.name, '') AS branch_name, " +
			"COALESCE(g.name, '') AS designation_name, e.status, e.join_date, e.created_at",
		dateColumn:        "e.created_at",
		departmentColumns: []string{"e.department_id"},
		branchColumns:     []string{"e.branch_id"},
		employeeColumn:    "e.id",
		categoryColumn:    "e.gender",
		categories:        genders,
		statuses:          domain.EmployeeStatuses,
		headers:           []string{"No.", "Name", "Email", "Department", "Designation", "Status", "Joined"},
		extra:             employeeScopes,
		newRows:           func() rowSet { return &rows[EmployeeRecord]{} },
	},
}

func lookup(kind Kind) (definition, bool) {
	def, ok := definitions[kind]
	return def, ok
}

// scopes turns validated criteria into query scopes. Page, counts and sums
// all run with the same list so they see the same rows.
func (def definition) scopes(companyID string, c criteria) []func(*gorm.DB) *gorm.DB {
	scopes := []func(*gorm.DB) *gorm.DB{
		tenant.ScopeAlias(def.alias, companyID),
		where(def.alias + ".deleted_at IS NULL"),
	}

	if c.from != nil {
		scopes = append(scopes, where(def.dateColumn+" >= ?", *c.from))
	}
	if c.to != nil {
		scopes = append(scopes, where(def.dateColumn+" < ?", *c.to))
	}
	if c.status != "" {
		scopes = append(scopes, where(def.alias+".status = ?", c.status.String()))
	}
	if c.departmentID != "" {
		scopes = append(scopes, anyOf(def.departmentColumns, c.departmentID))
	}
	if c.branchID != "" {
		scopes = append(scopes, anyOf(def.branchColumns, c.branchID))
	}
	if c.employeeID != "" {
		scopes = append(scopes, where(def.employeeColumn+" = ?", c.employeeID))
	}
	if c.category != "" && def.categoryColumn != "" {
		scopes = append(scopes, where(def.categoryColumn+" = ?", c.category))
	}
	if def.extra != nil {
		scopes = append(scopes, def.extra(c)...)
	}
	return scopes
}

func employeeScopes(c criteria) []func(*gorm.DB) *gorm.DB {
	var scopes []func(*gorm.DB) *gorm.DB
	if c.designationID != "" {
		scopes = append(scopes, where("e.designation_id = ?", c.designationID))
	}
	if c.joinFrom != nil {
		scopes = append(scopes, where("e.join_date >= ?", *c.joinFrom))
	}
	if c.joinTo != nil {
		scopes = append(scopes, where("e.join_date < ?", *c.joinTo))
	}
	if c.search != "" {
		like := connection.ContainsPattern(c.search)
		scopes = append(scopes, where("(e.full_name ILIKE ? OR e.employee_number ILIKE ? OR e.email ILIKE ?)", like, like, like))
	}
	return scopes
}

func where(query string, args ...any) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}

func anyOf(columns []string, value string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(columns) == 1 {
			return db.Where(columns[0]+" = ?", value)
		}
		cond := db.Session(&gorm.Session{NewDB: true}).Where(columns[0]+" = ?", value)
		for _, col := range columns[1:] {
			cond = cond.Or(col+" = ?", value)
		}
		return db.Where(cond)
	}
}
