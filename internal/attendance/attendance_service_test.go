package attendance

import (
	"context"
	"database/sql"
	"testing"
	"time"

	attendanceerrors "hr-backoffice/internal/attendance/errors"
	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/shared/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	withTxFn                func(tx *sql.Tx) Repository
	createFn                func(ctx context.Context, a *Attendance) error
	findByIDFn              func(ctx context.Context, companyID, id string) (*Attendance, error)
	findByEmployeeAndDateFn func(ctx context.Context, companyID, employeeID string, date time.Time) (*Attendance, error)
	findAllFn               func(ctx context.Context, companyID string, filter ListFilter) ([]Attendance, int64, error)
	updateFn                func(ctx context.Context, a *Attendance) error
	belongsFn               func(ctx context.Context, companyID, employeeID string) (bool, error)
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository {
	if f.withTxFn == nil {
		return f
	}
	return f.withTxFn(tx)
}
func (f *fakeRepo) Create(ctx context.Context, a *Attendance) error { return f.createFn(ctx, a) }
func (f *fakeRepo) FindByID(ctx context.Context, companyID, id string) (*Attendance, error) {
	return f.findByIDFn(ctx, companyID, id)
}
func (f *fakeRepo) FindByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*Attendance, error) {
	return f.findByEmployeeAndDateFn(ctx, companyID, employeeID, date)
}
func (f *fakeRepo) FindAll(ctx context.Context, companyID string, filter ListFilter) ([]Attendance, int64, error) {
	return f.findAllFn(ctx, companyID, filter)
}
func (f *fakeRepo) Update(ctx context.Context, a *Attendance) error { return f.updateFn(ctx, a) }
func (f *fakeRepo) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	if f.belongsFn == nil {
		return true, nil
	}
	return f.belongsFn(ctx, companyID, employeeID)
}

func newTestService(t *testing.T, repo Repository, at time.Time) (*service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewService(db, repo, DefaultPolicy()).(*service)
	svc.now = func() time.Time { return at }
	return svc, mock
}

func employeeActor() domain.Actor {
	return domain.Actor{
		UserID:     uuid.NewString(),
		EmployeeID: uuid.NewString(),
		CompanyID:  uuid.NewString(),
		Role:       domain.RoleEmployee,
	}
}

func TestService_CheckInAndCheckOut(t *testing.T) {
	ctx := context.Background()
	actor := employeeActor()
	checkIn := time.Date(2024, 3, 4, 8, 55, 0, 0, time.UTC)

	var saved Attendance
	repo := &fakeRepo{}
	repo.createFn = func(ctx context.Context, a *Attendance) error { saved = *a; return nil }
	repo.updateFn = func(ctx context.Context, a *Attendance) error { saved = *a; return nil }
	repo.findByEmployeeAndDateFn = func(ctx context.Context, companyID, employeeID string, date time.Time) (*Attendance, error) {
		assert.Equal(t, actor.CompanyID, companyID)
		assert.Equal(t, actor.EmployeeID, employeeID)
		assert.Equal(t, "2024-03-04", date.Format(dateLayout))
		if saved.ID == uuid.Nil {
			return nil, gorm.ErrRecordNotFound
		}
		cp := saved
		return &cp, nil
	}

	svc, mock := newTestService(t, repo, checkIn)

	mock.ExpectBegin()
	mock.ExpectCommit()
	in, err := svc.CheckIn(ctx, actor, CheckInRequest{})
	assert.NoError(t, err)
	assert.Equal(t, "present", in.Status)
	assert.Equal(t, "2024-03-04", in.AttendanceDate)
	assert.Equal(t, SourceWeb, in.Source)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = svc.CheckIn(ctx, actor, CheckInRequest{})
	assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedIn)

	svc.now = func() time.Time { return checkIn.Add(9*time.Hour + 20*time.Minute) }
	mock.ExpectBegin()
	mock.ExpectCommit()
	out, err := svc.CheckOut(ctx, actor, CheckOutRequest{})
	assert.NoError(t, err)
	assert.Equal(t, 9.33, out.WorkingHours)
	assert.Equal(t, 1.33, out.OvertimeHours)
	assert.Equal(t, "present", out.Status)
	assert.NotNil(t, out.CheckOut)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = svc.CheckOut(ctx, actor, CheckOutRequest{})
	assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedOut)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_CheckInLate(t *testing.T) {
	actor := employeeActor()
	repo := &fakeRepo{
		createFn: func(ctx context.Context, a *Attendance) error { return nil },
		findByEmployeeAndDateFn: func(ctx context.Context, companyID, employeeID string, date time.Time) (*Attendance, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, mock := newTestService(t, repo, time.Date(2024, 3, 4, 9, 16, 0, 0, time.UTC))

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.CheckIn(context.Background(), actor, CheckInRequest{})

	assert.NoError(t, err)
	assert.Equal(t, "late", resp.Status)
}

func TestService_CheckInUniqueViolation(t *testing.T) {
	actor := employeeActor()
	repo := &fakeRepo{
		createFn: func(ctx context.Context, a *Attendance) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_attendance_employee_date"}
		},
		findByEmployeeAndDateFn: func(ctx context.Context, companyID, employeeID string, date time.Time) (*Attendance, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, mock := newTestService(t, repo, time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC))

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.CheckIn(context.Background(), actor, CheckInRequest{})

	assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedIn)
}

func TestService_CheckInForAnotherEmployee(t *testing.T) {
	actor := employeeActor()
	svc, _ := newTestService(t, &fakeRepo{}, time.Now())

	_, err := svc.CheckIn(context.Background(), actor, CheckInRequest{EmployeeID: uuid.NewString()})

	assert.ErrorIs(t, err, attendanceerrors.ErrActorForbidden)
}

func TestService_CheckOutHalfDay(t *testing.T) {
	actor := employeeActor()
	in := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)
	row := &Attendance{ID: uuid.New(), CheckIn: &in, Status: domain.StatusLate}

	repo := &fakeRepo{
		findByEmployeeAndDateFn: func(ctx context.Context, companyID, employeeID string, date time.Time) (*Attendance, error) {
			return row, nil
		},
		updateFn: func(ctx context.Context, a *Attendance) error { return nil },
	}
	svc, mock := newTestService(t, repo, in.Add(3*time.Hour+45*time.Minute))

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.CheckOut(context.Background(), actor, CheckOutRequest{})

	assert.NoError(t, err)
	assert.Equal(t, "half_day", resp.Status)
	assert.Equal(t, 3.75, resp.WorkingHours)
	assert.Equal(t, 0.0, resp.OvertimeHours)
}

func TestService_CheckOutWithoutCheckIn(t *testing.T) {
	repo := &fakeRepo{
		findByEmployeeAndDateFn: func(ctx context.Context, companyID, employeeID string, date time.Time) (*Attendance, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, mock := newTestService(t, repo, time.Now())

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.CheckOut(context.Background(), employeeActor(), CheckOutRequest{})

	assert.ErrorIs(t, err, attendanceerrors.ErrNotCheckedIn)
}

func TestService_RecordManual(t *testing.T) {
	admin := employeeActor()
	admin.Role = domain.RoleHR
	employeeID := uuid.NewString()

	t.Run("absent", func(t *testing.T) {
		var created Attendance
		repo := &fakeRepo{createFn: func(ctx context.Context, a *Attendance) error { created = *a; return nil }}
		svc, mock := newTestService(t, repo, time.Now())

		mock.ExpectBegin()
		mock.ExpectCommit()
		resp, err := svc.RecordManual(context.Background(), admin, ManualRecordRequest{
			EmployeeID: employeeID,
			Date:       "2024-03-05",
			Status:     "absent",
		})

		assert.NoError(t, err)
		assert.Equal(t, "absent", resp.Status)
		assert.Equal(t, SourceManual, created.Source)
		assert.Nil(t, created.CheckIn)
	})

	t.Run("duplicate day", func(t *testing.T) {
		repo := &fakeRepo{createFn: func(ctx context.Context, a *Attendance) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_attendance_employee_date"}
		}}
		svc, mock := newTestService(t, repo, time.Now())

		mock.ExpectBegin()
		mock.ExpectRollback()
		_, err := svc.RecordManual(context.Background(), admin, ManualRecordRequest{
			EmployeeID: employeeID,
			Date:       "2024-03-05",
			Status:     "leave",
		})

		assert.ErrorIs(t, err, attendanceerrors.ErrRecordExists)
	})

	t.Run("present is not manual", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeRepo{}, time.Now())

		_, err := svc.RecordManual(context.Background(), admin, ManualRecordRequest{
			EmployeeID: employeeID,
			Date:       "2024-03-05",
			Status:     "present",
		})

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidManualStatus)
	})

	t.Run("employee role", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeRepo{}, time.Now())

		_, err := svc.RecordManual(context.Background(), employeeActor(), ManualRecordRequest{
			EmployeeID: employeeID,
			Date:       "2024-03-05",
			Status:     "absent",
		})

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestService_List(t *testing.T) {
	actor := employeeActor()

	t.Run("employee sees own rows only", func(t *testing.T) {
		repo := &fakeRepo{
			findAllFn: func(ctx context.Context, companyID string, filter ListFilter) ([]Attendance, int64, error) {
				assert.Equal(t, actor.EmployeeID, filter.EmployeeID)
				assert.Equal(t, domain.StatusLate, filter.Status)
				assert.Equal(t, "2024-03-01", filter.From.Format(dateLayout))
				assert.Equal(t, 15, filter.Limit)
				return []Attendance{{ID: uuid.New(), Status: domain.StatusLate}}, 1, nil
			},
		}
		svc, _ := newTestService(t, repo, time.Now())

		items, meta, err := svc.List(context.Background(), actor, ListAttendanceQuery{
			EmployeeID: uuid.NewString(),
			Status:     "late",
			StartDate:  "2024-03-01",
		})

		assert.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, int64(1), meta.Total)
	})

	t.Run("inverted range", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeRepo{}, time.Now())

		_, _, err := svc.List(context.Background(), actor, ListAttendanceQuery{StartDate: "2024-03-10", EndDate: "2024-03-01"})

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidDateRange)
	})

	t.Run("unknown status", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeRepo{}, time.Now())

		_, _, err := svc.List(context.Background(), actor, ListAttendanceQuery{Status: "sleeping"})

		assert.Error(t, err)
	})
}

func TestService_GetByIDHidesOtherEmployees(t *testing.T) {
	row := &Attendance{ID: uuid.New(), EmployeeID: uuid.New()}
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, companyID, id string) (*Attendance, error) { return row, nil },
	}
	svc, _ := newTestService(t, repo, time.Now())

	_, err := svc.GetByID(context.Background(), employeeActor(), row.ID.String())

	assert.ErrorIs(t, err, attendanceerrors.ErrAttendanceNotFound)
}
