package attendance

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	attendanceerrors "hr-backoffice/internal/attendance/errors"
	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/shared/apperror"
	"hr-backoffice/internal/shared/connection"
	"hr-backoffice/internal/shared/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	CheckIn(ctx context.Context, actor domain.Actor, req CheckInRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, actor domain.Actor, req CheckOutRequest) (AttendanceResponse, error)
	RecordManual(ctx context.Context, actor domain.Actor, req ManualRecordRequest) (AttendanceResponse, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (AttendanceResponse, error)
	List(ctx context.Context, actor domain.Actor, q ListAttendanceQuery) ([]AttendanceResponse, response.PaginationMeta, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	policy Policy
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, policy Policy, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
		logger: l,
	}
}

// subject resolves whose attendance is recorded. Only admins may act for
// someone else.
func subject(actor domain.Actor, employeeID string) (string, error) {
	if employeeID == "" || employeeID == actor.EmployeeID {
		if _, err := uuid.Parse(actor.EmployeeID); err != nil {
			return "", apperror.ErrUnauthorized
		}
		return actor.EmployeeID, nil
	}
	if !actor.IsAdmin() {
		return "", attendanceerrors.ErrActorForbidden
	}
	if _, err := uuid.Parse(employeeID); err != nil {
		return "", attendanceerrors.ErrInvalidEmployeeID
	}
	return employeeID, nil
}

func (s *service) CheckIn(ctx context.Context, actor domain.Actor, req CheckInRequest) (AttendanceResponse, error) {
	companyID, err := uuid.Parse(actor.CompanyID)
	if err != nil {
		return AttendanceResponse{}, apperror.ErrUnauthorized
	}
	employeeID, err := subject(actor, req.EmployeeID)
	if err != nil {
		return AttendanceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := s.requireEmployee(ctx, qtx, actor.CompanyID, employeeID); err != nil {
		return AttendanceResponse{}, err
	}

	now := s.now()
	today := startOfDay(now)

	_, err = qtx.FindByEmployeeAndDate(ctx, actor.CompanyID, employeeID, today)
	if err == nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedIn
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return AttendanceResponse{}, err
	}

	row := &Attendance{
		ID:             uuid.New(),
		CompanyID:      companyID,
		EmployeeID:     uuid.MustParse(employeeID),
		AttendanceDate: today,
		CheckIn:        &now,
		Status:         s.policy.CheckInStatus(now),
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Source:         SourceWeb,
		Notes:          normalizeNotes(req.Notes),
	}

	if err := qtx.Create(ctx, row); err != nil {
		if _, dup := connection.UniqueViolation(err); dup {
			return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedIn
		}
		s.logger.Error("check-in persist failed", zap.String("employee_id", employeeID), zap.Error(err))
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("check-in success",
		zap.String("employee_id", employeeID),
		zap.String("status", row.Status.String()),
	)
	return mapToResponse(*row), nil
}

func (s *service) CheckOut(ctx context.Context, actor domain.Actor, req CheckOutRequest) (AttendanceResponse, error) {
	employeeID, err := subject(actor, req.EmployeeID)
	if err != nil {
		return AttendanceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.now()

	row, err := qtx.FindByEmployeeAndDate(ctx, actor.CompanyID, employeeID, startOfDay(now))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrNotCheckedIn
		}
		return AttendanceResponse{}, err
	}
	if row.CheckIn == nil {
		return AttendanceResponse{}, attendanceerrors.ErrNotCheckedIn
	}
	if row.CheckOut != nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedOut
	}

	row.CheckOut = &now
	row.WorkingHours, row.OvertimeHours = s.policy.Hours(*row.CheckIn, now)
	row.Status = s.policy.CheckOutStatus(row.Status, *row.CheckIn, now)
	if req.Latitude != nil {
		row.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		row.Longitude = req.Longitude
	}
	if notes := normalizeNotes(req.Notes); notes != nil {
		row.Notes = notes
	}

	if err := qtx.Update(ctx, row); err != nil {
		s.logger.Error("check-out persist failed", zap.String("attendance_id", row.ID.String()), zap.Error(err))
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("check-out success",
		zap.String("employee_id", employeeID),
		zap.Float64("working_hours", row.WorkingHours),
		zap.Float64("overtime_hours", row.OvertimeHours),
	)
	return mapToResponse(*row), nil
}

func (s *service) RecordManual(ctx context.Context, actor domain.Actor, req ManualRecordRequest) (AttendanceResponse, error) {
	if !actor.IsAdmin() {
		return AttendanceResponse{}, apperror.ErrForbidden
	}
	companyID, err := uuid.Parse(actor.CompanyID)
	if err != nil {
		return AttendanceResponse{}, apperror.ErrUnauthorized
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}
	status := domain.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if status != domain.StatusAbsent && status != domain.StatusLeave {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidManualStatus
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidDate
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := s.requireEmployee(ctx, qtx, actor.CompanyID, req.EmployeeID); err != nil {
		return AttendanceResponse{}, err
	}

	row := &Attendance{
		ID:             uuid.New(),
		CompanyID:      companyID,
		EmployeeID:     employeeID,
		AttendanceDate: date,
		Status:         status,
		Source:         SourceManual,
		Notes:          normalizeNotes(req.Notes),
	}

	if err := qtx.Create(ctx, row); err != nil {
		if _, dup := connection.UniqueViolation(err); dup {
			return AttendanceResponse{}, attendanceerrors.ErrRecordExists
		}
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("manual attendance recorded",
		zap.String("employee_id", req.EmployeeID),
		zap.String("date", req.Date),
		zap.String("status", status.String()),
	)
	return mapToResponse(*row), nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id string) (AttendanceResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidAttendanceID
	}

	row, err := s.repo.FindByID(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrAttendanceNotFound
		}
		return AttendanceResponse{}, err
	}
	if !actor.IsAdmin() && !actor.Is(row.EmployeeID.String()) {
		return AttendanceResponse{}, attendanceerrors.ErrAttendanceNotFound
	}
	return mapToResponse(*row), nil
}

func (s *service) List(ctx context.Context, actor domain.Actor, q ListAttendanceQuery) ([]AttendanceResponse, response.PaginationMeta, error) {
	page, perPage := response.NormalizePage(q.Page, q.PerPage)

	filter := ListFilter{
		EmployeeID: q.EmployeeID,
		Offset:     (page - 1) * perPage,
		Limit:      perPage,
	}
	if !actor.IsAdmin() {
		filter.EmployeeID = actor.EmployeeID
	}
	if q.Status != "" && q.Status != domain.FilterAll {
		status := domain.Status(q.Status)
		if !status.In(domain.AttendanceStatuses) {
			return nil, response.PaginationMeta{}, apperror.InvalidField("Status")
		}
		filter.Status = status
	}

	var err error
	if filter.From, err = parseOptionalDate(q.StartDate); err != nil {
		return nil, response.PaginationMeta{}, err
	}
	if filter.To, err = parseOptionalDate(q.EndDate); err != nil {
		return nil, response.PaginationMeta{}, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, response.PaginationMeta{}, attendanceerrors.ErrInvalidDateRange
	}

	rows, total, err := s.repo.FindAll(ctx, actor.CompanyID, filter)
	if err != nil {
		s.logger.Error("list attendance failed", zap.String("company_id", actor.CompanyID), zap.Error(err))
		return nil, response.PaginationMeta{}, err
	}
	return mapToListResponse(rows), response.NewPaginationMeta(total, page, perPage), nil
}

func (s *service) requireEmployee(ctx context.Context, repo Repository, companyID, employeeID string) error {
	ok, err := repo.EmployeeBelongsToCompany(ctx, companyID, employeeID)
	if err != nil {
		return err
	}
	if !ok {
		return attendanceerrors.ErrEmployeeNotFound
	}
	return nil
}

func parseOptionalDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, attendanceerrors.ErrInvalidDate
	}
	return &t, nil
}

func normalizeNotes(n *string) *string {
	if n == nil {
		return nil
	}
	v := strings.TrimSpace(*n)
	if v == "" {
		return nil
	}
	return &v
}
