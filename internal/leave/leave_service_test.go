package leave_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/events"
	"hr-backoffice/internal/leave"
	leaveerrors "hr-backoffice/internal/leave/errors"
	"hr-backoffice/internal/messaging/kafka"
	kafkamock "hr-backoffice/internal/messaging/kafka/mock"
	"hr-backoffice/internal/shared/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

var (
	companyID  = uuid.MustParse("00000000-0000-0000-0000-0000000000c1")
	employee42 = uuid.MustParse("00000000-0000-0000-0000-000000000042")
	approver7  = uuid.MustParse("00000000-0000-0000-0000-000000000007")
	staff9     = uuid.MustParse("00000000-0000-0000-0000-000000000009")
)

func actorFor(id uuid.UUID, role string) domain.Actor {
	return domain.Actor{UserID: "u-" + id.String(), EmployeeID: id.String(), CompanyID: companyID.String(), Role: role}
}

// memRepository applies TransitionStatus and UpdatePending as compare-and-set
// on the pending status.
type memRepository struct {
	mu        sync.Mutex
	items     map[string]leave.Leave
	employees map[string]bool
}

func newMemRepository() *memRepository {
	return &memRepository{
		items:     map[string]leave.Leave{},
		employees: map[string]bool{employee42.String(): true, approver7.String(): true, staff9.String(): true},
	}
}

func (r *memRepository) WithTx(tx *sql.Tx) leave.Repository { return r }

func (r *memRepository) Create(ctx context.Context, l *leave.Leave) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[l.ID.String()] = *l
	return nil
}

func (r *memRepository) FindAll(ctx context.Context, company string, filter leave.ListFilter) ([]leave.Leave, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.Leave
	for _, l := range r.items {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.EmployeeID != "" && l.EmployeeID.String() != filter.EmployeeID {
			continue
		}
		if filter.LeaveType != "" && l.LeaveType != filter.LeaveType {
			continue
		}
		out = append(out, l)
	}
	return out, int64(len(out)), nil
}

func (r *memRepository) FindByIDAndCompany(ctx context.Context, company, id string) (*leave.Leave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.items[id]
	if !ok || l.CompanyID.String() != company {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r *memRepository) UpdatePending(ctx context.Context, l *leave.Leave) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[l.ID.String()]
	if !ok || cur.Status != domain.StatusPending {
		return false, nil
	}
	r.items[l.ID.String()] = *l
	return true, nil
}

func (r *memRepository) TransitionStatus(ctx context.Context, company, id string, from domain.Status, change leave.StatusChange) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.items[id]
	if !ok || l.Status != from {
		return false, nil
	}
	l.Status = change.To
	l.ApprovedBy = change.ApprovedBy
	l.RejectionReason = change.RejectionReason
	l.DecidedAt = change.DecidedAt
	r.items[id] = l
	return true, nil
}

func (r *memRepository) DeletePending(ctx context.Context, company, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.items[id]
	if !ok || l.Status != domain.StatusPending {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func (r *memRepository) EmployeeBelongsToCompany(ctx context.Context, company, employeeID string) (bool, error) {
	return r.employees[employeeID], nil
}

func (r *memRepository) HasOverlappingPeriod(ctx context.Context, company, employeeID string, start, end time.Time, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, l := range r.items {
		if id == excludeID || l.EmployeeID.String() != employeeID || l.Status == domain.StatusRejected {
			continue
		}
		if !(l.EndDate.Before(start) || l.StartDate.After(end)) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepository) status(id string) domain.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id].Status
}

type fakeAuthorizer struct {
	approvers map[string]bool
	err       error
}

func (a *fakeAuthorizer) Enforce(req domain.EnforceRequest) (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	return req.Resource == "leave" && req.Action == "approve" && a.approvers[req.EmployeeID], nil
}

type leaveServiceDeps struct {
	sqlMock sqlmock.Sqlmock
	repo    *memRepository
	authz   *fakeAuthorizer
	service leave.Service
}

func setupLeaveServiceTest(t *testing.T) *leaveServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := newMemRepository()
	authz := &fakeAuthorizer{approvers: map[string]bool{approver7.String(): true}}

	return &leaveServiceDeps{
		sqlMock: sqlMock,
		repo:    repo,
		authz:   authz,
		service: leave.NewService(db, repo, authz),
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func annualRequest(start, end string) leave.CreateLeaveRequest {
	return leave.CreateLeaveRequest{
		EmployeeID: employee42.String(),
		LeaveType:  "annual",
		StartDate:  start,
		EndDate:    end,
		Reason:     "Family trip",
	}
}

func createPending(t *testing.T, deps *leaveServiceDeps, start, end string) leave.LeaveResponse {
	t.Helper()
	expectTx(t, deps.sqlMock, true)
	resp, err := deps.service.Create(context.Background(), actorFor(employee42, domain.RoleEmployee), annualRequest(start, end))
	assert.NoError(t, err)
	return resp
}

func TestLeaveService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("derives total days inclusive", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		resp := createPending(t, deps, "2024-02-27", "2024-03-01")

		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, 4, resp.TotalDays)
		assert.Equal(t, "annual", resp.LeaveType)
	})

	t.Run("single day", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		resp := createPending(t, deps, "2024-05-02", "2024-05-02")

		assert.Equal(t, 1, resp.TotalDays)
	})

	t.Run("overlap conflict", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		createPending(t, deps, "2024-05-01", "2024-05-05")

		expectTx(t, deps.sqlMock, false)
		_, err := deps.service.Create(ctx, actorFor(employee42, domain.RoleEmployee), annualRequest("2024-05-05", "2024-05-07"))

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveOverlap)
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	})

	t.Run("rejected leave does not block", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		first := createPending(t, deps, "2024-05-01", "2024-05-05")

		expectTx(t, deps.sqlMock, true)
		_, err := deps.service.Reject(ctx, actorFor(approver7, domain.RoleEmployee), first.ID, leave.RejectLeaveRequest{RejectionReason: "Peak season"})
		assert.NoError(t, err)

		createPending(t, deps, "2024-05-03", "2024-05-04")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("end before start", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)

		_, err := deps.service.Create(ctx, actorFor(employee42, domain.RoleEmployee), annualRequest("2024-05-05", "2024-05-01"))

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
	})

	t.Run("unknown type", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		req := annualRequest("2024-05-01", "2024-05-02")
		req.LeaveType = "sabbatical"

		_, err := deps.service.Create(ctx, actorFor(employee42, domain.RoleEmployee), req)

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidLeaveType)
	})

	t.Run("for another employee", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)

		_, err := deps.service.Create(ctx, actorFor(staff9, domain.RoleEmployee), annualRequest("2024-05-01", "2024-05-02"))

		assert.ErrorIs(t, err, leaveerrors.ErrActorForbidden)
	})
}

func TestLeaveService_ApproveAndReject(t *testing.T) {
	ctx := context.Background()

	t.Run("approve", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		created := createPending(t, deps, "2024-06-03", "2024-06-04")

		expectTx(t, deps.sqlMock, true)
		approved, err := deps.service.Approve(ctx, actorFor(approver7, domain.RoleEmployee), created.ID)

		assert.NoError(t, err)
		assert.Equal(t, "approved", approved.Status)
		assert.Equal(t, approver7.String(), *approved.ApprovedBy)
		assert.NotNil(t, approved.DecidedAt)

		expectTx(t, deps.sqlMock, false)
		_, err = deps.service.Reject(ctx, actorFor(approver7, domain.RoleEmployee), created.ID, leave.RejectLeaveRequest{RejectionReason: "late"})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidState)
		assert.Equal(t, domain.StatusApproved, deps.repo.status(created.ID))
	})

	t.Run("reject requires reason", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		created := createPending(t, deps, "2024-06-03", "2024-06-04")

		_, err := deps.service.Reject(ctx, actorFor(approver7, domain.RoleEmployee), created.ID, leave.RejectLeaveRequest{RejectionReason: "  "})

		assert.ErrorIs(t, err, leaveerrors.ErrRejectionReasonRequired)
		assert.Equal(t, domain.StatusPending, deps.repo.status(created.ID))
	})

	t.Run("employee without capability", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		created := createPending(t, deps, "2024-06-03", "2024-06-04")

		expectTx(t, deps.sqlMock, false)
		_, err := deps.service.Approve(ctx, actorFor(staff9, domain.RoleEmployee), created.ID)

		assert.ErrorIs(t, err, leaveerrors.ErrApprovalForbidden)
	})

	t.Run("hr approves without capability lookup", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		created := createPending(t, deps, "2024-06-03", "2024-06-04")

		expectTx(t, deps.sqlMock, true)
		approved, err := deps.service.Approve(ctx, actorFor(staff9, domain.RoleHR), created.ID)

		assert.NoError(t, err)
		assert.Equal(t, "approved", approved.Status)
	})
}

func TestLeaveService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	deps := setupLeaveServiceTest(t)
	owner := actorFor(employee42, domain.RoleEmployee)

	created := createPending(t, deps, "2024-07-01", "2024-07-02")

	expectTx(t, deps.sqlMock, true)
	updated, err := deps.service.Update(ctx, owner, created.ID, leave.UpdateLeaveRequest{
		LeaveType: "sick",
		StartDate: "2024-07-01",
		EndDate:   "2024-07-05",
	})
	assert.NoError(t, err)
	assert.Equal(t, 5, updated.TotalDays)
	assert.Equal(t, "sick", updated.LeaveType)

	err = deps.service.Delete(ctx, actorFor(staff9, domain.RoleEmployee), created.ID)
	assert.ErrorIs(t, err, leaveerrors.ErrActorForbidden)

	err = deps.service.Delete(ctx, owner, created.ID)
	assert.NoError(t, err)

	_, err = deps.service.GetByID(ctx, owner, created.ID)
	assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestLeaveService_ListScopesEmployees(t *testing.T) {
	ctx := context.Background()
	deps := setupLeaveServiceTest(t)
	createPending(t, deps, "2024-08-01", "2024-08-02")

	items, meta, err := deps.service.List(ctx, actorFor(staff9, domain.RoleEmployee), leave.ListLeavesQuery{})
	assert.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(0), meta.Total)

	items, meta, err = deps.service.List(ctx, actorFor(approver7, domain.RoleEmployee), leave.ListLeavesQuery{Status: "pending", LeaveType: "annual"})
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, meta.TotalPages)

	_, _, err = deps.service.List(ctx, actorFor(approver7, domain.RoleEmployee), leave.ListLeavesQuery{Status: "cancelled"})
	assert.Error(t, err)

	deps.authz.err = errors.New("policy store unavailable")
	_, _, err = deps.service.List(ctx, actorFor(staff9, domain.RoleEmployee), leave.ListLeavesQuery{})
	assert.EqualError(t, err, "policy store unavailable")
}

func TestLeaveService_OutboxEvents(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	outbox := kafkamock.NewMockOutboxRepository(ctrl)
	svc := leave.NewServiceWithOutbox(db, newMemRepository(), &fakeAuthorizer{approvers: map[string]bool{approver7.String(): true}}, outbox)

	var published []kafka.OutboxEvent
	outbox.EXPECT().WithTx(gomock.Any()).Return(outbox).Times(2)
	outbox.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, e kafka.OutboxEvent) error {
		published = append(published, e)
		return nil
	}).Times(2)

	expectTx(t, sqlMock, true)
	created, err := svc.Create(ctx, actorFor(employee42, domain.RoleEmployee), annualRequest("2024-09-02", "2024-09-03"))
	assert.NoError(t, err)

	expectTx(t, sqlMock, true)
	_, err = svc.Reject(ctx, actorFor(approver7, domain.RoleEmployee), created.ID, leave.RejectLeaveRequest{RejectionReason: "Audit week"})
	assert.NoError(t, err)

	assert.Len(t, published, 2)
	for _, e := range published {
		assert.Equal(t, events.LeaveLifecycleTopic, e.Topic)
		assert.Equal(t, events.EventLeaveStatusChanged, e.EventType)
		assert.Equal(t, created.ID, e.AggregateID)
	}

	var last events.StatusChangedEvent
	assert.NoError(t, json.Unmarshal(published[1].Payload, &last))
	assert.Equal(t, "pending", last.FromStatus)
	assert.Equal(t, "rejected", last.ToStatus)
	assert.Equal(t, "Audit week", last.Remarks)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestTotalDays(t *testing.T) {
	start := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, leave.TotalDays(start, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, leave.TotalDays(start, start))
}
