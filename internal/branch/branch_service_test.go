package branch_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"hr-backoffice/internal/branch"
	brancherrors "hr-backoffice/internal/branch/errors"
	"hr-backoffice/internal/shared/cache"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepository struct {
	createFn  func(ctx context.Context, b *branch.Branch) error
	findAllFn func(ctx context.Context, companyID string) ([]branch.Branch, error)
	findFn    func(ctx context.Context, companyID, id string) (*branch.Branch, error)
	updateFn  func(ctx context.Context, b *branch.Branch) error
	deleteFn  func(ctx context.Context, companyID, id string) error
	inUseFn   func(ctx context.Context, companyID, id string) (bool, error)
}

func (f *fakeRepository) WithTx(tx *sql.Tx) branch.Repository { return f }
func (f *fakeRepository) Create(ctx context.Context, b *branch.Branch) error {
	return f.createFn(ctx, b)
}
func (f *fakeRepository) FindAllByCompany(ctx context.Context, companyID string) ([]branch.Branch, error) {
	return f.findAllFn(ctx, companyID)
}
func (f *fakeRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*branch.Branch, error) {
	return f.findFn(ctx, companyID, id)
}
func (f *fakeRepository) Update(ctx context.Context, b *branch.Branch) error {
	return f.updateFn(ctx, b)
}
func (f *fakeRepository) Delete(ctx context.Context, companyID, id string) error {
	return f.deleteFn(ctx, companyID, id)
}
func (f *fakeRepository) InUse(ctx context.Context, companyID, id string) (bool, error) {
	return f.inUseFn(ctx, companyID, id)
}

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	redisMock redismock.ClientMock
	repo      *fakeRepository
	service   branch.Service
}

func setupBranchServiceTest(t *testing.T) *serviceDeps {
	t.Helper()
	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	rdb, redisMock := redismock.NewClientMock()
	repo := &fakeRepository{}

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		redisMock: redisMock,
		repo:      repo,
		service:   branch.NewService(db, repo, rdb),
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

func TestBranchService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.NewString()

	t.Run("success normalizes code and invalidates cache", func(t *testing.T) {
		deps := setupBranchServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.redisMock.ExpectDel(branch.GetBranchAllKey(companyID)).SetVal(1)
		deps.repo.createFn = func(ctx context.Context, b *branch.Branch) error {
			assert.Equal(t, companyID, b.CompanyID.String())
			assert.Equal(t, "JKT-01", b.Code)
			return nil
		}

		resp, err := deps.service.Create(ctx, companyID, branch.CreateBranchRequest{Name: "Jakarta", Code: " jkt-01 "})

		assert.NoError(t, err)
		assert.Equal(t, "JKT-01", resp.Code)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("duplicate code -> conflict", func(t *testing.T) {
		deps := setupBranchServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.createFn = func(ctx context.Context, b *branch.Branch) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_branch_code"}
		}

		_, err := deps.service.Create(ctx, companyID, branch.CreateBranchRequest{Name: "Jakarta", Code: "JKT-01"})

		assert.ErrorIs(t, err, brancherrors.ErrBranchCodeExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestBranchService_GetAll(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.NewString()
	cacheKey := branch.GetBranchAllKey(companyID)

	t.Run("cache hit", func(t *testing.T) {
		deps := setupBranchServiceTest(t)
		defer deps.db.Close()

		cached, _ := json.Marshal([]branch.BranchResponse{{ID: "b1", Name: "HQ", Code: "HQ"}})
		deps.redisMock.ExpectGet(cacheKey).SetVal(string(cached))
		deps.repo.findAllFn = func(ctx context.Context, companyID string) ([]branch.Branch, error) {
			t.Fatal("repository must not be hit on a cache hit")
			return nil, nil
		}

		items, err := deps.service.GetAll(ctx, companyID)

		assert.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, "HQ", items[0].Code)
	})

	t.Run("cache miss loads from repository", func(t *testing.T) {
		deps := setupBranchServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		deps.redisMock.ExpectGet(cacheKey).RedisNil()
		raw, _ := json.Marshal([]branch.BranchResponse{{ID: id.String(), Name: "HQ", Code: "HQ"}})
		deps.redisMock.ExpectSet(cacheKey, raw, cache.DefaultTTL).SetVal("OK")
		deps.repo.findAllFn = func(ctx context.Context, got string) ([]branch.Branch, error) {
			assert.Equal(t, companyID, got)
			return []branch.Branch{{ID: id, Name: "HQ", Code: "HQ"}}, nil
		}

		items, err := deps.service.GetAll(ctx, companyID)

		assert.NoError(t, err)
		assert.Equal(t, id.String(), items[0].ID)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})
}

func TestBranchService_GetByID(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.NewString()

	deps := setupBranchServiceTest(t)
	defer deps.db.Close()

	_, err := deps.service.GetByID(ctx, companyID, "not-a-uuid")
	assert.ErrorIs(t, err, brancherrors.ErrInvalidBranchID)

	deps.repo.findFn = func(ctx context.Context, companyID, id string) (*branch.Branch, error) {
		return nil, gorm.ErrRecordNotFound
	}
	_, err = deps.service.GetByID(ctx, companyID, uuid.NewString())
	assert.ErrorIs(t, err, brancherrors.ErrBranchNotFound)
}

func TestBranchService_Delete(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.NewString()
	id := uuid.New()

	found := func(ctx context.Context, companyID, got string) (*branch.Branch, error) {
		return &branch.Branch{ID: id}, nil
	}

	t.Run("in use -> conflict", func(t *testing.T) {
		deps := setupBranchServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findFn = found
		deps.repo.inUseFn = func(ctx context.Context, companyID, id string) (bool, error) { return true, nil }
		deps.repo.deleteFn = func(ctx context.Context, companyID, id string) error {
			t.Fatal("delete must not run while the branch is referenced")
			return nil
		}

		err := deps.service.Delete(ctx, companyID, id.String())

		assert.ErrorIs(t, err, brancherrors.ErrBranchInUse)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		deps := setupBranchServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.redisMock.ExpectDel(branch.GetBranchAllKey(companyID)).SetVal(1)
		deps.repo.findFn = found
		deps.repo.inUseFn = func(ctx context.Context, companyID, id string) (bool, error) { return false, nil }
		deps.repo.deleteFn = func(ctx context.Context, got, gotID string) error {
			assert.Equal(t, id.String(), gotID)
			return nil
		}

		assert.NoError(t, deps.service.Delete(ctx, companyID, id.String()))
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("repository error rolls back", func(t *testing.T) {
		deps := setupBranchServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findFn = found
		deps.repo.inUseFn = func(ctx context.Context, companyID, id string) (bool, error) {
			return false, errors.New("db down")
		}

		assert.EqualError(t, deps.service.Delete(ctx, companyID, id.String()), "db down")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
