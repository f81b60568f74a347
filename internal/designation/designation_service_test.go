package designation_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"hr-backoffice/internal/designation"
	designationerrors "hr-backoffice/internal/designation/errors"
	designationMock "hr-backoffice/internal/designation/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service designation.Service
	repo    *designationMock.MockRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, _ := sqlmock.New()
	repo := designationMock.NewMockRepository(ctrl)

	// nil redis client: cache disabled
	svc := designation.NewService(db, repo, nil)

	return &serviceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
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

func TestDesignationService_Create(t *testing.T) {
	deps := setupServiceTest(t)
	defer deps.db.Close()

	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		req := designation.CreateDesignationRequest{Name: "  Software Engineer ", Description: "builds things"}

		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().
			WithTx(gomock.Any()).
			Return(deps.repo)

		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, d *designation.Designation) error {
				assert.Equal(t, "Software Engineer", d.Name)
				assert.Equal(t, companyID, d.CompanyID.String())
				return nil
			})

		resp, err := deps.service.Create(ctx, companyID, req)

		assert.NoError(t, err)
		assert.Equal(t, "Software Engineer", resp.Name)
		assert.NotEmpty(t, resp.ID)
	})

	t.Run("duplicate name -> conflict", func(t *testing.T) {
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().
			WithTx(gomock.Any()).
			Return(deps.repo)

		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_designation_name"})

		_, err := deps.service.Create(ctx, companyID, designation.CreateDesignationRequest{Name: "Manager"})

		assert.ErrorIs(t, err, designationerrors.ErrDesignationExists)
	})

	t.Run("invalid company", func(t *testing.T) {
		_, err := deps.service.Create(ctx, "nope", designation.CreateDesignationRequest{Name: "Manager"})
		assert.Error(t, err)
	})
}

func TestDesignationService_GetByID(t *testing.T) {
	deps := setupServiceTest(t)
	defer deps.db.Close()

	ctx := context.Background()
	companyID := uuid.New().String()
	targetID := uuid.New()

	t.Run("success", func(t *testing.T) {
		deps.repo.EXPECT().
			FindByIDAndCompany(ctx, companyID, targetID.String()).
			Return(&designation.Designation{ID: targetID, Name: "Analyst"}, nil).
			Times(1)

		resp, err := deps.service.GetByID(ctx, companyID, targetID.String())

		assert.NoError(t, err)
		assert.Equal(t, targetID.String(), resp.ID)
		assert.Equal(t, "Analyst", resp.Name)
	})

	t.Run("not found", func(t *testing.T) {
		deps.repo.EXPECT().
			FindByIDAndCompany(ctx, companyID, targetID.String()).
			Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetByID(ctx, companyID, targetID.String())

		assert.ErrorIs(t, err, designationerrors.ErrDesignationNotFound)
	})
}

func TestDesignationService_GetAll_NoCache(t *testing.T) {
	deps := setupServiceTest(t)
	defer deps.db.Close()

	ctx := context.Background()
	companyID := uuid.New().String()

	deps.repo.EXPECT().
		FindAllByCompany(ctx, companyID).
		Return([]designation.Designation{{ID: uuid.New(), Name: "A"}, {ID: uuid.New(), Name: "B"}}, nil)

	items, err := deps.service.GetAll(ctx, companyID)

	assert.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestDesignationService_Update(t *testing.T) {
	deps := setupServiceTest(t)
	defer deps.db.Close()

	ctx := context.Background()
	companyID := uuid.New().String()
	id := uuid.New()

	expectTx(t, deps.sqlMock, true)

	deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
	deps.repo.EXPECT().
		FindByIDAndCompany(ctx, companyID, id.String()).
		Return(&designation.Designation{ID: id, Name: "Old"}, nil)
	deps.repo.EXPECT().
		Update(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, d *designation.Designation) error {
			assert.Equal(t, "New", d.Name)
			return nil
		})

	resp, err := deps.service.Update(ctx, companyID, id.String(), designation.UpdateDesignationRequest{Name: "New"})

	assert.NoError(t, err)
	assert.Equal(t, "New", resp.Name)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestDesignationService_Delete(t *testing.T) {
	deps := setupServiceTest(t)
	defer deps.db.Close()

	ctx := context.Background()
	companyID := uuid.New().String()
	id := uuid.New().String()

	t.Run("assigned -> conflict", func(t *testing.T) {
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().CountEmployees(ctx, companyID, id).Return(int64(3), nil)

		err := deps.service.Delete(ctx, companyID, id)

		assert.ErrorIs(t, err, designationerrors.ErrDesignationInUse)
	})

	t.Run("success", func(t *testing.T) {
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().CountEmployees(ctx, companyID, id).Return(int64(0), nil)
		deps.repo.EXPECT().Delete(ctx, companyID, id).Return(nil)

		assert.NoError(t, deps.service.Delete(ctx, companyID, id))
	})

	t.Run("repo error -> rollback", func(t *testing.T) {
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().CountEmployees(ctx, companyID, id).Return(int64(0), nil)
		deps.repo.EXPECT().Delete(ctx, companyID, id).Return(errors.New("db error"))

		assert.Error(t, deps.service.Delete(ctx, companyID, id))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
