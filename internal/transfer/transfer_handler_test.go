package transfer_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/middleware"
	"hr-backoffice/internal/shared/response"
	"hr-backoffice/internal/transfer"
	transfererrors "hr-backoffice/internal/transfer/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeTransferService struct {
	createFn   func(ctx context.Context, actor domain.Actor, req transfer.CreateTransferRequest) (transfer.TransferResponse, error)
	getByIDFn  func(ctx context.Context, actor domain.Actor, id string) (transfer.TransferResponse, error)
	listFn     func(ctx context.Context, actor domain.Actor, q transfer.ListTransfersQuery) ([]transfer.TransferResponse, response.PaginationMeta, error)
	approveFn  func(ctx context.Context, actor domain.Actor, id string, req transfer.DecisionRequest) (transfer.TransferResponse, error)
	rejectFn   func(ctx context.Context, actor domain.Actor, id string, req transfer.DecisionRequest) (transfer.TransferResponse, error)
	completeFn func(ctx context.Context, actor domain.Actor, id string) (transfer.TransferResponse, error)
	deleteFn   func(ctx context.Context, actor domain.Actor, id string) error
}

func (f *fakeTransferService) Create(ctx context.Context, actor domain.Actor, req transfer.CreateTransferRequest) (transfer.TransferResponse, error) {
	return f.createFn(ctx, actor, req)
}
func (f *fakeTransferService) GetByID(ctx context.Context, actor domain.Actor, id string) (transfer.TransferResponse, error) {
	return f.getByIDFn(ctx, actor, id)
}
func (f *fakeTransferService) List(ctx context.Context, actor domain.Actor, q transfer.ListTransfersQuery) ([]transfer.TransferResponse, response.PaginationMeta, error) {
	return f.listFn(ctx, actor, q)
}
func (f *fakeTransferService) Approve(ctx context.Context, actor domain.Actor, id string, req transfer.DecisionRequest) (transfer.TransferResponse, error) {
	return f.approveFn(ctx, actor, id, req)
}
func (f *fakeTransferService) Reject(ctx context.Context, actor domain.Actor, id string, req transfer.DecisionRequest) (transfer.TransferResponse, error) {
	return f.rejectFn(ctx, actor, id, req)
}
func (f *fakeTransferService) Complete(ctx context.Context, actor domain.Actor, id string) (transfer.TransferResponse, error) {
	return f.completeFn(ctx, actor, id)
}
func (f *fakeTransferService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	return f.deleteFn(ctx, actor, id)
}

func newTransferRouter(svc transfer.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := transfer.NewHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextCompanyID, "company-1")
		c.Set(middleware.ContextEmployeeID, "emp-1")
		c.Set(middleware.ContextRole, domain.RoleHR)
		c.Next()
	})
	r.GET("/transfers", h.GetAll)
	r.GET("/transfers/:id", h.GetByID)
	r.POST("/transfers", h.Create)
	r.POST("/transfers/:id/approve", h.Approve)
	r.POST("/transfers/:id/reject", h.Reject)
	r.POST("/transfers/:id/complete", h.Complete)
	r.DELETE("/transfers/:id", h.Delete)
	return r
}

func TestTransferHandler_Create(t *testing.T) {
	svc := &fakeTransferService{
		createFn: func(ctx context.Context, actor domain.Actor, req transfer.CreateTransferRequest) (transfer.TransferResponse, error) {
			assert.Equal(t, domain.RoleHR, actor.Role)
			assert.Equal(t, "2024-04-01", req.EffectiveDate)
			return transfer.TransferResponse{ID: "tr-1", Status: "pending"}, nil
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transfers",
		strings.NewReader(`{"employee_id":"00000000-0000-0000-0000-000000000042","to_branch_id":"00000000-0000-0000-0000-0000000000a2","effective_date":"2024-04-01"}`))
	req.Header.Set("Content-Type", "application/json")
	newTransferRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
}

func TestTransferHandler_CreateValidation(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transfers", strings.NewReader(`{"employee_id":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	newTransferRouter(&fakeTransferService{}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_INPUT")
}

func TestTransferHandler_SameDestination(t *testing.T) {
	svc := &fakeTransferService{
		createFn: func(ctx context.Context, actor domain.Actor, req transfer.CreateTransferRequest) (transfer.TransferResponse, error) {
			return transfer.TransferResponse{}, transfererrors.ErrSameDestination
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transfers",
		strings.NewReader(`{"employee_id":"00000000-0000-0000-0000-000000000042","to_branch_id":"00000000-0000-0000-0000-0000000000a1","effective_date":"2024-04-01"}`))
	req.Header.Set("Content-Type", "application/json")
	newTransferRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "destination must differ")
}

func TestTransferHandler_Complete(t *testing.T) {
	svc := &fakeTransferService{
		completeFn: func(ctx context.Context, actor domain.Actor, id string) (transfer.TransferResponse, error) {
			if id == "early" {
				return transfer.TransferResponse{}, transfererrors.ErrNotYetEffective
			}
			return transfer.TransferResponse{ID: id, Status: "completed"}, nil
		},
	}
	r := newTransferRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/transfers/tr-1/complete", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/transfers/early/complete", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATE")
}

func TestTransferHandler_RejectWithoutBody(t *testing.T) {
	svc := &fakeTransferService{
		rejectFn: func(ctx context.Context, actor domain.Actor, id string, req transfer.DecisionRequest) (transfer.TransferResponse, error) {
			assert.Nil(t, req.Remarks)
			return transfer.TransferResponse{}, transfererrors.ErrRemarksRequired
		},
	}

	w := httptest.NewRecorder()
	newTransferRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/transfers/tr-1/reject", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransferHandler_List(t *testing.T) {
	svc := &fakeTransferService{
		listFn: func(ctx context.Context, actor domain.Actor, q transfer.ListTransfersQuery) ([]transfer.TransferResponse, response.PaginationMeta, error) {
			assert.Equal(t, "pending", q.Status)
			return []transfer.TransferResponse{{ID: "tr-1"}}, response.NewPaginationMeta(1, 1, 15), nil
		},
	}

	w := httptest.NewRecorder()
	newTransferRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transfers?status=pending", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}
