package branch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hr-backoffice/internal/branch"
	brancherrors "hr-backoffice/internal/branch/errors"
	"hr-backoffice/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeBranchService struct {
	createFn  func(ctx context.Context, companyID string, req branch.CreateBranchRequest) (branch.BranchResponse, error)
	getAllFn  func(ctx context.Context, companyID string) ([]branch.BranchResponse, error)
	getByIDFn func(ctx context.Context, companyID, id string) (branch.BranchResponse, error)
	updateFn  func(ctx context.Context, companyID, id string, req branch.UpdateBranchRequest) (branch.BranchResponse, error)
	deleteFn  func(ctx context.Context, companyID, id string) error
}

func (f *fakeBranchService) Create(ctx context.Context, companyID string, req branch.CreateBranchRequest) (branch.BranchResponse, error) {
	return f.createFn(ctx, companyID, req)
}
func (f *fakeBranchService) GetAll(ctx context.Context, companyID string) ([]branch.BranchResponse, error) {
	return f.getAllFn(ctx, companyID)
}
func (f *fakeBranchService) GetByID(ctx context.Context, companyID, id string) (branch.BranchResponse, error) {
	return f.getByIDFn(ctx, companyID, id)
}
func (f *fakeBranchService) Update(ctx context.Context, companyID, id string, req branch.UpdateBranchRequest) (branch.BranchResponse, error) {
	return f.updateFn(ctx, companyID, id, req)
}
func (f *fakeBranchService) Delete(ctx context.Context, companyID, id string) error {
	return f.deleteFn(ctx, companyID, id)
}

func newBranchRouter(svc branch.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := branch.NewHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextCompanyID, "company-1")
		c.Next()
	})
	r.GET("/branches", h.GetAll)
	r.POST("/branches", h.Create)
	r.DELETE("/branches/:id", h.Delete)
	return r
}

func TestBranchHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeBranchService{
			createFn: func(ctx context.Context, companyID string, req branch.CreateBranchRequest) (branch.BranchResponse, error) {
				assert.Equal(t, "company-1", companyID)
				return branch.BranchResponse{ID: "b1", Name: req.Name, Code: "HQ"}, nil
			},
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/branches", strings.NewReader(`{"name":"Head Office","code":"hq"}`))
		req.Header.Set("Content-Type", "application/json")
		newBranchRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("missing code", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/branches", strings.NewReader(`{"name":"Head Office"}`))
		req.Header.Set("Content-Type", "application/json")
		newBranchRouter(&fakeBranchService{}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBranchHandler_DeleteInUse(t *testing.T) {
	svc := &fakeBranchService{
		deleteFn: func(ctx context.Context, companyID, id string) error {
			return brancherrors.ErrBranchInUse
		},
	}

	w := httptest.NewRecorder()
	newBranchRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/branches/b1", nil))

	assert.Equal(t, http.StatusConflict, w.Code)
	var body struct {
		Ok    bool `json:"ok"`
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Ok)
	assert.Equal(t, "CONFLICT", body.Error.Code)
}
