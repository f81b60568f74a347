package movement_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/middleware"
	"hr-backoffice/internal/movement"
	movementerrors "hr-backoffice/internal/movement/errors"
	"hr-backoffice/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool                     `json:"ok"`
	Data  json.RawMessage          `json:"data"`
	Meta  *response.PaginationMeta `json:"meta"`
	Error *apiError                `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	assert.NoError(t, json.Unmarshal(body, &env))
	return env
}

type fakeMovementService struct {
	createFn        func(ctx context.Context, actor domain.Actor, req movement.CreateMovementRequest) (movement.MovementResponse, error)
	getByIDFn       func(ctx context.Context, actor domain.Actor, id string) (movement.MovementResponse, error)
	listFn          func(ctx context.Context, actor domain.Actor, q movement.ListMovementsQuery) ([]movement.MovementResponse, response.PaginationMeta, error)
	approveFn       func(ctx context.Context, actor domain.Actor, id string, req movement.DecisionRequest) (movement.MovementResponse, error)
	rejectFn        func(ctx context.Context, actor domain.Actor, id string, req movement.DecisionRequest) (movement.MovementResponse, error)
	cancelFn        func(ctx context.Context, actor domain.Actor, id string) (movement.MovementResponse, error)
	completeFn      func(ctx context.Context, actor domain.Actor, id string) (movement.MovementResponse, error)
	updateRemarksFn func(ctx context.Context, actor domain.Actor, id string, req movement.UpdateRemarksRequest) (movement.MovementResponse, error)
	deleteFn        func(ctx context.Context, actor domain.Actor, id string) error
}

func (f *fakeMovementService) Create(ctx context.Context, actor domain.Actor, req movement.CreateMovementRequest) (movement.MovementResponse, error) {
	return f.createFn(ctx, actor, req)
}
func (f *fakeMovementService) GetByID(ctx context.Context, actor domain.Actor, id string) (movement.MovementResponse, error) {
	return f.getByIDFn(ctx, actor, id)
}
func (f *fakeMovementService) List(ctx context.Context, actor domain.Actor, q movement.ListMovementsQuery) ([]movement.MovementResponse, response.PaginationMeta, error) {
	return f.listFn(ctx, actor, q)
}
func (f *fakeMovementService) Approve(ctx context.Context, actor domain.Actor, id string, req movement.DecisionRequest) (movement.MovementResponse, error) {
	return f.approveFn(ctx, actor, id, req)
}
func (f *fakeMovementService) Reject(ctx context.Context, actor domain.Actor, id string, req movement.DecisionRequest) (movement.MovementResponse, error) {
	return f.rejectFn(ctx, actor, id, req)
}
func (f *fakeMovementService) Cancel(ctx context.Context, actor domain.Actor, id string) (movement.MovementResponse, error) {
	return f.cancelFn(ctx, actor, id)
}
func (f *fakeMovementService) Complete(ctx context.Context, actor domain.Actor, id string) (movement.MovementResponse, error) {
	return f.completeFn(ctx, actor, id)
}
func (f *fakeMovementService) UpdateRemarks(ctx context.Context, actor domain.Actor, id string, req movement.UpdateRemarksRequest) (movement.MovementResponse, error) {
	return f.updateRemarksFn(ctx, actor, id, req)
}
func (f *fakeMovementService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	return f.deleteFn(ctx, actor, id)
}

func newMovementRouter(svc movement.Service, actor domain.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := movement.NewHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, actor.UserID)
		c.Set(middleware.ContextEmployeeID, actor.EmployeeID)
		c.Set(middleware.ContextCompanyID, actor.CompanyID)
		c.Set(middleware.ContextRole, actor.Role)
		c.Next()
	})
	r.GET("/movements", h.GetAll)
	r.GET("/movements/:id", h.GetByID)
	r.POST("/movements", h.Create)
	r.POST("/movements/:id/approve", h.Approve)
	r.POST("/movements/:id/reject", h.Reject)
	r.POST("/movements/:id/complete", h.Complete)
	r.PATCH("/movements/:id/remarks", h.UpdateRemarks)
	r.DELETE("/movements/:id", h.Delete)
	return r
}

func TestMovementHandler_Create(t *testing.T) {
	actor := actorFor(employee42, domain.RoleEmployee)

	t.Run("success", func(t *testing.T) {
		svc := &fakeMovementService{
			createFn: func(ctx context.Context, got domain.Actor, req movement.CreateMovementRequest) (movement.MovementResponse, error) {
				assert.Equal(t, actor.EmployeeID, got.EmployeeID)
				assert.Equal(t, actor.CompanyID, got.CompanyID)
				assert.Equal(t, "official", req.MovementType)
				return movement.MovementResponse{ID: uuid.NewString(), Status: "pending", DurationHours: 8}, nil
			},
		}
		body := `{"employee_id":"` + employee42.String() + `","movement_type":"official","from_datetime":"2024-01-10T09:00","to_datetime":"2024-01-10T17:00","purpose":"Client meeting","destination":"Downtown office"}`

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/movements", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		newMovementRouter(svc, actor).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var data movement.MovementResponse
		assert.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "pending", data.Status)
		assert.Equal(t, 8, data.DurationHours)
	})

	t.Run("missing required field", func(t *testing.T) {
		svc := &fakeMovementService{}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/movements", strings.NewReader(`{"movement_type":"official"}`))
		req.Header.Set("Content-Type", "application/json")
		newMovementRouter(svc, actor).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	t.Run("invalid time range", func(t *testing.T) {
		svc := &fakeMovementService{
			createFn: func(ctx context.Context, actor domain.Actor, req movement.CreateMovementRequest) (movement.MovementResponse, error) {
				return movement.MovementResponse{}, movementerrors.ErrInvalidTimeRange
			},
		}
		body := `{"employee_id":"` + employee42.String() + `","movement_type":"official","from_datetime":"2024-01-10T09:00","to_datetime":"2024-01-10T09:00"}`

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/movements", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		newMovementRouter(svc, actor).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_INPUT", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
	})
}

func TestMovementHandler_Decisions(t *testing.T) {
	actor := actorFor(approver7, domain.RoleEmployee)
	id := uuid.NewString()

	t.Run("approve without body", func(t *testing.T) {
		svc := &fakeMovementService{
			approveFn: func(ctx context.Context, got domain.Actor, gotID string, req movement.DecisionRequest) (movement.MovementResponse, error) {
				assert.Equal(t, id, gotID)
				assert.Nil(t, req.Remarks)
				return movement.MovementResponse{ID: id, Status: "approved"}, nil
			},
		}

		w := httptest.NewRecorder()
		newMovementRouter(svc, actor).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/movements/"+id+"/approve", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decodeEnvelope(t, w.Body.Bytes()).Ok)
	})

	t.Run("approve twice is a conflict", func(t *testing.T) {
		svc := &fakeMovementService{
			approveFn: func(ctx context.Context, actor domain.Actor, id string, req movement.DecisionRequest) (movement.MovementResponse, error) {
				return movement.MovementResponse{}, movementerrors.ErrInvalidState
			},
		}

		w := httptest.NewRecorder()
		newMovementRouter(svc, actor).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/movements/"+id+"/approve", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "INVALID_STATE", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
	})

	t.Run("reject passes remarks", func(t *testing.T) {
		svc := &fakeMovementService{
			rejectFn: func(ctx context.Context, actor domain.Actor, id string, req movement.DecisionRequest) (movement.MovementResponse, error) {
				if assert.NotNil(t, req.Remarks) {
					assert.Equal(t, "Budget not approved", *req.Remarks)
				}
				return movement.MovementResponse{ID: id, Status: "rejected", Remarks: req.Remarks}, nil
			},
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/movements/"+id+"/reject", strings.NewReader(`{"remarks":"Budget not approved"}`))
		req.Header.Set("Content-Type", "application/json")
		newMovementRouter(svc, actor).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("reject without remarks", func(t *testing.T) {
		svc := &fakeMovementService{
			rejectFn: func(ctx context.Context, actor domain.Actor, id string, req movement.DecisionRequest) (movement.MovementResponse, error) {
				return movement.MovementResponse{}, movementerrors.ErrRemarksRequired
			},
		}

		w := httptest.NewRecorder()
		newMovementRouter(svc, actor).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/movements/"+id+"/reject", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_INPUT", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
	})

	t.Run("complete forbidden", func(t *testing.T) {
		svc := &fakeMovementService{
			completeFn: func(ctx context.Context, actor domain.Actor, id string) (movement.MovementResponse, error) {
				return movement.MovementResponse{}, movementerrors.ErrActorForbidden
			},
		}

		w := httptest.NewRecorder()
		newMovementRouter(svc, actor).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/movements/"+id+"/complete", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
	})
}

func TestMovementHandler_GetAll(t *testing.T) {
	actor := actorFor(employee42, domain.RoleEmployee)
	svc := &fakeMovementService{
		listFn: func(ctx context.Context, actor domain.Actor, q movement.ListMovementsQuery) ([]movement.MovementResponse, response.PaginationMeta, error) {
			assert.Equal(t, "pending", q.Status)
			assert.Equal(t, 2, q.Page)
			return []movement.MovementResponse{{ID: uuid.NewString(), Status: "pending"}}, response.NewPaginationMeta(16, 2, 15), nil
		},
	}

	w := httptest.NewRecorder()
	newMovementRouter(svc, actor).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/movements?status=pending&page=2", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w.Body.Bytes())
	if assert.NotNil(t, env.Meta) {
		assert.Equal(t, int64(16), env.Meta.Total)
		assert.Equal(t, 2, env.Meta.TotalPages)
	}
}

func TestMovementHandler_GetByIDNotFound(t *testing.T) {
	svc := &fakeMovementService{
		getByIDFn: func(ctx context.Context, actor domain.Actor, id string) (movement.MovementResponse, error) {
			return movement.MovementResponse{}, movementerrors.ErrMovementNotFound
		},
	}

	w := httptest.NewRecorder()
	newMovementRouter(svc, actorFor(employee42, domain.RoleEmployee)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/movements/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
}
