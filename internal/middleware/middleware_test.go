package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return s
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"user_id":     "user-1",
		"employee_id": "emp-1",
		"company_id":  "company-1",
		"role":        "HR",
		"exp":         time.Now().Add(time.Hour).Unix(),
	}
}

type fakeEnforcer struct {
	allowed bool
	err     error
	got     domain.EnforceRequest
}

func (f *fakeEnforcer) Enforce(req domain.EnforceRequest) (bool, error) {
	f.got = req
	return f.allowed, f.err
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", handlers...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	var seen domain.Actor
	var ctxActor domain.Actor
	r := newRouter(AuthMiddleware(testSecret), func(c *gin.Context) {
		seen = CurrentActor(c)
		ctxActor, _ = contextutil.GetActor(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims()))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		want := domain.Actor{UserID: "user-1", EmployeeID: "emp-1", CompanyID: "company-1", Role: "HR"}
		assert.Equal(t, want, seen)
		assert.Equal(t, want, ctxActor)
	})

	t.Run("cookie token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, validClaims())})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := validClaims()
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, claims))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
	})

	t.Run("missing employee claim", func(t *testing.T) {
		claims := validClaims()
		delete(claims, "employee_id")
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, claims))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
	})
}

func withActor(actor domain.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserID, actor.UserID)
		c.Set(ContextEmployeeID, actor.EmployeeID)
		c.Set(ContextCompanyID, actor.CompanyID)
		c.Set(ContextRole, actor.Role)
		c.Next()
	}
}

func TestRBACAuthorize(t *testing.T) {
	actor := domain.Actor{UserID: "u", EmployeeID: "emp-1", CompanyID: "company-1"}
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	t.Run("allowed", func(t *testing.T) {
		enf := &fakeEnforcer{allowed: true}
		w := httptest.NewRecorder()
		newRouter(withActor(actor), RBACAuthorize(enf, "movement", "approve"), ok).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, actor.EnforceRequest("movement", "approve"), enf.got)
	})

	t.Run("denied", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(withActor(actor), RBACAuthorize(&fakeEnforcer{}, "movement", "approve"), ok).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "movement:approve")
	})

	t.Run("enforcer error", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(withActor(actor), RBACAuthorize(&fakeEnforcer{err: errors.New("boom")}, "movement", "read"), ok).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "boom")
	})

	t.Run("no actor", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(RBACAuthorize(&fakeEnforcer{allowed: true}, "movement", "read"), ok).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRoleMiddleware(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	w := httptest.NewRecorder()
	newRouter(withActor(domain.Actor{Role: "hr"}), RoleMiddleware("HR", "ADMIN"), ok).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	newRouter(withActor(domain.Actor{Role: "EMPLOYEE"}), RoleMiddleware("HR"), ok).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimitByIP(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	r := newRouter(RateLimitByIP(0.0001, 1), ok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRequestIDAndContextLogger(t *testing.T) {
	var rid string
	r := newRouter(RequestID(), func(c *gin.Context) {
		rid = contextutil.GetRequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "rid-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "rid-1", rid)
	assert.Equal(t, "rid-1", w.Header().Get(HeaderRequestID))
}

func TestIdempotency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, mock := redismock.NewClientMock()

	calls := 0
	r := gin.New()
	r.POST("/movements", withActor(domain.Actor{UserID: "u-1"}), Idempotency(rdb), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"id": "m-1"})
	})

	cacheKey := "idemp:/movements:u-1:key-1"

	t.Run("first request stores response", func(t *testing.T) {
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "locked", idempotencyLockTTL).SetVal(true)
		mock.CustomMatch(func(expected, actual []interface{}) error { return nil }).
			ExpectSet(cacheKey, nil, idempotencyTTL).SetVal("OK")
		mock.ExpectDel(cacheKey + ":lock").SetVal(1)

		req := httptest.NewRequest(http.MethodPost, "/movements", nil)
		req.Header.Set(HeaderIdempotencyKey, "key-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replay returns cached body", func(t *testing.T) {
		mock.ExpectGet(cacheKey).SetVal(`{"id":"m-1"}`)

		req := httptest.NewRequest(http.MethodPost, "/movements", nil)
		req.Header.Set(HeaderIdempotencyKey, "key-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"m-1"}`, w.Body.String())
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("in flight duplicate", func(t *testing.T) {
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "locked", idempotencyLockTTL).SetVal(false)

		req := httptest.NewRequest(http.MethodPost, "/movements", nil)
		req.Header.Set(HeaderIdempotencyKey, "key-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
