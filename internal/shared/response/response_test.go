package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewPaginationMeta(t *testing.T) {
	assert.Equal(t, PaginationMeta{Page: 1, PerPage: 15, Total: 31, TotalPages: 3}, NewPaginationMeta(31, 1, 15))
	assert.Equal(t, 0, NewPaginationMeta(0, 1, 15).TotalPages)
	assert.Equal(t, 0, NewPaginationMeta(10, 1, 0).TotalPages)
}

func TestNormalizePage(t *testing.T) {
	page, perPage := NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPerPage, perPage)

	page, perPage = NormalizePage(3, 500)
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPerPage, perPage)
}

func TestSuccessWithSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	meta := NewPaginationMeta(0, 1, 15)
	SuccessWithSummary(c, http.StatusOK, []string{}, &meta, map[string]int{"total": 0})

	var body map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	m := body["meta"].(map[string]any)
	assert.Equal(t, float64(0), m["total"])
	assert.Equal(t, float64(15), m["per_page"])
	assert.NotNil(t, body["summary"])
}
