package report_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/events"
	"hr-backoffice/internal/report"
	reporterrors "hr-backoffice/internal/report/errors"
	"hr-backoffice/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type apiEnvelope struct {
	Ok      bool                     `json:"ok"`
	Data    json.RawMessage          `json:"data"`
	Meta    *response.PaginationMeta `json:"meta"`
	Summary *report.Summary          `json:"summary"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type fakeReportService struct {
	reportFn        func(ctx context.Context, actor domain.Actor, f report.Filter) (report.Result, error)
	summarizeFn     func(ctx context.Context, actor domain.Actor, f report.Filter) (report.Summary, error)
	exportFn        func(ctx context.Context, actor domain.Actor, f report.Filter) (report.ExportFile, error)
	requestExportFn func(ctx context.Context, actor domain.Actor, kind report.Kind, query map[string][]string) (report.ExportTicket, error)
}

func (f *fakeReportService) Search(ctx context.Context, actor domain.Actor, filter report.Filter) (report.Page, error) {
	result, err := f.reportFn(ctx, actor, filter)
	return result.Page, err
}
func (f *fakeReportService) Summarize(ctx context.Context, actor domain.Actor, filter report.Filter) (report.Summary, error) {
	return f.summarizeFn(ctx, actor, filter)
}
func (f *fakeReportService) Report(ctx context.Context, actor domain.Actor, filter report.Filter) (report.Result, error) {
	return f.reportFn(ctx, actor, filter)
}
func (f *fakeReportService) Export(ctx context.Context, actor domain.Actor, filter report.Filter) (report.ExportFile, error) {
	return f.exportFn(ctx, actor, filter)
}
func (f *fakeReportService) RequestExport(ctx context.Context, actor domain.Actor, kind report.Kind, query map[string][]string) (report.ExportTicket, error) {
	return f.requestExportFn(ctx, actor, kind, query)
}
func (f *fakeReportService) ExportToFile(ctx context.Context, event events.ReportExportRequestedEvent) (string, error) {
	return "", nil
}

func newReportRouter(svc report.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := report.NewHandler(svc)

	r := gin.New()
	r.GET("/reports/:report", h.Report)
	r.GET("/reports/:report/summary", h.Summary)
	r.GET("/reports/:report/export", h.Export)
	r.POST("/reports/:report/export", h.RequestExport)
	return r
}

func TestReportHandler_Report(t *testing.T) {
	svc := &fakeReportService{
		reportFn: func(ctx context.Context, actor domain.Actor, f report.Filter) (report.Result, error) {
			mf, ok := f.(*report.MovementFilter)
			assert.True(t, ok)
			assert.Equal(t, "official", mf.MovementType)
			assert.Equal(t, "2024-01-01", mf.StartDate)
			return report.Result{
				Page: report.Page{
					Records: []report.Record{report.MovementRecord{ID: "m-1", Status: "approved"}},
					Meta:    response.NewPaginationMeta(1, 1, 15),
				},
				Summary: report.Summary{Total: 1, Statuses: []report.Bucket{{Key: "approved", Count: 1, Percentage: 100}}},
			}, nil
		},
	}

	w := httptest.NewRecorder()
	newReportRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/movements?movement_type=official&start_date=2024-01-01", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var env apiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Ok)
	assert.Equal(t, int64(1), env.Meta.Total)
	assert.Equal(t, 100, env.Summary.Statuses[0].Percentage)

	var records []report.MovementRecord
	assert.NoError(t, json.Unmarshal(env.Data, &records))
	assert.Equal(t, "m-1", records[0].ID)
}

func TestReportHandler_UnknownReport(t *testing.T) {
	w := httptest.NewRecorder()
	newReportRouter(&fakeReportService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/payroll", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportHandler_InvalidFilter(t *testing.T) {
	svc := &fakeReportService{
		reportFn: func(ctx context.Context, actor domain.Actor, f report.Filter) (report.Result, error) {
			return report.Result{}, reporterrors.ErrInvalidDateRange
		},
	}

	w := httptest.NewRecorder()
	newReportRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/leaves?start_date=2024-02-01&end_date=2024-01-01", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var env apiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
}

func TestReportHandler_Export(t *testing.T) {
	svc := &fakeReportService{
		exportFn: func(ctx context.Context, actor domain.Actor, f report.Filter) (report.ExportFile, error) {
			return report.ExportFile{Filename: "employees-report.pdf", Content: []byte("%PDF-1.3")}, nil
		},
	}

	w := httptest.NewRecorder()
	newReportRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/employees/export", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "employees-report.pdf")
}

func TestReportHandler_RequestExport(t *testing.T) {
	svc := &fakeReportService{
		requestExportFn: func(ctx context.Context, actor domain.Actor, kind report.Kind, query map[string][]string) (report.ExportTicket, error) {
			assert.Equal(t, report.KindAttendance, kind)
			assert.Equal(t, []string{"late"}, query["status"])
			return report.ExportTicket{ExportID: "x", Report: string(kind), Status: "queued"}, nil
		},
	}

	w := httptest.NewRecorder()
	newReportRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reports/attendance/export?status=late", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
}
