package report

import (
	"net/http"

	"hr-backoffice/internal/middleware"
	"hr-backoffice/internal/shared/apperror"
	"hr-backoffice/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("report.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("report request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) bindFilter(c *gin.Context) (Filter, bool) {
	f, err := NewFilter(Kind(c.Param("report")))
	if err != nil {
		h.writeServiceError(c, err)
		return nil, false
	}
	if err := c.ShouldBindQuery(f); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return nil, false
	}
	return f, true
}

func (h *Handler) Report(c *gin.Context) {
	f, ok := h.bindFilter(c)
	if !ok {
		return
	}

	result, err := h.service.Report(c.Request.Context(), middleware.CurrentActor(c), f)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.SuccessWithSummary(c, http.StatusOK, result.Records, &result.Meta, result.Summary)
}

func (h *Handler) Summary(c *gin.Context) {
	f, ok := h.bindFilter(c)
	if !ok {
		return
	}

	summary, err := h.service.Summarize(c.Request.Context(), middleware.CurrentActor(c), f)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, summary, nil)
}

func (h *Handler) Export(c *gin.Context) {
	f, ok := h.bindFilter(c)
	if !ok {
		return
	}

	file, err := h.service.Export(c.Request.Context(), middleware.CurrentActor(c), f)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", file.Content)
}

func (h *Handler) RequestExport(c *gin.Context) {
	ticket, err := h.service.RequestExport(
		c.Request.Context(),
		middleware.CurrentActor(c),
		Kind(c.Param("report")),
		c.Request.URL.Query(),
	)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, ticket, nil)
}
