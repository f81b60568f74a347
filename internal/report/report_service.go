package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/events"
	"hr-backoffice/internal/messaging/kafka"
	reporterrors "hr-backoffice/internal/report/errors"
	"hr-backoffice/internal/shared/apperror"
	"hr-backoffice/internal/shared/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxExportRows bounds a single PDF export.
const MaxExportRows = 5000

type Service interface {
	Search(ctx context.Context, actor domain.Actor, f Filter) (Page, error)
	Summarize(ctx context.Context, actor domain.Actor, f Filter) (Summary, error)
	Report(ctx context.Context, actor domain.Actor, f Filter) (Result, error)
	Export(ctx context.Context, actor domain.Actor, f Filter) (ExportFile, error)
	RequestExport(ctx context.Context, actor domain.Actor, kind Kind, query map[string][]string) (ExportTicket, error)
	ExportToFile(ctx context.Context, event events.ReportExportRequestedEvent) (string, error)
}

type Options struct {
	Outbox    kafka.OutboxRepository
	ExportDir string
	Now       func() time.Time
}

type service struct {
	repo      Repository
	outbox    kafka.OutboxRepository
	exportDir string
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(repo Repository, opts Options, logger ...*zap.Logger) Service {
	l := zap.L().Named("report.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.service")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      repo,
		outbox:    opts.Outbox,
		exportDir: opts.ExportDir,
		now:       now,
		logger:    l,
	}
}

type prepared struct {
	def      definition
	criteria criteria
	query    Query
}

func (s *service) prepare(actor domain.Actor, f Filter) (prepared, error) {
	if _, err := uuid.Parse(actor.CompanyID); err != nil {
		return prepared{}, apperror.ErrUnauthorized
	}
	if f == nil {
		return prepared{}, reporterrors.ErrUnknownReport
	}
	def, ok := lookup(f.Kind())
	if !ok {
		return prepared{}, reporterrors.ErrUnknownReport
	}

	c, err := f.criteria(s.now())
	if err != nil {
		s.logger.Warn("report filter rejected", zap.String("report", string(def.kind)), zap.Error(err))
		return prepared{}, err
	}

	return prepared{
		def:      def,
		criteria: c,
		query: Query{
			Table:   def.table,
			Joins:   def.joins,
			Columns: def.columns,
			Order:   def.alias + ".created_at ASC, " + def.alias + ".id ASC",
			Scopes:  def.scopes(actor.CompanyID, c),
		},
	}, nil
}

func (s *service) Search(ctx context.Context, actor domain.Actor, f Filter) (Page, error) {
	p, err := s.prepare(actor, f)
	if err != nil {
		return Page{}, err
	}
	return s.page(ctx, p)
}

func (s *service) page(ctx context.Context, p prepared) (Page, error) {
	rows := p.def.newRows()
	total, err := s.repo.Page(ctx, p.query, p.criteria.offset(), p.criteria.perPage, rows.dest())
	if err != nil {
		s.logger.Error("report page failed", zap.String("report", string(p.def.kind)), zap.Error(err))
		return Page{}, err
	}

	return Page{
		Records: rows.records(),
		Meta:    response.NewPaginationMeta(total, p.criteria.page, p.criteria.perPage),
	}, nil
}

func (s *service) Summarize(ctx context.Context, actor domain.Actor, f Filter) (Summary, error) {
	p, err := s.prepare(actor, f)
	if err != nil {
		return Summary{}, err
	}
	return s.summarize(ctx, p)
}

func (s *service) summarize(ctx context.Context, p prepared) (Summary, error) {
	log := s.logger.With(zap.String("report", string(p.def.kind)))

	statusCounts, err := s.repo.GroupCount(ctx, p.query, p.def.alias+".status")
	if err != nil {
		log.Error("report status summary failed", zap.Error(err))
		return Summary{}, err
	}

	var total int64
	for _, n := range statusCounts {
		total += n
	}

	summary := Summary{
		Total:    total,
		Statuses: buckets(statusStrings(p.def.statuses), statusCounts, total),
	}

	if p.def.categoryColumn != "" {
		categoryCounts, err := s.repo.GroupCount(ctx, p.query, p.def.categoryColumn)
		if err != nil {
			log.Error("report category summary failed", zap.Error(err))
			return Summary{}, err
		}
		summary.Categories = buckets(p.def.categories, categoryCounts, total)
	}

	if len(p.def.metrics) > 0 {
		summary.Metrics = make(map[string]float64, len(p.def.metrics))
		for _, m := range p.def.metrics {
			v := 0.0
			if total > 0 {
				if v, err = s.repo.Sum(ctx, p.query, m.expr); err != nil {
					log.Error("report metric failed", zap.String("metric", m.name), zap.Error(err))
					return Summary{}, err
				}
			}
			summary.Metrics[m.name] = round2(v)
		}
	}

	return summary, nil
}

func (s *service) Report(ctx context.Context, actor domain.Actor, f Filter) (Result, error) {
	s.logger.Debug("report requested", zap.String("company_id", actor.CompanyID), zap.String("actor_id", actor.EmployeeID))

	p, err := s.prepare(actor, f)
	if err != nil {
		return Result{}, err
	}

	page, err := s.page(ctx, p)
	if err != nil {
		return Result{}, err
	}
	summary, err := s.summarize(ctx, p)
	if err != nil {
		return Result{}, err
	}

	s.logger.Info("report success",
		zap.String("report", string(p.def.kind)),
		zap.String("company_id", actor.CompanyID),
		zap.Int64("total", page.Meta.Total),
	)
	return Result{Page: page, Summary: summary}, nil
}

func (s *service) Export(ctx context.Context, actor domain.Actor, f Filter) (ExportFile, error) {
	p, err := s.prepare(actor, f)
	if err != nil {
		return ExportFile{}, err
	}

	// One oversized page fetches the whole filtered set.
	p.criteria.page, p.criteria.perPage = 1, MaxExportRows
	page, err := s.page(ctx, p)
	if err != nil {
		return ExportFile{}, err
	}
	if page.Meta.Total > MaxExportRows {
		s.logger.Warn("report export too large", zap.String("report", string(p.def.kind)), zap.Int64("total", page.Meta.Total))
		return ExportFile{}, reporterrors.ErrExportTooLarge
	}

	summary, err := s.summarize(ctx, p)
	if err != nil {
		return ExportFile{}, err
	}

	now := s.now()
	content, err := renderPDF(p.def, p.criteria, summary, page.Records, now)
	if err != nil {
		s.logger.Error("report pdf render failed", zap.String("report", string(p.def.kind)), zap.Error(err))
		return ExportFile{}, err
	}

	return ExportFile{
		Filename: fmt.Sprintf("%s-report-%s.pdf", p.def.kind, now.UTC().Format("20060102-150405")),
		Content:  content,
	}, nil
}

// RequestExport validates the filter now and leaves rendering to the
// consumer.
func (s *service) RequestExport(ctx context.Context, actor domain.Actor, kind Kind, query map[string][]string) (ExportTicket, error) {
	if s.outbox == nil {
		return ExportTicket{}, reporterrors.ErrExportUnavailable
	}

	f, err := DecodeFilter(kind, query)
	if err != nil {
		return ExportTicket{}, err
	}
	if _, err := s.prepare(actor, f); err != nil {
		return ExportTicket{}, err
	}

	exportID := uuid.NewString()
	payload := events.ReportExportRequestedEvent{
		EventType:   events.EventReportExportRequested,
		ExportID:    exportID,
		Report:      string(kind),
		CompanyID:   actor.CompanyID,
		RequestedBy: actor.EmployeeID,
		Query:       query,
		OccurredAt:  s.now().UTC(),
	}

	event, err := kafka.NewOutboxEvent(ctx, "report", exportID, events.EventReportExportRequested, events.ReportExportTopic, payload)
	if err != nil {
		return ExportTicket{}, err
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error("report export enqueue failed", zap.String("export_id", exportID), zap.Error(err))
		return ExportTicket{}, err
	}

	s.logger.Info("report export requested",
		zap.String("export_id", exportID),
		zap.String("report", string(kind)),
		zap.String("company_id", actor.CompanyID),
	)
	return ExportTicket{ExportID: exportID, Report: string(kind), Status: "queued"}, nil
}

func (s *service) ExportToFile(ctx context.Context, event events.ReportExportRequestedEvent) (string, error) {
	if _, err := uuid.Parse(event.ExportID); err != nil {
		return "", apperror.Validation("export id must be a uuid")
	}

	f, err := DecodeFilter(Kind(event.Report), event.Query)
	if err != nil {
		return "", err
	}

	actor := domain.Actor{CompanyID: event.CompanyID, EmployeeID: event.RequestedBy}
	file, err := s.Export(ctx, actor, f)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.exportDir, event.ExportID+".pdf")
	if err := os.WriteFile(path, file.Content, 0o644); err != nil {
		s.logger.Error("report export write failed", zap.String("path", path), zap.Error(err))
		return "", err
	}
	return path, nil
}
