package consumer

import (
	"context"
	"encoding/json"

	"hr-backoffice/internal/events"
	"hr-backoffice/internal/shared/apperror"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ReportExporter renders a requested report and returns where it was stored.
type ReportExporter interface {
	ExportToFile(ctx context.Context, event events.ReportExportRequestedEvent) (string, error)
}

func ReportExportHandler(exporter ReportExporter, log *zap.Logger) HandleFunc {
	return func(ctx context.Context, msg kafkago.Message) error {
		var event events.ReportExportRequestedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return Permanent(err)
		}

		path, err := exporter.ExportToFile(ctx, event)
		if err != nil {
			// A request that fails validation now will fail on every redelivery.
			switch apperror.KindOf(err) {
			case apperror.KindValidation, apperror.KindNotFound, apperror.KindAuthorization:
				return Permanent(err)
			}
			return err
		}

		log.Info("report exported",
			zap.String("export_id", event.ExportID),
			zap.String("report", event.Report),
			zap.String("company_id", event.CompanyID),
			zap.String("path", path),
		)
		return nil
	}
}

func ConsumeReportExportRequested(ctx context.Context, reader MessageReader, exporter ReportExporter, logger *zap.Logger) {
	log := logger.Named("kafka.consumer.report_export")
	Run(ctx, reader, ReportExportHandler(exporter, log), log)
}
