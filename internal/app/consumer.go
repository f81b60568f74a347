package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"hr-backoffice/internal/bootstrap"
	"hr-backoffice/internal/config"
	"hr-backoffice/internal/events"
	"hr-backoffice/internal/messaging/kafka/consumer"
	"hr-backoffice/internal/report"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer runs the report export and audit trail readers until SIGINT or
// SIGTERM, then waits for both to stop.
func RunConsumer(cfg config.Config) error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connectDatabase(cfg)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	reportRepo := report.NewRepository(gormDB)
	reportService := report.NewService(reportRepo, report.Options{
		ExportDir: cfg.ReportExportDir,
		Now:       time.Now,
	})

	exportReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.ReportExportTopic,
		GroupID:        cfg.KafkaGroup + "-report-export",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer exportReader.Close()

	auditReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		GroupTopics:    events.LifecycleTopics,
		GroupID:        cfg.KafkaGroup + "-audit-trail",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer auditReader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		consumer.ConsumeReportExportRequested(ctx, exportReader, reportService, logger)
	}()
	go func() {
		defer wg.Done()
		consumer.ConsumeAuditTrail(ctx, auditReader, bootstrap.NewZapAuditLogger(logger), logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	wg.Wait()

	return nil
}
