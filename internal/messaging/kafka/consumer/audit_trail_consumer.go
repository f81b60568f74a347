package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"hr-backoffice/internal/bootstrap"
	"hr-backoffice/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func headerValue(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// AuditTrailHandler writes lifecycle events to the audit log.
func AuditTrailHandler(audit bootstrap.AuditLogger) HandleFunc {
	return func(ctx context.Context, msg kafkago.Message) error {
		var event events.StatusChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return Permanent(err)
		}
		if event.EventType == "" {
			event.EventType = headerValue(msg, "event_type")
		}

		message := event.EventType
		if event.ToStatus != "" {
			message = fmt.Sprintf("%s %s -> %s", event.AggregateType, event.FromStatus, event.ToStatus)
		}

		audit.Log(ctx, bootstrap.AuditLog{
			Action:  event.EventType,
			Message: message,
			Meta: map[string]any{
				"aggregate_id": event.AggregateID,
				"company_id":   event.CompanyID,
				"employee_id":  event.EmployeeID,
				"actor_id":     event.ActorID,
				"request_id":   headerValue(msg, "request_id"),
				"occurred_at":  event.OccurredAt,
			},
		})
		return nil
	}
}

func ConsumeAuditTrail(ctx context.Context, reader MessageReader, audit bootstrap.AuditLogger, logger *zap.Logger) {
	log := logger.Named("kafka.consumer.audit_trail")
	Run(ctx, reader, AuditTrailHandler(audit), log)
}
