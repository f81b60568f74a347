package events

import "time"

const (
	ReportExportTopic = "hr.report.export.v1"

	EventReportExportRequested = "report_export_requested"
)

// ReportExportRequestedEvent carries the raw query of a report request so
// the consumer can rebuild the exact filter.
type ReportExportRequestedEvent struct {
	EventType   string              `json:"event_type"`
	ExportID    string              `json:"export_id"`
	Report      string              `json:"report"`
	CompanyID   string              `json:"company_id"`
	RequestedBy string              `json:"requested_by"`
	Query       map[string][]string `json:"query"`
	OccurredAt  time.Time           `json:"occurred_at"`
}
