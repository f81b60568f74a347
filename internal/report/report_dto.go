package report

import "hr-backoffice/internal/shared/response"

type Page struct {
	Records []Record
	Meta    response.PaginationMeta
}

// Result is what a report endpoint returns: one page plus the summary of the
// same filtered set.
type Result struct {
	Page
	Summary Summary
}

type ExportFile struct {
	Filename string
	Content  []byte
}

type ExportTicket struct {
	ExportID string `json:"export_id"`
	Report   string `json:"report"`
	Status   string `json:"status"`
}
