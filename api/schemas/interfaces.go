package schemas

import (
	"context"
)

// -- Store Interface --

// ReportStore persists integrated reports so that past runs can be listed
// and re-rendered. The CLI works against this interface, which keeps it
// independent of the PostgreSQL implementation.
type ReportStore interface {
	// SaveReport writes the report, replacing any earlier report with the
	// same request ID.
	SaveReport(ctx context.Context, report *IntegratedReport) error
	// ListReports returns the most recent reports, newest first.
	ListReports(ctx context.Context, limit int) ([]ReportRecord, error)
	// GetReport loads a single report by request ID.
	GetReport(ctx context.Context, requestID string) (*IntegratedReport, error)
}

// -- Engine Interface --

// ReportGenerator turns per-dimension analysis results into an integrated
// report. Implementations never fail: problems are reported inside the
// returned report.
type ReportGenerator interface {
	Generate(results AnalysisResults, req ReportRequest) *IntegratedReport
}

// ReportRequest carries the caller-supplied context of a report. An empty
// RequestID makes the engine generate one.
type ReportRequest struct {
	DatabaseType string `json:"databaseType"`
	RequestID    string `json:"requestId,omitempty"`
}
