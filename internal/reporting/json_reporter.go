// File: internal/reporting/json_reporter.go
package reporting

import (
	"errors"
	"fmt"
	"io"
	"sync"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/observability"
)

var errNilReport = errors.New("report is nil")

// JSONReporter writes each report as an indented JSON document. Several
// reports produce a stream of documents separated by newlines.
type JSONReporter struct {
	writer io.WriteCloser
	logger *zap.Logger
	mu     sync.Mutex
}

// NewJSONReporter creates a JSON reporter that owns writer.
func NewJSONReporter(writer io.WriteCloser) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		logger: observability.GetLogger().Named("json_reporter"),
	}
}

// Write encodes report immediately.
func (r *JSONReporter) Write(report *schemas.IntegratedReport) error {
	if report == nil {
		return errNilReport
	}
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", report.Metadata.RequestID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.writer.Write(append(out, '\n')); err != nil {
		return fmt.Errorf("failed to write report %s: %w", report.Metadata.RequestID, err)
	}
	r.logger.Debug("Wrote JSON report", zap.String("request_id", report.Metadata.RequestID))
	return nil
}

// Close closes the underlying writer.
func (r *JSONReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.writer.Close(); err != nil {
		return fmt.Errorf("failed to close output writer: %w", err)
	}
	return nil
}
