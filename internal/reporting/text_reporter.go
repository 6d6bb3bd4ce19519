// File: internal/reporting/text_reporter.go
package reporting

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/observability"
)

// textStyles are bound to the reporter's writer, so colors are only emitted
// when that writer is a terminal.
type textStyles struct {
	title    lipgloss.Style
	heading  lipgloss.Style
	muted    lipgloss.Style
	critical lipgloss.Style
	high     lipgloss.Style
	medium   lipgloss.Style
	low      lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#20B9B4")),
		heading:  r.NewStyle().Bold(true),
		muted:    r.NewStyle().Foreground(lipgloss.Color("#2C4A54")),
		critical: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#E74C3C")),
		high:     r.NewStyle().Foreground(lipgloss.Color("#E67E22")),
		medium:   r.NewStyle().Foreground(lipgloss.Color("#F4D03F")),
		low:      r.NewStyle().Foreground(lipgloss.Color("#2CD7C7")),
	}
}

func (s textStyles) forLevel(level string) lipgloss.Style {
	switch level {
	case "critical", "failed":
		return s.critical
	case "high", "warning":
		return s.high
	case "medium":
		return s.medium
	case "low", "good", "excellent":
		return s.low
	default:
		return s.muted
	}
}

// TextReporter renders a human-readable summary of each report.
type TextReporter struct {
	writer io.WriteCloser
	logger *zap.Logger
	styles textStyles
	mu     sync.Mutex
}

// NewTextReporter creates a text reporter that owns writer.
func NewTextReporter(writer io.WriteCloser) *TextReporter {
	return &TextReporter{
		writer: writer,
		logger: observability.GetLogger().Named("text_reporter"),
		styles: newTextStyles(writer),
	}
}

// Write renders report immediately.
func (r *TextReporter) Write(report *schemas.IntegratedReport) error {
	if report == nil {
		return errNilReport
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := io.WriteString(r.writer, r.render(report)); err != nil {
		return fmt.Errorf("failed to write report %s: %w", report.Metadata.RequestID, err)
	}
	r.logger.Debug("Wrote text report", zap.String("request_id", report.Metadata.RequestID))
	return nil
}

// Close closes the underlying writer.
func (r *TextReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.writer.Close(); err != nil {
		return fmt.Errorf("failed to close output writer: %w", err)
	}
	return nil
}

func (r *TextReporter) render(report *schemas.IntegratedReport) string {
	s := r.styles
	meta := report.Metadata
	var b strings.Builder

	b.WriteString(s.title.Render("SQL Analysis Report") + "\n")
	fmt.Fprintf(&b, "  %-14s %s\n", "Request ID", meta.RequestID)
	fmt.Fprintf(&b, "  %-14s %s\n", "Database", valueOr(meta.DatabaseType, "unknown"))
	fmt.Fprintf(&b, "  %-14s %s\n", "Generated", meta.Timestamp)
	fmt.Fprintf(&b, "  %-14s %s\n\n", "Engine", meta.EngineVersion)

	if meta.Error != "" {
		b.WriteString(s.critical.Render("Report generation failed: "+meta.Error) + "\n\n")
	}
	if meta.Reason != "" {
		b.WriteString(s.muted.Render("No report content: "+meta.Reason) + "\n\n")
	}

	veto := "no"
	if report.SecurityVeto {
		veto = s.critical.Render("YES")
	}
	fmt.Fprintf(&b, "  %-14s %d/100\n", "Overall score", report.OverallScore)
	fmt.Fprintf(&b, "  %-14s %s\n", "Risk level", s.forLevel(string(report.RiskLevel)).Render(strings.ToUpper(string(report.RiskLevel))))
	fmt.Fprintf(&b, "  %-14s %s\n\n", "Security veto", veto)

	if len(report.Summary) > 0 {
		b.WriteString(s.heading.Render("Dimensions") + "\n")
		for _, dim := range summaryOrder(report) {
			summary := report.Summary[dim]
			score, _ := number(summary["score"])
			status, _ := summary["status"].(schemas.DimensionStatus)
			if status == "" {
				if str, ok := summary["status"].(string); ok {
					status = schemas.DimensionStatus(str)
				}
			}
			fmt.Fprintf(&b, "  %-14s %3.0f  %s  recommendations %d\n",
				dim, score, s.forLevel(string(status)).Render(fmt.Sprintf("%-9s", status)), count(summary["recommendations"]))
		}
		b.WriteString("\n")
	}

	b.WriteString(s.heading.Render("Implementation plan") + "\n")
	r.renderPhase(&b, "Immediate", report.ImplementationPlan.Immediate)
	r.renderPhase(&b, "Short term", report.ImplementationPlan.ShortTerm)
	r.renderPhase(&b, "Long term", report.ImplementationPlan.LongTerm)
	b.WriteString("\n")
	return b.String()
}

func (r *TextReporter) renderPhase(b *strings.Builder, name string, recs []schemas.PrioritizedRecommendation) {
	fmt.Fprintf(b, "  %s (%d)\n", name, len(recs))
	if len(recs) == 0 {
		b.WriteString("    " + r.styles.muted.Render("none") + "\n")
		return
	}
	for _, rec := range recs {
		fmt.Fprintf(b, "    [%3d] %s  %s %s\n",
			rec.Priority,
			rec.Title,
			r.styles.forLevel(string(rec.Severity)).Render(string(rec.Severity)),
			r.styles.muted.Render(rec.Category+" / "+strings.Join(rec.Sources, ", ")),
		)
	}
}

// summaryOrder lists summary dimensions in analysis order, then any others
// sorted by name.
func summaryOrder(report *schemas.IntegratedReport) []string {
	seen := make(map[string]struct{}, len(report.Summary))
	order := make([]string, 0, len(report.Summary))
	for _, dim := range report.Metadata.DimensionsAnalyzed {
		if _, ok := report.Summary[dim]; ok {
			order = append(order, dim)
			seen[dim] = struct{}{}
		}
	}
	var rest []string
	for dim := range report.Summary {
		if _, ok := seen[dim]; !ok {
			rest = append(rest, dim)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// count reads a summary field that holds either a list or a number.
func count(v any) int {
	switch list := v.(type) {
	case []any:
		return len(list)
	case []schemas.Recommendation:
		return len(list)
	}
	n, _ := number(v)
	return int(n)
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
