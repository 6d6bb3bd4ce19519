// internal/reporting/helpers_test.go
package reporting_test

import (
	"bytes"
	"errors"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
)

const testToolVersion = "v1.0.0-test"

// MockWriteCloser allows capturing output and simulating I/O errors.
type MockWriteCloser struct {
	Buffer    *bytes.Buffer
	FailWrite bool
	FailClose bool
	Closed    bool
}

// Write writes to the internal buffer, simulating a write error if configured.
func (m *MockWriteCloser) Write(p []byte) (n int, err error) {
	if m.FailWrite {
		return 0, errors.New("simulated write error")
	}
	return m.Buffer.Write(p)
}

// Close simulates a closing error if configured.
func (m *MockWriteCloser) Close() error {
	m.Closed = true
	if m.FailClose {
		return errors.New("simulated close error")
	}
	return nil
}

func newMockWriter() *MockWriteCloser {
	return &MockWriteCloser{Buffer: new(bytes.Buffer)}
}

func prioritized(id, title, desc, category string, sev schemas.Severity, priority int, phase schemas.Phase, sources ...string) schemas.PrioritizedRecommendation {
	return schemas.PrioritizedRecommendation{
		NormalizedRecommendation: schemas.NormalizedRecommendation{
			ID:          id,
			Title:       title,
			Description: desc,
			Impact:      schemas.LevelHigh,
			Effort:      schemas.LevelLow,
			Severity:    sev,
			Category:    category,
			Sources:     sources,
		},
		Priority: priority,
		Phase:    phase,
	}
}

// sampleReport mirrors what the engine produces for a mixed input.
func sampleReport() *schemas.IntegratedReport {
	immediate := prioritized("security_rec_0", "Parameterize queries", "String concatenation allows injection.", "injection",
		schemas.SeverityCritical, 95, schemas.PhaseImmediate, "security")
	immediate.MergedFrom = []string{"performance_rec_1"}
	short := prioritized("performance_rec_0", "Add index", "Index orders.customer_id.", "indexing",
		schemas.SeverityMedium, 66, schemas.PhaseShortTerm, "performance")
	long := prioritized("standards_rec_0", "Use uppercase keywords", "", "style",
		schemas.SeverityLow, 40, schemas.PhaseLongTerm, "standards")

	return &schemas.IntegratedReport{
		OverallScore: 60,
		RiskLevel:    schemas.RiskMedium,
		SecurityVeto: false,
		Summary: map[string]schemas.DimensionSummary{
			"performance": {"score": 70.0, "status": schemas.StatusWarning, "recommendations": []schemas.Recommendation{{Title: "Add index"}}},
			"security":    {"score": 50.0, "status": schemas.StatusWarning, "recommendations": []any{}},
			"standards":   {"score": 0, "status": schemas.StatusFailed, "recommendations": 0, "error": "analysis failed"},
		},
		Recommendations: []schemas.PrioritizedRecommendation{immediate, short, long},
		ImplementationPlan: schemas.ImplementationPlan{
			Immediate: []schemas.PrioritizedRecommendation{immediate},
			ShortTerm: []schemas.PrioritizedRecommendation{short},
			LongTerm:  []schemas.PrioritizedRecommendation{long},
		},
		Metadata: schemas.ReportMetadata{
			RequestID:             "req-123",
			Timestamp:             "2025-10-26T10:00:00.000Z",
			DatabaseType:          "postgresql",
			EngineVersion:         "1.0.0",
			DimensionsAnalyzed:    []string{"performance", "security", "standards"},
			SuccessfulDimensions:  []string{"performance", "security"},
			FailedDimensions:      []string{"standards"},
			LowestScore:           50,
			TotalRecommendations:  4,
			UniqueRecommendations: 3,
		},
	}
}
