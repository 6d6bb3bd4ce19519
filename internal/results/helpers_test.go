package results

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
)

// fixedTime keeps report timestamps reproducible.
var fixedTime = time.Date(2025, 10, 26, 10, 0, 0, 0, time.UTC)

// dimension builds a successful dimension result.
func dimension(score float64, recs ...schemas.Recommendation) *schemas.AnalysisResult {
	return &schemas.AnalysisResult{
		Success: true,
		Data:    &schemas.AnalysisData{Score: &score, Recommendations: recs},
	}
}

// failedDimension builds a result for an analyzer that gave up.
func failedDimension() *schemas.AnalysisResult {
	return &schemas.AnalysisResult{Success: false, Error: "llm timeout"}
}

func normalized(id, title, description string, sev schemas.Severity, impact, effort schemas.Level, sources ...string) schemas.NormalizedRecommendation {
	return schemas.NormalizedRecommendation{
		ID:          id,
		Title:       title,
		Description: description,
		Severity:    sev,
		Impact:      impact,
		Effort:      effort,
		Category:    schemas.DefaultCategory,
		Sources:     sources,
	}
}

// MockRecorder mocks the Recorder interface.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) ObserveReport(level schemas.RiskLevel, elapsed time.Duration) {
	m.Called(level, elapsed)
}

func (m *MockRecorder) ObserveRecommendations(extracted, unique int) {
	m.Called(extracted, unique)
}

func (m *MockRecorder) ObserveFailure(kind string) {
	m.Called(kind)
}
