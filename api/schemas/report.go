// File: api/schemas/report.go
package schemas

import "time"

// NormalizedRecommendation is a recommendation after extraction: every enum
// field holds a valid value and Sources lists the dimensions that raised it.
type NormalizedRecommendation struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Impact      Level    `json:"impact"`
	Effort      Level    `json:"effort"`
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	Sources     []string `json:"sources"`
	// SeverityInferred is set when the analyzer gave no usable severity and
	// it was derived from impact and effort.
	SeverityInferred bool `json:"severityInferred,omitempty"`
	// MergedFrom lists the IDs of duplicates folded into this entry.
	MergedFrom []string `json:"mergedFrom,omitempty"`
}

// HasSource reports whether dim already contributed to the recommendation.
func (r NormalizedRecommendation) HasSource(dim string) bool {
	for _, s := range r.Sources {
		if s == dim {
			return true
		}
	}
	return false
}

// PrioritizedRecommendation carries the computed priority and the phase the
// planner assigned.
type PrioritizedRecommendation struct {
	NormalizedRecommendation
	Priority int   `json:"priority"`
	Phase    Phase `json:"phase"`
}

// ImplementationPlan partitions the prioritized recommendations. Each
// recommendation appears in exactly one bucket.
type ImplementationPlan struct {
	Immediate []PrioritizedRecommendation `json:"immediate"`
	ShortTerm []PrioritizedRecommendation `json:"shortTerm"`
	LongTerm  []PrioritizedRecommendation `json:"longTerm"`
}

// Len returns the total number of planned recommendations.
func (p ImplementationPlan) Len() int {
	return len(p.Immediate) + len(p.ShortTerm) + len(p.LongTerm)
}

// DimensionSummary is the per-dimension block of a report. For successful
// dimensions it passes through the analyzer payload with normalized score,
// status and list fields; failed dimensions get a fixed placeholder.
type DimensionSummary map[string]any

// ReportMetadata describes how a report was produced.
type ReportMetadata struct {
	RequestID             string   `json:"requestId"`
	Timestamp             string   `json:"timestamp"`
	DatabaseType          string   `json:"databaseType"`
	EngineVersion         string   `json:"engineVersion"`
	DimensionsAnalyzed    []string `json:"dimensionsAnalyzed"`
	SuccessfulDimensions  []string `json:"successfulDimensions"`
	FailedDimensions      []string `json:"failedDimensions"`
	LowestScore           float64  `json:"lowestScore"`
	TotalRecommendations  int      `json:"totalRecommendations"`
	UniqueRecommendations int      `json:"uniqueRecommendations"`
	Reason                string   `json:"reason,omitempty"`
	Error                 string   `json:"error,omitempty"`
}

// IntegratedReport is the single structured output of report generation.
type IntegratedReport struct {
	OverallScore       int                         `json:"overallScore"`
	RiskLevel          RiskLevel                   `json:"riskLevel"`
	SecurityVeto       bool                        `json:"securityVeto"`
	Summary            map[string]DimensionSummary `json:"summary"`
	Recommendations    []PrioritizedRecommendation `json:"recommendations"`
	ImplementationPlan ImplementationPlan          `json:"implementationPlan"`
	Metadata           ReportMetadata              `json:"metadata"`
}

// ReportRecord is a persisted report as listed by the history store.
type ReportRecord struct {
	RequestID            string    `json:"requestId"`
	DatabaseType         string    `json:"databaseType"`
	OverallScore         int       `json:"overallScore"`
	RiskLevel            RiskLevel `json:"riskLevel"`
	SecurityVeto         bool      `json:"securityVeto"`
	RecommendationsCount int       `json:"recommendationsCount"`
	CreatedAt            time.Time `json:"createdAt"`
}
