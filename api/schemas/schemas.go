// File: api/schemas/schemas.go
package schemas

// Severity ranks how urgently a recommendation needs attention.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Level is the three-step scale used for both impact and effort.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// RiskLevel is the overall verdict attached to an integrated report.
// RiskUnknown is reserved for reports built without any usable dimension.
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
	RiskUnknown  RiskLevel = "unknown"
)

// Phase is the implementation bucket a recommendation is planned into.
type Phase string

const (
	PhaseImmediate Phase = "immediate"
	PhaseShortTerm Phase = "shortTerm"
	PhaseLongTerm  Phase = "longTerm"
)

// DimensionStatus is the qualitative label derived from a dimension score.
type DimensionStatus string

const (
	StatusExcellent DimensionStatus = "excellent"
	StatusGood      DimensionStatus = "good"
	StatusWarning   DimensionStatus = "warning"
	StatusCritical  DimensionStatus = "critical"
	StatusFailed    DimensionStatus = "failed"
)

// Well-known analysis dimensions. Any other key in AnalysisResults is still
// accepted and processed.
const (
	DimensionPerformance = "performance"
	DimensionSecurity    = "security"
	DimensionStandards   = "standards"
)

// DefaultCategory is assigned to recommendations that carry no category.
const DefaultCategory = "general"
