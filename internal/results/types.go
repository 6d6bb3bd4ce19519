package results

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
)

// EngineVersion is stamped into every report's metadata.
const EngineVersion = "1.0.0"

// PriorityFactors weighs the severity, impact and effort components of a
// recommendation's priority.
type PriorityFactors struct {
	Severity float64
	Impact   float64
	Effort   float64
}

// Config holds the tunables of the engine. It is copied on construction and
// never mutated afterwards, so one Engine can serve concurrent calls.
type Config struct {
	// Weights maps a dimension name to its weight in the overall score.
	// Dimensions without an entry weigh zero.
	Weights map[string]float64
	// PriorityFactors weighs the components of a recommendation's priority.
	PriorityFactors PriorityFactors
	// SimilarityThreshold is reserved for fuzzy deduplication. Duplicates
	// are currently matched on exact signature only.
	SimilarityThreshold float64
	// DimensionOrder lists the dimensions visited first during extraction.
	// Remaining dimensions follow in lexical order.
	DimensionOrder []string
}

// DefaultConfig returns the stock settings: performance and security count
// 0.4 each and standards 0.2 toward the overall score, while priorities weigh
// severity, impact and effort at 0.5, 0.3 and 0.2.
func DefaultConfig() Config {
	return Config{
		Weights: map[string]float64{
			schemas.DimensionPerformance: 0.4,
			schemas.DimensionSecurity:    0.4,
			schemas.DimensionStandards:   0.2,
		},
		PriorityFactors: PriorityFactors{
			Severity: 0.5,
			Impact:   0.3,
			Effort:   0.2,
		},
		SimilarityThreshold: 0.8,
		DimensionOrder: []string{
			schemas.DimensionPerformance,
			schemas.DimensionSecurity,
			schemas.DimensionStandards,
		},
	}
}

// Recorder receives engine telemetry. A nil Recorder disables it.
type Recorder interface {
	ObserveReport(level schemas.RiskLevel, elapsed time.Duration)
	ObserveRecommendations(extracted, unique int)
	ObserveFailure(kind string)
}

// validate is shared; validator.Validate caches struct metadata and is safe
// for concurrent use.
var validate = validator.New()

// validWeight accepts finite, non-negative numbers.
func validWeight(w float64) bool {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return false
	}
	return validate.Var(w, "gte=0") == nil
}

// sanitize returns a deep copy of c in which unusable values are dropped or
// replaced by defaults. It reports every correction it made.
func (c Config) sanitize() (Config, []string) {
	def := DefaultConfig()
	var notes []string

	out := Config{
		Weights:             make(map[string]float64, len(c.Weights)),
		PriorityFactors:     c.PriorityFactors,
		SimilarityThreshold: c.SimilarityThreshold,
	}

	if c.Weights == nil {
		out.Weights = def.Weights
	} else {
		for dim, w := range c.Weights {
			if !validWeight(w) {
				notes = append(notes, "weight for "+dim+" is invalid; using 0")
				w = 0
			}
			out.Weights[dim] = w
		}
	}

	f := &out.PriorityFactors
	if !validWeight(f.Severity) || !validWeight(f.Impact) || !validWeight(f.Effort) ||
		f.Severity+f.Impact+f.Effort == 0 {
		notes = append(notes, "priority factors are invalid; using defaults")
		out.PriorityFactors = def.PriorityFactors
	}

	if validate.Var(out.SimilarityThreshold, "gt=0,lte=1") != nil || math.IsNaN(out.SimilarityThreshold) {
		if c.SimilarityThreshold != 0 {
			notes = append(notes, "similarity threshold is out of range; using default")
		}
		out.SimilarityThreshold = def.SimilarityThreshold
	}

	if len(c.DimensionOrder) == 0 {
		out.DimensionOrder = def.DimensionOrder
	} else {
		seen := make(map[string]struct{}, len(c.DimensionOrder))
		for _, dim := range c.DimensionOrder {
			if _, dup := seen[dim]; dup || dim == "" {
				continue
			}
			seen[dim] = struct{}{}
			out.DimensionOrder = append(out.DimensionOrder, dim)
		}
	}

	return out, notes
}
