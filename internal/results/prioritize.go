// File: internal/results/prioritize.go
package results

import (
	"math"
	"sort"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
)

var severityScores = map[schemas.Severity]float64{
	schemas.SeverityLow:      25,
	schemas.SeverityMedium:   50,
	schemas.SeverityHigh:     75,
	schemas.SeverityCritical: 100,
}

var impactScores = map[schemas.Level]float64{
	schemas.LevelLow:    25,
	schemas.LevelMedium: 50,
	schemas.LevelHigh:   100,
}

// Effort is inverted: cheaper fixes score higher.
var effortScores = map[schemas.Level]float64{
	schemas.LevelLow:    100,
	schemas.LevelMedium: 50,
	schemas.LevelHigh:   25,
}

// Priority computes the weighted 0-100 priority of a recommendation.
func Priority(rec schemas.NormalizedRecommendation, factors PriorityFactors) int {
	score := severityScores[rec.Severity]*factors.Severity +
		impactScores[rec.Impact]*factors.Impact +
		effortScores[rec.Effort]*factors.Effort
	return clampInt(int(math.Round(score)), 0, 100)
}

// severityBucket is the coarse ordering class of a recommendation.
func severityBucket(s schemas.Severity) int {
	switch s {
	case schemas.SeverityCritical:
		return 3
	case schemas.SeverityHigh:
		return 2
	case schemas.SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Prioritize scores every recommendation and orders the result by severity
// bucket, most severe first. The numeric priority is informational: within a
// bucket the incoming order is kept, so it never reorders two entries of the
// same severity.
func Prioritize(recs []schemas.NormalizedRecommendation, factors PriorityFactors) []schemas.PrioritizedRecommendation {
	out := make([]schemas.PrioritizedRecommendation, len(recs))
	for i, rec := range recs {
		out[i] = schemas.PrioritizedRecommendation{
			NormalizedRecommendation: rec,
			Priority:                 Priority(rec, factors),
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		bi, bj := severityBucket(out[i].Severity), severityBucket(out[j].Severity)
		if bi != bj {
			return bi > bj
		}
		return severityRanks[out[i].Severity] > severityRanks[out[j].Severity]
	})
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
