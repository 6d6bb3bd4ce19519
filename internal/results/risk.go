// File: internal/results/risk.go
package results

import (
	"math"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
)

// RiskAssessment is the score side of a report, computed independently of
// the recommendation pipeline.
type RiskAssessment struct {
	OverallScore int
	LowestScore  float64
	SecurityVeto bool
	RiskLevel    schemas.RiskLevel
	// Scored counts the usable dimensions that were considered.
	Scored int
}

// NormalizeScore clamps a dimension score to [0,100]; absent scores are 0.
func NormalizeScore(score *float64) float64 {
	if score == nil || math.IsNaN(*score) {
		return 0
	}
	return math.Max(0, math.Min(100, *score))
}

// AggregateRisk computes the weighted overall score, the lowest dimension
// score and the resulting risk level.
//
// The overall score only counts dimensions with a positive weight, while the
// lowest score counts every usable dimension. A veto on the security
// dimension forces the level to critical whatever the scores say.
func AggregateRisk(results schemas.AnalysisResults, weights map[string]float64) RiskAssessment {
	var (
		ra          RiskAssessment
		weighted    float64
		totalWeight float64
		lowest      = math.Inf(1)
	)

	for dim, res := range results {
		if !res.Usable() {
			continue
		}
		score := NormalizeScore(res.Data.Score)
		ra.Scored++
		lowest = math.Min(lowest, score)

		if w := weights[dim]; validWeight(w) && w > 0 {
			weighted += score * w
			totalWeight += w
		}
	}

	if totalWeight > 0 {
		ra.OverallScore = clampInt(int(math.Round(weighted/totalWeight)), 0, 100)
	}
	if ra.Scored > 0 {
		ra.LowestScore = lowest
	}

	if sec := results[schemas.DimensionSecurity]; sec != nil && sec.Data != nil && sec.Data.Veto {
		ra.SecurityVeto = true
	}

	ra.RiskLevel = riskLevelFor(ra.SecurityVeto, ra.OverallScore, ra.LowestScore)
	return ra
}

func riskLevelFor(veto bool, overall int, lowest float64) schemas.RiskLevel {
	switch {
	case veto:
		return schemas.RiskCritical
	case overall < 50 || lowest < 30:
		return schemas.RiskHigh
	case overall < 75 || lowest < 60:
		return schemas.RiskMedium
	default:
		return schemas.RiskLow
	}
}
