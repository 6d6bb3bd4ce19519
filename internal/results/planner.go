package results

import (
	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
)

// PhaseFor assigns a recommendation to its implementation phase. Rules are
// checked in order and the first match wins.
func PhaseFor(rec schemas.NormalizedRecommendation) schemas.Phase {
	switch {
	case rec.Severity == schemas.SeverityCritical,
		rec.Category == schemas.DimensionSecurity && rec.Severity == schemas.SeverityHigh:
		return schemas.PhaseImmediate
	case rec.Impact == schemas.LevelHigh && (rec.Effort == schemas.LevelLow || rec.Effort == schemas.LevelMedium),
		rec.Severity == schemas.SeverityHigh:
		return schemas.PhaseShortTerm
	default:
		return schemas.PhaseLongTerm
	}
}

// Plan stamps each recommendation with its phase, in place, and partitions
// the list. Relative order within each phase follows the input.
func Plan(recs []schemas.PrioritizedRecommendation) schemas.ImplementationPlan {
	plan := schemas.ImplementationPlan{
		Immediate: []schemas.PrioritizedRecommendation{},
		ShortTerm: []schemas.PrioritizedRecommendation{},
		LongTerm:  []schemas.PrioritizedRecommendation{},
	}
	for i := range recs {
		recs[i].Phase = PhaseFor(recs[i].NormalizedRecommendation)
		switch recs[i].Phase {
		case schemas.PhaseImmediate:
			plan.Immediate = append(plan.Immediate, recs[i])
		case schemas.PhaseShortTerm:
			plan.ShortTerm = append(plan.ShortTerm, recs[i])
		default:
			plan.LongTerm = append(plan.LongTerm, recs[i])
		}
	}
	return plan
}
