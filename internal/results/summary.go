package results

import (
	"reflect"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
)

// listFields default to an empty array in successful summaries.
var listFields = []string{"issues", "recommendations"}

// StatusForScore maps a normalized score onto its qualitative status.
func StatusForScore(score float64) schemas.DimensionStatus {
	switch {
	case score >= 90:
		return schemas.StatusExcellent
	case score >= 75:
		return schemas.StatusGood
	case score >= 50:
		return schemas.StatusWarning
	default:
		return schemas.StatusCritical
	}
}

// FailedSummary is the placeholder used for dimensions without a usable result.
func FailedSummary() schemas.DimensionSummary {
	return schemas.DimensionSummary{
		"score":           0,
		"status":          schemas.StatusFailed,
		"issues":          0,
		"recommendations": 0,
		"confidence":      0,
		"error":           "analysis failed",
	}
}

// Summarize builds the per-dimension summary block for every dimension key
// present in results, successful or not.
func Summarize(results schemas.AnalysisResults) map[string]schemas.DimensionSummary {
	out := make(map[string]schemas.DimensionSummary, len(results))
	for dim, res := range results {
		if !res.Usable() {
			out[dim] = FailedSummary()
			continue
		}
		summary := schemas.DimensionSummary(res.Data.Flatten())
		score := NormalizeScore(res.Data.Score)
		summary["score"] = score
		summary["status"] = StatusForScore(score)
		for _, key := range listFields {
			if !isList(summary[key]) {
				summary[key] = []any{}
			}
		}
		out[dim] = summary
	}
	return out
}

// isList reports whether v is a non-nil slice or an array.
func isList(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array:
		return true
	case reflect.Slice:
		return !rv.IsNil()
	default:
		return false
	}
}
