// File: internal/results/extract.go
package results

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
)

// UntitledRecommendation replaces empty titles.
const UntitledRecommendation = "untitled recommendation"

// orderedDimensions returns the keys of results with the preferred dimensions
// first (in the given order) and everything else sorted lexically.
func orderedDimensions(results schemas.AnalysisResults, preferred []string) []string {
	dims := make([]string, 0, len(results))
	placed := make(map[string]struct{}, len(results))
	for _, dim := range preferred {
		if _, ok := results[dim]; !ok {
			continue
		}
		if _, dup := placed[dim]; dup {
			continue
		}
		placed[dim] = struct{}{}
		dims = append(dims, dim)
	}

	rest := make([]string, 0, len(results)-len(dims))
	for dim := range results {
		if _, ok := placed[dim]; !ok {
			rest = append(rest, dim)
		}
	}
	sort.Strings(rest)
	return append(dims, rest...)
}

// Extract flattens the recommendations of every usable dimension into one
// normalized list. Order is dimension order, then array order within each
// dimension. Unusable dimensions contribute nothing. Inputs are not modified.
func Extract(results schemas.AnalysisResults, order []string) []schemas.NormalizedRecommendation {
	var out []schemas.NormalizedRecommendation
	for _, dim := range orderedDimensions(results, order) {
		res := results[dim]
		if !res.Usable() {
			continue
		}
		for i, raw := range res.Data.Recommendations {
			out = append(out, normalize(dim, i, raw))
		}
	}
	return out
}

func normalize(dim string, index int, raw schemas.Recommendation) schemas.NormalizedRecommendation {
	rec := schemas.NormalizedRecommendation{
		ID:          dim + "_rec_" + strconv.Itoa(index),
		Title:       strings.TrimSpace(raw.Title),
		Description: strings.TrimSpace(raw.Description),
		Impact:      clampLevel(raw.Impact),
		Effort:      clampLevel(raw.Effort),
		Category:    strings.ToLower(strings.TrimSpace(raw.Category)),
		Sources:     []string{dim},
	}
	if rec.Title == "" {
		rec.Title = UntitledRecommendation
	}
	if rec.Category == "" {
		rec.Category = schemas.DefaultCategory
	}
	if sev, ok := parseSeverity(raw.Severity); ok {
		rec.Severity = sev
	} else {
		rec.Severity = InferSeverity(rec.Impact, rec.Effort)
		rec.SeverityInferred = true
	}
	return rec
}

// InferSeverity derives a severity from impact and effort: cheap high-value
// fixes escalate to high, expensive low-value ones drop to low.
func InferSeverity(impact, effort schemas.Level) schemas.Severity {
	switch {
	case impact == schemas.LevelHigh && (effort == schemas.LevelLow || effort == schemas.LevelMedium):
		return schemas.SeverityHigh
	case impact == schemas.LevelLow && effort == schemas.LevelHigh:
		return schemas.SeverityLow
	default:
		return schemas.SeverityMedium
	}
}

// clampLevel maps raw to a valid Level, defaulting to medium.
func clampLevel(raw string) schemas.Level {
	v := strings.ToLower(strings.TrimSpace(raw))
	if validate.Var(v, "required,oneof=low medium high") != nil {
		return schemas.LevelMedium
	}
	return schemas.Level(v)
}

func parseSeverity(raw string) (schemas.Severity, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if validate.Var(v, "required,oneof=low medium high critical") != nil {
		return "", false
	}
	return schemas.Severity(v), true
}

func clampSeverity(s schemas.Severity) schemas.Severity {
	if v, ok := parseSeverity(string(s)); ok {
		return v
	}
	return schemas.SeverityMedium
}

var severityRanks = map[schemas.Severity]int{
	schemas.SeverityLow:      1,
	schemas.SeverityMedium:   2,
	schemas.SeverityHigh:     3,
	schemas.SeverityCritical: 4,
}

var levelRanks = map[schemas.Level]int{
	schemas.LevelLow:    1,
	schemas.LevelMedium: 2,
	schemas.LevelHigh:   3,
}

func maxLevel(a, b schemas.Level) schemas.Level {
	if levelRanks[b] > levelRanks[a] {
		return b
	}
	return a
}
