package results

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
)

func TestExtract_NormalizesFields(t *testing.T) {
	results := schemas.AnalysisResults{
		"performance": dimension(70,
			schemas.Recommendation{},
			schemas.Recommendation{Title: "  Add index  ", Impact: "HIGH", Effort: "bogus", Category: " Indexing "},
			schemas.Recommendation{Title: "Rewrite subquery", Severity: "Critical", Impact: "low", Effort: "high"},
		),
	}

	recs := Extract(results, DefaultConfig().DimensionOrder)
	require.Len(t, recs, 3)

	assert.Equal(t, "performance_rec_0", recs[0].ID)
	assert.Equal(t, UntitledRecommendation, recs[0].Title)
	assert.Equal(t, "", recs[0].Description)
	assert.Equal(t, schemas.LevelMedium, recs[0].Impact)
	assert.Equal(t, schemas.LevelMedium, recs[0].Effort)
	assert.Equal(t, schemas.DefaultCategory, recs[0].Category)
	assert.Equal(t, schemas.SeverityMedium, recs[0].Severity)
	assert.True(t, recs[0].SeverityInferred)
	assert.Equal(t, []string{"performance"}, recs[0].Sources)

	assert.Equal(t, "performance_rec_1", recs[1].ID)
	assert.Equal(t, "Add index", recs[1].Title)
	assert.Equal(t, schemas.LevelHigh, recs[1].Impact)
	assert.Equal(t, schemas.LevelMedium, recs[1].Effort, "invalid effort falls back to medium")
	assert.Equal(t, "indexing", recs[1].Category)
	assert.Equal(t, schemas.SeverityHigh, recs[1].Severity, "high impact at medium effort escalates")

	assert.Equal(t, schemas.SeverityCritical, recs[2].Severity, "explicit severity is kept")
	assert.False(t, recs[2].SeverityInferred)
}

func TestExtract_SkipsUnusableDimensions(t *testing.T) {
	results := schemas.AnalysisResults{
		"performance": failedDimension(),
		"security":    nil,
		"standards":   {Success: true},
		"custom":      {Success: false, Data: &schemas.AnalysisData{Recommendations: []schemas.Recommendation{{Title: "ignored"}}}},
	}

	assert.Empty(t, Extract(results, nil))
}

func TestExtract_DimensionOrder(t *testing.T) {
	results := schemas.AnalysisResults{
		"zeta":        dimension(50, schemas.Recommendation{Title: "z"}),
		"standards":   dimension(50, schemas.Recommendation{Title: "s"}),
		"alpha":       dimension(50, schemas.Recommendation{Title: "a"}),
		"security":    dimension(50, schemas.Recommendation{Title: "sec"}),
		"performance": dimension(50, schemas.Recommendation{Title: "p"}),
	}

	for i := 0; i < 5; i++ {
		recs := Extract(results, DefaultConfig().DimensionOrder)
		ids := make([]string, len(recs))
		for j, r := range recs {
			ids[j] = r.ID
		}
		assert.Equal(t, []string{
			"performance_rec_0", "security_rec_0", "standards_rec_0", "alpha_rec_0", "zeta_rec_0",
		}, ids, "order must be deterministic across runs")
	}
}

func TestExtract_DoesNotMutateInput(t *testing.T) {
	build := func() schemas.AnalysisResults {
		return schemas.AnalysisResults{
			"security": dimension(40, schemas.Recommendation{Title: " Use bind parameters ", Impact: "HIGH"}),
		}
	}
	input := build()
	_ = Extract(input, nil)

	if diff := cmp.Diff(build(), input); diff != "" {
		t.Errorf("Extract mutated its input (-want +got):\n%s", diff)
	}
}

func TestInferSeverity(t *testing.T) {
	testCases := []struct {
		impact, effort schemas.Level
		want           schemas.Severity
	}{
		{schemas.LevelHigh, schemas.LevelLow, schemas.SeverityHigh},
		{schemas.LevelHigh, schemas.LevelMedium, schemas.SeverityHigh},
		{schemas.LevelHigh, schemas.LevelHigh, schemas.SeverityMedium},
		{schemas.LevelLow, schemas.LevelHigh, schemas.SeverityLow},
		{schemas.LevelLow, schemas.LevelLow, schemas.SeverityMedium},
		{schemas.LevelMedium, schemas.LevelMedium, schemas.SeverityMedium},
	}
	for _, tc := range testCases {
		t.Run(string(tc.impact)+"/"+string(tc.effort), func(t *testing.T) {
			assert.Equal(t, tc.want, InferSeverity(tc.impact, tc.effort))
		})
	}
}

func TestOrderedDimensions_IgnoresMissingPreferred(t *testing.T) {
	results := schemas.AnalysisResults{"standards": nil, "custom": nil}
	assert.Equal(t, []string{"standards", "custom"}, orderedDimensions(results, []string{"performance", "standards", "standards"}))
}
