package schemas_test

import (
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
)

// -- Test Cases --

func TestAnalysisResult_UnmarshalLenient(t *testing.T) {
	t.Parallel()

	input := `{
		"performance": {"success": true, "data": {"score": 82.5, "recommendations": [{"title": "Add index", "impact": "high"}], "issues": [{"type": "scan"}]}},
		"security": {"success": "yes", "data": {"score": "90"}},
		"standards": null,
		"custom": 42
	}`

	var results schemas.AnalysisResults
	require.NoError(t, json.Unmarshal([]byte(input), &results))
	require.Len(t, results, 4)

	perf := results["performance"]
	require.True(t, perf.Usable())
	require.NotNil(t, perf.Data.Score)
	assert.Equal(t, 82.5, *perf.Data.Score)
	require.Len(t, perf.Data.Recommendations, 1)
	assert.Equal(t, "Add index", perf.Data.Recommendations[0].Title)
	assert.Equal(t, "high", perf.Data.Recommendations[0].Impact)
	assert.Contains(t, perf.Data.Fields, "issues", "unknown fields must be kept for passthrough")

	sec := results["security"]
	require.NotNil(t, sec)
	assert.False(t, sec.Success, "a non-boolean success flag is treated as false")
	require.NotNil(t, sec.Data)
	assert.Nil(t, sec.Data.Score, "a string score is not coerced")

	assert.Nil(t, results["standards"])
	assert.False(t, results["standards"].Usable())
	assert.False(t, results["custom"].Usable())
}

func TestAnalysisDataFromMap_Veto(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		veto any
		want bool
	}{
		{"literal true", true, true},
		{"literal false", false, false},
		{"string true", "true", false},
		{"number one", float64(1), false},
		{"absent", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fields := map[string]any{}
			if tc.veto != nil {
				fields["veto"] = tc.veto
			}
			assert.Equal(t, tc.want, schemas.AnalysisDataFromMap(fields).Veto)
		})
	}
}

func TestAnalysisDataFromMap_Recommendations(t *testing.T) {
	t.Parallel()

	data := schemas.AnalysisDataFromMap(map[string]any{
		"recommendations": []any{
			map[string]any{"title": "Use prepared statements", "severity": "critical", "impact": 3},
			"Avoid SELECT *",
			float64(12),
		},
	})

	require.Len(t, data.Recommendations, 2, "non-object, non-string entries are dropped")
	assert.Equal(t, "Use prepared statements", data.Recommendations[0].Title)
	assert.Equal(t, "critical", data.Recommendations[0].Severity)
	assert.Empty(t, data.Recommendations[0].Impact, "non-string enum values are treated as absent")
	assert.Equal(t, "Avoid SELECT *", data.Recommendations[1].Title)
}

func TestAnalysisData_FlattenOverlaysTypedFields(t *testing.T) {
	t.Parallel()

	score := 70.0
	data := schemas.AnalysisData{
		Score:  &score,
		Veto:   true,
		Fields: map[string]any{"score": "stale", "vulnerabilities": []any{"sqli"}},
	}

	flat := data.Flatten()
	assert.Equal(t, 70.0, flat["score"])
	assert.Equal(t, true, flat["veto"])
	assert.Equal(t, []any{"sqli"}, flat["vulnerabilities"])

	flat["score"] = 1.0
	assert.Equal(t, "stale", data.Fields["score"], "Flatten must not alias the passthrough map")

	b, err := json.Marshal(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score":70,"veto":true,"vulnerabilities":["sqli"]}`, string(b))
}

func TestImplementationPlan_Len(t *testing.T) {
	t.Parallel()

	plan := schemas.ImplementationPlan{
		Immediate: make([]schemas.PrioritizedRecommendation, 2),
		LongTerm:  make([]schemas.PrioritizedRecommendation, 1),
	}
	assert.Equal(t, 3, plan.Len())
}

func TestNormalizedRecommendation_HasSource(t *testing.T) {
	t.Parallel()

	rec := schemas.NormalizedRecommendation{Sources: []string{"performance", "security"}}
	assert.True(t, rec.HasSource("security"))
	assert.False(t, rec.HasSource("standards"))
}
