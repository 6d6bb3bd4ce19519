// internal/reporting/json_reporter_test.go
package reporting_test

import (
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/reporting"
)

func TestJSONReporter_WriteStream(t *testing.T) {
	w := newMockWriter()
	reporter := reporting.NewJSONReporter(w)

	second := sampleReport()
	second.Metadata.RequestID = "req-456"
	require.NoError(t, reporter.Write(sampleReport()))
	require.NoError(t, reporter.Write(second))
	require.NoError(t, reporter.Close())
	assert.True(t, w.Closed)

	decoder := json.NewDecoder(w.Buffer)
	var ids []string
	for decoder.More() {
		var report schemas.IntegratedReport
		require.NoError(t, decoder.Decode(&report))
		ids = append(ids, report.Metadata.RequestID)
	}
	assert.Equal(t, []string{"req-123", "req-456"}, ids)
}

func TestJSONReporter_Shape(t *testing.T) {
	w := newMockWriter()
	reporter := reporting.NewJSONReporter(w)
	require.NoError(t, reporter.Write(sampleReport()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Buffer.Bytes(), &doc))
	assert.EqualValues(t, 60, doc["overallScore"])
	assert.Equal(t, "medium", doc["riskLevel"])
	assert.Contains(t, doc, "implementationPlan")
	assert.Contains(t, w.Buffer.String(), "\n  \"", "output is indented")
}

func TestJSONReporter_Errors(t *testing.T) {
	t.Run("write failure", func(t *testing.T) {
		w := newMockWriter()
		w.FailWrite = true
		err := reporting.NewJSONReporter(w).Write(sampleReport())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to write report req-123")
	})

	t.Run("close failure", func(t *testing.T) {
		w := newMockWriter()
		w.FailClose = true
		err := reporting.NewJSONReporter(w).Close()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to close output writer")
	})
}
