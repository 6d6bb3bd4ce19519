// File: internal/ingest/ingest_test.go
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const plainDocument = `{
  "performance": {"success": true, "data": {"score": 70, "recommendations": [{"title": "Add index", "severity": "high"}]}},
  "security": {"success": false, "error": "timeout"},
  "standards": null
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDecode_PlainDocument(t *testing.T) {
	batch, err := Decode(strings.NewReader(plainDocument))
	require.NoError(t, err)

	require.Len(t, batch.Results, 3)
	assert.Empty(t, batch.DatabaseType)
	assert.Empty(t, batch.RequestID)

	perf := batch.Results["performance"]
	require.True(t, perf.Usable())
	require.NotNil(t, perf.Data.Score)
	assert.Equal(t, 70.0, *perf.Data.Score)
	require.Len(t, perf.Data.Recommendations, 1)
	assert.Equal(t, "Add index", perf.Data.Recommendations[0].Title)

	assert.False(t, batch.Results["security"].Usable())
	assert.Equal(t, "timeout", batch.Results["security"].Error)

	standards, present := batch.Results["standards"]
	assert.True(t, present)
	assert.Nil(t, standards)
}

func TestDecode_WrappedDocument(t *testing.T) {
	doc := `{"databaseType": "mysql", "requestId": "req-7", "results": ` + plainDocument + `}`
	batch, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "mysql", batch.DatabaseType)
	assert.Equal(t, "req-7", batch.RequestID)
	assert.Len(t, batch.Results, 3)
	assert.NotContains(t, batch.Results, "results")
}

func TestDecode_WrapperDetection(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		wantDims   []string
		wantDBType string
	}{
		{
			name:     "extra key means results is a dimension",
			doc:      `{"results": {"success": true, "data": {}}, "performance": {"success": true, "data": {}}}`,
			wantDims: []string{"performance", "results"},
		},
		{
			name:     "non-object results is a dimension",
			doc:      `{"results": "nope"}`,
			wantDims: []string{"results"},
		},
		{
			name:       "wrong-typed databaseType is ignored",
			doc:        `{"databaseType": 5, "results": {"security": {"success": true, "data": {}}}}`,
			wantDims:   []string{"security"},
			wantDBType: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := Decode(strings.NewReader(tt.doc))
			require.NoError(t, err)
			var dims []string
			for dim := range batch.Results {
				dims = append(dims, dim)
			}
			assert.ElementsMatch(t, tt.wantDims, dims)
			assert.Equal(t, tt.wantDBType, batch.DatabaseType)
		})
	}
}

func TestDecode_LenientDimensions(t *testing.T) {
	doc := `{"performance": {"success": "yes", "data": {"score": "high", "veto": "true", "recommendations": [1, "Use LIMIT", {"title": "Add index"}]}}}`
	batch, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	perf := batch.Results["performance"]
	require.NotNil(t, perf)
	assert.False(t, perf.Success, "non-bool success reads as false")
	require.NotNil(t, perf.Data)
	assert.Nil(t, perf.Data.Score)
	assert.False(t, perf.Data.Veto)
	require.Len(t, perf.Data.Recommendations, 2)
	assert.Equal(t, "Use LIMIT", perf.Data.Recommendations[0].Title)
	assert.Equal(t, "Add index", perf.Data.Recommendations[1].Title)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"empty", "", ErrEmptyInput},
		{"whitespace", "  \n\t", ErrEmptyInput},
		{"array", `[{"success": true}]`, ErrInvalidDocument},
		{"string", `"performance"`, ErrInvalidDocument},
		{"truncated", `{"performance": {`, ErrInvalidDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "analysis.json", plainDocument)

	batch, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, batch.Path)
	assert.Len(t, batch.Results, 3)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	emptyPath := writeFile(t, dir, "empty.json", "")
	_, err = LoadFile(emptyPath)
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Contains(t, err.Error(), emptyPath)
}

func TestLoadAll_PreservesOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	var paths []string
	for i := 0; i < 10; i++ {
		doc := fmt.Sprintf(`{"databaseType": "db%d", "results": {"performance": {"success": true, "data": {"score": %d}}}}`, i, i*10)
		paths = append(paths, writeFile(t, dir, fmt.Sprintf("a%02d.json", i), doc))
	}

	batches, err := LoadAll(context.Background(), paths, 3)
	require.NoError(t, err)
	require.Len(t, batches, len(paths))
	for i, batch := range batches {
		assert.Equal(t, paths[i], batch.Path)
		assert.Equal(t, fmt.Sprintf("db%d", i), batch.DatabaseType)
	}
}

func TestLoadAll_FirstErrorWins(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "good.json", plainDocument),
		writeFile(t, dir, "bad.json", "[]"),
	}

	batches, err := LoadAll(context.Background(), paths, 0)
	assert.Nil(t, batches)
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestLoadAll_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	paths := []string{writeFile(t, dir, "good.json", plainDocument)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadAll(ctx, paths, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadAll_NoPaths(t *testing.T) {
	batches, err := LoadAll(context.Background(), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, batches)
}
