// File: internal/ingest/ingest.go
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/sync/errgroup"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
)

var (
	// ErrEmptyInput is returned for a document with no content.
	ErrEmptyInput = errors.New("input is empty")
	// ErrInvalidDocument is returned when the document is not a JSON object.
	ErrInvalidDocument = errors.New("input is not a JSON object of dimension results")
)

// Batch is one analyzer output document ready for report generation.
type Batch struct {
	// Path is the file the batch was read from, empty for streams.
	Path string
	// DatabaseType and RequestID are only set by the wrapped document form.
	DatabaseType string
	RequestID    string
	Results      schemas.AnalysisResults
}

// wrapperKeys are the keys allowed next to "results" in the wrapped form.
var wrapperKeys = map[string]struct{}{
	"results":      {},
	"databaseType": {},
	"requestId":    {},
}

// Decode reads one document from r. Two shapes are accepted:
//
//	{"performance": {...}, "security": {...}}
//	{"databaseType": "mysql", "requestId": "...", "results": {"performance": {...}}}
//
// The wrapped shape is recognized only when "results" holds an object and no
// keys other than databaseType and requestId sit beside it. Individual
// dimension values are decoded leniently and never fail the document.
func Decode(r io.Reader) (*Batch, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, ErrEmptyInput
	}
	if body[0] != '{' {
		return nil, ErrInvalidDocument
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	batch := &Batch{}
	payload := body
	if isWrapped(top) {
		payload = top["results"]
		batch.DatabaseType = stringField(top["databaseType"])
		batch.RequestID = stringField(top["requestId"])
	}

	results := schemas.AnalysisResults{}
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	batch.Results = results
	return batch, nil
}

func isWrapped(top map[string]json.RawMessage) bool {
	raw, ok := top["results"]
	if !ok {
		return false
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	for key := range top {
		if _, allowed := wrapperKeys[key]; !allowed {
			return false
		}
	}
	return true
}

// stringField returns raw as a string, or "" when it holds anything else.
func stringField(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// LoadFile reads and decodes the document at path. A leading "~" is expanded
// to the user's home directory.
func LoadFile(path string) (*Batch, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand path %s: %w", path, err)
	}
	f, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	batch, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	batch.Path = path
	return batch, nil
}

// LoadAll loads every path with at most concurrency files in flight. The
// returned batches are in the order of paths. The first failure cancels the
// remaining loads and is returned.
func LoadAll(ctx context.Context, paths []string, concurrency int) ([]*Batch, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	batches := make([]*Batch, len(paths))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			batch, err := LoadFile(path)
			if err != nil {
				return err
			}
			batches[i] = batch
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}
