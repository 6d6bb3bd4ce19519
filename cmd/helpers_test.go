// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/config"
)

// analysisDocument is a realistic analyzer output with two usable dimensions.
const analysisDocument = `{
  "databaseType": "postgresql",
  "requestId": "req-42",
  "results": {
    "performance": {
      "success": true,
      "data": {
        "score": 65,
        "recommendations": [
          {"title": "Add index on orders.customer_id", "description": "Sequential scan on a large table", "severity": "high", "impact": "high", "effort": "low", "category": "indexing"}
        ]
      }
    },
    "security": {
      "success": true,
      "data": {
        "score": 80,
        "recommendations": [
          {"title": "Use bound parameters", "description": "String concatenation builds the WHERE clause", "severity": "medium", "impact": "medium", "effort": "medium", "category": "injection"}
        ]
      }
    },
    "standards": {"success": false, "error": "analyzer timed out"}
  }
}`

// newTestConfig returns the default configuration used by command tests.
func newTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.ReportCfg.Concurrency = 2
	return cfg
}

// writeInput writes an analyzer document into dir and returns its path.
func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// isolateHome points the home directory at a temp dir so user config files
// on the machine running the tests are never picked up.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	return home
}

// executeCommand runs a fresh command tree with args and returns everything
// written to its stdout.
func executeCommand(t *testing.T, provider storeProvider, args ...string) (string, error) {
	t.Helper()
	rootCmd := newRootCmd(provider)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// -- Mocks --

type mockReportStore struct {
	mock.Mock
}

func (m *mockReportStore) SaveReport(ctx context.Context, report *schemas.IntegratedReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *mockReportStore) ListReports(ctx context.Context, limit int) ([]schemas.ReportRecord, error) {
	args := m.Called(ctx, limit)
	records, _ := args.Get(0).([]schemas.ReportRecord)
	return records, args.Error(1)
}

func (m *mockReportStore) GetReport(ctx context.Context, requestID string) (*schemas.IntegratedReport, error) {
	args := m.Called(ctx, requestID)
	report, _ := args.Get(0).(*schemas.IntegratedReport)
	return report, args.Error(1)
}

type mockStoreProvider struct {
	mock.Mock
}

func (m *mockStoreProvider) Create(ctx context.Context, cfg config.Interface) (schemas.ReportStore, func(), error) {
	args := m.Called(ctx, cfg)
	store, _ := args.Get(0).(schemas.ReportStore)
	cleanup, _ := args.Get(1).(func())
	return store, cleanup, args.Error(2)
}
