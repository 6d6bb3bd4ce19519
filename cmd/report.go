// File: cmd/report.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/config"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/ingest"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/metrics"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/observability"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/reporting"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/results"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/store"
)

// storeProvider defines an interface for components that can create a
// report history store. Tests inject a mock instead of a live database.
type storeProvider interface {
	// Create returns a store, a cleanup function to release resources, and
	// an error if the store cannot be reached.
	Create(ctx context.Context, cfg config.Interface) (schemas.ReportStore, func(), error)
}

// defaultStoreProvider connects to PostgreSQL.
type defaultStoreProvider struct{}

// NewStoreProvider returns the production store provider.
func NewStoreProvider() storeProvider {
	return &defaultStoreProvider{}
}

// Create connects to the configured database, makes sure the history table
// exists, and returns the store with a cleanup function that closes the pool.
func (p *defaultStoreProvider) Create(ctx context.Context, cfg config.Interface) (schemas.ReportStore, func(), error) {
	logger := observability.GetLogger()
	if cfg.Database().URL == "" {
		return nil, nil, fmt.Errorf("database URL is not configured (SQLANALYZER_DATABASE_URL)")
	}

	pool, err := pgxpool.New(ctx, cfg.Database().URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storeService, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to initialize store service: %w", err)
	}
	if err := storeService.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		logger.Debug("Database connection pool closed.")
	}
	return storeService, cleanup, nil
}

// reportOptions carries the flags of the report command.
type reportOptions struct {
	Paths        []string
	Format       string
	Output       string
	DatabaseType string
	MetricsFile  string
	Save         bool
}

func newReportCmd(provider storeProvider) *cobra.Command {
	var opts reportOptions

	reportCmd := &cobra.Command{
		Use:   "report [files...]",
		Short: "Generate an integrated report from analyzer output files",
		Long: `Reads one or more JSON documents holding per-dimension analysis results,
merges duplicate recommendations, prioritizes them, and renders one integrated
report per file.

With a single file and no --output the report is printed to stdout. With several
files, --output names a directory that receives <file>.<ext> per input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}

			// Flags override the config file only when set explicitly.
			if cmd.Flags().Changed("format") {
				cfg.SetReportFormat(strings.ToLower(opts.Format))
			}
			if cmd.Flags().Changed("output") {
				cfg.SetReportOutput(opts.Output)
			}
			if cmd.Flags().Changed("database-type") {
				cfg.SetReportDatabaseType(opts.DatabaseType)
			}
			if cmd.Flags().Changed("metrics-file") {
				cfg.SetReportMetricsFile(opts.MetricsFile)
			}
			opts.Paths = args

			return runReport(ctx, logger, cfg, opts.Save, opts.Paths, provider, cmd.OutOrStdout())
		},
	}

	reportCmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: json, sarif or text (default from config: json)")
	reportCmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output file, or directory when several files are given. Defaults to stdout.")
	reportCmd.Flags().StringVar(&opts.DatabaseType, "database-type", "", "Database type recorded in the report metadata")
	reportCmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics for this run to a textfile")
	reportCmd.Flags().BoolVar(&opts.Save, "save", false, "Store the reports in the history database")

	return reportCmd
}

// engineConfig converts the loaded engine settings into the engine's own
// configuration type.
func engineConfig(ec config.EngineConfig) results.Config {
	weights := make(map[string]float64, len(ec.Weights))
	for dim, w := range ec.Weights {
		weights[dim] = w
	}
	return results.Config{
		Weights: weights,
		PriorityFactors: results.PriorityFactors{
			Severity: ec.PriorityFactors.Severity,
			Impact:   ec.PriorityFactors.Impact,
			Effort:   ec.PriorityFactors.Effort,
		},
		SimilarityThreshold: ec.SimilarityThreshold,
		DimensionOrder:      append([]string(nil), ec.DimensionOrder...),
	}
}

// runReport contains the core, testable logic of the report command.
func runReport(
	ctx context.Context,
	logger *zap.Logger,
	cfg config.Interface,
	save bool,
	paths []string,
	provider storeProvider,
	stdout io.Writer,
) error {
	reportCfg := cfg.Report()
	if _, err := reporting.Extension(reportCfg.Format); err != nil {
		return err
	}

	logger.Info("Starting report generation", zap.Int("files", len(paths)), zap.String("format", reportCfg.Format))

	batches, err := ingest.LoadAll(ctx, paths, reportCfg.Concurrency)
	if err != nil {
		return fmt.Errorf("failed to load analysis results: %w", err)
	}

	m := metrics.New()
	engine := results.NewEngine(engineConfig(cfg.Engine()), logger, results.WithRecorder(m))

	reports := make([]*schemas.IntegratedReport, len(batches))
	for i, batch := range batches {
		dbType := batch.DatabaseType
		if dbType == "" {
			dbType = reportCfg.DatabaseType
		}
		reports[i] = engine.Generate(batch.Results, schemas.ReportRequest{
			DatabaseType: dbType,
			RequestID:    batch.RequestID,
		})
		logger.Info("Report generated",
			zap.String("file", batch.Path),
			zap.String("request_id", reports[i].Metadata.RequestID),
			zap.Int("overall_score", reports[i].OverallScore),
			zap.String("risk_level", string(reports[i].RiskLevel)),
		)
	}

	if err := writeReports(reportCfg, batches, reports, stdout); err != nil {
		return err
	}

	if save {
		if err := saveReports(ctx, logger, cfg, provider, reports); err != nil {
			return err
		}
	}

	if reportCfg.MetricsFile != "" {
		path, err := homedir.Expand(reportCfg.MetricsFile)
		if err != nil {
			return fmt.Errorf("failed to expand metrics path %s: %w", reportCfg.MetricsFile, err)
		}
		if err := m.WriteTextfile(path); err != nil {
			return err
		}
		logger.Debug("Metrics written", zap.String("path", path))
	}
	return nil
}

// writeReports renders every report. A single input goes to the output file
// or stdout. Several inputs go to one file each inside the output directory,
// or all to stdout when no output is set.
func writeReports(reportCfg config.ReportConfig, batches []*ingest.Batch, reports []*schemas.IntegratedReport, stdout io.Writer) error {
	if reportCfg.Output == "" || reportCfg.Output == "stdout" {
		reporter, err := reporting.NewWithWriter(reportCfg.Format, reporting.NopCloser(stdout), Version)
		if err != nil {
			return err
		}
		return writeAndClose(reporter, reports...)
	}

	if len(reports) == 1 {
		reporter, err := reporting.New(reportCfg.Format, reportCfg.Output, Version)
		if err != nil {
			return err
		}
		return writeAndClose(reporter, reports[0])
	}

	dir, err := homedir.Expand(reportCfg.Output)
	if err != nil {
		return fmt.Errorf("failed to expand output path %s: %w", reportCfg.Output, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	ext, err := reporting.Extension(reportCfg.Format)
	if err != nil {
		return err
	}
	for i, name := range outputNames(batches, ext) {
		reporter, err := reporting.New(reportCfg.Format, filepath.Join(dir, name), Version)
		if err != nil {
			return err
		}
		if err := writeAndClose(reporter, reports[i]); err != nil {
			return err
		}
	}
	return nil
}

// outputNames derives one file name per batch from its input's base name.
// Inputs sharing a base name get a numeric suffix so no report overwrites
// another.
func outputNames(batches []*ingest.Batch, ext string) []string {
	names := make([]string, len(batches))
	taken := make(map[string]bool, len(batches))
	for i, batch := range batches {
		base := strings.TrimSuffix(filepath.Base(batch.Path), filepath.Ext(batch.Path))
		name := base + ext
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s-%d%s", base, n, ext)
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

func writeAndClose(reporter reporting.Reporter, reports ...*schemas.IntegratedReport) error {
	for _, report := range reports {
		if err := reporter.Write(report); err != nil {
			_ = reporter.Close()
			return fmt.Errorf("failed to render report: %w", err)
		}
	}
	if err := reporter.Close(); err != nil {
		return fmt.Errorf("failed to finalize report output: %w", err)
	}
	return nil
}

func saveReports(ctx context.Context, logger *zap.Logger, cfg config.Interface, provider storeProvider, reports []*schemas.IntegratedReport) error {
	storeService, cleanup, err := provider.Create(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	// Mocks may not provide a cleanup function.
	if cleanup != nil {
		defer cleanup()
	}

	for _, report := range reports {
		if err := storeService.SaveReport(ctx, report); err != nil {
			return err
		}
		logger.Info("Report saved to history", zap.String("request_id", report.Metadata.RequestID))
	}
	return nil
}
