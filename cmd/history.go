// File: cmd/history.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/config"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/observability"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/reporting"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/store"
)

func newHistoryCmd(provider storeProvider) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse reports saved with report --save",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent saved reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			return runHistoryList(ctx, observability.GetLogger(), cfg, provider, limit, cmd.OutOrStdout())
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultListLimit, "Maximum number of reports to list")

	var format string
	showCmd := &cobra.Command{
		Use:   "show <request-id>",
		Short: "Render a saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("format") {
				cfg.SetReportFormat(strings.ToLower(format))
			}
			return runHistoryShow(ctx, observability.GetLogger(), cfg, provider, args[0], cmd.OutOrStdout())
		},
	}
	showCmd.Flags().StringVarP(&format, "format", "f", "", "Output format: json, sarif or text (default from config)")

	historyCmd.AddCommand(listCmd, showCmd)
	return historyCmd
}

func runHistoryList(ctx context.Context, logger *zap.Logger, cfg config.Interface, provider storeProvider, limit int, out io.Writer) error {
	storeService, cleanup, err := provider.Create(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	records, err := storeService.ListReports(ctx, limit)
	if err != nil {
		return err
	}
	logger.Debug("Listed saved reports", zap.Int("count", len(records)))

	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "No saved reports.")
		return err
	}

	fmt.Fprintf(out, "%-36s  %-20s  %-12s  %5s  %-8s  %4s  %s\n", "REQUEST ID", "CREATED", "DATABASE", "SCORE", "RISK", "RECS", "VETO")
	for _, r := range records {
		veto := ""
		if r.SecurityVeto {
			veto = "yes"
		}
		if _, err := fmt.Fprintf(out, "%-36s  %-20s  %-12s  %5d  %-8s  %4d  %s\n",
			r.RequestID,
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.DatabaseType,
			r.OverallScore,
			r.RiskLevel,
			r.RecommendationsCount,
			veto,
		); err != nil {
			return err
		}
	}
	return nil
}

func runHistoryShow(ctx context.Context, logger *zap.Logger, cfg config.Interface, provider storeProvider, requestID string, out io.Writer) error {
	storeService, cleanup, err := provider.Create(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	report, err := storeService.GetReport(ctx, requestID)
	if err != nil {
		return err
	}
	logger.Debug("Loaded saved report", zap.String("request_id", requestID))

	reporter, err := reporting.NewWithWriter(cfg.Report().Format, reporting.NopCloser(out), Version)
	if err != nil {
		return err
	}
	return writeAndClose(reporter, report)
}
