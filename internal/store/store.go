package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
)

// ErrReportNotFound is returned by GetReport for an unknown request ID.
var ErrReportNotFound = errors.New("report not found")

// DefaultListLimit applies when ListReports is called without a positive limit.
const DefaultListLimit = 20

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	sqlCreateTable = `
        CREATE TABLE IF NOT EXISTS analysis_reports (
            id UUID PRIMARY KEY,
            request_id TEXT NOT NULL UNIQUE,
            database_type TEXT NOT NULL,
            overall_score INTEGER NOT NULL,
            risk_level TEXT NOT NULL,
            security_veto BOOLEAN NOT NULL,
            recommendations_count INTEGER NOT NULL,
            report JSONB NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        );
    `
	sqlCreateIndex = `
        CREATE INDEX IF NOT EXISTS analysis_reports_created_at_idx
            ON analysis_reports (created_at DESC);
    `
	sqlUpsertReport = `
        INSERT INTO analysis_reports (id, request_id, database_type, overall_score, risk_level, security_veto, recommendations_count, report, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (request_id) DO UPDATE SET
            database_type = EXCLUDED.database_type,
            overall_score = EXCLUDED.overall_score,
            risk_level = EXCLUDED.risk_level,
            security_veto = EXCLUDED.security_veto,
            recommendations_count = EXCLUDED.recommendations_count,
            report = EXCLUDED.report,
            created_at = EXCLUDED.created_at;
    `
	sqlListReports = `
        SELECT request_id, database_type, overall_score, risk_level, security_veto, recommendations_count, created_at
        FROM analysis_reports
        ORDER BY created_at DESC
        LIMIT $1;
    `
	sqlGetReport = `
        SELECT report
        FROM analysis_reports
        WHERE request_id = $1;
    `
)

// Store keeps a history of generated reports in PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
	now  func() time.Time
}

var _ schemas.ReportStore = (*Store)(nil)

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
		now:  time.Now,
	}, nil
}

// EnsureSchema creates the history table and its index if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback after a successful commit returns pgx.ErrTxClosed, which is expected.
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	if _, err := tx.Exec(ctx, sqlCreateTable); err != nil {
		return fmt.Errorf("failed to create analysis_reports table: %w", err)
	}
	if _, err := tx.Exec(ctx, sqlCreateIndex); err != nil {
		return fmt.Errorf("failed to create analysis_reports index: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveReport stores report, replacing an earlier one with the same request ID.
func (s *Store) SaveReport(ctx context.Context, report *schemas.IntegratedReport) error {
	if report == nil {
		return errors.New("cannot save a nil report")
	}
	if report.Metadata.RequestID == "" {
		return errors.New("cannot save a report without a request ID")
	}

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", report.Metadata.RequestID, err)
	}

	_, err = s.pool.Exec(ctx, sqlUpsertReport,
		uuid.New(),
		report.Metadata.RequestID,
		report.Metadata.DatabaseType,
		report.OverallScore,
		string(report.RiskLevel),
		report.SecurityVeto,
		len(report.Recommendations),
		body,
		s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.Metadata.RequestID, err)
	}

	s.log.Debug("Saved report", zap.String("request_id", report.Metadata.RequestID))
	return nil
}

// ListReports returns up to limit report summaries, newest first.
func (s *Store) ListReports(ctx context.Context, limit int) ([]schemas.ReportRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.pool.Query(ctx, sqlListReports, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	records := []schemas.ReportRecord{}
	for rows.Next() {
		var r schemas.ReportRecord
		var risk string
		if err := rows.Scan(
			&r.RequestID, &r.DatabaseType, &r.OverallScore, &risk,
			&r.SecurityVeto, &r.RecommendationsCount, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		r.RiskLevel = schemas.RiskLevel(risk)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return records, nil
}

// GetReport loads the full report stored under requestID.
func (s *Store) GetReport(ctx context.Context, requestID string) (*schemas.IntegratedReport, error) {
	var body []byte
	if err := s.pool.QueryRow(ctx, sqlGetReport, requestID).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrReportNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to load report %s: %w", requestID, err)
	}

	var report schemas.IntegratedReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", requestID, err)
	}
	return &report, nil
}
