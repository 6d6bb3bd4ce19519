// File: internal/results/engine.go
package results

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
)

// TimestampLayout is the ISO-8601 layout used for report timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Failure kinds passed to Recorder.ObserveFailure.
const (
	FailureEmpty = "empty"
	FailurePanic = "panic"
	FailureError = "error"
)

// Engine aggregates per-dimension analysis results into an integrated
// report. It holds no per-call state and is safe for concurrent use.
type Engine struct {
	cfg      Config
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time
	newID    func() string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRecorder attaches a telemetry sink.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithClock overrides the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides how request IDs are generated when the caller
// does not supply one.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// NewEngine creates an engine. Invalid configuration values are replaced by
// defaults and logged as warnings; construction never fails.
func NewEngine(cfg Config, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("report_engine")

	sanitized, notes := cfg.sanitize()
	for _, note := range notes {
		logger.Warn("Engine configuration corrected", zap.String("detail", note))
	}

	e := &Engine{
		cfg:    sanitized,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns a copy of the effective configuration.
func (e *Engine) Config() Config {
	c := e.cfg
	c.Weights = make(map[string]float64, len(e.cfg.Weights))
	for k, v := range e.cfg.Weights {
		c.Weights[k] = v
	}
	c.DimensionOrder = append([]string(nil), e.cfg.DimensionOrder...)
	return c
}

// Generate builds the integrated report for one request. It never panics and
// never returns nil: an input without any usable dimension yields an empty
// report with risk level "unknown", and any internal failure yields an error
// report with risk level "critical" and the message in metadata.error.
func (e *Engine) Generate(results schemas.AnalysisResults, req schemas.ReportRequest) (report *schemas.IntegratedReport) {
	start := time.Now()
	requestID := req.RequestID

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Report generation panicked",
				zap.String("request_id", requestID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			report = e.errorReport(req, requestID, fmt.Errorf("report generation panicked: %v", r))
			e.observeFailure(FailurePanic)
		}
		if report != nil {
			e.observeReport(report.RiskLevel, time.Since(start))
		}
	}()

	if requestID == "" {
		requestID = e.newID()
	}
	logger := e.logger.With(zap.String("request_id", requestID))

	if !anyUsable(results) {
		logger.Warn("No successful analysis results; returning empty report",
			zap.Int("dimensions", len(results)))
		e.observeFailure(FailureEmpty)
		return e.emptyReport(results, req, requestID)
	}

	report, err := e.assemble(results, req, requestID)
	if err != nil {
		logger.Error("Report assembly failed", zap.Error(err))
		e.observeFailure(FailureError)
		return e.errorReport(req, requestID, err)
	}

	logger.Info("Integrated report generated",
		zap.Int("overall_score", report.OverallScore),
		zap.String("risk_level", string(report.RiskLevel)),
		zap.Bool("security_veto", report.SecurityVeto),
		zap.Int("recommendations", len(report.Recommendations)))
	return report
}

// assemble runs the recommendation pipeline and the risk aggregation and
// composes their outputs.
func (e *Engine) assemble(results schemas.AnalysisResults, req schemas.ReportRequest, requestID string) (*schemas.IntegratedReport, error) {
	extracted := Extract(results, e.cfg.DimensionOrder)
	unique := Deduplicate(extracted)
	prioritized := Prioritize(unique, e.cfg.PriorityFactors)
	plan := Plan(prioritized)

	if plan.Len() != len(unique) {
		return nil, fmt.Errorf("implementation plan holds %d recommendations, expected %d", plan.Len(), len(unique))
	}
	e.observeRecommendations(len(extracted), len(unique))

	risk := AggregateRisk(results, e.cfg.Weights)
	meta := e.metadata(results, req, requestID)
	meta.LowestScore = risk.LowestScore
	meta.TotalRecommendations = len(extracted)
	meta.UniqueRecommendations = len(unique)

	return &schemas.IntegratedReport{
		OverallScore:       risk.OverallScore,
		RiskLevel:          risk.RiskLevel,
		SecurityVeto:       risk.SecurityVeto,
		Summary:            Summarize(results),
		Recommendations:    prioritized,
		ImplementationPlan: plan,
		Metadata:           meta,
	}, nil
}

func (e *Engine) emptyReport(results schemas.AnalysisResults, req schemas.ReportRequest, requestID string) *schemas.IntegratedReport {
	meta := e.metadata(results, req, requestID)
	meta.Reason = "no successful analysis results"
	return &schemas.IntegratedReport{
		RiskLevel:          schemas.RiskUnknown,
		Summary:            Summarize(results),
		Recommendations:    []schemas.PrioritizedRecommendation{},
		ImplementationPlan: emptyPlan(),
		Metadata:           meta,
	}
}

// errorReport must not depend on anything that could have caused the
// failure, so it avoids the injected clock and ID generator.
func (e *Engine) errorReport(req schemas.ReportRequest, requestID string, cause error) *schemas.IntegratedReport {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return &schemas.IntegratedReport{
		RiskLevel:          schemas.RiskCritical,
		Summary:            map[string]schemas.DimensionSummary{},
		Recommendations:    []schemas.PrioritizedRecommendation{},
		ImplementationPlan: emptyPlan(),
		Metadata: schemas.ReportMetadata{
			RequestID:            requestID,
			Timestamp:            time.Now().UTC().Format(TimestampLayout),
			DatabaseType:         req.DatabaseType,
			EngineVersion:        EngineVersion,
			DimensionsAnalyzed:   []string{},
			SuccessfulDimensions: []string{},
			FailedDimensions:     []string{},
			Error:                cause.Error(),
		},
	}
}

func (e *Engine) metadata(results schemas.AnalysisResults, req schemas.ReportRequest, requestID string) schemas.ReportMetadata {
	meta := schemas.ReportMetadata{
		RequestID:            requestID,
		Timestamp:            e.now().UTC().Format(TimestampLayout),
		DatabaseType:         req.DatabaseType,
		EngineVersion:        EngineVersion,
		DimensionsAnalyzed:   orderedDimensions(results, e.cfg.DimensionOrder),
		SuccessfulDimensions: []string{},
		FailedDimensions:     []string{},
	}
	for _, dim := range meta.DimensionsAnalyzed {
		if results[dim].Usable() {
			meta.SuccessfulDimensions = append(meta.SuccessfulDimensions, dim)
		} else {
			meta.FailedDimensions = append(meta.FailedDimensions, dim)
		}
	}
	return meta
}

func anyUsable(results schemas.AnalysisResults) bool {
	for _, res := range results {
		if res.Usable() {
			return true
		}
	}
	return false
}

func emptyPlan() schemas.ImplementationPlan {
	return schemas.ImplementationPlan{
		Immediate: []schemas.PrioritizedRecommendation{},
		ShortTerm: []schemas.PrioritizedRecommendation{},
		LongTerm:  []schemas.PrioritizedRecommendation{},
	}
}

func (e *Engine) observeReport(level schemas.RiskLevel, elapsed time.Duration) {
	e.record("ObserveReport", func(r Recorder) { r.ObserveReport(level, elapsed) })
}

func (e *Engine) observeRecommendations(extracted, unique int) {
	e.record("ObserveRecommendations", func(r Recorder) { r.ObserveRecommendations(extracted, unique) })
}

func (e *Engine) observeFailure(kind string) {
	e.record("ObserveFailure", func(r Recorder) { r.ObserveFailure(kind) })
}

// record calls the recorder and recovers any panic it raises.
func (e *Engine) record(call string, fn func(Recorder)) {
	if e.recorder == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("Metrics recorder panicked", zap.String("call", call), zap.Any("panic", r))
		}
	}()
	fn(e.recorder)
}
