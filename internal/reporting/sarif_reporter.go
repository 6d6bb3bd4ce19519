// internal/reporting/sarif_reporter.go
package reporting

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/observability"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/reporting/sarif"
)

// Constants for tool identification in the SARIF report.
const (
	ToolName     = "sqlanalyzer"
	ToolInfoURI  = "https://github.com/sewardsheng/sql-analyzer-cli-sub008"
	SARIFVersion = "2.1.0"
	SARIFSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"

	rulePrefix      = "SQLA-"
	fingerprintName = "recommendation/v1"
)

// ruleIDSanitizer matches runs of characters not allowed in rule IDs. Each
// run collapses to a single hyphen.
var ruleIDSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_.]+`)

// RuleFingerprint identifies a rule definition by its content.
type RuleFingerprint string

// calculateFingerprint hashes the fields that define a recommendation rule.
// Severity and priority vary per result and are not hashed.
func calculateFingerprint(rec schemas.PrioritizedRecommendation) RuleFingerprint {
	data := struct {
		Title       string
		Description string
		Category    string
	}{
		Title:       rec.Title,
		Description: rec.Description,
		Category:    rec.Category,
	}

	h := sha1.New()
	_ = json.NewEncoder(h).Encode(data)
	return RuleFingerprint(hex.EncodeToString(h.Sum(nil)))
}

// runState tracks rule registration within one run.
type runState struct {
	run                *sarif.Run
	rulesByFingerprint map[RuleFingerprint]string
	ruleIDUsage        map[string]int
}

// SARIFReporter implements the Reporter interface for the SARIF 2.1.0 format.
// Every report becomes its own run. It is thread safe.
type SARIFReporter struct {
	writer      io.WriteCloser
	logger      *zap.Logger
	toolVersion string
	log         *sarif.Log
	// mu protects the log structure.
	mu sync.Mutex
}

// NewSARIFReporter creates a new reporter that writes SARIF output.
func NewSARIFReporter(writer io.WriteCloser, toolVersion string) *SARIFReporter {
	return &SARIFReporter{
		writer:      writer,
		logger:      observability.GetLogger().Named("sarif_reporter"),
		toolVersion: toolVersion,
		log: &sarif.Log{
			Version: SARIFVersion,
			Schema:  SARIFSchema,
			// Initialize empty slices (not nil) for proper JSON marshalling
			Runs: []*sarif.Run{},
		},
	}
}

// Write converts a report into a SARIF run with one result per prioritized
// recommendation.
func (r *SARIFReporter) Write(report *schemas.IntegratedReport) error {
	if report == nil {
		return errNilReport
	}
	startTime := time.Now()

	state := &runState{
		run:                r.newRun(report),
		rulesByFingerprint: make(map[RuleFingerprint]string),
		ruleIDUsage:        make(map[string]int),
	}

	for _, rec := range report.Recommendations {
		ruleID := r.ensureRule(state, rec)

		messageText := rec.Description
		if messageText == "" {
			messageText = rec.Title
		}
		rank := float64(rec.Priority)

		state.run.Results = append(state.run.Results, &sarif.Result{
			RuleID:              ruleID,
			Message:             &sarif.Message{Text: pString(messageText)},
			Level:               mapSeverityToSARIFLevel(rec.Severity),
			Rank:                &rank,
			Locations:           createLocations(rec),
			PartialFingerprints: map[string]string{fingerprintName: string(calculateFingerprint(rec))},
			Properties: &sarif.PropertyBag{
				"recommendationId": rec.ID,
				"priority":         rec.Priority,
				"phase":            string(rec.Phase),
				"severity":         string(rec.Severity),
				"impact":           string(rec.Impact),
				"effort":           string(rec.Effort),
				"category":         rec.Category,
				"sources":          rec.Sources,
				"mergedFrom":       rec.MergedFrom,
			},
		})
	}

	r.mu.Lock()
	r.log.Runs = append(r.log.Runs, state.run)
	r.mu.Unlock()

	r.logger.Debug("Wrote report to SARIF buffer",
		zap.String("request_id", report.Metadata.RequestID),
		zap.Int("results_count", len(state.run.Results)),
		zap.Int("rules_count", len(state.run.Tool.Driver.Rules)),
		zap.Duration("duration_ms", time.Since(startTime)),
	)
	return nil
}

func (r *SARIFReporter) newRun(report *schemas.IntegratedReport) *sarif.Run {
	invocation := &sarif.Invocation{
		ExecutionSuccessful: report.Metadata.Error == "",
		StartTimeUTC:        report.Metadata.Timestamp,
	}
	if report.Metadata.Error != "" {
		invocation.ExitCodeDescription = report.Metadata.Error
	} else if report.Metadata.Reason != "" {
		invocation.ExitCodeDescription = report.Metadata.Reason
	}

	return &sarif.Run{
		Tool: &sarif.Tool{
			Driver: &sarif.ToolComponent{
				Name:           ToolName,
				Version:        pString(r.toolVersion),
				InformationURI: pString(ToolInfoURI),
				Rules:          []*sarif.ReportingDescriptor{},
			},
		},
		Invocations: []*sarif.Invocation{invocation},
		Results:     []*sarif.Result{},
		Properties: &sarif.PropertyBag{
			"requestId":     report.Metadata.RequestID,
			"databaseType":  report.Metadata.DatabaseType,
			"engineVersion": report.Metadata.EngineVersion,
			"overallScore":  report.OverallScore,
			"riskLevel":     string(report.RiskLevel),
			"securityVeto":  report.SecurityVeto,
		},
	}
}

// Close finalizes the SARIF log and writes it to the output writer.
func (r *SARIFReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug("Finalizing SARIF report", zap.Int("total_runs", len(r.log.Runs)))

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")

	encodeErr := encoder.Encode(r.log)
	// Always attempt to close the writer, regardless of encoding success.
	closeErr := r.writer.Close()

	if encodeErr != nil {
		r.logger.Error("Failed to encode SARIF log to JSON", zap.Error(encodeErr))
		return fmt.Errorf("failed to encode SARIF output: %w", encodeErr)
	}
	if closeErr != nil {
		r.logger.Error("Failed to close output writer", zap.Error(closeErr))
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}
	return nil
}

// sanitizeRuleName creates a standardized base name for the rule ID.
func sanitizeRuleName(name string) string {
	sanitized := strings.Trim(ruleIDSanitizer.ReplaceAllString(strings.ToUpper(name), "-"), "-")
	if sanitized == "" {
		return "UNNAMED-RECOMMENDATION"
	}
	return sanitized
}

// ensureRule returns the rule ID for rec, registering a new rule the first
// time a fingerprint is seen in the run.
func (r *SARIFReporter) ensureRule(state *runState, rec schemas.PrioritizedRecommendation) string {
	fingerprint := calculateFingerprint(rec)
	if ruleID, exists := state.rulesByFingerprint[fingerprint]; exists {
		return ruleID
	}

	baseRuleID := rulePrefix + sanitizeRuleName(rec.Category) + "-" + sanitizeRuleName(rec.Title)
	usageCount := state.ruleIDUsage[baseRuleID]
	state.ruleIDUsage[baseRuleID] = usageCount + 1

	finalRuleID := baseRuleID
	if usageCount > 0 {
		finalRuleID = fmt.Sprintf("%s-%d", baseRuleID, usageCount)
		r.logger.Debug("Rule ID collision detected, generated new ID with suffix",
			zap.String("base_id", baseRuleID),
			zap.String("final_id", finalRuleID),
		)
	}

	markdownHelp := fmt.Sprintf("**Recommendation:** %s\n\n**Category:** %s\n\n**Details:**\n%s",
		rec.Title, rec.Category, rec.Description)

	driver := state.run.Tool.Driver
	driver.Rules = append(driver.Rules, &sarif.ReportingDescriptor{
		ID:               finalRuleID,
		Name:             pString(rec.Title),
		ShortDescription: &sarif.MultiformatMessageString{Text: pString(rec.Title)},
		FullDescription:  &sarif.MultiformatMessageString{Text: pString(rec.Description)},
		Help: &sarif.MultiformatMessageString{
			Text:     pString(rec.Description),
			Markdown: pString(markdownHelp),
		},
		DefaultConfiguration: &sarif.ReportingConfiguration{Level: mapSeverityToSARIFLevel(rec.Severity)},
		Properties: &sarif.PropertyBag{
			"tags": []string{"sql", rec.Category},
		},
	})
	state.rulesByFingerprint[fingerprint] = finalRuleID
	return finalRuleID
}

// createLocations points a result at the dimensions that raised it.
func createLocations(rec schemas.PrioritizedRecommendation) []*sarif.Location {
	locations := make([]*sarif.Location, 0, len(rec.Sources))
	for _, source := range rec.Sources {
		locations = append(locations, &sarif.Location{
			LogicalLocations: []*sarif.LogicalLocation{{
				Name: pString(source),
				Kind: pString("analysisDimension"),
			}},
			Message: &sarif.Message{Text: pString(fmt.Sprintf("Raised by %s analysis", source))},
		})
	}
	return locations
}

// mapSeverityToSARIFLevel converts a recommendation severity to the SARIF level.
func mapSeverityToSARIFLevel(severity schemas.Severity) sarif.Level {
	switch severity {
	case schemas.SeverityCritical, schemas.SeverityHigh:
		return sarif.LevelError
	case schemas.SeverityMedium:
		return sarif.LevelWarning
	default:
		return sarif.LevelNote
	}
}

// pString returns a pointer to the given string value. Helper for optional SARIF fields.
func pString(s string) *string {
	return &s
}
