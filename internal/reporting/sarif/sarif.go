package sarif

// This file defines the Go structs for the SARIF 2.1.0 standard.
// Pointers are used for optional fields. Required fields use value types.

type Log struct {
	Version string `json:"version"`
	Schema  string `json:"$schema"`
	Runs    []*Run `json:"runs"`
}

type Run struct {
	Tool        *Tool         `json:"tool"`
	Invocations []*Invocation `json:"invocations,omitempty"`
	Results     []*Result     `json:"results"`
	Properties  *PropertyBag  `json:"properties,omitempty"`
}

type Tool struct {
	Driver *ToolComponent `json:"driver"`
}

// ToolComponent describes the tool that produced the results. Pointers are used for optional bits.
type ToolComponent struct {
	Name           string                 `json:"name"`
	Version        *string                `json:"version,omitempty"`
	InformationURI *string                `json:"informationUri,omitempty"`
	Rules          []*ReportingDescriptor `json:"rules,omitempty"`
}

// Invocation records whether the run completed.
type Invocation struct {
	ExecutionSuccessful bool   `json:"executionSuccessful"`
	StartTimeUTC        string `json:"startTimeUtc,omitempty"`
	ExitCodeDescription string `json:"exitCodeDescription,omitempty"`
}

type ReportingDescriptor struct {
	ID                   string                    `json:"id"` // Required
	Name                 *string                   `json:"name,omitempty"`
	ShortDescription     *MultiformatMessageString `json:"shortDescription,omitempty"`
	FullDescription      *MultiformatMessageString `json:"fullDescription,omitempty"`
	Help                 *MultiformatMessageString `json:"help,omitempty"`
	DefaultConfiguration *ReportingConfiguration   `json:"defaultConfiguration,omitempty"`
	Properties           *PropertyBag              `json:"properties,omitempty"`
}

type ReportingConfiguration struct {
	Level Level `json:"level,omitempty"`
}

type Result struct {
	RuleID              string            `json:"ruleId"` // Required
	Message             *Message          `json:"message"`
	Level               Level             `json:"level,omitempty"`
	Rank                *float64          `json:"rank,omitempty"`
	Locations           []*Location       `json:"locations,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
	Properties          *PropertyBag      `json:"properties,omitempty"`
}

type Location struct {
	LogicalLocations []*LogicalLocation `json:"logicalLocations,omitempty"`
	Message          *Message           `json:"message,omitempty"`
}

// LogicalLocation names the analysis dimension a result came from.
type LogicalLocation struct {
	Name *string `json:"name,omitempty"`
	Kind *string `json:"kind,omitempty"`
}

type Message struct {
	Text *string `json:"text,omitempty"`
}

type MultiformatMessageString struct {
	Text     *string `json:"text"`
	Markdown *string `json:"markdown,omitempty"`
}

type PropertyBag map[string]interface{}

type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelNote    Level = "note"
)
