// File: api/schemas/analysis.go
package schemas

import (
	"math"

	json "github.com/json-iterator/go"
)

// AnalysisResults is the input to report generation: one entry per analysis
// dimension, keyed by dimension name. A nil entry means the dimension was
// present in the input but carried no result.
type AnalysisResults map[string]*AnalysisResult

// AnalysisResult is the outcome of one dimension analyzer.
type AnalysisResult struct {
	Success bool          `json:"success"`
	Data    *AnalysisData `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Usable reports whether the result can contribute to a report.
func (r *AnalysisResult) Usable() bool {
	return r != nil && r.Success && r.Data != nil
}

// UnmarshalJSON decodes a dimension result leniently. Fields of the wrong
// type are treated as absent instead of failing the whole document.
func (r *AnalysisResult) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = AnalysisResult{}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	if success, ok := obj["success"].(bool); ok {
		r.Success = success
	}
	if msg, ok := obj["error"].(string); ok {
		r.Error = msg
	}
	if data, ok := obj["data"].(map[string]any); ok {
		r.Data = AnalysisDataFromMap(data)
	}
	return nil
}

// Recommendation is a recommendation as an analyzer emitted it, before any
// normalization. Every field may be empty or hold an out-of-range value.
type Recommendation struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Effort      string `json:"effort,omitempty"`
	Category    string `json:"category,omitempty"`
	Severity    string `json:"severity,omitempty"`
}

// AnalysisData is the payload of a successful dimension result.
//
// Score, Recommendations and Veto are the fields the engine reads. Fields
// holds every key of the decoded payload, including ones the engine does not
// understand, so that dimension summaries can pass them through unchanged.
type AnalysisData struct {
	Score           *float64
	Recommendations []Recommendation
	Veto            bool
	Fields          map[string]any
}

// AnalysisDataFromMap builds AnalysisData from a decoded JSON object.
// The map is retained as Fields and must not be mutated afterwards.
func AnalysisDataFromMap(m map[string]any) *AnalysisData {
	d := &AnalysisData{Fields: m}
	if score, ok := toFloat(m["score"]); ok {
		d.Score = &score
	}
	// Only a literal boolean true vetoes; "true", 1 and friends do not.
	if veto, ok := m["veto"].(bool); ok && veto {
		d.Veto = true
	}
	if items, ok := m["recommendations"].([]any); ok {
		d.Recommendations = make([]Recommendation, 0, len(items))
		for _, item := range items {
			switch v := item.(type) {
			case map[string]any:
				d.Recommendations = append(d.Recommendations, Recommendation{
					Title:       stringField(v, "title"),
					Description: stringField(v, "description"),
					Impact:      stringField(v, "impact"),
					Effort:      stringField(v, "effort"),
					Category:    stringField(v, "category"),
					Severity:    stringField(v, "severity"),
				})
			case string:
				d.Recommendations = append(d.Recommendations, Recommendation{Title: v})
			}
		}
	}
	return d
}

// UnmarshalJSON decodes a payload leniently; a non-object payload yields an
// empty AnalysisData.
func (d *AnalysisData) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		*d = AnalysisData{}
		return nil
	}
	*d = *AnalysisDataFromMap(obj)
	return nil
}

// MarshalJSON writes the passthrough fields overlaid with the typed ones.
func (d AnalysisData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Flatten())
}

// Flatten returns a fresh map holding Fields with the typed fields applied
// on top. The result is safe to mutate.
func (d AnalysisData) Flatten() map[string]any {
	out := make(map[string]any, len(d.Fields)+3)
	for k, v := range d.Fields {
		out[k] = v
	}
	if d.Score != nil {
		out["score"] = *d.Score
	}
	if d.Recommendations != nil {
		out["recommendations"] = d.Recommendations
	}
	if d.Veto {
		out["veto"] = true
	}
	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
