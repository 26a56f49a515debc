package panel

import (
	"encoding/json"
	"fmt"

	"github.com/oukeidos/vidlens/internal/apperrors"
)

// ViewState tracks the analysis lifecycle shown in the Analysis tab.
type ViewState int

const (
	StateIdle ViewState = iota
	StateRunning
	StateSuccess
	StateError
)

// StatusCollecting marks progress events that carry a per-item line for the
// collection log.
const StatusCollecting = "collecting"

// DefaultViralScore is assumed when an imported payload has no viral_score.
const DefaultViralScore = 75.0

// ProgressEvent is pushed by the collector while an analysis runs.
type ProgressEvent struct {
	Status      string
	Message     string
	Percent     float64
	CurrentItem string
}

// Completion is the terminal event of an analysis run.
type Completion struct {
	Status     string // "success" or "error"
	Data       map[string]any
	ViralScore *float64
	Error      string
	Message    string
}

// AdditionalRequirement is one follow-up analysis, append-only once added.
type AdditionalRequirement struct {
	Requirement string `json:"requirement"`
	Timestamp   string `json:"timestamp"`
	Analysis    string `json:"analysis"`
}

// ResultView holds the active analysis payload, the collection log, and the
// requirement log, and renders them through the injected formatter.
type ResultView struct {
	formatter func(map[string]any) string

	state        ViewState
	statusLine   string
	logLines     []string
	payload      map[string]any
	requirements []AdditionalRequirement
	rendered     string
}

// NewResultView creates an idle view. The formatter turns a payload mapping
// into the displayed report text (internal/report in production).
func NewResultView(formatter func(map[string]any) string) *ResultView {
	return &ResultView{formatter: formatter}
}

// State returns the current lifecycle state.
func (v *ResultView) State() ViewState { return v.state }

// StatusLine returns the mutable current-status text.
func (v *ResultView) StatusLine() string { return v.statusLine }

// Log returns the append-only collection log.
func (v *ResultView) Log() []string {
	out := make([]string, len(v.logLines))
	copy(out, v.logLines)
	return out
}

// HasPayload reports whether an analysis payload is active.
func (v *ResultView) HasPayload() bool { return v.payload != nil }

// Rendered returns the last rendered report text.
func (v *ResultView) Rendered() string { return v.rendered }

// Requirements returns the follow-up analyses in request order.
func (v *ResultView) Requirements() []AdditionalRequirement {
	out := make([]AdditionalRequirement, len(v.requirements))
	copy(out, v.requirements)
	return out
}

// OnProgress updates the status line; collecting events with a current item
// also append to the log. The log is never truncated during a run.
func (v *ResultView) OnProgress(ev ProgressEvent) {
	v.state = StateRunning
	if ev.Message != "" {
		v.statusLine = ev.Message
	} else {
		v.statusLine = ev.Status
	}
	if ev.Status == StatusCollecting && ev.CurrentItem != "" {
		v.logLines = append(v.logLines, fmt.Sprintf("📥 %s", ev.CurrentItem))
	}
}

// OnComplete finishes a run. A success stores the payload as active and
// renders it; an error appends a line to the log and surfaces the message.
// Calling it again after completion reinitializes to the new payload; no
// explicit reset exists.
func (v *ResultView) OnComplete(res Completion) {
	if res.Status != "success" {
		reason := res.Error
		if reason == "" {
			reason = res.Message
		}
		if reason == "" {
			reason = "Unknown error"
		}
		v.state = StateError
		v.statusLine = reason
		v.logLines = append(v.logLines, fmt.Sprintf("❌ Lỗi: %s", reason))
		return
	}

	payload := make(map[string]any, len(res.Data)+1)
	for k, val := range res.Data {
		payload[k] = val
	}
	if res.ViralScore != nil {
		if _, present := payload["viral_score"]; !present {
			payload["viral_score"] = *res.ViralScore
		}
	}

	v.payload = payload
	v.requirements = requirementsFromPayload(payload)
	v.state = StateSuccess
	v.statusLine = "Hoàn thành phân tích"
	v.rendered = v.render()
}

// ImportPayload reloads a previously exported JSON document as if the run
// had just completed. A full {status, data} envelope is forwarded verbatim;
// a bare mapping is wrapped as a success with the payload's own viral_score
// or the default.
func (v *ResultView) ImportPayload(raw []byte) error {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return apperrors.Format(fmt.Errorf("imported document is not valid JSON: %w", err))
	}
	mapping, ok := decoded.(map[string]any)
	if !ok {
		return apperrors.Format(fmt.Errorf("imported document is not a JSON object"))
	}

	_, hasStatus := mapping["status"]
	_, hasData := mapping["data"]
	if hasStatus && hasData {
		v.OnComplete(completionFromEnvelope(mapping))
		return nil
	}

	score := DefaultViralScore
	if raw, present := mapping["viral_score"]; present {
		score = toFloat(raw, DefaultViralScore)
	}
	v.OnComplete(Completion{
		Status:     "success",
		Data:       mapping,
		ViralScore: &score,
	})
	return nil
}

func completionFromEnvelope(mapping map[string]any) Completion {
	res := Completion{
		Status:  stringField(mapping, "status"),
		Error:   stringField(mapping, "error"),
		Message: stringField(mapping, "message"),
	}
	if data, ok := mapping["data"].(map[string]any); ok {
		res.Data = data
	}
	if raw, present := mapping["viral_score"]; present {
		score := toFloat(raw, DefaultViralScore)
		res.ViralScore = &score
	}
	return res
}

// appendRequirement records a follow-up analysis and re-renders.
func (v *ResultView) appendRequirement(req AdditionalRequirement) string {
	v.requirements = append(v.requirements, req)
	v.rendered = v.render()
	return v.rendered
}

// render merges the requirement log into a copy of the payload under
// additional_requirements and formats it.
func (v *ResultView) render() string {
	if v.payload == nil {
		return ""
	}
	merged := make(map[string]any, len(v.payload)+1)
	for k, val := range v.payload {
		merged[k] = val
	}
	if len(v.requirements) > 0 {
		reqs := make([]map[string]any, 0, len(v.requirements))
		for _, req := range v.requirements {
			reqs = append(reqs, map[string]any{
				"requirement": req.Requirement,
				"timestamp":   req.Timestamp,
				"analysis":    req.Analysis,
			})
		}
		merged["additional_requirements"] = reqs
	} else {
		delete(merged, "additional_requirements")
	}
	return v.formatter(merged)
}

// ExportJSON serializes the active payload with the requirement log included
// so a later import restores both.
func (v *ResultView) ExportJSON() ([]byte, error) {
	if v.payload == nil {
		return nil, apperrors.NoPayload()
	}
	merged := make(map[string]any, len(v.payload)+1)
	for k, val := range v.payload {
		merged[k] = val
	}
	if len(v.requirements) > 0 {
		merged["additional_requirements"] = v.requirements
	}
	return json.MarshalIndent(merged, "", "  ")
}

func requirementsFromPayload(payload map[string]any) []AdditionalRequirement {
	raw, present := payload["additional_requirements"]
	if !present {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []AdditionalRequirement
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, AdditionalRequirement{
			Requirement: stringField(m, "requirement"),
			Timestamp:   stringField(m, "timestamp"),
			Analysis:    stringField(m, "analysis"),
		})
	}
	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func toFloat(v any, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return fallback
		}
		return f
	default:
		return fallback
	}
}
