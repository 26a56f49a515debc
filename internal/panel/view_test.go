package panel

import (
	"fmt"
	"strings"
	"testing"

	"github.com/oukeidos/vidlens/internal/apperrors"
)

// recordingFormatter captures the payload it was last asked to render.
type recordingFormatter struct {
	lastPayload map[string]any
	calls       int
}

func (r *recordingFormatter) format(data map[string]any) string {
	r.lastPayload = data
	r.calls++
	return fmt.Sprintf("report #%d", r.calls)
}

func TestOnProgress_CollectingAppendsLog(t *testing.T) {
	v := NewResultView((&recordingFormatter{}).format)

	v.OnProgress(ProgressEvent{Status: "starting", Message: "Chuẩn bị phân tích"})
	v.OnProgress(ProgressEvent{Status: StatusCollecting, Message: "Đang thu thập", CurrentItem: "video A"})
	v.OnProgress(ProgressEvent{Status: StatusCollecting, Message: "Đang thu thập", CurrentItem: "video B"})
	v.OnProgress(ProgressEvent{Status: StatusCollecting, Message: "Đang thu thập"}) // no item, no log line
	v.OnProgress(ProgressEvent{Status: "scoring", Message: "Đang chấm điểm"})

	if v.State() != StateRunning {
		t.Errorf("expected running state, got %v", v.State())
	}
	if v.StatusLine() != "Đang chấm điểm" {
		t.Errorf("unexpected status line %q", v.StatusLine())
	}
	log := v.Log()
	if len(log) != 2 {
		t.Fatalf("expected 2 log lines, got %v", log)
	}
	if !strings.Contains(log[0], "video A") || !strings.Contains(log[1], "video B") {
		t.Errorf("log lines out of order: %v", log)
	}
}

func TestOnComplete_SuccessStoresAndRenders(t *testing.T) {
	rf := &recordingFormatter{}
	v := NewResultView(rf.format)

	v.OnComplete(Completion{
		Status: "success",
		Data:   map[string]any{"summary": map[string]any{"total_videos": 3.0}},
	})

	if v.State() != StateSuccess {
		t.Fatalf("expected success state, got %v", v.State())
	}
	if !v.HasPayload() {
		t.Fatal("expected active payload")
	}
	if rf.calls != 1 {
		t.Errorf("expected one render, got %d", rf.calls)
	}
	if v.Rendered() == "" {
		t.Error("expected rendered report")
	}
}

func TestOnComplete_ErrorAppendsLog(t *testing.T) {
	v := NewResultView((&recordingFormatter{}).format)

	v.OnComplete(Completion{Status: "error", Error: "quota exceeded"})

	if v.State() != StateError {
		t.Fatalf("expected error state, got %v", v.State())
	}
	log := v.Log()
	if len(log) != 1 || !strings.Contains(log[0], "quota exceeded") {
		t.Errorf("expected error log line, got %v", log)
	}
	if v.HasPayload() {
		t.Error("error completion must not install a payload")
	}
}

func TestOnComplete_ReentrantReplacesPayload(t *testing.T) {
	rf := &recordingFormatter{}
	v := NewResultView(rf.format)
	engine := NewEngine(v)

	v.OnComplete(Completion{Status: "success", Data: map[string]any{"run": "first"}})
	if _, err := engine.Analyze("viral check"); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(v.Requirements()) != 1 {
		t.Fatalf("expected 1 requirement, got %d", len(v.Requirements()))
	}

	// A second completion reinitializes without an explicit reset; the
	// requirement log belongs to the replaced payload and goes with it.
	v.OnComplete(Completion{Status: "success", Data: map[string]any{"run": "second"}})
	if len(v.Requirements()) != 0 {
		t.Errorf("expected requirement log cleared, got %v", v.Requirements())
	}
	if rf.lastPayload["run"] != "second" {
		t.Errorf("expected new payload active, got %v", rf.lastPayload)
	}
}

func TestImportPayload_EnvelopeForwardedVerbatim(t *testing.T) {
	rf := &recordingFormatter{}
	v := NewResultView(rf.format)

	doc := `{"status": "success", "data": {"summary": {"total_videos": 2}}, "viral_score": 91.5}`
	if err := v.ImportPayload([]byte(doc)); err != nil {
		t.Fatalf("ImportPayload failed: %v", err)
	}

	if v.State() != StateSuccess {
		t.Fatalf("expected success state, got %v", v.State())
	}
	if got := rf.lastPayload["viral_score"]; got != 91.5 {
		t.Errorf("expected envelope viral score forwarded, got %v", got)
	}

	// An error envelope must behave exactly like an OnComplete error call.
	errDoc := `{"status": "error", "data": {}, "error": "collector crashed"}`
	if err := v.ImportPayload([]byte(errDoc)); err != nil {
		t.Fatalf("ImportPayload failed: %v", err)
	}
	if v.State() != StateError {
		t.Errorf("expected error state, got %v", v.State())
	}
}

func TestImportPayload_BareMappingViralScore(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want float64
	}{
		{"explicit score", `{"viral_score": 42}`, 42},
		{"defaulted score", `{"summary": {}}`, DefaultViralScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rf := &recordingFormatter{}
			v := NewResultView(rf.format)

			if err := v.ImportPayload([]byte(tt.doc)); err != nil {
				t.Fatalf("ImportPayload failed: %v", err)
			}
			if got := rf.lastPayload["viral_score"]; got != tt.want {
				t.Errorf("expected viral score %v, got %v", tt.want, got)
			}
		})
	}
}

func TestImportPayload_Malformed(t *testing.T) {
	v := NewResultView((&recordingFormatter{}).format)

	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{broken`},
		{"array", `[1, 2, 3]`},
		{"scalar", `"just a string"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.ImportPayload([]byte(tt.doc)); !apperrors.Is(err, apperrors.KindFormat) {
				t.Errorf("expected format error, got %v", err)
			}
		})
	}
	if v.State() != StateIdle {
		t.Errorf("failed imports must not change state, got %v", v.State())
	}
}

func TestImportPayload_RestoresRequirements(t *testing.T) {
	rf := &recordingFormatter{}
	v := NewResultView(rf.format)

	doc := `{"summary": {}, "additional_requirements": [
		{"requirement": "xu hướng", "timestamp": "2026-05-01T10:00:00Z", "analysis": "kết quả"}
	]}`
	if err := v.ImportPayload([]byte(doc)); err != nil {
		t.Fatalf("ImportPayload failed: %v", err)
	}
	reqs := v.Requirements()
	if len(reqs) != 1 || reqs[0].Requirement != "xu hướng" {
		t.Fatalf("expected restored requirement log, got %+v", reqs)
	}
}

func TestExportJSON(t *testing.T) {
	v := NewResultView((&recordingFormatter{}).format)

	if _, err := v.ExportJSON(); !apperrors.Is(err, apperrors.KindNoPayload) {
		t.Fatalf("expected no payload error, got %v", err)
	}

	v.OnComplete(Completion{Status: "success", Data: map[string]any{"summary": map[string]any{}}})
	engine := NewEngine(v)
	if _, err := engine.Analyze("pattern công thức"); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	data, err := v.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	if !strings.Contains(string(data), "additional_requirements") {
		t.Errorf("export missing requirement log:\n%s", data)
	}

	// The export must reload through ImportPayload with the log intact.
	fresh := NewResultView((&recordingFormatter{}).format)
	if err := fresh.ImportPayload(data); err != nil {
		t.Fatalf("reimport failed: %v", err)
	}
	if len(fresh.Requirements()) != 1 {
		t.Errorf("expected requirement log after reimport, got %+v", fresh.Requirements())
	}
}
