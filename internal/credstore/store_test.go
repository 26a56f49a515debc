package credstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/oukeidos/vidlens/internal/apperrors"
)

type fakeKeyring struct {
	entries map[string]string
}

func newFakeKeyring() *fakeKeyring {
	return &fakeKeyring{entries: make(map[string]string)}
}

func (f *fakeKeyring) get(service, account string) (string, error) {
	v, ok := f.entries[service+"/"+account]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return v, nil
}

func (f *fakeKeyring) set(service, account, value string) error {
	f.entries[service+"/"+account] = value
	return nil
}

func (f *fakeKeyring) del(service, account string) error {
	if _, ok := f.entries[service+"/"+account]; !ok {
		return keyring.ErrNotFound
	}
	delete(f.entries, service+"/"+account)
	return nil
}

func newTestStore(t *testing.T) (*Store, *fakeKeyring) {
	t.Helper()
	dir := t.TempDir()
	s := New(filepath.Join(dir, "config.json"))

	fk := newFakeKeyring()
	s.keyringGet = fk.get
	s.keyringSet = fk.set
	s.keyringDelete = fk.del

	s.testOpenAIFn = func(ctx context.Context, key string) error { return nil }
	s.testYouTubeFn = func(ctx context.Context, key string) error { return nil }
	s.testLeonardoFn = func(ctx context.Context, key string) (string, error) { return "Account test (100 tokens)", nil }
	s.testGoogleFn = func(path string) (string, error) { return "Service account sa@test", nil }
	return s, fk
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s, fk := newTestStore(t)
	s.AddOpenAIKey("sk-openai-key-000000001")
	s.AddYouTubeKey("AIzaYT-key-000000001")
	s.AddGoogleCredential("/tmp/sa.json")
	s.SetLeonardoKey("leo-key-1")
	s.Generation.ViralThreshold = 85

	if err := s.SaveConfig(); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	// The Leonardo key must never land in the config file.
	data, err := os.ReadFile(s.path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if strings.Contains(string(data), "leo-key-1") {
		t.Fatal("Leonardo key leaked into config file")
	}

	fresh := New(s.path)
	fresh.keyringGet = fk.get
	fresh.keyringSet = fk.set
	fresh.keyringDelete = fk.del
	if err := fresh.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(fresh.API.OpenAIKeys) != 1 || fresh.API.OpenAIKeys[0] != "sk-openai-key-000000001" {
		t.Errorf("OpenAI keys did not round-trip: %v", fresh.API.OpenAIKeys)
	}
	if len(fresh.API.YouTubeKeys) != 1 {
		t.Errorf("YouTube keys did not round-trip: %v", fresh.API.YouTubeKeys)
	}
	if fresh.LeonardoKey() != "leo-key-1" {
		t.Errorf("Leonardo key did not round-trip: %q", fresh.LeonardoKey())
	}
	if fresh.Generation.ViralThreshold != 85 {
		t.Errorf("generation settings did not round-trip: %+v", fresh.Generation)
	}
}

func TestLoad_MissingFileStartsEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(s.API.OpenAIKeys) != 0 {
		t.Errorf("expected empty config, got %+v", s.API)
	}
	if s.Generation.Quality != QualityBalanced {
		t.Errorf("expected default quality, got %q", s.Generation.Quality)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	s, _ := newTestStore(t)
	if err := os.WriteFile(s.path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Load(); !apperrors.Is(err, apperrors.KindFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestLoad_ClampsSettings(t *testing.T) {
	s, _ := newTestStore(t)
	content := `{"api": {}, "generation": {"viral_threshold": 250, "quality": "turbo"}}`
	if err := os.WriteFile(s.path, []byte(content), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Generation.ViralThreshold != 100 {
		t.Errorf("expected threshold clamped to 100, got %d", s.Generation.ViralThreshold)
	}
	if s.Generation.Quality != QualityBalanced {
		t.Errorf("expected quality fallback, got %q", s.Generation.Quality)
	}
}

func TestTestAPIs_RecordOutcomes(t *testing.T) {
	s, _ := newTestStore(t)
	s.testOpenAIFn = func(ctx context.Context, key string) error {
		if key == "bad" {
			return apperrors.Auth(errors.New("401"))
		}
		return nil
	}

	ok, msg := s.TestOpenAIAPI(context.Background(), "good-key")
	if !ok {
		t.Fatalf("expected success, got %q", msg)
	}
	if outcome, found := s.LastOutcome("good-key"); !found || !outcome.Valid {
		t.Errorf("expected recorded valid outcome, got %+v found=%v", outcome, found)
	}

	ok, msg = s.TestOpenAIAPI(context.Background(), "bad")
	if ok {
		t.Fatalf("expected failure")
	}
	if outcome, found := s.LastOutcome("bad"); !found || outcome.Valid {
		t.Errorf("expected recorded invalid outcome, got %+v found=%v", outcome, found)
	}
	if msg == "" {
		t.Error("expected a user-facing failure message")
	}
}

func TestTestAPIs_EmptyValue(t *testing.T) {
	s, _ := newTestStore(t)
	called := false
	s.testYouTubeFn = func(ctx context.Context, key string) error {
		called = true
		return nil
	}

	if ok, _ := s.TestYouTubeAPI(context.Background(), "   "); ok {
		t.Fatal("expected empty key to fail")
	}
	if called {
		t.Error("validator must not run for empty input")
	}
}

func TestGetAPIStatus_Counts(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddYouTubeKey("yt-key-one-0000000001")
	s.AddYouTubeKey("yt-key-two-0000000002")
	s.TestYouTubeAPI(context.Background(), "yt-key-one-0000000001")
	s.SetLeonardoKey("leo")

	status := s.GetAPIStatus()
	if status.YouTube.Configured != 2 {
		t.Errorf("expected 2 configured, got %d", status.YouTube.Configured)
	}
	if status.YouTube.Valid != 1 {
		t.Errorf("expected 1 valid, got %d", status.YouTube.Valid)
	}
	if status.YouTube.Keys[1].Message != "Not tested" {
		t.Errorf("expected untested marker, got %q", status.YouTube.Keys[1].Message)
	}
	if !status.Leonardo.Configured {
		t.Error("expected Leonardo configured")
	}
	for _, ks := range status.YouTube.Keys {
		if strings.Contains(ks.Key, "yt-key-one-0000000001") {
			t.Errorf("status must not expose the full key: %q", ks.Key)
		}
	}
}

func TestIsReadyForAnalysis(t *testing.T) {
	s, _ := newTestStore(t)

	if ready, reason := s.IsReadyForAnalysis(); ready {
		t.Fatalf("expected not ready, got %q", reason)
	} else if !strings.Contains(reason, "YouTube") || !strings.Contains(reason, "OpenAI") {
		t.Errorf("reason should name missing providers: %q", reason)
	}

	s.AddYouTubeKey("yt")
	s.AddOpenAIKey("oa")
	if ready, reason := s.IsReadyForAnalysis(); !ready {
		t.Fatalf("expected ready, got %q", reason)
	}
}

func TestClearAllKeys(t *testing.T) {
	s, fk := newTestStore(t)
	s.AddOpenAIKey("sk-1")
	s.AddYouTubeKey("yt-1")
	s.SetLeonardoKey("leo-1")
	if err := s.SaveConfig(); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	if err := s.ClearAllKeys(); err != nil {
		t.Fatalf("ClearAllKeys failed: %v", err)
	}

	if len(s.API.OpenAIKeys) != 0 || len(s.API.YouTubeKeys) != 0 || s.LeonardoKey() != "" {
		t.Errorf("expected empty store, got %+v leonardo=%q", s.API, s.LeonardoKey())
	}
	if _, err := fk.get(keyringService, leonardoAcct); err == nil {
		t.Error("expected Leonardo key removed from keyring")
	}
	status := s.GetAPIStatus()
	if status.OpenAI.Configured != 0 || status.YouTube.Configured != 0 {
		t.Errorf("expected zero configured after clear, got %+v", status)
	}
}

func TestAddKeysIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddOpenAIKey("sk-1")
	s.AddOpenAIKey("sk-1")
	s.AddOpenAIKey("  sk-1  ")
	s.AddOpenAIKey("")
	if len(s.API.OpenAIKeys) != 1 {
		t.Fatalf("expected 1 key, got %v", s.API.OpenAIKeys)
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"short", "*****"},
		{"sk-abcdefghijklmnop", "sk-abc...mnop"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := MaskKey(tt.key); got != tt.want {
				t.Errorf("MaskKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestSaveConfigFilePermissions(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddOpenAIKey("sk-1")
	if err := s.SaveConfig(); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	info, err := os.Stat(s.path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600 permissions, got %v", perm)
	}
}

func TestLeonardoStatusMessage(t *testing.T) {
	s, _ := newTestStore(t)
	s.testLeonardoFn = func(ctx context.Context, key string) (string, error) {
		return "Account demo (42 tokens)", nil
	}
	s.SetLeonardoKey("leo-key")
	s.TestLeonardoAPI(context.Background(), "leo-key")

	status := s.GetAPIStatus()
	if !status.Leonardo.Valid {
		t.Error("expected Leonardo valid after test")
	}
	if !strings.Contains(status.Leonardo.Message, "42 tokens") {
		t.Errorf("expected account message, got %q", status.Leonardo.Message)
	}
}
