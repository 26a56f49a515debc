// Package panel holds the UI-toolkit-independent core behind the Analysis
// and Settings tabs: credential entry management, status aggregation, the
// analysis result view, and the follow-up analysis engine.
package panel

import "context"

// Provider identifies the external service a credential belongs to.
type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderYouTube  Provider = "youtube"
	ProviderGoogle   Provider = "google"
	ProviderLeonardo Provider = "leonardo"
)

// Providers lists every provider in display order.
var Providers = []Provider{ProviderOpenAI, ProviderYouTube, ProviderGoogle, ProviderLeonardo}

// EntryHandle is an opaque identifier for one credential entry, stable for
// the entry's lifetime. Widgets hold handles, never entry pointers.
type EntryHandle string

// TestResult is the outcome of the most recent test of one entry.
type TestResult struct {
	Valid   bool
	Message string
}

// CredentialEntry is one credential record. Value carries an API key;
// FilePath is used by Google entries only.
type CredentialEntry struct {
	Handle   EntryHandle
	Provider Provider
	Value    string
	FilePath string
	Result   *TestResult
}

// GenerationSettings mirrors the Settings tab's generation preferences,
// committed wholesale on save.
type GenerationSettings struct {
	ViralThreshold     int
	Quality            string
	EnableViralScoring bool
	EnableRetry        bool
	AutoOptimize       bool
}

// Store is the credential store contract this core consumes. The concrete
// implementation lives in internal/credstore; tests inject fakes.
type Store interface {
	TestOpenAIAPI(ctx context.Context, key string) (bool, string)
	TestYouTubeAPI(ctx context.Context, key string) (bool, string)
	TestLeonardoAPI(ctx context.Context, key string) (bool, string)
	TestGoogleCredentials(path string) (bool, string)

	AddOpenAIKey(key string)
	AddYouTubeKey(key string)
	AddGoogleCredential(path string)
	SetLeonardoKey(key string)

	StoredCredentials() (openai, youtube, google []string, leonardo string)
	ReplaceCredentials(openai, youtube, google []string, leonardo string)
	ApplyGeneration(settings GenerationSettings)

	SaveConfig() error
	ClearAllKeys() error
	IsReadyForAnalysis() (ready bool, reason string)
}
