// Package credstore persists API credentials and generation settings and
// knows how to check each provider's key against its API.
package credstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/oukeidos/vidlens/internal/apperrors"
	"github.com/oukeidos/vidlens/internal/files"
	"github.com/oukeidos/vidlens/internal/gsa"
	"github.com/oukeidos/vidlens/internal/leonardo"
	"github.com/oukeidos/vidlens/internal/logger"
	"github.com/oukeidos/vidlens/internal/openai"
	"github.com/oukeidos/vidlens/internal/youtube"
)

const (
	keyringService = "vidlens"
	leonardoAcct   = "leonardo-api-key"

	// Quality presets for generation.
	QualityBalanced = "balanced"
	QualityQuality  = "quality"
	QualitySpeed    = "speed"
)

// APIConfig holds the persisted credential lists. The Leonardo key is kept
// in the OS keyring, never in this file.
type APIConfig struct {
	OpenAIKeys        []string `json:"openai_keys"`
	YouTubeKeys       []string `json:"youtube_keys"`
	GoogleCredentials []string `json:"google_credentials"`
}

// GenerationSettings is overwritten wholesale on save.
type GenerationSettings struct {
	ViralThreshold     int    `json:"viral_threshold"`
	Quality            string `json:"quality"`
	EnableViralScoring bool   `json:"enable_viral_scoring"`
	EnableRetry        bool   `json:"enable_retry"`
	AutoOptimize       bool   `json:"auto_optimize"`
}

func defaultGenerationSettings() GenerationSettings {
	return GenerationSettings{
		ViralThreshold:     70,
		Quality:            QualityBalanced,
		EnableViralScoring: true,
		EnableRetry:        true,
		AutoOptimize:       false,
	}
}

type configFile struct {
	API        APIConfig          `json:"api"`
	Generation GenerationSettings `json:"generation"`
}

// TestOutcome is the recorded result of the most recent check of one
// credential value.
type TestOutcome struct {
	Valid   bool
	Message string
}

// KeyStatus pairs a masked credential with its last test outcome.
type KeyStatus struct {
	Key     string
	Valid   bool
	Message string
}

// ProviderStatus is the per-provider block of GetAPIStatus.
type ProviderStatus struct {
	Configured int
	Valid      int
	Keys       []KeyStatus
}

// LeonardoStatus covers the singleton Leonardo key.
type LeonardoStatus struct {
	Configured bool
	Valid      bool
	Message    string
}

// APIStatus is the full status mapping consumed by the Settings tab and CLI.
type APIStatus struct {
	YouTube  ProviderStatus
	OpenAI   ProviderStatus
	Google   ProviderStatus
	Leonardo LeonardoStatus
}

// Store owns the config file, the keyring-backed Leonardo key, and the
// last-known test results. Not safe for concurrent use; callers serialize
// on the UI event loop.
type Store struct {
	path string

	API         APIConfig
	Generation  GenerationSettings
	leonardoKey string

	results map[string]TestOutcome

	// Injected so tests never hit real APIs or the OS keyring.
	testOpenAIFn   func(ctx context.Context, key string) error
	testYouTubeFn  func(ctx context.Context, key string) error
	testLeonardoFn func(ctx context.Context, key string) (string, error)
	testGoogleFn   func(path string) (string, error)
	keyringGet     func(service, account string) (string, error)
	keyringSet     func(service, account, value string) error
	keyringDelete  func(service, account string) error
}

// DefaultConfigPath returns ~/.vidlens/config.json.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".vidlens", "config.json"), nil
}

// New creates a store over the given config path without loading it.
func New(path string) *Store {
	return &Store{
		path:       path,
		Generation: defaultGenerationSettings(),
		results:    make(map[string]TestOutcome),
		testOpenAIFn: func(ctx context.Context, key string) error {
			_, err := openai.NewClient(key).ValidateKey(ctx)
			return err
		},
		testYouTubeFn: func(ctx context.Context, key string) error {
			client, err := youtube.NewClient(ctx, key)
			if err != nil {
				return err
			}
			return client.ValidateKey(ctx)
		},
		testLeonardoFn: func(ctx context.Context, key string) (string, error) {
			account, err := leonardo.NewClient(key).ValidateKey(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Account %s (%d tokens)", account.Username, account.Tokens), nil
		},
		testGoogleFn: func(path string) (string, error) {
			info, err := gsa.ValidateFile(path)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Service account %s", info.ClientEmail), nil
		},
		keyringGet:    keyring.Get,
		keyringSet:    keyring.Set,
		keyringDelete: keyring.Delete,
	}
}

// Load reads the config file if it exists and fetches the Leonardo key from
// the keyring. A missing file is not an error; the store starts empty.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		var cfg configFile
		if err := json.Unmarshal(data, &cfg); err != nil {
			return apperrors.Format(fmt.Errorf("config file %s is not valid JSON: %w", s.path, err))
		}
		s.API = cfg.API
		s.Generation = cfg.Generation
	case os.IsNotExist(err):
		logger.Info("No config file yet; starting with defaults", "path", s.path)
		s.API = APIConfig{}
		s.Generation = defaultGenerationSettings()
	default:
		return apperrors.Persistence(fmt.Errorf("failed to read config file %s: %w", s.path, err))
	}

	s.Generation = clampSettings(s.Generation)

	if key, err := s.keyringGet(keyringService, leonardoAcct); err == nil {
		s.leonardoKey = strings.TrimSpace(key)
	}
	return nil
}

func clampSettings(g GenerationSettings) GenerationSettings {
	if g.ViralThreshold < 0 || g.ViralThreshold > 100 {
		logger.Warn("Viral threshold out of range; clamping", "value", g.ViralThreshold)
		if g.ViralThreshold < 0 {
			g.ViralThreshold = 0
		} else {
			g.ViralThreshold = 100
		}
	}
	switch g.Quality {
	case QualityBalanced, QualityQuality, QualitySpeed:
	default:
		if g.Quality != "" {
			logger.Warn("Unknown quality preset; falling back to balanced", "value", g.Quality)
		}
		g.Quality = QualityBalanced
	}
	return g
}

// SaveConfig writes the config file atomically with 0600 permissions and
// syncs the Leonardo key to the keyring.
func (s *Store) SaveConfig() error {
	s.Generation = clampSettings(s.Generation)

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return apperrors.Persistence(fmt.Errorf("failed to create config directory: %w", err))
	}

	data, err := json.MarshalIndent(configFile{API: s.API, Generation: s.Generation}, "", "  ")
	if err != nil {
		return apperrors.Persistence(fmt.Errorf("failed to encode config: %w", err))
	}
	if err := files.AtomicWrite(s.path, data, 0600); err != nil {
		return apperrors.Persistence(fmt.Errorf("failed to write config file: %w", err))
	}

	if s.leonardoKey == "" {
		if err := s.keyringDelete(keyringService, leonardoAcct); err != nil && err != keyring.ErrNotFound {
			logger.Warn("Failed to remove Leonardo key from keyring", "error", err)
		}
	} else if err := s.keyringSet(keyringService, leonardoAcct, s.leonardoKey); err != nil {
		return apperrors.Persistence(fmt.Errorf("failed to store Leonardo key in keyring: %w", err))
	}

	logger.Info("Config saved", "path", s.path,
		"openai_keys", len(s.API.OpenAIKeys),
		"youtube_keys", len(s.API.YouTubeKeys),
		"google_credentials", len(s.API.GoogleCredentials))
	return nil
}

// LeonardoKey returns the in-memory Leonardo key.
func (s *Store) LeonardoKey() string { return s.leonardoKey }

// SetLeonardoKey replaces the singleton Leonardo key in memory. SaveConfig
// persists it to the keyring.
func (s *Store) SetLeonardoKey(key string) { s.leonardoKey = strings.TrimSpace(key) }

// AddOpenAIKey appends a key if not already present.
func (s *Store) AddOpenAIKey(key string) {
	s.API.OpenAIKeys = appendUnique(s.API.OpenAIKeys, strings.TrimSpace(key))
}

// AddYouTubeKey appends a key if not already present.
func (s *Store) AddYouTubeKey(key string) {
	s.API.YouTubeKeys = appendUnique(s.API.YouTubeKeys, strings.TrimSpace(key))
}

// AddGoogleCredential appends a credential file path if not already present.
func (s *Store) AddGoogleCredential(path string) {
	s.API.GoogleCredentials = appendUnique(s.API.GoogleCredentials, strings.TrimSpace(path))
}

func appendUnique(list []string, value string) []string {
	if value == "" {
		return list
	}
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

// TestOpenAIAPI checks the key against the OpenAI API and records the result.
func (s *Store) TestOpenAIAPI(ctx context.Context, key string) (bool, string) {
	return s.runTest(key, func() (string, error) {
		if err := s.testOpenAIFn(ctx, key); err != nil {
			return "", err
		}
		return "OpenAI key accepted", nil
	})
}

// TestYouTubeAPI checks the key against the YouTube Data API and records the
// result.
func (s *Store) TestYouTubeAPI(ctx context.Context, key string) (bool, string) {
	return s.runTest(key, func() (string, error) {
		if err := s.testYouTubeFn(ctx, key); err != nil {
			return "", err
		}
		return "YouTube key accepted", nil
	})
}

// TestLeonardoAPI checks the key against the Leonardo API and records the
// result.
func (s *Store) TestLeonardoAPI(ctx context.Context, key string) (bool, string) {
	return s.runTest(key, func() (string, error) {
		return s.testLeonardoFn(ctx, key)
	})
}

// TestGoogleCredentials validates the service-account file and records the
// result keyed by path.
func (s *Store) TestGoogleCredentials(path string) (bool, string) {
	return s.runTest(path, func() (string, error) {
		return s.testGoogleFn(path)
	})
}

func (s *Store) runTest(value string, check func() (string, error)) (bool, string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, apperrors.PublicMessage(apperrors.EmptyInput(""))
	}
	message, err := check()
	if err != nil {
		outcome := TestOutcome{Valid: false, Message: apperrors.PublicMessage(err)}
		s.results[value] = outcome
		logger.Warn("Credential test failed", "error", err)
		return false, outcome.Message
	}
	if message == "" {
		message = "OK"
	}
	s.results[value] = TestOutcome{Valid: true, Message: message}
	return true, message
}

// LastOutcome returns the recorded result for a value, if any.
func (s *Store) LastOutcome(value string) (TestOutcome, bool) {
	outcome, ok := s.results[strings.TrimSpace(value)]
	return outcome, ok
}

// GetAPIStatus reports configured/valid counts per provider from the last
// recorded test results. It performs no network calls.
func (s *Store) GetAPIStatus() APIStatus {
	status := APIStatus{
		YouTube: s.listStatus(s.API.YouTubeKeys, MaskKey),
		OpenAI:  s.listStatus(s.API.OpenAIKeys, MaskKey),
		Google:  s.listStatus(s.API.GoogleCredentials, filepath.Base),
	}

	if s.leonardoKey != "" {
		status.Leonardo.Configured = true
		status.Leonardo.Message = "Configured"
		if outcome, ok := s.results[s.leonardoKey]; ok {
			status.Leonardo.Valid = outcome.Valid
			status.Leonardo.Message = outcome.Message
		}
	} else {
		status.Leonardo.Message = "Not configured"
	}
	return status
}

func (s *Store) listStatus(values []string, display func(string) string) ProviderStatus {
	ps := ProviderStatus{Configured: len(values)}
	for _, value := range values {
		ks := KeyStatus{Key: display(value), Message: "Not tested"}
		if outcome, ok := s.results[value]; ok {
			ks.Valid = outcome.Valid
			ks.Message = outcome.Message
		}
		if ks.Valid {
			ps.Valid++
		}
		ps.Keys = append(ps.Keys, ks)
	}
	return ps
}

// IsReadyForAnalysis reports whether an analysis run can start. It requires
// at least one YouTube key and one OpenAI key.
func (s *Store) IsReadyForAnalysis() (bool, string) {
	var missing []string
	if len(s.API.YouTubeKeys) == 0 {
		missing = append(missing, "YouTube API key")
	}
	if len(s.API.OpenAIKeys) == 0 {
		missing = append(missing, "OpenAI API key")
	}
	if len(missing) > 0 {
		return false, "Not ready for analysis: missing " + strings.Join(missing, ", ")
	}
	return true, "Ready for analysis"
}

// ClearAllKeys wipes every credential list, recorded result, and the
// keyring-held Leonardo key. The config file is rewritten immediately.
func (s *Store) ClearAllKeys() error {
	s.API = APIConfig{}
	s.leonardoKey = ""
	s.results = make(map[string]TestOutcome)
	return s.SaveConfig()
}

// MaskKey shortens a credential for display: first 6 and last 4 characters.
func MaskKey(key string) string {
	if len(key) <= 10 {
		return strings.Repeat("*", len(key))
	}
	return key[:6] + "..." + key[len(key)-4:]
}
