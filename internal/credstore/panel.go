package credstore

import (
	"strings"

	"github.com/oukeidos/vidlens/internal/panel"
)

// Store implements panel.Store so the Settings controller can be handed a
// *Store directly.
var _ panel.Store = (*Store)(nil)

// StoredCredentials returns the persisted credential lists for controller
// reconstruction.
func (s *Store) StoredCredentials() (openai, youtube, google []string, leonardo string) {
	return s.API.OpenAIKeys, s.API.YouTubeKeys, s.API.GoogleCredentials, s.leonardoKey
}

// ReplaceCredentials overwrites every provider's list wholesale. This is the
// bulk write behind the Settings tab's save, not an incremental merge.
func (s *Store) ReplaceCredentials(openai, youtube, google []string, leonardo string) {
	s.API.OpenAIKeys = dedupe(openai)
	s.API.YouTubeKeys = dedupe(youtube)
	s.API.GoogleCredentials = dedupe(google)
	s.leonardoKey = strings.TrimSpace(leonardo)
}

func dedupe(values []string) []string {
	var out []string
	for _, v := range values {
		out = appendUnique(out, strings.TrimSpace(v))
	}
	return out
}

// ApplyGeneration copies the controller's generation settings into the
// persisted config. Clamping happens on save.
func (s *Store) ApplyGeneration(settings panel.GenerationSettings) {
	s.Generation = GenerationSettings{
		ViralThreshold:     settings.ViralThreshold,
		Quality:            settings.Quality,
		EnableViralScoring: settings.EnableViralScoring,
		EnableRetry:        settings.EnableRetry,
		AutoOptimize:       settings.AutoOptimize,
	}
}

// PanelGeneration converts the persisted settings back to the controller's
// type for binding into the Settings tab.
func (s *Store) PanelGeneration() panel.GenerationSettings {
	return panel.GenerationSettings{
		ViralThreshold:     s.Generation.ViralThreshold,
		Quality:            s.Generation.Quality,
		EnableViralScoring: s.Generation.EnableViralScoring,
		EnableRetry:        s.Generation.EnableRetry,
		AutoOptimize:       s.Generation.AutoOptimize,
	}
}
