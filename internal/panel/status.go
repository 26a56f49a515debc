package panel

import "strings"

// StatusAggregator derives the per-provider configured/valid counts shown
// next to each credential section, and the overall readiness verdict.
type StatusAggregator struct {
	controller *Controller
	store      Store
}

func NewStatusAggregator(controller *Controller, store Store) *StatusAggregator {
	return &StatusAggregator{controller: controller, store: store}
}

// Counts is a pure function of the controller's current entry lists.
// OpenAI/YouTube: every live entry is configured; valid counts entries whose
// last test passed. Google: configured needs a selected file path.
// Leonardo: configured needs a non-empty value.
func (a *StatusAggregator) Counts(provider Provider) (configured, valid int) {
	for _, entry := range a.controller.Entries(provider) {
		switch provider {
		case ProviderGoogle:
			if strings.TrimSpace(entry.FilePath) == "" {
				continue
			}
		case ProviderLeonardo:
			if strings.TrimSpace(entry.Value) == "" {
				continue
			}
		}
		configured++
		if entry.Result != nil && entry.Result.Valid {
			valid++
		}
	}
	return configured, valid
}

// ReadyForAnalysis delegates to the store; readiness criteria are the
// store's to define.
func (a *StatusAggregator) ReadyForAnalysis() (bool, string) {
	return a.store.IsReadyForAnalysis()
}
