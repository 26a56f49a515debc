package panel

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/oukeidos/vidlens/internal/apperrors"
	"github.com/oukeidos/vidlens/internal/logger"
)

// Controller mirrors the credential entries a user is editing and syncs them
// to the injected store on load and save. All methods run on the UI event
// loop; the controller does no locking.
type Controller struct {
	store   Store
	entries map[Provider][]*CredentialEntry

	// Generation is bound to the Settings tab widgets and written to the
	// store wholesale by CommitAll.
	Generation GenerationSettings

	fileExists func(path string) bool
}

func NewController(store Store) *Controller {
	return &Controller{
		store:   store,
		entries: make(map[Provider][]*CredentialEntry),
		Generation: GenerationSettings{
			ViralThreshold: 70,
			Quality:        "balanced",
		},
		fileExists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
}

// AddEntry appends a blank entry for the provider and returns its handle.
// Leonardo keeps at most one entry; adding replaces it.
func (c *Controller) AddEntry(provider Provider) EntryHandle {
	entry := &CredentialEntry{
		Handle:   EntryHandle(uuid.NewString()),
		Provider: provider,
	}
	if provider == ProviderLeonardo {
		c.entries[provider] = []*CredentialEntry{entry}
	} else {
		c.entries[provider] = append(c.entries[provider], entry)
	}
	return entry.Handle
}

// RemoveEntry deletes the entry in place. Removing a handle that is already
// gone is a no-op.
func (c *Controller) RemoveEntry(handle EntryHandle) {
	for provider, list := range c.entries {
		for i, entry := range list {
			if entry.Handle == handle {
				c.entries[provider] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// SetValue updates the entry's key value from its bound widget.
func (c *Controller) SetValue(handle EntryHandle, value string) {
	if entry := c.find(handle); entry != nil {
		entry.Value = value
	}
}

// SetFilePath records a selected credential file on a Google entry.
func (c *Controller) SetFilePath(handle EntryHandle, path string) {
	if entry := c.find(handle); entry != nil {
		entry.FilePath = path
	}
}

// Entries returns a snapshot of the provider's live entries in insertion
// order.
func (c *Controller) Entries(provider Provider) []CredentialEntry {
	list := c.entries[provider]
	out := make([]CredentialEntry, 0, len(list))
	for _, entry := range list {
		out = append(out, *entry)
	}
	return out
}

func (c *Controller) find(handle EntryHandle) *CredentialEntry {
	for _, list := range c.entries {
		for _, entry := range list {
			if entry.Handle == handle {
				return entry
			}
		}
	}
	return nil
}

// TestEntry checks the entry's current value against its provider's API and
// records the outcome on the entry. A failed check is a result, not an
// error; errors report preconditions (blank value, missing file, unknown
// handle).
func (c *Controller) TestEntry(ctx context.Context, handle EntryHandle) (TestResult, error) {
	entry := c.find(handle)
	if entry == nil {
		return TestResult{}, fmt.Errorf("unknown credential entry %s", handle)
	}

	if entry.Provider == ProviderGoogle {
		if strings.TrimSpace(entry.FilePath) == "" {
			return TestResult{}, apperrors.MissingFile("")
		}
	} else if strings.TrimSpace(entry.Value) == "" {
		return TestResult{}, apperrors.EmptyInput("")
	}

	var valid bool
	var message string
	switch entry.Provider {
	case ProviderOpenAI:
		valid, message = c.store.TestOpenAIAPI(ctx, entry.Value)
	case ProviderYouTube:
		valid, message = c.store.TestYouTubeAPI(ctx, entry.Value)
	case ProviderLeonardo:
		valid, message = c.store.TestLeonardoAPI(ctx, entry.Value)
	case ProviderGoogle:
		valid, message = c.store.TestGoogleCredentials(entry.FilePath)
	default:
		return TestResult{}, fmt.Errorf("unknown provider %q", entry.Provider)
	}

	result := TestResult{Valid: valid, Message: message}
	entry.Result = &result

	// A passing value is registered with the store right away; the add
	// methods are idempotent, so retesting never duplicates.
	if valid {
		switch entry.Provider {
		case ProviderOpenAI:
			c.store.AddOpenAIKey(entry.Value)
		case ProviderYouTube:
			c.store.AddYouTubeKey(entry.Value)
		case ProviderLeonardo:
			c.store.SetLeonardoKey(entry.Value)
		case ProviderGoogle:
			c.store.AddGoogleCredential(entry.FilePath)
		}
	}
	return result, nil
}

// CommitAll overwrites the store's per-provider lists from the live entries,
// applies the generation settings, and saves. Blank entries are dropped;
// each provider's stored list is replaced whole.
func (c *Controller) CommitAll() error {
	var openaiKeys, youtubeKeys, googlePaths []string
	for _, entry := range c.entries[ProviderOpenAI] {
		if v := strings.TrimSpace(entry.Value); v != "" {
			openaiKeys = append(openaiKeys, v)
		}
	}
	for _, entry := range c.entries[ProviderYouTube] {
		if v := strings.TrimSpace(entry.Value); v != "" {
			youtubeKeys = append(youtubeKeys, v)
		}
	}
	for _, entry := range c.entries[ProviderGoogle] {
		if p := strings.TrimSpace(entry.FilePath); p != "" {
			googlePaths = append(googlePaths, p)
		}
	}
	var leonardoKey string
	if list := c.entries[ProviderLeonardo]; len(list) > 0 {
		leonardoKey = strings.TrimSpace(list[0].Value)
	}

	c.store.ReplaceCredentials(openaiKeys, youtubeKeys, googlePaths, leonardoKey)
	c.store.ApplyGeneration(c.Generation)

	if err := c.store.SaveConfig(); err != nil {
		if apperrors.Is(err, apperrors.KindPersistence) {
			return err
		}
		return apperrors.Persistence(err)
	}
	return nil
}

// ClearAll empties every in-memory entry list and wipes the store. The
// confirmation dialog is the GUI's responsibility; by the time this runs the
// user has already agreed.
func (c *Controller) ClearAll() error {
	c.entries = make(map[Provider][]*CredentialEntry)
	if err := c.store.ClearAllKeys(); err != nil {
		if apperrors.Is(err, apperrors.KindPersistence) {
			return err
		}
		return apperrors.Persistence(err)
	}
	return nil
}

// LoadFromStore rebuilds the entry lists from the store's persisted values,
// one entry per stored key or path. Google paths that no longer exist on
// disk are skipped silently.
func (c *Controller) LoadFromStore() {
	c.entries = make(map[Provider][]*CredentialEntry)

	openaiKeys, youtubeKeys, googlePaths, leonardoKey := c.store.StoredCredentials()
	for _, key := range openaiKeys {
		h := c.AddEntry(ProviderOpenAI)
		c.SetValue(h, key)
	}
	for _, key := range youtubeKeys {
		h := c.AddEntry(ProviderYouTube)
		c.SetValue(h, key)
	}
	for _, path := range googlePaths {
		if !c.fileExists(path) {
			logger.Warn("Skipping missing Google credential file", "path", path)
			continue
		}
		h := c.AddEntry(ProviderGoogle)
		c.SetFilePath(h, path)
	}
	if leonardoKey != "" {
		h := c.AddEntry(ProviderLeonardo)
		c.SetValue(h, leonardoKey)
	}
}
