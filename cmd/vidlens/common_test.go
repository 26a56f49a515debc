package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/oukeidos/vidlens/internal/credstore"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// withStoreStub swaps openStore for one backed by a temp config file so
// commands never touch the real home directory or the OS keyring.
func withStoreStub(t *testing.T, configure func(*credstore.Store)) *credstore.Store {
	t.Helper()
	store := credstore.New(filepath.Join(t.TempDir(), "config.json"))
	if configure != nil {
		configure(store)
	}

	prev := openStore
	openStore = func() (*credstore.Store, error) {
		return store, nil
	}
	t.Cleanup(func() { openStore = prev })
	return store
}

func withTerminalStub(t *testing.T, terminal bool, promptVal string) *int {
	t.Helper()
	promptCalls := new(int)

	prevIsTerminal := isTerminal
	prevPrompt := promptForKey

	isTerminal = func(_ int) bool { return terminal }
	promptForKey = func(_ string) (string, error) {
		*promptCalls++
		return promptVal, nil
	}

	t.Cleanup(func() {
		isTerminal = prevIsTerminal
		promptForKey = prevPrompt
	})
	return promptCalls
}
