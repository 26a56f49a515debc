package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/oukeidos/vidlens/internal/credstore"
	"github.com/oukeidos/vidlens/internal/logger"
	"github.com/oukeidos/vidlens/internal/youtube"
	"golang.org/x/term"
	"google.golang.org/api/option"
)

var (
	isTerminal       = term.IsTerminal
	promptForKey     = promptAPIKey
	openStore        = defaultOpenStore
	newYouTubeClient = defaultYouTubeClient
)

func defaultOpenStore() (*credstore.Store, error) {
	path, err := credstore.DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	store := credstore.New(path)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

func defaultYouTubeClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*youtube.Client, error) {
	return youtube.NewClient(ctx, apiKey, opts...)
}

// promptAPIKey reads a credential from the terminal without echo.
func promptAPIKey(prompt string) (string, error) {
	fmt.Print(prompt)
	byteKey, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(byteKey)), nil
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("Cancellation requested")
		cancel()
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}

func checkmark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}
