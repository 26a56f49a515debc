package main

import (
	"fyne.io/fyne/v2"

	"github.com/oukeidos/vidlens/internal/collector"
	"github.com/oukeidos/vidlens/internal/logger"
)

// AppConfig keeps the window-local bits in fyne Preferences. Credentials and
// generation settings live in the credential store, not here.
type AppConfig struct {
	LastChannel string
	MaxVideos   int
}

const (
	minMaxVideosGUI = 1
	maxMaxVideosGUI = 50
)

func clampMaxVideos(n int) (int, bool) {
	if n < minMaxVideosGUI {
		return collector.DefaultMaxVideos, true
	}
	if n > maxMaxVideosGUI {
		return maxMaxVideosGUI, true
	}
	return n, false
}

func (a *vidlensApp) loadConfig() {
	prefs := fyne.CurrentApp().Preferences()

	a.config.LastChannel = prefs.String("LastChannel")
	a.config.MaxVideos = prefs.IntWithFallback("MaxVideos", collector.DefaultMaxVideos)
	if clamped, changed := clampMaxVideos(a.config.MaxVideos); changed {
		logger.Warn("Max videos clamped", "requested", a.config.MaxVideos, "effective", clamped)
		a.config.MaxVideos = clamped
		prefs.SetInt("MaxVideos", a.config.MaxVideos)
	}
}

func (a *vidlensApp) saveConfig() {
	prefs := fyne.CurrentApp().Preferences()
	prefs.SetString("LastChannel", a.config.LastChannel)
	prefs.SetInt("MaxVideos", a.config.MaxVideos)
}
