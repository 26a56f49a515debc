package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"

	"github.com/oukeidos/vidlens/internal/apperrors"
	"github.com/oukeidos/vidlens/internal/credstore"
	"github.com/oukeidos/vidlens/internal/logger"
	"github.com/oukeidos/vidlens/internal/panel"
	"github.com/oukeidos/vidlens/internal/report"
)

type vidlensApp struct {
	window fyne.Window
	config AppConfig

	store      *credstore.Store
	controller *panel.Controller
	status     *panel.StatusAggregator
	view       *panel.ResultView
	engine     *panel.Engine

	cancelMu        sync.Mutex
	activeCancel    context.CancelFunc
	activeCancelID  uint64
	panicNoticeOnce sync.Once

	analysisTab *analysisTab
	settingsTab *settingsTab
}

func newVidlensApp(w fyne.Window) *vidlensApp {
	a := &vidlensApp{window: w}

	path, err := credstore.DefaultConfigPath()
	if err != nil {
		logger.Error("Failed to resolve config path", "error", err)
	}
	a.store = credstore.New(path)
	if err := a.store.Load(); err != nil {
		logger.Error("Failed to load settings", "error", err)
		dialog.ShowError(errors.New(apperrors.PublicMessage(err)), w)
	}

	a.controller = panel.NewController(a.store)
	a.controller.LoadFromStore()
	a.controller.Generation = a.store.PanelGeneration()
	a.status = panel.NewStatusAggregator(a.controller, a.store)
	a.view = panel.NewResultView(report.Format)
	a.engine = panel.NewEngine(a.view)

	a.loadConfig()
	a.setupUI()
	return a
}

func (a *vidlensApp) setupUI() {
	a.analysisTab = a.makeAnalysisTab()
	a.settingsTab = a.makeSettingsTab()

	tabs := container.NewAppTabs(
		container.NewTabItemWithIcon("Analysis", theme.SearchIcon(), a.analysisTab.content),
		container.NewTabItemWithIcon("Settings", theme.SettingsIcon(), a.settingsTab.content),
		container.NewTabItemWithIcon("About", theme.InfoIcon(), makeAboutTab()),
	)
	tabs.SetTabLocation(container.TabLocationTop)

	a.window.SetContent(tabs)
}

func (a *vidlensApp) setActiveCancel(cancel context.CancelFunc) uint64 {
	a.cancelMu.Lock()
	if a.activeCancel != nil {
		a.activeCancel()
	}
	a.activeCancel = cancel
	a.activeCancelID++
	id := a.activeCancelID
	a.cancelMu.Unlock()
	return id
}

func (a *vidlensApp) clearActiveCancel(id uint64) {
	a.cancelMu.Lock()
	if a.activeCancelID == id {
		a.activeCancel = nil
	}
	a.cancelMu.Unlock()
}

func (a *vidlensApp) cancelActive(reason string) {
	a.cancelMu.Lock()
	cancel := a.activeCancel
	a.activeCancel = nil
	a.cancelMu.Unlock()
	if cancel != nil {
		logger.Warn("Cancellation requested", "reason", reason)
		cancel()
	}
}

func main() {
	logger.Init(logger.LevelInfo, nil)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unrecovered GUI panic", "scope", "main", "panic", fmt.Sprint(r))
			os.Exit(1)
		}
	}()

	myApp := app.NewWithID("com.vidlens.app")

	w := myApp.NewWindow("vidlens")
	w.SetMaster()
	w.Resize(fyne.NewSize(1000, 720))
	w.CenterOnScreen()

	va := newVidlensApp(w)
	w.SetCloseIntercept(func() {
		va.cancelActive("window closed")
		va.saveConfig()
		w.SetCloseIntercept(nil)
		w.Close()
	})

	w.ShowAndRun()
}
