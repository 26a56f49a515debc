package main

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/vidlens/internal/apperrors"
	"github.com/oukeidos/vidlens/internal/credstore"
	"github.com/oukeidos/vidlens/internal/panel"
)

type settingsTab struct {
	content fyne.CanvasObject

	providerBoxes map[panel.Provider]*fyne.Container
	statusSummary *widget.Label
}

var providerLabels = map[panel.Provider]string{
	panel.ProviderOpenAI:   "OpenAI API Keys",
	panel.ProviderYouTube:  "YouTube API Keys",
	panel.ProviderGoogle:   "Google Service Accounts",
	panel.ProviderLeonardo: "Leonardo API Key",
}

func (a *vidlensApp) makeSettingsTab() *settingsTab {
	t := &settingsTab{
		providerBoxes: make(map[panel.Provider]*fyne.Container),
	}
	t.statusSummary = widget.NewLabel("")

	sections := container.NewVBox()
	for _, provider := range panel.Providers {
		provider := provider
		box := container.NewVBox()
		t.providerBoxes[provider] = box

		addBtn := widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() {
			a.controller.AddEntry(provider)
			a.refreshProviderBox(provider)
		})
		header := container.NewBorder(nil, nil,
			widget.NewLabelWithStyle(providerLabels[provider], fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			addBtn,
			nil,
		)
		sections.Add(header)
		sections.Add(box)
		sections.Add(widget.NewSeparator())
	}

	generation := a.makeGenerationSection()

	saveBtn := widget.NewButton("Lưu tất cả cài đặt", func() {
		a.commitAllSettings()
	})
	saveBtn.Importance = widget.HighImportance

	testAllBtn := widget.NewButton("Test All APIs", func() {
		a.runTestAll()
	})

	clearBtn := widget.NewButton("Xóa tất cả keys", func() {
		dialog.ShowConfirm("Xóa tất cả", "Bạn có chắc muốn xóa toàn bộ API keys đã lưu?", func(ok bool) {
			if !ok {
				return
			}
			if err := a.controller.ClearAll(); err != nil {
				dialog.ShowError(fmt.Errorf("%s", apperrors.PublicMessage(err)), a.window)
			}
			a.refreshAllProviderBoxes()
			a.refreshStatusSummary()
		}, a.window)
	})
	clearBtn.Importance = widget.DangerImportance

	t.content = container.NewVScroll(container.NewPadded(container.NewVBox(
		sections,
		generation,
		widget.NewSeparator(),
		container.NewHBox(saveBtn, testAllBtn, clearBtn),
		t.statusSummary,
	)))

	a.settingsTab = t
	a.refreshAllProviderBoxes()
	a.refreshStatusSummary()
	return t
}

func (a *vidlensApp) makeGenerationSection() fyne.CanvasObject {
	gen := &a.controller.Generation

	thresholdLabel := widget.NewLabel(strconv.Itoa(gen.ViralThreshold))
	threshold := widget.NewSlider(0, 100)
	threshold.Step = 1
	threshold.Value = float64(gen.ViralThreshold)
	threshold.OnChanged = func(v float64) {
		gen.ViralThreshold = int(v)
		thresholdLabel.SetText(strconv.Itoa(gen.ViralThreshold))
	}

	quality := widget.NewRadioGroup([]string{
		credstore.QualitySpeed,
		credstore.QualityBalanced,
		credstore.QualityQuality,
	}, func(s string) {
		if s != "" {
			gen.Quality = s
		}
	})
	quality.Horizontal = true
	quality.SetSelected(gen.Quality)

	scoringCheck := widget.NewCheck("Chấm điểm viral", func(b bool) {
		gen.EnableViralScoring = b
	})
	scoringCheck.SetChecked(gen.EnableViralScoring)

	retryCheck := widget.NewCheck("Tự động thử lại", func(b bool) {
		gen.EnableRetry = b
	})
	retryCheck.SetChecked(gen.EnableRetry)

	optimizeCheck := widget.NewCheck("Tự động tối ưu", func(b bool) {
		gen.AutoOptimize = b
	})
	optimizeCheck.SetChecked(gen.AutoOptimize)

	return container.NewVBox(
		widget.NewLabelWithStyle("Cài đặt tạo nội dung", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("Ngưỡng viral", container.NewBorder(nil, nil, nil, thresholdLabel, threshold)),
			widget.NewFormItem("Chất lượng", quality),
		),
		container.NewHBox(scoringCheck, retryCheck, optimizeCheck),
	)
}

func (a *vidlensApp) refreshAllProviderBoxes() {
	for _, provider := range panel.Providers {
		a.refreshProviderBox(provider)
	}
}

func (a *vidlensApp) refreshProviderBox(provider panel.Provider) {
	if a.settingsTab == nil {
		return
	}
	box := a.settingsTab.providerBoxes[provider]
	if box == nil {
		return
	}
	box.RemoveAll()
	for _, entry := range a.controller.Entries(provider) {
		box.Add(a.makeEntryRow(provider, entry))
	}
	box.Refresh()
	a.refreshStatusSummary()
}

func (a *vidlensApp) makeEntryRow(provider panel.Provider, entry panel.CredentialEntry) fyne.CanvasObject {
	handle := entry.Handle

	resultLabel := widget.NewLabel(entryResultText(entry.Result))

	var input fyne.CanvasObject
	if provider == panel.ProviderGoogle {
		pathLabel := widget.NewLabel(entry.FilePath)
		pathLabel.Truncation = fyne.TextTruncateEllipsis
		browseBtn := widget.NewButton("Chọn file...", func() {
			fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
				if err != nil || reader == nil {
					return
				}
				defer reader.Close()
				a.controller.SetFilePath(handle, reader.URI().Path())
				a.refreshProviderBox(provider)
			}, a.window)
			fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
			fd.Show()
		})
		input = container.NewBorder(nil, nil, nil, browseBtn, pathLabel)
	} else {
		keyEntry := widget.NewPasswordEntry()
		keyEntry.SetText(entry.Value)
		keyEntry.SetPlaceHolder("Nhập API key")
		keyEntry.OnChanged = func(s string) {
			a.controller.SetValue(handle, s)
		}
		input = keyEntry
	}

	testBtn := widget.NewButton("Test", func() {
		a.testEntry(handle, resultLabel)
	})
	removeBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		a.controller.RemoveEntry(handle)
		a.refreshProviderBox(provider)
	})

	return container.NewBorder(nil, nil, nil,
		container.NewHBox(testBtn, removeBtn, resultLabel),
		input,
	)
}

func entryResultText(result *panel.TestResult) string {
	if result == nil {
		return "Chưa test"
	}
	if result.Valid {
		return "✅ " + result.Message
	}
	return "❌ " + result.Message
}

func (a *vidlensApp) refreshStatusSummary() {
	if a.settingsTab == nil {
		return
	}
	counts := make([]providerCount, 0, len(panel.Providers))
	for _, provider := range panel.Providers {
		configured, valid := a.status.Counts(provider)
		counts = append(counts, providerCount{
			label:      providerLabels[provider],
			configured: configured,
			valid:      valid,
		})
	}
	_, reason := a.status.ReadyForAnalysis()
	a.settingsTab.statusSummary.SetText(formatTestAllSummary(counts, reason))
}
