package main

import (
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type analysisTab struct {
	content fyne.CanvasObject

	channelEntry   *widget.Entry
	maxVideosEntry *widget.Entry
	analyzeBtn     *widget.Button
	progress       *widget.ProgressBar
	statusLabel    *widget.Label
	logBox         *widget.Entry
	resultBox      *widget.Entry

	requirementEntry *widget.Entry
	analyzeMoreBtn   *widget.Button
}

func (a *vidlensApp) makeAnalysisTab() *analysisTab {
	t := &analysisTab{}

	t.channelEntry = widget.NewEntry()
	t.channelEntry.SetPlaceHolder("Channel URL, @handle, or channel ID")
	t.channelEntry.SetText(a.config.LastChannel)

	t.maxVideosEntry = widget.NewEntry()
	t.maxVideosEntry.SetText(strconv.Itoa(a.config.MaxVideos))

	t.analyzeBtn = widget.NewButton("Phân tích kênh", func() {
		a.startAnalysis(t.channelEntry.Text)
	})
	t.analyzeBtn.Importance = widget.HighImportance

	t.progress = widget.NewProgressBar()
	t.statusLabel = widget.NewLabel("Sẵn sàng")

	t.logBox = widget.NewMultiLineEntry()
	t.logBox.Wrapping = fyne.TextWrapWord
	t.logBox.Disable()

	t.resultBox = widget.NewMultiLineEntry()
	t.resultBox.Wrapping = fyne.TextWrapWord
	t.resultBox.TextStyle = fyne.TextStyle{Monospace: true}

	t.requirementEntry = widget.NewEntry()
	t.requirementEntry.SetPlaceHolder("Yêu cầu phân tích bổ sung (viral, competitor, pattern...)")
	t.analyzeMoreBtn = widget.NewButton("Phân tích thêm", func() {
		a.runAdditionalAnalysis()
	})
	t.analyzeMoreBtn.Disable()

	exportReportBtn := widget.NewButton("Xuất báo cáo", func() {
		a.exportReport()
	})
	exportJSONBtn := widget.NewButton("Xuất JSON", func() {
		a.exportPayloadJSON()
	})
	importJSONBtn := widget.NewButton("Nhập JSON", func() {
		a.importPayloadJSON()
	})

	header := container.NewBorder(nil, nil,
		widget.NewLabel("Kênh:"),
		container.NewHBox(widget.NewLabel("Số video:"), t.maxVideosEntry, t.analyzeBtn),
		t.channelEntry,
	)

	followUp := container.NewBorder(nil, nil, nil, t.analyzeMoreBtn, t.requirementEntry)
	toolbar := container.NewHBox(exportReportBtn, exportJSONBtn, importJSONBtn)

	t.content = container.NewBorder(
		container.NewVBox(header, t.progress, t.statusLabel),
		container.NewVBox(followUp, toolbar),
		nil, nil,
		container.NewVSplit(t.resultBox, t.logBox),
	)
	return t
}

// refreshAnalysisView syncs the tab widgets with the result view state.
// Must run on the UI thread.
func (a *vidlensApp) refreshAnalysisView() {
	t := a.analysisTab
	if t == nil {
		return
	}
	t.statusLabel.SetText(a.view.StatusLine())
	t.logBox.SetText(strings.Join(a.view.Log(), "\n"))
	t.resultBox.SetText(a.view.Rendered())
	if a.view.HasPayload() {
		t.analyzeMoreBtn.Enable()
	} else {
		t.analyzeMoreBtn.Disable()
	}
}
