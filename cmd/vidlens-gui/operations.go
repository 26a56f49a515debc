package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/vidlens/internal/apperrors"
	"github.com/oukeidos/vidlens/internal/collector"
	"github.com/oukeidos/vidlens/internal/files"
	"github.com/oukeidos/vidlens/internal/logger"
	"github.com/oukeidos/vidlens/internal/panel"
	"github.com/oukeidos/vidlens/internal/youtube"
)

// testAllDelay paces the "Test All APIs" completion dialog. The per-key
// results are already known before the goroutine starts; the delay only
// keeps the progress dialog visible long enough to read.
const testAllDelay = 1200 * time.Millisecond

func (a *vidlensApp) startAnalysis(channelRef string) {
	channelRef = strings.TrimSpace(channelRef)
	if channelRef == "" {
		a.showError(apperrors.EmptyInput("Vui lòng nhập kênh cần phân tích."))
		return
	}

	if ready, reason := a.store.IsReadyForAnalysis(); !ready {
		dialog.ShowInformation("Chưa sẵn sàng", reason, a.window)
		return
	}
	_, youtubeKeys, _, _ := a.store.StoredCredentials()

	maxVideos := a.config.MaxVideos
	if t := a.analysisTab; t != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(t.maxVideosEntry.Text)); err == nil {
			maxVideos, _ = clampMaxVideos(n)
			t.maxVideosEntry.SetText(strconv.Itoa(maxVideos))
		}
		t.analyzeBtn.Disable()
		t.progress.SetValue(0)
	}
	a.config.LastChannel = channelRef
	a.config.MaxVideos = maxVideos
	a.saveConfig()

	ctx, cancel := context.WithCancel(context.Background())
	cancelID := a.setActiveCancel(cancel)
	apiKey := youtubeKeys[0]

	a.safeGo("ops.analyze", func() {
		defer a.clearActiveCancel(cancelID)

		client, err := youtube.NewClient(ctx, apiKey)
		if err != nil {
			a.finishAnalysis(completionForError(err))
			return
		}

		coll := collector.New(client,
			collector.WithMaxVideos(int64(maxVideos)),
			collector.WithProgress(func(ev panel.ProgressEvent) {
				a.safeDo("ops.analyze.progress", func() {
					a.view.OnProgress(ev)
					if t := a.analysisTab; t != nil {
						t.progress.SetValue(ev.Percent / 100)
					}
					a.refreshAnalysisView()
				})
			}),
		)

		payload, err := coll.Run(ctx, channelRef)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				logger.Warn("Analysis canceled", "channel", channelRef)
				a.finishAnalysis(panel.Completion{Status: "error", Error: "Đã hủy phân tích."})
				return
			}
			a.finishAnalysis(completionForError(err))
			return
		}
		a.finishAnalysis(panel.Completion{Status: "success", Data: payload})
	})
}

func (a *vidlensApp) finishAnalysis(res panel.Completion) {
	a.safeDo("ops.analyze.done", func() {
		a.view.OnComplete(res)
		if t := a.analysisTab; t != nil {
			t.analyzeBtn.Enable()
			if res.Status == "success" {
				t.progress.SetValue(1)
			}
		}
		a.refreshAnalysisView()
	})
}

func completionForError(err error) panel.Completion {
	logger.Error("Analysis failed", "error", err)
	return panel.Completion{Status: "error", Error: apperrors.PublicMessage(err)}
}

func (a *vidlensApp) runAdditionalAnalysis() {
	t := a.analysisTab
	if t == nil {
		return
	}
	rendered, err := a.engine.Analyze(t.requirementEntry.Text)
	if err != nil {
		a.showError(err)
		return
	}
	t.requirementEntry.SetText("")
	t.resultBox.SetText(rendered)
}

func (a *vidlensApp) testEntry(handle panel.EntryHandle, resultLabel *widget.Label) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	a.safeGo("ops.test_entry", func() {
		defer cancel()
		result, err := a.controller.TestEntry(ctx, handle)
		a.safeDo("ops.test_entry.done", func() {
			if err != nil {
				resultLabel.SetText("❌ " + apperrors.PublicMessage(err))
			} else {
				resultLabel.SetText(entryResultText(&result))
			}
			a.refreshStatusSummary()
		})
	})
}

func (a *vidlensApp) commitAllSettings() {
	if err := a.controller.CommitAll(); err != nil {
		a.showError(err)
		return
	}
	a.refreshStatusSummary()
	dialog.ShowInformation("Đã lưu", "Tất cả cài đặt đã được lưu.", a.window)
}

// runTestAll reports the already-recorded per-key outcomes after a short
// pause. No credential is re-tested here; the goroutine exists only so the
// progress dialog stays responsive.
func (a *vidlensApp) runTestAll() {
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
	summary := formatTestAllSummary(counts, reason)

	progress := dialog.NewCustomWithoutButtons("Test All APIs",
		widget.NewLabel("Đang kiểm tra API keys..."), a.window)
	progress.Show()

	a.safeGo("ops.test_all", func() {
		time.Sleep(testAllDelay)
		a.safeDo("ops.test_all.done", func() {
			progress.Hide()
			dialog.ShowInformation("Kết quả kiểm tra", summary, a.window)
		})
	})
}

type providerCount struct {
	label      string
	configured int
	valid      int
}

func formatTestAllSummary(counts []providerCount, reason string) string {
	var b strings.Builder
	for _, c := range counts {
		fmt.Fprintf(&b, "%s: %d/%d hợp lệ\n", c.label, c.valid, c.configured)
	}
	b.WriteString("\n")
	b.WriteString(reason)
	return b.String()
}

func (a *vidlensApp) exportReport() {
	if !a.view.HasPayload() {
		a.showError(apperrors.NoPayload())
		return
	}
	a.saveToFile("phan_tich_kenh.txt", ".txt", []byte(a.view.Rendered()+"\n"))
}

func (a *vidlensApp) exportPayloadJSON() {
	data, err := a.view.ExportJSON()
	if err != nil {
		a.showError(err)
		return
	}
	a.saveToFile("ket_qua_phan_tich.json", ".json", data)
}

func (a *vidlensApp) saveToFile(defaultName, ext string, data []byte) {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		// The atomic writer replaces the file; close the picker's handle
		// without writing through it.
		writer.Close()

		savePath := writer.URI().Path()
		if filepath.Ext(savePath) == "" {
			savePath += ext
		}
		if err := files.RejectSymlinkPath(savePath); err != nil {
			a.showError(err)
			return
		}
		if err := files.AtomicWrite(savePath, data, 0o644); err != nil {
			a.showError(apperrors.Persistence(err))
			return
		}
		dialog.ShowInformation("Đã xuất", "Đã lưu: "+filepath.Base(savePath), a.window)
	}, a.window)
	fd.SetFileName(defaultName)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	fd.Show()
}

func (a *vidlensApp) importPayloadJSON() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()

		raw, err := io.ReadAll(reader)
		if err != nil {
			a.showError(apperrors.Persistence(err))
			return
		}
		if err := a.view.ImportPayload(raw); err != nil {
			a.showError(err)
			return
		}
		a.refreshAnalysisView()
	}, a.window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	fd.Show()
}

func (a *vidlensApp) showError(err error) {
	logger.Error("Operation failed", "error", err)
	dialog.ShowError(errors.New(apperrors.PublicMessage(err)), a.window)
}
