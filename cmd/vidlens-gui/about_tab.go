package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/vidlens/internal/version"
)

func makeAboutTab() fyne.CanvasObject {
	return container.NewPadded(container.NewVBox(
		widget.NewLabelWithStyle("vidlens", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("YouTube channel analysis toolkit", fyne.TextAlignCenter, fyne.TextStyle{}),
		widget.NewLabelWithStyle(version.Info(), fyne.TextAlignCenter, fyne.TextStyle{Monospace: true}),
		widget.NewLabel(""),
		widget.NewHyperlinkWithStyle("github.com/oukeidos/vidlens", nil, fyne.TextAlignCenter, fyne.TextStyle{}),
	))
}
