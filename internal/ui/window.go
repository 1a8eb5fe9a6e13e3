// Package ui is the single-paper desktop front end. It collects one title or
// DOI, runs the same pipeline as the CLI on a one-element list, and reports
// progress in a status label.
package ui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-fetch/internal/acquire"
	"github.com/pdiddy/paper-fetch/internal/status"
)

// Window wires the entry, button and status label to a Fetcher.
type Window struct {
	window    fyne.Window
	fetcher   *acquire.Fetcher
	outputDir string
	log       *zap.Logger

	entry  *widget.Entry
	button *widget.Button
	label  *widget.Label
}

// NewWindow builds the content of w.
func NewWindow(w fyne.Window, fetcher *acquire.Fetcher, outputDir string, log *zap.Logger) *Window {
	ui := &Window{
		window:    w,
		fetcher:   fetcher,
		outputDir: outputDir,
		log:       log,
	}

	ui.entry = widget.NewEntry()
	ui.entry.SetPlaceHolder("Enter paper title or DOI")
	ui.entry.OnSubmitted = func(string) { ui.download() }

	ui.button = widget.NewButton("Download PDF", ui.download)

	ui.label = widget.NewLabel("")
	ui.label.Wrapping = fyne.TextWrapWord

	w.SetContent(container.NewVBox(ui.entry, ui.button, ui.label))
	return ui
}

// download runs off the UI goroutine; label updates go through fyne.Do.
func (ui *Window) download() {
	ref, label, ok := status.Begin(ui.entry.Text)
	ui.label.SetText(label)
	if !ok {
		return
	}
	ui.button.Disable()

	go func() {
		ui.log.Info("gui download", zap.String("ref", ref))
		result := ui.fetcher.DownloadPapers(context.Background(), []string{ref}, ui.outputDir)
		fyne.Do(func() {
			ui.label.SetText(status.Summarize(ref, result))
			ui.button.Enable()
		})
	}()
}
