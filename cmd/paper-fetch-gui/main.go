// Package main starts the paper-fetch desktop window.
package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-fetch/internal/acquire"
	"github.com/pdiddy/paper-fetch/internal/ui"
	"github.com/pdiddy/paper-fetch/pkg/types"
)

func main() {
	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := types.FetchConfig{}.WithDefaults()
	fetcher := acquire.New(nil, cfg, acquire.WithLogger(log))

	a := app.NewWithID("com.pdiddy.paper-fetch")
	w := a.NewWindow("PDF Agent")
	w.Resize(fyne.NewSize(480, 180))

	ui.NewWindow(w, fetcher, cfg.OutputDir, log)
	w.ShowAndRun()
}
