// Package status produces the status-line text shown by the single-paper
// GUI. It has no UI dependencies so the wording can be tested directly.
package status

import (
	"fmt"
	"strings"

	"github.com/pdiddy/paper-fetch/internal/acquire"
)

// PromptEmpty is shown when the button is pressed with no input.
const PromptEmpty = "Please enter a title or DOI."

// Begin validates the entry text. It returns the trimmed reference and the
// label to show while the download runs; ok is false when there is nothing
// to download and label holds the prompt instead.
func Begin(input string) (ref, label string, ok bool) {
	ref = strings.TrimSpace(input)
	if ref == "" {
		return "", PromptEmpty, false
	}
	return ref, "Downloading: " + ref, true
}

// Complete is the label shown once the pipeline has returned.
func Complete(ref string) string {
	return "Download complete for: " + ref
}

// Summarize extends Complete with what happened to the single reference.
func Summarize(ref string, result acquire.BatchResult) string {
	if len(result.Outcomes) == 0 {
		return Complete(ref)
	}
	o := result.Outcomes[0]
	switch o.Status {
	case acquire.StatusDownloaded:
		return fmt.Sprintf("%s (saved to %s)", Complete(ref), o.Path)
	case acquire.StatusSkipped:
		return fmt.Sprintf("%s (already downloaded)", Complete(ref))
	case acquire.StatusUnresolved:
		return fmt.Sprintf("%s (no DOI found)", Complete(ref))
	case acquire.StatusNoPDF:
		return fmt.Sprintf("%s (no PDF on mirror for %s)", Complete(ref), o.DOI)
	default:
		return fmt.Sprintf("%s (failed: %v)", Complete(ref), o.Err)
	}
}
