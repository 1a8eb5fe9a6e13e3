// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// nowFunc is replaced in tests.
var nowFunc = time.Now

// DownloadPapers processes refs one after another and writes each PDF into
// outputDir. It never fails: every problem is logged, recorded as an
// Outcome, and the batch moves on to the next reference.
func (f *Fetcher) DownloadPapers(ctx context.Context, refs []string, outputDir string) BatchResult {
	var result BatchResult

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		f.log.Error("creating output directory", zap.String("dir", outputDir), zap.Error(err))
	}

	for _, raw := range refs {
		o := f.Process(ctx, raw, outputDir)
		f.report(o)
		if f.recorder != nil {
			if err := f.recorder.Record(ctx, o); err != nil {
				f.log.Warn("recording outcome", zap.String("ref", o.Reference.Raw), zap.Error(err))
			}
		}
		result.add(o)
	}

	fmt.Fprintf(f.out, "\nBatch summary: %d downloaded, %d skipped, %d unresolved, %d without PDF, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Unresolved, result.NoPDF, result.Failed, result.Total())
	return result
}

// Process runs the full pipeline for a single reference.
func (f *Fetcher) Process(ctx context.Context, raw, outputDir string) Outcome {
	ref := Classify(raw)
	o := Outcome{Reference: ref}
	log := f.log.With(zap.String("ref", ref.Raw), zap.Stringer("kind", ref.Kind))

	if ref.Raw == "" {
		log.Warn("empty reference, skipping")
		o.Status = StatusUnresolved
		return o
	}

	doi := ref.DOI
	if doi == "" {
		var ok bool
		doi, ok = f.SearchDOIByTitle(ctx, ref.Raw)
		if !ok {
			log.Warn("could not find a DOI, skipping")
			o.Status = StatusUnresolved
			return o
		}
		o.ViaTitle = true
	}
	o.DOI = doi
	o.Path = OutputPath(outputDir, doi)
	log = log.With(zap.String("doi", doi))

	if _, err := os.Stat(o.Path); err == nil {
		log.Info("already downloaded, skipping", zap.String("path", o.Path))
		o.Status = StatusSkipped
		return o
	}

	pdfURL, ok := f.FindPDFURL(ctx, MirrorURL(f.cfg.MirrorBase, doi))
	if !ok {
		log.Warn("failed to find PDF on mirror")
		o.Status = StatusNoPDF
		return o
	}
	o.PDFURL = pdfURL

	pages, err := f.download(ctx, pdfURL, o.Path)
	if err != nil {
		log.Error("download failed", zap.String("url", pdfURL), zap.Error(err))
		o.Status = StatusFailed
		o.Err = err
		return o
	}
	o.Status = StatusDownloaded
	log.Info("downloaded", zap.String("path", o.Path))

	if f.cfg.WriteMetadata {
		f.writeSidecar(ctx, o, pages, log)
	}
	return o
}

// report prints a one-line status for o.
func (f *Fetcher) report(o Outcome) {
	switch o.Status {
	case StatusDownloaded:
		fmt.Fprintf(f.out, "downloaded: %s -> %s\n", o.DOI, o.Path)
	case StatusSkipped:
		fmt.Fprintf(f.out, "skipped:    %s (already exists)\n", o.DOI)
	case StatusUnresolved:
		fmt.Fprintf(f.out, "unresolved: %q (no DOI found)\n", o.Reference.Raw)
	case StatusNoPDF:
		fmt.Fprintf(f.out, "no pdf:     %s (not found on mirror)\n", o.DOI)
	default:
		fmt.Fprintf(f.out, "failed:     %s (%v)\n", o.DOI, o.Err)
	}
}
