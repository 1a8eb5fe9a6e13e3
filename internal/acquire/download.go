// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-fetch/internal/httputil"
	"github.com/pdiddy/paper-fetch/internal/pdfcheck"
	"github.com/pdiddy/paper-fetch/pkg/types"
)

// DownloadPDF fetches pdfURL and writes the body to destPath, replacing any
// existing file. Nothing is written when the fetch fails.
func (f *Fetcher) DownloadPDF(ctx context.Context, pdfURL, destPath string) error {
	_, err := f.download(ctx, pdfURL, destPath)
	return err
}

// download streams pdfURL into a temporary file next to destPath and renames
// it into place. With VerifyPDF set the temporary file must parse as a PDF;
// the page count is returned (0 when unverified).
func (f *Fetcher) download(ctx context.Context, pdfURL, destPath string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return 0, fmt.Errorf("creating directory: %w", err)
	}

	resp, err := httputil.Get(ctx, f.client, pdfURL, f.cfg.UserAgent, "application/pdf")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	var pages int
	if f.cfg.VerifyPDF {
		pages, err = pdfcheck.Verify(tmpPath)
		if err != nil {
			os.Remove(tmpPath)
			return 0, fmt.Errorf("verifying %s: %w", pdfURL, err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return pages, nil
}

// writeSidecar fetches CrossRef metadata for a downloaded paper and writes it
// next to the PDF. Failures only produce a warning.
func (f *Fetcher) writeSidecar(ctx context.Context, o Outcome, pages int, log *zap.Logger) {
	p, err := f.FetchMetadata(ctx, o.DOI)
	if err != nil {
		log.Warn("CrossRef metadata fetch failed", zap.Error(err))
		p = &types.Paper{DOI: o.DOI}
	}
	p.Reference = o.Reference.Raw
	p.SourceURL = o.PDFURL
	p.PDFPath = o.Path
	p.Pages = pages
	p.FetchedAt = nowFunc().UTC()

	path := MetadataPath(filepath.Dir(o.Path), o.DOI)
	if err := writeMetadata(p, path); err != nil {
		log.Warn("writing metadata sidecar", zap.String("path", path), zap.Error(err))
	}
}

// writeMetadata writes a Paper record to a YAML file.
func writeMetadata(paper *types.Paper, path string) error {
	data, err := yaml.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadMetadata reads a Paper record from a YAML sidecar.
func ReadMetadata(path string) (*types.Paper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var paper types.Paper
	if err := yaml.Unmarshal(data, &paper); err != nil {
		return nil, err
	}
	return &paper, nil
}
