// Package acquire resolves paper references to DOIs, scrapes a mirror
// viewer page for the embedded PDF link, and downloads the PDF.
package acquire

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-fetch/pkg/types"
)

// Status is the result of processing one reference.
type Status string

const (
	StatusDownloaded Status = "downloaded"
	StatusSkipped    Status = "skipped"
	StatusUnresolved Status = "unresolved"
	StatusNoPDF      Status = "no_pdf"
	StatusFailed     Status = "failed"
)

// Outcome records what happened to a single reference.
type Outcome struct {
	Reference Reference
	DOI       string
	// ViaTitle is set when the DOI came from the title resolver.
	ViaTitle bool
	Status   Status
	Path     string
	PDFURL   string
	Err      error
}

// Recorder receives every outcome of a batch. The ledger implements it.
type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Unresolved int
	NoPDF      int
	Failed     int
	Outcomes   []Outcome
}

// Total returns the total number of references processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Unresolved + r.NoPDF + r.Failed
}

// HasFailures reports whether any reference ended without a PDF on disk.
func (r BatchResult) HasFailures() bool {
	return r.Unresolved+r.NoPDF+r.Failed > 0
}

func (r *BatchResult) add(o Outcome) {
	switch o.Status {
	case StatusDownloaded:
		r.Downloaded++
	case StatusSkipped:
		r.Skipped++
	case StatusUnresolved:
		r.Unresolved++
	case StatusNoPDF:
		r.NoPDF++
	default:
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Fetcher runs the resolve, scrape and download steps. It holds no state
// between references beyond its configuration.
type Fetcher struct {
	client    *http.Client
	cfg       types.FetchConfig
	log       *zap.Logger
	extractor Extractor
	recorder  Recorder
	out       io.Writer
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

// WithExtractor replaces the selector chain built from cfg.Extractors.
func WithExtractor(e Extractor) Option {
	return func(f *Fetcher) { f.extractor = e }
}

// WithRecorder sends every outcome to r.
func WithRecorder(r Recorder) Option {
	return func(f *Fetcher) { f.recorder = r }
}

// WithOutput sets where per-reference status lines and the batch summary
// are printed.
func WithOutput(w io.Writer) Option {
	return func(f *Fetcher) { f.out = w }
}

// New returns a Fetcher. A nil client gets a fresh http.Client using
// cfg.Timeout.
func New(client *http.Client, cfg types.FetchConfig, opts ...Option) *Fetcher {
	cfg = cfg.WithDefaults()
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	f := &Fetcher{
		client: client,
		cfg:    cfg,
		log:    zap.NewNop(),
		out:    io.Discard,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.extractor == nil {
		f.extractor = NewChain(cfg.Extractors)
	}
	return f
}

// Config returns the effective configuration.
func (f *Fetcher) Config() types.FetchConfig {
	return f.cfg
}
