package types

import "time"

// HTTPConfig holds shared HTTP settings used by every network call.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero leaves the client default
	// (no timeout).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-fetch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for resolving and downloading papers.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// OutputDir is the directory PDFs are written to (default "downloaded_papers").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// MirrorBase is the mirror service prefix a DOI is appended to
	// (default "https://sci-hub.se/").
	MirrorBase string `json:"mirror_base" yaml:"mirror_base"`

	// CrossRefBase is the CrossRef works endpoint
	// (default "https://api.crossref.org/works").
	CrossRefBase string `json:"crossref_base" yaml:"crossref_base"`

	// Mailto is sent to CrossRef as the polite-pool contact address.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`

	// Extractors lists CSS selectors tried in order on the mirror viewer
	// page; the first match's src attribute is the PDF link.
	Extractors []string `json:"extractors" yaml:"extractors"`

	// WriteMetadata writes a CrossRef metadata sidecar next to each PDF.
	WriteMetadata bool `json:"write_metadata" yaml:"write_metadata"`

	// VerifyPDF rejects downloads that do not parse as PDF documents.
	VerifyPDF bool `json:"verify_pdf" yaml:"verify_pdf"`
}

// Defaults for FetchConfig fields left empty.
const (
	DefaultOutputDir    = "downloaded_papers"
	DefaultMirrorBase   = "https://sci-hub.se/"
	DefaultCrossRefBase = "https://api.crossref.org/works"
	DefaultUserAgent    = "paper-fetch/0.1"
)

// DefaultExtractors is the selector chain used when none is configured.
// Older mirror layouts used an iframe instead of an embed.
var DefaultExtractors = []string{"embed", "iframe"}

// WithDefaults returns a copy of cfg with empty fields filled in.
func (cfg FetchConfig) WithDefaults() FetchConfig {
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.MirrorBase == "" {
		cfg.MirrorBase = DefaultMirrorBase
	}
	if cfg.CrossRefBase == "" {
		cfg.CrossRefBase = DefaultCrossRefBase
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if len(cfg.Extractors) == 0 {
		cfg.Extractors = append([]string(nil), DefaultExtractors...)
	}
	return cfg
}
