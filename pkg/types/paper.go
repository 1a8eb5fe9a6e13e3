// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Paper holds CrossRef metadata and file paths for a downloaded paper.
// It is written as a YAML sidecar next to the PDF when enabled.
type Paper struct {
	// DOI is the resolved Digital Object Identifier.
	DOI string `json:"doi" yaml:"doi"`

	// Reference is the raw input the DOI was resolved from.
	Reference string `json:"reference" yaml:"reference"`

	// SourceURL is the URL from which the PDF was downloaded.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// PDFPath is the local filesystem path to the downloaded PDF.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// Pages is the page count, set only when the PDF was verified.
	Pages int `json:"pages,omitempty" yaml:"pages,omitempty"`

	Title    string    `json:"title" yaml:"title"`
	Authors  []string  `json:"authors" yaml:"authors"`
	Date     time.Time `json:"date" yaml:"date"`
	Abstract string    `json:"abstract" yaml:"abstract"`

	// Container is the journal or proceedings title.
	Container string `json:"container,omitempty" yaml:"container,omitempty"`

	// FetchedAt records when the PDF was written.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}
