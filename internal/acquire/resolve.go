// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Kind classifies a paper reference.
type Kind int

const (
	KindTitle Kind = iota
	KindDOI
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindDOI:
		return "doi"
	case KindURL:
		return "url"
	default:
		return "title"
	}
}

// doiPattern matches DOIs anywhere in a string: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[-._;()/:A-Za-z0-9]+`)

// Reference is a classified input string. DOI is empty when no DOI could be
// read from Raw; a title reference never carries one.
type Reference struct {
	Raw  string
	Kind Kind
	DOI  string
}

// ExtractDOI returns the first DOI found in s.
func ExtractDOI(s string) (string, bool) {
	m := doiPattern.FindString(s)
	return m, m != ""
}

// Classify decides once whether raw is a URL, a DOI or a free-text title.
// Anything containing "http" is a URL, whether or not a DOI can be read
// from it. Otherwise a DOI match anywhere in the string makes it a DOI.
func Classify(raw string) Reference {
	raw = strings.TrimSpace(raw)
	doi, ok := ExtractDOI(raw)

	if strings.Contains(raw, "http") {
		return Reference{Raw: raw, Kind: KindURL, DOI: doi}
	}
	if ok {
		return Reference{Raw: raw, Kind: KindDOI, DOI: doi}
	}
	return Reference{Raw: raw, Kind: KindTitle}
}

// Slug returns the filename stem for a DOI: slashes become underscores.
func Slug(doi string) string {
	return strings.ReplaceAll(doi, "/", "_")
}

// OutputPath returns <dir>/<slug>.pdf for a DOI.
func OutputPath(dir, doi string) string {
	return filepath.Join(dir, Slug(doi)+".pdf")
}

// MetadataPath returns <dir>/<slug>.yaml for a DOI.
func MetadataPath(dir, doi string) string {
	return filepath.Join(dir, Slug(doi)+".yaml")
}
