// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extractor finds the document link on a parsed mirror viewer page. The
// returned link may be relative; the caller resolves it against the page URL.
type Extractor interface {
	Extract(doc *goquery.Document) (string, bool)
}

// SelectorExtractor returns the Attr value of the first element matching
// Selector that has a non-empty value for it.
type SelectorExtractor struct {
	Selector string
	Attr     string
}

// ParseSelector reads "selector" or "selector@attr". The attribute
// defaults to src.
func ParseSelector(sel string) SelectorExtractor {
	sel = strings.TrimSpace(sel)
	if i := strings.LastIndex(sel, "@"); i > 0 && i < len(sel)-1 {
		return SelectorExtractor{Selector: sel[:i], Attr: sel[i+1:]}
	}
	return SelectorExtractor{Selector: sel, Attr: "src"}
}

func (e SelectorExtractor) Extract(doc *goquery.Document) (string, bool) {
	var found string
	doc.Find(e.Selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr(e.Attr); ok && strings.TrimSpace(v) != "" {
			found = strings.TrimSpace(v)
			return false
		}
		return true
	})
	return found, found != ""
}

func (e SelectorExtractor) String() string {
	return e.Selector + "@" + e.Attr
}

// Chain tries each extractor in order and returns the first hit.
type Chain []Extractor

// NewChain builds a Chain from selector strings (see ParseSelector).
func NewChain(sels []string) Chain {
	chain := make(Chain, 0, len(sels))
	for _, s := range sels {
		if strings.TrimSpace(s) == "" {
			continue
		}
		chain = append(chain, ParseSelector(s))
	}
	return chain
}

func (c Chain) Extract(doc *goquery.Document) (string, bool) {
	for _, e := range c {
		if v, ok := e.Extract(doc); ok {
			return v, true
		}
	}
	return "", false
}
