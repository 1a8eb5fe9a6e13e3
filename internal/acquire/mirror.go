// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-fetch/internal/httputil"
)

// MirrorURL returns the mirror viewer page URL for doi.
func MirrorURL(base, doi string) string {
	return strings.TrimRight(base, "/") + "/" + doi
}

// FindPDFURL fetches a mirror viewer page and returns the absolute URL of the
// embedded document. A failed fetch, unparseable HTML, or a page without a
// matching element is logged and reported as not found.
func (f *Fetcher) FindPDFURL(ctx context.Context, pageURL string) (string, bool) {
	log := f.log.With(zap.String("page", pageURL))

	body, err := httputil.GetBytes(ctx, f.client, pageURL, f.cfg.UserAgent, "text/html")
	if err != nil {
		log.Warn("fetching mirror page failed", zap.Error(err))
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		log.Warn("parsing mirror page", zap.Error(err))
		return "", false
	}

	src, ok := f.extractor.Extract(doc)
	if !ok {
		log.Debug("no document element on mirror page", zap.ByteString("html", body))
		return "", false
	}

	abs, err := resolveLink(pageURL, src)
	if err != nil {
		log.Warn("unusable document link", zap.String("src", src), zap.Error(err))
		return "", false
	}
	return abs, true
}

// resolveLink makes src absolute relative to pageURL. Mirrors commonly use
// protocol-relative links ("//host/file.pdf").
func resolveLink(pageURL, src string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parsing page URL: %w", err)
	}
	ref, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("parsing link: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}
