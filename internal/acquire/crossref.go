// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-fetch/internal/httputil"
	"github.com/pdiddy/paper-fetch/pkg/types"
)

// CrossRef API JSON structures.
type crossrefSearchResponse struct {
	Message struct {
		Items []struct {
			DOI string `json:"DOI"`
		} `json:"items"`
	} `json:"message"`
}

type crossrefResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	DOI       string           `json:"DOI"`
	Title     []string         `json:"title"`
	Container []string         `json:"container-title"`
	Abstract  string           `json:"abstract"`
	Author    []crossrefAuthor `json:"author"`
	Issued    crossrefDate     `json:"issued"`
	Created   crossrefDate     `json:"created"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

func (d crossrefDate) time() (time.Time, bool) {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 || d.DateParts[0][0] == 0 {
		return time.Time{}, false
	}
	parts := d.DateParts[0]
	month, day := 1, 1
	if len(parts) >= 2 {
		month = parts[1]
	}
	if len(parts) >= 3 {
		day = parts[2]
	}
	return time.Date(parts[0], time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// titleSearchURL builds the CrossRef bibliographic query for a title,
// asking for a single result.
func (f *Fetcher) titleSearchURL(title string) string {
	params := url.Values{
		"query.title": {title},
		"rows":        {"1"},
	}
	if f.cfg.Mailto != "" {
		params.Set("mailto", f.cfg.Mailto)
	}
	return f.cfg.CrossRefBase + "?" + params.Encode()
}

// SearchDOIByTitle asks CrossRef for the best match of a free-text title and
// returns its DOI. Any failure, an empty result list, or a DOI that does not
// look like one is logged and reported as not found.
func (f *Fetcher) SearchDOIByTitle(ctx context.Context, title string) (string, bool) {
	log := f.log.With(zap.String("title", title))

	body, err := httputil.GetBytes(ctx, f.client, f.titleSearchURL(title), f.cfg.UserAgent, "application/json")
	if err != nil {
		log.Warn("CrossRef title search failed", zap.Error(err))
		return "", false
	}

	var sr crossrefSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		log.Warn("parsing CrossRef response", zap.Error(err))
		return "", false
	}
	if len(sr.Message.Items) == 0 {
		log.Info("CrossRef returned no results")
		return "", false
	}

	doi, ok := ExtractDOI(sr.Message.Items[0].DOI)
	if !ok {
		log.Warn("CrossRef result has no usable DOI", zap.String("doi", sr.Message.Items[0].DOI))
		return "", false
	}
	log.Debug("resolved title", zap.String("doi", doi))
	return doi, true
}

// FetchMetadata retrieves the CrossRef work record for doi.
func (f *Fetcher) FetchMetadata(ctx context.Context, doi string) (*types.Paper, error) {
	apiURL := strings.TrimRight(f.cfg.CrossRefBase, "/") + "/" + doi
	if f.cfg.Mailto != "" {
		apiURL += "?" + url.Values{"mailto": {f.cfg.Mailto}}.Encode()
	}

	body, err := httputil.GetBytes(ctx, f.client, apiURL, f.cfg.UserAgent, "application/json")
	if err != nil {
		return nil, fmt.Errorf("CrossRef API request: %w", err)
	}

	var cr crossrefResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("parsing CrossRef response: %w", err)
	}

	p := &types.Paper{DOI: doi}
	if len(cr.Message.Title) > 0 {
		p.Title = strings.TrimSpace(cr.Message.Title[0])
	}
	if len(cr.Message.Container) > 0 {
		p.Container = cr.Message.Container[0]
	}
	p.Abstract = cr.Message.Abstract

	for _, a := range cr.Message.Author {
		name := a.Name
		if name == "" {
			name = strings.TrimSpace(a.Given + " " + a.Family)
		}
		if name != "" {
			p.Authors = append(p.Authors, name)
		}
	}

	if t, ok := cr.Message.Issued.time(); ok {
		p.Date = t
	} else if t, ok := cr.Message.Created.time(); ok {
		p.Date = t
	}
	return p, nil
}
