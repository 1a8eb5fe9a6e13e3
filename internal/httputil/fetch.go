// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the single HTTP GET boundary used by every
// pipeline step.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of an error response body is kept on a FetchError.
const maxErrorBody = 512

// FetchError is the one failure kind for network access: a request that
// could not be built, a transport error (DNS, refused, timeout) or a non-2xx
// status. StatusCode is 0 when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err (or anything it wraps) is a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// Get issues a single GET request. A nil error guarantees a 2xx response
// whose body the caller must close. There are no retries; every failure is
// returned as a *FetchError.
func Get(ctx context.Context, client *http.Client, url, userAgent, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	return resp, nil
}

// GetBytes is Get followed by reading the whole body. A body read failure is
// also reported as a *FetchError.
func GetBytes(ctx context.Context, client *http.Client, url, userAgent, accept string) ([]byte, error) {
	resp, err := Get(ctx, client, url, userAgent, accept)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: 0, Err: fmt.Errorf("reading body: %w", err)}
	}
	return data, nil
}
