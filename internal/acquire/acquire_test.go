// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/paper-fetch/pkg/types"
)

const fakePDFContent = "%PDF-1.4 fake"

const sampleWorkJSON = `{
  "status": "ok",
  "message": {
    "DOI": "10.1038/nature12373",
    "title": ["Nanometre-scale thermometry in a living cell"],
    "container-title": ["Nature"],
    "abstract": "Abstract from CrossRef.",
    "author": [
      {"given": "G.", "family": "Kucsko"},
      {"given": "P. C.", "family": "Maurer"}
    ],
    "issued": {"date-parts": [[2013, 7, 31]]}
  }
}`

// testMirror serves CrossRef, mirror viewer pages and PDF files on one host
// and counts requests per area.
type testMirror struct {
	*httptest.Server
	titleHits  int32
	mirrorHits int32
	fileHits   int32

	mu         sync.Mutex
	titleQuery []string
}

func newTestMirror(t *testing.T) *testMirror {
	t.Helper()
	m := &testMirror{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/works":
			atomic.AddInt32(&m.titleHits, 1)
			title := r.URL.Query().Get("query.title")
			m.mu.Lock()
			m.titleQuery = append(m.titleQuery, r.URL.RawQuery)
			m.mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			switch title {
			case "Nanometre-scale thermometry in a living cell":
				fmt.Fprint(w, `{"message":{"items":[{"DOI":"10.1038/nature12373"}]}}`)
			case "Broken API":
				w.WriteHeader(http.StatusInternalServerError)
			case "Garbled":
				fmt.Fprint(w, `{"message":`)
			case "Bad DOI":
				fmt.Fprint(w, `{"message":{"items":[{"DOI":"not-a-doi"}]}}`)
			default:
				fmt.Fprint(w, `{"message":{"items":[]}}`)
			}
		case strings.HasPrefix(r.URL.Path, "/works/"):
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, sampleWorkJSON)
		case strings.HasPrefix(r.URL.Path, "/mirror/"):
			atomic.AddInt32(&m.mirrorHits, 1)
			doi := strings.TrimPrefix(r.URL.Path, "/mirror/")
			switch doi {
			case "10.9999/unreachable":
				w.WriteHeader(http.StatusServiceUnavailable)
			case "10.7777/noembed":
				fmt.Fprint(w, `<html><body><p>article not found</p></body></html>`)
			case "10.8888/iframe":
				fmt.Fprint(w, `<html><body><iframe id="pdf" src="/files/iframe.pdf"></iframe></body></html>`)
			case "10.6666/broken-file":
				fmt.Fprint(w, `<html><body><embed src="/files/missing.pdf"></body></html>`)
			default:
				fmt.Fprintf(w, `<html><body><div id="article"><embed type="application/pdf" src="//%s/files/%s.pdf#navpanes=0"></div></body></html>`,
					r.Host, Slug(doi))
			}
		case r.URL.Path == "/files/missing.pdf":
			atomic.AddInt32(&m.fileHits, 1)
			http.NotFound(w, r)
		case strings.HasPrefix(r.URL.Path, "/files/"):
			atomic.AddInt32(&m.fileHits, 1)
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, fakePDFContent)
		default:
			http.NotFound(w, r)
		}
	}))
	return m
}

func testConfig(baseURL string) types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "paper-fetch-test/0.1",
		},
		MirrorBase:   baseURL + "/mirror/",
		CrossRefBase: baseURL + "/works",
	}
}

func newObservedFetcher(m *testMirror, cfg types.FetchConfig, opts ...Option) (*Fetcher, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	opts = append([]Option{WithLogger(zap.New(core))}, opts...)
	return New(m.Client(), cfg, opts...), logs
}

type recordingRecorder struct {
	outcomes []Outcome
}

func (r *recordingRecorder) Record(_ context.Context, o Outcome) error {
	r.outcomes = append(r.outcomes, o)
	return nil
}

func TestMirrorURL(t *testing.T) {
	assert.Equal(t, "https://sci-hub.se/10.1000/xyz123", MirrorURL(types.DefaultMirrorBase, "10.1000/xyz123"))
	assert.Equal(t, "https://mirror.example/10.1000/xyz123", MirrorURL("https://mirror.example", "10.1000/xyz123"))
}

func TestNewDefaults(t *testing.T) {
	f := New(nil, types.FetchConfig{})
	cfg := f.Config()
	assert.Equal(t, types.DefaultMirrorBase, cfg.MirrorBase)
	assert.Equal(t, types.DefaultCrossRefBase, cfg.CrossRefBase)
	assert.Equal(t, types.DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, types.DefaultExtractors, cfg.Extractors)
	assert.NotNil(t, f.client)
}

func TestSearchDOIByTitle(t *testing.T) {
	m := newTestMirror(t)
	defer m.Close()

	tests := []struct {
		name    string
		title   string
		wantDOI string
		wantOK  bool
	}{
		{"match", "Nanometre-scale thermometry in a living cell", "10.1038/nature12373", true},
		{"zero items", "No Such Paper", "", false},
		{"server error", "Broken API", "", false},
		{"malformed body", "Garbled", "", false},
		{"result without doi", "Bad DOI", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(m.Client(), testConfig(m.URL))
			doi, ok := f.SearchDOIByTitle(context.Background(), tt.title)
			assert.Equal(t, tt.wantDOI, doi)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestSearchDOIByTitleQuery(t *testing.T) {
	m := newTestMirror(t)
	defer m.Close()

	cfg := testConfig(m.URL)
	cfg.Mailto = "lab@example.org"
	f := New(m.Client(), cfg)
	f.SearchDOIByTitle(context.Background(), "Deep learning & design")

	require.Len(t, m.titleQuery, 1)
	q := m.titleQuery[0]
	assert.Contains(t, q, "query.title=Deep+learning+%26+design")
	assert.Contains(t, q, "rows=1")
	assert.Contains(t, q, "mailto=lab%40example.org")
}

func TestSearchDOIByTitleUnreachable(t *testing.T) {
	m := newTestMirror(t)
	cfg := testConfig(m.URL)
	m.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	f := New(http.DefaultClient, cfg, WithLogger(zap.New(core)))

	doi, ok := f.SearchDOIByTitle(context.Background(), "anything")
	assert.False(t, ok)
	assert.Empty(t, doi)
	assert.Equal(t, 1, logs.FilterMessage("CrossRef title search failed").Len())
}

func TestFetchMetadata(t *testing.T) {
	m := newTestMirror(t)
	defer m.Close()

	f := New(m.Client(), testConfig(m.URL))
	p, err := f.FetchMetadata(context.Background(), "10.1038/nature12373")
	require.NoError(t, err)
	assert.Equal(t, "Nanometre-scale thermometry in a living cell", p.Title)
	assert.Equal(t, "Nature", p.Container)
	assert.Equal(t, []string{"G. Kucsko", "P. C. Maurer"}, p.Authors)
	assert.Equal(t, time.Date(2013, 7, 31, 0, 0, 0, 0, time.UTC), p.Date)
}

func TestFindPDFURL(t *testing.T) {
	m := newTestMirror(t)
	defer m.Close()

	f := New(m.Client(), testConfig(m.URL))
	host := strings.TrimPrefix(m.URL, "http://")

	t.Run("embed protocol relative", func(t *testing.T) {
		got, ok := f.FindPDFURL(context.Background(), MirrorURL(f.cfg.MirrorBase, "10.1000/xyz123"))
		require.True(t, ok)
		assert.Equal(t, "http://"+host+"/files/10.1000_xyz123.pdf#navpanes=0", got)
	})

	t.Run("iframe fallback", func(t *testing.T) {
		got, ok := f.FindPDFURL(context.Background(), MirrorURL(f.cfg.MirrorBase, "10.8888/iframe"))
		require.True(t, ok)
		assert.Equal(t, m.URL+"/files/iframe.pdf", got)
	})

	t.Run("mirror error", func(t *testing.T) {
		got, ok := f.FindPDFURL(context.Background(), MirrorURL(f.cfg.MirrorBase, "10.9999/unreachable"))
		assert.False(t, ok)
		assert.Empty(t, got)
	})
}

func TestFindPDFURLNoEmbed(t *testing.T) {
	m := newTestMirror(t)
	defer m.Close()

	cfg := testConfig(m.URL)
	cfg.Extractors = []string{"embed"}
	f, logs := newObservedFetcher(m, cfg)

	got, ok := f.FindPDFURL(context.Background(), MirrorURL(cfg.MirrorBase, "10.8888/iframe"))
	assert.False(t, ok)
	assert.Empty(t, got)

	entries := logs.FilterMessage("no document element on mirror page").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Contains(t, fmt.Sprint(entries[0].ContextMap()["html"]), "iframe")
}

func TestDownloadPDF(t *testing.T) {
	m := newTestMirror(t)
	defer m.Close()

	f := New(m.Client(), testConfig(m.URL))
	dest := filepath.Join(t.TempDir(), "nested", "paper.pdf")

	require.NoError(t, f.DownloadPDF(context.Background(), m.URL+"/files/a.pdf", dest))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, fakePDFContent, string(data))

	// Overwrites an existing file.
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))
	require.NoError(t, f.DownloadPDF(context.Background(), m.URL+"/files/a.pdf", dest))
	data, err = os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, fakePDFContent, string(data))
}

func TestDownloadPDFFailureWritesNothing(t *testing.T) {
	m := newTestMirror(t)
	defer m.Close()

	f := New(m.Client(), testConfig(m.URL))
	dir := t.TempDir()
	dest := filepath.Join(dir, "paper.pdf")

	err := f.DownloadPDF(context.Background(), m.URL+"/files/missing.pdf", dest)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloadPDFVerifyRejectsGarbage(t *testing.T) {
	m := newTestMirror(t)
	defer m.Close()

	cfg := testConfig(m.URL)
	cfg.VerifyPDF = true
	f := New(m.Client(), cfg)
	dir := t.TempDir()

	err := f.DownloadPDF(context.Background(), m.URL+"/files/a.pdf", filepath.Join(dir, "a.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verifying")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloadPapersMixedBatch(t *testing.T) {
	m := newTestMirror(t)
	defer m.Close()

	rec := &recordingRecorder{}
	var out bytes.Buffer
	f, logs := newObservedFetcher(m, testConfig(m.URL), WithRecorder(rec), WithOutput(&out))
	dir := filepath.Join(t.TempDir(), "downloaded_papers")

	result := f.DownloadPapers(context.Background(), []string{
		"10.1038/nature12373",
		"not a paper at all",
		"10.9999/unreachable",
	}, dir)

	assert.Equal(t, 3, result.Total())
	assert.Equal(t, 1, result.Downloaded)
	assert.Equal(t, 1, result.Unresolved)
	assert.Equal(t, 1, result.NoPDF)
	assert.True(t, result.HasFailures())

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "10.1038_nature12373.pdf", files[0].Name())

	assert.Equal(t, 1, logs.FilterMessage("could not find a DOI, skipping").Len())
	assert.Equal(t, 1, logs.FilterMessage("failed to find PDF on mirror").Len())
	assert.Equal(t, 1, logs.FilterMessage("downloaded").Len())

	require.Len(t, rec.outcomes, 3)
	assert.Equal(t, StatusDownloaded, rec.outcomes[0].Status)
	assert.Equal(t, StatusUnresolved, rec.outcomes[1].Status)
	assert.Equal(t, StatusNoPDF, rec.outcomes[2].Status)

	assert.Contains(t, out.String(), "downloaded: 10.1038/nature12373")
	assert.Contains(t, out.String(), "Batch summary: 1 downloaded, 0 skipped, 1 unresolved, 1 without PDF, 0 failed (total: 3)")
}

func TestDownloadPapersSkipsExisting(t *testing.T) {
	m := newTestMirror(t)
	defer m.Close()

	f, logs := newObservedFetcher(m, testConfig(m.URL))
	dir := t.TempDir()
	refs := []string{"https://doi.org/10.1016/j.cell.2020.01.001"}

	first := f.DownloadPapers(context.Background(), refs, dir)
	assert.Equal(t, 1, first.Downloaded)

	second := f.DownloadPapers(context.Background(), refs, dir)
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, 0, second.Downloaded)

	assert.Equal(t, int32(1), atomic.LoadInt32(&m.mirrorHits))
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.fileHits))
	assert.Equal(t, 1, logs.FilterMessage("already downloaded, skipping").Len())

	_, err := os.Stat(filepath.Join(dir, "10.1016_j.cell.2020.01.001.pdf"))
	assert.NoError(t, err)
}

func TestDownloadPapersResolvesTitle(t *testing.T) {
	m := newTestMirror(t)
	defer m.Close()

	f := New(m.Client(), testConfig(m.URL))
	dir := t.TempDir()

	result := f.DownloadPapers(context.Background(), []string{"Nanometre-scale thermometry in a living cell"}, dir)
	require.Len(t, result.Outcomes, 1)
	o := result.Outcomes[0]
	assert.Equal(t, StatusDownloaded, o.Status)
	assert.True(t, o.ViaTitle)
	assert.Equal(t, KindTitle, o.Reference.Kind)
	assert.Equal(t, "10.1038/nature12373", o.DOI)
	assert.Equal(t, filepath.Join(dir, "10.1038_nature12373.pdf"), o.Path)
}

func TestDownloadPapersURLWithoutDOIFallsBackToTitleSearch(t *testing.T) {
	m := newTestMirror(t)
	defer m.Close()

	f := New(m.Client(), testConfig(m.URL))
	result := f.DownloadPapers(context.Background(), []string{"https://example.com"}, t.TempDir())

	assert.Equal(t, 1, result.Unresolved)
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.titleHits))
	assert.Equal(t, int32(0), atomic.LoadInt32(&m.mirrorHits))
}

func TestDownloadPapersDownloadFailure(t *testing.T) {
	m := newTestMirror(t)
	defer m.Close()

	f, logs := newObservedFetcher(m, testConfig(m.URL))
	result := f.DownloadPapers(context.Background(), []string{"10.6666/broken-file", "10.1000/xyz123"}, t.TempDir())

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Downloaded)
	require.Len(t, result.Outcomes, 2)
	assert.Error(t, result.Outcomes[0].Err)

	failures := logs.FilterMessage("download failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, zapcore.ErrorLevel, failures[0].Level)
}

func TestDownloadPapersEmptyReference(t *testing.T) {
	m := newTestMirror(t)
	defer m.Close()

	f := New(m.Client(), testConfig(m.URL))
	result := f.DownloadPapers(context.Background(), []string{"   "}, t.TempDir())
	assert.Equal(t, 1, result.Unresolved)
	assert.Equal(t, int32(0), atomic.LoadInt32(&m.titleHits))
}

func TestDownloadPapersWritesMetadata(t *testing.T) {
	m := newTestMirror(t)
	defer m.Close()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	origNow := nowFunc
	nowFunc = func() time.Time { return fixed }
	defer func() { nowFunc = origNow }()

	cfg := testConfig(m.URL)
	cfg.WriteMetadata = true
	f := New(m.Client(), cfg)
	dir := t.TempDir()

	result := f.DownloadPapers(context.Background(), []string{"10.1038/nature12373"}, dir)
	require.Equal(t, 1, result.Downloaded)

	p, err := ReadMetadata(MetadataPath(dir, "10.1038/nature12373"))
	require.NoError(t, err)
	assert.Equal(t, "10.1038/nature12373", p.DOI)
	assert.Equal(t, "10.1038/nature12373", p.Reference)
	assert.Equal(t, "Nanometre-scale thermometry in a living cell", p.Title)
	assert.Equal(t, filepath.Join(dir, "10.1038_nature12373.pdf"), p.PDFPath)
	assert.True(t, strings.HasSuffix(p.SourceURL, "/files/10.1038_nature12373.pdf#navpanes=0"))
	assert.True(t, fixed.Equal(p.FetchedAt))
}
