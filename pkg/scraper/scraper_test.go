package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`
			<html>
				<head><title>Papers</title></head>
				<body>
					<a href="/files/first.pdf">First   paper</a>
					<a href="files/first.pdf#page=2">First again</a>
					<a href="/more.html">More</a>
					<a href="/private/secret.pdf">Secret</a>
					<a href="https://elsewhere.example/remote.pdf">Remote</a>
					<a href="/files/missing.pdf">Missing</a>
				</body>
			</html>
		`))
	})
	mux.HandleFunc("/more.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><a href="/files/second-paper.PDF">Second</a></body></html>`))
	})
	mux.HandleFunc("/files/first.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 first"))
	})
	mux.HandleFunc("/files/second-paper.PDF", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 second"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestScrapeDownloadsLinkedPDFs(t *testing.T) {
	site := newSite(t)

	var visited []string
	s, err := NewWithConfig(ScraperConfig{
		BaseURL:        site.URL + "/",
		RateLimit:      1000,
		IgnorePatterns: []string{"/private/"},
		OnProgress:     func(u string) { visited = append(visited, u) },
	})
	require.NoError(t, err)

	pdfs, err := s.Scrape(context.Background())
	require.NoError(t, err)

	require.Len(t, pdfs, 2, "missing download is skipped")
	assert.Equal(t, "first.pdf", pdfs[0].FileName)
	assert.Equal(t, "First paper", pdfs[0].LinkText)
	assert.Equal(t, "%PDF-1.4 first", string(pdfs[0].Data))
	assert.Equal(t, "second-paper.PDF", pdfs[1].FileName)

	assert.Equal(t, []string{
		site.URL + "/files/first.pdf",
		site.URL + "/files/missing.pdf",
		site.URL + "/files/second-paper.PDF",
	}, s.Links())
	assert.Contains(t, visited, site.URL+"/more.html")
}

func TestScrapeRespectsLimits(t *testing.T) {
	site := newSite(t)

	s, err := NewWithConfig(ScraperConfig{
		BaseURL:   site.URL + "/",
		RateLimit: 1000,
		MaxPDFs:   1,
	})
	require.NoError(t, err)

	pdfs, err := s.Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, pdfs, 1)
	assert.Equal(t, "first.pdf", pdfs[0].FileName)

	s, err = NewWithConfig(ScraperConfig{
		BaseURL:     site.URL + "/",
		RateLimit:   1000,
		MaxPDFBytes: 4,
	})
	require.NoError(t, err)

	pdfs, err = s.Scrape(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pdfs)
}

func TestScrapeExternalPDFs(t *testing.T) {
	site := newSite(t)

	s, err := NewWithConfig(ScraperConfig{
		BaseURL:      site.URL + "/",
		RateLimit:    1000,
		MaxDepth:     -1,
		ExternalPDFs: true,
	})
	require.NoError(t, err)

	// Depth -1 stops before fetching anything.
	_, err = s.Scrape(context.Background())
	require.NoError(t, err)
	assert.Empty(t, s.Links())

	s, err = NewWithConfig(ScraperConfig{BaseURL: site.URL + "/", RateLimit: 1000, ExternalPDFs: true})
	require.NoError(t, err)
	require.NoError(t, s.crawl(context.Background(), site.URL+"/", 0))
	assert.Contains(t, s.Links(), "https://elsewhere.example/remote.pdf")
}

func TestScrapeStatusError(t *testing.T) {
	site := newSite(t)

	s, err := NewWithConfig(ScraperConfig{BaseURL: site.URL + "/nope.html", RateLimit: 1000})
	require.NoError(t, err)

	_, err = s.Scrape(context.Background())
	assert.Error(t, err)
}

func TestScrapeCancelled(t *testing.T) {
	site := newSite(t)

	s, err := NewWithConfig(ScraperConfig{BaseURL: site.URL + "/", RateLimit: 1000})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Scrape(ctx)
	assert.Error(t, err)
}

func TestScraperConfig(t *testing.T) {
	config := ScraperConfig{
		BaseURL:        "https://example.com",
		MaxDepth:       5,
		RateLimit:      1.0,
		IgnorePatterns: []string{"/ignore/", "private"},
		Timeout:        10 * time.Second,
	}

	s, err := NewWithConfig(config)
	require.NoError(t, err)
	assert.Equal(t, config.BaseURL, s.config.BaseURL)
	assert.Equal(t, config.MaxDepth, s.config.MaxDepth)
	assert.Equal(t, 50, s.config.MaxPDFs)

	_, err = New("ftp://example.com")
	assert.Error(t, err)
}

func TestShouldProcessURL(t *testing.T) {
	config := ScraperConfig{
		BaseURL:           "https://example.com",
		IgnorePatterns:    []string{"/ignore/", "private"},
		AllowedExtensions: []string{".html", "/"},
	}

	s, err := NewWithConfig(config)
	require.NoError(t, err)

	tests := []struct {
		url      string
		expected bool
	}{
		{"https://example.com/docs/", true},
		{"https://example.com/page.html", true},
		{"https://example.com/ignore/page.html", false},
		{"https://other-domain.com/page.html", false},
		{"https://example.com/file.pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			result := s.shouldProcessURL(tt.url)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIsPDFLink(t *testing.T) {
	for raw, want := range map[string]bool{
		"https://example.com/a.pdf":      true,
		"https://example.com/A.PDF?x=1":  true,
		"https://example.com/a.pdf.html": false,
		"https://example.com/pdfs/":      false,
	} {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, want, IsPDFLink(u), raw)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "second paper.pdf", fileName("https://example.com/files/second%20paper.pdf"))
	assert.Equal(t, "a.pdf", fileName("https://example.com/a.pdf?download=1"))
	assert.Equal(t, "document.pdf", fileName("https://example.com/"))
}

func TestDownload(t *testing.T) {
	site := newSite(t)

	s, err := NewWithConfig(ScraperConfig{BaseURL: site.URL + "/", RateLimit: 1000})
	require.NoError(t, err)

	pdf, err := s.Download(context.Background(), site.URL+"/files/first.pdf")
	require.NoError(t, err)
	assert.Equal(t, "first.pdf", pdf.FileName)
	assert.Equal(t, "%PDF-1.4 first", string(pdf.Data))

	_, err = s.Download(context.Background(), site.URL+"/files/missing.pdf")
	assert.Error(t, err)
}
