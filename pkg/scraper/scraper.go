// Package scraper crawls HTML pages and downloads the PDF documents they
// link to, for bulk ingestion.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/xhad/docsearch/pkg/observability"
)

// ErrTooLarge is returned for PDFs above the configured size limit.
var ErrTooLarge = errors.New("pdf exceeds size limit")

type ScraperConfig struct {
	BaseURL        string
	MaxDepth       int
	RateLimit      float64 // requests per second
	IgnorePatterns []string
	// AllowedExtensions are the page path suffixes that are followed.
	AllowedExtensions []string
	MaxPDFs           int
	MaxPDFBytes       int64
	// ExternalPDFs allows PDF links on other hosts. Pages are always
	// restricted to the base host.
	ExternalPDFs bool
	Timeout      time.Duration
	OnProgress   func(url string)
	Logger       *slog.Logger
}

// PDF is a downloaded document.
type PDF struct {
	URL      string
	FileName string
	LinkText string
	Data     []byte
}

type Scraper struct {
	config   ScraperConfig
	client   *http.Client
	visited  map[string]bool
	found    map[string]bool
	links    []link
	limiter  *rate.Limiter
	baseHost string
}

type link struct {
	url  string
	text string
}

func NewWithConfig(config ScraperConfig) (*Scraper, error) {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxDepth == 0 {
		config.MaxDepth = 1
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2 // 2 requests per second by default
	}
	if config.MaxPDFs == 0 {
		config.MaxPDFs = 50
	}
	if config.MaxPDFBytes == 0 {
		config.MaxPDFBytes = 32 << 20
	}
	if len(config.AllowedExtensions) == 0 {
		config.AllowedExtensions = []string{".html", ".htm", "/", ""}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	parsedURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", config.BaseURL)
	}

	return &Scraper{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		visited:  make(map[string]bool),
		found:    make(map[string]bool),
		limiter:  rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		baseHost: parsedURL.Host,
	}, nil
}

func New(baseURL string) (*Scraper, error) {
	return NewWithConfig(ScraperConfig{
		BaseURL: baseURL,
	})
}

// IsPDFLink reports whether u points at a .pdf path.
func IsPDFLink(u *url.URL) bool {
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

func (s *Scraper) shouldProcessURL(urlStr string) bool {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	// Check if URL is from the same host
	if parsedURL.Host != s.baseHost {
		return false
	}

	// Check extensions
	ext := strings.ToLower(parsedURL.Path)
	validExt := false
	for _, allowedExt := range s.config.AllowedExtensions {
		if allowedExt == "" {
			if path.Ext(ext) == "" {
				validExt = true
				break
			}
			continue
		}
		if strings.HasSuffix(ext, allowedExt) {
			validExt = true
			break
		}
	}
	if !validExt {
		return false
	}

	return !s.ignored(urlStr)
}

func (s *Scraper) ignored(urlStr string) bool {
	for _, pattern := range s.config.IgnorePatterns {
		if strings.Contains(urlStr, pattern) {
			return true
		}
	}
	return false
}

// Scrape crawls from the base URL and downloads up to MaxPDFs linked
// documents. Downloads that fail are logged and skipped.
func (s *Scraper) Scrape(ctx context.Context) ([]PDF, error) {
	if err := s.crawl(ctx, s.config.BaseURL, 0); err != nil {
		return nil, err
	}

	var pdfs []PDF
	for _, l := range s.links {
		data, err := s.download(ctx, l.url)
		if err != nil {
			if ctx.Err() != nil {
				return pdfs, ctx.Err()
			}
			observability.CrawledPDFsTotal.WithLabelValues("failed").Inc()
			s.config.Logger.Warn("skipping pdf", "url", l.url, "error", err)
			continue
		}
		observability.CrawledPDFsTotal.WithLabelValues("downloaded").Inc()
		pdfs = append(pdfs, PDF{
			URL:      l.url,
			FileName: fileName(l.url),
			LinkText: l.text,
			Data:     data,
		})
	}
	return pdfs, nil
}

// Download fetches a single PDF by URL.
func (s *Scraper) Download(ctx context.Context, urlStr string) (PDF, error) {
	data, err := s.download(ctx, urlStr)
	if err != nil {
		observability.CrawledPDFsTotal.WithLabelValues("failed").Inc()
		return PDF{}, fmt.Errorf("failed to download %s: %w", urlStr, err)
	}
	observability.CrawledPDFsTotal.WithLabelValues("downloaded").Inc()
	return PDF{URL: urlStr, FileName: fileName(urlStr), Data: data}, nil
}

// Links returns the PDF links found by the last Scrape, in discovery order.
func (s *Scraper) Links() []string {
	out := make([]string, len(s.links))
	for i, l := range s.links {
		out[i] = l.url
	}
	return out
}

func (s *Scraper) full() bool {
	return len(s.links) >= s.config.MaxPDFs
}

func (s *Scraper) crawl(ctx context.Context, urlStr string, depth int) error {
	if depth > s.config.MaxDepth || s.visited[urlStr] || s.full() {
		return nil
	}

	if !s.shouldProcessURL(urlStr) {
		return nil
	}

	s.visited[urlStr] = true
	if s.config.OnProgress != nil {
		s.config.OnProgress(urlStr)
	}

	resp, err := s.get(ctx, urlStr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, urlStr)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", urlStr, err)
	}

	base := resp.Request.URL
	var pages []string
	doc.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
		href, _ := selection.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			s.config.Logger.Debug("skipping malformed link", "href", href, "error", err)
			return
		}
		abs := base.ResolveReference(ref)
		abs.Fragment = ""

		if !IsPDFLink(abs) {
			pages = append(pages, abs.String())
			return
		}
		if s.full() || s.found[abs.String()] || s.ignored(abs.String()) {
			return
		}
		if !s.config.ExternalPDFs && abs.Host != s.baseHost {
			return
		}
		s.found[abs.String()] = true
		s.links = append(s.links, link{
			url:  abs.String(),
			text: strings.Join(strings.Fields(selection.Text()), " "),
		})
	})

	for _, page := range pages {
		if err := s.crawl(ctx, page, depth+1); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.config.Logger.Warn("error scraping page", "url", page, "error", err)
		}
	}

	return nil
}

func (s *Scraper) get(ctx context.Context, urlStr string) (*http.Response, error) {
	// Apply rate limiting
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}
	return s.client.Do(req)
}

func (s *Scraper) download(ctx context.Context, urlStr string) ([]byte, error) {
	resp, err := s.get(ctx, urlStr)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received status code %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.config.MaxPDFBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.config.MaxPDFBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

func fileName(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return "document.pdf"
	}
	name := path.Base(u.Path)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if name == "" || name == "." || name == "/" {
		return "document.pdf"
	}
	return name
}
