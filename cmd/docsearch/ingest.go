package main

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xhad/docsearch/pkg/scraper"
)

// source is one document to ingest: a local path or a URL.
type source struct {
	path string
	url  string
}

func newIngestCmd(c *cli) *cobra.Command {
	var crawl bool

	cmd := &cobra.Command{
		Use:   "ingest <file.pdf|dir|url>...",
		Short: "Upload PDF files, directories of PDFs or PDF URLs",
		Long: `Uploads each PDF through the same workflow as POST /upload/.
Directories are walked for *.pdf files. With --crawl, URL arguments are
treated as HTML pages and every linked PDF is ingested.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sources, err := collectSources(args)
			if err != nil {
				return err
			}

			a, err := c.buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			type item struct {
				name string
				data func() ([]byte, error)
			}
			var items []item

			for _, src := range sources {
				switch {
				case src.url != "" && crawl:
					pdfs, err := c.crawl(ctx, src.url)
					if err != nil {
						return err
					}
					for _, p := range pdfs {
						data := p.Data
						items = append(items, item{name: p.FileName, data: func() ([]byte, error) { return data, nil }})
					}
				case src.url != "":
					u := src.url
					items = append(items, item{name: u, data: func() ([]byte, error) {
						s, err := c.newScraper(u)
						if err != nil {
							return nil, err
						}
						p, err := s.Download(ctx, u)
						return p.Data, err
					}})
				default:
					path := src.path
					items = append(items, item{name: path, data: func() ([]byte, error) { return os.ReadFile(path) }})
				}
			}

			if len(items) == 0 {
				fmt.Println(color.YellowString("No PDF documents found"))
				return nil
			}

			bar := getProgressBar(len(items), "Uploading documents")
			var failed []string
			for _, it := range items {
				data, err := it.data()
				if err == nil {
					_, err = a.svc.Upload(ctx, fileNameOf(it.name), data)
				}
				if err != nil {
					failed = append(failed, fmt.Sprintf("%s: %v", it.name, err))
				}
				bar.Add(1)
			}
			bar.Finish()
			fmt.Println()

			ok := len(items) - len(failed)
			fmt.Println(color.GreenString("Uploaded %d of %d documents", ok, len(items)))
			for _, f := range failed {
				fmt.Println(color.RedString("  ✗ %s", f))
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d documents failed", len(failed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&crawl, "crawl", false, "treat URLs as HTML pages and ingest every linked PDF")
	return cmd
}

func (c *cli) newScraper(baseURL string) (*scraper.Scraper, error) {
	return scraper.NewWithConfig(scraper.ScraperConfig{
		BaseURL:      baseURL,
		MaxDepth:     c.cfg.Crawler.MaxDepth,
		RateLimit:    c.cfg.Crawler.RateLimit,
		MaxPDFs:      c.cfg.Crawler.MaxPDFs,
		MaxPDFBytes:  int64(c.cfg.Server.MaxUploadMB) << 20,
		ExternalPDFs: c.cfg.Crawler.ExternalPDFs,
		Timeout:      time.Duration(c.cfg.Crawler.TimeoutSecs) * time.Second,
		Logger:       c.logger,
	})
}

func (c *cli) crawl(ctx context.Context, pageURL string) ([]scraper.PDF, error) {
	spinner := getSpinner("Crawling " + pageURL)
	defer spinner.Finish()

	s, err := c.newScraper(pageURL)
	if err != nil {
		return nil, err
	}
	pdfs, err := s.Scrape(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to crawl %s: %w", pageURL, err)
	}
	return pdfs, nil
}

// collectSources expands arguments into individual documents. Directories
// contribute every *.pdf file beneath them, sorted by path.
func collectSources(args []string) ([]source, error) {
	var sources []source
	for _, arg := range args {
		if u, err := url.Parse(arg); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
			sources = append(sources, source{url: arg})
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		if !info.IsDir() {
			sources = append(sources, source{path: arg})
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
				sources = append(sources, source{path: path})
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}
	return sources, nil
}

// fileNameOf returns the last path element of a file path or URL.
func fileNameOf(name string) string {
	if u, err := url.Parse(name); err == nil && u.Scheme != "" && u.Path != "" {
		if unescaped, err := url.PathUnescape(filepath.Base(u.Path)); err == nil {
			return unescaped
		}
		return filepath.Base(u.Path)
	}
	return filepath.Base(name)
}
