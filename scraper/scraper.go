// Package scraper crawls wiki item categories and classifies the results.
package scraper

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/schollz/progressbar/v3"

	"github.com/p99kit/go-scrape-items/config"
	"github.com/p99kit/go-scrape-items/models"
	"github.com/p99kit/go-scrape-items/parser"
	"github.com/p99kit/go-scrape-items/pipeline"
)

// namespaceMarkers identify wiki links that never lead to item detail pages.
var namespaceMarkers = []string{
	"Category:", "Special:", "File:", "Discussion:",
	"Help:", "User:", "Template:", "Project:",
}

// pageLink is one hyperlink collected from a listing page's content region.
type pageLink struct {
	href string
	text string
}

// Scraper crawls item categories sequentially: one request in flight at a
// time, one page parsed at a time. All accumulator fields are therefore
// plain values with no locking.
type Scraper struct {
	cfg       *config.Config
	siteBase  string
	listing   *colly.Collector
	detail    *colly.Collector
	transport *cachingTransport
	Metrics   *Metrics

	requestCount int
	pageCount    int
	failedURLs   []string
	errorsByType map[string]int

	// scratch state filled by collector callbacks during a Visit
	pageLinks  []pageLink
	detailBody []byte
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	s := &Scraper{
		cfg:          cfg,
		siteBase:     strings.TrimSuffix(cfg.BaseURL, "/"),
		errorsByType: make(map[string]int),
		Metrics:      NewMetrics(),
	}

	// Certificate verification stays off: the wiki and its mirrors serve
	// expired or mismatched certificates, and scraping them anyway is this
	// tool's documented policy.
	base := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
	}
	s.transport = newCachingTransport(base, cfg.CacheSize, cfg.CacheTTL, s.Metrics)

	s.listing = s.newCollector(parsed.Host, "listing")
	s.detail = s.newCollector(parsed.Host, "detail")

	s.listing.OnHTML("div#mw-content-text a[href]", func(e *colly.HTMLElement) {
		s.pageLinks = append(s.pageLinks, pageLink{
			href: e.Attr("href"),
			text: strings.TrimSpace(e.Text),
		})
	})
	s.detail.OnResponse(func(r *colly.Response) {
		s.detailBody = r.Body
	})

	return s, nil
}

func (s *Scraper) newCollector(host, phase string) *colly.Collector {
	c := colly.NewCollector(
		colly.AllowedDomains(host),
		colly.UserAgent(s.cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.IgnoreRobotsTxt = true
	c.SetRequestTimeout(s.cfg.Timeout)
	c.WithTransport(s.transport)

	c.OnRequest(func(r *colly.Request) {
		r.Ctx.Put("start", time.Now())
		s.requestCount++
		s.Metrics.IncRequest(phase)
	})
	c.OnResponse(func(r *colly.Response) {
		if start, ok := r.Ctx.GetAny("start").(time.Time); ok {
			s.Metrics.ObserveDuration(time.Since(start))
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
		}
		label := errorTypeLabel(classifyError(err, statusCode))
		s.errorsByType[label]++
		s.Metrics.IncError(label)
	})
	return c
}

// CrawlCategories drives the configured category list end to end: paginate
// each category, scrape and classify every detail page, and export each
// category's batch. Item failures never abort a category, and category
// failures never abort the crawl; only an export failure is fatal.
func (s *Scraper) CrawlCategories(exporter *pipeline.Exporter) (*models.ScrapeResult, error) {
	start := time.Now()

	total := 0
	counts := make(map[string]int, len(s.cfg.Categories))
	for _, category := range s.cfg.Categories {
		items, err := s.ScrapeCategory(category, exporter)
		if err != nil {
			return nil, err
		}
		counts[category] = len(items)
		total += len(items)
	}

	errs := make(map[string]int, len(s.errorsByType))
	for label, count := range s.errorsByType {
		errs[label] = count
	}

	return &models.ScrapeResult{
		StartTime:      start,
		EndTime:        time.Now(),
		TotalCount:     total,
		PageCount:      s.pageCount,
		RequestCount:   s.requestCount,
		CacheHits:      s.transport.Hits(),
		FailedURLs:     append([]string(nil), s.failedURLs...),
		ErrorsByType:   errs,
		CategoryCounts: counts,
	}, nil
}

// ScrapeCategory paginates one category listing, scrapes every discovered
// detail page, and exports the resulting batch.
func (s *Scraper) ScrapeCategory(categoryPath string, exporter *pipeline.Exporter) ([]*models.Item, error) {
	categoryURL := s.siteBase + categoryPath
	slog.Info("processing category", slog.String("category", categoryPath))

	urls := s.paginate(categoryURL)
	if len(urls) == 0 {
		slog.Warn("no items found in category", slog.String("category", categoryPath))
		return nil, nil
	}

	var bar *progressbar.ProgressBar
	if s.cfg.ShowProgress {
		bar = progressbar.Default(int64(len(urls)), "scraping "+strings.TrimPrefix(categoryPath, "/"))
	}

	items := make([]*models.Item, 0, len(urls))
	for _, detailURL := range urls {
		if bar != nil {
			_ = bar.Add(1)
		}
		if strings.Contains(detailURL, "Category:") {
			continue
		}

		item, err := s.scrapeItem(detailURL)
		if err != nil {
			s.failedURLs = append(s.failedURLs, detailURL)
			slog.Error("scraping item failed",
				slog.String("url", detailURL),
				slog.Any("error", err),
			)
			continue
		}
		if item == nil {
			continue
		}
		slog.Debug("scraped item",
			slog.String("name", item.Name),
			slog.String("archetype", item.Archetype.String()),
		)
		items = append(items, item)
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if len(items) == 0 {
		slog.Warn("no valid items in category", slog.String("category", categoryPath))
		return nil, nil
	}
	if err := exporter.ExportBatch(items); err != nil {
		return items, fmt.Errorf("export category %s: %w", categoryPath, err)
	}
	slog.Info("category complete",
		slog.String("category", categoryPath),
		slog.Int("items", len(items)),
	)
	return items, nil
}

// paginate walks a category listing page by page and returns the
// deduplicated detail URLs it reaches. The cursor is the display text of the
// last link newly discovered on a page, requested as ?pagefrom=<cursor> on
// the next fetch. Pagination ends when a fetch fails, when a page
// contributes nothing new, or when the last new link carries no display
// text — the cursor exhaustion case wins over continued discovery because a
// missing cursor would refetch the same page forever.
func (s *Scraper) paginate(categoryURL string) []string {
	visited := make(map[string]struct{})
	var discovered []string
	cursor := ""

	for {
		pageURL := categoryURL
		if cursor != "" {
			pageURL = categoryURL + "?pagefrom=" + url.QueryEscape(cursor)
		}

		links, err := s.fetchListing(pageURL)
		if err != nil {
			// The category keeps whatever was discovered before the failure.
			slog.Warn("listing fetch failed",
				slog.String("url", pageURL),
				slog.Any("error", err),
			)
			return discovered
		}
		s.pageCount++
		s.Metrics.IncPages()

		newLinks := 0
		lastText := ""
		for _, link := range links {
			if hasNamespaceMarker(link.href) {
				continue
			}
			if !strings.HasPrefix(link.href, "/") {
				continue
			}
			full := s.siteBase + link.href
			if _, seen := visited[full]; seen {
				continue
			}
			visited[full] = struct{}{}
			discovered = append(discovered, full)
			newLinks++
			lastText = link.text
			slog.Debug("found item", slog.String("name", link.text), slog.String("url", full))
		}

		if newLinks == 0 {
			return discovered
		}
		if lastText == "" {
			return discovered
		}
		cursor = lastText
		s.politenessDelay()
	}
}

func (s *Scraper) fetchListing(pageURL string) ([]pageLink, error) {
	s.pageLinks = s.pageLinks[:0]
	if err := s.listing.Visit(pageURL); err != nil {
		return nil, err
	}
	return s.pageLinks, nil
}

// scrapeItem fetches one detail page and builds its record. A nil item with
// a nil error means the page is not an item page and should be skipped.
func (s *Scraper) scrapeItem(detailURL string) (*models.Item, error) {
	s.detailBody = nil
	if err := s.detail.Visit(detailURL); err != nil {
		return nil, err
	}

	attrs, err := parser.ParseAttributes(s.detailBody)
	if errors.Is(err, parser.ErrNoInfobox) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		return nil, nil
	}

	name := parser.ItemNameFromURL(detailURL)
	if name == "" {
		return nil, nil
	}

	item := models.ClassifyItem(name, attrs)
	s.Metrics.IncItems()
	return item, nil
}

// politenessDelay sleeps for a uniformly random interval between the
// configured delay bounds before the next listing fetch.
func (s *Scraper) politenessDelay() {
	delay := s.cfg.MinDelay
	if span := s.cfg.MaxDelay - s.cfg.MinDelay; span > 0 {
		delay += rand.N(span)
	}
	if delay > 0 {
		time.Sleep(delay)
	}
}

func hasNamespaceMarker(href string) bool {
	for _, marker := range namespaceMarkers {
		if strings.Contains(href, marker) {
			return true
		}
	}
	return false
}
