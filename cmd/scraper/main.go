package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/p99kit/go-scrape-items/config"
	"github.com/p99kit/go-scrape-items/models"
	"github.com/p99kit/go-scrape-items/pipeline"
	"github.com/p99kit/go-scrape-items/scraper"
)

func main() {
	defaultCfg := config.DefaultConfig()

	baseURLDefault := defaultCfg.BaseURL
	if value, ok := config.EnvString("SCRAPER_BASE_URL"); ok {
		baseURLDefault = value
	}
	outputDefault := defaultCfg.OutputDir
	if value, ok := config.EnvString("SCRAPER_OUTPUT"); ok {
		outputDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("SCRAPER_METRICS_ADDR"); ok {
		metricsDefault = value
	}
	cacheSizeDefault := defaultCfg.CacheSize
	if value, ok, err := config.EnvInt("SCRAPER_CACHE_SIZE"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_CACHE_SIZE: %v\n", err)
		os.Exit(1)
	} else if ok {
		cacheSizeDefault = value
	}

	baseURL := flag.String("base-url", baseURLDefault, "Base wiki URL to crawl")
	outputDir := flag.String("output", outputDefault, "Output directory for bucketed CSV files")
	categoryFile := flag.String("categories", "", "YAML file overriding the built-in category list")
	timeout := flag.Duration("timeout", defaultCfg.Timeout, "HTTP request timeout")
	minDelayMs := flag.Int("min-delay", int(defaultCfg.MinDelay/time.Millisecond), "Minimum delay between listing pages (milliseconds)")
	maxDelayMs := flag.Int("max-delay", int(defaultCfg.MaxDelay/time.Millisecond), "Maximum delay between listing pages (milliseconds)")
	cacheTTL := flag.Duration("cache-ttl", defaultCfg.CacheTTL, "Response cache freshness window (0 disables caching)")
	cacheSize := flag.Int("cache-size", cacheSizeDefault, "Maximum cached responses")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	progress := flag.Bool("progress", defaultCfg.ShowProgress, "Show per-category progress bars")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := defaultCfg
	cfg.BaseURL = *baseURL
	cfg.OutputDir = *outputDir
	cfg.Timeout = *timeout
	cfg.MinDelay = time.Duration(*minDelayMs) * time.Millisecond
	cfg.MaxDelay = time.Duration(*maxDelayMs) * time.Millisecond
	cfg.CacheTTL = *cacheTTL
	cfg.CacheSize = *cacheSize
	cfg.MetricsAddr = *metricsAddr
	cfg.ShowProgress = *progress
	cfg.Verbose = *verbose

	if *categoryFile != "" {
		categories, err := config.LoadCategories(*categoryFile)
		if err != nil {
			slog.Error("loading category file", slog.Any("error", err))
			os.Exit(1)
		}
		cfg.Categories = categories
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting crawl",
		slog.String("base_url", cfg.BaseURL),
		slog.String("output", cfg.OutputDir),
		slog.Int("categories", len(cfg.Categories)),
	)

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		os.Exit(1)
	}

	exporter, err := pipeline.NewExporter(cfg.OutputDir)
	if err != nil {
		slog.Error("preparing output directory", slog.Any("error", err))
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && s.Metrics != nil {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	result, err := s.CrawlCategories(exporter)
	if err != nil {
		slog.Error("crawl failed", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		if err := metricsServer.Close(); err != nil {
			slog.Error("metrics server close failed", slog.Any("error", err))
		}
	}

	printSummary(result, cfg.OutputDir)
}

func printSummary(result *models.ScrapeResult, outputDir string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Crawl complete")

	fmt.Printf("  Total items:    %d\n", result.TotalCount)
	fmt.Printf("  Listing pages:  %d\n", result.PageCount)
	fmt.Printf("  Requests:       %d\n", result.RequestCount)
	fmt.Printf("  Cache hits:     %d\n", result.CacheHits)
	fmt.Printf("  Failed URLs:    %d\n", len(result.FailedURLs))
	for _, url := range result.FailedURLs {
		fmt.Printf("    %s\n", url)
	}
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:    %v\n", result.ErrorsByType)
	}
	fmt.Printf("  Duration:       %v\n", result.EndTime.Sub(result.StartTime).Round(time.Millisecond))
	fmt.Printf("  Output dir:     %s\n", outputDir)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
