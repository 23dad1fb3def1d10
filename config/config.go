package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultCategories is the fixed category list crawled when no category file
// is supplied: equipment slots first, then the weapon listings.
var DefaultCategories = []string{
	"/Category:Arms", "/Category:Back", "/Category:Chest",
	"/Category:Ear", "/Category:Face", "/Category:Feet",
	"/Category:Fingers", "/Category:Hands", "/Category:Head",
	"/Category:Legs", "/Category:Neck", "/Category:Shoulders",
	"/Category:Waist", "/Category:Wrist",

	"/Category:Ammo", "/Category:Primary",
	"/Category:Range", "/Category:Secondary",
}

// Config holds scraper configuration.
type Config struct {
	BaseURL      string
	OutputDir    string
	Categories   []string
	UserAgent    string
	Timeout      time.Duration
	MinDelay     time.Duration // lower bound of the politeness delay between listing pages
	MaxDelay     time.Duration // upper bound of the politeness delay
	CacheTTL     time.Duration // response cache freshness window; 0 disables caching
	CacheSize    int
	MetricsAddr  string
	ShowProgress bool
	Verbose      bool
}

// DefaultConfig returns conservative defaults for the demo target.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "https://wiki.project1999.com",
		OutputDir:    "output",
		Categories:   DefaultCategories,
		UserAgent:    "EverQuest Item Scraper (Educational)",
		Timeout:      10 * time.Second,
		MinDelay:     500 * time.Millisecond,
		MaxDelay:     time.Second,
		CacheTTL:     time.Hour,
		CacheSize:    4096,
		MetricsAddr:  "",
		ShowProgress: true,
		Verbose:      false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("category list cannot be empty")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MinDelay < 0 {
		return fmt.Errorf("min delay cannot be negative")
	}
	if c.MaxDelay < c.MinDelay {
		return fmt.Errorf("max delay (%s) cannot be below min delay (%s)", c.MaxDelay, c.MinDelay)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL cannot be negative")
	}
	if c.CacheTTL > 0 && c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive when caching is enabled")
	}

	return nil
}

// categoryFile is the YAML shape of an optional category list override.
type categoryFile struct {
	Categories []string `yaml:"categories"`
}

// LoadCategories reads a YAML file containing a `categories` list of wiki
// path suffixes (e.g. "/Category:Arms") to crawl instead of the defaults.
func LoadCategories(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category file: %w", err)
	}

	var cf categoryFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse category file: %w", err)
	}
	if len(cf.Categories) == 0 {
		return nil, fmt.Errorf("category file %q lists no categories", path)
	}
	return cf.Categories, nil
}

// EnvString reads a string environment variable, reporting whether it is set.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// EnvInt reads an integer environment variable.
func EnvInt(key string) (int, bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, true, nil
}
