package models

import "time"

// ScrapeResult holds the overall result of one crawl run.
type ScrapeResult struct {
	StartTime      time.Time
	EndTime        time.Time
	TotalCount     int
	PageCount      int
	RequestCount   int
	CacheHits      int
	FailedURLs     []string
	ErrorsByType   map[string]int
	CategoryCounts map[string]int
}
