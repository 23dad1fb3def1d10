package scraper

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// cachedResponse stores enough of an HTTP response to replay it later.
type cachedResponse struct {
	statusCode int
	header     http.Header
	body       []byte
}

func (cr *cachedResponse) response(req *http.Request) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", cr.statusCode, http.StatusText(cr.statusCode)),
		StatusCode:    cr.statusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        cr.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(cr.body)),
		ContentLength: int64(len(cr.body)),
		Request:       req,
	}
}

// cachingTransport serves repeated GETs from an in-memory LRU keyed by URL
// with a fixed freshness window. Only 200 responses are stored.
type cachingTransport struct {
	base    http.RoundTripper
	cache   *expirable.LRU[string, *cachedResponse]
	metrics *Metrics
	hits    int
}

func newCachingTransport(base http.RoundTripper, size int, ttl time.Duration, metrics *Metrics) *cachingTransport {
	t := &cachingTransport{
		base:    base,
		metrics: metrics,
	}
	if ttl > 0 && size > 0 {
		t.cache = expirable.NewLRU[string, *cachedResponse](size, nil, ttl)
	}
	return t
}

// RoundTrip implements http.RoundTripper.
func (t *cachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.cache == nil || req.Method != http.MethodGet {
		return t.base.RoundTrip(req)
	}

	key := req.URL.String()
	if entry, ok := t.cache.Get(key); ok {
		t.hits++
		t.metrics.IncCacheHits()
		return entry.response(req), nil
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	t.cache.Add(key, &cachedResponse{
		statusCode: resp.StatusCode,
		header:     resp.Header.Clone(),
		body:       body,
	})
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// Hits reports how many requests were served from the cache. The crawl is
// single-threaded, so the plain counter needs no locking.
func (t *cachingTransport) Hits() int {
	return t.hits
}
