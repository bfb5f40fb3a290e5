// Package imagecache implements the Image Cache (IC): a weighted bounded
// cache of absolute image URL to data URL, with request coalescing so a
// burst of concurrent lookups for the same key triggers at most one fetch.
package imagecache

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"

	"github.com/dgraph-io/ristretto"
	"golang.org/x/sync/singleflight"

	"github.com/jmylchreest/jav-meta/internal/transport"
)

const (
	defaultNumCounters = 10_000
	defaultBufferItems = 64
)

// Cache is IC: a ristretto-backed weighted cache fronted by a singleflight
// group so concurrent Get calls for the same URL share one fetch.
type Cache struct {
	store *ristretto.Cache
	group singleflight.Group
	http  *transport.HTTP
}

// Options configures the cache's capacity.
type Options struct {
	MaxEntries int
	MaxWeight  int64 // bytes, weighed by the stored base64 string's length
}

// New builds the image cache, fetching misses through http.
func New(opts Options, httpTransport *transport.HTTP) (*Cache, error) {
	if opts.MaxEntries == 0 {
		opts.MaxEntries = 2048
	}
	if opts.MaxWeight == 0 {
		opts.MaxWeight = 128 * 1024 * 1024
	}

	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64(opts.MaxEntries) * 10,
		MaxCost:     opts.MaxWeight,
		BufferItems: defaultBufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("creating image cache: %w", err)
	}

	return &Cache{store: store, http: httpTransport}, nil
}

// Get returns the data URL for absoluteURL, fetching and caching it on a
// miss. Concurrent callers for the same URL share a single fetch; errors are
// surfaced to every waiter and never cached.
func (c *Cache) Get(ctx context.Context, absoluteURL string) (string, error) {
	if cached, ok := c.store.Get(absoluteURL); ok {
		return cached.(string), nil
	}

	result, err, _ := c.group.Do(absoluteURL, func() (any, error) {
		return c.fetch(ctx, absoluteURL)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Cache) fetch(ctx context.Context, absoluteURL string) (string, error) {
	target, err := url.Parse(absoluteURL)
	if err != nil {
		return "", fmt.Errorf("parsing image URL: %w", err)
	}

	result, err := c.http.Get(ctx, target)
	if err != nil {
		return "", err
	}

	encoded := base64.StdEncoding.EncodeToString(result.Body)
	dataURL := "data:" + result.ContentType + ";base64," + encoded

	c.store.SetWithTTL(absoluteURL, dataURL, int64(len(encoded)), 0)
	c.store.Wait()

	return dataURL, nil
}
