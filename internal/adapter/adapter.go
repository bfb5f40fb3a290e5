// Package adapter implements the Source Adapter (SA) contract: a uniform
// interface that every site-specific scraper satisfies, plus the registry
// the crawl pipeline uses to look adapters up by source ID.
package adapter

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/jmylchreest/jav-meta/internal/models"
	"github.com/jmylchreest/jav-meta/internal/router"
)

// Document is the parsed form an adapter's HTTP variant works against: a
// goquery-wrapped HTML document, or a decoded JSON body for JSON APIs. It is
// deliberately opaque here; concrete adapters type-assert to what they need.
type Document struct {
	HTML []byte
	JSON []byte
	URL  *url.URL
}

// Hints is a request-scoped carrier for state a single adapter call needs to
// thread between its own FollowNext and ParseInfo steps. It replaces the
// original implementation's process-wide memos (e.g. iqqtv's duration
// carryover) with an explicit, per-call value: nothing here survives past
// one Crawl invocation, so concurrent queries for different codes never
// cross-contaminate.
type Hints struct {
	// DurationHint carries a duration string captured from a search result
	// row through to the detail-page parse (iqqtv's video-time sibling).
	DurationHint string

	// PosterHint carries a poster image URL captured from a search result
	// card through to the detail-page parse (officials' result-list thumb).
	PosterHint string
}

// Adapter is the uniform contract every source implements. Language reports
// the adapter's native language; when it is not zh*, the framework routes
// the result through the translator before merging.
type Adapter interface {
	ID() router.SourceID
	Language() string

	BuildURL(code models.Code) (*url.URL, error)

	// Fetch retrieves target using whichever transport this adapter variant
	// is bound to (resilient HTTP or headless browser), returning the parsed
	// document and the final landing URL after any redirects.
	Fetch(ctx context.Context, target *url.URL) (*Document, *url.URL, error)

	// FollowNext resolves a search/listing page to a detail page URL. It
	// returns (nil, nil) when currentURL is already the detail page. The
	// framework bounds repeated calls to MaxFollowHops to prevent cycles.
	FollowNext(ctx context.Context, code models.Code, currentURL *url.URL, doc *Document, hints *Hints) (*url.URL, error)

	ParseTitle(doc *Document) (string, error)
	ParseInfo(ctx context.Context, doc *Document, hints *Hints) (models.VideoInfo, error)

	// HeadlessVariant returns a secondary adapter using the headless
	// transport, or nil if none is declared.
	HeadlessVariant() Adapter
}

// MaxFollowHops bounds FollowNext's search-to-detail resolution so a
// misbehaving site can never cause an infinite redirect loop.
const MaxFollowHops = 5

// Registry is a concurrency-safe lookup table from SourceID to Adapter,
// mirroring the teacher's HandlerFactory pattern (register once at startup,
// read concurrently from many query goroutines).
type Registry struct {
	mu       sync.RWMutex
	adapters map[router.SourceID]Adapter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[router.SourceID]Adapter)}
}

// Register adds or replaces the adapter for its own ID.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.ID()] = a
}

// Get returns the adapter registered for id.
func (r *Registry) Get(id router.SourceID) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrNoAdapter, id)
	}
	return a, nil
}

// IDs returns every registered source ID.
func (r *Registry) IDs() []router.SourceID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]router.SourceID, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	return ids
}

// ResolveURLs rewrites every relative URL in info (poster, cover, actress
// photos) to an absolute URL against base, the adapter's final landing page.
// This is framework post-processing, not adapter logic, per the spec's
// separation of concerns.
func ResolveURLs(info *models.VideoInfo, base *url.URL) {
	info.Poster = resolveOne(info.Poster, base)
	info.Cover = resolveOne(info.Cover, base)
	for i := range info.Actresses {
		info.Actresses[i].Photo = resolveOne(info.Actresses[i].Photo, base)
	}
}

func resolveOne(ref *string, base *url.URL) *string {
	if ref == nil || base == nil {
		return ref
	}
	parsed, err := url.Parse(*ref)
	if err != nil {
		return ref
	}
	resolved := base.ResolveReference(parsed).String()
	return &resolved
}
