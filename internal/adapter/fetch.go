package adapter

import (
	"context"
	"net/url"

	"github.com/jmylchreest/jav-meta/internal/models"
	"github.com/jmylchreest/jav-meta/internal/transport"
)

// HTTPFetcher implements the Fetch half of Adapter for sites served over
// plain HTTP, delegating to the shared resilient transport.
type HTTPFetcher struct {
	HTTP *transport.HTTP
}

// Fetch retrieves target as bytes via the resilient HTTP client.
func (f HTTPFetcher) Fetch(ctx context.Context, target *url.URL) (*Document, *url.URL, error) {
	result, err := f.HTTP.Get(ctx, target)
	if err != nil {
		return nil, nil, err
	}
	return &Document{HTML: result.Body, URL: result.FinalURL}, result.FinalURL, nil
}

// HeadlessFetcher implements the Fetch half of Adapter for Cloudflare-
// protected sites, delegating to the headless browser transport.
type HeadlessFetcher struct {
	Headless *transport.Headless
}

// Fetch navigates a fresh headless page to target and captures its rendered
// HTML once the page settles.
func (f HeadlessFetcher) Fetch(ctx context.Context, target *url.URL) (*Document, *url.URL, error) {
	page, err := f.Headless.Open(ctx, target)
	if err != nil {
		return nil, nil, err
	}
	defer page.Close()

	html, err := page.HTML()
	if err != nil {
		return nil, nil, &models.TransportError{Kind: "headless", URL: target.String(), Err: err}
	}
	finalURL, err := page.URL()
	if err != nil {
		finalURL = target
	}

	return &Document{HTML: []byte(html), URL: finalURL}, finalURL, nil
}
