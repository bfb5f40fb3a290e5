package transport

import (
	"context"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/jmylchreest/jav-meta/internal/cookiejar"
	"github.com/jmylchreest/jav-meta/internal/models"
)

// Headless is TR's headless-browser variant, launched per top-level call
// per the spec: a fresh browser instance, cookies re-seeded from the shared
// jar, then navigated synchronously from the adapter's perspective.
type Headless struct {
	binaryPath  string
	viewportW   int
	viewportH   int
	idleTimeout time.Duration
	opTimeout   time.Duration
	jar         *cookiejar.Jar
}

// HeadlessOptions configures the headless transport.
type HeadlessOptions struct {
	BinaryPath  string
	ViewportW   int
	ViewportH   int
	IdleTimeout time.Duration
	OpTimeout   time.Duration
}

// NewHeadless builds the headless transport, binding jar for cookie
// re-seeding.
func NewHeadless(opts HeadlessOptions, jar *cookiejar.Jar) *Headless {
	if opts.ViewportW == 0 {
		opts.ViewportW = 1920
	}
	if opts.ViewportH == 0 {
		opts.ViewportH = 1080
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 180 * time.Second
	}
	if opts.OpTimeout == 0 {
		opts.OpTimeout = 60 * time.Second
	}
	return &Headless{
		binaryPath:  opts.BinaryPath,
		viewportW:   opts.ViewportW,
		viewportH:   opts.ViewportH,
		idleTimeout: opts.IdleTimeout,
		opTimeout:   opts.OpTimeout,
		jar:         jar,
	}
}

// Page is the scripted DOM-query surface the framework exposes to an
// adapter's headless variant: navigate, re-navigate, walk elements via
// parentElement, and read rendered HTML.
type Page struct {
	page *rod.Page
}

// Open launches a fresh browser instance, re-seeds cookies from the shared
// jar for target's host, navigates to target, and waits for the page to
// settle. The caller must call Close when done with the returned Page.
func (h *Headless) Open(ctx context.Context, target *url.URL) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, h.opTimeout)
	defer cancel()

	l := launcher.New().Headless(true).Set("disable-gpu", "false")
	if h.binaryPath != "" {
		l = l.Bin(h.binaryPath)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, &models.TransportError{Kind: "headless", URL: target.String(), Err: err}
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, &models.TransportError{Kind: "headless", URL: target.String(), Err: err}
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, &models.TransportError{Kind: "headless", URL: target.String(), Err: err}
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width: h.viewportW, Height: h.viewportH,
	}); err != nil {
		return nil, &models.TransportError{Kind: "headless", URL: target.String(), Err: err}
	}

	if err := h.seedCookies(page, target); err != nil {
		return nil, &models.TransportError{Kind: "headless", URL: target.String(), Err: err}
	}

	if err := page.Navigate(target.String()); err != nil {
		return nil, &models.TransportError{Kind: "headless", URL: target.String(), Err: err}
	}
	if err := page.WaitLoad(); err != nil {
		return nil, &models.TransportError{Kind: "headless", URL: target.String(), Err: err}
	}

	return &Page{page: page}, nil
}

// seedCookies re-seeds the shared jar's cookies for target's host into the
// page via CDP, mapping the jar's SameSite values to the CDP variant.
func (h *Headless) seedCookies(page *rod.Page, target *url.URL) error {
	if h.jar == nil {
		return nil
	}
	cookies := h.jar.Cookies(target)
	if len(cookies) == 0 {
		return nil
	}

	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
			SameSite: proto.NetworkCookieSameSite(cookiejar.CDPSameSite(c.SameSite)),
		})
	}
	return page.SetCookies(params)
}

// HTML returns the page's current rendered HTML.
func (p *Page) HTML() (string, error) {
	return p.page.HTML()
}

// URL returns the page's current URL, for adapter post-processing.
func (p *Page) URL() (*url.URL, error) {
	info, err := p.page.Info()
	if err != nil {
		return nil, err
	}
	return url.Parse(info.URL)
}

// Navigate re-navigates the same page to a new URL, waiting for load.
func (p *Page) Navigate(target *url.URL) error {
	if err := p.page.Navigate(target.String()); err != nil {
		return err
	}
	return p.page.WaitLoad()
}

// ParentElement walks up from a selector to its parent element's outer
// HTML, the scripted traversal adapters use for badly-nested markup.
func (p *Page) ParentElement(selector string) (string, error) {
	el, err := p.page.Element(selector)
	if err != nil {
		return "", err
	}
	parent, err := el.Parent()
	if err != nil {
		return "", err
	}
	return parent.HTML()
}

// Close tears down the page and its browser instance.
func (p *Page) Close() error {
	return p.page.Close()
}
