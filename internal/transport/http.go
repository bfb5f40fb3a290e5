// Package transport implements TR: the two transport variants the crawl
// pipeline uses to fetch a source's pages. The HTTP variant wraps the
// teacher's resilient pkg/httpclient; the headless variant wraps
// go-rod/rod for Cloudflare-protected sites.
package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jmylchreest/jav-meta/internal/cookiejar"
	"github.com/jmylchreest/jav-meta/internal/models"
	"github.com/jmylchreest/jav-meta/pkg/httpclient"
)

// DesktopUserAgent is the fixed User-Agent string every request carries,
// matching a modern desktop Chrome build.
const DesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// refererHosts maps a target host substring to the Referer value TR attaches
// when the host matches, per the spec's static Referer rule set.
var refererHosts = map[string]string{
	"getchu.com": "https://www.getchu.com/",
	"xcity.jp":   "https://xcity.jp/",
	"javbus.com": "https://www.javbus.com/",
}

// HTTPResult is the outcome of a GET: the response body plus the final
// landing URL after any redirects, for adapter post-processing.
type HTTPResult struct {
	Status      int
	FinalURL    *url.URL
	Body        []byte
	ContentType string
}

// HTTP is TR's HTTP variant: keep-alive, desktop headers, cookie-jar
// binding, and proxy selection, fronted by the resilient client.
type HTTP struct {
	client *httpclient.Client
	jar    *cookiejar.Jar
}

// HTTPOptions configures the HTTP transport.
type HTTPOptions struct {
	Timeout          time.Duration
	RetryAttempts    int
	CircuitThreshold int
	CircuitTimeout   time.Duration
	// Proxy is one of "" (system default), "<direct>" (no proxy), or an
	// explicit proxy URL.
	Proxy string
}

// NewHTTP builds the HTTP transport, binding jar as its cookie store and
// configuring the underlying resilient client's proxy selection.
func NewHTTP(opts HTTPOptions, jar *cookiejar.Jar) (*HTTP, error) {
	cfg := httpclient.DefaultConfig()
	if opts.Timeout > 0 {
		cfg.Timeout = opts.Timeout
	}
	if opts.RetryAttempts > 0 {
		cfg.RetryAttempts = opts.RetryAttempts
	}
	if opts.CircuitThreshold > 0 {
		cfg.CircuitThreshold = opts.CircuitThreshold
	}
	if opts.CircuitTimeout > 0 {
		cfg.CircuitTimeout = opts.CircuitTimeout
	}
	cfg.UserAgent = DesktopUserAgent
	cfg.EnableDecompression = true

	baseClient := &http.Client{Timeout: cfg.Timeout, Jar: jar}
	transport, err := proxyTransport(opts.Proxy)
	if err != nil {
		return nil, err
	}
	baseClient.Transport = transport
	cfg.BaseClient = baseClient

	return &HTTP{client: httpclient.New(cfg), jar: jar}, nil
}

func proxyTransport(proxy string) (http.RoundTripper, error) {
	switch proxy {
	case "", "<system>":
		return http.DefaultTransport.(*http.Transport).Clone(), nil
	case "<direct>":
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.Proxy = nil
		return t, nil
	default:
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, &models.ConfigError{Field: "transport.proxy", Message: "invalid proxy URL", Err: err}
		}
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.Proxy = http.ProxyURL(proxyURL)
		return t, nil
	}
}

// Get issues a GET against target, decorating the request with the desktop
// header set and a conditional Referer, and returns the final URL and body
// on a 2xx status. Any other outcome is a TransportError.
func (h *HTTP) Get(ctx context.Context, target *url.URL) (*HTTPResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, &models.TransportError{Kind: "http", URL: target.String(), Err: err}
	}
	decorate(req, target)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &models.TransportError{Kind: "http", URL: target.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.TransportError{Kind: "http", URL: target.String(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &models.TransportError{Kind: "http", Status: resp.StatusCode, URL: target.String()}
	}

	return &HTTPResult{Status: resp.StatusCode, FinalURL: resp.Request.URL, Body: body, ContentType: ContentType(resp)}, nil
}

// PostForm issues a POST with an application/x-www-form-urlencoded body, used
// by JavBus's region-gate confirmation flow.
func (h *HTTP) PostForm(ctx context.Context, target *url.URL, form url.Values) (*HTTPResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &models.TransportError{Kind: "http", URL: target.String(), Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	decorate(req, target)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &models.TransportError{Kind: "http", URL: target.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.TransportError{Kind: "http", URL: target.String(), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &models.TransportError{Kind: "http", Status: resp.StatusCode, URL: target.String()}
	}
	return &HTTPResult{Status: resp.StatusCode, FinalURL: resp.Request.URL, Body: body}, nil
}

func decorate(req *http.Request, target *url.URL) {
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Ch-Ua", `"Chromium";v="124", "Not.A/Brand";v="24"`)
	req.Header.Set("Sec-Ch-Ua-Mobile", "?0")
	req.Header.Set("Sec-Ch-Ua-Platform", `"Windows"`)

	for hostFragment, referer := range refererHosts {
		if strings.Contains(target.Host, hostFragment) {
			req.Header.Set("Referer", referer)
			break
		}
	}
}

// Jar returns the transport's bound cookie store, for re-seeding the
// headless variant.
func (h *HTTP) Jar() *cookiejar.Jar { return h.jar }

// ContentType returns the response's content type header, defaulting to
// image/jpeg when the server omits or sends an empty value, matching IC's
// fetch contract.
func ContentType(resp *http.Response) string {
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		return "image/jpeg"
	}
	return ct
}
