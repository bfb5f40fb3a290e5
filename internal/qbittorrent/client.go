// Package qbittorrent implements a minimal typed passthrough client against
// the qBittorrent Web API (SPEC_FULL.md §4.12). It never parses .torrent
// files or speaks the BitTorrent wire protocol — it forwards a UI-originated
// action (add by magnet, list, login) exactly as the spec's Non-goal
// requires, grounded on the `set_url`/`QBittorrentState` shape of
// `original_source/src-tauri/src/qbittorrent.rs` (that file wires a base
// URL into state and layers typed structs over the Web API's sync/maindata
// response; the Login/AddMagnet/List surface below is the Go client that
// would sit behind those commands).
package qbittorrent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// TorrentInfo mirrors the fields of the Web API's torrent list entries that
// the UI passthrough surface actually consumes, named after
// original_source's TorrentInfo struct.
type TorrentInfo struct {
	Hash     string  `json:"hash"`
	Name     string  `json:"name"`
	State    string  `json:"state"`
	Progress float64 `json:"progress"`
	SavePath string  `json:"save_path"`
	SizeB    int64   `json:"size"`
}

// Client is a thin REST passthrough to a single qBittorrent Web API
// instance.
type Client struct {
	http    *http.Client
	baseURL string
}

// New builds a Client bound to baseURL (e.g. "http://localhost:8080"),
// using httpClient for transport so proxy/timeout rules already configured
// on the caller's resilient client apply uniformly.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// Login authenticates against /api/v2/auth/login, storing the session
// cookie on the underlying http.Client's cookie jar (the caller is expected
// to have configured one, matching qBittorrent's cookie-based session
// model).
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", c.baseURL)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("qbittorrent login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("qbittorrent login: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// AddMagnet forwards magnetURI to /api/v2/torrents/add, optionally scoped
// to savePath and category when non-empty.
func (c *Client) AddMagnet(ctx context.Context, magnetURI, savePath, category string) error {
	form := url.Values{"urls": {magnetURI}}
	if savePath != "" {
		form.Set("savepath", savePath)
	}
	if category != "" {
		form.Set("category", category)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/torrents/add", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building add-magnet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", c.baseURL)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("qbittorrent add magnet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("qbittorrent add magnet: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// List fetches the current torrent set from /api/v2/torrents/info.
func (c *Client) List(ctx context.Context) ([]TorrentInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v2/torrents/info", nil)
	if err != nil {
		return nil, fmt.Errorf("building list request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qbittorrent list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("qbittorrent list: unexpected status %d", resp.StatusCode)
	}

	var torrents []TorrentInfo
	if err := json.NewDecoder(resp.Body).Decode(&torrents); err != nil {
		return nil, fmt.Errorf("decoding torrent list: %w", err)
	}
	return torrents, nil
}
