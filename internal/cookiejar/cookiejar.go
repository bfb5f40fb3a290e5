// Package cookiejar implements the Cookie Store (CS): a persistent jar
// shared by both transport variants, backed by a JSON snapshot file plus an
// optional one-time EditThisCookie import.
//
// No example repo in the retrieval pack ships a persistent-cookie-jar
// library wired to an import format like EditThisCookie's, so this package
// is built on the standard library's net/http/cookiejar with a hand-rolled
// snapshot codec, grounded directly on the spec's §4.10 contract rather than
// on a teacher file.
package cookiejar

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Jar wraps the stdlib cookiejar with persistence and an EditThisCookie
// import step.
type Jar struct {
	mu        sync.RWMutex
	jar       *cookiejar.Jar
	snapshots map[string][]*http.Cookie // by host, for serialization
	path      string
}

// snapshotCookie is the on-disk shape for the jar's native persistence
// format: enough fields to reconstruct an http.Cookie per host.
type snapshotCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires"`
	Secure   bool      `json:"secure"`
	HTTPOnly bool      `json:"http_only"`
	SameSite string    `json:"same_site"`
}

// editThisCookie mirrors the EditThisCookie browser-extension export shape
// (camelCase JSON fields), per the spec's §4.10 import contract.
type editThisCookie struct {
	Domain         string  `json:"domain"`
	ExpirationDate float64 `json:"expirationDate"`
	HTTPOnly       bool    `json:"httpOnly"`
	Name           string  `json:"name"`
	Path           string  `json:"path"`
	SameSite       string  `json:"sameSite"`
	Secure         bool    `json:"secure"`
	Value          string  `json:"value"`
}

// New loads storePath if present, then merges importPath (an EditThisCookie
// export) if it exists, deleting the import file after a successful merge.
func New(storePath, importPath string) (*Jar, error) {
	baseJar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	j := &Jar{jar: baseJar, snapshots: make(map[string][]*http.Cookie), path: storePath}

	if err := j.loadSnapshot(storePath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading cookie snapshot: %w", err)
	}

	if importPath != "" {
		if err := j.importEditThisCookie(importPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("importing cookies: %w", err)
		}
	}

	return j, nil
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)
	j.snapshots[u.Host] = append(j.snapshots[u.Host], cookies...)
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.jar.Cookies(u)
}

// Flush writes the current jar contents to disk in the jar's native
// snapshot format, to be called on process shutdown.
func (j *Jar) Flush() error {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make(map[string][]snapshotCookie, len(j.snapshots))
	for host, cookies := range j.snapshots {
		list := make([]snapshotCookie, 0, len(cookies))
		for _, c := range cookies {
			list = append(list, snapshotCookie{
				Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path,
				Expires: c.Expires, Secure: c.Secure, HTTPOnly: c.HttpOnly,
				SameSite: sameSiteString(c.SameSite),
			})
		}
		out[host] = list
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cookie snapshot: %w", err)
	}
	return os.WriteFile(j.path, data, 0o600)
}

func (j *Jar) loadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var snap map[string][]snapshotCookie
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decoding cookie snapshot: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	for host, cookies := range snap {
		u := &url.URL{Scheme: "https", Host: host, Path: "/"}
		httpCookies := make([]*http.Cookie, 0, len(cookies))
		for _, c := range cookies {
			httpCookies = append(httpCookies, &http.Cookie{
				Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path,
				Expires: c.Expires, Secure: c.Secure, HttpOnly: c.HTTPOnly,
				SameSite: sameSiteFromString(c.SameSite),
			})
		}
		j.jar.SetCookies(u, httpCookies)
		j.snapshots[host] = httpCookies
	}
	return nil
}

// importEditThisCookie merges an EditThisCookie export into the jar,
// stripping leading-dot domains when synthesizing the insertion URL, then
// deletes the import file on success.
func (j *Jar) importEditThisCookie(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var entries []editThisCookie
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("decoding EditThisCookie export: %w", err)
	}

	j.mu.Lock()
	for _, e := range entries {
		domain := strings.TrimPrefix(e.Domain, ".")
		u := &url.URL{Scheme: "https", Host: domain, Path: "/"}
		var expires time.Time
		if e.ExpirationDate > 0 {
			expires = time.Unix(int64(e.ExpirationDate), 0)
		}
		cookie := &http.Cookie{
			Name: e.Name, Value: e.Value, Domain: domain, Path: e.Path,
			Expires: expires, Secure: e.Secure, HttpOnly: e.HTTPOnly,
			SameSite: sameSiteFromString(e.SameSite),
		}
		j.jar.SetCookies(u, []*http.Cookie{cookie})
		j.snapshots[domain] = append(j.snapshots[domain], cookie)
	}
	j.mu.Unlock()

	return os.Remove(path)
}

func sameSiteString(s http.SameSite) string {
	switch s {
	case http.SameSiteStrictMode:
		return "Strict"
	case http.SameSiteLaxMode:
		return "Lax"
	case http.SameSiteNoneMode:
		return "None"
	default:
		return ""
	}
}

func sameSiteFromString(s string) http.SameSite {
	switch s {
	case "Strict":
		return http.SameSiteStrictMode
	case "Lax":
		return http.SameSiteLaxMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}

// CDPSameSite maps the jar's SameSite value to the CDP network-cookie
// variant string used when re-seeding the headless transport's cookies.
func CDPSameSite(s http.SameSite) string {
	return sameSiteString(s)
}
