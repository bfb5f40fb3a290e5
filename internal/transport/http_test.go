package transport

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/jmylchreest/jav-meta/internal/cookiejar"
	"github.com/jmylchreest/jav-meta/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJar(t *testing.T) *cookiejar.Jar {
	t.Helper()
	jar, err := cookiejar.New(filepath.Join(t.TempDir(), "cookies.json"), "")
	require.NoError(t, err)
	return jar
}

func TestHTTP_Get_SuccessReturnsBodyAndFinalURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.Header.Get("DNT"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	ht, err := NewHTTP(HTTPOptions{}, newTestJar(t))
	require.NoError(t, err)

	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	result, err := ht.Get(t.Context(), target)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Status)
	assert.Equal(t, "<html>ok</html>", string(result.Body))
	assert.Equal(t, "text/html", result.ContentType)
}

func TestHTTP_Get_NonSuccessStatusIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	ht, err := NewHTTP(HTTPOptions{}, newTestJar(t))
	require.NoError(t, err)

	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	_, err = ht.Get(t.Context(), target)
	require.Error(t, err)
	var transportErr *models.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusNotFound, transportErr.Status)
}

func TestHTTP_PostForm_SendsEncodedBody(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotBody = r.PostForm.Get("confirm")
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte("confirmed"))
	}))
	defer srv.Close()

	ht, err := NewHTTP(HTTPOptions{}, newTestJar(t))
	require.NoError(t, err)

	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	result, err := ht.PostForm(t.Context(), target, url.Values{"confirm": {"yes"}})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", string(result.Body))
	assert.Equal(t, "yes", gotBody)
}

func TestDecorate_SetsRefererForKnownHost(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://www.javbus.com/ABC-123", nil)
	require.NoError(t, err)
	target, err := url.Parse("https://www.javbus.com/ABC-123")
	require.NoError(t, err)

	decorate(req, target)

	assert.Equal(t, "https://www.javbus.com/", req.Header.Get("Referer"))
}

func TestDecorate_NoRefererForUnknownHost(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://unknown.example/", nil)
	require.NoError(t, err)
	target, err := url.Parse("https://unknown.example/")
	require.NoError(t, err)

	decorate(req, target)

	assert.Empty(t, req.Header.Get("Referer"))
}

func TestProxyTransport_InvalidURLIsConfigError(t *testing.T) {
	_, err := proxyTransport("://not-a-valid-url")
	require.Error(t, err)
	var cfgErr *models.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestContentType_DefaultsWhenMissing(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Equal(t, "image/jpeg", ContentType(resp))
}

func TestContentType_UsesHeaderWhenPresent(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Content-Type": {"image/png"}}}
	assert.Equal(t, "image/png", ContentType(resp))
}
