package imagecache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/jmylchreest/jav-meta/internal/cookiejar"
	"github.com/jmylchreest/jav-meta/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(t *testing.T) (*transport.HTTP, *int32, *httptest.Server) {
	t.Helper()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("fake-image-bytes"))
	}))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(filepath.Join(t.TempDir(), "cookies.json"), "")
	require.NoError(t, err)

	ht, err := transport.NewHTTP(transport.HTTPOptions{}, jar)
	require.NoError(t, err)

	return ht, &hits, srv
}

func TestCache_GetFetchesAndCaches(t *testing.T) {
	ht, hits, srv := newTestTransport(t)

	cache, err := New(Options{}, ht)
	require.NoError(t, err)

	dataURL, err := cache.Get(context.Background(), srv.URL+"/poster.jpg")
	require.NoError(t, err)
	assert.Contains(t, dataURL, "data:image/png;base64,")

	_, err = cache.Get(context.Background(), srv.URL+"/poster.jpg")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestCache_GetDistinctURLsFetchSeparately(t *testing.T) {
	ht, hits, srv := newTestTransport(t)

	cache, err := New(Options{}, ht)
	require.NoError(t, err)

	_, err = cache.Get(context.Background(), srv.URL+"/a.jpg")
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), srv.URL+"/b.jpg")
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestCache_GetInvalidURL(t *testing.T) {
	ht, _, _ := newTestTransport(t)

	cache, err := New(Options{}, ht)
	require.NoError(t, err)

	_, err = cache.Get(context.Background(), "://bad-url")
	assert.Error(t, err)
}
