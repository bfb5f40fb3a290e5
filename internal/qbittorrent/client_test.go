package qbittorrent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/auth/login", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "admin", r.FormValue("username"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	require.NoError(t, c.Login(context.Background(), "admin", "secret"))
}

func TestClient_AddMagnet(t *testing.T) {
	var gotURLs string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/torrents/add", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotURLs = r.FormValue("urls")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	require.NoError(t, c.AddMagnet(context.Background(), "magnet:?xt=urn:btih:abc", "", ""))
	assert.Equal(t, "magnet:?xt=urn:btih:abc", gotURLs)
}

func TestClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/torrents/info", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"hash":"abc","name":"Example","state":"downloading","progress":0.5,"save_path":"/downloads","size":1024}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	torrents, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, torrents, 1)
	assert.Equal(t, "Example", torrents[0].Name)
	assert.Equal(t, 0.5, torrents[0].Progress)
}

func TestClient_List_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	_, err := c.List(context.Background())
	assert.Error(t, err)
}
