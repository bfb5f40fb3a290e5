package httpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmylchreest/jav-meta/internal/models"
)

// commandFacade is the subset of facade.Facade the HTTP surface calls,
// narrowed to an interface so handlers can be tested against a fake.
type commandFacade interface {
	GetVideoInfo(ctx context.Context, name string) (*models.VideoInfo, error)
	HasBeenDownloaded(ctx context.Context, name, hashFallback string) (*int64, error)
	MarkAsDownloaded(ctx context.Context, name, hashFallback string, whenEpoch int64) error
	Rescrape(ctx context.Context, name string) (*models.VideoInfo, error)
	DownloadImage(ctx context.Context, imageURL string) (string, error)
	TorrentAction(ctx context.Context, magnetURI, savePath, category string) error
}

type videoInfoRequest struct {
	Name string `json:"name"`
}

type downloadedRequest struct {
	Name         string `json:"name"`
	Hash         string `json:"hash,omitempty"`
	DownloadedAt int64  `json:"downloaded_at"`
}

type downloadedResponse struct {
	DownloadedAt *int64 `json:"downloaded_at"`
}

type imageResponse struct {
	DataURL string `json:"data_url"`
}

type torrentActionRequest struct {
	MagnetURI string `json:"magnet_uri"`
	SavePath  string `json:"save_path,omitempty"`
	Category  string `json:"category,omitempty"`
}

// registerRoutes mounts the Command Facade's REST surface (§6) on r.
func registerRoutes(r chi.Router, cf commandFacade) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/video-info", handleVideoInfo(cf))
		r.Get("/downloaded", handleGetDownloaded(cf))
		r.Post("/downloaded", handlePostDownloaded(cf))
		r.Post("/rescrape", handleRescrape(cf))
		r.Get("/image", handleImage(cf))
		r.Post("/torrent/{action}", handleTorrentAction(cf))
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, &models.ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func handleVideoInfo(cf commandFacade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req videoInfoRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Name == "" {
			writeError(w, r, &models.ValidationError{Field: "name", Message: "required"})
			return
		}

		info, err := cf.GetVideoInfo(r.Context(), req.Name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if info == nil {
			writeJSON(w, http.StatusNoContent, nil)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

func handleGetDownloaded(cf commandFacade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		hash := r.URL.Query().Get("hash")
		if name == "" && hash == "" {
			writeError(w, r, &models.ValidationError{Field: "name", Message: "name or hash is required"})
			return
		}

		at, err := cf.HasBeenDownloaded(r.Context(), name, hash)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, downloadedResponse{DownloadedAt: at})
	}
}

func handlePostDownloaded(cf commandFacade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req downloadedRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Name == "" && req.Hash == "" {
			writeError(w, r, &models.ValidationError{Field: "name", Message: "name or hash is required"})
			return
		}

		if err := cf.MarkAsDownloaded(r.Context(), req.Name, req.Hash, req.DownloadedAt); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleRescrape(cf commandFacade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req videoInfoRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Name == "" {
			writeError(w, r, &models.ValidationError{Field: "name", Message: "required"})
			return
		}

		info, err := cf.Rescrape(r.Context(), req.Name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if info == nil {
			writeJSON(w, http.StatusNoContent, nil)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

func handleImage(cf commandFacade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imageURL := r.URL.Query().Get("url")
		if imageURL == "" {
			writeError(w, r, &models.ValidationError{Field: "url", Message: "required"})
			return
		}

		dataURL, err := cf.DownloadImage(r.Context(), imageURL)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, imageResponse{DataURL: dataURL})
	}
}

// handleTorrentAction forwards to the qBittorrent passthrough. "add" is the
// only action the facade currently exposes; anything else is a caller
// error, not a server failure.
func handleTorrentAction(cf commandFacade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := chi.URLParam(r, "action")
		if action != "add" {
			writeError(w, r, &models.ValidationError{Field: "action", Message: "unsupported torrent action: " + action})
			return
		}

		var req torrentActionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.MagnetURI == "" {
			writeError(w, r, &models.ValidationError{Field: "magnet_uri", Message: "required"})
			return
		}

		if err := cf.TorrentAction(r.Context(), req.MagnetURI, req.SavePath, req.Category); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
