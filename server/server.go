// Package server exposes the sync trigger and status endpoints.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/truantmusic/releaseradar/db"
	"github.com/truantmusic/releaseradar/syncer"
)

// A Handler serves the engine's two endpoints.
type Handler struct {
	DB     *db.DB
	Runner *syncer.Runner
	Log    *log.Logger

	// Secret, when set, must match the 'secret' query parameter on the
	// trigger endpoint.
	Secret            string
	DefaultPlaylistID string
}

func (h *Handler) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sync", h.handleSync)
	mux.HandleFunc("GET /status", h.handleStatus)
	return mux
}

// Run serves until the context is canceled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h *Handler) error {
	srv := http.Server{Addr: addr, Handler: h.routes()}

	errs := make(chan error)
	go func() { errs <- srv.ListenAndServe() }()

	h.Log.Info("listening", "addr", addr)

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		if err := srv.Shutdown(context.Background()); err != nil {
			return err
		}
		return <-errs
	}
}

func (h *Handler) handleSync(w http.ResponseWriter, req *http.Request) {
	if h.Secret == "" || req.URL.Query().Get("secret") != h.Secret {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	skip := req.URL.Query().Get("skipArtists")
	skipArtists := skip == "1" || skip == "true"

	summary, err := h.Runner.Run(req.Context(), skipArtists)
	if err != nil {
		h.Log.Error("sync run failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, summary)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type statusResponse struct {
	TotalArtists  int64   `json:"totalArtists"`
	WithListeners int64   `json:"withListeners"`
	LastSync      *string `json:"lastSync"`
	PlaylistID    string  `json:"playlistId"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, req *http.Request) {
	status, err := h.DB.ArtistStatus()
	if err != nil {
		h.Log.Error("status query failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		TotalArtists:  status.TotalArtists,
		WithListeners: status.WithListeners,
		LastSync:      status.LastSync,
		PlaylistID:    h.DefaultPlaylistID,
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
