package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mzahid/tartil/internal/cache"
	"github.com/mzahid/tartil/internal/logger"
	"github.com/mzahid/tartil/internal/synth"
)

// Handler exposes the cache layer to the app's UI as a JSON API.
type Handler struct {
	Cache      *cache.Manager
	Synth      *synth.Synthesizer
	ExportsDir string
	Log        *logger.Logger
}

func NewHandler(c *cache.Manager, s *synth.Synthesizer, exportsDir string, log *logger.Logger) *Handler {
	return &Handler{
		Cache:      c,
		Synth:      s,
		ExportsDir: exportsDir,
		Log:        log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/owner", h.Owner)

		r.Get("/progress", h.ListProgress)
		r.Put("/progress", h.SaveProgress)
		r.Get("/progress/{level}", h.GetProgress)

		r.Post("/audio", h.SynthesizeAudio)
		r.Get("/audio", h.ListAudio)
		r.Get("/audio/{id}", h.GetAudio)
		r.Delete("/audio/{id}", h.DeleteAudio)
		r.Post("/audio/{id}/export", h.ExportAudio)

		r.Get("/recordings", h.ListRecordings)
		r.Delete("/recordings/{id}", h.DeleteRecording)
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, map[string]string{"error": msg})
}
