package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mzahid/tartil/internal/domain"
	"github.com/mzahid/tartil/internal/export"
)

func (h *Handler) Owner(w http.ResponseWriter, r *http.Request) {
	// Identity resolution never fails; absence of auth degrades to the
	// anonymous device identity.
	h.respondJSON(w, http.StatusOK, map[string]string{
		"owner_id": h.Cache.OwnerID(r.Context()),
	})
}

func (h *Handler) ListProgress(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Cache.GetAllProgress(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []domain.ProgressRecord{}
	}
	h.respondJSON(w, http.StatusOK, recs)
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "level must be an integer")
		return
	}

	rec, err := h.Cache.GetProgress(r.Context(), level)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		h.respondError(w, http.StatusNotFound, "no progress for level")
		return
	}
	h.respondJSON(w, http.StatusOK, rec)
}

func (h *Handler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	var rec domain.ProgressRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid progress record")
		return
	}
	if rec.Level <= 0 {
		h.respondError(w, http.StatusBadRequest, "level must be positive")
		return
	}

	if err := h.Cache.SaveProgress(r.Context(), rec); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, rec)
}

type synthesizeRequest struct {
	ContentKey string `json:"content_key"`
	Text       string `json:"text"`
}

// SynthesizeAudio returns cached audio for a content key, synthesizing and
// caching it on miss.
func (h *Handler) SynthesizeAudio(w http.ResponseWriter, r *http.Request) {
	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ContentKey == "" || req.Text == "" {
		h.respondError(w, http.StatusBadRequest, "content_key and text are required")
		return
	}

	payload, err := h.Cache.GetOrProduce(r.Context(), req.ContentKey, req.Text, h.Synth.Producer(req.Text))
	if err != nil {
		h.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	item, err := h.Cache.GetAudioByContentKey(req.ContentKey)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":          item.ID,
		"content_key": item.ContentKey,
		"payload":     payload,
	})
}

func (h *Handler) ListAudio(w http.ResponseWriter, r *http.Request) {
	metas, err := h.Cache.ListAudioMetadata()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if metas == nil {
		metas = []domain.AudioMetadata{}
	}
	h.respondJSON(w, http.StatusOK, metas)
}

func (h *Handler) GetAudio(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	item, err := h.Cache.GetAudio(id)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		h.respondError(w, http.StatusNotFound, "audio item not found")
		return
	}
	h.respondJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteAudio(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	if err := h.Cache.DeleteAudio(id); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ExportAudio(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	item, err := h.Cache.GetAudio(id)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		h.respondError(w, http.StatusNotFound, "audio item not found")
		return
	}

	path, err := export.SaveMP3(item, h.ExportsDir)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"path": path})
}

func (h *Handler) ListRecordings(w http.ResponseWriter, r *http.Request) {
	// Empty on any remote failure: the listing must never error out.
	h.respondJSON(w, http.StatusOK, h.Cache.ListCloudRecordings(r.Context()))
}

func (h *Handler) DeleteRecording(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	recs, err := h.Cache.DeleteCloudRecording(r.Context(), id)
	if err != nil {
		// Unlike best-effort sync, a failed cloud delete must be visible.
		h.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, recs)
}
