package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/diewo77/go-rentals/auth"
	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/policy"
	"github.com/diewo77/go-rentals/internal/services"
)

type HomeHandler struct {
	homes     *services.HomeService
	notifier  *services.HomesNotifier
	keepAlive time.Duration
}

func NewHomeHandler(homes *services.HomeService, notifier *services.HomesNotifier) *HomeHandler {
	return &HomeHandler{homes: homes, notifier: notifier, keepAlive: 30 * time.Second}
}

func (h *HomeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	list, err := h.homes.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"homes": list})
}

func (h *HomeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var in services.HomeInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, err)
		return
	}
	home, err := h.homes.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, home)
}

// Get returns the home with its rooms and fresh room counters.
func (h *HomeHandler) Get(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	detail, err := h.homes.Detail(r.Context(), home.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *HomeHandler) Update(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	var in services.HomeInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, err)
		return
	}
	if err := h.homes.Update(r.Context(), home, in); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, home)
}

func (h *HomeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	if err := h.homes.Delete(r.Context(), home); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Events streams the signed-in user's home list changes as server-sent
// events until the client goes away.
func (h *HomeHandler) Events(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.JSONError(w, http.StatusNotImplemented, "streaming_unsupported", nil)
		return
	}
	events, cancel := h.notifier.Subscribe()
	defer cancel()

	// the stream outlives the server's WriteTimeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			if ev.UserID != userID {
				continue
			}
			data, _ := json.Marshal(ev)
			fmt.Fprintf(w, "event: homes\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
