package handlers

import (
	"net/http"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/policy"
	"github.com/diewo77/go-rentals/internal/services"
)

type RoomHandler struct {
	rooms *services.RoomService
}

func NewRoomHandler(rooms *services.RoomService) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

func roomID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, ok := httpx.PathID(r, "roomID")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_room_id", nil)
	}
	return id, ok
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	rooms, err := h.rooms.List(r.Context(), home.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	room, err := h.rooms.Get(r.Context(), home.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, room)
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	var in services.RoomInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, err)
		return
	}
	room, err := h.rooms.Create(r.Context(), home.ID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, room)
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	var in services.RoomInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, err)
		return
	}
	room, err := h.rooms.Update(r.Context(), home.ID, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, room)
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	if err := h.rooms.Delete(r.Context(), home.ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
