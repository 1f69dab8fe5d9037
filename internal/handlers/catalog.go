package handlers

import (
	"net/http"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/policy"
	"github.com/diewo77/go-rentals/internal/services"
)

// CatalogHandler serves a home's unit prices and add-on services.
type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) Settings(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	st, err := h.catalog.Settings(r.Context(), home.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *CatalogHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	var in services.SettingsInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, err)
		return
	}
	st, err := h.catalog.UpdateSettings(r.Context(), home.ID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *CatalogHandler) Services(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	list, err := h.catalog.Services(r.Context(), home.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"services": list})
}

func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	var in services.ServiceInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, err)
		return
	}
	svc, err := h.catalog.CreateService(r.Context(), home.ID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, svc)
}

func (h *CatalogHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	id, ok := httpx.PathID(r, "serviceID")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_service_id", nil)
		return
	}
	var in services.ServiceInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, err)
		return
	}
	svc, err := h.catalog.UpdateService(r.Context(), home.ID, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, svc)
}

func (h *CatalogHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	id, ok := httpx.PathID(r, "serviceID")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_service_id", nil)
		return
	}
	if err := h.catalog.DeleteService(r.Context(), home.ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
