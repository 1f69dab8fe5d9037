package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/logger"
	"github.com/diewo77/go-rentals/internal/services"
	"go.uber.org/zap"
)

// writeError maps a service error onto a JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	var saveErr *services.SaveError
	switch {
	case errors.As(err, &verr):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", verr.Violations)
	case errors.Is(err, services.ErrRoomRequired):
		httpx.JSONError(w, http.StatusBadRequest, "room_required", nil)
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, services.ErrConflict):
		httpx.JSONError(w, http.StatusConflict, "conflict", nil)
	case errors.Is(err, services.ErrBadLogin):
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
	case errors.As(err, &saveErr):
		logger.FromContext(r.Context()).Error("save failed", zap.String("op", saveErr.Op), zap.Error(saveErr.Cause))
		httpx.JSONError(w, http.StatusInternalServerError, "save_failed", map[string]string{"cause": saveErr.Cause.Error()})
	default:
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

func badJSON(w http.ResponseWriter, err error) {
	httpx.JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
}
