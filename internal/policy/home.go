package policy

import (
	"context"
	"errors"
	"net/http"

	"github.com/diewo77/go-rentals/auth"
	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/logger"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"go.uber.org/zap"
)

type homeCtxKey struct{}

// WithHome stores the authorized home of the request in ctx.
func WithHome(ctx context.Context, h *models.Home) context.Context {
	return context.WithValue(ctx, homeCtxKey{}, h)
}

// HomeFromContext returns the home stored by RequireHome.
func HomeFromContext(ctx context.Context) (*models.Home, bool) {
	h, ok := ctx.Value(homeCtxKey{}).(*models.Home)
	return h, ok && h != nil
}

// HomeLoader loads a home by id. services.HomeService.Get satisfies it.
type HomeLoader func(ctx context.Context, homeID uint) (*models.Home, error)

// RequireHome loads the home named by the {homeID} path value, checks the
// signed-in user may act on it and stores it in the request context.
// Unknown homes answer 404 and homes of other users 403.
func RequireHome(g *Gate, load HomeLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, _ := auth.UserIDFromContext(r.Context())
			homeID, ok := httpx.PathID(r, "homeID")
			if !ok {
				httpx.JSONError(w, http.StatusBadRequest, "invalid_home_id", nil)
				return
			}
			home, err := load(r.Context(), homeID)
			if errors.Is(err, services.ErrNotFound) {
				httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
				return
			}
			if err != nil {
				logger.FromContext(r.Context()).Error("load home", zap.Uint("home_id", homeID), zap.Error(err))
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
				return
			}
			if err := g.Authorize(r.Context(), uid, ActionFor(r.Method), ResourceHome, home); err != nil {
				logger.FromContext(r.Context()).Warn("home access denied",
					zap.Uint("home_id", homeID), zap.Uint("user_id", uid))
				httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithHome(r.Context(), home)))
		})
	}
}
