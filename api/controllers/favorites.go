package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/favorites"
	"github.com/angelmondragon/storefront-backend/pkg/action"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// ToggleFavorite flips the caller's favorite for a product.
func ToggleFavorite(svc favorites.Service, logg *logger.Logger, m *metrics.ActionMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const name = "toggleFavorite"
		start := time.Now()
		var payload favorites.ToggleInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			respond(w, r, logg, m, name, start, action.Failure(err))
			return
		}
		res := svc.ToggleFavorite(r.Context(), middleware.IdentityFromContext(r.Context()), payload)
		respond(w, r, logg, m, name, start, res)
	}
}

// ProductFavorite returns the caller's favorite id for the product, or null.
func ProductFavorite(svc favorites.Service, logg *logger.Logger, m *metrics.ActionMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		res := svc.FetchFavoriteID(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "productId"))
		respond(w, r, logg, m, "fetchFavoriteId", start, res)
	}
}

func ListFavorites(svc favorites.Service, logg *logger.Logger, m *metrics.ActionMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		res := svc.FetchUserFavorites(r.Context(), middleware.IdentityFromContext(r.Context()))
		respond(w, r, logg, m, "fetchUserFavorites", start, res)
	}
}
