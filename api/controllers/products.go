package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/action"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

const maxSearchLength = 100

// FeaturedProducts lists featured products for the home page.
func FeaturedProducts(svc products.Service, logg *logger.Logger, m *metrics.ActionMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		respond(w, r, logg, m, "fetchFeaturedProducts", start, svc.FetchFeaturedProducts(r.Context()))
	}
}

// ListProducts lists the catalog, optionally filtered by ?search=.
func ListProducts(svc products.Service, logg *logger.Logger, m *metrics.ActionMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		search := validators.SanitizeString(r.URL.Query().Get("search"), maxSearchLength)
		respond(w, r, logg, m, "fetchAllProducts", start, svc.FetchAllProducts(r.Context(), search))
	}
}

func GetProduct(svc products.Service, logg *logger.Logger, m *metrics.ActionMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		res := svc.FetchSingleProduct(r.Context(), chi.URLParam(r, "productId"))
		respond(w, r, logg, m, "fetchSingleProduct", start, res)
	}
}

// CreateProduct accepts the multipart product form including the image file.
func CreateProduct(svc products.Service, logg *logger.Logger, m *metrics.ActionMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const name = "createProduct"
		start := time.Now()
		input, err := validators.ParseForm(r)
		if err != nil {
			respond(w, r, logg, m, name, start, action.Failure(err))
			return
		}
		res := svc.CreateProduct(r.Context(), middleware.IdentityFromContext(r.Context()), input)
		respond(w, r, logg, m, name, start, res)
	}
}

func AdminListProducts(svc products.Service, logg *logger.Logger, m *metrics.ActionMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		res := svc.FetchAdminProducts(r.Context(), middleware.IdentityFromContext(r.Context()))
		respond(w, r, logg, m, "fetchAdminProducts", start, res)
	}
}

func AdminGetProduct(svc products.Service, logg *logger.Logger, m *metrics.ActionMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		res := svc.FetchAdminProductDetails(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "productId"))
		respond(w, r, logg, m, "fetchAdminProductDetails", start, res)
	}
}

func AdminDeleteProduct(svc products.Service, logg *logger.Logger, m *metrics.ActionMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		res := svc.DeleteProduct(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "productId"))
		respond(w, r, logg, m, "deleteProduct", start, res)
	}
}

// AdminUpdateProduct updates the product fields. The id comes from the path.
func AdminUpdateProduct(svc products.Service, logg *logger.Logger, m *metrics.ActionMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const name = "updateProduct"
		start := time.Now()
		input, err := validators.ParseForm(r)
		if err != nil {
			respond(w, r, logg, m, name, start, action.Failure(err))
			return
		}
		res := svc.UpdateProduct(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "productId"), input)
		respond(w, r, logg, m, name, start, res)
	}
}

func AdminUpdateProductImage(svc products.Service, logg *logger.Logger, m *metrics.ActionMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const name = "updateProductImage"
		start := time.Now()
		input, err := validators.ParseForm(r)
		if err != nil {
			respond(w, r, logg, m, name, start, action.Failure(err))
			return
		}
		res := svc.UpdateProductImage(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "productId"), input)
		respond(w, r, logg, m, name, start, res)
	}
}
