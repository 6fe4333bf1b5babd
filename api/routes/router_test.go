package routes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/internal/access"
	"github.com/angelmondragon/storefront-backend/internal/favorites"
	"github.com/angelmondragon/storefront-backend/internal/schemas"
	"github.com/angelmondragon/storefront-backend/pkg/action"
	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type call struct {
	name   string
	caller string
	id     string
}

type recordingProducts struct {
	calls []call
}

func (r *recordingProducts) record(name string, caller *auth.Identity, id string) {
	c := call{name: name, id: id}
	if caller != nil {
		c.caller = caller.UserID
	}
	r.calls = append(r.calls, c)
}

func (r *recordingProducts) last() call {
	if len(r.calls) == 0 {
		return call{}
	}
	return r.calls[len(r.calls)-1]
}

func (r *recordingProducts) FetchFeaturedProducts(context.Context) action.Result[[]models.Product] {
	r.record("featured", nil, "")
	return action.Success([]models.Product{})
}

func (r *recordingProducts) FetchAllProducts(_ context.Context, search string) action.Result[[]models.Product] {
	r.record("list", nil, search)
	return action.Success([]models.Product{})
}

func (r *recordingProducts) FetchSingleProduct(_ context.Context, id string) action.Result[models.Product] {
	r.record("single", nil, id)
	return action.Success(models.Product{})
}

func (r *recordingProducts) CreateProduct(_ context.Context, caller *auth.Identity, _ schemas.Input) action.Result[action.Message] {
	r.record("create", caller, "")
	return action.Redirect[action.Message]("/admin/products")
}

func (r *recordingProducts) FetchAdminProducts(_ context.Context, caller *auth.Identity) action.Result[[]models.Product] {
	r.record("adminList", caller, "")
	return action.Success([]models.Product{})
}

func (r *recordingProducts) DeleteProduct(_ context.Context, caller *auth.Identity, id string) action.Result[action.Message] {
	r.record("delete", caller, id)
	return action.Done("product removed")
}

func (r *recordingProducts) FetchAdminProductDetails(_ context.Context, caller *auth.Identity, id string) action.Result[models.Product] {
	r.record("adminDetails", caller, id)
	return action.Success(models.Product{})
}

func (r *recordingProducts) UpdateProduct(_ context.Context, caller *auth.Identity, id string, _ schemas.Input) action.Result[action.Message] {
	r.record("update", caller, id)
	return action.Done("Product updated successfully")
}

func (r *recordingProducts) UpdateProductImage(_ context.Context, caller *auth.Identity, id string, _ schemas.Input) action.Result[action.Message] {
	r.record("updateImage", caller, id)
	return action.Done("Product image updated successfully")
}

type recordingFavorites struct {
	calls []call
}

func (r *recordingFavorites) record(name string, caller *auth.Identity, id string) {
	c := call{name: name, id: id}
	if caller != nil {
		c.caller = caller.UserID
	}
	r.calls = append(r.calls, c)
}

func (r *recordingFavorites) ToggleFavorite(_ context.Context, caller *auth.Identity, in favorites.ToggleInput) action.Result[action.Message] {
	r.record("toggle", caller, in.ProductID)
	return action.Done("added to favorites")
}

func (r *recordingFavorites) FetchFavoriteID(_ context.Context, caller *auth.Identity, productID string) action.Result[favorites.Lookup] {
	r.record("lookup", caller, productID)
	return action.Success(favorites.Lookup{})
}

func (r *recordingFavorites) FetchUserFavorites(_ context.Context, caller *auth.Identity) action.Result[[]models.Favorite] {
	r.record("list", caller, "")
	return action.Success([]models.Favorite{})
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev, CORSOrigins: []string{"http://localhost:3000"}},
		Auth: config.AuthConfig{
			AdminUserID:       "user_admin",
			Verifier:          config.VerifierHMAC,
			HMACSecret:        "router-secret",
			ExpirationMinutes: 30,
			SessionCookie:     "__session",
		},
		Media: config.MediaConfig{MaxUploadMB: 1},
	}
}

type fixture struct {
	cfg       *config.Config
	products  *recordingProducts
	favorites *recordingFavorites
	registry  *prometheus.Registry
	handler   http.Handler
}

func newFixture(t *testing.T, checks map[string]controllers.Pinger) *fixture {
	t.Helper()
	cfg := testConfig()
	verifier, err := auth.NewHMACVerifier(cfg.Auth)
	require.NoError(t, err)

	f := &fixture{
		cfg:       cfg,
		products:  &recordingProducts{},
		favorites: &recordingFavorites{},
		registry:  prometheus.NewRegistry(),
	}
	f.handler = NewRouter(
		cfg,
		logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		verifier,
		Services{Products: f.products, Favorites: f.favorites, Gate: access.NewGate(cfg.Auth.AdminUserID)},
		Observability{
			Checks:   checks,
			Gatherer: f.registry,
			Actions:  metrics.NewActionMetrics(f.registry),
		},
	)
	return f
}

func (f *fixture) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.MintSessionToken(f.cfg.Auth, time.Now().UTC(), auth.SessionTokenPayload{UserID: userID, SessionID: "sess"})
	require.NoError(t, err)
	return token
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestProductRoutesDispatch(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.token(t, "user_admin")

	cases := []struct {
		method string
		path   string
		want   call
		status int
	}{
		{http.MethodGet, "/api/v1/products/featured", call{name: "featured"}, http.StatusOK},
		{http.MethodGet, "/api/v1/products?search=lamp", call{name: "list", id: "lamp"}, http.StatusOK},
		{http.MethodGet, "/api/v1/products/p1", call{name: "single", id: "p1"}, http.StatusOK},
		{http.MethodGet, "/api/admin/v1/products", call{name: "adminList", caller: "user_admin"}, http.StatusOK},
		{http.MethodGet, "/api/admin/v1/products/p1", call{name: "adminDetails", caller: "user_admin", id: "p1"}, http.StatusOK},
		{http.MethodDelete, "/api/admin/v1/products/p1", call{name: "delete", caller: "user_admin", id: "p1"}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.Header.Set("Authorization", "Bearer "+admin)
			rec := f.do(req)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.want, f.products.last())
		})
	}
}

func TestFeaturedRouteIsNotShadowedByProductID(t *testing.T) {
	f := newFixture(t, nil)

	f.do(httptest.NewRequest(http.MethodGet, "/api/v1/products/featured", nil))

	require.Len(t, f.products.calls, 1)
	assert.Equal(t, "featured", f.products.calls[0].name)
}

func TestIdentityReachesServices(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/admin/v1/products/p1", strings.NewReader("name=Lamp"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+f.token(t, "user_admin"))
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, call{name: "update", caller: "user_admin", id: "p1"}, f.products.last())

	cookieReq := httptest.NewRequest(http.MethodGet, "/api/v1/favorites", nil)
	cookieReq.AddCookie(&http.Cookie{Name: "__session", Value: f.token(t, "user_shopper")})
	f.do(cookieReq)
	require.Len(t, f.favorites.calls, 1)
	assert.Equal(t, call{name: "list", caller: "user_shopper"}, f.favorites.calls[0])
}

func TestInvalidTokenIsAnonymous(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/p1/favorite", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := f.do(req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, access.HomeRoute, rec.Header().Get("Location"))
	assert.Empty(t, f.favorites.calls)
}

func TestAnonymousCallersAreRedirectedBeforeBodyParsing(t *testing.T) {
	f := newFixture(t, nil)

	cases := []struct {
		name        string
		method      string
		path        string
		body        string
		contentType string
	}{
		{"toggle with malformed favorite", http.MethodPost, "/api/v1/favorites/toggle", `{"favorite_id":"abc"}`, "application/json"},
		{"toggle with unknown field", http.MethodPost, "/api/v1/favorites/toggle", `{"product":"p1"}`, "application/json"},
		{"create with broken multipart", http.MethodPost, "/api/v1/products", "--broken", "multipart/form-data; boundary=xyz"},
		{"update with broken multipart", http.MethodPut, "/api/admin/v1/products/p1", "--broken", "multipart/form-data; boundary=xyz"},
		{"image with broken multipart", http.MethodPut, "/api/admin/v1/products/p1/image", "--broken", "multipart/form-data; boundary=xyz"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.contentType)
			rec := f.do(req)

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, access.HomeRoute, rec.Header().Get("Location"))
			assert.NotContains(t, rec.Body.String(), "message")
		})
	}
	assert.Empty(t, f.products.calls)
	assert.Empty(t, f.favorites.calls)
}

func TestShopperIsRedirectedFromAdminRoutes(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/admin/v1/products/p1/image", strings.NewReader("--broken"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	req.Header.Set("Authorization", "Bearer "+f.token(t, "user_shopper"))
	rec := f.do(req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, access.HomeRoute, rec.Header().Get("Location"))
	assert.Empty(t, f.products.calls)
}

func TestFavoriteRoutesDispatch(t *testing.T) {
	f := newFixture(t, nil)
	token := f.token(t, "user_shopper")

	toggle := httptest.NewRequest(http.MethodPost, "/api/v1/favorites/toggle", strings.NewReader(`{"product_id":"p1"}`))
	toggle.Header.Set("Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, f.do(toggle).Code)

	lookup := httptest.NewRequest(http.MethodGet, "/api/v1/products/p1/favorite", nil)
	lookup.Header.Set("Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, f.do(lookup).Code)

	assert.Equal(t, []call{
		{name: "toggle", caller: "user_shopper", id: "p1"},
		{name: "lookup", caller: "user_shopper", id: "p1"},
	}, f.favorites.calls)
}

func TestCreateProductRedirects(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader("name=Lamp"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+f.token(t, "user_shopper"))
	rec := f.do(req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/products", rec.Header().Get("Location"))
}

func TestBodyLimitRejectsOversizedToggle(t *testing.T) {
	f := newFixture(t, nil)

	payload := `{"product_id":"` + strings.Repeat("a", 2<<20) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/favorites/toggle", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+f.token(t, "user_shopper"))
	rec := f.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "request body too large")
	assert.Empty(t, f.favorites.calls)
}

func TestUnknownMethodIsRejected(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/v1/products/p1", nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t, "user_admin"))
	rec := f.do(req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Empty(t, f.products.calls)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/favorites/toggle", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := f.do(req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, f.favorites.calls)
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	f := newFixture(t, map[string]controllers.Pinger{
		"db":    stubPinger{},
		"redis": stubPinger{err: errors.New("connection refused")},
	})

	live := f.do(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, live.Code)

	ready := f.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, ready.Code)

	f.do(httptest.NewRequest(http.MethodGet, "/api/v1/products/featured", nil))
	metricsRec := f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, metricsRec.Code)
	assert.Contains(t, metricsRec.Body.String(), "storefront_action_total")
	assert.Contains(t, metricsRec.Body.String(), `action="fetchFeaturedProducts"`)
}
