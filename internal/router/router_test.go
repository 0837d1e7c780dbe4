package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/configurator"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/middleware"
	ws "github.com/ikkim/storefront-backend/internal/websocket"
	"github.com/ikkim/storefront-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret"

func setupRouter(t *testing.T) *gin.Engine {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	require.NoError(t, db.SeedTestDB(testDB))

	cfg := &config.Config{}
	cfg.Server.GinMode = gin.TestMode
	cfg.CORS.AllowedOrigins = []string{"http://localhost:5173"}

	hub := ws.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	productRepo := repository.NewProductRepository(testDB)
	catalog := service.NewCatalogService(productRepo, repository.NewFeatureRepository(testDB), nil)
	carts := service.NewCartService(repository.NewCartRepository(testDB))
	configs := service.NewConfigurationService(repository.NewMemorySessionStore(time.Hour), catalog, carts, configurator.NewBuilder(""), (*config.SelectionPolicy)(nil), hub)

	r := NewRouter(
		controller.NewProductController(catalog),
		controller.NewConfigurationController(configs, hub, cfg.CORS.AllowedOrigins),
		controller.NewCartController(carts, service.NewExportService(carts, nil, "")),
		controller.NewAdminController(catalog, service.NewCatalogImporter(productRepo)),
		middleware.NewAuthMiddleware(testSecret),
		cfg,
	)
	return r.Setup()
}

func request(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:5173")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, userID uint, role string) string {
	tok, err := util.GenerateToken(userID, "user@example.com", role, testSecret, time.Minute)
	require.NoError(t, err)
	return tok
}

func TestRouter_HealthAndCORS(t *testing.T) {
	router := setupRouter(t)

	w := request(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = request(t, router, http.MethodOptions, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRouter_GuestConfigureThenCommit(t *testing.T) {
	router := setupRouter(t)

	w := request(t, router, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = request(t, router, http.MethodPost, "/api/v1/configurations", "", map[string]interface{}{"product_id": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var started struct {
		Session service.SessionView `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	path := "/api/v1/configurations/" + started.Session.ID

	w = request(t, router, http.MethodPost, path+"/commit", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(t, router, http.MethodPost, path+"/commit", token(t, 3, middleware.RoleUser), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = request(t, router, http.MethodGet, "/api/v1/cart", token(t, 3, middleware.RoleUser), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Aurora Phone")
}

func TestRouter_AdminRequiresRole(t *testing.T) {
	router := setupRouter(t)
	path := "/api/v1/admin/feature-values/1/availability"
	body := map[string]interface{}{"available": false}

	assert.Equal(t, http.StatusUnauthorized, request(t, router, http.MethodPut, path, "", body).Code)
	assert.Equal(t, http.StatusForbidden, request(t, router, http.MethodPut, path, token(t, 1, middleware.RoleUser), body).Code)
	assert.Equal(t, http.StatusOK, request(t, router, http.MethodPut, path, token(t, 1, middleware.RoleAdmin), body).Code)
}
