package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/configurator"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	ws "github.com/ikkim/storefront-backend/internal/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	hub      *ws.Hub
	catalog  service.CatalogService
	configs  service.ConfigurationService
	carts    service.CartService
	product  *model.Product
	uploader *fakeUploader
}

type fakeUploader struct {
	key string
}

func (u *fakeUploader) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	u.key = key
	return "https://cdn.example.com/" + key, nil
}

type policyMap map[uint][]string

func (p policyMap) RequiredLabels(productID uint) []string {
	return p[productID]
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// setupControllerTest stores a phone: Color (multi: Red 0, Blue +10) and
// Storage (single: 128GB 0, 256GB +50, 512GB +120 unavailable), base price 100.
func setupControllerTest(t *testing.T, policy policyMap) *testEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	product := &model.Product{
		Name:      "Phone",
		Category:  "phones",
		BasePrice: d("100"),
		FeatureGroups: []model.FeatureGroup{
			{Label: "Color", SelectionMode: model.SelectionMulti, SortOrder: 1, Values: []model.FeatureValue{
				{Label: "Red", PriceDelta: d("0"), Available: true, SortOrder: 1},
				{Label: "Blue", PriceDelta: d("10"), Available: true, SortOrder: 2},
			}},
			{Label: "Storage", SelectionMode: model.SelectionSingle, SortOrder: 2, Values: []model.FeatureValue{
				{Label: "128GB", PriceDelta: d("0"), Available: true, SortOrder: 1},
				{Label: "256GB", PriceDelta: d("50"), Available: true, SortOrder: 2},
				{Label: "512GB", PriceDelta: d("120"), Available: false, SortOrder: 3},
			}},
		},
	}
	require.NoError(t, testDB.Create(product).Error)

	hub := ws.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	catalog := service.NewCatalogService(repository.NewProductRepository(testDB), repository.NewFeatureRepository(testDB), nil)
	carts := service.NewCartService(repository.NewCartRepository(testDB))
	configs := service.NewConfigurationService(
		repository.NewMemorySessionStore(time.Hour),
		catalog,
		carts,
		configurator.NewBuilder(""),
		policy,
		hub,
	)

	gin.SetMode(gin.TestMode)
	return &testEnv{
		db:       testDB,
		router:   gin.New(),
		hub:      hub,
		catalog:  catalog,
		configs:  configs,
		carts:    carts,
		product:  product,
		uploader: &fakeUploader{},
	}
}

func (e *testEnv) colorID() uint   { return e.product.FeatureGroups[0].ID }
func (e *testEnv) blueID() uint    { return e.product.FeatureGroups[0].Values[1].ID }
func (e *testEnv) storageID() uint { return e.product.FeatureGroups[1].ID }
func (e *testEnv) gb256ID() uint   { return e.product.FeatureGroups[1].Values[1].ID }

// Helper function to set user ID in context
func asUser(userID uint, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != 0 {
			c.Set("user_id", userID)
		}
		handler(c)
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func sessionField(t *testing.T, w *httptest.ResponseRecorder, field string) interface{} {
	t.Helper()
	session, ok := decode(t, w)["session"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return session[field]
}
