package service

import (
	"context"
	"sync"
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// phoneFixture is a stored product: Color (multi: Red 0, Blue +10), Storage (single:
// 128GB 0, 256GB +50, 512GB +120 unavailable) and an empty Engraving group.
type phoneFixture struct {
	product *model.Product
	color   *model.FeatureGroup
	storage *model.FeatureGroup
	red     uint
	blue    uint
	gb128   uint
	gb256   uint
	gb512   uint
}

func createPhone(t *testing.T, testDB *gorm.DB) *phoneFixture {
	t.Helper()

	product := &model.Product{
		Name:      "Phone",
		Category:  "phones",
		BasePrice: dec("100"),
		MainImage: "phone.png",
		FeatureGroups: []model.FeatureGroup{
			{Label: "Color", SelectionMode: model.SelectionMulti, SortOrder: 1, Values: []model.FeatureValue{
				{Label: "Red", PriceDelta: dec("0"), Available: true, SortOrder: 1},
				{Label: "Blue", PriceDelta: dec("10"), Available: true, SortOrder: 2},
			}},
			{Label: "Storage", SelectionMode: model.SelectionSingle, SortOrder: 2, Values: []model.FeatureValue{
				{Label: "128GB", PriceDelta: dec("0"), Available: true, SortOrder: 1},
				{Label: "256GB", PriceDelta: dec("50"), Available: true, SortOrder: 2},
				{Label: "512GB", PriceDelta: dec("120"), Available: false, SortOrder: 3},
			}},
			{Label: "Engraving", SelectionMode: model.SelectionMulti, SortOrder: 3},
		},
	}
	require.NoError(t, testDB.Create(product).Error)

	color := &product.FeatureGroups[0]
	storage := &product.FeatureGroups[1]
	return &phoneFixture{
		product: product,
		color:   color,
		storage: storage,
		red:     color.Values[0].ID,
		blue:    color.Values[1].ID,
		gb128:   storage.Values[0].ID,
		gb256:   storage.Values[1].ID,
		gb512:   storage.Values[2].ID,
	}
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return testDB
}

func newTestCatalog(testDB *gorm.DB, cache repository.CatalogCache) CatalogService {
	return NewCatalogService(
		repository.NewProductRepository(testDB),
		repository.NewFeatureRepository(testDB),
		cache,
	)
}

type staticPolicy map[uint][]string

func (p staticPolicy) RequiredLabels(productID uint) []string {
	return p[productID]
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages map[string][]interface{}
	closed   map[string]bool
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		messages: make(map[string][]interface{}),
		closed:   make(map[string]bool),
	}
}

func (n *recordingNotifier) CloseSession(sessionID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed[sessionID] = true
}

func (n *recordingNotifier) isClosed(sessionID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed[sessionID]
}

func (n *recordingNotifier) SendToSession(sessionID string, message interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages[sessionID] = append(n.messages[sessionID], message)
	return nil
}

func (n *recordingNotifier) priceUpdates(sessionID string) []PriceUpdate {
	n.mu.Lock()
	defer n.mu.Unlock()
	var updates []PriceUpdate
	for _, msg := range n.messages[sessionID] {
		if update, ok := msg.(PriceUpdate); ok {
			updates = append(updates, update)
		}
	}
	return updates
}

func (n *recordingNotifier) last(sessionID string) interface{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	msgs := n.messages[sessionID]
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

type fakeUploader struct {
	key         string
	body        []byte
	contentType string
	err         error
}

func (u *fakeUploader) Upload(_ context.Context, key string, body []byte, contentType string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.key = key
	u.body = body
	u.contentType = contentType
	return "https://cdn.example.com/" + key, nil
}
