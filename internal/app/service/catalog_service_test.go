package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})
	return client, mr
}

func TestCatalogService_FetchProduct(t *testing.T) {
	ctx := context.Background()
	testDB := setupServiceDB(t)
	phone := createPhone(t, testDB)
	catalog := newTestCatalog(testDB, nil)

	product, err := catalog.FetchProduct(ctx, phone.product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Phone", product.Name)
	assert.Empty(t, product.FeatureGroups)

	groups, err := catalog.FetchFeatureGroups(ctx, phone.product.ID)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "Color", groups[0].Label)
	assert.Equal(t, "Storage", groups[1].Label)
	assert.Len(t, groups[1].Values, 3)
	assert.Empty(t, groups[2].Values)

	_, err = catalog.FetchProduct(ctx, 9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogService_FetchFeatureGroups_AddedLater(t *testing.T) {
	ctx := context.Background()
	testDB := setupServiceDB(t)
	phone := createPhone(t, testDB)
	catalog := newTestCatalog(testDB, nil)

	// declared before Color, stored after the product
	warranty := &model.FeatureGroup{ProductID: phone.product.ID, Label: "Warranty", SortOrder: 0, Values: []model.FeatureValue{
		{Label: "2 years", PriceDelta: dec("25"), Available: true},
	}}
	require.NoError(t, testDB.Create(warranty).Error)

	groups, err := catalog.FetchFeatureGroups(ctx, phone.product.ID)
	require.NoError(t, err)
	require.Len(t, groups, 4)
	assert.Equal(t, "Warranty", groups[0].Label)
	assert.Equal(t, "Color", groups[1].Label)
	require.Len(t, groups[0].Values, 1)
	assert.Equal(t, "2 years", groups[0].Values[0].Label)

	none, err := catalog.FetchFeatureGroups(ctx, 9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, none)
}

func TestCatalogService_GetProductDetail(t *testing.T) {
	testDB := setupServiceDB(t)
	phone := createPhone(t, testDB)
	catalog := newTestCatalog(testDB, nil)

	product, err := catalog.GetProductDetail(context.Background(), phone.product.ID)
	require.NoError(t, err)
	assert.Len(t, product.FeatureGroups, 3)
}

func TestCatalogService_ListProducts(t *testing.T) {
	testDB := setupServiceDB(t)
	createPhone(t, testDB)
	require.NoError(t, testDB.Create(&model.Product{Name: "Shoe", Category: "shoes", BasePrice: dec("80")}).Error)
	catalog := newTestCatalog(testDB, nil)

	products, total, err := catalog.ListProducts(context.Background(), ProductListOptions{Category: "shoes"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Equal(t, "Shoe", products[0].Name)
}

func TestCatalogService_ReadThroughCache(t *testing.T) {
	ctx := context.Background()
	testDB := setupServiceDB(t)
	phone := createPhone(t, testDB)
	client, mr := setupTestRedis(t)
	cache := repository.NewRedisCatalogCache(client, time.Minute)
	catalog := newTestCatalog(testDB, cache)

	_, err := catalog.FetchProduct(ctx, phone.product.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists("catalog:product:1"))

	// served from cache while the row changes underneath
	require.NoError(t, testDB.Model(&model.Product{}).Where("id = ?", phone.product.ID).Update("name", "Renamed").Error)
	product, err := catalog.FetchProduct(ctx, phone.product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Phone", product.Name)

	groups, err := catalog.FetchFeatureGroups(ctx, phone.product.ID)
	require.NoError(t, err)
	assert.Len(t, groups, 3)
}

func TestCatalogService_SetValueAvailability(t *testing.T) {
	ctx := context.Background()
	testDB := setupServiceDB(t)
	phone := createPhone(t, testDB)
	client, mr := setupTestRedis(t)
	catalog := newTestCatalog(testDB, repository.NewRedisCatalogCache(client, time.Minute))

	_, err := catalog.FetchFeatureGroups(ctx, phone.product.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists("catalog:product:1"))

	value, err := catalog.SetValueAvailability(ctx, phone.gb512, true)
	require.NoError(t, err)
	assert.True(t, value.Available)
	assert.False(t, mr.Exists("catalog:product:1"))

	groups, err := catalog.FetchFeatureGroups(ctx, phone.product.ID)
	require.NoError(t, err)
	assert.True(t, groups[1].FindValue(phone.gb512).Available)

	_, err = catalog.SetValueAvailability(ctx, 9999, false)
	assert.ErrorIs(t, err, ErrFeatureValueNotFound)
}
