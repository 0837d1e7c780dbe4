package configurator

import (
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

const (
	colorGroup   uint = 10
	storageGroup uint = 20
	emptyGroup   uint = 30

	red   uint = 101
	blue  uint = 102
	black uint = 103
	gb128 uint = 201
	gb256 uint = 202
	gb512 uint = 203
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testProduct(id uint, base string) *model.Product {
	return &model.Product{ID: id, Name: "Phone", BasePrice: dec(base), MainImage: "phone.png"}
}

func colorValues() []model.FeatureValue {
	return []model.FeatureValue{
		{ID: red, GroupID: colorGroup, Label: "Red", PriceDelta: dec("0"), Available: true},
		{ID: blue, GroupID: colorGroup, Label: "Blue", PriceDelta: dec("10"), Available: true},
		{ID: black, GroupID: colorGroup, Label: "#000000", PriceDelta: dec("5.25"), Available: true},
	}
}

// testGroups: Color (multi), Storage (single, 512GB unavailable), an empty group.
func testGroups() []model.FeatureGroup {
	return []model.FeatureGroup{
		{ID: colorGroup, Label: "Color", SelectionMode: model.SelectionMulti, Values: colorValues()},
		{ID: storageGroup, Label: "Storage", SelectionMode: model.SelectionSingle, Values: []model.FeatureValue{
			{ID: gb128, GroupID: storageGroup, Label: "128GB", PriceDelta: dec("0"), Available: true},
			{ID: gb256, GroupID: storageGroup, Label: "256GB", PriceDelta: dec("50"), Available: true},
			{ID: gb512, GroupID: storageGroup, Label: "512GB", PriceDelta: dec("120"), Available: false},
		}},
		{ID: emptyGroup, Label: "Engraving", SelectionMode: model.SelectionMulti},
	}
}

func withAvailability(groups []model.FeatureGroup, valueID uint, available bool) []model.FeatureGroup {
	out := make([]model.FeatureGroup, len(groups))
	for i, g := range groups {
		out[i] = g
		out[i].Values = append([]model.FeatureValue(nil), g.Values...)
		for j := range out[i].Values {
			if out[i].Values[j].ID == valueID {
				out[i].Values[j].Available = available
			}
		}
	}
	return out
}
