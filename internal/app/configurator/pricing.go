package configurator

import (
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

// MinorUnits is the number of decimal places money is rounded to.
const MinorUnits = 2

// EffectivePrice returns the sale price when it is set, non-negative and lower than
// the base price. Otherwise the base price.
func EffectivePrice(product *model.Product) decimal.Decimal {
	if product == nil {
		return decimal.Zero
	}
	if product.SalePrice.Valid {
		sale := product.SalePrice.Decimal
		if !sale.IsNegative() && sale.LessThan(product.BasePrice) {
			return sale
		}
	}
	return product.BasePrice
}

// ComputeUnitPrice adds the delta of every selected value that exists and is available
// to the effective price. Unknown or unavailable ids are skipped. The result is floored at zero.
func ComputeUnitPrice(product *model.Product, groups []model.FeatureGroup, selections Selections) decimal.Decimal {
	if product == nil {
		return decimal.Zero
	}

	total := EffectivePrice(product)
	for groupID, valueIDs := range selections {
		group := findGroup(groups, groupID)
		if group == nil {
			continue
		}
		counted := make(map[uint]struct{}, len(valueIDs))
		for _, valueID := range valueIDs {
			if _, dup := counted[valueID]; dup {
				continue
			}
			value := group.FindValue(valueID)
			if value == nil || !value.Available {
				continue
			}
			counted[valueID] = struct{}{}
			total = total.Add(value.PriceDelta)
		}
	}

	if total.IsNegative() {
		return decimal.Zero
	}
	return total.Round(MinorUnits)
}

// ComputeLineTotal multiplies the unit price by the quantity (clamped to at least 1).
func ComputeLineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(ClampQuantity(quantity)))).Round(MinorUnits)
}

func findGroup(groups []model.FeatureGroup, groupID uint) *model.FeatureGroup {
	for i := range groups {
		if groups[i].ID == groupID {
			return &groups[i]
		}
	}
	return nil
}
