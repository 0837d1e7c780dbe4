package configurator

import (
	"strconv"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

const DefaultPlaceholderImage = "/static/images/product-placeholder.png"

// LineItemDescriptor is the priced, cart-ready result of a configuration.
type LineItemDescriptor struct {
	ProductID        uint                          `json:"product_id"`
	ProductName      string                        `json:"product_name"`
	UnitPrice        decimal.Decimal               `json:"unit_price"`
	Quantity         int                           `json:"quantity"`
	LineTotal        decimal.Decimal               `json:"line_total"`
	SelectionSummary []model.SelectionSummaryEntry `json:"selection_summary"`
	Image            string                        `json:"image"`
}

// SelectionKey is a deterministic signature of the selected values, "g=v1,v2;g2=v3",
// used by carts to merge identical configurations.
func (d *LineItemDescriptor) SelectionKey() string {
	parts := make([]string, 0, len(d.SelectionSummary))
	for _, entry := range d.SelectionSummary {
		ids := make([]string, len(entry.ValueIDs))
		for i, id := range entry.ValueIDs {
			ids[i] = strconv.FormatUint(uint64(id), 10)
		}
		parts = append(parts, strconv.FormatUint(uint64(entry.GroupID), 10)+"="+strings.Join(ids, ","))
	}
	return strings.Join(parts, ";")
}

type Builder struct {
	PlaceholderImage string
}

func NewBuilder(placeholderImage string) *Builder {
	if placeholderImage == "" {
		placeholderImage = DefaultPlaceholderImage
	}
	return &Builder{PlaceholderImage: placeholderImage}
}

// Build prices the snapshot and renders its summary. Summary entries follow group
// declaration order and value labels follow value declaration order. Incomplete
// selections are fine; only a missing product fails.
func (b *Builder) Build(product *model.Product, groups []model.FeatureGroup, selections Selections, quantity int) (*LineItemDescriptor, error) {
	if product == nil {
		return nil, ErrEmptyProduct
	}

	quantity = ClampQuantity(quantity)
	unitPrice := ComputeUnitPrice(product, groups, selections)

	image := product.MainImage
	if image == "" {
		image = b.placeholder()
	}

	return &LineItemDescriptor{
		ProductID:        product.ID,
		ProductName:      product.Name,
		UnitPrice:        unitPrice,
		Quantity:         quantity,
		LineTotal:        ComputeLineTotal(unitPrice, quantity),
		SelectionSummary: Summarize(groups, selections),
		Image:            image,
	}, nil
}

func (b *Builder) placeholder() string {
	if b == nil || b.PlaceholderImage == "" {
		return DefaultPlaceholderImage
	}
	return b.PlaceholderImage
}

// Summarize lists, for each group with at least one existing and available selected
// value, the group label and the selected value labels.
func Summarize(groups []model.FeatureGroup, selections Selections) []model.SelectionSummaryEntry {
	summary := make([]model.SelectionSummaryEntry, 0, len(selections))
	for _, group := range groups {
		selected := selections[group.ID]
		if len(selected) == 0 {
			continue
		}

		entry := model.SelectionSummaryEntry{GroupID: group.ID, GroupLabel: group.Label}
		for _, value := range group.Values {
			if value.Available && containsID(selected, value.ID) {
				entry.ValueIDs = append(entry.ValueIDs, value.ID)
				entry.ValueLabels = append(entry.ValueLabels, value.Label)
			}
		}
		if len(entry.ValueIDs) > 0 {
			summary = append(summary, entry)
		}
	}
	return summary
}
