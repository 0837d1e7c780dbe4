package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptyWorkbook  = errors.New("no data found in workbook")
	ErrMissingColumns = errors.New("workbook is missing required columns")
)

const importBatchSize = 500

// Sheet columns, matched case-insensitively against the header row.
const (
	colProductName   = "product_name"
	colBasePrice     = "base_price"
	colSalePrice     = "sale_price"
	colMainImage     = "main_image"
	colCategory      = "category"
	colDescription   = "description"
	colGroupLabel    = "group_label"
	colSelectionMode = "selection_mode"
	colValueLabel    = "value_label"
	colPriceDelta    = "price_delta"
	colAvailable     = "available"
	colImageRef      = "image_ref"
)

var requiredColumns = []string{colProductName, colBasePrice, colGroupLabel, colValueLabel}

type ImportReport struct {
	TotalRows int `json:"total_rows"`
	Products  int `json:"products"`
	Groups    int `json:"groups"`
	Values    int `json:"values"`
	Skipped   int `json:"skipped"`
}

type CatalogImporter struct {
	productRepo repository.ProductRepository
	batchSize   int
}

func NewCatalogImporter(productRepo repository.ProductRepository) *CatalogImporter {
	return &CatalogImporter{productRepo: productRepo, batchSize: importBatchSize}
}

// ReadXLSX reads the first sheet, one row per feature value. Rows sharing a product name
// form one product and rows sharing a group label within it form one group, both in sheet
// order. A row without a value label declares an empty group; a row without a group label
// declares the product only.
func (i *CatalogImporter) ReadXLSX(r io.Reader) ([]model.Product, *ImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil, ErrEmptyWorkbook
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, ErrEmptyWorkbook
	}

	columns := make(map[string]int)
	for idx, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = idx
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	cell := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	report := &ImportReport{TotalRows: len(rows) - 1}
	var products []*model.Product
	productIndex := make(map[string]*model.Product)
	groupIndex := make(map[*model.Product]map[string]int)

	for n, row := range rows[1:] {
		name := cell(row, colProductName)
		if name == "" {
			report.Skipped++
			continue
		}

		product, ok := productIndex[name]
		if !ok {
			product, err = parseProductRow(name, cell(row, colBasePrice), cell(row, colSalePrice))
			if err != nil {
				logger.Debug("Skipping catalog row", map[string]interface{}{
					"row":   n + 2,
					"error": err.Error(),
				})
				report.Skipped++
				continue
			}
			product.MainImage = cell(row, colMainImage)
			product.Category = cell(row, colCategory)
			product.Description = cell(row, colDescription)
			productIndex[name] = product
			groupIndex[product] = make(map[string]int)
			products = append(products, product)
		}

		groupLabel := cell(row, colGroupLabel)
		if groupLabel == "" {
			continue
		}

		mode := model.SelectionMode(strings.ToLower(cell(row, colSelectionMode)))
		if mode == "" {
			mode = model.SelectionMulti
		}
		if !mode.Valid() {
			report.Skipped++
			continue
		}

		groupPos, ok := groupIndex[product][strings.ToLower(groupLabel)]
		if !ok {
			product.FeatureGroups = append(product.FeatureGroups, model.FeatureGroup{
				Label:         groupLabel,
				SelectionMode: mode,
				SortOrder:     len(product.FeatureGroups),
			})
			groupPos = len(product.FeatureGroups) - 1
			groupIndex[product][strings.ToLower(groupLabel)] = groupPos
		}
		group := &product.FeatureGroups[groupPos]

		valueLabel := cell(row, colValueLabel)
		if valueLabel == "" {
			continue
		}
		value, err := parseValueRow(valueLabel, cell(row, colPriceDelta), cell(row, colAvailable))
		if err != nil {
			logger.Debug("Skipping catalog row", map[string]interface{}{
				"row":   n + 2,
				"error": err.Error(),
			})
			report.Skipped++
			continue
		}
		value.ImageRef = cell(row, colImageRef)
		value.SortOrder = len(group.Values)
		group.Values = append(group.Values, *value)
	}

	result := make([]model.Product, 0, len(products))
	for _, product := range products {
		report.Groups += len(product.FeatureGroups)
		for _, group := range product.FeatureGroups {
			report.Values += len(group.Values)
		}
		result = append(result, *product)
	}
	report.Products = len(result)

	logger.Info("Catalog workbook read", map[string]interface{}{
		"sheet":    sheetName,
		"rows":     report.TotalRows,
		"products": report.Products,
		"groups":   report.Groups,
		"values":   report.Values,
		"skipped":  report.Skipped,
	})
	return result, report, nil
}

// Import stores the products with their groups and values in batches.
func (i *CatalogImporter) Import(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	logger.Info("Importing catalog", map[string]interface{}{
		"products":   len(products),
		"batch_size": i.batchSize,
	})
	if err := i.productRepo.BulkCreate(products, i.batchSize); err != nil {
		logger.Error("Failed to import catalog", err)
		return fmt.Errorf("failed to bulk create products: %w", err)
	}
	return nil
}

func parseProductRow(name, basePrice, salePrice string) (*model.Product, error) {
	base, err := decimal.NewFromString(basePrice)
	if err != nil {
		return nil, fmt.Errorf("invalid base_price %q: %w", basePrice, err)
	}
	if base.IsNegative() {
		return nil, fmt.Errorf("negative base_price %q", basePrice)
	}

	product := &model.Product{Name: name, BasePrice: base.Round(2)}
	if salePrice != "" {
		sale, err := decimal.NewFromString(salePrice)
		if err != nil {
			return nil, fmt.Errorf("invalid sale_price %q: %w", salePrice, err)
		}
		product.SalePrice = decimal.NewNullDecimal(sale.Round(2))
	}
	return product, nil
}

func parseValueRow(label, priceDelta, available string) (*model.FeatureValue, error) {
	value := &model.FeatureValue{Label: label, PriceDelta: decimal.Zero, Available: true}
	if priceDelta != "" {
		delta, err := decimal.NewFromString(priceDelta)
		if err != nil {
			return nil, fmt.Errorf("invalid price_delta %q: %w", priceDelta, err)
		}
		value.PriceDelta = delta.Round(2)
	}

	switch strings.ToLower(available) {
	case "", "true", "yes", "y", "1":
	case "false", "no", "n", "0":
		value.Available = false
	default:
		return nil, fmt.Errorf("invalid available flag %q", available)
	}
	return value, nil
}
