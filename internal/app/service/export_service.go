package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

var ErrExportUnavailable = errors.New("cart export storage is not configured")

const (
	cartSheet        = "Cart"
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultExportDir = "cart-exports"
)

var cartExportHeader = []interface{}{"Product", "Options", "Unit Price", "Quantity", "Line Total"}

// ObjectUploader stores a blob and returns a URL for it.
type ObjectUploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type ExportService interface {
	BuildCartWorkbook(ctx context.Context, userID uint) ([]byte, error)
	PublishCartExport(ctx context.Context, userID uint) (string, error)
}

type exportService struct {
	carts    CartService
	uploader ObjectUploader
	prefix   string
}

// NewExportService renders carts as workbooks. Publishing requires a non-nil uploader.
func NewExportService(carts CartService, uploader ObjectUploader, prefix string) ExportService {
	if prefix == "" {
		prefix = defaultExportDir
	}
	return &exportService{carts: carts, uploader: uploader, prefix: prefix}
}

func (s *exportService) BuildCartWorkbook(ctx context.Context, userID uint) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cart, err := s.carts.GetCart(userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), cartSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(cartSheet, "A1", &cartExportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i := range cart.Items {
		item := &cart.Items[i]
		row := []interface{}{
			item.ProductName,
			FormatSummary(item.Summary),
			item.UnitPrice.StringFixed(2),
			item.Quantity,
			item.LineTotal().StringFixed(2),
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(cartSheet, cellRef, &row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	totalRef, err := excelize.CoordinatesToCellName(4, len(cart.Items)+2)
	if err != nil {
		return nil, err
	}
	totalRow := []interface{}{"Total", cart.Total.StringFixed(2)}
	if err := f.SetSheetRow(cartSheet, totalRef, &totalRow); err != nil {
		return nil, fmt.Errorf("failed to write total: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}

	logger.Info("Cart workbook built", map[string]interface{}{
		"user_id": userID,
		"lines":   len(cart.Items),
		"bytes":   buf.Len(),
	})
	return buf.Bytes(), nil
}

func (s *exportService) PublishCartExport(ctx context.Context, userID uint) (string, error) {
	if s.uploader == nil {
		return "", ErrExportUnavailable
	}

	data, err := s.BuildCartWorkbook(ctx, userID)
	if err != nil {
		return "", err
	}

	key := path.Join(s.prefix, fmt.Sprintf("%d", userID), uuid.New().String()+".xlsx")
	url, err := s.uploader.Upload(ctx, key, data, xlsxContentType)
	if err != nil {
		logger.Error("Failed to upload cart export", err, map[string]interface{}{
			"user_id": userID,
			"key":     key,
		})
		return "", fmt.Errorf("failed to upload cart export: %w", err)
	}

	logger.Info("Cart export published", map[string]interface{}{
		"user_id": userID,
		"url":     url,
	})
	return url, nil
}

// FormatSummary renders a selection summary as "Color: Blue, Black / Storage: 256GB".
func FormatSummary(summary model.SelectionSummary) string {
	parts := make([]string, 0, len(summary))
	for _, entry := range summary {
		parts = append(parts, entry.GroupLabel+": "+strings.Join(entry.ValueLabels, ", "))
	}
	return strings.Join(parts, " / ")
}
