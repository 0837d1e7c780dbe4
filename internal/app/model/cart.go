package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SelectionSummaryEntry is one group's worth of chosen values, labels in declaration order.
type SelectionSummaryEntry struct {
	GroupID     uint     `json:"group_id"`
	GroupLabel  string   `json:"group_label"`
	ValueIDs    []uint   `json:"value_ids"`
	ValueLabels []string `json:"value_labels"`
}

type SelectionSummary []SelectionSummaryEntry

type CartItem struct {
	ID           uint             `gorm:"primarykey" json:"id"`
	UserID       uint             `gorm:"not null;index" json:"user_id"`
	ProductID    uint             `gorm:"not null;index" json:"product_id"`
	ProductName  string           `gorm:"not null" json:"product_name"`
	UnitPrice    decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Quantity     int              `gorm:"not null;default:1" json:"quantity"`
	Image        string           `json:"image"`
	SelectionKey string           `gorm:"type:varchar(512);index" json:"selection_key"`
	Summary      SelectionSummary `gorm:"type:text;serializer:json" json:"selection_summary"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	DeletedAt    gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

func (c *CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity))).Round(2)
}
