package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uint                `gorm:"primarykey" json:"id"`
	Name        string              `gorm:"not null" json:"name"`
	Description string              `gorm:"type:text" json:"description"`
	Category    string              `gorm:"type:varchar(50);index" json:"category"`
	BasePrice   decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"base_price"`
	SalePrice   decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"sale_price"`
	MainImage   string              `json:"main_image"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	DeletedAt   gorm.DeletedAt      `gorm:"index" json:"-"`

	// Relationships
	FeatureGroups []FeatureGroup `gorm:"foreignKey:ProductID" json:"feature_groups,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// HasSale reports whether a sale price is set, regardless of whether it undercuts the base price.
func (p *Product) HasSale() bool {
	return p.SalePrice.Valid
}
