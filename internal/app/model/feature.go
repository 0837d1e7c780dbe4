package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SelectionMode string

const (
	SelectionSingle SelectionMode = "single"
	SelectionMulti  SelectionMode = "multi"
)

func (m SelectionMode) Valid() bool {
	return m == SelectionSingle || m == SelectionMulti
}

type FeatureGroup struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                  // 그룹 ID
	ProductID     uint           `gorm:"index;not null" json:"product_id"`                      // 소속 상품 ID
	Label         string         `gorm:"not null" json:"label"`                                 // 그룹명 (예: Color, Storage)
	SelectionMode SelectionMode  `gorm:"type:varchar(10);default:multi" json:"selection_mode"`  // single | multi
	SortOrder     int            `gorm:"default:0" json:"sort_order"`                           // 표시 순서
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Values []FeatureValue `gorm:"foreignKey:GroupID" json:"values"`
}

func (FeatureGroup) TableName() string {
	return "feature_groups"
}

// IsSingle reports whether selecting a value replaces the group's previous selection.
// Anything other than an explicit single mode behaves as multi.
func (g *FeatureGroup) IsSingle() bool {
	return g.SelectionMode == SelectionSingle
}

// FindValue returns the value with the given id, or nil.
func (g *FeatureGroup) FindValue(valueID uint) *FeatureValue {
	for i := range g.Values {
		if g.Values[i].ID == valueID {
			return &g.Values[i]
		}
	}
	return nil
}

type FeatureValue struct {
	ID         uint            `gorm:"primarykey" json:"id"`                               // 값 ID
	GroupID    uint            `gorm:"index;not null" json:"group_id"`                     // 소속 그룹 ID
	Label      string          `gorm:"not null" json:"label"`                              // 표시 라벨 (텍스트, 숫자, 색상 코드)
	PriceDelta decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price_delta"`     // 추가 금액 (음수 가능)
	Available  bool            `gorm:"not null" json:"available"`                          // 선택 가능 여부
	ImageRef   string          `json:"image_ref,omitempty"`                                // 값 이미지
	SortOrder  int             `gorm:"default:0" json:"sort_order"`                        // 표시 순서
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (FeatureValue) TableName() string {
	return "feature_values"
}
