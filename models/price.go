package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductPrice is an explicit price at exactly one network node. Effective
// prices for child networks are resolved by walking the hierarchy.
type ProductPrice struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	ProductID uint            `json:"product_id" gorm:"not null;uniqueIndex:idx_product_prices_pair,priority:1"`
	NetworkID uint            `json:"network_id" gorm:"not null;uniqueIndex:idx_product_prices_pair,priority:2"`
	Currency  string          `json:"currency" gorm:"size:3;not null;default:EUR"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	IsActive  bool            `json:"is_active" gorm:"default:true"`
	Note      *string         `json:"note"`

	Product *Product `json:"-" gorm:"foreignKey:ProductID"`
	Network *Network `json:"-" gorm:"foreignKey:NetworkID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
