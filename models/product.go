package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product types. NORMAL products carry per-network prices, GENERIC products
// may carry a flat public fallback price, PARTNER products are sold on
// request through a textual price description or external link.
const (
	ProductTypeGeneric = "GENERIC"
	ProductTypeNormal  = "NORMAL"
	ProductTypePartner = "PARTNER"
)

type Product struct {
	ID               uint                `json:"id" gorm:"primaryKey"`
	Code             string              `json:"code" gorm:"size:64;uniqueIndex;not null"`
	Name             string              `json:"name" gorm:"not null"`
	Type             string              `json:"type" gorm:"size:16;not null;default:NORMAL"`
	PublicPrice      decimal.NullDecimal `json:"public_price" gorm:"type:numeric(12,2)"`
	PriceDescription *string             `json:"price_description"`
	IsActive         bool                `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductNetwork asserts that a product is sellable in a network. A price
// may only be set for a (product, network) pair that has this row.
type ProductNetwork struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	ProductID uint `json:"product_id" gorm:"not null;uniqueIndex:idx_product_networks_pair,priority:1"`
	NetworkID uint `json:"network_id" gorm:"not null;uniqueIndex:idx_product_networks_pair,priority:2"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Network *Network `json:"network,omitempty" gorm:"foreignKey:NetworkID"`

	CreatedAt time.Time `json:"created_at"`
}
