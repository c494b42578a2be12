package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quotation statuses. DRAFT is the only mutable state.
const (
	QuotationDraft    = "DRAFT"
	QuotationSent     = "SENT"
	QuotationAccepted = "ACCEPTED"
	QuotationRejected = "REJECTED"
	QuotationExpired  = "EXPIRED"
)

// Quotation is the user's cart: a draft order scoped to a network. At most
// one DRAFT exists per (user, network); the partial unique index added by
// the migrator is the race-safe backstop for find-or-create.
type Quotation struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	UserID    uint   `json:"user_id" gorm:"not null;index"`
	ClientID  uint   `json:"client_id" gorm:"not null;index"`
	NetworkID uint   `json:"network_id" gorm:"not null;index"`
	Status    string `json:"status" gorm:"size:16;not null;default:DRAFT"`
	Currency  string `json:"currency" gorm:"size:3;not null;default:EUR"`

	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2);not null;default:0"`

	Items []QuotationItem `json:"items" gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuotationItem snapshots product identity and the resolved unit price at
// add-time. A null UnitPrice means "price on request", which is distinct
// from zero; such items contribute nothing to the quotation total.
type QuotationItem struct {
	ID          uint                `json:"id" gorm:"primaryKey"`
	QuotationID uint                `json:"quotation_id" gorm:"not null;index"`
	ProductID   uint                `json:"product_id" gorm:"not null;index"`
	ProductCode string              `json:"product_code" gorm:"size:64;not null"`
	ProductName string              `json:"product_name" gorm:"not null"`
	Quantity    int                 `json:"quantity" gorm:"not null;default:1"`
	UnitPrice   decimal.NullDecimal `json:"unit_price" gorm:"type:numeric(12,2)"`
	Currency    string              `json:"currency" gorm:"size:3;not null;default:EUR"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
