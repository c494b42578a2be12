package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. Cancellation is only allowed from PENDING_PAYMENT; webhook
// processing may move PENDING_PAYMENT to PAID.
const (
	OrderPendingPayment = "PENDING_PAYMENT"
	OrderPaid           = "PAID"
	OrderFulfilled      = "FULFILLED"
	OrderCancelled      = "CANCELLED"
)

// Order is the immutable result of an ACCEPTED quotation. Lines are copied
// from the quotation items at creation time and never re-derived from live
// product or price data.
type Order struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Code        string `json:"code" gorm:"size:32;uniqueIndex;not null"`
	UserID      uint   `json:"user_id" gorm:"not null;index"`
	ClientID    uint   `json:"client_id" gorm:"not null;index"`
	QuotationID uint   `json:"quotation_id" gorm:"not null;uniqueIndex"`
	Status      string `json:"status" gorm:"size:24;not null;default:PENDING_PAYMENT"`

	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2);not null;default:0"`
	Currency    string          `json:"currency" gorm:"size:3;not null;default:EUR"`

	Lines   []OrderLine `json:"lines" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment *Payment    `json:"payment,omitempty" gorm:"foreignKey:OrderID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderLine struct {
	ID              uint                `json:"id" gorm:"primaryKey"`
	OrderID         uint                `json:"order_id" gorm:"not null;index"`
	ProductID       uint                `json:"product_id" gorm:"not null"`
	ProductCode     string              `json:"product_code" gorm:"size:64;not null"`
	ProductName     string              `json:"product_name" gorm:"not null"`
	Quantity        int                 `json:"quantity" gorm:"not null"`
	UnitPrice       decimal.NullDecimal `json:"unit_price" gorm:"type:numeric(12,2)"`
	Currency        string              `json:"currency" gorm:"size:3;not null"`
	SourceNetworkID uint                `json:"source_network_id" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
}

// OrderSequence backs human-readable order codes (ORD-YYYY-NNNNNN) with one
// atomically incremented counter row per year.
type OrderSequence struct {
	Year    int  `json:"year" gorm:"primaryKey;autoIncrement:false"`
	Counter uint `json:"counter" gorm:"not null;default:0"`
}
