package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Payment statuses as reported by the provider.
const (
	PaymentPending    = "PENDING"
	PaymentProcessing = "PROCESSING"
	PaymentCompleted  = "COMPLETED"
	PaymentFailed     = "FAILED"
	PaymentRefunded   = "REFUNDED"
)

// Payment is weakly linked 1:1 to an order. Its lifecycle belongs to the
// payment provider: rows are upserted by session creation and webhooks.
type Payment struct {
	ID                      uint    `json:"id" gorm:"primaryKey"`
	OrderID                 uint    `json:"order_id" gorm:"not null;uniqueIndex"`
	Provider                string  `json:"provider" gorm:"size:32;not null"`
	ProviderSessionID       *string `json:"provider_session_id" gorm:"size:255"`
	ProviderPaymentIntentID *string `json:"provider_payment_intent_id" gorm:"size:255"`
	Status                  string  `json:"status" gorm:"size:16;not null;default:PENDING"`

	Amount   decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Currency string          `json:"currency" gorm:"size:3;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaymentEvent stores provider webhook deliveries with a unique
// (provider, provider_event_id) pair so redeliveries are processed once.
type PaymentEvent struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Provider        string         `json:"provider" gorm:"size:32;not null;uniqueIndex:idx_payment_events_provider_event,priority:1"`
	ProviderEventID string         `json:"provider_event_id" gorm:"size:255;not null;uniqueIndex:idx_payment_events_provider_event,priority:2"`
	EventType       string         `json:"event_type" gorm:"size:100;not null"`
	Payload         datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	ProcessedAt     *time.Time     `json:"processed_at"`
	ProcessingError string         `json:"processing_error" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
}
