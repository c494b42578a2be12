package services

import (
	"errors"
	"log"
	"time"

	"catalog-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CheckoutSession is what the provider hands back when a hosted checkout is
// opened for an order.
type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// PaymentProvider is the external payment gateway seam. The real gateway
// client lives behind this interface; the core only consumes session
// creation and the event-type → status mapping.
type PaymentProvider interface {
	Name() string
	CreateCheckoutSession(order *models.Order, successURL, cancelURL string) (*CheckoutSession, error)
	// MapEvent translates a provider event type into a payment status.
	// ok is false for event types this integration ignores.
	MapEvent(eventType string) (status string, ok bool)
}

// WebhookEvent is the provider-agnostic payload the webhook controller hands
// to the service after parsing the delivery.
type WebhookEvent struct {
	EventID         string
	EventType       string
	OrderID         uint
	SessionID       string
	PaymentIntentID string
	Payload         []byte
}

// PaymentService upserts the 1:1 payment record per order and applies
// webhook-driven order transitions.
type PaymentService struct {
	db       *gorm.DB
	provider PaymentProvider
}

func NewPaymentService(db *gorm.DB, provider PaymentProvider) *PaymentService {
	return &PaymentService{db: db, provider: provider}
}

// CreateCheckoutSession opens a provider checkout for an order awaiting
// payment and upserts the order's payment record as PENDING.
func (s *PaymentService) CreateCheckoutSession(userID, orderID uint, successURL, cancelURL string) (*CheckoutSession, error) {
	order, err := NewOrderService(s.db).GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderPendingPayment {
		return nil, BadRequestf("order must be PENDING_PAYMENT to create checkout session, current status: %s", order.Status)
	}

	session, err := s.provider.CreateCheckoutSession(order, successURL, cancelURL)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		err := tx.Where("order_id = ?", order.ID).First(&payment).Error
		switch {
		case err == nil:
			return tx.Model(&payment).Update("provider_session_id", session.SessionID).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			payment = models.Payment{
				OrderID:           order.ID,
				Provider:          s.provider.Name(),
				ProviderSessionID: &session.SessionID,
				Amount:            order.TotalAmount,
				Currency:          order.Currency,
				Status:            models.PaymentPending,
			}
			return tx.Create(&payment).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// HandleWebhook applies one provider delivery: record the event (deduped on
// the provider event id), upsert the payment record, and move the order to
// PAID when the payment completed. Any other status leaves the order
// untouched so the user can retry checkout. Errors are returned for logging
// only — the webhook endpoint always answers 200 to the provider.
func (s *PaymentService) HandleWebhook(ev WebhookEvent) error {
	status, ok := s.provider.MapEvent(ev.EventType)
	if !ok {
		return nil
	}

	// Dedup: the unique (provider, provider_event_id) pair makes redelivered
	// events no-ops.
	if ev.EventID != "" {
		event := models.PaymentEvent{
			Provider:        s.provider.Name(),
			ProviderEventID: ev.EventID,
			EventType:       ev.EventType,
			Payload:         datatypes.JSON(ev.Payload),
		}
		if err := s.db.Create(&event).Error; err != nil {
			if isUniqueViolation(err) {
				return nil
			}
			return err
		}
		defer func() {
			now := time.Now()
			if err := s.db.Model(&event).Update("processed_at", &now).Error; err != nil {
				log.Printf("mark payment event processed: %v", err)
			}
		}()
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.First(&order, ev.OrderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown order: nothing to update, swallow per provider contract.
			log.Printf("webhook for unknown order %d ignored", ev.OrderID)
			return nil
		}
		if err != nil {
			return err
		}

		var payment models.Payment
		err = tx.Where("order_id = ?", order.ID).First(&payment).Error
		switch {
		case err == nil:
			updates := map[string]any{"status": status}
			if ev.SessionID != "" {
				updates["provider_session_id"] = ev.SessionID
			}
			if ev.PaymentIntentID != "" {
				updates["provider_payment_intent_id"] = ev.PaymentIntentID
			}
			if err := tx.Model(&payment).Updates(updates).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			payment = models.Payment{
				OrderID:  order.ID,
				Provider: s.provider.Name(),
				Amount:   order.TotalAmount,
				Currency: order.Currency,
				Status:   status,
			}
			if ev.SessionID != "" {
				payment.ProviderSessionID = &ev.SessionID
			}
			if ev.PaymentIntentID != "" {
				payment.ProviderPaymentIntentID = &ev.PaymentIntentID
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		default:
			return err
		}

		// Only a completed payment moves the order; FAILED keeps it at
		// PENDING_PAYMENT so checkout can be retried.
		if status == models.PaymentCompleted && order.Status == models.OrderPendingPayment {
			return tx.Model(&order).Update("status", models.OrderPaid).Error
		}
		return nil
	})
}

// GetPaymentStatus returns the payment record of an order owned by the user.
func (s *PaymentService) GetPaymentStatus(userID, orderID uint) (*models.Payment, error) {
	if _, err := NewOrderService(s.db).GetOrder(userID, orderID); err != nil {
		return nil, err
	}

	var payment models.Payment
	err := s.db.Where("order_id = ?", orderID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundf("payment not found for order %d", orderID)
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
