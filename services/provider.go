package services

import (
	"fmt"
	"os"

	"catalog-backend/models"
	"catalog-backend/utils"

	"github.com/google/uuid"
)

// HostedCheckoutProvider is the Stripe-shaped provider adapter. Session
// creation points at the hosted checkout page configured via
// CHECKOUT_BASE_URL; the real gateway client plugs in here without touching
// the payment service.
type HostedCheckoutProvider struct{}

func (HostedCheckoutProvider) Name() string { return "stripe" }

func (HostedCheckoutProvider) CreateCheckoutSession(order *models.Order, successURL, cancelURL string) (*CheckoutSession, error) {
	base := os.Getenv("CHECKOUT_BASE_URL")
	if base == "" {
		base = "https://checkout.example.com"
	}
	sessionID := "cs_" + uuid.NewString()
	return &CheckoutSession{
		SessionID: sessionID,
		CheckoutURL: fmt.Sprintf("%s/pay/%s?amount=%s&currency=%s&success_url=%s&cancel_url=%s",
			base, sessionID, utils.FormatAmount(order.TotalAmount), order.Currency, successURL, cancelURL),
	}, nil
}

// MapEvent translates provider event types into payment statuses. Unknown
// event types report ok=false and the delivery is dropped without touching
// payment or order state.
func (HostedCheckoutProvider) MapEvent(eventType string) (string, bool) {
	switch eventType {
	case "checkout.session.completed":
		return models.PaymentCompleted, true
	case "payment_intent.payment_failed":
		return models.PaymentFailed, true
	case "charge.refunded":
		return models.PaymentRefunded, true
	case "payment_intent.processing":
		return models.PaymentProcessing, true
	default:
		return "", false
	}
}
