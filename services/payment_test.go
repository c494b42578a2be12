package services

import (
	"strings"
	"testing"

	"catalog-backend/models"

	"gorm.io/gorm"
)

func seedPendingOrder(t *testing.T, db *gorm.DB, user models.User, networkID uint) *models.Order {
	t.Helper()
	quotation := acceptedQuotation(t, db, user, networkID)
	result, err := NewOrderService(db).CreateFromQuotation(user.ID, quotation.ID)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return result.Order
}

func TestCreateCheckoutSession(t *testing.T) {
	t.Setenv("CHECKOUT_BASE_URL", "https://pay.example.com")
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "A")
	network := chain[0]
	user := seedUser(t, db, "u@example.com", network.ID)
	order := seedPendingOrder(t, db, user, network.ID)

	svc := NewPaymentService(db, HostedCheckoutProvider{})
	session, err := svc.CreateCheckoutSession(user.ID, order.ID, "https://shop/ok", "https://shop/ko")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !strings.HasPrefix(session.SessionID, "cs_") {
		t.Fatalf("unexpected session id %s", session.SessionID)
	}
	if !strings.HasPrefix(session.CheckoutURL, "https://pay.example.com/") {
		t.Fatalf("unexpected checkout url %s", session.CheckoutURL)
	}

	payment, err := svc.GetPaymentStatus(user.ID, order.ID)
	if err != nil {
		t.Fatalf("payment status: %v", err)
	}
	if payment.Status != models.PaymentPending {
		t.Fatalf("expected PENDING got %s", payment.Status)
	}
	if payment.ProviderSessionID == nil || *payment.ProviderSessionID != session.SessionID {
		t.Fatalf("session id not stored: %+v", payment.ProviderSessionID)
	}
	if !payment.Amount.Equal(order.TotalAmount) {
		t.Fatalf("expected amount %s got %s", order.TotalAmount, payment.Amount)
	}

	// A second checkout replaces the session on the same payment row.
	again, err := svc.CreateCheckoutSession(user.ID, order.ID, "https://shop/ok", "https://shop/ko")
	if err != nil {
		t.Fatalf("second checkout: %v", err)
	}
	var count int64
	if err := db.Model(&models.Payment{}).Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected single payment row got %d", count)
	}
	payment, _ = svc.GetPaymentStatus(user.ID, order.ID)
	if *payment.ProviderSessionID != again.SessionID {
		t.Fatalf("session id not replaced")
	}
}

func TestCreateCheckoutSessionRejectsSettledOrder(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "A")
	network := chain[0]
	user := seedUser(t, db, "u@example.com", network.ID)
	order := seedPendingOrder(t, db, user, network.ID)

	if _, err := NewOrderService(db).UpdateStatus(order.ID, models.OrderPaid); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	svc := NewPaymentService(db, HostedCheckoutProvider{})
	if _, err := svc.CreateCheckoutSession(user.ID, order.ID, "", ""); !IsKind(err, KindBadRequest) {
		t.Fatalf("expected BadRequest for PAID order got %v", err)
	}
}

func TestWebhookCompletedMarksOrderPaid(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "A")
	network := chain[0]
	user := seedUser(t, db, "u@example.com", network.ID)
	order := seedPendingOrder(t, db, user, network.ID)

	svc := NewPaymentService(db, HostedCheckoutProvider{})
	ev := WebhookEvent{
		EventID:         "evt_1",
		EventType:       "checkout.session.completed",
		OrderID:         order.ID,
		SessionID:       "cs_test",
		PaymentIntentID: "pi_test",
		Payload:         []byte(`{"id":"evt_1"}`),
	}
	if err := svc.HandleWebhook(ev); err != nil {
		t.Fatalf("webhook: %v", err)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.Status != models.OrderPaid {
		t.Fatalf("expected PAID got %s", reloaded.Status)
	}

	payment, err := svc.GetPaymentStatus(user.ID, order.ID)
	if err != nil {
		t.Fatalf("payment status: %v", err)
	}
	if payment.Status != models.PaymentCompleted {
		t.Fatalf("expected COMPLETED got %s", payment.Status)
	}
	if payment.ProviderPaymentIntentID == nil || *payment.ProviderPaymentIntentID != "pi_test" {
		t.Fatalf("payment intent not stored")
	}

	var event models.PaymentEvent
	if err := db.Where("provider_event_id = ?", "evt_1").First(&event).Error; err != nil {
		t.Fatalf("event row: %v", err)
	}
	if event.ProcessedAt == nil {
		t.Fatalf("event not marked processed")
	}
}

func TestWebhookFailedLeavesOrderPending(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "A")
	network := chain[0]
	user := seedUser(t, db, "u@example.com", network.ID)
	order := seedPendingOrder(t, db, user, network.ID)

	svc := NewPaymentService(db, HostedCheckoutProvider{})
	ev := WebhookEvent{
		EventID:   "evt_fail",
		EventType: "payment_intent.payment_failed",
		OrderID:   order.ID,
		Payload:   []byte(`{}`),
	}
	if err := svc.HandleWebhook(ev); err != nil {
		t.Fatalf("webhook: %v", err)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.Status != models.OrderPendingPayment {
		t.Fatalf("failed payment moved order to %s", reloaded.Status)
	}
	payment, err := svc.GetPaymentStatus(user.ID, order.ID)
	if err != nil {
		t.Fatalf("payment status: %v", err)
	}
	if payment.Status != models.PaymentFailed {
		t.Fatalf("expected FAILED got %s", payment.Status)
	}
}

func TestWebhookDedupAndUnknownOrder(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "A")
	network := chain[0]
	user := seedUser(t, db, "u@example.com", network.ID)
	order := seedPendingOrder(t, db, user, network.ID)

	svc := NewPaymentService(db, HostedCheckoutProvider{})
	ev := WebhookEvent{
		EventID:   "evt_once",
		EventType: "checkout.session.completed",
		OrderID:   order.ID,
		Payload:   []byte(`{}`),
	}
	if err := svc.HandleWebhook(ev); err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	// Flip the order back; a redelivery of the same event must be a no-op.
	if _, err := NewOrderService(db).UpdateStatus(order.ID, models.OrderPendingPayment); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := svc.HandleWebhook(ev); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.Status != models.OrderPendingPayment {
		t.Fatalf("redelivered event was reprocessed")
	}

	// Unknown order ids are swallowed, the provider still gets its 200.
	unknown := WebhookEvent{
		EventID:   "evt_unknown",
		EventType: "checkout.session.completed",
		OrderID:   99999,
		Payload:   []byte(`{}`),
	}
	if err := svc.HandleWebhook(unknown); err != nil {
		t.Fatalf("unknown order: %v", err)
	}
}

func TestMapEvent(t *testing.T) {
	provider := HostedCheckoutProvider{}
	cases := []struct {
		eventType string
		status    string
	}{
		{"checkout.session.completed", models.PaymentCompleted},
		{"payment_intent.payment_failed", models.PaymentFailed},
		{"charge.refunded", models.PaymentRefunded},
		{"payment_intent.processing", models.PaymentProcessing},
	}
	for _, c := range cases {
		status, ok := provider.MapEvent(c.eventType)
		if !ok || status != c.status {
			t.Fatalf("%s: got %s ok=%v want %s", c.eventType, status, ok, c.status)
		}
	}

	if _, ok := provider.MapEvent("invoice.created"); ok {
		t.Fatalf("unknown event type must be ignored")
	}
}

func TestWebhookDropsUnknownEventType(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "A")
	network := chain[0]
	user := seedUser(t, db, "u@example.com", network.ID)
	order := seedPendingOrder(t, db, user, network.ID)

	svc := NewPaymentService(db, HostedCheckoutProvider{})
	ev := WebhookEvent{
		EventID:   "evt_stray",
		EventType: "invoice.created",
		OrderID:   order.ID,
		Payload:   []byte(`{}`),
	}
	if err := svc.HandleWebhook(ev); err != nil {
		t.Fatalf("webhook: %v", err)
	}

	var payments, events int64
	if err := db.Model(&models.Payment{}).Count(&payments).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if err := db.Model(&models.PaymentEvent{}).Count(&events).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if payments != 0 || events != 0 {
		t.Fatalf("stray event wrote rows: payments=%d events=%d", payments, events)
	}
}

func TestGetPaymentStatusGuards(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "A")
	network := chain[0]
	user := seedUser(t, db, "u@example.com", network.ID)
	stranger := seedUser(t, db, "s@example.com", network.ID)
	order := seedPendingOrder(t, db, user, network.ID)

	svc := NewPaymentService(db, HostedCheckoutProvider{})
	if _, err := svc.GetPaymentStatus(user.ID, order.ID); !IsKind(err, KindNotFound) {
		t.Fatalf("expected NotFound before any payment got %v", err)
	}
	if _, err := svc.GetPaymentStatus(stranger.ID, order.ID); !IsKind(err, KindBadRequest) {
		t.Fatalf("expected BadRequest for foreign order got %v", err)
	}
}
