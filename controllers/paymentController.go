package controllers

import (
	"log"

	"catalog-backend/database"
	"catalog-backend/middlewares"
	"catalog-backend/services"

	"github.com/gofiber/fiber/v2"
)

// provider is the payment gateway adapter; swapped in tests.
var provider services.PaymentProvider = services.HostedCheckoutProvider{}

type CreateCheckoutInput struct {
	OrderID    uint   `json:"order_id" validate:"required"`
	SuccessURL string `json:"success_url" validate:"omitempty,url"`
	CancelURL  string `json:"cancel_url" validate:"omitempty,url"`
}

func CreateCheckoutSession(c *fiber.Ctx) error {
	var input CreateCheckoutInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	session, err := services.NewPaymentService(database.FromCtx(c), provider).
		CreateCheckoutSession(middlewares.UserID(c), input.OrderID, input.SuccessURL, input.CancelURL)
	if err != nil {
		return err
	}
	return c.JSON(session)
}

func GetPaymentStatus(c *fiber.Ctx) error {
	orderID, err := c.ParamsInt("orderId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	payment, err := services.NewPaymentService(database.FromCtx(c), provider).
		GetPaymentStatus(middlewares.UserID(c), uint(orderID))
	if err != nil {
		return err
	}
	return c.JSON(payment)
}

type webhookPayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			OrderID       uint   `json:"order_id"`
			SessionID     string `json:"session_id"`
			PaymentIntent string `json:"payment_intent"`
		} `json:"object"`
	} `json:"data"`
}

// PaymentWebhook ingests provider deliveries. The provider expects 200 OK
// regardless of processing outcome; failures are logged, never surfaced.
func PaymentWebhook(c *fiber.Ctx) error {
	var payload webhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("webhook: unparseable payload: %v", err)
		return c.JSON(fiber.Map{"received": true})
	}

	body := make([]byte, len(c.Body()))
	copy(body, c.Body())

	err := services.NewPaymentService(database.DB, provider).HandleWebhook(services.WebhookEvent{
		EventID:         payload.ID,
		EventType:       payload.Type,
		OrderID:         payload.Data.Object.OrderID,
		SessionID:       payload.Data.Object.SessionID,
		PaymentIntentID: payload.Data.Object.PaymentIntent,
		Payload:         body,
	})
	if err != nil {
		log.Printf("webhook: processing failed for event %s: %v", payload.ID, err)
	}
	return c.JSON(fiber.Map{"received": true})
}
