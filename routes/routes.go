package routes

import (
	"github.com/gofiber/fiber/v2"

	"catalog-backend/controllers"
	"catalog-backend/middlewares"
	"catalog-backend/models"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Public webhook endpoint: the provider expects 200 OK regardless of
	// processing outcome, so it stays outside auth and the request TX.
	api.Post("/payments/webhook", controllers.PaymentWebhook)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then per-request transaction (commits/rolls back around the handler)
	protected.Use(middlewares.RequestTx())

	// Catalog browsing
	protected.Get("/catalog/networks/:networkId", controllers.GetNetworkCatalog)

	// Pricing
	protected.Get("/pricing/products/:productId/networks/:networkId/effective", controllers.GetEffectivePrice)
	protected.Get("/pricing/products/:productId/networks/:networkId", controllers.GetExplicitPrice)

	// Quotations (the user's cart)
	protected.Get("/quotations/current", controllers.GetCurrentQuotation)
	protected.Post("/quotations/current/items", controllers.AddQuotationItem)
	protected.Put("/quotations/items/:itemId", controllers.UpdateQuotationItem)
	protected.Delete("/quotations/items/:itemId", controllers.RemoveQuotationItem)
	protected.Post("/quotations/current/submit", controllers.SubmitQuotation)
	protected.Get("/quotations", controllers.ListQuotations)
	protected.Get("/quotations/:id", controllers.GetQuotation)

	// Orders
	protected.Post("/orders", controllers.CreateOrder)
	protected.Get("/orders", controllers.ListOrders)
	protected.Get("/orders/:id", controllers.GetOrder)
	protected.Post("/orders/:orderId/cancel", controllers.CancelOrder)

	// Payments
	protected.Post("/payments/checkout", controllers.CreateCheckoutSession)
	protected.Get("/payments/orders/:orderId", controllers.GetPaymentStatus)

	// Back-office (catalog + pricing management)
	bo := protected.Group("", middlewares.RequireRole(models.RoleAdmin, models.RoleBO))

	bo.Put("/pricing/products/:productId/networks/:networkId", controllers.SetPrice)
	bo.Delete("/pricing/products/:productId/networks/:networkId", controllers.DeletePrice)

	bo.Post("/products", controllers.CreateProduct)
	bo.Get("/products", controllers.GetProducts)
	bo.Get("/products/:id", controllers.GetProduct)
	bo.Put("/products/:id", controllers.UpdateProduct)
	bo.Post("/products/:id/networks/:networkId", controllers.AssignProductNetwork)
	bo.Delete("/products/:id/networks/:networkId", controllers.RemoveProductNetwork)

	// Admin (networks + clients)
	admin := protected.Group("", middlewares.RequireRole(models.RoleAdmin))

	admin.Post("/networks", controllers.CreateNetwork)
	admin.Get("/networks", controllers.GetNetworks)
	admin.Get("/networks/:id", controllers.GetNetwork)
	admin.Put("/networks/:id", controllers.UpdateNetwork)
	admin.Delete("/networks/:id", controllers.DeleteNetwork)

	admin.Post("/clients", controllers.CreateClient)
	admin.Get("/clients", controllers.GetClients)
	admin.Get("/clients/:id", controllers.GetClient)
	admin.Put("/clients/:id", controllers.UpdateClient)
}
