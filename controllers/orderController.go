package controllers

import (
	"catalog-backend/database"
	"catalog-backend/middlewares"
	"catalog-backend/services"
	"catalog-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CreateOrderInput struct {
	QuotationID uint `json:"quotation_id" validate:"required"`
}

// CreateOrder converts an ACCEPTED quotation into an immutable order.
func CreateOrder(c *fiber.Ctx) error {
	var input CreateOrderInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	result, err := services.NewOrderService(database.FromCtx(c)).
		CreateFromQuotation(middlewares.UserID(c), input.QuotationID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func ListOrders(c *fiber.Ctx) error {
	skip := utils.ParseIntDefault(c.Query("skip"), 0)
	take := utils.ParseIntDefault(c.Query("take"), 50)

	orders, total, err := services.NewOrderService(database.FromCtx(c)).
		ListUserOrders(middlewares.UserID(c), skip, take)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"orders": orders,
		"total":  total,
	})
}

func GetOrder(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	order, err := services.NewOrderService(database.FromCtx(c)).
		GetOrder(middlewares.UserID(c), uint(id))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

func CancelOrder(c *fiber.Ctx) error {
	id, err := c.ParamsInt("orderId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	order, err := services.NewOrderService(database.FromCtx(c)).
		Cancel(middlewares.UserID(c), uint(id))
	if err != nil {
		return err
	}
	return c.JSON(order)
}
