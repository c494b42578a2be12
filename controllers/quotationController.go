package controllers

import (
	"catalog-backend/database"
	"catalog-backend/middlewares"
	"catalog-backend/services"

	"github.com/gofiber/fiber/v2"
)

// currentNetworkID resolves the request's network context: the token claim
// first, then the configured default network.
func currentNetworkID(c *fiber.Ctx) uint {
	if id := middlewares.NetworkID(c); id != 0 {
		return id
	}
	return database.DefaultNetworkID()
}

// GetCurrentQuotation returns (creating if needed) the user's DRAFT
// quotation for the current network context.
func GetCurrentQuotation(c *fiber.Ctx) error {
	quotation, err := services.NewQuotationService(database.FromCtx(c)).
		GetOrCreateCurrentDraft(middlewares.UserID(c), currentNetworkID(c))
	if err != nil {
		return err
	}
	return c.JSON(quotation)
}

type AddItemInput struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"omitempty,min=1"`
}

func AddQuotationItem(c *fiber.Ctx) error {
	var input AddItemInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	item, err := services.NewQuotationService(database.FromCtx(c)).
		AddItem(middlewares.UserID(c), currentNetworkID(c), input.ProductID, input.Quantity)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

type UpdateItemInput struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func UpdateQuotationItem(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("itemId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid item id")
	}

	var input UpdateItemInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	item, err := services.NewQuotationService(database.FromCtx(c)).
		UpdateItemQuantity(middlewares.UserID(c), uint(itemID), input.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func RemoveQuotationItem(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("itemId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid item id")
	}

	if err := services.NewQuotationService(database.FromCtx(c)).
		RemoveItem(middlewares.UserID(c), uint(itemID)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "item removed"})
}

type SubmitQuotationInput struct {
	Status string `json:"status" validate:"required,oneof=SENT ACCEPTED REJECTED EXPIRED"`
}

// SubmitQuotation transitions the current draft. Non-SENT targets are
// back-office transitions and require an elevated role.
func SubmitQuotation(c *fiber.Ctx) error {
	var input SubmitQuotationInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	if input.Status != "SENT" {
		role := middlewares.Role(c)
		if role != "ADMIN" && role != "BO" {
			return services.Forbiddenf("only back-office users may set status %s", input.Status)
		}
	}

	quotation, err := services.NewQuotationService(database.FromCtx(c)).
		Submit(middlewares.UserID(c), currentNetworkID(c), input.Status)
	if err != nil {
		return err
	}
	return c.JSON(quotation)
}

func ListQuotations(c *fiber.Ctx) error {
	quotations, err := services.NewQuotationService(database.FromCtx(c)).
		ListUserQuotations(middlewares.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(quotations)
}

func GetQuotation(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid quotation id")
	}

	quotation, err := services.NewQuotationService(database.FromCtx(c)).
		GetQuotationByID(uint(id), middlewares.UserID(c), middlewares.Role(c))
	if err != nil {
		return err
	}
	return c.JSON(quotation)
}
