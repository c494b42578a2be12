package controllers

import (
	"catalog-backend/database"
	"catalog-backend/middlewares"
	"catalog-backend/services"
	"catalog-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// GetEffectivePrice resolves the applicable price for a product in a network
// by walking the network's ancestor chain.
func GetEffectivePrice(c *fiber.Ctx) error {
	productID, err := c.ParamsInt("productId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}
	networkID, err := c.ParamsInt("networkId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid network id")
	}

	price, err := services.NewPricingService(database.FromCtx(c)).
		GetEffectivePrice(uint(productID), uint(networkID))
	if err != nil {
		return err
	}
	return c.JSON(price)
}

func GetExplicitPrice(c *fiber.Ctx) error {
	productID, err := c.ParamsInt("productId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}
	networkID, err := c.ParamsInt("networkId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid network id")
	}

	price, err := services.NewPricingService(database.FromCtx(c)).
		GetExplicitPrice(uint(productID), uint(networkID))
	if err != nil {
		return err
	}
	return c.JSON(price)
}

type SetPriceInput struct {
	Currency string  `json:"currency" validate:"omitempty,len=3"`
	Amount   string  `json:"amount" validate:"required"`
	IsActive *bool   `json:"is_active"`
	Note     *string `json:"note"`
}

func SetPrice(c *fiber.Ctx) error {
	productID, err := c.ParamsInt("productId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}
	networkID, err := c.ParamsInt("networkId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid network id")
	}

	var input SetPriceInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	amount, err := utils.ParseAmount(input.Amount)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid amount")
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	price, err := services.NewPricingService(database.FromCtx(c)).
		SetPrice(uint(productID), uint(networkID), services.SetPriceInput{
			Currency: input.Currency,
			Amount:   amount,
			IsActive: isActive,
			Note:     input.Note,
		})
	if err != nil {
		return err
	}
	return c.JSON(price)
}

func DeletePrice(c *fiber.Ctx) error {
	productID, err := c.ParamsInt("productId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}
	networkID, err := c.ParamsInt("networkId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid network id")
	}

	if err := services.NewPricingService(database.FromCtx(c)).
		DeletePrice(uint(productID), uint(networkID)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "price deleted"})
}

// GetNetworkCatalog lists every product visible in a network with its
// resolved effective price.
func GetNetworkCatalog(c *fiber.Ctx) error {
	networkID, err := c.ParamsInt("networkId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid network id")
	}

	entries, err := services.NewPricingService(database.FromCtx(c)).
		ListNetworkCatalog(uint(networkID))
	if err != nil {
		return err
	}
	return c.JSON(entries)
}
