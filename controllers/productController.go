package controllers

import (
	"errors"

	"catalog-backend/database"
	"catalog-backend/middlewares"
	"catalog-backend/models"
	"catalog-backend/services"
	"catalog-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateProductInput struct {
	Code             string  `json:"code" validate:"required,max=64"`
	Name             string  `json:"name" validate:"required"`
	Type             string  `json:"type" validate:"required,oneof=GENERIC NORMAL PARTNER"`
	PublicPrice      *string `json:"public_price"`
	PriceDescription *string `json:"price_description"`
	IsActive         *bool   `json:"is_active"`
}

func CreateProduct(c *fiber.Ctx) error {
	var input CreateProductInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	product := models.Product{
		Code:             input.Code,
		Name:             input.Name,
		Type:             input.Type,
		PriceDescription: input.PriceDescription,
		IsActive:         true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.PublicPrice != nil {
		amount, err := utils.ParseAmount(*input.PublicPrice)
		if err != nil || amount.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid public price")
		}
		product.PublicPrice = decimal.NullDecimal{Decimal: amount, Valid: true}
	}

	if err := database.FromCtx(c).Create(&product).Error; err != nil {
		return services.Conflictf("product code %q already exists", input.Code)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func GetProducts(c *fiber.Ctx) error {
	var products []models.Product
	if err := database.FromCtx(c).Order("code").Find(&products).Error; err != nil {
		return err
	}
	return c.JSON(products)
}

func GetProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var product models.Product
	err = database.FromCtx(c).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.NotFoundf("product %d not found", id)
	}
	if err != nil {
		return err
	}
	return c.JSON(product)
}

type UpdateProductInput struct {
	Name             *string `json:"name"`
	PublicPrice      *string `json:"public_price"`
	PriceDescription *string `json:"price_description"`
	IsActive         *bool   `json:"is_active"`
}

func UpdateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var input UpdateProductInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&input)

	db := database.FromCtx(c)

	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.NotFoundf("product %d not found", id)
		}
		return err
	}

	updates := utils.UpdatesFromPtrDTO(&input, nil)
	// public_price needs decimal parsing, not a raw string column write.
	delete(updates, "public_price")
	if input.PublicPrice != nil {
		amount, err := utils.ParseAmount(*input.PublicPrice)
		if err != nil || amount.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid public price")
		}
		updates["public_price"] = amount
	}

	if len(updates) > 0 {
		if err := db.Model(&product).Updates(updates).Error; err != nil {
			return err
		}
	}
	return c.JSON(product)
}

// AssignProductNetwork makes a product sellable in a network.
func AssignProductNetwork(c *fiber.Ctx) error {
	productID, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}
	networkID, err := c.ParamsInt("networkId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid network id")
	}

	db := database.FromCtx(c)

	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.NotFoundf("product %d not found", productID)
		}
		return err
	}
	var network models.Network
	if err := db.First(&network, networkID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.NotFoundf("network %d not found", networkID)
		}
		return err
	}

	pn := models.ProductNetwork{ProductID: product.ID, NetworkID: network.ID}
	if err := db.Create(&pn).Error; err != nil {
		return services.Conflictf("product %d is already available in network %d", productID, networkID)
	}
	return c.Status(fiber.StatusCreated).JSON(pn)
}

// RemoveProductNetwork withdraws a product from a network. An explicit price
// for the pair blocks removal until the price is deleted.
func RemoveProductNetwork(c *fiber.Ctx) error {
	productID, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}
	networkID, err := c.ParamsInt("networkId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid network id")
	}

	db := database.FromCtx(c)

	var prices int64
	if err := db.Model(&models.ProductPrice{}).
		Where("product_id = ? AND network_id = ?", productID, networkID).
		Count(&prices).Error; err != nil {
		return err
	}
	if prices > 0 {
		return services.Conflictf("product %d still has an explicit price in network %d", productID, networkID)
	}

	res := db.Where("product_id = ? AND network_id = ?", productID, networkID).Delete(&models.ProductNetwork{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.NotFoundf("product %d is not available in network %d", productID, networkID)
	}
	return c.JSON(fiber.Map{"message": "product removed from network"})
}
