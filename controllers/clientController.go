package controllers

import (
	"errors"

	"catalog-backend/database"
	"catalog-backend/middlewares"
	"catalog-backend/models"
	"catalog-backend/services"
	"catalog-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateClientInput struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
	Zip     string `json:"zip"`
	Email   string `json:"email" validate:"omitempty,email"`
}

func CreateClient(c *fiber.Ctx) error {
	var input CreateClientInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	client := models.Client{
		Name:    input.Name,
		Address: input.Address,
		City:    input.City,
		Country: input.Country,
		Zip:     input.Zip,
		Email:   input.Email,
		Active:  true,
	}
	if err := database.FromCtx(c).Create(&client).Error; err != nil {
		return services.Conflictf("client %q already exists", input.Name)
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

func GetClients(c *fiber.Ctx) error {
	var clients []models.Client
	if err := database.FromCtx(c).Order("name").Find(&clients).Error; err != nil {
		return err
	}
	return c.JSON(clients)
}

func GetClient(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid client id")
	}

	var client models.Client
	err = database.FromCtx(c).First(&client, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.NotFoundf("client %d not found", id)
	}
	if err != nil {
		return err
	}
	return c.JSON(client)
}

type UpdateClientInput struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	Country *string `json:"country"`
	Zip     *string `json:"zip"`
	Email   *string `json:"email" validate:"omitempty,email"`
}

func UpdateClient(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid client id")
	}

	var input UpdateClientInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&input)

	db := database.FromCtx(c)

	var client models.Client
	if err := db.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.NotFoundf("client %d not found", id)
		}
		return err
	}

	updates := utils.UpdatesFromPtrDTO(&input, nil)
	if len(updates) > 0 {
		if err := db.Model(&client).Updates(updates).Error; err != nil {
			return err
		}
	}
	return c.JSON(client)
}
