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

type CreateNetworkInput struct {
	Code            string `json:"code" validate:"required,max=64"`
	Name            string `json:"name" validate:"required"`
	ParentNetworkID *uint  `json:"parent_network_id"`
}

func CreateNetwork(c *fiber.Ctx) error {
	var input CreateNetworkInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	db := database.FromCtx(c)

	if input.ParentNetworkID != nil {
		if _, err := services.AncestorChain(db, *input.ParentNetworkID); err != nil {
			return err
		}
	}

	network := models.Network{
		Code:            input.Code,
		Name:            input.Name,
		ParentNetworkID: input.ParentNetworkID,
	}
	if err := db.Create(&network).Error; err != nil {
		return services.Conflictf("network code %q already exists", input.Code)
	}

	return c.Status(fiber.StatusCreated).JSON(network)
}

func GetNetworks(c *fiber.Ctx) error {
	var networks []models.Network
	err := database.FromCtx(c).
		Preload("ParentNetwork").Preload("ChildNetworks").
		Order("created_at DESC").
		Find(&networks).Error
	if err != nil {
		return err
	}
	return c.JSON(networks)
}

func GetNetwork(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid network id")
	}

	var network models.Network
	err = database.FromCtx(c).
		Preload("ParentNetwork").Preload("ChildNetworks").
		First(&network, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.NotFoundf("network %d not found", id)
	}
	if err != nil {
		return err
	}
	return c.JSON(network)
}

type UpdateNetworkInput struct {
	Name            *string `json:"name"`
	ParentNetworkID *uint   `json:"parent_network_id"`
	ClearParent     bool    `json:"clear_parent"`
}

func UpdateNetwork(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid network id")
	}

	var input UpdateNetworkInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&input)

	db := database.FromCtx(c)

	var network models.Network
	if err := db.First(&network, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.NotFoundf("network %d not found", id)
		}
		return err
	}

	updates := utils.UpdatesFromPtrDTO(&input, nil)
	delete(updates, "parent_network_id")

	if input.ClearParent {
		updates["parent_network_id"] = nil
	} else if input.ParentNetworkID != nil {
		// Reparenting must not introduce a cycle.
		if err := services.ValidateParentAssignment(db, network.ID, input.ParentNetworkID); err != nil {
			return err
		}
		updates["parent_network_id"] = *input.ParentNetworkID
	}

	if len(updates) > 0 {
		if err := db.Model(&network).Updates(updates).Error; err != nil {
			return err
		}
	}
	return c.JSON(network)
}

func DeleteNetwork(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid network id")
	}

	db := database.FromCtx(c)

	var network models.Network
	if err := db.First(&network, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.NotFoundf("network %d not found", id)
		}
		return err
	}

	if err := services.EnsureNetworkDeletable(db, network.ID); err != nil {
		return err
	}
	if err := db.Delete(&network).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "network deleted"})
}
