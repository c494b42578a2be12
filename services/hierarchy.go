package services

import (
	"errors"
	"fmt"

	"catalog-backend/models"

	"gorm.io/gorm"
)

// maxChainDepth bounds ancestor walks. The hierarchy is expected to be a few
// levels deep (region → country → reseller); hitting the bound means the
// parent links are corrupted.
const maxChainDepth = 32

// ErrChainTooDeep signals a parent chain longer than maxChainDepth, which in
// practice means a cycle slipped into the network table.
var ErrChainTooDeep = errors.New("network ancestor chain exceeds maximum depth")

// AncestorChain returns the networks from networkID up to its root, start
// node included. The walk is read-only and bounded by maxChainDepth.
func AncestorChain(db *gorm.DB, networkID uint) ([]models.Network, error) {
	var chain []models.Network
	currentID := &networkID

	for depth := 0; currentID != nil; depth++ {
		if depth >= maxChainDepth {
			return nil, fmt.Errorf("%w (started at network %d)", ErrChainTooDeep, networkID)
		}

		var network models.Network
		if err := db.First(&network, *currentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if depth == 0 {
					return nil, NotFoundf("network %d not found", networkID)
				}
				// A parent link points at a deleted network; stop at the last
				// node that exists rather than failing the whole walk.
				return chain, nil
			}
			return nil, err
		}

		chain = append(chain, network)
		currentID = network.ParentNetworkID
	}

	return chain, nil
}

// ValidateParentAssignment rejects a parentNetworkID change that would create
// a cycle: the proposed parent's ancestor chain must not contain networkID.
func ValidateParentAssignment(db *gorm.DB, networkID uint, parentNetworkID *uint) error {
	if parentNetworkID == nil {
		return nil
	}
	if *parentNetworkID == networkID {
		return Conflictf("network %d cannot be its own parent", networkID)
	}

	chain, err := AncestorChain(db, *parentNetworkID)
	if err != nil {
		return err
	}
	for _, ancestor := range chain {
		if ancestor.ID == networkID {
			return Conflictf("assigning parent %d to network %d would create a cycle", *parentNetworkID, networkID)
		}
	}
	return nil
}

// EnsureNetworkDeletable guards network removal: children, visibility rows
// and explicit prices must be detached first.
func EnsureNetworkDeletable(db *gorm.DB, networkID uint) error {
	var children int64
	if err := db.Model(&models.Network{}).Where("parent_network_id = ?", networkID).Count(&children).Error; err != nil {
		return err
	}
	if children > 0 {
		return Conflictf("network %d has child networks", networkID)
	}

	var visible int64
	if err := db.Model(&models.ProductNetwork{}).Where("network_id = ?", networkID).Count(&visible).Error; err != nil {
		return err
	}
	if visible > 0 {
		return Conflictf("network %d has products assigned to it", networkID)
	}

	var prices int64
	if err := db.Model(&models.ProductPrice{}).Where("network_id = ?", networkID).Count(&prices).Error; err != nil {
		return err
	}
	if prices > 0 {
		return Conflictf("network %d has explicit prices", networkID)
	}

	return nil
}
