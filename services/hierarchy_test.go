package services

import (
	"errors"
	"testing"

	"catalog-backend/models"
)

func TestAncestorChainOrder(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "root", "country", "reseller")
	leaf := chain[2]

	got, err := AncestorChain(db, leaf.ID)
	if err != nil {
		t.Fatalf("ancestor chain: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 networks got %d", len(got))
	}
	if got[0].ID != leaf.ID || got[1].ID != chain[1].ID || got[2].ID != chain[0].ID {
		t.Fatalf("chain out of order: %v", []uint{got[0].ID, got[1].ID, got[2].ID})
	}
	if got[2].ParentNetworkID != nil {
		t.Fatalf("last element should be the root")
	}
}

func TestAncestorChainMissingNetwork(t *testing.T) {
	db := setupTestDB(t, t.Name())

	_, err := AncestorChain(db, 999)
	if !IsKind(err, KindNotFound) {
		t.Fatalf("expected NotFound got %v", err)
	}
}

func TestAncestorChainCycleTerminates(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "a", "b")

	// Corrupt the hierarchy: make the root a child of its own child.
	if err := db.Model(&models.Network{}).Where("id = ?", chain[0].ID).
		Update("parent_network_id", chain[1].ID).Error; err != nil {
		t.Fatalf("create cycle: %v", err)
	}

	_, err := AncestorChain(db, chain[1].ID)
	if !errors.Is(err, ErrChainTooDeep) {
		t.Fatalf("expected ErrChainTooDeep got %v", err)
	}
}

func TestValidateParentAssignmentRejectsCycle(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "root", "mid", "leaf")

	// root → leaf would close the loop root→mid→leaf→root.
	leafID := chain[2].ID
	err := ValidateParentAssignment(db, chain[0].ID, &leafID)
	if !IsKind(err, KindConflict) {
		t.Fatalf("expected Conflict got %v", err)
	}

	// Self-parenting is rejected outright.
	rootID := chain[0].ID
	if err := ValidateParentAssignment(db, rootID, &rootID); !IsKind(err, KindConflict) {
		t.Fatalf("expected Conflict for self-parent got %v", err)
	}

	// Legal reparenting passes.
	midID := chain[1].ID
	other := models.Network{Code: "other", Name: "other"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := ValidateParentAssignment(db, other.ID, &midID); err != nil {
		t.Fatalf("expected legal assignment, got %v", err)
	}
}

func TestEnsureNetworkDeletableGuards(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "root", "leaf")

	// Root has a child.
	if err := EnsureNetworkDeletable(db, chain[0].ID); !IsKind(err, KindConflict) {
		t.Fatalf("expected Conflict for network with children got %v", err)
	}

	// Leaf gets a product assigned.
	product := seedProduct(t, db, "P1", models.ProductTypeNormal, chain[1].ID)
	if err := EnsureNetworkDeletable(db, chain[1].ID); !IsKind(err, KindConflict) {
		t.Fatalf("expected Conflict for network with products got %v", err)
	}

	// Detach the product; leaf becomes deletable.
	if err := db.Where("product_id = ?", product.ID).Delete(&models.ProductNetwork{}).Error; err != nil {
		t.Fatalf("detach: %v", err)
	}
	if err := EnsureNetworkDeletable(db, chain[1].ID); err != nil {
		t.Fatalf("expected deletable, got %v", err)
	}
}
