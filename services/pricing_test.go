package services

import (
	"testing"

	"catalog-backend/models"
)

func TestEffectivePriceInherited(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "root", "A", "B", "C")
	a, b, c := chain[1], chain[2], chain[3]

	product := seedProduct(t, db, "P1", models.ProductTypeNormal, c.ID)
	seedPrice(t, db, product.ID, a.ID, "49.90", true)

	got, err := NewPricingService(db).GetEffectivePrice(product.ID, c.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !got.IsInherited {
		t.Fatalf("expected inherited price")
	}
	if got.SourceNetworkID != a.ID {
		t.Fatalf("expected source %d got %d", a.ID, got.SourceNetworkID)
	}
	if !got.Amount.Equal(mustDecimal(t, "49.90")) {
		t.Fatalf("expected 49.90 got %s", got.Amount)
	}
	want := []uint{c.ID, b.ID, a.ID}
	if len(got.CheckedNetworkIDs) != 3 {
		t.Fatalf("expected 3 checked networks got %v", got.CheckedNetworkIDs)
	}
	for i, id := range want {
		if got.CheckedNetworkIDs[i] != id {
			t.Fatalf("checked networks %v, want %v", got.CheckedNetworkIDs, want)
		}
	}
}

func TestEffectivePriceNearestWins(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "A", "B", "C")
	a, b, c := chain[0], chain[1], chain[2]

	product := seedProduct(t, db, "P1", models.ProductTypeNormal, c.ID)
	seedPrice(t, db, product.ID, a.ID, "100.00", true)
	seedPrice(t, db, product.ID, b.ID, "80.00", true)

	got, err := NewPricingService(db).GetEffectivePrice(product.ID, c.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.SourceNetworkID != b.ID {
		t.Fatalf("expected nearest network %d got %d", b.ID, got.SourceNetworkID)
	}
	if !got.Amount.Equal(mustDecimal(t, "80.00")) {
		t.Fatalf("expected 80.00 got %s", got.Amount)
	}
}

func TestEffectivePriceExplicitNotInherited(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "A", "B")
	b := chain[1]

	product := seedProduct(t, db, "P1", models.ProductTypeNormal, b.ID)
	seedPrice(t, db, product.ID, b.ID, "15.50", true)

	got, err := NewPricingService(db).GetEffectivePrice(product.ID, b.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.IsInherited {
		t.Fatalf("price at the requested network must not be inherited")
	}
	if got.SourceNetworkID != b.ID {
		t.Fatalf("expected source %d got %d", b.ID, got.SourceNetworkID)
	}
}

func TestEffectivePriceSkipsInactive(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "A", "B")
	a, b := chain[0], chain[1]

	product := seedProduct(t, db, "P1", models.ProductTypeNormal, b.ID)
	seedPrice(t, db, product.ID, b.ID, "10.00", false) // inactive, must be skipped
	seedPrice(t, db, product.ID, a.ID, "12.00", true)

	got, err := NewPricingService(db).GetEffectivePrice(product.ID, b.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.SourceNetworkID != a.ID || !got.IsInherited {
		t.Fatalf("expected inherited price from %d got source %d", a.ID, got.SourceNetworkID)
	}
	if !got.Amount.Equal(mustDecimal(t, "12.00")) {
		t.Fatalf("expected 12.00 got %s", got.Amount)
	}
}

func TestEffectivePriceNoneInChain(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "A", "B", "C")
	c := chain[2]

	product := seedProduct(t, db, "P1", models.ProductTypeNormal, c.ID)

	_, err := NewPricingService(db).GetEffectivePrice(product.ID, c.ID)
	if !IsKind(err, KindNotFound) {
		t.Fatalf("expected NotFound got %v", err)
	}
}

func TestEffectivePriceVisibilityAtLeafOnly(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "A", "B")
	a, b := chain[0], chain[1]

	// Visible only at the parent; resolving from the child must conflict.
	product := seedProduct(t, db, "P1", models.ProductTypeNormal, a.ID)
	seedPrice(t, db, product.ID, a.ID, "9.99", true)

	_, err := NewPricingService(db).GetEffectivePrice(product.ID, b.ID)
	if !IsKind(err, KindConflict) {
		t.Fatalf("expected Conflict for missing visibility got %v", err)
	}
}

func TestSetPriceUpsert(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "A")
	a := chain[0]
	product := seedProduct(t, db, "P1", models.ProductTypeNormal, a.ID)

	svc := NewPricingService(db)

	created, err := svc.SetPrice(product.ID, a.ID, SetPriceInput{
		Amount: mustDecimal(t, "20.00"), IsActive: true,
	})
	if err != nil {
		t.Fatalf("create price: %v", err)
	}
	if created.Currency != "EUR" {
		t.Fatalf("expected default EUR got %s", created.Currency)
	}

	updated, err := svc.SetPrice(product.ID, a.ID, SetPriceInput{
		Currency: "USD", Amount: mustDecimal(t, "25.00"), IsActive: false,
	})
	if err != nil {
		t.Fatalf("update price: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("upsert must reuse the row, got new id %d", updated.ID)
	}
	if !updated.Amount.Equal(mustDecimal(t, "25.00")) || updated.Currency != "USD" || updated.IsActive {
		t.Fatalf("update not applied: %+v", updated)
	}

	var count int64
	if err := db.Model(&models.ProductPrice{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 price row got %d", count)
	}
}

func TestSetPricePreconditions(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "A")
	a := chain[0]

	svc := NewPricingService(db)
	in := SetPriceInput{Amount: mustDecimal(t, "10.00"), IsActive: true}

	if _, err := svc.SetPrice(999, a.ID, in); !IsKind(err, KindNotFound) {
		t.Fatalf("expected NotFound for missing product got %v", err)
	}

	product := seedProduct(t, db, "P1", models.ProductTypeNormal)
	if _, err := svc.SetPrice(product.ID, 999, in); !IsKind(err, KindNotFound) {
		t.Fatalf("expected NotFound for missing network got %v", err)
	}
	if _, err := svc.SetPrice(product.ID, a.ID, in); !IsKind(err, KindConflict) {
		t.Fatalf("expected Conflict without visibility got %v", err)
	}

	partner := seedProduct(t, db, "P2", models.ProductTypePartner, a.ID)
	if _, err := svc.SetPrice(partner.ID, a.ID, in); !IsKind(err, KindConflict) {
		t.Fatalf("expected Conflict for PARTNER product got %v", err)
	}

	normal := seedProduct(t, db, "P3", models.ProductTypeNormal, a.ID)
	if _, err := svc.SetPrice(normal.ID, a.ID, SetPriceInput{Amount: mustDecimal(t, "-1"), IsActive: true}); !IsKind(err, KindBadRequest) {
		t.Fatalf("expected BadRequest for negative amount got %v", err)
	}
}

func TestDeletePrice(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "A")
	a := chain[0]
	product := seedProduct(t, db, "P1", models.ProductTypeNormal, a.ID)
	seedPrice(t, db, product.ID, a.ID, "5.00", true)

	svc := NewPricingService(db)
	if err := svc.DeletePrice(product.ID, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeletePrice(product.ID, a.ID); !IsKind(err, KindNotFound) {
		t.Fatalf("expected NotFound on second delete got %v", err)
	}
}

func TestListNetworkCatalogSkipsUnpriced(t *testing.T) {
	db := setupTestDB(t, t.Name())
	chain := seedChain(t, db, "root", "leaf")
	root, leaf := chain[0], chain[1]

	priced := seedProduct(t, db, "P1", models.ProductTypeNormal, leaf.ID)
	seedPrice(t, db, priced.ID, root.ID, "30.00", true)
	seedProduct(t, db, "P2", models.ProductTypeNormal, leaf.ID) // no price anywhere

	entries, err := NewPricingService(db).ListNetworkCatalog(leaf.ID)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry got %d", len(entries))
	}
	if entries[0].ProductID != priced.ID || !entries[0].Price.IsInherited {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}
