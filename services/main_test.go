package services

import (
	"fmt"
	"testing"

	"catalog-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Network{}, &models.Client{}, &models.User{},
		&models.Product{}, &models.ProductNetwork{}, &models.ProductPrice{},
		&models.Quotation{}, &models.QuotationItem{},
		&models.Order{}, &models.OrderLine{}, &models.OrderSequence{},
		&models.Payment{}, &models.PaymentEvent{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// sqlite supports the same partial index Postgres gets from the
	// migrator; keep the draft-uniqueness backstop active in tests.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_quotations_one_draft
		ON quotations (user_id, network_id) WHERE status = 'DRAFT'`).Error; err != nil {
		t.Fatalf("draft index: %v", err)
	}
	return db
}

// seedChain creates root→...→leaf networks and returns them root first.
func seedChain(t *testing.T, db *gorm.DB, codes ...string) []models.Network {
	t.Helper()
	networks := make([]models.Network, 0, len(codes))
	var parentID *uint
	for _, code := range codes {
		n := models.Network{Code: code, Name: "network " + code, ParentNetworkID: parentID}
		if err := db.Create(&n).Error; err != nil {
			t.Fatalf("seed network %s: %v", code, err)
		}
		id := n.ID
		parentID = &id
		networks = append(networks, n)
	}
	return networks
}

func seedUser(t *testing.T, db *gorm.DB, email string, networkID uint) models.User {
	t.Helper()
	client := models.Client{Name: "client-" + email, Active: true}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	user := models.User{Email: email, Password: []byte("hash"), Role: models.RoleUser, ClientID: &client.ID}
	if networkID != 0 {
		user.NetworkID = &networkID
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, code, productType string, networkIDs ...uint) models.Product {
	t.Helper()
	product := models.Product{Code: code, Name: "product " + code, Type: productType, IsActive: true}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product %s: %v", code, err)
	}
	for _, networkID := range networkIDs {
		pn := models.ProductNetwork{ProductID: product.ID, NetworkID: networkID}
		if err := db.Create(&pn).Error; err != nil {
			t.Fatalf("seed visibility %s/%d: %v", code, networkID, err)
		}
	}
	return product
}

func seedPrice(t *testing.T, db *gorm.DB, productID, networkID uint, amount string, active bool) models.ProductPrice {
	t.Helper()
	price := models.ProductPrice{
		ProductID: productID,
		NetworkID: networkID,
		Currency:  "EUR",
		Amount:    mustDecimal(t, amount),
		IsActive:  active,
	}
	if err := db.Create(&price).Error; err != nil {
		t.Fatalf("seed price %d/%d: %v", productID, networkID, err)
	}
	return price
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}
