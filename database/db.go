package database

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"catalog-backend/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// defaultNetworkID is the validated fallback network for users without an
// explicit network context. Set via DEFAULT_NETWORK_ID; never a magic literal
// in call sites.
var defaultNetworkID uint

func Connect() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "db"
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"), port)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Println(err)
		panic("could not connect to database")
	}

	loadDefaultNetworkID()
}

// loadDefaultNetworkID reads and validates DEFAULT_NETWORK_ID. The referenced
// network must exist; failing fast here beats a dangling fallback at request
// time.
func loadDefaultNetworkID() {
	raw := os.Getenv("DEFAULT_NETWORK_ID")
	if raw == "" {
		defaultNetworkID = 0
		return
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		panic("DEFAULT_NETWORK_ID must be a positive integer")
	}
	var count int64
	if err := DB.Model(&models.Network{}).Where("id = ?", uint(n)).Count(&count).Error; err != nil {
		panic("could not validate DEFAULT_NETWORK_ID: " + err.Error())
	}
	if count == 0 {
		panic(fmt.Sprintf("DEFAULT_NETWORK_ID %d does not reference an existing network", n))
	}
	defaultNetworkID = uint(n)
}

// DefaultNetworkID returns the configured fallback network id, or 0 when no
// default is configured.
func DefaultNetworkID() uint {
	return defaultNetworkID
}

func AutoMigrate() {
	if err := DB.AutoMigrate(
		&models.Network{},
		&models.Client{},
		&models.User{},
		&models.Product{},
		&models.ProductNetwork{},
		&models.ProductPrice{},
		&models.Quotation{},
		&models.QuotationItem{},
		&models.Order{},
		&models.OrderLine{},
		&models.OrderSequence{},
		&models.Payment{},
		&models.PaymentEvent{},
		&models.IdempotencyKey{},
	); err != nil {
		panic("automigrate failed: " + err.Error())
	}
}
