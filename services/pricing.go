package services

import (
	"errors"
	"strings"

	"catalog-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricingService covers the explicit price store and the hierarchical price
// resolver.
type PricingService struct {
	db *gorm.DB
}

func NewPricingService(db *gorm.DB) *PricingService {
	return &PricingService{db: db}
}

// SetPriceInput carries the upsert payload; Amount arrives as a string so it
// never passes through a binary float.
type SetPriceInput struct {
	Currency string
	Amount   decimal.Decimal
	IsActive bool
	Note     *string
}

// EffectivePrice is the result of a hierarchy walk. CheckedNetworkIDs lists
// every visited network, nearest first, for diagnostics.
type EffectivePrice struct {
	ProductID          uint            `json:"product_id"`
	RequestedNetworkID uint            `json:"requested_network_id"`
	SourceNetworkID    uint            `json:"source_network_id"`
	IsInherited        bool            `json:"is_inherited"`
	Currency           string          `json:"currency"`
	Amount             decimal.Decimal `json:"amount"`
	Note               *string         `json:"note"`
	CheckedNetworkIDs  []uint          `json:"checked_network_ids"`
}

// SetPrice upserts the explicit price for (productID, networkID). The product
// must be a NORMAL product visible in the network; the unique (product_id,
// network_id) index is the backstop against concurrent duplicate creates.
func (s *PricingService) SetPrice(productID, networkID uint, in SetPriceInput) (*models.ProductPrice, error) {
	product, err := s.requireProduct(productID)
	if err != nil {
		return nil, err
	}
	if product.Type != models.ProductTypeNormal {
		return nil, Conflictf("product %d is %s; only NORMAL products carry per-network prices", productID, product.Type)
	}
	if err := s.requireNetwork(networkID); err != nil {
		return nil, err
	}
	if err := s.requireVisibility(productID, networkID); err != nil {
		return nil, err
	}
	if in.Amount.IsNegative() {
		return nil, BadRequestf("price amount must not be negative")
	}

	currency := in.Currency
	if currency == "" {
		currency = "EUR"
	}

	var price models.ProductPrice
	err = s.db.Where("product_id = ? AND network_id = ?", productID, networkID).First(&price).Error
	switch {
	case err == nil:
		price.Currency = currency
		price.Amount = in.Amount
		price.IsActive = in.IsActive
		price.Note = in.Note
		if err := s.db.Save(&price).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		price = models.ProductPrice{
			ProductID: productID,
			NetworkID: networkID,
			Currency:  currency,
			Amount:    in.Amount,
			IsActive:  in.IsActive,
			Note:      in.Note,
		}
		if err := s.db.Create(&price).Error; err != nil {
			if isUniqueViolation(err) {
				return nil, Conflictf("price already exists for product %d in network %d", productID, networkID)
			}
			return nil, err
		}
	default:
		return nil, err
	}

	return &price, nil
}

// GetExplicitPrice is a pure lookup at one network node, no inheritance.
func (s *PricingService) GetExplicitPrice(productID, networkID uint) (*models.ProductPrice, error) {
	var price models.ProductPrice
	err := s.db.Where("product_id = ? AND network_id = ?", productID, networkID).First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundf("no explicit price for product %d in network %d", productID, networkID)
	}
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (s *PricingService) DeletePrice(productID, networkID uint) error {
	res := s.db.Where("product_id = ? AND network_id = ?", productID, networkID).Delete(&models.ProductPrice{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NotFoundf("no explicit price for product %d in network %d", productID, networkID)
	}
	return nil
}

// GetEffectivePrice resolves the applicable price for (productID, networkID)
// by walking the ancestor chain, start node included. The nearest active
// explicit price wins; inactive rows are skipped. Visibility is checked at
// the requested network only — ancestor prices act purely as pricing
// defaults, not as sellability assertions.
func (s *PricingService) GetEffectivePrice(productID, networkID uint) (*EffectivePrice, error) {
	if _, err := s.requireProduct(productID); err != nil {
		return nil, err
	}
	if err := s.requireNetwork(networkID); err != nil {
		return nil, err
	}
	if err := s.requireVisibility(productID, networkID); err != nil {
		return nil, err
	}

	chain, err := AncestorChain(s.db, networkID)
	if err != nil {
		return nil, err
	}

	checked := make([]uint, 0, len(chain))
	for _, node := range chain {
		checked = append(checked, node.ID)

		var price models.ProductPrice
		err := s.db.Where("product_id = ? AND network_id = ?", productID, node.ID).First(&price).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !price.IsActive {
			// An inactive row never contributes its amount; keep walking.
			continue
		}

		return &EffectivePrice{
			ProductID:          productID,
			RequestedNetworkID: networkID,
			SourceNetworkID:    node.ID,
			IsInherited:        node.ID != networkID,
			Currency:           price.Currency,
			Amount:             price.Amount,
			Note:               price.Note,
			CheckedNetworkIDs:  checked,
		}, nil
	}

	return nil, NotFoundf("no effective price for product %d in network %d or any parent network", productID, networkID)
}

// CatalogEntry pairs a visible product with its resolved price.
type CatalogEntry struct {
	ProductID   uint            `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Price       *EffectivePrice `json:"price"`
}

// ListNetworkCatalog returns every product visible in the network together
// with its effective price. Products without a price anywhere in the chain
// are skipped.
func (s *PricingService) ListNetworkCatalog(networkID uint) ([]CatalogEntry, error) {
	if err := s.requireNetwork(networkID); err != nil {
		return nil, err
	}

	var visibilities []models.ProductNetwork
	if err := s.db.Preload("Product").Where("network_id = ?", networkID).Find(&visibilities).Error; err != nil {
		return nil, err
	}

	entries := make([]CatalogEntry, 0, len(visibilities))
	for _, pn := range visibilities {
		if pn.Product == nil || !pn.Product.IsActive {
			continue
		}
		price, err := s.GetEffectivePrice(pn.ProductID, networkID)
		if err != nil {
			if IsKind(err, KindNotFound) {
				continue
			}
			return nil, err
		}
		entries = append(entries, CatalogEntry{
			ProductID:   pn.ProductID,
			ProductCode: pn.Product.Code,
			ProductName: pn.Product.Name,
			Price:       price,
		})
	}
	return entries, nil
}

func (s *PricingService) requireProduct(productID uint) (*models.Product, error) {
	var product models.Product
	err := s.db.First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundf("product %d not found", productID)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *PricingService) requireNetwork(networkID uint) error {
	var count int64
	if err := s.db.Model(&models.Network{}).Where("id = ?", networkID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return NotFoundf("network %d not found", networkID)
	}
	return nil
}

func (s *PricingService) requireVisibility(productID, networkID uint) error {
	var count int64
	if err := s.db.Model(&models.ProductNetwork{}).
		Where("product_id = ? AND network_id = ?", productID, networkID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return Conflictf("product %d is not available in network %d", productID, networkID)
	}
	return nil
}

// isUniqueViolation recognizes unique-constraint errors from both Postgres
// and the sqlite test driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
