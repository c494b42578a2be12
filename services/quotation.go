package services

import (
	"errors"
	"log"

	"catalog-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuotationService owns the draft-cart lifecycle: one mutable DRAFT per
// (user, network), item snapshots at add-time, and the DRAFT → SENT →
// ACCEPTED/REJECTED/EXPIRED transitions.
type QuotationService struct {
	db *gorm.DB
}

func NewQuotationService(db *gorm.DB) *QuotationService {
	return &QuotationService{db: db}
}

var validSubmitTargets = map[string]bool{
	models.QuotationSent:     true,
	models.QuotationAccepted: true,
	models.QuotationRejected: true,
	models.QuotationExpired:  true,
}

// GetOrCreateCurrentDraft finds the user's DRAFT quotation for the network,
// creating one if absent. The partial unique index on (user_id, network_id)
// WHERE status='DRAFT' converts a concurrent double-create into a unique
// violation, which is handled by re-reading the winner's row.
func (s *QuotationService) GetOrCreateCurrentDraft(userID, networkID uint) (*models.Quotation, error) {
	user, err := s.requireUser(userID)
	if err != nil {
		return nil, err
	}
	if user.ClientID == nil {
		return nil, BadRequestf("user %d does not belong to any client", userID)
	}
	if networkID == 0 {
		return nil, BadRequestf("no network context for user %d", userID)
	}

	var quotation models.Quotation
	err = s.db.Preload("Items").
		Where("user_id = ? AND network_id = ? AND status = ?", userID, networkID, models.QuotationDraft).
		First(&quotation).Error
	if err == nil {
		return &quotation, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	quotation = models.Quotation{
		UserID:      userID,
		ClientID:    *user.ClientID,
		NetworkID:   networkID,
		Status:      models.QuotationDraft,
		Currency:    "EUR",
		TotalAmount: decimal.Zero,
	}
	// The nested transaction becomes a savepoint when s.db already is a
	// request transaction, so a unique violation aborts only the INSERT and
	// the recovery read below still works on Postgres.
	createErr := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&quotation).Error
	})
	if createErr != nil {
		if isUniqueViolation(createErr) {
			// Lost the create race; the other request's draft is ours too.
			if err := s.db.Preload("Items").
				Where("user_id = ? AND network_id = ? AND status = ?", userID, networkID, models.QuotationDraft).
				First(&quotation).Error; err != nil {
				return nil, err
			}
			return &quotation, nil
		}
		return nil, createErr
	}
	return &quotation, nil
}

// AddItem appends a line to the user's current draft. The product must
// exist; price resolution failure is a degraded success, not an error — the
// item is created with a null unit price meaning "price on request".
func (s *QuotationService) AddItem(userID, networkID, productID uint, quantity int) (*models.QuotationItem, error) {
	if quantity < 1 {
		return nil, BadRequestf("quantity must be at least 1")
	}

	quotation, err := s.GetOrCreateCurrentDraft(userID, networkID)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("product %d not found", productID)
		}
		return nil, err
	}

	unitPrice := decimal.NullDecimal{}
	effective, err := NewPricingService(s.db).GetEffectivePrice(productID, networkID)
	switch {
	case err == nil:
		unitPrice = decimal.NullDecimal{Decimal: effective.Amount, Valid: true}
	case IsKind(err, KindNotFound) || IsKind(err, KindConflict):
		// No effective price or not visible here: keep the item, flag the
		// price as on-request.
		log.Printf("no price for product %d in network %d: %v", productID, networkID, err)
	default:
		return nil, err
	}

	item := models.QuotationItem{
		QuotationID: quotation.ID,
		ProductID:   productID,
		ProductCode: product.Code,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Currency:    quotation.Currency,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return recomputeQuotationTotal(tx, quotation.ID)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItemQuantity changes a line's quantity. Ownership and DRAFT state are
// both required; snapshot fields stay untouched.
func (s *QuotationService) UpdateItemQuantity(userID, itemID uint, quantity int) (*models.QuotationItem, error) {
	if quantity < 1 {
		return nil, BadRequestf("quantity must be at least 1")
	}

	item, quotation, err := s.requireOwnedDraftItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(item).Update("quantity", quantity).Error; err != nil {
			return err
		}
		return recomputeQuotationTotal(tx, quotation.ID)
	})
	if err != nil {
		return nil, err
	}
	item.Quantity = quantity
	return item, nil
}

// RemoveItem deletes a line from the user's draft and recomputes the total.
func (s *QuotationService) RemoveItem(userID, itemID uint) error {
	item, quotation, err := s.requireOwnedDraftItem(userID, itemID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(item).Error; err != nil {
			return err
		}
		return recomputeQuotationTotal(tx, quotation.ID)
	})
}

// Submit transitions the user's current draft to targetStatus. Only DRAFT
// quotations move; whether ACCEPTED may be set directly by the caller is an
// access-control concern of the HTTP layer.
func (s *QuotationService) Submit(userID, networkID uint, targetStatus string) (*models.Quotation, error) {
	if !validSubmitTargets[targetStatus] {
		return nil, BadRequestf("invalid target status %q", targetStatus)
	}

	quotation, err := s.GetOrCreateCurrentDraft(userID, networkID)
	if err != nil {
		return nil, err
	}
	if quotation.Status != models.QuotationDraft {
		return nil, BadRequestf("cannot update quotation status from %s", quotation.Status)
	}

	if err := s.db.Model(quotation).Update("status", targetStatus).Error; err != nil {
		return nil, err
	}
	quotation.Status = targetStatus
	return quotation, nil
}

// ListUserQuotations returns all of the user's quotations, newest first.
func (s *QuotationService) ListUserQuotations(userID uint) ([]models.Quotation, error) {
	var quotations []models.Quotation
	err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&quotations).Error
	return quotations, err
}

// GetQuotationByID loads a quotation for its owner or for ADMIN/BO callers.
func (s *QuotationService) GetQuotationByID(quotationID, userID uint, role string) (*models.Quotation, error) {
	var quotation models.Quotation
	err := s.db.Preload("Items").First(&quotation, quotationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundf("quotation %d not found", quotationID)
	}
	if err != nil {
		return nil, err
	}
	if quotation.UserID != userID && role != models.RoleAdmin && role != models.RoleBO {
		return nil, Forbiddenf("you cannot view this quotation")
	}
	return &quotation, nil
}

// recomputeQuotationTotal re-reads the full current item list and persists
// the sum of unitPrice*quantity over priced items. Must run last in any
// item-mutating transaction so concurrent mutations on the same quotation
// cannot leave a stale total behind.
func recomputeQuotationTotal(tx *gorm.DB, quotationID uint) error {
	var items []models.QuotationItem
	if err := tx.Where("quotation_id = ?", quotationID).Find(&items).Error; err != nil {
		return err
	}

	total := decimal.Zero
	for _, item := range items {
		if !item.UnitPrice.Valid {
			continue
		}
		total = total.Add(item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return tx.Model(&models.Quotation{}).
		Where("id = ?", quotationID).
		Update("total_amount", total).Error
}

func (s *QuotationService) requireUser(userID uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundf("user %d not found", userID)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// requireOwnedDraftItem loads an item plus its quotation and enforces the
// ownership and DRAFT-only mutation rules shared by the item operations.
func (s *QuotationService) requireOwnedDraftItem(userID, itemID uint) (*models.QuotationItem, *models.Quotation, error) {
	var item models.QuotationItem
	err := s.db.First(&item, itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, NotFoundf("item %d not found", itemID)
	}
	if err != nil {
		return nil, nil, err
	}

	var quotation models.Quotation
	if err := s.db.First(&quotation, item.QuotationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NotFoundf("quotation %d not found", item.QuotationID)
		}
		return nil, nil, err
	}

	if quotation.UserID != userID {
		return nil, nil, Forbiddenf("item does not belong to your quotation")
	}
	if quotation.Status != models.QuotationDraft {
		return nil, nil, BadRequestf("cannot modify a non-DRAFT quotation")
	}
	return &item, &quotation, nil
}
