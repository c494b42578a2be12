package services

import (
	"errors"
	"fmt"
	"time"

	"catalog-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService converts accepted quotations into immutable orders and guards
// the PENDING_PAYMENT → PAID/FULFILLED/CANCELLED transitions.
type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// OrderResult wraps an order with a flag for lines whose price was still
// unresolved ("on request") when the order was created. Such lines count as
// zero toward the total.
type OrderResult struct {
	Order           *models.Order `json:"order"`
	HasUnpricedLine bool          `json:"has_unpriced_lines"`
}

// CreateFromQuotation snapshots an ACCEPTED quotation into a new order. The
// whole step — code sequence, order row, line copies — runs in one
// transaction; the unique index on orders.quotation_id turns a concurrent
// double-create into a Conflict.
func (s *OrderService) CreateFromQuotation(userID, quotationID uint) (*OrderResult, error) {
	var quotation models.Quotation
	err := s.db.Preload("Items").First(&quotation, quotationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundf("quotation %d not found", quotationID)
	}
	if err != nil {
		return nil, err
	}

	if quotation.UserID != userID {
		return nil, BadRequestf("quotation does not belong to current user")
	}
	if quotation.Status != models.QuotationAccepted {
		return nil, Conflictf("quotation must be ACCEPTED to create order, current status: %s", quotation.Status)
	}

	var existing models.Order
	err = s.db.Where("quotation_id = ?", quotationID).First(&existing).Error
	if err == nil {
		return nil, Conflictf("quotation %d already has an order: %d", quotationID, existing.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	if user.ClientID == nil {
		return nil, BadRequestf("user %d does not belong to any client", userID)
	}

	currency := quotation.Currency
	if currency == "" {
		currency = "EUR"
	}

	total := decimal.Zero
	hasUnpriced := false
	lines := make([]models.OrderLine, 0, len(quotation.Items))
	for _, item := range quotation.Items {
		if item.UnitPrice.Valid {
			total = total.Add(item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
		} else {
			hasUnpriced = true
		}
		lines = append(lines, models.OrderLine{
			ProductID:       item.ProductID,
			ProductCode:     item.ProductCode,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			Currency:        currency,
			SourceNetworkID: quotation.NetworkID,
		})
	}

	var order models.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		code, err := nextOrderCode(tx)
		if err != nil {
			return err
		}
		order = models.Order{
			Code:        code,
			UserID:      userID,
			ClientID:    *user.ClientID,
			QuotationID: quotation.ID,
			Status:      models.OrderPendingPayment,
			TotalAmount: total,
			Currency:    currency,
			Lines:       lines,
		}
		if err := tx.Create(&order).Error; err != nil {
			if isUniqueViolation(err) {
				return Conflictf("quotation %d already has an order", quotationID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &OrderResult{Order: &order, HasUnpricedLine: hasUnpriced}, nil
}

// ListUserOrders returns the user's orders newest first, with the total count
// for paging.
func (s *OrderService) ListUserOrders(userID uint, skip, take int) ([]models.Order, int64, error) {
	if take <= 0 || take > 100 {
		take = 50
	}
	if skip < 0 {
		skip = 0
	}

	var orders []models.Order
	err := s.db.Preload("Lines").Preload("Payment").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(skip).Limit(take).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.db.Model(&models.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// GetOrder loads one order owned by the user.
func (s *OrderService) GetOrder(userID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Lines").Preload("Payment").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundf("order %d not found", orderID)
	}
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, BadRequestf("order does not belong to current user")
	}
	return &order, nil
}

// Cancel moves an order to CANCELLED. Only the owner may cancel, and only
// while the order still awaits payment.
func (s *OrderService) Cancel(userID, orderID uint) (*models.Order, error) {
	order, err := s.GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderPendingPayment {
		return nil, Conflictf("cannot cancel order with status %s, only PENDING_PAYMENT orders can be cancelled", order.Status)
	}

	if err := s.db.Model(order).Update("status", models.OrderCancelled).Error; err != nil {
		return nil, err
	}
	order.Status = models.OrderCancelled
	return order, nil
}

// UpdateStatus sets an order's status without ownership checks. Internal:
// only the payment integration calls this after webhook processing.
func (s *OrderService) UpdateStatus(orderID uint, status string) (*models.Order, error) {
	var order models.Order
	err := s.db.First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundf("order %d not found", orderID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&order).Update("status", status).Error; err != nil {
		return nil, err
	}
	order.Status = status
	return &order, nil
}

// nextOrderCode produces ORD-YYYY-NNNNNN from a per-year counter row. The
// UPDATE-based increment is atomic under concurrent order creation, unlike
// counting existing orders.
func nextOrderCode(tx *gorm.DB) (string, error) {
	year := time.Now().Year()

	res := tx.Model(&models.OrderSequence{}).
		Where("year = ?", year).
		UpdateColumn("counter", gorm.Expr("counter + 1"))
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		// Savepoint-wrapped so a lost create race does not abort the
		// enclosing order transaction on Postgres.
		createErr := tx.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&models.OrderSequence{Year: year, Counter: 1}).Error
		})
		if createErr != nil {
			if !isUniqueViolation(createErr) {
				return "", createErr
			}
			// Another transaction created the row first; retry the increment.
			if err := tx.Model(&models.OrderSequence{}).
				Where("year = ?", year).
				UpdateColumn("counter", gorm.Expr("counter + 1")).Error; err != nil {
				return "", err
			}
		}
	}

	var seq models.OrderSequence
	if err := tx.Where("year = ?", year).First(&seq).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%d-%06d", year, seq.Counter), nil
}
