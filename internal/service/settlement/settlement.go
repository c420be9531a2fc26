package settlement

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/herbvita/shop_backend/internal/models"
	"github.com/herbvita/shop_backend/internal/service/referral"
)

var (
	ErrValidation      = errors.New("validation")               // 400
	ErrProductNotFound = errors.New("product not found")        // 404
	ErrOrderNotFound   = errors.New("order not found")          // 404
	ErrTerminalStatus  = errors.New("order status is terminal") // 409
)

type ItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  uint `json:"quantity"   validate:"required,min=1"`
}

// Service finalizes checkouts: snapshot pricing, exact totals and the
// referral payout, committed as one transaction.
type Service struct {
	DB *gorm.DB
}

func (svc *Service) CreateOrder(ctx context.Context, userID uint, items []ItemRequest, paymentMethod string) (*models.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrValidation)
	}
	if paymentMethod == "" {
		return nil, fmt.Errorf("%w: payment method required", ErrValidation)
	}

	var orderItems []models.OrderItem
	var total float64

	// Resolve every product before writing anything; one miss aborts the
	// whole order.
	for i := range items {
		if items[i].Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
		}

		var product models.Product
		if err := svc.DB.WithContext(ctx).First(&product, items[i].ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %d", ErrProductNotFound, items[i].ProductID)
			}
			return nil, err
		}

		lineTotal := product.Price * float64(items[i].Quantity)
		total += lineTotal
		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  items[i].Quantity,
			UnitPrice: product.Price,
		})
	}

	order := &models.Order{
		UserID:        userID,
		Items:         orderItems,
		TotalAmount:   total,
		Status:        models.OrderStatusPending,
		PaymentMethod: paymentMethod,
	}

	err := svc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		var purchaser models.User
		if err := tx.First(&purchaser, userID).Error; err != nil {
			return err
		}
		return referral.ApplyReward(tx, &purchaser, order.TotalAmount)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (svc *Service) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := svc.DB.WithContext(ctx).Preload("Items").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (svc *Service) GetUserOrder(ctx context.Context, orderID, userID uint) (*models.Order, error) {
	var order models.Order
	err := svc.DB.WithContext(ctx).Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (svc *Service) ListOrders(ctx context.Context, userID *uint, status models.OrderStatus, offset, limit int) ([]models.Order, int64, error) {
	q := svc.DB.WithContext(ctx).Model(&models.Order{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := q.Preload("Items").Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ChangeStatus advances pending orders along the state machine. Completed
// and cancelled orders are never reopened.
func (svc *Service) ChangeStatus(ctx context.Context, orderID uint, next models.OrderStatus) (*models.Order, error) {
	if _, ok := models.ParseOrderStatus(string(next)); !ok {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, next)
	}

	var order models.Order
	err := svc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.Status.Terminal() {
			return ErrTerminalStatus
		}
		if next == models.OrderStatusPending {
			return fmt.Errorf("%w: cannot move back to pending", ErrValidation)
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).
			Update("status", next).Error; err != nil {
			return err
		}
		order.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOwn lets an order's owner cancel it while it is still pending. The
// pending guard sits in the UPDATE itself so a status change landing between
// a read and the write cannot be silently overridden.
func (svc *Service) CancelOwn(ctx context.Context, orderID, userID uint) (*models.Order, error) {
	res := svc.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND user_id = ? AND status = ?", orderID, userID, models.OrderStatusPending).
		Update("status", models.OrderStatusCancelled)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := svc.GetUserOrder(ctx, orderID, userID); err != nil {
			return nil, err
		}
		return nil, ErrTerminalStatus
	}
	return svc.GetUserOrder(ctx, orderID, userID)
}

type SalesTrend struct {
	Day         string  `json:"day"`
	TotalSales  float64 `json:"total_sales"`
	TotalOrders int64   `json:"total_orders"`
}

// SalesTrends groups orders by calendar day, oldest first.
func (svc *Service) SalesTrends(ctx context.Context) ([]SalesTrend, error) {
	var trends []SalesTrend
	err := svc.DB.WithContext(ctx).Model(&models.Order{}).
		Select("CAST(DATE(created_at) AS TEXT) AS day, SUM(total_amount) AS total_sales, COUNT(*) AS total_orders").
		Group("CAST(DATE(created_at) AS TEXT)").
		Order("day ASC").
		Scan(&trends).Error
	return trends, err
}

type TopProduct struct {
	ProductID     uint   `json:"product_id"`
	Name          string `json:"name"`
	TotalQuantity uint   `json:"total_quantity"`
}

// TopProducts ranks products by units sold across all orders.
func (svc *Service) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	var tops []TopProduct
	err := svc.DB.WithContext(ctx).Model(&models.OrderItem{}).
		Select("product_id, name, SUM(quantity) AS total_quantity").
		Group("product_id, name").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&tops).Error
	return tops, err
}

func (svc *Service) DeleteOrder(ctx context.Context, orderID uint) error {
	res := svc.DB.WithContext(ctx).Delete(&models.Order{}, orderID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return svc.DB.WithContext(ctx).Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error
}
