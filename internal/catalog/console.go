package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront/models"
)

// Role checks and order writes used by the seller and delivery-boy
// consoles. A missing row means the authenticated user does not hold the
// role, surfaced as ErrNotFound.

func (s *Service) SellerByAuthID(ctx context.Context, authID string) (*models.Seller, error) {
	var seller models.Seller
	err := s.db.WithContext(ctx).First(&seller, "auth_id = ?", authID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

func (s *Service) DeliveryBoyByAuthID(ctx context.Context, authID string) (*models.DeliveryBoy, error) {
	var boy models.DeliveryBoy
	err := s.db.WithContext(ctx).First(&boy, "auth_id = ?", authID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &boy, nil
}

// OrdersForSeller lists a seller's orders, newest first.
func (s *Service) OrdersForSeller(ctx context.Context, sellerID string, limit int) ([]models.Order, error) {
	var out []models.Order
	q := s.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}

// OrdersForDeliveryBoy lists the orders assigned to a delivery boy that
// are still in flight.
func (s *Service) OrdersForDeliveryBoy(ctx context.Context, deliveryBoyID string) ([]models.Order, error) {
	var out []models.Order
	return out, s.db.WithContext(ctx).
		Where("delivery_boy_id = ? AND status IN ?", deliveryBoyID,
			[]models.OrderStatus{models.StatusPacked, models.StatusShipped}).
		Order("created_at ASC").
		Find(&out).Error
}

// SetOrderStatus writes a console-driven status transition. The backend
// owns the progression; no ordering validation happens here beyond
// rejecting unknown status values at the boundary.
func (s *Service) SetOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	if !status.IsValid() {
		return errors.New("catalog: unknown order status " + string(status))
	}
	return s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}

// AssignDeliveryBoy attaches a delivery boy to an order.
func (s *Service) AssignDeliveryBoy(ctx context.Context, orderID, deliveryBoyID string) error {
	return s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("delivery_boy_id", deliveryBoyID).Error
}
