package tracking

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront/internal/postgres"
	"storefront/models"
)

// Repository is the slice of the remote table interface this package
// needs. The Postgres implementation below is the production one; tests
// substitute an in-memory fake.
type Repository interface {
	OrderByID(ctx context.Context, id string) (*models.Order, error)
	LatestOrderByPhone(ctx context.Context, phone string) (*models.Order, error)
	ItemsForOrder(ctx context.Context, orderID string) ([]models.OrderItem, error)
	MessagesForOrder(ctx context.Context, orderID string) ([]models.OrderMessage, error)
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error
	InsertMessage(ctx context.Context, msg models.OrderMessage) error
}

type postgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(client *postgres.Client) Repository {
	return &postgresRepository{db: client.DB()}
}

func (r *postgresRepository) OrderByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepository) LatestOrderByPhone(ctx context.Context, phoneNumber string) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).
		Where("customer_phone = ?", phoneNumber).
		Order("created_at DESC").
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepository) ItemsForOrder(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *postgresRepository) MessagesForOrder(ctx context.Context, orderID string) ([]models.OrderMessage, error) {
	var msgs []models.OrderMessage
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}

func (r *postgresRepository) InsertMessage(ctx context.Context, msg models.OrderMessage) error {
	return r.db.WithContext(ctx).Create(&msg).Error
}
