package messages

import (
	"context"

	"gorm.io/gorm"

	"storefront/internal/postgres"
	"storefront/internal/realtime"
	"storefront/models"
)

// Repository is the slice of the remote table interface this package
// needs; tests substitute an in-memory fake.
type Repository interface {
	MessagesForOrder(ctx context.Context, orderID string) ([]models.OrderMessage, error)
	Insert(ctx context.Context, msg models.OrderMessage) error
}

type postgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(client *postgres.Client) Repository {
	return &postgresRepository{db: client.DB()}
}

func (r *postgresRepository) MessagesForOrder(ctx context.Context, orderID string) ([]models.OrderMessage, error) {
	var msgs []models.OrderMessage
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *postgresRepository) Insert(ctx context.Context, msg models.OrderMessage) error {
	return r.db.WithContext(ctx).Create(&msg).Error
}

// RealtimeSource adapts the broker-backed realtime channel to the
// EventSource this package consumes.
type RealtimeSource struct {
	Channel *realtime.Channel
	Queue   string
}

func (r RealtimeSource) SubscribeMessages(orderID string, handler func(models.ChangeEvent) error) (Subscription, error) {
	return r.Channel.Subscribe(r.Queue, models.OrderMessage{}.TableName(), "order_id", orderID, realtime.Handler(handler))
}
