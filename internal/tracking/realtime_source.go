package tracking

import (
	"storefront/internal/realtime"
	"storefront/models"
)

// RealtimeSource adapts the broker-backed realtime channel to the
// EventSource this package consumes.
type RealtimeSource struct {
	Channel *realtime.Channel
	Queue   string
}

func (r RealtimeSource) SubscribeOrder(orderID string, handler func(models.ChangeEvent) error) (Subscription, error) {
	return r.Channel.Subscribe(r.Queue, models.Order{}.TableName(), "id", orderID, realtime.Handler(handler))
}
