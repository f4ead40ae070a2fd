// Package workers feeds the seller-dashboard analytics store from the
// order change-event stream.
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"storefront/internal/clickhouse"
	"storefront/internal/postgres"
	"storefront/internal/realtime"
	"storefront/models"
)

const dateKeyLayout = "02012006" // ddMMYYYY

// AnalyticsWorker consumes order change events, re-queries the
// authoritative rows from Postgres and writes revenue/unit deltas to
// ClickHouse. Cancellations produce compensating negative deltas.
type AnalyticsWorker struct {
	channel   *realtime.Channel
	chClient  *clickhouse.Client
	pgClient  *postgres.Client
	queueName string
	sub       *realtime.Subscription
}

func NewAnalyticsWorker(channel *realtime.Channel, chClient *clickhouse.Client, pgClient *postgres.Client, queueName string) *AnalyticsWorker {
	return &AnalyticsWorker{
		channel:   channel,
		chClient:  chClient,
		pgClient:  pgClient,
		queueName: queueName,
	}
}

func (w *AnalyticsWorker) Start() error {
	log.Printf("🚀 Starting Analytics Worker for queue: %s", w.queueName)
	sub, err := w.channel.Subscribe(w.queueName, models.Order{}.TableName(), "id", "", w.handleEvent)
	if err != nil {
		return err
	}
	w.sub = sub
	return nil
}

func (w *AnalyticsWorker) Stop() {
	if w.sub != nil {
		w.sub.Close()
	}
}

func (w *AnalyticsWorker) handleEvent(evt models.ChangeEvent) error {
	var order models.Order
	if err := json.Unmarshal(evt.Row, &order); err != nil {
		return fmt.Errorf("failed to unmarshal order event: %w", err)
	}
	if order.ID == "" {
		log.Printf("✗ Dropping order event without id")
		return nil
	}

	log.Printf("📦 Processing Order Event: kind=%s, order_id=%s, status=%s", evt.Kind, order.ID, order.Status)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if evt.Kind == models.EventUpdate && order.Status == models.StatusCancelled {
		return w.recordCancel(ctx, order)
	}
	return w.recordUpsert(ctx, evt.Kind, order)
}

func (w *AnalyticsWorker) recordUpsert(ctx context.Context, kind string, order models.Order) error {
	// Re-query items from Postgres; the event payload is just the order row.
	items, err := w.queryItems(ctx, order.ID)
	if err != nil {
		return err
	}

	revenue := 0.0
	for _, it := range items {
		price, _ := it.UnitPrice.Float64()
		revenue += price * float64(it.Quantity)
	}

	now := time.Now()
	eventType := "update"
	deltaOrders := int32(0)
	deltaRevenue := 0.0
	if kind == models.EventInsert {
		eventType = "create"
		deltaOrders = 1
		deltaRevenue = revenue
	}

	sellerKey := ""
	if order.SellerID != nil {
		sellerKey = *order.SellerID
	}
	dateKey := order.CreatedAt.Format(dateKeyLayout)

	if err := w.chClient.InsertOrderDelta(ctx, clickhouse.OrderDelta{
		OrderID:      order.ID,
		DateKey:      dateKey,
		SellerKey:    sellerKey,
		Status:       string(order.Status),
		DeltaRevenue: deltaRevenue,
		DeltaOrders:  deltaOrders,
		EventType:    eventType,
		EventTime:    now,
	}); err != nil {
		return fmt.Errorf("failed to insert order delta: %w", err)
	}

	if kind == models.EventInsert {
		for _, it := range items {
			price, _ := it.UnitPrice.Float64()
			variantKey := ""
			if it.VariantID != nil {
				variantKey = *it.VariantID
			}
			if err := w.chClient.InsertProductDelta(ctx, clickhouse.ProductDelta{
				OrderID:      order.ID,
				ProductKey:   it.ProductID,
				VariantKey:   variantKey,
				DateKey:      dateKey,
				SellerKey:    sellerKey,
				DeltaRevenue: price * float64(it.Quantity),
				DeltaUnits:   int32(it.Quantity),
				EventType:    eventType,
				EventTime:    now,
			}); err != nil {
				log.Printf("✗ Failed to insert product delta for %s: %v", it.ProductID, err)
				// Continue with the other items
			}
		}
	}

	log.Printf("✓ Order event recorded: order_id=%s, event=%s, delta_revenue=%.2f", order.ID, eventType, deltaRevenue)
	return nil
}

func (w *AnalyticsWorker) recordCancel(ctx context.Context, order models.Order) error {
	metrics, err := w.chClient.QueryOrderMetrics(ctx, order.ID)
	if err != nil {
		log.Printf("Order %s not found in fact stream for cancel, skipping", order.ID)
		return nil
	}

	sellerKey := ""
	if order.SellerID != nil {
		sellerKey = *order.SellerID
	}

	if err := w.chClient.InsertOrderDelta(ctx, clickhouse.OrderDelta{
		OrderID:      order.ID,
		DateKey:      order.CreatedAt.Format(dateKeyLayout),
		SellerKey:    sellerKey,
		Status:       string(models.StatusCancelled),
		DeltaRevenue: -metrics.TotalRevenue,
		DeltaOrders:  -metrics.TotalOrders,
		EventType:    "cancel",
		EventTime:    time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to insert cancel delta: %w", err)
	}

	log.Printf("✓ Order cancellation recorded: order_id=%s", order.ID)
	return nil
}

func (w *AnalyticsWorker) queryItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	maxRetries := 3
	retryDelay := 100 * time.Millisecond

	// The order row can land in the event stream before its items commit;
	// retry briefly before giving up.
	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			time.Sleep(retryDelay)
			retryDelay *= 2
		}

		err := w.pgClient.DB().WithContext(ctx).
			Where("order_id = ?", orderID).
			Find(&items).Error
		if err == nil {
			return items, nil
		}

		if i == maxRetries-1 {
			return nil, fmt.Errorf("failed to query items for order %s after %d retries: %w", orderID, maxRetries, err)
		}
		log.Printf("Retry %d/%d: items for order %s not ready, retrying...", i+1, maxRetries, orderID)
	}
	return items, nil
}
