package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/phone"
	"storefront/models"
)

var (
	ErrNotFound          = errors.New("tracking: order not found")
	ErrInvalidTransition = errors.New("tracking: order can no longer be cancelled")
	ErrBadCriteria       = errors.New("tracking: lookup needs an order id or a phone number")
)

// Subscription is an active push subscription for one order.
type Subscription interface {
	Close() error
}

// EventSource opens push subscriptions scoped to a single order row.
type EventSource interface {
	SubscribeOrder(orderID string, handler func(models.ChangeEvent) error) (Subscription, error)
}

// Criteria selects the order to track: an explicit id, or a phone number
// that resolves to the customer's most recent order.
type Criteria struct {
	OrderID string
	Phone   string
}

// Result is everything a successful lookup returns.
type Result struct {
	Projection Projection
	Items      []models.OrderItem
	Messages   []models.OrderMessage
}

// Sync keeps a live projection of one order, fed by direct lookups and by
// pushed row changes. At most one subscription is active at a time; the
// consuming view unsubscribes before tracking a different order.
type Sync struct {
	repo   Repository
	source EventSource

	mu   sync.Mutex
	proj *Projection
	sub  Subscription
}

func NewSync(repo Repository, source EventSource) *Sync {
	return &Sync{repo: repo, source: source}
}

// Lookup resolves the criteria to an order and seeds the local
// projection. Phone input is normalized first; an invalid number fails
// before any remote call.
func (s *Sync) Lookup(ctx context.Context, c Criteria) (*Result, error) {
	var (
		order *models.Order
		err   error
	)
	switch {
	case c.OrderID != "":
		order, err = s.repo.OrderByID(ctx, c.OrderID)
	case c.Phone != "":
		var normalized string
		normalized, err = phone.Normalize(c.Phone)
		if err != nil {
			return nil, err
		}
		order, err = s.repo.LatestOrderByPhone(ctx, normalized)
	default:
		return nil, ErrBadCriteria
	}
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ItemsForOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	msgs, err := s.repo.MessagesForOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order messages: %w", err)
	}

	proj := projectionFromOrder(*order)

	s.mu.Lock()
	s.proj = &proj
	s.mu.Unlock()

	return &Result{Projection: proj, Items: items, Messages: msgs}, nil
}

// Projection returns a copy of the current projection, or false if no
// lookup has succeeded yet.
func (s *Sync) Projection() (Projection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proj == nil {
		return Projection{}, false
	}
	return *s.proj, true
}

// Subscribe opens the push channel for the order. Each received event is
// shallow-merged into the projection and onUpdate is invoked with the
// merged copy. A previous subscription is torn down first.
func (s *Sync) Subscribe(orderID string, onUpdate func(Projection)) error {
	s.Unsubscribe()

	sub, err := s.source.SubscribeOrder(orderID, func(evt models.ChangeEvent) error {
		var patch Patch
		if err := json.Unmarshal(evt.Row, &patch); err != nil {
			return fmt.Errorf("failed to decode order patch: %w", err)
		}

		s.mu.Lock()
		if s.proj == nil || s.proj.OrderID != orderID {
			// Stale event for a view no longer displayed.
			s.mu.Unlock()
			return nil
		}
		s.proj.ApplyPatch(patch)
		merged := *s.proj
		s.mu.Unlock()

		log.Printf("📦 Order %s updated: status=%s", orderID, merged.Status)
		onUpdate(merged)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to order %s: %w", orderID, err)
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
	return nil
}

// Unsubscribe tears down the push channel. Safe to call repeatedly or
// without a prior Subscribe.
func (s *Sync) Unsubscribe() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil {
		if err := sub.Close(); err != nil {
			log.Printf("✗ Failed to close order subscription: %v", err)
		}
	}
}

// Cancel cancels the order if it has not progressed past packing. The
// status gate is checked against the freshest state available before any
// write; a disallowed state returns ErrInvalidTransition and mutates
// nothing, locally or remotely.
func (s *Sync) Cancel(ctx context.Context, orderID string) error {
	status, err := s.currentStatus(ctx, orderID)
	if err != nil {
		return err
	}
	if !status.Cancellable() {
		return fmt.Errorf("%w: status is %s", ErrInvalidTransition, status)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, models.StatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel order %s: %w", orderID, err)
	}

	// The remote status is cancelled at this point; reflect it locally
	// even if appending the note below fails.
	s.mu.Lock()
	if s.proj != nil && s.proj.OrderID == orderID {
		s.proj.Status = models.StatusCancelled
	}
	s.mu.Unlock()

	note := models.OrderMessage{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		Body:       "Order was cancelled by the customer.",
		SenderKind: models.SenderAdmin,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.InsertMessage(ctx, note); err != nil {
		return fmt.Errorf("order %s cancelled, but failed to append cancellation note: %w", orderID, err)
	}

	log.Printf("✓ Order cancelled: order_id=%s", orderID)
	return nil
}

func (s *Sync) currentStatus(ctx context.Context, orderID string) (models.OrderStatus, error) {
	s.mu.Lock()
	if s.proj != nil && s.proj.OrderID == orderID {
		status := s.proj.Status
		s.mu.Unlock()
		return status, nil
	}
	s.mu.Unlock()

	order, err := s.repo.OrderByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	return order.Status, nil
}
