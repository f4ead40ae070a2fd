package messages

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/models"
)

// Visibility decides which messages a view shows. Nil means no filtering.
// The customer-facing tracker, for example, only keeps store-originated
// messages.
type Visibility func(models.OrderMessage) bool

// Subscription is an active push subscription for one order's thread.
type Subscription interface {
	Close() error
}

// EventSource opens push subscriptions scoped to one order's messages.
type EventSource interface {
	SubscribeMessages(orderID string, handler func(models.ChangeEvent) error) (Subscription, error)
}

// Thread is a deduplicated, time-ordered projection of one order's
// message thread, fed by a bulk history fetch plus pushed inserts.
type Thread struct {
	repo   Repository
	source EventSource

	mu         sync.Mutex
	orderID    string
	visibility Visibility
	msgs       []models.OrderMessage
	seen       map[string]struct{}
	sub        Subscription
}

func NewThread(repo Repository, source EventSource) *Thread {
	return &Thread{repo: repo, source: source, seen: map[string]struct{}{}}
}

// LoadHistory fetches the full thread for the order, sorted ascending by
// creation time and filtered by the visibility rule. It resets any
// previously loaded state.
func (t *Thread) LoadHistory(ctx context.Context, orderID string, visibility Visibility) ([]models.OrderMessage, error) {
	all, err := t.repo.MessagesForOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages for order %s: %w", orderID, err)
	}

	kept := make([]models.OrderMessage, 0, len(all))
	seen := make(map[string]struct{}, len(all))
	for _, m := range all {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		if visibility != nil && !visibility(m) {
			continue
		}
		kept = append(kept, m)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].CreatedAt.Before(kept[j].CreatedAt)
	})

	t.mu.Lock()
	t.orderID = orderID
	t.visibility = visibility
	t.msgs = kept
	t.seen = seen
	t.mu.Unlock()

	out := make([]models.OrderMessage, len(kept))
	copy(out, kept)
	return out, nil
}

// Subscribe opens the push channel for the order's messages. A pushed
// message whose id is already known is dropped; a new one is inserted in
// chronological position (pushes arrive near-chronological, but slight
// out-of-order delivery is tolerated) and onMessage is invoked.
func (t *Thread) Subscribe(orderID string, onMessage func(models.OrderMessage)) error {
	t.Unsubscribe()

	sub, err := t.source.SubscribeMessages(orderID, func(evt models.ChangeEvent) error {
		var m models.OrderMessage
		if err := json.Unmarshal(evt.Row, &m); err != nil {
			return fmt.Errorf("failed to decode message event: %w", err)
		}
		if m.ID == "" {
			log.Printf("✗ Dropping message event without id for order %s", orderID)
			return nil
		}

		t.mu.Lock()
		if t.orderID != orderID {
			t.mu.Unlock()
			return nil
		}
		if _, dup := t.seen[m.ID]; dup {
			t.mu.Unlock()
			return nil
		}
		t.seen[m.ID] = struct{}{}
		if t.visibility != nil && !t.visibility(m) {
			t.mu.Unlock()
			return nil
		}
		t.insertSorted(m)
		t.mu.Unlock()

		onMessage(m)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to messages for order %s: %w", orderID, err)
	}

	t.mu.Lock()
	t.sub = sub
	t.mu.Unlock()
	return nil
}

// Unsubscribe tears down the push channel; safe to call repeatedly.
func (t *Thread) Unsubscribe() {
	t.mu.Lock()
	sub := t.sub
	t.sub = nil
	t.mu.Unlock()

	if sub != nil {
		if err := sub.Close(); err != nil {
			log.Printf("✗ Failed to close message subscription: %v", err)
		}
	}
}

// Messages returns a copy of the current thread.
func (t *Thread) Messages() []models.OrderMessage {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.OrderMessage, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// Send appends a message remotely. The thread is NOT updated optimistically:
// the canonical id and timestamp come back through the push echo or the
// next history fetch, which avoids ghost entries. Failures propagate to
// the caller; no retry here.
func (t *Thread) Send(ctx context.Context, orderID, body string, sender models.SenderKind) error {
	msg := models.OrderMessage{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		Body:       body,
		SenderKind: sender,
		CreatedAt:  time.Now(),
	}
	if err := t.repo.Insert(ctx, msg); err != nil {
		return fmt.Errorf("failed to send message for order %s: %w", orderID, err)
	}
	return nil
}

// insertSorted keeps msgs ascending by CreatedAt. Called with t.mu held.
func (t *Thread) insertSorted(m models.OrderMessage) {
	idx := sort.Search(len(t.msgs), func(i int) bool {
		return t.msgs[i].CreatedAt.After(m.CreatedAt)
	})
	t.msgs = append(t.msgs, models.OrderMessage{})
	copy(t.msgs[idx+1:], t.msgs[idx:])
	t.msgs[idx] = m
}
