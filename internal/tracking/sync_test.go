package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/models"
)

type fakeRepo struct {
	orders        map[string]models.Order
	items         map[string][]models.OrderItem
	msgs          map[string][]models.OrderMessage
	statusWrites  []models.OrderStatus
	insertedNotes []models.OrderMessage
	updateErr     error
	insertErr     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: map[string]models.Order{},
		items:  map[string][]models.OrderItem{},
		msgs:   map[string][]models.OrderMessage{},
	}
}

func (f *fakeRepo) OrderByID(_ context.Context, id string) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (f *fakeRepo) LatestOrderByPhone(_ context.Context, phone string) (*models.Order, error) {
	var latest *models.Order
	for id := range f.orders {
		o := f.orders[id]
		if o.CustomerPhone != phone {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = &o
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (f *fakeRepo) ItemsForOrder(_ context.Context, orderID string) ([]models.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeRepo) MessagesForOrder(_ context.Context, orderID string) ([]models.OrderMessage, error) {
	return f.msgs[orderID], nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, orderID string, status models.OrderStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	o, ok := f.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	f.orders[orderID] = o
	f.statusWrites = append(f.statusWrites, status)
	return nil
}

func (f *fakeRepo) InsertMessage(_ context.Context, msg models.OrderMessage) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.insertedNotes = append(f.insertedNotes, msg)
	f.msgs[msg.OrderID] = append(f.msgs[msg.OrderID], msg)
	return nil
}

type fakeSub struct {
	closes int
}

func (s *fakeSub) Close() error {
	s.closes++
	return nil
}

type fakeSource struct {
	handler func(models.ChangeEvent) error
	subs    []*fakeSub
}

func (f *fakeSource) SubscribeOrder(_ string, handler func(models.ChangeEvent) error) (Subscription, error) {
	f.handler = handler
	sub := &fakeSub{}
	f.subs = append(f.subs, sub)
	return sub, nil
}

// push simulates the backend delivering an order row change.
func (f *fakeSource) push(t *testing.T, row interface{}) {
	t.Helper()
	raw, err := json.Marshal(row)
	require.NoError(t, err)
	require.NoError(t, f.handler(models.ChangeEvent{
		Kind:  models.EventUpdate,
		Table: "orders",
		Row:   raw,
	}))
}

func seedOrder(repo *fakeRepo, id string, status models.OrderStatus) models.Order {
	o := models.Order{
		ID:            id,
		Status:        status,
		CustomerName:  "Asha",
		CustomerPhone: "9812345670",
		Address:       "12 MG Road",
		City:          "Pune",
		PaymentMethod: "cod",
		TotalAmount:   decimal.RequireFromString("250"),
		CreatedAt:     time.Now(),
	}
	repo.orders[id] = o
	return o
}

func TestLookupByID(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "o1", models.StatusPending)
	repo.items["o1"] = []models.OrderItem{{ID: "i1", OrderID: "o1", Quantity: 2}}
	repo.msgs["o1"] = []models.OrderMessage{{ID: "m1", OrderID: "o1"}}

	sync := NewSync(repo, &fakeSource{})
	res, err := sync.Lookup(context.Background(), Criteria{OrderID: "o1"})
	require.NoError(t, err)

	assert.Equal(t, "o1", res.Projection.OrderID)
	assert.Equal(t, models.StatusPending, res.Projection.Status)
	assert.Len(t, res.Items, 1)
	assert.Len(t, res.Messages, 1)
}

func TestLookupByPhonePicksMostRecent(t *testing.T) {
	repo := newFakeRepo()
	older := seedOrder(repo, "o1", models.StatusDelivered)
	older.CreatedAt = time.Now().Add(-48 * time.Hour)
	repo.orders["o1"] = older
	seedOrder(repo, "o2", models.StatusPending)

	sync := NewSync(repo, &fakeSource{})
	res, err := sync.Lookup(context.Background(), Criteria{Phone: "+91 98123-45670"})
	require.NoError(t, err)
	assert.Equal(t, "o2", res.Projection.OrderID)
}

func TestLookupInvalidPhoneFailsBeforeRemoteCall(t *testing.T) {
	sync := NewSync(newFakeRepo(), &fakeSource{})
	_, err := sync.Lookup(context.Background(), Criteria{Phone: "1234567890"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestLookupNotFound(t *testing.T) {
	sync := NewSync(newFakeRepo(), &fakeSource{})
	_, err := sync.Lookup(context.Background(), Criteria{OrderID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupNeedsCriteria(t *testing.T) {
	sync := NewSync(newFakeRepo(), &fakeSource{})
	_, err := sync.Lookup(context.Background(), Criteria{})
	assert.ErrorIs(t, err, ErrBadCriteria)
}

func TestPushedUpdateMergesIntoProjection(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "o1", models.StatusPending)
	source := &fakeSource{}
	sync := NewSync(repo, source)

	_, err := sync.Lookup(context.Background(), Criteria{OrderID: "o1"})
	require.NoError(t, err)

	var seen []Projection
	require.NoError(t, sync.Subscribe("o1", func(p Projection) {
		seen = append(seen, p)
	}))

	source.push(t, map[string]string{"status": "shipped"})

	require.Len(t, seen, 1)
	assert.Equal(t, models.StatusShipped, seen[0].Status)
	// Fields absent from the patch keep their looked-up values.
	assert.Equal(t, "Asha", seen[0].CustomerName)
	assert.Equal(t, "Pune", seen[0].City)

	proj, ok := sync.Projection()
	require.True(t, ok)
	assert.Equal(t, models.StatusShipped, proj.Status)
}

func TestPushedUpdateOverwritesWithoutOrderingCheck(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "o1", models.StatusPending)
	source := &fakeSource{}
	sync := NewSync(repo, source)

	_, err := sync.Lookup(context.Background(), Criteria{OrderID: "o1"})
	require.NoError(t, err)
	require.NoError(t, sync.Subscribe("o1", func(Projection) {}))

	// The backend is authoritative: a "stale-looking" push still applies.
	source.push(t, map[string]string{"status": "shipped"})
	source.push(t, map[string]string{"status": "confirmed"})

	proj, _ := sync.Projection()
	assert.Equal(t, models.StatusConfirmed, proj.Status)
}

func TestPushedUnknownStatusIsDropped(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "o1", models.StatusConfirmed)
	source := &fakeSource{}
	sync := NewSync(repo, source)

	_, err := sync.Lookup(context.Background(), Criteria{OrderID: "o1"})
	require.NoError(t, err)
	require.NoError(t, sync.Subscribe("o1", func(Projection) {}))

	source.push(t, map[string]string{"status": "exploded", "city": "Mumbai"})

	proj, _ := sync.Projection()
	assert.Equal(t, models.StatusConfirmed, proj.Status)
	assert.Equal(t, "Mumbai", proj.City)
}

func TestResubscribeClosesPreviousSubscription(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "o1", models.StatusPending)
	source := &fakeSource{}
	sync := NewSync(repo, source)

	require.NoError(t, sync.Subscribe("o1", func(Projection) {}))
	require.NoError(t, sync.Subscribe("o1", func(Projection) {}))

	require.Len(t, source.subs, 2)
	assert.Equal(t, 1, source.subs[0].closes)
	assert.Equal(t, 0, source.subs[1].closes)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	source := &fakeSource{}
	sync := NewSync(repo, source)

	sync.Unsubscribe() // nothing subscribed yet

	require.NoError(t, sync.Subscribe("o1", func(Projection) {}))
	sync.Unsubscribe()
	sync.Unsubscribe()

	require.Len(t, source.subs, 1)
	assert.Equal(t, 1, source.subs[0].closes)
}

func TestCancelAllowedWhileConfirmed(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "o1", models.StatusConfirmed)
	sync := NewSync(repo, &fakeSource{})

	_, err := sync.Lookup(context.Background(), Criteria{OrderID: "o1"})
	require.NoError(t, err)

	require.NoError(t, sync.Cancel(context.Background(), "o1"))

	assert.Equal(t, models.StatusCancelled, repo.orders["o1"].Status)
	proj, _ := sync.Projection()
	assert.Equal(t, models.StatusCancelled, proj.Status)

	// A system-authored note lands in the thread.
	require.Len(t, repo.insertedNotes, 1)
	assert.Equal(t, "o1", repo.insertedNotes[0].OrderID)
	assert.NotEmpty(t, repo.insertedNotes[0].ID)
}

func TestCancelRejectedOnceShipped(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "o1", models.StatusShipped)
	sync := NewSync(repo, &fakeSource{})

	_, err := sync.Lookup(context.Background(), Criteria{OrderID: "o1"})
	require.NoError(t, err)

	err = sync.Cancel(context.Background(), "o1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Nothing changed, locally or remotely.
	assert.Equal(t, models.StatusShipped, repo.orders["o1"].Status)
	assert.Empty(t, repo.statusWrites)
	assert.Empty(t, repo.insertedNotes)
	proj, _ := sync.Projection()
	assert.Equal(t, models.StatusShipped, proj.Status)
}

func TestCancelWithoutLookupFetchesStatus(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "o1", models.StatusCancelled)
	sync := NewSync(repo, &fakeSource{})

	err := sync.Cancel(context.Background(), "o1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelNoteFailurePropagates(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "o1", models.StatusConfirmed)
	repo.insertErr = errors.New("permission denied")
	sync := NewSync(repo, &fakeSource{})

	_, err := sync.Lookup(context.Background(), Criteria{OrderID: "o1"})
	require.NoError(t, err)

	// The cancellation note is part of the contract: its failure surfaces
	// even though the status write itself succeeded.
	err = sync.Cancel(context.Background(), "o1")
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.insertErr)

	assert.Equal(t, models.StatusCancelled, repo.orders["o1"].Status)
	proj, _ := sync.Projection()
	assert.Equal(t, models.StatusCancelled, proj.Status)
}

func TestCancelRemoteFailurePropagates(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "o1", models.StatusPending)
	repo.updateErr = errors.New("connection reset")
	sync := NewSync(repo, &fakeSource{})

	_, err := sync.Lookup(context.Background(), Criteria{OrderID: "o1"})
	require.NoError(t, err)

	err = sync.Cancel(context.Background(), "o1")
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.updateErr)
}
