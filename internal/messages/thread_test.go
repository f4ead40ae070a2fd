package messages

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/models"
)

type fakeRepo struct {
	history   []models.OrderMessage
	inserted  []models.OrderMessage
	insertErr error
}

func (f *fakeRepo) MessagesForOrder(_ context.Context, orderID string) ([]models.OrderMessage, error) {
	var out []models.OrderMessage
	for _, m := range f.history {
		if m.OrderID == orderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) Insert(_ context.Context, msg models.OrderMessage) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, msg)
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

func (f *fakeSource) SubscribeMessages(_ string, handler func(models.ChangeEvent) error) (Subscription, error) {
	f.handler = handler
	sub := &fakeSub{}
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeSource) push(t *testing.T, m models.OrderMessage) {
	t.Helper()
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, f.handler(models.ChangeEvent{
		Kind:  models.EventInsert,
		Table: "order_messages",
		Row:   raw,
	}))
}

func msg(id, orderID string, sender models.SenderKind, at time.Time) models.OrderMessage {
	return models.OrderMessage{
		ID:         id,
		OrderID:    orderID,
		Body:       "body " + id,
		SenderKind: sender,
		CreatedAt:  at,
	}
}

func TestLoadHistorySortsAscending(t *testing.T) {
	base := time.Now()
	repo := &fakeRepo{history: []models.OrderMessage{
		msg("m2", "o1", models.SenderAdmin, base.Add(2*time.Minute)),
		msg("m1", "o1", models.SenderCustomer, base),
		msg("m3", "o1", models.SenderDeliveryBoy, base.Add(time.Minute)),
	}}

	thread := NewThread(repo, &fakeSource{})
	got, err := thread.LoadHistory(context.Background(), "o1", nil)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "m3", got[1].ID)
	assert.Equal(t, "m2", got[2].ID)
}

func TestLoadHistoryAppliesVisibility(t *testing.T) {
	base := time.Now()
	repo := &fakeRepo{history: []models.OrderMessage{
		msg("m1", "o1", models.SenderCustomer, base),
		msg("m2", "o1", models.SenderAdmin, base.Add(time.Minute)),
	}}

	storeOriginated := func(m models.OrderMessage) bool {
		return m.SenderKind != models.SenderCustomer
	}

	thread := NewThread(repo, &fakeSource{})
	got, err := thread.LoadHistory(context.Background(), "o1", storeOriginated)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "m2", got[0].ID)
}

func TestPushedDuplicateIsDropped(t *testing.T) {
	base := time.Now()
	repo := &fakeRepo{history: []models.OrderMessage{
		msg("m1", "o1", models.SenderAdmin, base),
	}}
	source := &fakeSource{}

	thread := NewThread(repo, source)
	_, err := thread.LoadHistory(context.Background(), "o1", nil)
	require.NoError(t, err)

	var delivered []models.OrderMessage
	require.NoError(t, thread.Subscribe("o1", func(m models.OrderMessage) {
		delivered = append(delivered, m)
	}))

	source.push(t, msg("m1", "o1", models.SenderAdmin, base))

	assert.Empty(t, delivered)
	assert.Len(t, thread.Messages(), 1)
}

func TestPushedOutOfOrderInsertsChronologically(t *testing.T) {
	base := time.Now()
	repo := &fakeRepo{history: []models.OrderMessage{
		msg("m1", "o1", models.SenderCustomer, base),
		msg("m3", "o1", models.SenderAdmin, base.Add(2*time.Minute)),
	}}
	source := &fakeSource{}

	thread := NewThread(repo, source)
	_, err := thread.LoadHistory(context.Background(), "o1", nil)
	require.NoError(t, err)
	require.NoError(t, thread.Subscribe("o1", func(models.OrderMessage) {}))

	// m2 arrives after m3 but was created earlier.
	source.push(t, msg("m2", "o1", models.SenderAdmin, base.Add(time.Minute)))

	got := thread.Messages()
	require.Len(t, got, 3)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "m2", got[1].ID)
	assert.Equal(t, "m3", got[2].ID)
}

func TestPushedMessageRespectsVisibility(t *testing.T) {
	repo := &fakeRepo{}
	source := &fakeSource{}

	storeOriginated := func(m models.OrderMessage) bool {
		return m.SenderKind != models.SenderCustomer
	}

	thread := NewThread(repo, source)
	_, err := thread.LoadHistory(context.Background(), "o1", storeOriginated)
	require.NoError(t, err)

	var delivered []models.OrderMessage
	require.NoError(t, thread.Subscribe("o1", func(m models.OrderMessage) {
		delivered = append(delivered, m)
	}))

	source.push(t, msg("m1", "o1", models.SenderCustomer, time.Now()))
	source.push(t, msg("m2", "o1", models.SenderAdmin, time.Now()))

	require.Len(t, delivered, 1)
	assert.Equal(t, "m2", delivered[0].ID)
	assert.Len(t, thread.Messages(), 1)
}

func TestSendDoesNotInsertOptimistically(t *testing.T) {
	repo := &fakeRepo{}
	thread := NewThread(repo, &fakeSource{})

	_, err := thread.LoadHistory(context.Background(), "o1", nil)
	require.NoError(t, err)

	require.NoError(t, thread.Send(context.Background(), "o1", "on my way", models.SenderDeliveryBoy))

	// The remote write happened, the local thread waits for the echo.
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, "on my way", repo.inserted[0].Body)
	assert.NotEmpty(t, repo.inserted[0].ID)
	assert.Empty(t, thread.Messages())
}

func TestSendFailurePropagates(t *testing.T) {
	repo := &fakeRepo{insertErr: errors.New("permission denied")}
	thread := NewThread(repo, &fakeSource{})

	err := thread.Send(context.Background(), "o1", "hello", models.SenderCustomer)
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.insertErr)
}

func TestResubscribeClosesPrevious(t *testing.T) {
	source := &fakeSource{}
	thread := NewThread(&fakeRepo{}, source)

	require.NoError(t, thread.Subscribe("o1", func(models.OrderMessage) {}))
	require.NoError(t, thread.Subscribe("o2", func(models.OrderMessage) {}))
	thread.Unsubscribe()
	thread.Unsubscribe()

	require.Len(t, source.subs, 2)
	assert.Equal(t, 1, source.subs[0].closes)
	assert.Equal(t, 1, source.subs[1].closes)
}
