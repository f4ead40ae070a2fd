package catalog

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"storefront/models"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(pgdriver.New(pgdriver.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)

	return &Service{db: gdb}, mock
}

func TestActiveBannersOrderedByPosition(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM "home_banners" WHERE active = (.+) ORDER BY position ASC`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "image_url", "position", "active"}).
			AddRow("b1", "https://cdn/banner1.png", 1, true).
			AddRow("b2", "https://cdn/banner2.png", 2, true))

	banners, err := svc.ActiveBanners(context.Background())
	require.NoError(t, err)

	require.Len(t, banners, 2)
	assert.Equal(t, "b1", banners[0].ID)
	assert.Equal(t, 1, banners[0].Position)
	assert.Equal(t, "b2", banners[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivePopupNotFound(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM "popup_offers"`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "active"}))

	_, err := svc.ActivePopup(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrdersForSellerDefaultsMalformedStatus(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM "orders" WHERE seller_id = (.+) ORDER BY created_at DESC`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "customer_name", "created_at"}).
			AddRow("o1", "exploded", "Asha", time.Now()).
			AddRow("o2", "shipped", "Ravi", time.Now()))

	orders, err := svc.OrdersForSeller(context.Background(), "s1", 0)
	require.NoError(t, err)

	require.Len(t, orders, 2)
	// A status the client does not recognize is defaulted at the
	// boundary, not passed through.
	assert.Equal(t, models.StatusPending, orders[0].Status)
	assert.Equal(t, models.StatusShipped, orders[1].Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetOrderStatusRejectsUnknownStatus(t *testing.T) {
	svc, mock := newTestService(t)

	// No query expected: the write is rejected before touching the DB.
	err := svc.SetOrderStatus(context.Background(), "o1", models.OrderStatus("exploded"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown order status")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"p1", "p2"}, splitIDs("p1, p2"))
	assert.Equal(t, []string{"p1"}, splitIDs("p1,,  "))
	assert.Empty(t, splitIDs(""))
}
