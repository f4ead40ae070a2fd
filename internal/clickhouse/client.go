package clickhouse

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"storefront/config"
)

type Client struct {
	conn     driver.Conn
	database string
}

func NewClient(cfg config.ClickHouseConfig) (*Client, error) {
	opts := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		DialTimeout:  time.Second * 30,
	}

	// Native protocol on 9000 runs without TLS; 8443 is the HTTPS port.
	if cfg.Port == 8443 {
		opts.TLS = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &Client{
		conn:     conn,
		database: cfg.Database,
	}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// OrderDelta is one row of the seller-dashboard order fact stream.
type OrderDelta struct {
	OrderID      string
	DateKey      string
	SellerKey    string
	Status       string
	DeltaRevenue float64
	DeltaOrders  int32
	EventType    string
	EventTime    time.Time
}

// ProductDelta is one row of the per-product sales fact stream.
type ProductDelta struct {
	OrderID      string
	ProductKey   string
	VariantKey   string
	DateKey      string
	SellerKey    string
	DeltaRevenue float64
	DeltaUnits   int32
	EventType    string
	EventTime    time.Time
}

// InsertOrderDelta appends an order delta row.
func (c *Client) InsertOrderDelta(ctx context.Context, d OrderDelta) error {
	query := fmt.Sprintf(`
		INSERT INTO %s.Fact_Order_Delta (
			order_id, date_key, seller_key, status,
			delta_revenue, delta_orders, event_type, event_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.database)

	return c.conn.Exec(ctx, query,
		d.OrderID, d.DateKey, d.SellerKey, d.Status,
		d.DeltaRevenue, d.DeltaOrders, d.EventType, d.EventTime,
	)
}

// InsertProductDelta appends a per-product sales delta row.
func (c *Client) InsertProductDelta(ctx context.Context, d ProductDelta) error {
	query := fmt.Sprintf(`
		INSERT INTO %s.Fact_Product_Delta (
			order_id, product_key, variant_key, date_key, seller_key,
			delta_revenue, delta_units, event_type, event_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.database)

	return c.conn.Exec(ctx, query,
		d.OrderID, d.ProductKey, d.VariantKey, d.DateKey, d.SellerKey,
		d.DeltaRevenue, d.DeltaUnits, d.EventType, d.EventTime,
	)
}

// OrderMetrics are the last recorded totals for one order, used to build
// a compensating delta on cancellation.
type OrderMetrics struct {
	TotalRevenue float64
	TotalOrders  int32
}

// QueryOrderMetrics sums the recorded deltas for an order.
func (c *Client) QueryOrderMetrics(ctx context.Context, orderID string) (*OrderMetrics, error) {
	query := fmt.Sprintf(`
		SELECT
			SUM(delta_revenue) AS total_revenue,
			SUM(delta_orders) AS total_orders
		FROM %s.Fact_Order_Delta
		WHERE order_id = ?
	`, c.database)

	row := c.conn.QueryRow(ctx, query, orderID)

	var m OrderMetrics
	if err := row.Scan(&m.TotalRevenue, &m.TotalOrders); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) Conn() driver.Conn {
	return c.conn
}
