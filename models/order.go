package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a row in the orders table. Customer and address fields are
// snapshots taken at checkout.
type Order struct {
	ID            string          `json:"id" gorm:"column:id;primaryKey"`
	Status        OrderStatus     `json:"status" gorm:"column:status"`
	CustomerName  string          `json:"customer_name" gorm:"column:customer_name"`
	CustomerPhone string          `json:"customer_phone" gorm:"column:customer_phone"`
	Address       string          `json:"address" gorm:"column:address"`
	City          string          `json:"city" gorm:"column:city"`
	Pincode       string          `json:"pincode" gorm:"column:pincode"`
	PaymentMethod string          `json:"payment_method" gorm:"column:payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"column:total_amount"`
	SellerID      *string         `json:"seller_id" gorm:"column:seller_id"`
	DeliveryBoyID *string         `json:"delivery_boy_id" gorm:"column:delivery_boy_id"`
	CreatedAt     time.Time       `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"column:updated_at"`
}

func (Order) TableName() string { return "orders" }

// AfterFind defaults a status value the client does not recognize
// instead of propagating it inward.
func (o *Order) AfterFind(_ *gorm.DB) error {
	if !o.Status.IsValid() {
		o.Status = StatusPending
	}
	return nil
}

// OrderItem is a row in the order_items table: one purchased line,
// price and name frozen at checkout.
type OrderItem struct {
	ID        string          `json:"id" gorm:"column:id;primaryKey"`
	OrderID   string          `json:"order_id" gorm:"column:order_id"`
	ProductID string          `json:"product_id" gorm:"column:product_id"`
	VariantID *string         `json:"variant_id" gorm:"column:variant_id"`
	Name      string          `json:"name" gorm:"column:name"`
	ImageURL  string          `json:"image_url" gorm:"column:image_url"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"column:unit_price"`
	Quantity  int             `json:"quantity" gorm:"column:quantity"`
	CreatedAt time.Time       `json:"created_at" gorm:"column:created_at"`
}

func (OrderItem) TableName() string { return "order_items" }

// OrderMessage is a row in the order_messages table (the chat thread
// between customer, admin and delivery boy for one order).
type OrderMessage struct {
	ID         string     `json:"id" gorm:"column:id;primaryKey"`
	OrderID    string     `json:"order_id" gorm:"column:order_id"`
	Body       string     `json:"body" gorm:"column:body"`
	SenderKind SenderKind `json:"sender_kind" gorm:"column:sender_kind"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at"`
}

func (OrderMessage) TableName() string { return "order_messages" }
