package models

// OrderStatus is the lifecycle state of an order. The backend owns the
// progression; the client only ever writes the cancelled transition.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPacked    OrderStatus = "packed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPacked,
		StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Cancellable reports whether a customer-initiated cancellation is still
// permitted. Once an order is shipped, delivered or already cancelled it
// can no longer be cancelled from the storefront.
func (s OrderStatus) Cancellable() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPacked:
		return true
	}
	return false
}

// Terminal reports whether the status is an end state. Pushed corrections
// are still accepted after a terminal status is reached.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// SenderKind identifies which side of the conversation authored an order
// message.
type SenderKind string

const (
	SenderCustomer    SenderKind = "customer"
	SenderAdmin       SenderKind = "admin"
	SenderDeliveryBoy SenderKind = "delivery_boy"
)

func (k SenderKind) IsValid() bool {
	switch k {
	case SenderCustomer, SenderAdmin, SenderDeliveryBoy:
		return true
	}
	return false
}
