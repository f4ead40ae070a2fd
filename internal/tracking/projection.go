package tracking

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/models"
)

// Projection is the client-side view of one order. It is created by a
// successful lookup and mutated only by ApplyPatch; the backend is
// authoritative, so the latest payload always wins.
type Projection struct {
	OrderID       string
	Status        models.OrderStatus
	CustomerName  string
	CustomerPhone string
	Address       string
	City          string
	Pincode       string
	PaymentMethod string
	TotalAmount   decimal.Decimal
	DeliveryBoyID *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func projectionFromOrder(o models.Order) Projection {
	return Projection{
		OrderID:       o.ID,
		Status:        o.Status,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Address:       o.Address,
		City:          o.City,
		Pincode:       o.Pincode,
		PaymentMethod: o.PaymentMethod,
		TotalAmount:   o.TotalAmount,
		DeliveryBoyID: o.DeliveryBoyID,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// Patch is a partial order row as delivered by a push event. Absent
// fields stay nil and leave the projection untouched.
type Patch struct {
	Status        *models.OrderStatus `json:"status"`
	CustomerName  *string             `json:"customer_name"`
	CustomerPhone *string             `json:"customer_phone"`
	Address       *string             `json:"address"`
	City          *string             `json:"city"`
	Pincode       *string             `json:"pincode"`
	PaymentMethod *string             `json:"payment_method"`
	TotalAmount   *decimal.Decimal    `json:"total_amount"`
	DeliveryBoyID *string             `json:"delivery_boy_id"`
	UpdatedAt     *time.Time          `json:"updated_at"`
}

// ApplyPatch shallow-merges the patch into the projection. No ordering
// check is done against the current state: out-of-order pushes overwrite
// as-is, monotonicity is the backend's job. A status value that does not
// parse as a known status is dropped rather than propagated inward.
func (p *Projection) ApplyPatch(patch Patch) {
	if patch.Status != nil && patch.Status.IsValid() {
		p.Status = *patch.Status
	}
	if patch.CustomerName != nil {
		p.CustomerName = *patch.CustomerName
	}
	if patch.CustomerPhone != nil {
		p.CustomerPhone = *patch.CustomerPhone
	}
	if patch.Address != nil {
		p.Address = *patch.Address
	}
	if patch.City != nil {
		p.City = *patch.City
	}
	if patch.Pincode != nil {
		p.Pincode = *patch.Pincode
	}
	if patch.PaymentMethod != nil {
		p.PaymentMethod = *patch.PaymentMethod
	}
	if patch.TotalAmount != nil {
		p.TotalAmount = *patch.TotalAmount
	}
	if patch.DeliveryBoyID != nil {
		p.DeliveryBoyID = patch.DeliveryBoyID
	}
	if patch.UpdatedAt != nil {
		p.UpdatedAt = *patch.UpdatedAt
	}
}
