package cart

import (
	"github.com/shopspring/decimal"
)

// VariantInfo identifies the specific purchasable configuration a line
// item was added as. Present only for variant selections.
type VariantInfo struct {
	VariantID      string `json:"variant_id"`
	AttributeName  string `json:"attribute_name"`
	AttributeValue string `json:"attribute_value"`
}

// LineItem is one row in the cart. Name, image and price are snapshots
// captured at add time; they do not track later product edits.
type LineItem struct {
	LineID             string          `json:"line_id"`
	ProductID          string          `json:"product_id"`
	Variant            *VariantInfo    `json:"variant,omitempty"`
	Name               string          `json:"name"`
	ImageURL           string          `json:"image_url"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage int             `json:"discount_percentage"`
	Quantity           int             `json:"quantity"`
	CODAvailable       bool            `json:"cod_available"`
}

// Candidate is a line item before it enters the cart: same snapshot
// fields, no quantity and no computed line id yet.
type Candidate struct {
	ProductID          string
	Variant            *VariantInfo
	Name               string
	ImageURL           string
	UnitPrice          decimal.Decimal
	DiscountPercentage int
	CODAvailable       bool
}

// WishlistItem is a presence-only entry keyed by product id. NewlyAdded
// is a transient UI flag, reset on re-add or on explicit clear.
type WishlistItem struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	ImageURL           string          `json:"image_url"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage int             `json:"discount_percentage"`
	CODAvailable       bool            `json:"cod_available"`
	NewlyAdded         bool            `json:"newly_added"`
}

// LineID derives the stable line identity for a product + optional
// variant. Selecting a different variant of the same product therefore
// produces a different line, never a mutation of an existing one.
func LineID(productID, variantID string) string {
	if variantID == "" {
		return productID
	}
	return productID + "#" + variantID
}

// LineTotal is unitPrice * quantity before any discount.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// DiscountedLineTotal applies the percentage discount to the line total.
func (li LineItem) DiscountedLineTotal() decimal.Decimal {
	factor := decimal.NewFromInt(int64(100 - li.DiscountPercentage)).
		Div(decimal.NewFromInt(100))
	return li.LineTotal().Mul(factor)
}
