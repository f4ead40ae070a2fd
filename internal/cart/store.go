package cart

import (
	"errors"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"storefront/internal/localstore"
)

// Store owns the cart and wishlist collections for one browser profile.
// It is constructed once at application start, hydrated from the local
// store, and lives for the process. Every mutation persists the whole
// collection back under its namespace key; persistence failures are
// logged and swallowed, mutations themselves never fail.
type Store struct {
	mu       sync.Mutex
	local    *localstore.Store
	cart     []LineItem
	wishlist []WishlistItem
}

func NewStore(local *localstore.Store) *Store {
	s := &Store{local: local}
	s.hydrate()
	return s
}

func (s *Store) hydrate() {
	if err := s.local.Get(localstore.KeyCart, &s.cart); err != nil && !errors.Is(err, localstore.ErrNotFound) {
		log.Printf("✗ Failed to load cart, starting empty: %v", err)
	}
	if err := s.local.Get(localstore.KeyWishlist, &s.wishlist); err != nil && !errors.Is(err, localstore.ErrNotFound) {
		log.Printf("✗ Failed to load wishlist, starting empty: %v", err)
	}
}

// AddToCart merges the candidate into the cart. An existing line with the
// same identity gets its quantity incremented and keeps its original
// snapshot fields; otherwise a new line is inserted with quantity 1.
func (s *Store) AddToCart(c Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	variantID := ""
	discount := c.DiscountPercentage
	if c.Variant != nil {
		variantID = c.Variant.VariantID
		// Variants carry their own absolute price, no separate discount.
		discount = 0
	}
	lineID := LineID(c.ProductID, variantID)

	if idx := s.findLine(lineID); idx >= 0 {
		s.cart[idx].Quantity++
		s.persistCart()
		return
	}

	s.cart = append(s.cart, LineItem{
		LineID:             lineID,
		ProductID:          c.ProductID,
		Variant:            c.Variant,
		Name:               c.Name,
		ImageURL:           c.ImageURL,
		UnitPrice:          c.UnitPrice,
		DiscountPercentage: discount,
		Quantity:           1,
		CODAvailable:       c.CODAvailable,
	})
	s.persistCart()
}

// RemoveFromCart deletes the line if present; no-op if absent.
func (s *Store) RemoveFromCart(lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.findLine(lineID); idx >= 0 {
		s.cart = append(s.cart[:idx], s.cart[idx+1:]...)
		s.persistCart()
	}
}

// SetQuantity overwrites the line quantity. A quantity below 1 removes
// the line. No upper bound is enforced here; stock limits are the
// caller's concern.
func (s *Store) SetQuantity(lineID string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLine(lineID)
	if idx < 0 {
		return
	}
	if n < 1 {
		s.cart = append(s.cart[:idx], s.cart[idx+1:]...)
	} else {
		s.cart[idx].Quantity = n
	}
	s.persistCart()
}

func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = nil
	s.persistCart()
}

// CartItems returns a copy of the cart lines in insertion order.
func (s *Store) CartItems() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.cart))
	copy(out, s.cart)
	return out
}

// CartCount returns the number of distinct lines.
func (s *Store) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cart)
}

// CartSubtotal sums unitPrice * quantity over all lines, pre-discount.
func (s *Store) CartSubtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, li := range s.cart {
		total = total.Add(li.LineTotal())
	}
	return total
}

// CartDiscountedTotal sums the discounted line totals.
func (s *Store) CartDiscountedTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, li := range s.cart {
		total = total.Add(li.DiscountedLineTotal())
	}
	return total
}

// AddToWishlist inserts the item with the NewlyAdded flag set. Adding an
// id already present does not duplicate; it resets NewlyAdded to false.
func (s *Store) AddToWishlist(item WishlistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.wishlist {
		if s.wishlist[i].ID == item.ID {
			s.wishlist[i].NewlyAdded = false
			s.persistWishlist()
			return
		}
	}
	item.NewlyAdded = true
	s.wishlist = append(s.wishlist, item)
	s.persistWishlist()
}

func (s *Store) RemoveFromWishlist(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.wishlist {
		if s.wishlist[i].ID == id {
			s.wishlist = append(s.wishlist[:i], s.wishlist[i+1:]...)
			s.persistWishlist()
			return
		}
	}
}

func (s *Store) IsInWishlist(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.wishlist {
		if s.wishlist[i].ID == id {
			return true
		}
	}
	return false
}

func (s *Store) ClearNewItemFlag(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.wishlist {
		if s.wishlist[i].ID == id {
			s.wishlist[i].NewlyAdded = false
			s.persistWishlist()
			return
		}
	}
}

func (s *Store) ClearWishlist() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wishlist = nil
	s.persistWishlist()
}

// WishlistItems returns a copy of the wishlist in insertion order.
func (s *Store) WishlistItems() []WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]WishlistItem, len(s.wishlist))
	copy(out, s.wishlist)
	return out
}

func (s *Store) findLine(lineID string) int {
	for i := range s.cart {
		if s.cart[i].LineID == lineID {
			return i
		}
	}
	return -1
}

func (s *Store) persistCart() {
	if err := s.local.Put(localstore.KeyCart, s.cart); err != nil {
		log.Printf("✗ Failed to persist cart: %v", err)
	}
}

func (s *Store) persistWishlist() {
	if err := s.local.Put(localstore.KeyWishlist, s.wishlist); err != nil {
		log.Printf("✗ Failed to persist wishlist: %v", err)
	}
}
