package pos

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemCandidate carries the catalog-resolved data for one scan or selection.
// The session treats every field as already validated by the caller.
type ItemCandidate struct {
	ProductID      uuid.UUID
	Name           string
	Quantity       decimal.Decimal
	UOMID          uuid.UUID
	UOMSymbol      string
	Factor         decimal.Decimal
	UnitPrice      decimal.Decimal
	OriginalPrice  decimal.Decimal
	CostPrice      decimal.Decimal
	AvailableStock decimal.Decimal
}

// AddItem merges the candidate into an existing line when product and unit of
// measure both match, keeping the existing line's price (first price wins);
// otherwise it appends a new line. Either way the subtotal and any active
// discount allocation are recomputed.
func (s *Session) AddItem(candidate ItemCandidate) uuid.UUID {
	for i := range s.items {
		it := &s.items[i]
		if it.ProductID == candidate.ProductID && it.UOMID == candidate.UOMID {
			it.Quantity = it.Quantity.Add(candidate.Quantity)
			s.recompute()
			return it.ID
		}
	}

	line := LineItem{
		ID:             uuid.New(),
		ProductID:      candidate.ProductID,
		Name:           candidate.Name,
		Quantity:       candidate.Quantity,
		UOMID:          candidate.UOMID,
		UOMSymbol:      candidate.UOMSymbol,
		Factor:         candidate.Factor,
		CostPrice:      candidate.CostPrice,
		OriginalPrice:  candidate.OriginalPrice,
		AvailableStock: candidate.AvailableStock,
		basePrice:      candidate.UnitPrice,
	}
	s.items = append(s.items, line)
	s.recompute()
	return line.ID
}

// UpdateItemQuantity sets the line's quantity. A quantity of zero or less
// removes the line.
func (s *Session) UpdateItemQuantity(id uuid.UUID, quantity decimal.Decimal) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		s.RemoveItem(id)
		return
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			s.recompute()
			return
		}
	}
}

// UpdateItemPrice sets the line's unit price directly. Manual pricing and a
// global override are mutually exclusive, so any active custom total is
// cleared across the whole cart.
func (s *Session) UpdateItemPrice(id uuid.UUID, price decimal.Decimal) {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].basePrice = price
			s.customTotal = nil
			s.recompute()
			return
		}
	}
}

// RemoveItem deletes the line. An active custom total survives only while it
// still sits strictly below the shrunken subtotal; otherwise it is dropped and
// the final total reverts to the full subtotal.
func (s *Session) RemoveItem(id uuid.UUID) {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.recompute()
			return
		}
	}
}

// ClearCart empties the cart and drops any override. Customer, warehouse,
// payments and edit context are untouched.
func (s *Session) ClearCart() {
	s.items = nil
	s.customTotal = nil
	s.recompute()
}
