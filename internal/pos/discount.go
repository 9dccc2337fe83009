package pos

import "github.com/shopspring/decimal"

// SetCustomTotal installs, replaces or clears the cashier-entered override.
// A nil total, or one at or above the subtotal, clears the override. A total
// below the subtotal becomes the exact final total and the implied discount is
// spread across the lines in proportion to each line's share of the subtotal.
func (s *Session) SetCustomTotal(total *decimal.Decimal) {
	if total == nil {
		s.customTotal = nil
		s.recompute()
		return
	}
	v := *total
	s.customTotal = &v
	s.recompute()
}

// ApplyProportionalDiscount is an alias for SetCustomTotal.
func (s *Session) ApplyProportionalDiscount(total *decimal.Decimal) {
	s.SetCustomTotal(total)
}

// allocate distributes subtotal-total across the lines. Each line's new total
// and new unit price are rounded to currency precision independently, so the
// rounded line totals may drift from the final total by a cent per line. That
// drift is accepted: the final total stays exactly what the cashier entered,
// and receipts foot to the printed per-line figures.
//
// Lines were reset to their pre-discount figures by recompute before this
// runs, and the caller has already established total < subtotal.
func (s *Session) allocate(total decimal.Decimal) {
	discount := s.subtotal.Sub(total)
	percent := decimal.Zero
	if !s.subtotal.IsZero() {
		percent = discount.Div(s.subtotal).Mul(oneHundred)
	}

	for i := range s.items {
		it := &s.items[i]
		share := it.TotalPrice.Div(s.subtotal)
		lineDiscount := discount.Mul(share)
		newTotal := it.TotalPrice.Sub(lineDiscount)

		it.DiscountAmount = lineDiscount.Round(2)
		it.DiscountPercent = percent
		it.UnitPrice = newTotal.Div(it.Quantity).Round(2)
		it.TotalPrice = newTotal.Round(2)
	}

	s.discountAmount = discount
	s.discountPercent = percent
	s.finalTotal = total
}
