// Package pos implements the transaction-building engine behind a register
// terminal: it accumulates scanned line items, redistributes cashier-entered
// total overrides proportionally across lines, tracks split tenders against
// the amount owed, and can rehydrate from a committed sale for correction.
//
// A Session is exclusively owned by one cashier interaction; every operation
// is a synchronous in-memory state transition. The session does not validate
// caller-supplied numerics beyond the documented policy branches: pricing and
// stock checks belong to the catalog and commit layers.
package pos

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfigueroa/tillpoint-backend/pkg/enums"
)

var oneHundred = decimal.NewFromInt(100)

// LineItem is one product line in the working cart. The ID is cart-local and
// never persisted.
type LineItem struct {
	ID              uuid.UUID
	ProductID       uuid.UUID
	Name            string
	Quantity        decimal.Decimal
	UOMID           uuid.UUID
	UOMSymbol       string
	Factor          decimal.Decimal
	CostPrice       decimal.Decimal
	OriginalPrice   decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	TotalPrice      decimal.Decimal
	AvailableStock  decimal.Decimal

	// basePrice is the pre-discount unit price every allocation pass rebuilds
	// from, so repeated cascades never compound a discount onto itself.
	basePrice decimal.Decimal
}

// Payment is one tender recorded against the session's final total.
type Payment struct {
	Method enums.TenderType
	Amount decimal.Decimal
}

// EditContext marks the session as a correction of a committed sale.
type EditContext struct {
	SourceID     uuid.UUID
	SourceNumber string
}

// Session is the aggregate holding one not-yet-committed transaction. It must
// be owned by a single caller; construct one per terminal session.
type Session struct {
	terminalID         string
	defaultWarehouseID uuid.UUID

	customerID  *uuid.UUID
	warehouseID uuid.UUID
	items       []LineItem
	customTotal *decimal.Decimal
	payments    []Payment

	editCtx          *EditContext
	originalSubtotal *decimal.Decimal

	subtotal        decimal.Decimal
	discountAmount  decimal.Decimal
	discountPercent decimal.Decimal
	finalTotal      decimal.Decimal
	paidAmount      decimal.Decimal
	changeAmount    decimal.Decimal
	debtAmount      decimal.Decimal
}

// NewSession creates an empty session bound to the terminal's default
// warehouse.
func NewSession(terminalID string, defaultWarehouseID uuid.UUID) *Session {
	return &Session{
		terminalID:         terminalID,
		defaultWarehouseID: defaultWarehouseID,
		warehouseID:        defaultWarehouseID,
	}
}

// TerminalID returns the terminal this session belongs to.
func (s *Session) TerminalID() string {
	return s.terminalID
}

// SetCustomer attaches or detaches the optional customer reference.
func (s *Session) SetCustomer(customerID *uuid.UUID) {
	if customerID == nil {
		s.customerID = nil
		return
	}
	id := *customerID
	s.customerID = &id
}

// CustomerID returns the attached customer, if any.
func (s *Session) CustomerID() *uuid.UUID {
	if s.customerID == nil {
		return nil
	}
	id := *s.customerID
	return &id
}

// SetWarehouse retargets the stock location for the eventual commit.
func (s *Session) SetWarehouse(warehouseID uuid.UUID) {
	s.warehouseID = warehouseID
}

// WarehouseID returns the stock location the sale will commit against.
func (s *Session) WarehouseID() uuid.UUID {
	return s.warehouseID
}

// Items returns a copy of the cart lines in display order.
func (s *Session) Items() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Payments returns a copy of the recorded tenders in entry order.
func (s *Session) Payments() []Payment {
	out := make([]Payment, len(s.payments))
	copy(out, s.payments)
	return out
}

// Subtotal is the sum of pre-discount line totals.
func (s *Session) Subtotal() decimal.Decimal { return s.subtotal }

// DiscountAmount is the lump discount implied by an active custom total.
func (s *Session) DiscountAmount() decimal.Decimal { return s.discountAmount }

// DiscountPercent is the discount expressed against the subtotal.
func (s *Session) DiscountPercent() decimal.Decimal { return s.discountPercent }

// FinalTotal is the amount actually owed.
func (s *Session) FinalTotal() decimal.Decimal { return s.finalTotal }

// PaidAmount is the sum of recorded tenders.
func (s *Session) PaidAmount() decimal.Decimal { return s.paidAmount }

// ChangeAmount is the overpayment owed back to the customer.
func (s *Session) ChangeAmount() decimal.Decimal { return s.changeAmount }

// DebtAmount is the balance still owed by the customer.
func (s *Session) DebtAmount() decimal.Decimal { return s.debtAmount }

// CustomTotal returns the active override, or nil when no discount is active.
func (s *Session) CustomTotal() *decimal.Decimal {
	if s.customTotal == nil {
		return nil
	}
	v := *s.customTotal
	return &v
}

// EditContext returns the correction marker, or nil for a fresh sale.
func (s *Session) EditContext() *EditContext {
	if s.editCtx == nil {
		return nil
	}
	ctx := *s.editCtx
	return &ctx
}

// OriginalSubtotal returns the historically stored subtotal of the sale being
// corrected. It is reference data only and never enters live arithmetic.
func (s *Session) OriginalSubtotal() *decimal.Decimal {
	if s.originalSubtotal == nil {
		return nil
	}
	v := *s.originalSubtotal
	return &v
}

// recompute rebuilds every derived figure from first principles: line totals
// from their pre-discount baselines, the subtotal from the line totals, then
// the allocation cascade and the payment aggregates. An override that no
// longer sits strictly below the subtotal is dropped.
func (s *Session) recompute() {
	subtotal := decimal.Zero
	for i := range s.items {
		it := &s.items[i]
		it.UnitPrice = it.basePrice
		it.TotalPrice = it.Quantity.Mul(it.basePrice).Round(2)
		it.DiscountPercent = decimal.Zero
		it.DiscountAmount = decimal.Zero
		subtotal = subtotal.Add(it.TotalPrice)
	}
	s.subtotal = subtotal.Round(2)

	if s.customTotal != nil && s.customTotal.LessThan(s.subtotal) {
		s.allocate(*s.customTotal)
	} else {
		s.customTotal = nil
		s.discountAmount = decimal.Zero
		s.discountPercent = decimal.Zero
		s.finalTotal = s.subtotal
	}

	s.recomputePayments()
}

// recomputePayments re-derives the tender aggregates from the current final
// total. Change and debt can never both be positive.
func (s *Session) recomputePayments() {
	paid := decimal.Zero
	for _, p := range s.payments {
		paid = paid.Add(p.Amount)
	}
	s.paidAmount = paid

	diff := paid.Sub(s.finalTotal)
	if diff.IsPositive() {
		s.changeAmount = diff
		s.debtAmount = decimal.Zero
	} else {
		s.changeAmount = decimal.Zero
		s.debtAmount = diff.Neg()
	}
}
