package pos

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleRecord is a committed sale reconstructed for correction. UnitPrice on
// each line is the price as recorded at commit time; OriginalPrice is the
// catalog's current price, which may have moved since.
type SaleRecord struct {
	ID             uuid.UUID
	Number         string
	CustomerID     *uuid.UUID
	WarehouseID    uuid.UUID
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalTotal     decimal.Decimal
	PaidAmount     decimal.Decimal
	Items          []SaleRecordItem
}

// SaleRecordItem is one historical line joined with current catalog data.
type SaleRecordItem struct {
	ProductID     uuid.UUID
	Name          string
	Quantity      decimal.Decimal
	UOMID         uuid.UUID
	UOMSymbol     string
	Factor        decimal.Decimal
	UnitPrice     decimal.Decimal
	OriginalPrice decimal.Decimal
	CostPrice     decimal.Decimal
}

// LoadSaleForEdit rebuilds the session from a committed sale. Line totals are
// recomputed from the recorded unit prices rather than trusted from the
// record, so the live subtotal may differ from the sale's stored subtotal;
// the stored figure is kept as OriginalSubtotal for reference. When the sale
// carried a discount, the custom total is seeded from the historical final
// total without re-running the allocator: the recorded unit prices already
// reflect the discount, and the next cart mutation will re-allocate against
// the freshly recomputed subtotal. Payments always start empty, regardless of
// how the original sale was paid.
func (s *Session) LoadSaleForEdit(record SaleRecord) {
	s.items = make([]LineItem, 0, len(record.Items))
	subtotal := decimal.Zero
	for _, line := range record.Items {
		item := LineItem{
			ID:            uuid.New(),
			ProductID:     line.ProductID,
			Name:          line.Name,
			Quantity:      line.Quantity,
			UOMID:         line.UOMID,
			UOMSymbol:     line.UOMSymbol,
			Factor:        line.Factor,
			CostPrice:     line.CostPrice,
			OriginalPrice: line.OriginalPrice,
			UnitPrice:     line.UnitPrice,
			TotalPrice:    line.Quantity.Mul(line.UnitPrice).Round(2),
			basePrice:     line.UnitPrice,
		}
		subtotal = subtotal.Add(item.TotalPrice)
		s.items = append(s.items, item)
	}
	s.subtotal = subtotal.Round(2)

	s.customerID = nil
	if record.CustomerID != nil {
		id := *record.CustomerID
		s.customerID = &id
	}
	if record.WarehouseID != uuid.Nil {
		s.warehouseID = record.WarehouseID
	}

	s.customTotal = nil
	if record.DiscountAmount.IsPositive() {
		seeded := record.FinalTotal
		s.customTotal = &seeded
	}

	if s.customTotal != nil && s.customTotal.LessThan(s.subtotal) {
		s.discountAmount = s.subtotal.Sub(*s.customTotal)
		s.discountPercent = decimal.Zero
		if !s.subtotal.IsZero() {
			s.discountPercent = s.discountAmount.Div(s.subtotal).Mul(oneHundred)
		}
		s.finalTotal = *s.customTotal
	} else {
		s.discountAmount = decimal.Zero
		s.discountPercent = decimal.Zero
		s.finalTotal = s.subtotal
	}

	original := record.Subtotal
	s.originalSubtotal = &original
	s.editCtx = &EditContext{SourceID: record.ID, SourceNumber: record.Number}

	s.payments = nil
	s.recomputePayments()
}

// ClearEditMode drops the correction marker once the commit has happened.
// Items and payments stay as they are.
func (s *Session) ClearEditMode() {
	s.editCtx = nil
	s.originalSubtotal = nil
}

// Reset tears the session down to an empty cart on the terminal's default
// warehouse: items, override, payments, customer and edit context are all
// dropped. Resetting an already-empty session is a no-op.
func (s *Session) Reset() {
	s.items = nil
	s.customTotal = nil
	s.payments = nil
	s.customerID = nil
	s.warehouseID = s.defaultWarehouseID
	s.editCtx = nil
	s.originalSubtotal = nil
	s.recompute()
}
