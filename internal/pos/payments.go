package pos

// AddPayment appends one tender and re-derives paid, change and debt. Entries
// of the same tender type are kept separate, never merged. Amount validation
// is a caller obligation.
func (s *Session) AddPayment(payment Payment) {
	s.payments = append(s.payments, payment)
	s.recomputePayments()
}

// RemovePayment removes the tender at the given position. Later entries shift
// down, so callers must not hold indices across mutations. Out-of-range
// positions are ignored.
func (s *Session) RemovePayment(index int) {
	if index < 0 || index >= len(s.payments) {
		return
	}
	s.payments = append(s.payments[:index], s.payments[index+1:]...)
	s.recomputePayments()
}

// ClearPayments drops every tender and zeroes the derived figures,
// independent of cart contents.
func (s *Session) ClearPayments() {
	s.payments = nil
	s.recomputePayments()
}
