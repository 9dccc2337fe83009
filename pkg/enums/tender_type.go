package enums

import "fmt"

// TenderType describes how a customer settles part of a sale.
type TenderType string

const (
	TenderTypeCash     TenderType = "cash"
	TenderTypeCard     TenderType = "card"
	TenderTypeTransfer TenderType = "transfer"
	TenderTypeDebt     TenderType = "debt"
)

var validTenderTypes = []TenderType{
	TenderTypeCash,
	TenderTypeCard,
	TenderTypeTransfer,
	TenderTypeDebt,
}

// String implements fmt.Stringer.
func (t TenderType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TenderType.
func (t TenderType) IsValid() bool {
	for _, candidate := range validTenderTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTenderType converts raw input into a TenderType.
func ParseTenderType(value string) (TenderType, error) {
	for _, candidate := range validTenderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tender type %q", value)
}
