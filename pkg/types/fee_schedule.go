package types

import (
	"github.com/shopspring/decimal"

	"github.com/soukplace/soukplace-backend/pkg/enums"
)

// FeeSchedule describes how a delivery fee is computed. Flat schedules carry
// the fee in minor units (cents); percentage schedules carry the percent
// applied to the cart total.
type FeeSchedule struct {
	Type   enums.FeeType   `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

// DefaultFeeSchedule is the fallback when a shop configures nothing: free flat delivery.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{Type: enums.FeeTypeFlat, Amount: decimal.Zero}
}

// IsZero reports whether the schedule was never configured.
func (f FeeSchedule) IsZero() bool {
	return f.Type == "" && f.Amount.IsZero()
}
