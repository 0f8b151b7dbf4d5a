package enums

import "fmt"

// LotStatus tracks the per-shop fulfillment lifecycle inside an order.
type LotStatus string

const (
	LotStatusPending        LotStatus = "pending"
	LotStatusAccepted       LotStatus = "accepted"
	LotStatusInDelivery     LotStatus = "in_delivery"
	LotStatusReadyForPickup LotStatus = "ready_for_pickup"
	LotStatusDelivered      LotStatus = "delivered"
	LotStatusCanceled       LotStatus = "canceled"
)

var validLotStatuses = []LotStatus{
	LotStatusPending,
	LotStatusAccepted,
	LotStatusInDelivery,
	LotStatusReadyForPickup,
	LotStatusDelivered,
	LotStatusCanceled,
}

// String implements fmt.Stringer.
func (l LotStatus) String() string {
	return string(l)
}

// IsTerminal reports whether the lot can never change status again.
func (l LotStatus) IsTerminal() bool {
	return l == LotStatusDelivered || l == LotStatusCanceled
}

// IsDeliverable reports whether the lot is waiting on the customer handoff.
func (l LotStatus) IsDeliverable() bool {
	return l == LotStatusInDelivery || l == LotStatusReadyForPickup
}

// IsValid reports whether the value is a known LotStatus.
func (l LotStatus) IsValid() bool {
	for _, candidate := range validLotStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLotStatus converts raw input into a LotStatus.
func ParseLotStatus(value string) (LotStatus, error) {
	for _, candidate := range validLotStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lot status %q", value)
}
