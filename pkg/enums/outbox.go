package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder        OutboxAggregateType = "order"
	AggregateShopLot      OutboxAggregateType = "shop_lot"
	AggregateOrderItem    OutboxAggregateType = "order_item"
	AggregateShop         OutboxAggregateType = "shop"
	AggregateNotification OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateShopLot,
	AggregateOrderItem,
	AggregateShop,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderCreated          OutboxEventType = "order_created"
	EventOrderAccepted         OutboxEventType = "order_accepted"
	EventOrderCanceled         OutboxEventType = "order_canceled"
	EventOrderItemCanceled     OutboxEventType = "order_item_canceled"
	EventOrderDepositMarked    OutboxEventType = "order_deposit_marked"
	EventOrderDepositConfirmed OutboxEventType = "order_deposit_confirmed"
	EventOrderDelivered        OutboxEventType = "order_delivered"
	EventShopApproved          OutboxEventType = "shop_approved"
	EventShopSuspended         OutboxEventType = "shop_suspended"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderAccepted,
	EventOrderCanceled,
	EventOrderItemCanceled,
	EventOrderDepositMarked,
	EventOrderDepositConfirmed,
	EventOrderDelivered,
	EventShopApproved,
	EventShopSuspended,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
