package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/soukplace/soukplace-backend/pkg/enums"
)

// OrderCreatedEvent signals a new checkout split across shop lots.
type OrderCreatedEvent struct {
	OrderID        uuid.UUID            `json:"order_id"`
	OrderNumber    string               `json:"order_number"`
	CustomerID     uuid.UUID            `json:"customer_id"`
	DeliveryMethod enums.DeliveryMethod `json:"delivery_method"`
	DeliveryDate   time.Time            `json:"delivery_date"`
	LotIDs         []uuid.UUID          `json:"lot_ids"`
	ShopIDs        []uuid.UUID          `json:"shop_ids"`
	TotalCents     int                  `json:"total_cents"`
}

// LotAcceptedEvent is emitted when a shop accepts its lot.
type LotAcceptedEvent struct {
	OrderID uuid.UUID `json:"order_id"`
	LotID   uuid.UUID `json:"lot_id"`
	ShopID  uuid.UUID `json:"shop_id"`
}

// LotCanceledEvent is emitted when a lot is canceled by either side.
type LotCanceledEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	LotID      uuid.UUID `json:"lot_id"`
	ShopID     uuid.UUID `json:"shop_id"`
	CanceledAt time.Time `json:"canceled_at"`
	Reason     string    `json:"reason,omitempty"`
}

// ItemCanceledEvent is emitted when a shop removes a single line.
type ItemCanceledEvent struct {
	OrderID uuid.UUID `json:"order_id"`
	LotID   uuid.UUID `json:"lot_id"`
	ItemID  uuid.UUID `json:"item_id"`
	ShopID  uuid.UUID `json:"shop_id"`
	Reason  string    `json:"reason,omitempty"`
}

// DepositMarkedEvent is emitted when a shop declares a warehouse drop-off.
type DepositMarkedEvent struct {
	OrderID uuid.UUID `json:"order_id"`
	LotID   uuid.UUID `json:"lot_id"`
	ShopID  uuid.UUID `json:"shop_id"`
}

// DepositConfirmedEvent is emitted when the warehouse validates a drop-off.
// After this point the lot is frozen against cancellation.
type DepositConfirmedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	LotID       uuid.UUID `json:"lot_id"`
	ShopID      uuid.UUID `json:"shop_id"`
	ValidatedAt time.Time `json:"validated_at"`
}

// OrderDeliveredEvent surfaces the completed order.
type OrderDeliveredEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// ShopModeratedEvent reports admin approval or suspension of a shop.
type ShopModeratedEvent struct {
	ShopID uuid.UUID        `json:"shop_id"`
	Status enums.ShopStatus `json:"status"`
	Reason string           `json:"reason,omitempty"`
}
