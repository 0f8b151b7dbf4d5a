package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/soukplace/soukplace-backend/pkg/enums"
)

// CustomerOrderFilters describe the inputs supported by the customer orders list.
type CustomerOrderFilters struct {
	Status   *enums.OrderStatus
	Method   *enums.DeliveryMethod
	DateFrom *time.Time
	DateTo   *time.Time
}

// ShopLotFilters describe the inputs supported by the shop lots list.
type ShopLotFilters struct {
	Status   *enums.LotStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// CustomerOrderSummary exposes the aggregated fields returned in the customer list.
type CustomerOrderSummary struct {
	ID             uuid.UUID            `json:"id"`
	OrderNumber    string               `json:"order_number"`
	CreatedAt      time.Time            `json:"created_at"`
	Status         enums.OrderStatus    `json:"status"`
	StatusLabel    string               `json:"status_label"`
	DeliveryMethod enums.DeliveryMethod `json:"delivery_method"`
	DeliveryDate   time.Time            `json:"delivery_date"`
	TotalCents     int                  `json:"total_cents"`
	LotCount       int                  `json:"lot_count"`
}

// CustomerOrderList wraps the paginated orders plus the next page cursor.
type CustomerOrderList struct {
	Orders     []CustomerOrderSummary `json:"orders"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

// ShopLotSummary exposes the lot fields a shop sees in its queue.
type ShopLotSummary struct {
	LotID          uuid.UUID            `json:"lot_id"`
	OrderID        uuid.UUID            `json:"order_id"`
	OrderNumber    string               `json:"order_number"`
	CreatedAt      time.Time            `json:"created_at"`
	Status         enums.LotStatus      `json:"status"`
	StatusLabel    string               `json:"status_label"`
	DeliveryMethod enums.DeliveryMethod `json:"delivery_method"`
	DeliveryDate   time.Time            `json:"delivery_date"`
	SubtotalCents  int                  `json:"subtotal_cents"`
	ItemCount      int                  `json:"item_count"`
}

// ShopLotList wraps paginated lots plus the next cursor.
type ShopLotList struct {
	Lots       []ShopLotSummary `json:"lots"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
