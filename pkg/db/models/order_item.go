package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/soukplace/soukplace-backend/pkg/enums"
)

// OrderItem is the price/quantity snapshot of a cart line at checkout time.
type OrderItem struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LotID          uuid.UUID             `gorm:"column:lot_id;type:uuid;not null;index"`
	ProductID      uuid.UUID             `gorm:"column:product_id;type:uuid;not null"`
	Name           string                `gorm:"column:name;not null"`
	UnitPriceCents int                   `gorm:"column:unit_price_cents;not null"`
	Qty            int                   `gorm:"column:qty;not null"`
	Status         enums.OrderItemStatus `gorm:"column:status;type:order_item_status;not null;default:'active'"`
	CancelReason   *string               `gorm:"column:cancel_reason"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// SubtotalCents is the line total; canceled lines contribute nothing.
func (i OrderItem) SubtotalCents() int {
	if i.Status == enums.OrderItemStatusCanceled {
		return 0
	}
	return i.UnitPriceCents * i.Qty
}
