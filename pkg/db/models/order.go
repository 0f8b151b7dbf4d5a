package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/soukplace/soukplace-backend/pkg/enums"
)

// Order is the customer-facing aggregate produced at checkout. The order
// number and delivery terms are immutable once created; status fields only
// move through guarded transitions.
type Order struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber      string               `gorm:"column:order_number;uniqueIndex;not null"`
	CustomerID       uuid.UUID            `gorm:"column:customer_id;type:uuid;not null"`
	DeliveryMethod   enums.DeliveryMethod `gorm:"column:delivery_method;type:delivery_method;not null"`
	DeliveryDate     time.Time            `gorm:"column:delivery_date;type:date;not null"`
	DeliveryAddress  *string              `gorm:"column:delivery_address"`
	PaymentMethod    enums.PaymentMethod  `gorm:"column:payment_method;type:payment_method;not null;default:'cash'"`
	Note             *string              `gorm:"column:note"`
	Status           enums.OrderStatus    `gorm:"column:status;type:order_status;not null;default:'pending'"`
	SubtotalCents    int                  `gorm:"column:subtotal_cents;not null"`
	DeliveryFeeCents int                  `gorm:"column:delivery_fee_cents;not null;default:0"`
	TotalCents       int                  `gorm:"column:total_cents;not null"`
	CancelReason     *string              `gorm:"column:cancel_reason"`
	CanceledAt       *time.Time           `gorm:"column:canceled_at"`
	DeliveredAt      *time.Time           `gorm:"column:delivered_at"`
	Lots             []ShopLot            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
