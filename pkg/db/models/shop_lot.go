package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/soukplace/soukplace-backend/pkg/enums"
)

// ShopLot groups the slice of an order fulfilled by one shop. Once the
// warehouse validates the deposit (DepositValidatedAt set) the lot and its
// items freeze against cancellation.
type ShopLot struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID            uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ShopID             uuid.UUID       `gorm:"column:shop_id;type:uuid;not null;index"`
	ShopName           string          `gorm:"column:shop_name;not null"`
	Status             enums.LotStatus `gorm:"column:status;type:lot_status;not null;default:'pending'"`
	DepositMarked      bool            `gorm:"column:deposit_marked;not null;default:false"`
	DepositValidatedAt *time.Time      `gorm:"column:deposit_validated_at"`
	CancelReason       *string         `gorm:"column:cancel_reason"`
	Items              []OrderItem     `gorm:"foreignKey:LotID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// DepositValidated reports whether the warehouse confirmed the drop-off.
func (l ShopLot) DepositValidated() bool {
	return l.DepositValidatedAt != nil
}
