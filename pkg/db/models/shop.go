package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/soukplace/soukplace-backend/pkg/enums"
	"github.com/soukplace/soukplace-backend/pkg/types"
)

// Shop is a tenant selling inside the market.
type Shop struct {
	ID                  uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID         uuid.UUID         `gorm:"column:owner_user_id;type:uuid;not null;index"`
	Name                string            `gorm:"column:name;not null"`
	Status              enums.ShopStatus  `gorm:"column:status;type:shop_status;not null;default:'pending'"`
	ClickCollectEnabled bool              `gorm:"column:click_collect_enabled;not null;default:false"`
	SameDayDelivery     bool              `gorm:"column:same_day_delivery;not null;default:false"`
	OpenDays            types.Weekdays    `gorm:"column:open_days;type:jsonb;serializer:json"`
	DeliveryFee         types.FeeSchedule `gorm:"column:delivery_fee;type:jsonb;serializer:json"`
	// LegacyDeliveryFeeCents predates structured schedules; used only when
	// DeliveryFee was never configured.
	LegacyDeliveryFeeCents *int          `gorm:"column:legacy_delivery_fee_cents"`
	Closures               []ShopClosure `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
	CreatedAt              time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
