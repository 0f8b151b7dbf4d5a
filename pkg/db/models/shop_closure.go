package models

import (
	"time"

	"github.com/google/uuid"
)

// ShopClosure is a date range during which one shop is unavailable.
type ShopClosure struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID    uuid.UUID `gorm:"column:shop_id;type:uuid;not null;index"`
	StartsOn  time.Time `gorm:"column:starts_on;type:date;not null"`
	EndsOn    time.Time `gorm:"column:ends_on;type:date;not null"`
	Reason    *string   `gorm:"column:reason"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
