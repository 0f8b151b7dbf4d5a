package models

import (
	"time"

	"github.com/google/uuid"
)

// MarketClosure is a date range during which the whole market is closed
// (holidays, maintenance). Blocks pickup and market delivery.
type MarketClosure struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StartsOn  time.Time `gorm:"column:starts_on;type:date;not null"`
	EndsOn    time.Time `gorm:"column:ends_on;type:date;not null"`
	Reason    *string   `gorm:"column:reason"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
