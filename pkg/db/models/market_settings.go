package models

import (
	"time"

	"github.com/soukplace/soukplace-backend/pkg/types"
)

// MarketSettings is a single-row table holding market-wide configuration.
type MarketSettings struct {
	ID          int               `gorm:"column:id;primaryKey"`
	DeliveryFee types.FeeSchedule `gorm:"column:delivery_fee;type:jsonb;serializer:json"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// MarketSettingsRowID is the fixed primary key of the singleton row.
const MarketSettingsRowID = 1
