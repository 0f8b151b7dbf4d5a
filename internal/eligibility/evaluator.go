// Package eligibility decides whether a delivery slot (date + method) can be
// served given market closures, shop schedules and same-day rules. All
// functions are pure; callers load shop and market data first.
package eligibility

import (
	"time"

	"github.com/google/uuid"

	"github.com/soukplace/soukplace-backend/pkg/enums"
	"github.com/soukplace/soukplace-backend/pkg/types"
)

// ReasonCode explains why a slot was rejected.
type ReasonCode string

const (
	ReasonNone                 ReasonCode = ""
	ReasonSameDayUnavailable   ReasonCode = "SAME_DAY_UNAVAILABLE"
	ReasonMarketClosed         ReasonCode = "MARKET_CLOSED"
	ReasonClickCollectDisabled ReasonCode = "CLICK_COLLECT_DISABLED"
	ReasonShopClosedWeekday    ReasonCode = "SHOP_CLOSED_WEEKDAY"
	ReasonShopClosure          ReasonCode = "SHOP_CLOSURE"
	ReasonNoShops              ReasonCode = "NO_SHOPS"
)

// Window is a day-granularity closure range, inclusive on both ends.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains normalizes the target to noon before comparing so that boundary
// days fall inside the window regardless of the stored clock times.
func (w Window) Contains(date time.Time) bool {
	target := atNoon(date)
	start := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, target.Location())
	end := time.Date(w.End.Year(), w.End.Month(), w.End.Day(), 23, 59, 59, 0, target.Location())
	return !target.Before(start) && !target.After(end)
}

// ShopProfile is the slice of shop state the evaluator needs.
type ShopProfile struct {
	ID                  uuid.UUID
	Name                string
	ClickCollectEnabled bool
	SameDayDelivery     bool
	OpenDays            types.Weekdays
	Closures            []Window
}

// Input is one slot evaluation request.
type Input struct {
	Method         enums.DeliveryMethod
	Date           time.Time
	Now            time.Time
	Shops          []ShopProfile
	MarketClosures []Window
}

// Decision is the evaluation outcome. ShopID points at the offending shop
// when a shop-level rule rejected the slot.
type Decision struct {
	Eligible bool
	Reason   ReasonCode
	ShopID   *uuid.UUID
}

func accept() Decision {
	return Decision{Eligible: true}
}

func reject(reason ReasonCode) Decision {
	return Decision{Reason: reason}
}

func rejectShop(reason ReasonCode, shopID uuid.UUID) Decision {
	id := shopID
	return Decision{Reason: reason, ShopID: &id}
}

// Evaluate applies the slot rules in fixed precedence: same-day gate first,
// then market closures, then per-shop schedule rules for the chosen method.
func Evaluate(in Input) Decision {
	if len(in.Shops) == 0 {
		return reject(ReasonNoShops)
	}

	if sameCalendarDay(in.Date, in.Now) {
		// Same-day is a shop-delivery privilege: the single shop either
		// takes the order today or the slot is gone, independent of the
		// remaining rules.
		if in.Method == enums.DeliveryMethodShopDelivery && in.Shops[0].SameDayDelivery {
			return accept()
		}
		return reject(ReasonSameDayUnavailable)
	}

	if in.Method == enums.DeliveryMethodPickup || in.Method == enums.DeliveryMethodMarketDelivery {
		for _, window := range in.MarketClosures {
			if window.Contains(in.Date) {
				return reject(ReasonMarketClosed)
			}
		}
	}

	switch in.Method {
	case enums.DeliveryMethodPickup:
		for _, shop := range in.Shops {
			if !shop.ClickCollectEnabled {
				return rejectShop(ReasonClickCollectDisabled, shop.ID)
			}
			if decision := checkShopSchedule(shop, in.Date); !decision.Eligible {
				return decision
			}
		}

	case enums.DeliveryMethodShopDelivery:
		if decision := checkShopSchedule(in.Shops[0], in.Date); !decision.Eligible {
			return decision
		}
	}

	return accept()
}

// NextAvailable scans forward day-by-day from the requested date and returns
// the first eligible date within the horizon, or nil when none exists.
func NextAvailable(in Input, horizonDays int) *time.Time {
	if horizonDays <= 0 {
		return nil
	}
	for offset := 0; offset <= horizonDays; offset++ {
		candidate := in.Date.AddDate(0, 0, offset)
		probe := in
		probe.Date = candidate
		if Evaluate(probe).Eligible {
			found := atNoon(candidate)
			return &found
		}
	}
	return nil
}

func checkShopSchedule(shop ShopProfile, date time.Time) Decision {
	if !shop.OpenDays.Contains(date.Weekday()) {
		return rejectShop(ReasonShopClosedWeekday, shop.ID)
	}
	for _, window := range shop.Closures {
		if window.Contains(date) {
			return rejectShop(ReasonShopClosure, shop.ID)
		}
	}
	return accept()
}

func sameCalendarDay(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func atNoon(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
}
