// Package fees computes delivery fees for checkout. All amounts are integer
// cents; percentage math goes through shopspring/decimal to avoid float
// drift, rounding half away from zero to whole cents.
package fees

import (
	"github.com/shopspring/decimal"

	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	"github.com/soukplace/soukplace-backend/pkg/types"
)

var oneHundred = decimal.NewFromInt(100)

// FeeFor returns the delivery fee in cents for the chosen method. Pickup is
// always free; market delivery uses the market-wide schedule; shop delivery
// uses the (single) shop's schedule.
func FeeFor(method enums.DeliveryMethod, cartTotalCents int, marketSchedule, shopSchedule types.FeeSchedule) int {
	switch method {
	case enums.DeliveryMethodPickup:
		return 0
	case enums.DeliveryMethodMarketDelivery:
		return apply(marketSchedule, cartTotalCents)
	case enums.DeliveryMethodShopDelivery:
		return apply(shopSchedule, cartTotalCents)
	default:
		return 0
	}
}

// FinalTotal is the cart total plus the method fee.
func FinalTotal(method enums.DeliveryMethod, cartTotalCents int, marketSchedule, shopSchedule types.FeeSchedule) int {
	return cartTotalCents + FeeFor(method, cartTotalCents, marketSchedule, shopSchedule)
}

// ResolveShopSchedule picks the shop's structured schedule, falling back to
// the legacy flat cents column, then to free delivery.
func ResolveShopSchedule(shop models.Shop) types.FeeSchedule {
	if !shop.DeliveryFee.IsZero() {
		return shop.DeliveryFee
	}
	if shop.LegacyDeliveryFeeCents != nil {
		return types.FeeSchedule{
			Type:   enums.FeeTypeFlat,
			Amount: decimal.NewFromInt(int64(*shop.LegacyDeliveryFeeCents)),
		}
	}
	return types.DefaultFeeSchedule()
}

func apply(schedule types.FeeSchedule, cartTotalCents int) int {
	if schedule.IsZero() {
		return 0
	}
	switch schedule.Type {
	case enums.FeeTypePercentage:
		fee := decimal.NewFromInt(int64(cartTotalCents)).
			Mul(schedule.Amount).
			Div(oneHundred).
			Round(0)
		return int(fee.IntPart())
	default:
		// Flat amounts are stored in cents already.
		return int(schedule.Amount.Round(0).IntPart())
	}
}
