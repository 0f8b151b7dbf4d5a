package fees

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	"github.com/soukplace/soukplace-backend/pkg/types"
)

func flat(cents int64) types.FeeSchedule {
	return types.FeeSchedule{Type: enums.FeeTypeFlat, Amount: decimal.NewFromInt(cents)}
}

func percentage(percent int64) types.FeeSchedule {
	return types.FeeSchedule{Type: enums.FeeTypePercentage, Amount: decimal.NewFromInt(percent)}
}

func TestPickupIsAlwaysFree(t *testing.T) {
	for _, total := range []int{0, 1, 999, 125000} {
		if fee := FeeFor(enums.DeliveryMethodPickup, total, percentage(50), flat(700)); fee != 0 {
			t.Fatalf("pickup fee for total %d = %d, want 0", total, fee)
		}
	}
}

func TestMarketDeliveryPercentage(t *testing.T) {
	fee := FeeFor(enums.DeliveryMethodMarketDelivery, 1000, percentage(10), types.FeeSchedule{})
	if fee != 100 {
		t.Fatalf("10%% of 1000 = %d, want 100", fee)
	}
}

func TestMarketDeliveryFlat(t *testing.T) {
	fee := FeeFor(enums.DeliveryMethodMarketDelivery, 1000, flat(350), types.FeeSchedule{})
	if fee != 350 {
		t.Fatalf("flat fee = %d, want 350", fee)
	}
}

func TestPercentageRoundsToWholeCents(t *testing.T) {
	// 3% of 1234 = 37.02, rounds to 37.
	fee := FeeFor(enums.DeliveryMethodMarketDelivery, 1234, percentage(3), types.FeeSchedule{})
	if fee != 37 {
		t.Fatalf("3%% of 1234 = %d, want 37", fee)
	}
	// 15% of 999 = 149.85, rounds to 150.
	fee = FeeFor(enums.DeliveryMethodMarketDelivery, 999, percentage(15), types.FeeSchedule{})
	if fee != 150 {
		t.Fatalf("15%% of 999 = %d, want 150", fee)
	}
}

func TestShopDeliveryUsesShopSchedule(t *testing.T) {
	fee := FeeFor(enums.DeliveryMethodShopDelivery, 2000, percentage(50), flat(500))
	if fee != 500 {
		t.Fatalf("shop delivery fee = %d, want shop flat 500", fee)
	}
}

func TestFinalTotalAddsFee(t *testing.T) {
	total := FinalTotal(enums.DeliveryMethodMarketDelivery, 1000, percentage(10), types.FeeSchedule{})
	if total != 1100 {
		t.Fatalf("final total = %d, want 1100", total)
	}
}

func TestResolveShopScheduleFallbacks(t *testing.T) {
	configured := models.Shop{DeliveryFee: flat(400)}
	if got := ResolveShopSchedule(configured); !got.Amount.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("expected configured schedule, got %+v", got)
	}

	legacy := 250
	legacyShop := models.Shop{LegacyDeliveryFeeCents: &legacy}
	got := ResolveShopSchedule(legacyShop)
	if got.Type != enums.FeeTypeFlat || !got.Amount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected legacy flat 250, got %+v", got)
	}

	bare := models.Shop{}
	got = ResolveShopSchedule(bare)
	if got.Type != enums.FeeTypeFlat || !got.Amount.IsZero() {
		t.Fatalf("expected free default schedule, got %+v", got)
	}
}

func TestUnconfiguredScheduleIsFree(t *testing.T) {
	if fee := FeeFor(enums.DeliveryMethodMarketDelivery, 5000, types.FeeSchedule{}, types.FeeSchedule{}); fee != 0 {
		t.Fatalf("unconfigured schedule fee = %d, want 0", fee)
	}
}
