package enums

import "fmt"

// DeliveryMethod identifies how a checkout is fulfilled.
type DeliveryMethod string

const (
	// DeliveryMethodPickup is click & collect at the market counter.
	DeliveryMethodPickup DeliveryMethod = "pickup"
	// DeliveryMethodMarketDelivery is home delivery handled by the market's couriers.
	DeliveryMethodMarketDelivery DeliveryMethod = "market_delivery"
	// DeliveryMethodShopDelivery is home delivery handled by the (single) shop itself.
	DeliveryMethodShopDelivery DeliveryMethod = "shop_delivery"
)

var validDeliveryMethods = []DeliveryMethod{
	DeliveryMethodPickup,
	DeliveryMethodMarketDelivery,
	DeliveryMethodShopDelivery,
}

// String implements fmt.Stringer.
func (d DeliveryMethod) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryMethod.
func (d DeliveryMethod) IsValid() bool {
	for _, candidate := range validDeliveryMethods {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryMethod converts raw input into a DeliveryMethod.
func ParseDeliveryMethod(value string) (DeliveryMethod, error) {
	for _, candidate := range validDeliveryMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery method %q", value)
}
