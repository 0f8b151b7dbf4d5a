package checkout

import (
	"github.com/google/uuid"

	"github.com/soukplace/soukplace-backend/pkg/db/models"
)

// shopGroup is one shop's slice of the cart before it becomes a lot.
type shopGroup struct {
	ShopID uuid.UUID
	Items  []models.CartItem
}

// groupByShop partitions cart lines per shop, preserving the first-seen
// order of shops and of lines within each shop.
func groupByShop(items []models.CartItem) []shopGroup {
	index := map[uuid.UUID]int{}
	groups := make([]shopGroup, 0, 2)
	for _, item := range items {
		pos, ok := index[item.ShopID]
		if !ok {
			pos = len(groups)
			index[item.ShopID] = pos
			groups = append(groups, shopGroup{ShopID: item.ShopID})
		}
		groups[pos].Items = append(groups[pos].Items, item)
	}
	return groups
}

func (g shopGroup) subtotalCents() int {
	total := 0
	for _, item := range g.Items {
		total += item.UnitPriceCents * item.Qty
	}
	return total
}
