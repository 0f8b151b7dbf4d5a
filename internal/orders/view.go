package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
)

// Status labels are a fixed enumeration shared by every client surface.
var orderStatusLabels = map[enums.OrderStatus]string{
	enums.OrderStatusPending:    "Awaiting shops",
	enums.OrderStatusInProgress: "In progress",
	enums.OrderStatusDelivered:  "Delivered",
	enums.OrderStatusCanceled:   "Canceled",
}

var lotStatusLabels = map[enums.LotStatus]string{
	enums.LotStatusPending:        "Awaiting acceptance",
	enums.LotStatusAccepted:       "Accepted",
	enums.LotStatusInDelivery:     "Out for delivery",
	enums.LotStatusReadyForPickup: "Ready for pickup",
	enums.LotStatusDelivered:      "Delivered",
	enums.LotStatusCanceled:       "Canceled",
}

// OrderStatusLabel returns the display label for an order status.
func OrderStatusLabel(status enums.OrderStatus) string {
	if label, ok := orderStatusLabels[status]; ok {
		return label
	}
	return string(status)
}

// LotStatusLabel returns the display label for a lot status.
func LotStatusLabel(status enums.LotStatus) string {
	if label, ok := lotStatusLabels[status]; ok {
		return label
	}
	return string(status)
}

// LotSubtotalCents sums the active item lines of a lot.
func LotSubtotalCents(lot models.ShopLot) int {
	subtotal := 0
	for _, item := range lot.Items {
		subtotal += item.SubtotalCents()
	}
	return subtotal
}

// ItemView is the read-side projection of one order line.
type ItemView struct {
	ID             uuid.UUID             `json:"id"`
	ProductID      uuid.UUID             `json:"product_id"`
	Name           string                `json:"name"`
	UnitPriceCents int                   `json:"unit_price_cents"`
	Qty            int                   `json:"qty"`
	SubtotalCents  int                   `json:"subtotal_cents"`
	Status         enums.OrderItemStatus `json:"status"`
	CancelReason   *string               `json:"cancel_reason,omitempty"`
	Cancellable    bool                  `json:"cancellable"`
}

// LotView is the read-side projection of one shop lot.
type LotView struct {
	ID                 uuid.UUID       `json:"id"`
	ShopID             uuid.UUID       `json:"shop_id"`
	ShopName           string          `json:"shop_name"`
	Status             enums.LotStatus `json:"status"`
	StatusLabel        string          `json:"status_label"`
	SubtotalCents      int             `json:"subtotal_cents"`
	DepositMarked      bool            `json:"deposit_marked"`
	DepositValidatedAt *time.Time      `json:"deposit_validated_at,omitempty"`
	CancelReason       *string         `json:"cancel_reason,omitempty"`
	Items              []ItemView      `json:"items"`
	CanAccept          bool            `json:"can_accept"`
	CanMarkDeposit     bool            `json:"can_mark_deposit"`
	CanConfirmDeposit  bool            `json:"can_confirm_deposit"`
	CanCancel          bool            `json:"can_cancel"`
	CanConfirmDelivery bool            `json:"can_confirm_delivery"`
}

// OrderView is the full read-side projection served to clients. Permission
// flags are dry-run evaluations of the same guards the transitions use.
type OrderView struct {
	ID               uuid.UUID            `json:"id"`
	OrderNumber      string               `json:"order_number"`
	CustomerID       uuid.UUID            `json:"customer_id"`
	Status           enums.OrderStatus    `json:"status"`
	StatusLabel      string               `json:"status_label"`
	DeliveryMethod   enums.DeliveryMethod `json:"delivery_method"`
	DeliveryDate     time.Time            `json:"delivery_date"`
	DeliveryAddress  *string              `json:"delivery_address,omitempty"`
	PaymentMethod    enums.PaymentMethod  `json:"payment_method"`
	Note             *string              `json:"note,omitempty"`
	SubtotalCents    int                  `json:"subtotal_cents"`
	DeliveryFeeCents int                  `json:"delivery_fee_cents"`
	TotalCents       int                  `json:"total_cents"`
	CancelReason     *string              `json:"cancel_reason,omitempty"`
	CanceledAt       *time.Time           `json:"canceled_at,omitempty"`
	DeliveredAt      *time.Time           `json:"delivered_at,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	Lots             []LotView            `json:"lots"`
	Cancellable      bool                 `json:"cancellable"`
}

// BuildView projects an order for the given actor without mutating state.
func BuildView(actor Actor, order *models.Order) OrderView {
	view := OrderView{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		CustomerID:       order.CustomerID,
		Status:           order.Status,
		StatusLabel:      OrderStatusLabel(order.Status),
		DeliveryMethod:   order.DeliveryMethod,
		DeliveryDate:     order.DeliveryDate,
		DeliveryAddress:  order.DeliveryAddress,
		PaymentMethod:    order.PaymentMethod,
		Note:             order.Note,
		SubtotalCents:    order.SubtotalCents,
		DeliveryFeeCents: order.DeliveryFeeCents,
		TotalCents:       order.TotalCents,
		CancelReason:     order.CancelReason,
		CanceledAt:       order.CanceledAt,
		DeliveredAt:      order.DeliveredAt,
		CreatedAt:        order.CreatedAt,
		Cancellable:      Allowed(actor, ActionCancelOrder, order, nil, nil),
		Lots:             make([]LotView, 0, len(order.Lots)),
	}

	for i := range order.Lots {
		lot := &order.Lots[i]
		lotView := LotView{
			ID:                 lot.ID,
			ShopID:             lot.ShopID,
			ShopName:           lot.ShopName,
			Status:             lot.Status,
			StatusLabel:        LotStatusLabel(lot.Status),
			SubtotalCents:      LotSubtotalCents(*lot),
			DepositMarked:      lot.DepositMarked,
			DepositValidatedAt: lot.DepositValidatedAt,
			CancelReason:       lot.CancelReason,
			Items:              make([]ItemView, 0, len(lot.Items)),
			CanAccept:          Allowed(actor, ActionAccept, order, lot, nil),
			CanMarkDeposit:     Allowed(actor, ActionMarkDeposit, order, lot, nil),
			CanConfirmDeposit:  Allowed(actor, ActionConfirmDeposit, order, lot, nil),
			CanCancel:          Allowed(actor, ActionCancelLot, order, lot, nil),
			CanConfirmDelivery: Allowed(actor, ActionConfirmDelivered, order, lot, nil),
		}
		for j := range lot.Items {
			item := &lot.Items[j]
			lotView.Items = append(lotView.Items, ItemView{
				ID:             item.ID,
				ProductID:      item.ProductID,
				Name:           item.Name,
				UnitPriceCents: item.UnitPriceCents,
				Qty:            item.Qty,
				SubtotalCents:  item.SubtotalCents(),
				Status:         item.Status,
				CancelReason:   item.CancelReason,
				Cancellable:    Allowed(actor, ActionCancelItem, order, lot, item),
			})
		}
		view.Lots = append(view.Lots, lotView)
	}
	return view
}
