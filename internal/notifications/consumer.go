package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	"github.com/soukplace/soukplace-backend/pkg/logger"
	"github.com/soukplace/soukplace-backend/pkg/outbox"
	"github.com/soukplace/soukplace-backend/pkg/outbox/payloads"
)

type orderFinder interface {
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type shopFinder interface {
	FindByID(ctx context.Context, shopID uuid.UUID) (*models.Shop, error)
}

// Consumer turns outbox events into in-app notification rows. It implements
// outbox.Handler; a returned error leaves the event queued for retry.
type Consumer struct {
	svc    Service
	orders orderFinder
	shops  shopFinder
	logg   *logger.Logger
}

// NewConsumer builds the notification consumer.
func NewConsumer(svc Service, orders orderFinder, shops shopFinder, logg *logger.Logger) (*Consumer, error) {
	if svc == nil {
		return nil, fmt.Errorf("notification service required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order finder required")
	}
	if shops == nil {
		return nil, fmt.Errorf("shop finder required")
	}
	return &Consumer{svc: svc, orders: orders, shops: shops, logg: logg}, nil
}

// Handle routes one outbox event to the matching notification builder.
// Unknown event types are acknowledged without effect so the queue drains.
func (c *Consumer) Handle(ctx context.Context, event models.OutboxEvent) error {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	switch event.EventType {
	case enums.EventOrderCreated:
		return c.orderCreated(ctx, envelope.Data)
	case enums.EventOrderAccepted:
		return c.lotAccepted(ctx, envelope.Data)
	case enums.EventOrderCanceled:
		return c.canceled(ctx, event.AggregateType, envelope.Data)
	case enums.EventOrderItemCanceled:
		return c.itemCanceled(ctx, envelope.Data)
	case enums.EventOrderDepositConfirmed:
		return c.depositConfirmed(ctx, envelope.Data)
	case enums.EventOrderDelivered:
		return c.delivered(ctx, envelope.Data)
	case enums.EventShopApproved, enums.EventShopSuspended:
		return c.shopModerated(ctx, envelope.Data)
	default:
		if c.logg != nil {
			c.logg.Info(c.logg.WithField(ctx, "event_type", string(event.EventType)), "outbox event has no notification mapping")
		}
		return nil
	}
}

// orderCreated tells every shop in the split that a lot is waiting.
func (c *Consumer) orderCreated(ctx context.Context, data json.RawMessage) error {
	var payload payloads.OrderCreatedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	for _, shopID := range payload.ShopIDs {
		shop, err := c.shops.FindByID(ctx, shopID)
		if err != nil {
			return fmt.Errorf("load shop %s: %w", shopID, err)
		}
		err = c.svc.Push(ctx, &models.Notification{
			UserID:  shop.OwnerUserID,
			Type:    enums.NotificationTypeOrderAlert,
			Title:   "New order",
			Message: fmt.Sprintf("Order %s is waiting for your confirmation.", payload.OrderNumber),
			Link:    orderLink(payload.OrderID),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Consumer) lotAccepted(ctx context.Context, data json.RawMessage) error {
	var payload payloads.LotAcceptedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	order, err := c.orders.FindOrder(ctx, payload.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", payload.OrderID, err)
	}
	shop, err := c.shops.FindByID(ctx, payload.ShopID)
	if err != nil {
		return fmt.Errorf("load shop %s: %w", payload.ShopID, err)
	}
	return c.svc.Push(ctx, &models.Notification{
		UserID:  order.CustomerID,
		Type:    enums.NotificationTypeOrderAlert,
		Title:   "Order confirmed",
		Message: fmt.Sprintf("%s confirmed your order %s.", shop.Name, order.OrderNumber),
		Link:    orderLink(order.ID),
	})
}

// canceled handles both whole-order and single-lot cancellations; they share
// a payload and differ by aggregate type.
func (c *Consumer) canceled(ctx context.Context, aggregate enums.OutboxAggregateType, data json.RawMessage) error {
	var payload payloads.LotCanceledEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	order, err := c.orders.FindOrder(ctx, payload.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", payload.OrderID, err)
	}

	message := fmt.Sprintf("Your order %s was canceled.", order.OrderNumber)
	if aggregate == enums.AggregateShopLot && payload.ShopID != uuid.Nil {
		shop, err := c.shops.FindByID(ctx, payload.ShopID)
		if err != nil {
			return fmt.Errorf("load shop %s: %w", payload.ShopID, err)
		}
		message = fmt.Sprintf("%s canceled its part of order %s.", shop.Name, order.OrderNumber)
	}
	if payload.Reason != "" {
		message = fmt.Sprintf("%s Reason: %s", message, payload.Reason)
	}
	return c.svc.Push(ctx, &models.Notification{
		UserID:  order.CustomerID,
		Type:    enums.NotificationTypeOrderAlert,
		Title:   "Order canceled",
		Message: message,
		Link:    orderLink(order.ID),
	})
}

func (c *Consumer) itemCanceled(ctx context.Context, data json.RawMessage) error {
	var payload payloads.ItemCanceledEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	order, err := c.orders.FindOrder(ctx, payload.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", payload.OrderID, err)
	}
	message := fmt.Sprintf("An item was removed from your order %s; the total was adjusted.", order.OrderNumber)
	if payload.Reason != "" {
		message = fmt.Sprintf("%s Reason: %s", message, payload.Reason)
	}
	return c.svc.Push(ctx, &models.Notification{
		UserID:  order.CustomerID,
		Type:    enums.NotificationTypeOrderAlert,
		Title:   "Order updated",
		Message: message,
		Link:    orderLink(order.ID),
	})
}

func (c *Consumer) depositConfirmed(ctx context.Context, data json.RawMessage) error {
	var payload payloads.DepositConfirmedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	order, err := c.orders.FindOrder(ctx, payload.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", payload.OrderID, err)
	}
	message := fmt.Sprintf("Part of your order %s arrived at the market warehouse.", order.OrderNumber)
	if order.DeliveryMethod == enums.DeliveryMethodPickup {
		message = fmt.Sprintf("Part of your order %s is ready for pickup.", order.OrderNumber)
	}
	return c.svc.Push(ctx, &models.Notification{
		UserID:  order.CustomerID,
		Type:    enums.NotificationTypeOrderAlert,
		Title:   "Order in preparation",
		Message: message,
		Link:    orderLink(order.ID),
	})
}

func (c *Consumer) delivered(ctx context.Context, data json.RawMessage) error {
	var payload payloads.OrderDeliveredEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	order, err := c.orders.FindOrder(ctx, payload.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", payload.OrderID, err)
	}
	return c.svc.Push(ctx, &models.Notification{
		UserID:  payload.CustomerID,
		Type:    enums.NotificationTypeOrderAlert,
		Title:   "Order delivered",
		Message: fmt.Sprintf("Your order %s is complete. Thank you!", order.OrderNumber),
		Link:    orderLink(order.ID),
	})
}

func (c *Consumer) shopModerated(ctx context.Context, data json.RawMessage) error {
	var payload payloads.ShopModeratedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	shop, err := c.shops.FindByID(ctx, payload.ShopID)
	if err != nil {
		return fmt.Errorf("load shop %s: %w", payload.ShopID, err)
	}
	title := "Shop approved"
	message := fmt.Sprintf("%s is now open on the marketplace.", shop.Name)
	if payload.Status == enums.ShopStatusSuspended {
		title = "Shop suspended"
		message = fmt.Sprintf("%s was suspended from the marketplace.", shop.Name)
		if payload.Reason != "" {
			message = fmt.Sprintf("%s Reason: %s", message, payload.Reason)
		}
	}
	return c.svc.Push(ctx, &models.Notification{
		UserID:  shop.OwnerUserID,
		Type:    enums.NotificationTypeShopAlert,
		Title:   title,
		Message: message,
	})
}

func orderLink(orderID uuid.UUID) *string {
	link := fmt.Sprintf("/orders/%s", orderID)
	return &link
}
