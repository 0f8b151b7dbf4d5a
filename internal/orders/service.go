package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	pkgerrors "github.com/soukplace/soukplace-backend/pkg/errors"
	"github.com/soukplace/soukplace-backend/pkg/metrics"
	"github.com/soukplace/soukplace-backend/pkg/outbox"
	"github.com/soukplace/soukplace-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// LotActionInput addresses one lot transition.
type LotActionInput struct {
	OrderID uuid.UUID
	LotID   uuid.UUID
	Actor   Actor
}

// CancelOrderInput cancels a whole order. Reason is mandatory.
type CancelOrderInput struct {
	OrderID uuid.UUID
	Actor   Actor
	Reason  string
}

// CancelLotInput cancels a single shop lot. Reason is mandatory.
type CancelLotInput struct {
	OrderID uuid.UUID
	LotID   uuid.UUID
	Actor   Actor
	Reason  string
}

// CancelItemInput cancels a single order line. Reason is mandatory.
type CancelItemInput struct {
	OrderID uuid.UUID
	LotID   uuid.UUID
	ItemID  uuid.UUID
	Actor   Actor
	Reason  string
}

// Service applies guarded order transitions and serves read projections.
type Service interface {
	Accept(ctx context.Context, input LotActionInput) error
	MarkDeposit(ctx context.Context, input LotActionInput) error
	ConfirmDeposit(ctx context.Context, input LotActionInput) error
	CancelOrder(ctx context.Context, input CancelOrderInput) error
	CancelLot(ctx context.Context, input CancelLotInput) error
	CancelItem(ctx context.Context, input CancelItemInput) error
	ConfirmDelivered(ctx context.Context, input LotActionInput) error
	GetOrderView(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderView, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.CheckoutMetrics
	now     func() time.Time
}

// NewService builds an order service with the required dependencies.
// Metrics may be nil; counters degrade to no-ops.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, m *metrics.CheckoutMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  publisher,
		metrics: m,
		now:     time.Now,
	}, nil
}

// AggregateStatus derives the order status from its lots. Terminal order
// states never regress.
func AggregateStatus(order *models.Order) enums.OrderStatus {
	if order.Status.IsTerminal() {
		return order.Status
	}
	if len(order.Lots) == 0 {
		return order.Status
	}

	allCanceled := true
	allTerminal := true
	anyDelivered := false
	anyStarted := false
	for _, lot := range order.Lots {
		if lot.Status != enums.LotStatusCanceled {
			allCanceled = false
		}
		if !lot.Status.IsTerminal() {
			allTerminal = false
		}
		if lot.Status == enums.LotStatusDelivered {
			anyDelivered = true
		}
		if lot.Status != enums.LotStatusPending {
			anyStarted = true
		}
	}

	switch {
	case allCanceled:
		return enums.OrderStatusCanceled
	case allTerminal && anyDelivered:
		return enums.OrderStatusDelivered
	case anyStarted:
		return enums.OrderStatusInProgress
	default:
		return enums.OrderStatusPending
	}
}

func (s *service) Accept(ctx context.Context, input LotActionInput) error {
	return s.applyLotTransition(ctx, input, ActionAccept, func(tx *gorm.DB, repo Repository, order *models.Order, lot *models.ShopLot) error {
		if err := repo.UpdateLot(ctx, lot.ID, map[string]any{"status": enums.LotStatusAccepted}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update lot status")
		}
		lot.Status = enums.LotStatusAccepted

		if err := s.syncOrderStatus(ctx, repo, order); err != nil {
			return err
		}
		s.metrics.IncTransition(string(ActionAccept))
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderAccepted,
			AggregateType: enums.AggregateShopLot,
			AggregateID:   lot.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.LotAcceptedEvent{
				OrderID: order.ID,
				LotID:   lot.ID,
				ShopID:  lot.ShopID,
			},
		})
	})
}

func (s *service) MarkDeposit(ctx context.Context, input LotActionInput) error {
	return s.applyLotTransition(ctx, input, ActionMarkDeposit, func(tx *gorm.DB, repo Repository, order *models.Order, lot *models.ShopLot) error {
		if lot.DepositMarked {
			// Re-marking is a harmless retry.
			return nil
		}
		if err := repo.UpdateLot(ctx, lot.ID, map[string]any{"deposit_marked": true}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark deposit")
		}
		lot.DepositMarked = true

		s.metrics.IncTransition(string(ActionMarkDeposit))
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDepositMarked,
			AggregateType: enums.AggregateShopLot,
			AggregateID:   lot.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.DepositMarkedEvent{
				OrderID: order.ID,
				LotID:   lot.ID,
				ShopID:  lot.ShopID,
			},
		})
	})
}

func (s *service) ConfirmDeposit(ctx context.Context, input LotActionInput) error {
	return s.applyLotTransition(ctx, input, ActionConfirmDeposit, func(tx *gorm.DB, repo Repository, order *models.Order, lot *models.ShopLot) error {
		if lot.DepositValidated() {
			// Already confirmed by another admin; nothing left to commit.
			return nil
		}
		validatedAt := s.now()
		nextStatus := enums.LotStatusInDelivery
		if order.DeliveryMethod == enums.DeliveryMethodPickup {
			nextStatus = enums.LotStatusReadyForPickup
		}
		updates := map[string]any{
			"deposit_validated_at": validatedAt,
			"status":               nextStatus,
		}
		if err := repo.UpdateLot(ctx, lot.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm deposit")
		}
		lot.DepositValidatedAt = &validatedAt
		lot.Status = nextStatus

		if err := s.syncOrderStatus(ctx, repo, order); err != nil {
			return err
		}
		s.metrics.IncTransition(string(ActionConfirmDeposit))
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDepositConfirmed,
			AggregateType: enums.AggregateShopLot,
			AggregateID:   lot.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.DepositConfirmedEvent{
				OrderID:     order.ID,
				LotID:       lot.ID,
				ShopID:      lot.ShopID,
				ValidatedAt: validatedAt,
			},
		})
	})
}

func (s *service) CancelOrder(ctx context.Context, input CancelOrderInput) error {
	reason, err := requireReason(input.Reason)
	if err != nil {
		return err
	}
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if err := CanPerform(input.Actor, ActionCancelOrder, order, nil, nil); err != nil {
			return err
		}

		canceledAt := s.now()
		for i := range order.Lots {
			lot := &order.Lots[i]
			if lot.Status.IsTerminal() {
				continue
			}
			updates := map[string]any{
				"status":        enums.LotStatusCanceled,
				"cancel_reason": reason,
			}
			if err := repo.UpdateLot(ctx, lot.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel lot")
			}
			lot.Status = enums.LotStatusCanceled
			lot.CancelReason = &reason
		}

		updates := map[string]any{
			"status":        enums.OrderStatusCanceled,
			"cancel_reason": reason,
			"canceled_at":   canceledAt,
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		order.Status = enums.OrderStatusCanceled
		order.CancelReason = &reason
		order.CanceledAt = &canceledAt

		s.metrics.IncTransition(string(ActionCancelOrder))
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCanceled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.LotCanceledEvent{
				OrderID:    order.ID,
				CanceledAt: canceledAt,
				Reason:     reason,
			},
		})
	})
}

func (s *service) CancelLot(ctx context.Context, input CancelLotInput) error {
	reason, err := requireReason(input.Reason)
	if err != nil {
		return err
	}
	return s.applyLotTransition(ctx, LotActionInput{OrderID: input.OrderID, LotID: input.LotID, Actor: input.Actor}, ActionCancelLot, func(tx *gorm.DB, repo Repository, order *models.Order, lot *models.ShopLot) error {
		canceledAt := s.now()
		updates := map[string]any{
			"status":        enums.LotStatusCanceled,
			"cancel_reason": reason,
		}
		if err := repo.UpdateLot(ctx, lot.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel lot")
		}
		lot.Status = enums.LotStatusCanceled
		lot.CancelReason = &reason

		if err := s.recomputeTotals(ctx, repo, order); err != nil {
			return err
		}
		if err := s.syncOrderStatus(ctx, repo, order); err != nil {
			return err
		}
		s.metrics.IncTransition(string(ActionCancelLot))
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCanceled,
			AggregateType: enums.AggregateShopLot,
			AggregateID:   lot.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.LotCanceledEvent{
				OrderID:    order.ID,
				LotID:      lot.ID,
				ShopID:     lot.ShopID,
				CanceledAt: canceledAt,
				Reason:     reason,
			},
		})
	})
}

func (s *service) CancelItem(ctx context.Context, input CancelItemInput) error {
	reason, err := requireReason(input.Reason)
	if err != nil {
		return err
	}
	if input.OrderID == uuid.Nil || input.LotID == uuid.Nil || input.ItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order, lot and item ids required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		lot := findLot(order, input.LotID)
		if lot == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "lot not found")
		}
		item := findItem(lot, input.ItemID)
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		if err := CanPerform(input.Actor, ActionCancelItem, order, lot, item); err != nil {
			return err
		}

		updates := map[string]any{
			"status":        enums.OrderItemStatusCanceled,
			"cancel_reason": reason,
		}
		if err := repo.UpdateItem(ctx, item.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel item")
		}
		item.Status = enums.OrderItemStatusCanceled
		item.CancelReason = &reason

		if err := s.recomputeTotals(ctx, repo, order); err != nil {
			return err
		}
		s.metrics.IncTransition(string(ActionCancelItem))
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderItemCanceled,
			AggregateType: enums.AggregateOrderItem,
			AggregateID:   item.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.ItemCanceledEvent{
				OrderID: order.ID,
				LotID:   lot.ID,
				ItemID:  item.ID,
				ShopID:  lot.ShopID,
				Reason:  reason,
			},
		})
	})
}

func (s *service) ConfirmDelivered(ctx context.Context, input LotActionInput) error {
	return s.applyLotTransition(ctx, input, ActionConfirmDelivered, func(tx *gorm.DB, repo Repository, order *models.Order, lot *models.ShopLot) error {
		if err := repo.UpdateLot(ctx, lot.ID, map[string]any{"status": enums.LotStatusDelivered}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark lot delivered")
		}
		lot.Status = enums.LotStatusDelivered

		if err := s.syncOrderStatus(ctx, repo, order); err != nil {
			return err
		}
		s.metrics.IncTransition(string(ActionConfirmDelivered))

		if order.Status == enums.OrderStatusDelivered {
			deliveredAt := s.now()
			if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"delivered_at": deliveredAt}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp delivered_at")
			}
			order.DeliveredAt = &deliveredAt
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderDelivered,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Version:       1,
				Actor:         buildActor(input.Actor),
				Data: payloads.OrderDeliveredEvent{
					OrderID:     order.ID,
					CustomerID:  order.CustomerID,
					DeliveredAt: deliveredAt,
				},
			})
		}
		return nil
	})
}

func (s *service) GetOrderView(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderView, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if err := requireVisibility(actor, order); err != nil {
		return nil, err
	}
	view := BuildView(actor, order)
	return &view, nil
}

func requireVisibility(actor Actor, order *models.Order) error {
	switch actor.Role {
	case enums.ActorRoleAdmin:
		return nil
	case enums.ActorRoleCustomer:
		if order.CustomerID == actor.UserID {
			return nil
		}
	case enums.ActorRoleShop:
		if actor.ShopID != nil {
			for _, lot := range order.Lots {
				if lot.ShopID == *actor.ShopID {
					return nil
				}
			}
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "order is not visible to actor")
}

func (s *service) applyLotTransition(ctx context.Context, input LotActionInput, action Action, apply func(tx *gorm.DB, repo Repository, order *models.Order, lot *models.ShopLot) error) error {
	if input.OrderID == uuid.Nil || input.LotID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order and lot ids required")
	}
	if input.Actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		lot := findLot(order, input.LotID)
		if lot == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "lot not found")
		}
		if err := CanPerform(input.Actor, action, order, lot, nil); err != nil {
			return err
		}
		return apply(tx, repo, order, lot)
	})
}

func (s *service) loadOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// syncOrderStatus persists the derived aggregate status when it moved.
func (s *service) syncOrderStatus(ctx context.Context, repo Repository, order *models.Order) error {
	next := AggregateStatus(order)
	if next == order.Status {
		return nil
	}
	if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"status": next}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = next
	return nil
}

// recomputeTotals shrinks the order subtotal/total after cancellations. The
// delivery fee agreed at checkout is kept as-is.
func (s *service) recomputeTotals(ctx context.Context, repo Repository, order *models.Order) error {
	subtotal := 0
	for _, lot := range order.Lots {
		if lot.Status == enums.LotStatusCanceled {
			continue
		}
		subtotal += LotSubtotalCents(lot)
	}
	total := subtotal + order.DeliveryFeeCents
	if subtotal == order.SubtotalCents && total == order.TotalCents {
		return nil
	}
	updates := map[string]any{
		"subtotal_cents": subtotal,
		"total_cents":    total,
	}
	if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order totals")
	}
	order.SubtotalCents = subtotal
	order.TotalCents = total
	return nil
}

func requireReason(raw string) (string, error) {
	reason := strings.TrimSpace(raw)
	if reason == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "a cancellation reason is required")
	}
	return reason, nil
}

func findLot(order *models.Order, lotID uuid.UUID) *models.ShopLot {
	for i := range order.Lots {
		if order.Lots[i].ID == lotID {
			return &order.Lots[i]
		}
	}
	return nil
}

func findItem(lot *models.ShopLot, itemID uuid.UUID) *models.OrderItem {
	for i := range lot.Items {
		if lot.Items[i].ID == itemID {
			return &lot.Items[i]
		}
	}
	return nil
}

func buildActor(actor Actor) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID: actor.UserID,
		ShopID: actor.ShopID,
		Role:   string(actor.Role),
	}
}
