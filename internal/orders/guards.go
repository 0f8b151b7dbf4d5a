package orders

import (
	"github.com/google/uuid"

	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	pkgerrors "github.com/soukplace/soukplace-backend/pkg/errors"
)

// Actor identifies who is attempting a transition. ShopID is set only for
// shop-role actors.
type Actor struct {
	UserID uuid.UUID
	Role   enums.ActorRole
	ShopID *uuid.UUID
}

// Action names every guarded transition on an order.
type Action string

const (
	ActionAccept           Action = "accept"
	ActionMarkDeposit      Action = "mark_deposit"
	ActionConfirmDeposit   Action = "confirm_deposit"
	ActionCancelOrder      Action = "cancel_order"
	ActionCancelLot        Action = "cancel_lot"
	ActionCancelItem       Action = "cancel_item"
	ActionConfirmDelivered Action = "confirm_delivered"
)

// CanPerform is the single capability check shared by the transition applier
// and the read-side permission flags, so the two can never diverge. A nil
// return means the action is allowed; otherwise the typed error explains the
// refusal (Forbidden for role/scope, Guard for state).
func CanPerform(actor Actor, action Action, order *models.Order, lot *models.ShopLot, item *models.OrderItem) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	switch action {
	case ActionAccept:
		return canAccept(actor, order, lot)
	case ActionMarkDeposit:
		return canMarkDeposit(actor, order, lot)
	case ActionConfirmDeposit:
		return canConfirmDeposit(actor, order, lot)
	case ActionCancelOrder:
		return canCancelOrder(actor, order)
	case ActionCancelLot:
		return canCancelLot(actor, order, lot)
	case ActionCancelItem:
		return canCancelItem(actor, order, lot, item)
	case ActionConfirmDelivered:
		return canConfirmDelivered(actor, order, lot)
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown action")
	}
}

// Allowed is the dry-run form used by the query facade.
func Allowed(actor Actor, action Action, order *models.Order, lot *models.ShopLot, item *models.OrderItem) bool {
	return CanPerform(actor, action, order, lot, item) == nil
}

func canAccept(actor Actor, order *models.Order, lot *models.ShopLot) error {
	if lot == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "lot required")
	}
	if err := requireShopOrAdmin(actor, lot); err != nil {
		return err
	}
	if order.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeGuard, "order is already closed")
	}
	if lot.Status != enums.LotStatusPending {
		return pkgerrors.New(pkgerrors.CodeGuard, "lot is not awaiting acceptance")
	}
	return nil
}

func canMarkDeposit(actor Actor, order *models.Order, lot *models.ShopLot) error {
	if lot == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "lot required")
	}
	if actor.Role != enums.ActorRoleShop {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the shop can mark a deposit")
	}
	if err := requireOwningShop(actor, lot); err != nil {
		return err
	}
	if order.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeGuard, "order is already closed")
	}
	if lot.Status != enums.LotStatusAccepted {
		return pkgerrors.New(pkgerrors.CodeGuard, "lot must be accepted before marking a deposit")
	}
	if lot.DepositValidated() {
		return pkgerrors.New(pkgerrors.CodeGuard, "deposit already validated")
	}
	return nil
}

func canConfirmDeposit(actor Actor, order *models.Order, lot *models.ShopLot) error {
	if lot == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "lot required")
	}
	if actor.Role != enums.ActorRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only warehouse staff can confirm a deposit")
	}
	if order.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeGuard, "order is already closed")
	}
	if !lot.DepositMarked {
		return pkgerrors.New(pkgerrors.CodeGuard, "deposit has not been marked by the shop")
	}
	if lot.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeGuard, "lot is already closed")
	}
	return nil
}

func canCancelOrder(actor Actor, order *models.Order) error {
	if order.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeGuard, "order is already closed")
	}
	switch actor.Role {
	case enums.ActorRoleAdmin:
		return nil
	case enums.ActorRoleCustomer:
		if order.CustomerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}
		if anyDepositValidated(order) {
			return pkgerrors.New(pkgerrors.CodeGuard, "a lot was already deposited at the warehouse")
		}
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "shops cancel their own lot, not the whole order")
	}
}

func canCancelLot(actor Actor, order *models.Order, lot *models.ShopLot) error {
	if lot == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "lot required")
	}
	if err := requireShopOrAdmin(actor, lot); err != nil {
		return err
	}
	if order.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeGuard, "order is already closed")
	}
	if lot.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeGuard, "lot is already closed")
	}
	if lot.DepositValidated() {
		return pkgerrors.New(pkgerrors.CodeGuard, "deposit already validated")
	}
	return nil
}

func canCancelItem(actor Actor, order *models.Order, lot *models.ShopLot, item *models.OrderItem) error {
	if lot == nil || item == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "lot and item required")
	}
	// Admin is deliberately excluded from item-level cancellation.
	switch actor.Role {
	case enums.ActorRoleCustomer:
		if order.CustomerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}
	case enums.ActorRoleShop:
		if err := requireOwningShop(actor, lot); err != nil {
			return err
		}
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "item cancellation is reserved to customer and shop")
	}
	if order.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeGuard, "order is already closed")
	}
	if item.Status == enums.OrderItemStatusCanceled {
		return pkgerrors.New(pkgerrors.CodeGuard, "item is already canceled")
	}
	if lot.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeGuard, "lot is already closed")
	}
	if lot.DepositValidated() {
		return pkgerrors.New(pkgerrors.CodeGuard, "deposit already validated")
	}
	return nil
}

func canConfirmDelivered(actor Actor, order *models.Order, lot *models.ShopLot) error {
	if lot == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "lot required")
	}
	switch actor.Role {
	case enums.ActorRoleAdmin:
	case enums.ActorRoleCustomer:
		if order.CustomerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "delivery confirmation is reserved to customer and admin")
	}
	if order.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeGuard, "order is already closed")
	}
	if !lot.Status.IsDeliverable() {
		return pkgerrors.New(pkgerrors.CodeGuard, "lot is not out for delivery or ready for pickup")
	}
	return nil
}

func requireShopOrAdmin(actor Actor, lot *models.ShopLot) error {
	if actor.Role == enums.ActorRoleAdmin {
		return nil
	}
	if actor.Role != enums.ActorRoleShop {
		return pkgerrors.New(pkgerrors.CodeForbidden, "action reserved to shop and admin")
	}
	return requireOwningShop(actor, lot)
}

func requireOwningShop(actor Actor, lot *models.ShopLot) error {
	if actor.ShopID == nil || *actor.ShopID != lot.ShopID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "lot does not belong to shop")
	}
	return nil
}

func anyDepositValidated(order *models.Order) bool {
	for _, lot := range order.Lots {
		if lot.DepositValidated() {
			return true
		}
	}
	return false
}
