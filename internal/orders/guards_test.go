package orders

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	pkgerrors "github.com/soukplace/soukplace-backend/pkg/errors"
)

func customerActor(order *models.Order) Actor {
	return Actor{UserID: order.CustomerID, Role: enums.ActorRoleCustomer}
}

func shopActor(shopID uuid.UUID) Actor {
	id := shopID
	return Actor{UserID: uuid.New(), Role: enums.ActorRoleShop, ShopID: &id}
}

func adminActor() Actor {
	return Actor{UserID: uuid.New(), Role: enums.ActorRoleAdmin}
}

func buildOrder(lotCount int) *models.Order {
	order := &models.Order{
		ID:             uuid.New(),
		OrderNumber:    "SP-20260302-TEST",
		CustomerID:     uuid.New(),
		DeliveryMethod: enums.DeliveryMethodPickup,
		Status:         enums.OrderStatusPending,
	}
	for i := 0; i < lotCount; i++ {
		lot := models.ShopLot{
			ID:       uuid.New(),
			OrderID:  order.ID,
			ShopID:   uuid.New(),
			ShopName: "Shop",
			Status:   enums.LotStatusPending,
			Items: []models.OrderItem{
				{ID: uuid.New(), ProductID: uuid.New(), Name: "Olives", UnitPriceCents: 500, Qty: 2, Status: enums.OrderItemStatusActive},
			},
		}
		for j := range lot.Items {
			lot.Items[j].LotID = lot.ID
		}
		order.Lots = append(order.Lots, lot)
	}
	return order
}

func assertGuardCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected guard refusal, got nil")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%s)", code, typed.Code(), typed.Message())
	}
}

func TestCustomerCannotCancelOrderAfterAnyDepositValidated(t *testing.T) {
	order := buildOrder(2)
	now := time.Now()
	order.Lots[1].DepositValidatedAt = &now

	err := CanPerform(customerActor(order), ActionCancelOrder, order, nil, nil)
	assertGuardCode(t, err, pkgerrors.CodeGuard)
}

func TestAdminCanCancelOrderAfterDepositValidated(t *testing.T) {
	order := buildOrder(2)
	now := time.Now()
	order.Lots[0].DepositValidatedAt = &now

	if err := CanPerform(adminActor(), ActionCancelOrder, order, nil, nil); err != nil {
		t.Fatalf("admin cancel should pass, got %v", err)
	}
}

func TestShopCannotCancelWholeOrder(t *testing.T) {
	order := buildOrder(1)
	err := CanPerform(shopActor(order.Lots[0].ShopID), ActionCancelOrder, order, nil, nil)
	assertGuardCode(t, err, pkgerrors.CodeForbidden)
}

func TestCancelOrderRejectedWhenTerminal(t *testing.T) {
	order := buildOrder(1)
	order.Status = enums.OrderStatusDelivered
	err := CanPerform(adminActor(), ActionCancelOrder, order, nil, nil)
	assertGuardCode(t, err, pkgerrors.CodeGuard)
}

func TestShopCannotTouchForeignLot(t *testing.T) {
	order := buildOrder(2)
	foreign := shopActor(uuid.New())

	err := CanPerform(foreign, ActionAccept, order, &order.Lots[0], nil)
	assertGuardCode(t, err, pkgerrors.CodeForbidden)

	err = CanPerform(foreign, ActionCancelItem, order, &order.Lots[0], &order.Lots[0].Items[0])
	assertGuardCode(t, err, pkgerrors.CodeForbidden)
}

func TestItemCancelFrozenAfterDepositValidation(t *testing.T) {
	order := buildOrder(1)
	lot := &order.Lots[0]
	now := time.Now()
	lot.Status = enums.LotStatusAccepted
	lot.DepositMarked = true
	lot.DepositValidatedAt = &now

	err := CanPerform(customerActor(order), ActionCancelItem, order, lot, &lot.Items[0])
	assertGuardCode(t, err, pkgerrors.CodeGuard)

	err = CanPerform(shopActor(lot.ShopID), ActionCancelItem, order, lot, &lot.Items[0])
	assertGuardCode(t, err, pkgerrors.CodeGuard)
}

func TestAdminExcludedFromItemCancel(t *testing.T) {
	order := buildOrder(1)
	lot := &order.Lots[0]
	err := CanPerform(adminActor(), ActionCancelItem, order, lot, &lot.Items[0])
	assertGuardCode(t, err, pkgerrors.CodeForbidden)
}

func TestAlreadyCanceledItemCannotBeCanceledAgain(t *testing.T) {
	order := buildOrder(1)
	lot := &order.Lots[0]
	lot.Items[0].Status = enums.OrderItemStatusCanceled

	err := CanPerform(customerActor(order), ActionCancelItem, order, lot, &lot.Items[0])
	assertGuardCode(t, err, pkgerrors.CodeGuard)
}

func TestMarkDepositRequiresAcceptedLot(t *testing.T) {
	order := buildOrder(1)
	lot := &order.Lots[0]

	err := CanPerform(shopActor(lot.ShopID), ActionMarkDeposit, order, lot, nil)
	assertGuardCode(t, err, pkgerrors.CodeGuard)

	lot.Status = enums.LotStatusAccepted
	if err := CanPerform(shopActor(lot.ShopID), ActionMarkDeposit, order, lot, nil); err != nil {
		t.Fatalf("accepted lot should allow deposit mark, got %v", err)
	}
}

func TestConfirmDepositRequiresAdminAndMark(t *testing.T) {
	order := buildOrder(1)
	lot := &order.Lots[0]
	lot.Status = enums.LotStatusAccepted

	err := CanPerform(shopActor(lot.ShopID), ActionConfirmDeposit, order, lot, nil)
	assertGuardCode(t, err, pkgerrors.CodeForbidden)

	err = CanPerform(adminActor(), ActionConfirmDeposit, order, lot, nil)
	assertGuardCode(t, err, pkgerrors.CodeGuard)

	lot.DepositMarked = true
	if err := CanPerform(adminActor(), ActionConfirmDeposit, order, lot, nil); err != nil {
		t.Fatalf("marked lot should allow confirmation, got %v", err)
	}
}

func TestConfirmDeliveredRequiresDeliverableLot(t *testing.T) {
	order := buildOrder(1)
	lot := &order.Lots[0]
	lot.Status = enums.LotStatusAccepted

	err := CanPerform(customerActor(order), ActionConfirmDelivered, order, lot, nil)
	assertGuardCode(t, err, pkgerrors.CodeGuard)

	lot.Status = enums.LotStatusReadyForPickup
	if err := CanPerform(customerActor(order), ActionConfirmDelivered, order, lot, nil); err != nil {
		t.Fatalf("ready lot should allow delivery confirmation, got %v", err)
	}

	err = CanPerform(shopActor(lot.ShopID), ActionConfirmDelivered, order, lot, nil)
	assertGuardCode(t, err, pkgerrors.CodeForbidden)
}
