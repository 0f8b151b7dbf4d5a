package notifications

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	"github.com/soukplace/soukplace-backend/pkg/outbox"
	"github.com/soukplace/soukplace-backend/pkg/outbox/payloads"
	"github.com/soukplace/soukplace-backend/pkg/pagination"
)

type memRepo struct {
	rows []models.Notification
}

func (m *memRepo) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = uuid.New()
	notification.CreatedAt = time.Now()
	m.rows = append(m.rows, *notification)
	return nil
}

func (m *memRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*List, error) {
	list := &List{}
	for _, row := range m.rows {
		if row.UserID == userID {
			list.Notifications = append(list.Notifications, row)
		}
	}
	return list, nil
}

func (m *memRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	now := time.Now()
	for i := range m.rows {
		if m.rows[i].ID == notificationID && m.rows[i].UserID == userID && m.rows[i].ReadAt == nil {
			m.rows[i].ReadAt = &now
		}
	}
	return nil
}

func (m *memRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	for i := range m.rows {
		if m.rows[i].UserID == userID && m.rows[i].ReadAt == nil {
			m.rows[i].ReadAt = &now
		}
	}
	return nil
}

func (m *memRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, row := range m.rows {
		if row.UserID == userID && row.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

type stubOrders struct {
	order *models.Order
}

func (s *stubOrders) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.order != nil && s.order.ID == orderID {
		return s.order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubShops struct {
	shops map[uuid.UUID]*models.Shop
}

func (s *stubShops) FindByID(ctx context.Context, shopID uuid.UUID) (*models.Shop, error) {
	if shop, ok := s.shops[shopID]; ok {
		return shop, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func envelopeEvent(t *testing.T, eventType enums.OutboxEventType, aggregate enums.OutboxAggregateType, data any) models.OutboxEvent {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       raw,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: aggregate,
		AggregateID:   uuid.New(),
		Payload:       envelope,
	}
}

func newTestConsumer(t *testing.T, order *models.Order, shopRows ...*models.Shop) (*Consumer, *memRepo) {
	t.Helper()
	repo := &memRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	index := map[uuid.UUID]*models.Shop{}
	for _, shop := range shopRows {
		index[shop.ID] = shop
	}
	consumer, err := NewConsumer(svc, &stubOrders{order: order}, &stubShops{shops: index}, nil)
	if err != nil {
		t.Fatalf("build consumer: %v", err)
	}
	return consumer, repo
}

func TestOrderCreatedNotifiesEveryShopOwner(t *testing.T) {
	shopA := &models.Shop{ID: uuid.New(), OwnerUserID: uuid.New(), Name: "A"}
	shopB := &models.Shop{ID: uuid.New(), OwnerUserID: uuid.New(), Name: "B"}
	consumer, repo := newTestConsumer(t, nil, shopA, shopB)

	event := envelopeEvent(t, enums.EventOrderCreated, enums.AggregateOrder, payloads.OrderCreatedEvent{
		OrderID:     uuid.New(),
		OrderNumber: "SP-20260302-ABCD1234",
		ShopIDs:     []uuid.UUID{shopA.ID, shopB.ID},
	})
	if err := consumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(repo.rows) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(repo.rows))
	}
	owners := map[uuid.UUID]bool{repo.rows[0].UserID: true, repo.rows[1].UserID: true}
	if !owners[shopA.OwnerUserID] || !owners[shopB.OwnerUserID] {
		t.Fatalf("wrong recipients: %v", owners)
	}
	if !strings.Contains(repo.rows[0].Message, "SP-20260302-ABCD1234") {
		t.Fatalf("message should carry the order number: %q", repo.rows[0].Message)
	}
}

func TestLotCanceledNamesTheShop(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), OwnerUserID: uuid.New(), Name: "Epices du Souk"}
	order := &models.Order{ID: uuid.New(), OrderNumber: "SP-1", CustomerID: uuid.New()}
	consumer, repo := newTestConsumer(t, order, shop)

	event := envelopeEvent(t, enums.EventOrderCanceled, enums.AggregateShopLot, payloads.LotCanceledEvent{
		OrderID: order.ID,
		LotID:   uuid.New(),
		ShopID:  shop.ID,
		Reason:  "out of stock",
	})
	if err := consumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(repo.rows) != 1 || repo.rows[0].UserID != order.CustomerID {
		t.Fatalf("expected one customer notification, got %+v", repo.rows)
	}
	if !strings.Contains(repo.rows[0].Message, "Epices du Souk") ||
		!strings.Contains(repo.rows[0].Message, "out of stock") {
		t.Fatalf("message = %q", repo.rows[0].Message)
	}
}

func TestWholeOrderCancelSkipsShopLookup(t *testing.T) {
	order := &models.Order{ID: uuid.New(), OrderNumber: "SP-2", CustomerID: uuid.New()}
	consumer, repo := newTestConsumer(t, order)

	event := envelopeEvent(t, enums.EventOrderCanceled, enums.AggregateOrder, payloads.LotCanceledEvent{
		OrderID: order.ID,
		Reason:  "changed my mind",
	})
	if err := consumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected one notification, got %d", len(repo.rows))
	}
}

func TestDepositConfirmedMentionsPickupReadiness(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), OwnerUserID: uuid.New(), Name: "A"}
	order := &models.Order{
		ID:             uuid.New(),
		OrderNumber:    "SP-3",
		CustomerID:     uuid.New(),
		DeliveryMethod: enums.DeliveryMethodPickup,
	}
	consumer, repo := newTestConsumer(t, order, shop)

	event := envelopeEvent(t, enums.EventOrderDepositConfirmed, enums.AggregateShopLot, payloads.DepositConfirmedEvent{
		OrderID:     order.ID,
		LotID:       uuid.New(),
		ShopID:      shop.ID,
		ValidatedAt: time.Now(),
	})
	if err := consumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(repo.rows) != 1 || !strings.Contains(repo.rows[0].Message, "ready for pickup") {
		t.Fatalf("unexpected rows %+v", repo.rows)
	}
}

func TestShopModerationNotifiesOwner(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), OwnerUserID: uuid.New(), Name: "A"}
	consumer, repo := newTestConsumer(t, nil, shop)

	event := envelopeEvent(t, enums.EventShopSuspended, enums.AggregateShop, payloads.ShopModeratedEvent{
		ShopID: shop.ID,
		Status: enums.ShopStatusSuspended,
		Reason: "policy violation",
	})
	if err := consumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(repo.rows) != 1 || repo.rows[0].UserID != shop.OwnerUserID {
		t.Fatalf("unexpected rows %+v", repo.rows)
	}
	if repo.rows[0].Type != enums.NotificationTypeShopAlert {
		t.Fatalf("type = %s", repo.rows[0].Type)
	}
}

func TestUnknownEventIsAcknowledged(t *testing.T) {
	consumer, repo := newTestConsumer(t, nil)
	event := envelopeEvent(t, enums.EventOrderDepositMarked, enums.AggregateShopLot, payloads.DepositMarkedEvent{})
	if err := consumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(repo.rows) != 0 {
		t.Fatalf("deposit-marked should not notify, got %+v", repo.rows)
	}
}

func TestUnreadLifecycle(t *testing.T) {
	repo := &memRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	userID := uuid.New()
	for i := 0; i < 3; i++ {
		if err := svc.Push(context.Background(), &models.Notification{
			UserID:  userID,
			Type:    enums.NotificationTypeOrderAlert,
			Title:   "t",
			Message: "m",
		}); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	count, err := svc.CountUnread(context.Background(), userID)
	if err != nil || count != 3 {
		t.Fatalf("unread = %d (%v), want 3", count, err)
	}
	if err := svc.MarkRead(context.Background(), userID, repo.rows[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	count, _ = svc.CountUnread(context.Background(), userID)
	if count != 2 {
		t.Fatalf("unread = %d, want 2", count)
	}
	if err := svc.MarkAllRead(context.Background(), userID); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	count, _ = svc.CountUnread(context.Background(), userID)
	if count != 0 {
		t.Fatalf("unread = %d, want 0", count)
	}
}
