package checkout

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/soukplace/soukplace-backend/internal/cart"
	"github.com/soukplace/soukplace-backend/internal/eligibility"
	"github.com/soukplace/soukplace-backend/internal/orders"
	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	pkgerrors "github.com/soukplace/soukplace-backend/pkg/errors"
	"github.com/soukplace/soukplace-backend/pkg/outbox"
	"github.com/soukplace/soukplace-backend/pkg/pagination"
	"github.com/soukplace/soukplace-backend/pkg/types"
)

// Monday, well clear of any closure fixtures.
var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type memCart struct {
	record    *models.Cart
	converted bool
}

func (m *memCart) WithTx(tx *gorm.DB) cart.Repository { return m }

func (m *memCart) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	if m.record == nil || m.record.CustomerID != customerID {
		return nil, gorm.ErrRecordNotFound
	}
	return m.record, nil
}

func (m *memCart) Create(ctx context.Context, record *models.Cart) (*models.Cart, error) {
	return record, nil
}

func (m *memCart) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *memCart) CreateItem(ctx context.Context, item *models.CartItem) error        { return nil }
func (m *memCart) UpdateItemQty(ctx context.Context, itemID uuid.UUID, qty int) error { return nil }
func (m *memCart) DeleteItem(ctx context.Context, itemID uuid.UUID) error             { return nil }
func (m *memCart) DeleteItems(ctx context.Context, cartID uuid.UUID) error            { return nil }

func (m *memCart) MarkConverted(ctx context.Context, cartID uuid.UUID) error {
	m.converted = true
	return nil
}

type stubShops struct {
	shops map[uuid.UUID]models.Shop
}

func (s *stubShops) FindByIDs(ctx context.Context, shopIDs []uuid.UUID) ([]models.Shop, error) {
	var out []models.Shop
	for _, id := range shopIDs {
		if shop, ok := s.shops[id]; ok {
			out = append(out, shop)
		}
	}
	return out, nil
}

type stubMarket struct {
	fee     types.FeeSchedule
	windows []eligibility.Window
}

func (s *stubMarket) GetSettings(ctx context.Context) (*models.MarketSettings, error) {
	return &models.MarketSettings{ID: models.MarketSettingsRowID, DeliveryFee: s.fee}, nil
}

func (s *stubMarket) ClosureWindows(ctx context.Context, from time.Time) ([]eligibility.Window, error) {
	return s.windows, nil
}

type memOrders struct {
	created *models.Order
}

func (m *memOrders) WithTx(tx *gorm.DB) orders.Repository { return m }

func (m *memOrders) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	m.created = order
	return order, nil
}

func (m *memOrders) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *memOrders) FindLot(ctx context.Context, lotID uuid.UUID) (*models.ShopLot, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *memOrders) FindItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *memOrders) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return nil
}

func (m *memOrders) UpdateLot(ctx context.Context, lotID uuid.UUID, updates map[string]any) error {
	return nil
}

func (m *memOrders) UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	return nil
}

func (m *memOrders) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters orders.CustomerOrderFilters) (*orders.CustomerOrderList, error) {
	return &orders.CustomerOrderList{}, nil
}

func (m *memOrders) ListShopLots(ctx context.Context, shopID uuid.UUID, params pagination.Params, filters orders.ShopLotFilters) (*orders.ShopLotList, error) {
	return &orders.ShopLotList{}, nil
}

func (m *memOrders) ListDepositQueue(ctx context.Context, params pagination.Params) (*orders.ShopLotList, error) {
	return &orders.ShopLotList{}, nil
}

type passTx struct{}

func (passTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func openShop(name string) models.Shop {
	return models.Shop{
		ID:                  uuid.New(),
		Name:                name,
		Status:              enums.ShopStatusApproved,
		ClickCollectEnabled: true,
		OpenDays:            types.EveryDay(),
		DeliveryFee:         types.DefaultFeeSchedule(),
	}
}

func cartWith(customerID uuid.UUID, lines ...models.CartItem) *models.Cart {
	return &models.Cart{
		ID:         uuid.New(),
		CustomerID: customerID,
		Status:     enums.CartStatusActive,
		Items:      lines,
	}
}

func line(shopID uuid.UUID, name string, priceCents, qty int) models.CartItem {
	return models.CartItem{
		ID:             uuid.New(),
		ProductID:      uuid.New(),
		ShopID:         shopID,
		Name:           name,
		UnitPriceCents: priceCents,
		Qty:            qty,
	}
}

type fixture struct {
	svc    Service
	carts  *memCart
	orders *memOrders
	events *stubOutbox
	market *stubMarket
}

func newFixture(t *testing.T, record *models.Cart, shopRows ...models.Shop) *fixture {
	t.Helper()
	carts := &memCart{record: record}
	index := map[uuid.UUID]models.Shop{}
	for _, shop := range shopRows {
		index[shop.ID] = shop
	}
	market := &stubMarket{fee: types.DefaultFeeSchedule()}
	ordersRepo := &memOrders{}
	events := &stubOutbox{}
	svc, err := NewService(carts, &stubShops{shops: index}, market, ordersRepo, passTx{}, events, nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	svc.(*service).now = func() time.Time { return testNow }
	return &fixture{svc: svc, carts: carts, orders: ordersRepo, events: events, market: market}
}

func TestSubmitPickupSplitsCartIntoLots(t *testing.T) {
	customerID := uuid.New()
	shopA := openShop("Epices du Souk")
	shopB := openShop("Tapis Berbere")
	record := cartWith(customerID,
		line(shopA.ID, "Ras el hanout", 450, 2),
		line(shopB.ID, "Kilim", 12000, 1),
		line(shopA.ID, "Safran", 900, 1),
	)
	fx := newFixture(t, record, shopA, shopB)

	order, err := fx.svc.Submit(context.Background(), customerID, SubmitInput{
		DeliveryMethod: enums.DeliveryMethodPickup,
		DeliveryDate:   testNow.AddDate(0, 0, 1),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if len(order.Lots) != 2 {
		t.Fatalf("expected 2 lots, got %d", len(order.Lots))
	}
	for _, lot := range order.Lots {
		if lot.Status != enums.LotStatusPending {
			t.Fatalf("lot status = %s, want pending", lot.Status)
		}
	}
	if order.Lots[0].ShopID != shopA.ID || len(order.Lots[0].Items) != 2 {
		t.Fatalf("first lot should carry shop A's two lines: %+v", order.Lots[0])
	}
	if order.SubtotalCents != 13800 || order.DeliveryFeeCents != 0 || order.TotalCents != 13800 {
		t.Fatalf("totals = %d/%d/%d", order.SubtotalCents, order.DeliveryFeeCents, order.TotalCents)
	}
	if !strings.HasPrefix(order.OrderNumber, "SP-20260302-") {
		t.Fatalf("unexpected order number %q", order.OrderNumber)
	}
	if !fx.carts.converted {
		t.Fatal("cart should be converted")
	}
	if len(fx.events.events) != 1 || fx.events.events[0].EventType != enums.EventOrderCreated {
		t.Fatalf("unexpected events %+v", fx.events.events)
	}
	if fx.orders.created == nil {
		t.Fatal("order not persisted")
	}
}

func TestSubmitSameDayShopDeliveryRequiresOptIn(t *testing.T) {
	customerID := uuid.New()
	shop := openShop("Patisserie Amandine")
	record := cartWith(customerID, line(shop.ID, "Cornes de gazelle", 1800, 1))
	fx := newFixture(t, record, shop)

	_, err := fx.svc.Submit(context.Background(), customerID, SubmitInput{
		DeliveryMethod:  enums.DeliveryMethodShopDelivery,
		DeliveryDate:    testNow,
		DeliveryAddress: "12 rue des Teinturiers",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeEligibility {
		t.Fatalf("expected eligibility rejection, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["reason"] != eligibility.ReasonSameDayUnavailable {
		t.Fatalf("reason = %v", details["reason"])
	}
	if details["suggested_date"] != testNow.AddDate(0, 0, 1).Format("2006-01-02") {
		t.Fatalf("suggested date = %v, want tomorrow", details["suggested_date"])
	}
	if fx.carts.converted || fx.orders.created != nil {
		t.Fatal("rejection must leave the cart and orders untouched")
	}
}

func TestSubmitSameDayShopDeliveryWithOptIn(t *testing.T) {
	customerID := uuid.New()
	shop := openShop("Patisserie Amandine")
	shop.SameDayDelivery = true
	shop.DeliveryFee = types.FeeSchedule{Type: enums.FeeTypeFlat, Amount: decimal.NewFromInt(500)}
	record := cartWith(customerID, line(shop.ID, "Cornes de gazelle", 1800, 1))
	fx := newFixture(t, record, shop)

	order, err := fx.svc.Submit(context.Background(), customerID, SubmitInput{
		DeliveryMethod:  enums.DeliveryMethodShopDelivery,
		DeliveryDate:    testNow,
		DeliveryAddress: "12 rue des Teinturiers",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if order.DeliveryFeeCents != 500 || order.TotalCents != 2300 {
		t.Fatalf("totals = %d/%d", order.DeliveryFeeCents, order.TotalCents)
	}
}

func TestSubmitShopDeliveryRejectsMultiShopCart(t *testing.T) {
	customerID := uuid.New()
	shopA := openShop("A")
	shopB := openShop("B")
	record := cartWith(customerID,
		line(shopA.ID, "Olives", 300, 1),
		line(shopB.ID, "Citrons confits", 400, 1),
	)
	fx := newFixture(t, record, shopA, shopB)

	_, err := fx.svc.Submit(context.Background(), customerID, SubmitInput{
		DeliveryMethod:  enums.DeliveryMethodShopDelivery,
		DeliveryDate:    testNow.AddDate(0, 0, 2),
		DeliveryAddress: "3 place des Ferblantiers",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected upfront validation rejection, got %v", err)
	}
}

func TestSubmitRequiresAddressUnlessPickup(t *testing.T) {
	customerID := uuid.New()
	shop := openShop("A")
	record := cartWith(customerID, line(shop.ID, "Olives", 300, 1))
	fx := newFixture(t, record, shop)

	_, err := fx.svc.Submit(context.Background(), customerID, SubmitInput{
		DeliveryMethod: enums.DeliveryMethodMarketDelivery,
		DeliveryDate:   testNow.AddDate(0, 0, 1),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected address validation error, got %v", err)
	}
}

func TestSubmitAppliesPercentageMarketFee(t *testing.T) {
	customerID := uuid.New()
	shop := openShop("A")
	record := cartWith(customerID, line(shop.ID, "Plateau", 10000, 1))
	fx := newFixture(t, record, shop)
	fx.market.fee = types.FeeSchedule{Type: enums.FeeTypePercentage, Amount: decimal.NewFromInt(10)}

	order, err := fx.svc.Submit(context.Background(), customerID, SubmitInput{
		DeliveryMethod:  enums.DeliveryMethodMarketDelivery,
		DeliveryDate:    testNow.AddDate(0, 0, 1),
		DeliveryAddress: "7 derb el Ferrane",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if order.DeliveryFeeCents != 1000 || order.TotalCents != 11000 {
		t.Fatalf("totals = %d/%d", order.DeliveryFeeCents, order.TotalCents)
	}
}

func TestSubmitRejectsSuspendedShop(t *testing.T) {
	customerID := uuid.New()
	shop := openShop("A")
	shop.Status = enums.ShopStatusSuspended
	record := cartWith(customerID, line(shop.ID, "Olives", 300, 1))
	fx := newFixture(t, record, shop)

	_, err := fx.svc.Submit(context.Background(), customerID, SubmitInput{
		DeliveryMethod: enums.DeliveryMethodPickup,
		DeliveryDate:   testNow.AddDate(0, 0, 1),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeGuard {
		t.Fatalf("expected guard refusal, got %v", err)
	}
}

func TestSubmitEmptyCart(t *testing.T) {
	customerID := uuid.New()
	fx := newFixture(t, nil)

	_, err := fx.svc.Submit(context.Background(), customerID, SubmitInput{
		DeliveryMethod: enums.DeliveryMethodPickup,
		DeliveryDate:   testNow.AddDate(0, 0, 1),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected empty-cart rejection, got %v", err)
	}
}

func TestCheckEligibilityProbeSuggestsNextDate(t *testing.T) {
	customerID := uuid.New()
	shop := openShop("A")
	// Closed the next three days.
	shop.Closures = []models.ShopClosure{{
		StartsOn: testNow.AddDate(0, 0, 1),
		EndsOn:   testNow.AddDate(0, 0, 3),
	}}
	record := cartWith(customerID, line(shop.ID, "Olives", 300, 1))
	fx := newFixture(t, record, shop)

	result, err := fx.svc.CheckEligibility(context.Background(), customerID, EligibilityQuery{
		DeliveryMethod: enums.DeliveryMethodPickup,
		DeliveryDate:   testNow.AddDate(0, 0, 2),
	})
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if result.Eligible {
		t.Fatal("slot inside the closure should be rejected")
	}
	if result.Reason != eligibility.ReasonShopClosure {
		t.Fatalf("reason = %s", result.Reason)
	}
	if result.SuggestedDate == nil {
		t.Fatal("expected a suggested date")
	}
	want := testNow.AddDate(0, 0, 4)
	if result.SuggestedDate.YearDay() != want.YearDay() {
		t.Fatalf("suggested = %s, want %s", result.SuggestedDate, want)
	}

	ok, err := fx.svc.CheckEligibility(context.Background(), customerID, EligibilityQuery{
		DeliveryMethod: enums.DeliveryMethodPickup,
		DeliveryDate:   testNow.AddDate(0, 0, 4),
	})
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if !ok.Eligible {
		t.Fatalf("day after the closure should be eligible: %+v", ok)
	}
}
