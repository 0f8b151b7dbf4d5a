package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	pkgerrors "github.com/soukplace/soukplace-backend/pkg/errors"
)

type memRepo struct {
	cart  *models.Cart
	items []models.CartItem
}

func (m *memRepo) WithTx(tx *gorm.DB) Repository { return m }

func (m *memRepo) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	if m.cart == nil || m.cart.CustomerID != customerID {
		return nil, gorm.ErrRecordNotFound
	}
	record := *m.cart
	record.Items = append([]models.CartItem(nil), m.items...)
	return &record, nil
}

func (m *memRepo) Create(ctx context.Context, record *models.Cart) (*models.Cart, error) {
	record.ID = uuid.New()
	m.cart = record
	return record, nil
}

func (m *memRepo) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	for i := range m.items {
		if m.items[i].CartID == cartID && m.items[i].ProductID == productID {
			return &m.items[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memRepo) CreateItem(ctx context.Context, item *models.CartItem) error {
	item.ID = uuid.New()
	m.items = append(m.items, *item)
	return nil
}

func (m *memRepo) UpdateItemQty(ctx context.Context, itemID uuid.UUID, qty int) error {
	for i := range m.items {
		if m.items[i].ID == itemID {
			m.items[i].Qty = qty
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	for i := range m.items {
		if m.items[i].ID == itemID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memRepo) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	m.items = nil
	return nil
}

func (m *memRepo) MarkConverted(ctx context.Context, cartID uuid.UUID) error {
	m.cart.Status = enums.CartStatusConverted
	return nil
}

type passTx struct{}

func (passTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type stubShops struct {
	shops map[uuid.UUID]*models.Shop
}

func (s *stubShops) FindByID(ctx context.Context, shopID uuid.UUID) (*models.Shop, error) {
	if shop, ok := s.shops[shopID]; ok {
		return shop, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func approvedShop() *models.Shop {
	return &models.Shop{ID: uuid.New(), Status: enums.ShopStatusApproved}
}

func newTestService(t *testing.T, shops ...*models.Shop) (Service, *memRepo) {
	t.Helper()
	repo := &memRepo{}
	index := map[uuid.UUID]*models.Shop{}
	for _, shop := range shops {
		index[shop.ID] = shop
	}
	svc, err := NewService(repo, passTx{}, &stubShops{shops: index})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo
}

func TestGetActiveCreatesCartOnFirstUse(t *testing.T) {
	svc, repo := newTestService(t)
	customerID := uuid.New()

	record, err := svc.GetActive(context.Background(), customerID)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if record.ID == uuid.Nil || repo.cart == nil {
		t.Fatal("expected cart to be created")
	}

	again, err := svc.GetActive(context.Background(), customerID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again.ID != record.ID {
		t.Fatal("expected the same cart on repeat calls")
	}
}

func TestAddItemMergesDuplicateLines(t *testing.T) {
	shop := approvedShop()
	svc, repo := newTestService(t, shop)
	customerID := uuid.New()
	productID := uuid.New()

	input := AddItemInput{
		CustomerID:     customerID,
		ProductID:      productID,
		ShopID:         shop.ID,
		Name:           "Harissa",
		UnitPriceCents: 450,
		Qty:            1,
	}
	if _, err := svc.AddItem(context.Background(), input); err != nil {
		t.Fatalf("first add: %v", err)
	}
	input.Qty = 2
	record, err := svc.AddItem(context.Background(), input)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(repo.items) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(repo.items))
	}
	if repo.items[0].Qty != 3 {
		t.Fatalf("merged qty = %d, want 3", repo.items[0].Qty)
	}
	if TotalCents(record) != 1350 {
		t.Fatalf("total = %d, want 1350", TotalCents(record))
	}
}

func TestAddItemRejectsUnapprovedShop(t *testing.T) {
	shop := approvedShop()
	shop.Status = enums.ShopStatusSuspended
	svc, _ := newTestService(t, shop)

	_, err := svc.AddItem(context.Background(), AddItemInput{
		CustomerID:     uuid.New(),
		ProductID:      uuid.New(),
		ShopID:         shop.ID,
		Name:           "Dates",
		UnitPriceCents: 900,
		Qty:            1,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeGuard {
		t.Fatalf("expected guard refusal for suspended shop, got %v", err)
	}
}

func TestSetItemQtyZeroRemovesLine(t *testing.T) {
	shop := approvedShop()
	svc, repo := newTestService(t, shop)
	customerID := uuid.New()
	productID := uuid.New()

	if _, err := svc.AddItem(context.Background(), AddItemInput{
		CustomerID:     customerID,
		ProductID:      productID,
		ShopID:         shop.ID,
		Name:           "Mint",
		UnitPriceCents: 120,
		Qty:            2,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := svc.SetItemQty(context.Background(), customerID, productID, 0); err != nil {
		t.Fatalf("set qty 0: %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatalf("expected line removed, got %d lines", len(repo.items))
	}
}

func TestDistinctShopIDsKeepsFirstSeenOrder(t *testing.T) {
	shopA, shopB := uuid.New(), uuid.New()
	record := &models.Cart{Items: []models.CartItem{
		{ShopID: shopA},
		{ShopID: shopB},
		{ShopID: shopA},
	}}
	ids := DistinctShopIDs(record)
	if len(ids) != 2 || ids[0] != shopA || ids[1] != shopB {
		t.Fatalf("unexpected shop ids %v", ids)
	}
}
