package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	pkgerrors "github.com/soukplace/soukplace-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type shopChecker interface {
	FindByID(ctx context.Context, shopID uuid.UUID) (*models.Shop, error)
}

// AddItemInput carries the snapshot of a product line at add time.
type AddItemInput struct {
	CustomerID     uuid.UUID
	ProductID      uuid.UUID
	ShopID         uuid.UUID
	Name           string
	UnitPriceCents int
	Qty            int
}

// Service owns cart mutations. Checkout consumes the repository directly.
type Service interface {
	GetActive(ctx context.Context, customerID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, input AddItemInput) (*models.Cart, error)
	SetItemQty(ctx context.Context, customerID, productID uuid.UUID, qty int) (*models.Cart, error)
	RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*models.Cart, error)
	Clear(ctx context.Context, customerID uuid.UUID) error
}

type service struct {
	repo  Repository
	tx    txRunner
	shops shopChecker
}

// NewService builds the cart service.
func NewService(repo Repository, tx txRunner, shops shopChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if shops == nil {
		return nil, fmt.Errorf("shop checker required")
	}
	return &service{repo: repo, tx: tx, shops: shops}, nil
}

// GetActive returns the customer's active cart, creating one on first use.
func (s *service) GetActive(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	record, err := s.repo.FindActiveByCustomer(ctx, customerID)
	if err == nil {
		return record, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	created, err := s.repo.Create(ctx, &models.Cart{
		CustomerID: customerID,
		Status:     enums.CartStatusActive,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (*models.Cart, error) {
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.UnitPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if input.ProductID == uuid.Nil || input.ShopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product and shop ids required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}

	shop, err := s.shops.FindByID(ctx, input.ShopID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	if shop.Status != enums.ShopStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeGuard, "shop is not open for orders")
	}

	record, err := s.GetActive(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindItem(ctx, record.ID, input.ProductID)
		if err == nil {
			return repo.UpdateItemQty(ctx, existing.ID, existing.Qty+input.Qty)
		}
		if err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}
		return repo.CreateItem(ctx, &models.CartItem{
			CartID:         record.ID,
			ProductID:      input.ProductID,
			ShopID:         input.ShopID,
			Name:           input.Name,
			UnitPriceCents: input.UnitPriceCents,
			Qty:            input.Qty,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, input.CustomerID)
}

// SetItemQty updates a line quantity; zero removes the line.
func (s *service) SetItemQty(ctx context.Context, customerID, productID uuid.UUID, qty int) (*models.Cart, error) {
	if qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	record, err := s.GetActive(ctx, customerID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindItem(ctx, record.ID, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if qty == 0 {
		if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
		}
	} else if err := s.repo.UpdateItemQty(ctx, item.ID, qty); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	return s.reload(ctx, customerID)
}

func (s *service) RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*models.Cart, error) {
	return s.SetItemQty(ctx, customerID, productID, 0)
}

func (s *service) Clear(ctx context.Context, customerID uuid.UUID) error {
	record, err := s.GetActive(ctx, customerID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItems(ctx, record.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) reload(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	record, err := s.repo.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	return record, nil
}

// TotalCents sums the cart lines.
func TotalCents(record *models.Cart) int {
	total := 0
	for _, item := range record.Items {
		total += item.UnitPriceCents * item.Qty
	}
	return total
}

// DistinctShopIDs returns the shops present in the cart, first-seen order.
func DistinctShopIDs(record *models.Cart) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	ids := make([]uuid.UUID, 0, len(record.Items))
	for _, item := range record.Items {
		if seen[item.ShopID] {
			continue
		}
		seen[item.ShopID] = true
		ids = append(ids, item.ShopID)
	}
	return ids
}
