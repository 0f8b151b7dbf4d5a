package shops

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	"github.com/soukplace/soukplace-backend/pkg/pagination"
)

// Repository defines persistence operations for shops and their closures.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shop *models.Shop) (*models.Shop, error)
	FindByID(ctx context.Context, shopID uuid.UUID) (*models.Shop, error)
	FindByIDs(ctx context.Context, shopIDs []uuid.UUID) ([]models.Shop, error)
	FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Shop, error)
	Update(ctx context.Context, shopID uuid.UUID, updates map[string]any) error
	List(ctx context.Context, params pagination.Params, status *enums.ShopStatus) (*ShopList, error)
	AddClosure(ctx context.Context, closure *models.ShopClosure) error
	DeleteClosure(ctx context.Context, shopID, closureID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a shop repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, shop *models.Shop) (*models.Shop, error) {
	if err := r.db.WithContext(ctx).Create(shop).Error; err != nil {
		return nil, err
	}
	return shop, nil
}

func (r *repository) FindByID(ctx context.Context, shopID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).
		Preload("Closures").
		Where("id = ?", shopID).
		First(&shop).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *repository) FindByIDs(ctx context.Context, shopIDs []uuid.UUID) ([]models.Shop, error) {
	if len(shopIDs) == 0 {
		return nil, nil
	}
	var shops []models.Shop
	err := r.db.WithContext(ctx).
		Preload("Closures").
		Where("id IN ?", shopIDs).
		Find(&shops).Error
	if err != nil {
		return nil, err
	}
	return shops, nil
}

func (r *repository) FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).
		Preload("Closures").
		Where("owner_user_id = ?", ownerUserID).
		First(&shop).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *repository) Update(ctx context.Context, shopID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", shopID).
		Updates(updates).Error
}

// ShopSummary is the admin listing row.
type ShopSummary struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Status    enums.ShopStatus `json:"status"`
	CreatedAt string           `json:"created_at"`
}

// ShopList wraps paginated shops plus the next cursor.
type ShopList struct {
	Shops      []models.Shop `json:"shops"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func (r *repository) List(ctx context.Context, params pagination.Params, status *enums.ShopStatus) (*ShopList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Shop{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Shop
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &ShopList{}
	pageSize := pagination.NormalizeLimit(params.Limit)
	if len(rows) > pageSize {
		last := rows[pageSize-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:pageSize]
	}
	list.Shops = rows
	return list, nil
}

func (r *repository) AddClosure(ctx context.Context, closure *models.ShopClosure) error {
	return r.db.WithContext(ctx).Create(closure).Error
}

func (r *repository) DeleteClosure(ctx context.Context, shopID, closureID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.ShopClosure{}, "id = ? AND shop_id = ?", closureID, shopID).Error
}
