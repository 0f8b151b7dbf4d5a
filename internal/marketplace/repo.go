package marketplace

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soukplace/soukplace-backend/pkg/db/models"
)

// Repository defines persistence for market-wide settings and closures.
type Repository interface {
	GetSettings(ctx context.Context) (*models.MarketSettings, error)
	UpdateSettings(ctx context.Context, updates map[string]any) error
	ListClosures(ctx context.Context, from time.Time) ([]models.MarketClosure, error)
	AddClosure(ctx context.Context, closure *models.MarketClosure) error
	DeleteClosure(ctx context.Context, closureID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a marketplace repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetSettings(ctx context.Context) (*models.MarketSettings, error) {
	var settings models.MarketSettings
	err := r.db.WithContext(ctx).
		Where("id = ?", models.MarketSettingsRowID).
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *repository) UpdateSettings(ctx context.Context, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.MarketSettings{}).
		Where("id = ?", models.MarketSettingsRowID).
		Updates(updates).Error
}

// ListClosures returns closures still relevant at the given date, so expired
// windows drop out of eligibility checks.
func (r *repository) ListClosures(ctx context.Context, from time.Time) ([]models.MarketClosure, error) {
	var closures []models.MarketClosure
	err := r.db.WithContext(ctx).
		Where("ends_on >= ?", from.Format("2006-01-02")).
		Order("starts_on ASC").
		Find(&closures).Error
	if err != nil {
		return nil, err
	}
	return closures, nil
}

func (r *repository) AddClosure(ctx context.Context, closure *models.MarketClosure) error {
	return r.db.WithContext(ctx).Create(closure).Error
}

func (r *repository) DeleteClosure(ctx context.Context, closureID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.MarketClosure{}, "id = ?", closureID).Error
}
