package shops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/soukplace/soukplace-backend/internal/eligibility"
	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	pkgerrors "github.com/soukplace/soukplace-backend/pkg/errors"
	"github.com/soukplace/soukplace-backend/pkg/outbox"
	"github.com/soukplace/soukplace-backend/pkg/outbox/payloads"
	"github.com/soukplace/soukplace-backend/pkg/pagination"
	"github.com/soukplace/soukplace-backend/pkg/types"
)

var hundred = decimal.NewFromInt(100)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// RegisterInput creates a shop in pending state; admins approve it later.
type RegisterInput struct {
	OwnerUserID uuid.UUID
	Name        string
}

// ScheduleInput updates the weekly schedule and delivery toggles.
type ScheduleInput struct {
	OpenDays            types.Weekdays
	ClickCollectEnabled bool
	SameDayDelivery     bool
}

// ClosureInput adds one unavailability window, inclusive on both ends.
type ClosureInput struct {
	StartsOn time.Time
	EndsOn   time.Time
	Reason   string
}

// ModerateInput is the admin approval/suspension request.
type ModerateInput struct {
	AdminUserID uuid.UUID
	ShopID      uuid.UUID
	Reason      string
}

// Service owns shop settings and moderation.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Shop, error)
	GetByID(ctx context.Context, shopID uuid.UUID) (*models.Shop, error)
	GetByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Shop, error)
	UpdateSchedule(ctx context.Context, shopID uuid.UUID, input ScheduleInput) (*models.Shop, error)
	SetDeliveryFee(ctx context.Context, shopID uuid.UUID, schedule types.FeeSchedule) (*models.Shop, error)
	AddClosure(ctx context.Context, shopID uuid.UUID, input ClosureInput) (*models.Shop, error)
	RemoveClosure(ctx context.Context, shopID, closureID uuid.UUID) error
	List(ctx context.Context, params pagination.Params, status *enums.ShopStatus) (*ShopList, error)
	Approve(ctx context.Context, input ModerateInput) (*models.Shop, error)
	Suspend(ctx context.Context, input ModerateInput) (*models.Shop, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// NewService builds the shop service.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: publisher, now: time.Now}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Shop, error) {
	if input.OwnerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name required")
	}
	if existing, err := s.repo.FindByOwner(ctx, input.OwnerUserID); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "owner already has a shop")
	} else if err != nil && err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}

	shop := &models.Shop{
		OwnerUserID: input.OwnerUserID,
		Name:        name,
		Status:      enums.ShopStatusPending,
		OpenDays:    types.EveryDay(),
		DeliveryFee: types.DefaultFeeSchedule(),
	}
	created, err := s.repo.Create(ctx, shop)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shop")
	}
	return created, nil
}

func (s *service) GetByID(ctx context.Context, shopID uuid.UUID) (*models.Shop, error) {
	return s.load(ctx, shopID)
}

func (s *service) GetByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Shop, error) {
	shop, err := s.repo.FindByOwner(ctx, ownerUserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	return shop, nil
}

func (s *service) UpdateSchedule(ctx context.Context, shopID uuid.UUID, input ScheduleInput) (*models.Shop, error) {
	if len(input.OpenDays) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one open day required")
	}
	seen := map[time.Weekday]bool{}
	for _, day := range input.OpenDays {
		if day < time.Sunday || day > time.Saturday {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid weekday")
		}
		if seen[day] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate weekday")
		}
		seen[day] = true
	}
	if _, err := s.load(ctx, shopID); err != nil {
		return nil, err
	}
	err := s.repo.Update(ctx, shopID, map[string]any{
		"open_days":             input.OpenDays,
		"click_collect_enabled": input.ClickCollectEnabled,
		"same_day_delivery":     input.SameDayDelivery,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update schedule")
	}
	return s.load(ctx, shopID)
}

func (s *service) SetDeliveryFee(ctx context.Context, shopID uuid.UUID, schedule types.FeeSchedule) (*models.Shop, error) {
	if !schedule.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fee type")
	}
	if schedule.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fee amount cannot be negative")
	}
	if schedule.Type == enums.FeeTypePercentage && schedule.Amount.GreaterThan(hundred) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage fee cannot exceed 100")
	}
	if _, err := s.load(ctx, shopID); err != nil {
		return nil, err
	}
	err := s.repo.Update(ctx, shopID, map[string]any{"delivery_fee": schedule})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery fee")
	}
	return s.load(ctx, shopID)
}

func (s *service) AddClosure(ctx context.Context, shopID uuid.UUID, input ClosureInput) (*models.Shop, error) {
	if input.StartsOn.IsZero() || input.EndsOn.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "closure dates required")
	}
	if input.EndsOn.Before(input.StartsOn) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "closure end precedes start")
	}
	if _, err := s.load(ctx, shopID); err != nil {
		return nil, err
	}
	closure := &models.ShopClosure{
		ShopID:   shopID,
		StartsOn: input.StartsOn,
		EndsOn:   input.EndsOn,
	}
	if reason := strings.TrimSpace(input.Reason); reason != "" {
		closure.Reason = &reason
	}
	if err := s.repo.AddClosure(ctx, closure); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add closure")
	}
	return s.load(ctx, shopID)
}

func (s *service) RemoveClosure(ctx context.Context, shopID, closureID uuid.UUID) error {
	if _, err := s.load(ctx, shopID); err != nil {
		return err
	}
	if err := s.repo.DeleteClosure(ctx, shopID, closureID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove closure")
	}
	return nil
}

func (s *service) List(ctx context.Context, params pagination.Params, status *enums.ShopStatus) (*ShopList, error) {
	list, err := s.repo.List(ctx, params, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
	}
	return list, nil
}

// Approve moves a shop to approved and queues the moderation event. Approving
// an already approved shop is a no-op.
func (s *service) Approve(ctx context.Context, input ModerateInput) (*models.Shop, error) {
	return s.moderate(ctx, input, enums.ShopStatusApproved, enums.EventShopApproved)
}

// Suspend takes a shop off the market; its products can no longer be ordered.
func (s *service) Suspend(ctx context.Context, input ModerateInput) (*models.Shop, error) {
	return s.moderate(ctx, input, enums.ShopStatusSuspended, enums.EventShopSuspended)
}

func (s *service) moderate(ctx context.Context, input ModerateInput, target enums.ShopStatus, eventType enums.OutboxEventType) (*models.Shop, error) {
	if input.ShopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	shop, err := s.load(ctx, input.ShopID)
	if err != nil {
		return nil, err
	}
	if shop.Status == target {
		return shop, nil
	}
	reason := strings.TrimSpace(input.Reason)
	if target == enums.ShopStatusSuspended && reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "suspension reason required")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, shop.ID, map[string]any{"status": target}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "moderate shop")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateShop,
			AggregateID:   shop.ID,
			Actor: &outbox.ActorRef{
				UserID: input.AdminUserID,
				Role:   string(enums.ActorRoleAdmin),
			},
			Data: payloads.ShopModeratedEvent{
				ShopID: shop.ID,
				Status: target,
				Reason: reason,
			},
			OccurredAt: s.now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, input.ShopID)
}

func (s *service) load(ctx context.Context, shopID uuid.UUID) (*models.Shop, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	shop, err := s.repo.FindByID(ctx, shopID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	return shop, nil
}

// Profile converts a stored shop into the evaluator's view of it.
func Profile(shop models.Shop) eligibility.ShopProfile {
	profile := eligibility.ShopProfile{
		ID:                  shop.ID,
		Name:                shop.Name,
		ClickCollectEnabled: shop.ClickCollectEnabled,
		SameDayDelivery:     shop.SameDayDelivery,
		OpenDays:            shop.OpenDays,
	}
	for _, closure := range shop.Closures {
		profile.Closures = append(profile.Closures, eligibility.Window{
			Start: closure.StartsOn,
			End:   closure.EndsOn,
		})
	}
	return profile
}
