package marketplace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soukplace/soukplace-backend/internal/eligibility"
	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	pkgerrors "github.com/soukplace/soukplace-backend/pkg/errors"
	"github.com/soukplace/soukplace-backend/pkg/types"
)

var hundred = decimal.NewFromInt(100)

// ClosureInput adds one market-wide unavailability window.
type ClosureInput struct {
	StartsOn time.Time
	EndsOn   time.Time
	Reason   string
}

// Service owns market-wide configuration: the delivery fee schedule applied
// to market deliveries and the closure calendar.
type Service interface {
	GetSettings(ctx context.Context) (*models.MarketSettings, error)
	SetDeliveryFee(ctx context.Context, schedule types.FeeSchedule) (*models.MarketSettings, error)
	ListClosures(ctx context.Context, from time.Time) ([]models.MarketClosure, error)
	AddClosure(ctx context.Context, input ClosureInput) (*models.MarketClosure, error)
	RemoveClosure(ctx context.Context, closureID uuid.UUID) error
	ClosureWindows(ctx context.Context, from time.Time) ([]eligibility.Window, error)
}

type service struct {
	repo Repository
}

// NewService builds the marketplace service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("marketplace repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetSettings(ctx context.Context) (*models.MarketSettings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load market settings")
	}
	return settings, nil
}

func (s *service) SetDeliveryFee(ctx context.Context, schedule types.FeeSchedule) (*models.MarketSettings, error) {
	if !schedule.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fee type")
	}
	if schedule.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fee amount cannot be negative")
	}
	if schedule.Type == enums.FeeTypePercentage && schedule.Amount.GreaterThan(hundred) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage fee cannot exceed 100")
	}
	if err := s.repo.UpdateSettings(ctx, map[string]any{"delivery_fee": schedule}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update market settings")
	}
	return s.GetSettings(ctx)
}

func (s *service) ListClosures(ctx context.Context, from time.Time) ([]models.MarketClosure, error) {
	closures, err := s.repo.ListClosures(ctx, from)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list market closures")
	}
	return closures, nil
}

func (s *service) AddClosure(ctx context.Context, input ClosureInput) (*models.MarketClosure, error) {
	if input.StartsOn.IsZero() || input.EndsOn.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "closure dates required")
	}
	if input.EndsOn.Before(input.StartsOn) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "closure end precedes start")
	}
	closure := &models.MarketClosure{
		StartsOn: input.StartsOn,
		EndsOn:   input.EndsOn,
	}
	if reason := strings.TrimSpace(input.Reason); reason != "" {
		closure.Reason = &reason
	}
	if err := s.repo.AddClosure(ctx, closure); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add market closure")
	}
	return closure, nil
}

func (s *service) RemoveClosure(ctx context.Context, closureID uuid.UUID) error {
	if closureID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "closure id required")
	}
	if err := s.repo.DeleteClosure(ctx, closureID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove market closure")
	}
	return nil
}

// ClosureWindows returns the evaluator's view of the closure calendar.
func (s *service) ClosureWindows(ctx context.Context, from time.Time) ([]eligibility.Window, error) {
	closures, err := s.ListClosures(ctx, from)
	if err != nil {
		return nil, err
	}
	windows := make([]eligibility.Window, 0, len(closures))
	for _, closure := range closures {
		windows = append(windows, eligibility.Window{
			Start: closure.StartsOn,
			End:   closure.EndsOn,
		})
	}
	return windows, nil
}
