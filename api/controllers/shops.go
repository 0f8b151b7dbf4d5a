package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/soukplace/soukplace-backend/api/responses"
	"github.com/soukplace/soukplace-backend/api/validators"
	"github.com/soukplace/soukplace-backend/internal/shops"
	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	pkgerrors "github.com/soukplace/soukplace-backend/pkg/errors"
	"github.com/soukplace/soukplace-backend/pkg/logger"
	"github.com/soukplace/soukplace-backend/pkg/types"
)

type registerShopRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
}

type shopScheduleRequest struct {
	OpenDays            []int `json:"open_days" validate:"required,min=1,max=7,dive,min=0,max=6"`
	ClickCollectEnabled bool  `json:"click_collect_enabled"`
	SameDayDelivery     bool  `json:"same_day_delivery"`
}

type feeScheduleRequest struct {
	Type   string `json:"type" validate:"required,oneof=flat percentage"`
	Amount string `json:"amount" validate:"required"`
}

type closureRequest struct {
	StartsOn string `json:"starts_on" validate:"required"`
	EndsOn   string `json:"ends_on" validate:"required"`
	Reason   string `json:"reason,omitempty" validate:"max=255"`
}

// RegisterShop opens a shop for the authenticated user, pending approval.
func RegisterShop(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req registerShopRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shop, err := svc.Register(r.Context(), shops.RegisterInput{OwnerUserID: ownerID, Name: req.Name})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, shop)
	}
}

// GetShop returns a shop's public profile with its closure calendar.
func GetShop(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := validators.ParsePathUUID(chi.URLParam(r, "shopID"), "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shop, err := svc.GetByID(r.Context(), shopID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shop)
	}
}

// GetMyShop returns the shop owned by the authenticated user.
func GetMyShop(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shop, err := svc.GetByOwner(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shop)
	}
}

// UpdateShopSchedule replaces the weekly open days and delivery toggles.
func UpdateShopSchedule(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, err := ownedShop(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req shopScheduleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		days := make(types.Weekdays, 0, len(req.OpenDays))
		for _, day := range req.OpenDays {
			days = append(days, time.Weekday(day))
		}

		updated, err := svc.UpdateSchedule(r.Context(), shop.ID, shops.ScheduleInput{
			OpenDays:            days,
			ClickCollectEnabled: req.ClickCollectEnabled,
			SameDayDelivery:     req.SameDayDelivery,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// SetShopDeliveryFee replaces the shop's own-delivery fee schedule.
func SetShopDeliveryFee(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, err := ownedShop(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		schedule, err := decodeFeeSchedule(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.SetDeliveryFee(r.Context(), shop.ID, schedule)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// AddShopClosure blocks a date range for the shop.
func AddShopClosure(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, err := ownedShop(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := decodeClosure(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.AddClosure(r.Context(), shop.ID, shops.ClosureInput(input))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, updated)
	}
}

// RemoveShopClosure deletes one closure window.
func RemoveShopClosure(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, err := ownedShop(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		closureID, err := validators.ParsePathUUID(chi.URLParam(r, "closureID"), "closureID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveClosure(r.Context(), shop.ID, closureID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// ownedShop resolves the authenticated user's shop for self-service routes.
func ownedShop(r *http.Request, svc shops.Service) (*models.Shop, error) {
	ownerID, err := requireUserID(r)
	if err != nil {
		return nil, err
	}
	return svc.GetByOwner(r.Context(), ownerID)
}

func decodeFeeSchedule(r *http.Request) (types.FeeSchedule, error) {
	var req feeScheduleRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		return types.FeeSchedule{}, err
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return types.FeeSchedule{}, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a decimal number").
			WithDetails(map[string]any{"field": "amount"})
	}
	return types.FeeSchedule{Type: enums.FeeType(req.Type), Amount: amount}, nil
}

type closureFields struct {
	StartsOn time.Time
	EndsOn   time.Time
	Reason   string
}

func decodeClosure(r *http.Request) (closureFields, error) {
	var req closureRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		return closureFields{}, err
	}
	starts, err := time.Parse("2006-01-02", req.StartsOn)
	if err != nil {
		return closureFields{}, pkgerrors.New(pkgerrors.CodeValidation, "starts_on must be a YYYY-MM-DD date").
			WithDetails(map[string]any{"field": "starts_on"})
	}
	ends, err := time.Parse("2006-01-02", req.EndsOn)
	if err != nil {
		return closureFields{}, pkgerrors.New(pkgerrors.CodeValidation, "ends_on must be a YYYY-MM-DD date").
			WithDetails(map[string]any{"field": "ends_on"})
	}
	return closureFields{StartsOn: starts, EndsOn: ends, Reason: req.Reason}, nil
}
