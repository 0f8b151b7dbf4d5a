package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soukplace/soukplace-backend/api/responses"
	"github.com/soukplace/soukplace-backend/api/validators"
	"github.com/soukplace/soukplace-backend/internal/shops"
	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	pkgerrors "github.com/soukplace/soukplace-backend/pkg/errors"
	"github.com/soukplace/soukplace-backend/pkg/logger"
)

type moderateShopRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// AdminListShops serves the moderation queue, optionally filtered by status.
func AdminListShops(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.ShopStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			candidate := enums.ShopStatus(raw)
			if !candidate.IsValid() {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "unknown shop status").WithDetails(map[string]any{"field": "status"}))
				return
			}
			status = &candidate
		}

		list, err := svc.List(r.Context(), params, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminApproveShop approves a pending or suspended shop.
func AdminApproveShop(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return moderateShop(func(ctx context.Context, input shops.ModerateInput) (*models.Shop, error) {
		return svc.Approve(ctx, input)
	}, logg)
}

// AdminSuspendShop suspends a shop. A reason is required by the service.
func AdminSuspendShop(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return moderateShop(func(ctx context.Context, input shops.ModerateInput) (*models.Shop, error) {
		return svc.Suspend(ctx, input)
	}, logg)
}

func moderateShop(action func(ctx context.Context, input shops.ModerateInput) (*models.Shop, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shopID, err := validators.ParsePathUUID(chi.URLParam(r, "shopID"), "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req moderateShopRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		shop, err := action(r.Context(), shops.ModerateInput{
			AdminUserID: adminID,
			ShopID:      shopID,
			Reason:      req.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shop)
	}
}
