package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/soukplace/soukplace-backend/api/middleware"
	"github.com/soukplace/soukplace-backend/api/responses"
	"github.com/soukplace/soukplace-backend/api/validators"
	"github.com/soukplace/soukplace-backend/internal/checkout"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	pkgerrors "github.com/soukplace/soukplace-backend/pkg/errors"
	"github.com/soukplace/soukplace-backend/pkg/logger"
)

type checkoutRequest struct {
	DeliveryMethod  string `json:"delivery_method" validate:"required,oneof=pickup market_delivery shop_delivery"`
	DeliveryDate    string `json:"delivery_date" validate:"required"`
	DeliveryAddress string `json:"delivery_address,omitempty"`
	PaymentMethod   string `json:"payment_method,omitempty" validate:"omitempty,oneof=cash card"`
	Note            string `json:"note,omitempty" validate:"max=500"`
}

// Checkout submits the customer's active cart as an order.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := time.Parse("2006-01-02", req.DeliveryDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "delivery_date must be a YYYY-MM-DD date"))
			return
		}

		order, err := svc.Submit(r.Context(), customerID, checkout.SubmitInput{
			DeliveryMethod:  enums.DeliveryMethod(req.DeliveryMethod),
			DeliveryDate:    date,
			DeliveryAddress: req.DeliveryAddress,
			PaymentMethod:   enums.PaymentMethod(req.PaymentMethod),
			Note:            req.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// CheckoutEligibility probes a delivery slot for the current cart.
func CheckoutEligibility(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method := r.URL.Query().Get("method")
		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CheckEligibility(r.Context(), customerID, checkout.EligibilityQuery{
			DeliveryMethod: enums.DeliveryMethod(method),
			DeliveryDate:   date,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func requireUserID(r *http.Request) (uuid.UUID, error) {
	userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return userID, nil
}
