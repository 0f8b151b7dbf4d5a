package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/soukplace/soukplace-backend/api/responses"
	"github.com/soukplace/soukplace-backend/api/validators"
	"github.com/soukplace/soukplace-backend/internal/marketplace"
	"github.com/soukplace/soukplace-backend/pkg/logger"
)

// GetMarketSettings serves the marketplace-wide configuration row.
func GetMarketSettings(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := svc.GetSettings(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

// SetMarketDeliveryFee replaces the market delivery fee schedule.
func SetMarketDeliveryFee(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schedule, err := decodeFeeSchedule(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settings, err := svc.SetDeliveryFee(r.Context(), schedule)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

// ListMarketClosures lists upcoming market closures from today onward.
func ListMarketClosures(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		closures, err := svc.ListClosures(r.Context(), time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, closures)
	}
}

// AddMarketClosure blocks a date range for pickup and market deliveries.
func AddMarketClosure(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := decodeClosure(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		closure, err := svc.AddClosure(r.Context(), marketplace.ClosureInput(input))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, closure)
	}
}

// RemoveMarketClosure deletes one market closure window.
func RemoveMarketClosure(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		closureID, err := validators.ParsePathUUID(chi.URLParam(r, "closureID"), "closureID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveClosure(r.Context(), closureID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
