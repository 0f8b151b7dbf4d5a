package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/soukplace/soukplace-backend/api/middleware"
	"github.com/soukplace/soukplace-backend/api/responses"
	"github.com/soukplace/soukplace-backend/api/validators"
	"github.com/soukplace/soukplace-backend/internal/orders"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	pkgerrors "github.com/soukplace/soukplace-backend/pkg/errors"
	"github.com/soukplace/soukplace-backend/pkg/logger"
	"github.com/soukplace/soukplace-backend/pkg/pagination"
)

type cancelRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// ListCustomerOrders serves the customer's paginated order history.
func ListCustomerOrders(repo orders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := parseCustomerOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := repo.ListCustomerOrders(r.Context(), customerID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetOrder serves the full order projection for the acting party.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetOrderView(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// AcceptLot lets the shop accept its pending lot.
func AcceptLot(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return lotAction(func(ctx context.Context, input orders.LotActionInput) error {
		return svc.Accept(ctx, input)
	}, logg)
}

// MarkLotDeposit records that the shop dropped the lot at the warehouse.
func MarkLotDeposit(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return lotAction(func(ctx context.Context, input orders.LotActionInput) error {
		return svc.MarkDeposit(ctx, input)
	}, logg)
}

// ConfirmLotDeposit is the admin validation of a marked deposit.
func ConfirmLotDeposit(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return lotAction(func(ctx context.Context, input orders.LotActionInput) error {
		return svc.ConfirmDeposit(ctx, input)
	}, logg)
}

// ConfirmLotDelivered closes out a lot after handover.
func ConfirmLotDelivered(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return lotAction(func(ctx context.Context, input orders.LotActionInput) error {
		return svc.ConfirmDelivered(ctx, input)
	}, logg)
}

func lotAction(action func(ctx context.Context, input orders.LotActionInput) error, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, lotID, err := lotPathIDs(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := action(r.Context(), orders.LotActionInput{OrderID: orderID, LotID: lotID, Actor: actor}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// CancelOrder cancels the whole order with a mandatory reason.
func CancelOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req cancelRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.CancelOrderInput{OrderID: orderID, Actor: actor, Reason: req.Reason}
		if err := svc.CancelOrder(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// CancelLot cancels one shop lot with a mandatory reason.
func CancelLot(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, lotID, err := lotPathIDs(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req cancelRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.CancelLotInput{OrderID: orderID, LotID: lotID, Actor: actor, Reason: req.Reason}
		if err := svc.CancelLot(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// CancelItem cancels a single order line with a mandatory reason.
func CancelItem(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, lotID, err := lotPathIDs(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemID"), "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req cancelRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.CancelItemInput{OrderID: orderID, LotID: lotID, ItemID: itemID, Actor: actor, Reason: req.Reason}
		if err := svc.CancelItem(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// ListShopLots serves the fulfillment queue for the shop in context.
func ListShopLots(repo orders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuid.Parse(middleware.ShopIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeForbidden, "no shop attached to this account"))
			return
		}

		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := parseShopLotFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := repo.ListShopLots(r.Context(), shopID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ListDepositQueue serves the warehouse backlog of marked, unvalidated
// deposits for admins.
func ListDepositQueue(repo orders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := repo.ListDepositQueue(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func requireActor(r *http.Request) (orders.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return orders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return actor, nil
}

func lotPathIDs(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	lotID, err := validators.ParsePathUUID(chi.URLParam(r, "lotID"), "lotID")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return orderID, lotID, nil
}

func parsePagination(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Limit: limit, Cursor: r.URL.Query().Get("cursor")}, nil
}

func parseCustomerOrderFilters(r *http.Request) (orders.CustomerOrderFilters, error) {
	var filters orders.CustomerOrderFilters
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := enums.OrderStatus(raw)
		if !status.IsValid() {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").WithDetails(map[string]any{"field": "status"})
		}
		filters.Status = &status
	}
	if raw := r.URL.Query().Get("method"); raw != "" {
		method := enums.DeliveryMethod(raw)
		if !method.IsValid() {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery method").WithDetails(map[string]any{"field": "method"})
		}
		filters.Method = &method
	}
	if raw := r.URL.Query().Get("date_from"); raw != "" {
		from, err := validators.ParseQueryDate(r, "date_from")
		if err != nil {
			return filters, err
		}
		filters.DateFrom = &from
	}
	if raw := r.URL.Query().Get("date_to"); raw != "" {
		to, err := validators.ParseQueryDate(r, "date_to")
		if err != nil {
			return filters, err
		}
		filters.DateTo = &to
	}
	return filters, nil
}

func parseShopLotFilters(r *http.Request) (orders.ShopLotFilters, error) {
	var filters orders.ShopLotFilters
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := enums.LotStatus(raw)
		if !status.IsValid() {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "unknown lot status").WithDetails(map[string]any{"field": "status"})
		}
		filters.Status = &status
	}
	if raw := r.URL.Query().Get("date_from"); raw != "" {
		from, err := validators.ParseQueryDate(r, "date_from")
		if err != nil {
			return filters, err
		}
		filters.DateFrom = &from
	}
	if raw := r.URL.Query().Get("date_to"); raw != "" {
		to, err := validators.ParseQueryDate(r, "date_to")
		if err != nil {
			return filters, err
		}
		filters.DateTo = &to
	}
	return filters, nil
}
