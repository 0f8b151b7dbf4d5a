// Package checkout orchestrates order submission: it validates the cart,
// checks slot eligibility, computes fees and persists the order split into
// per-shop lots, all in one transaction.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soukplace/soukplace-backend/internal/cart"
	"github.com/soukplace/soukplace-backend/internal/eligibility"
	"github.com/soukplace/soukplace-backend/internal/fees"
	"github.com/soukplace/soukplace-backend/internal/orders"
	"github.com/soukplace/soukplace-backend/internal/shops"
	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	pkgerrors "github.com/soukplace/soukplace-backend/pkg/errors"
	"github.com/soukplace/soukplace-backend/pkg/metrics"
	"github.com/soukplace/soukplace-backend/pkg/outbox"
	"github.com/soukplace/soukplace-backend/pkg/outbox/payloads"
	"github.com/soukplace/soukplace-backend/pkg/types"
)

// nextAvailableHorizonDays bounds the forward scan when suggesting an
// alternative delivery date.
const nextAvailableHorizonDays = 60

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type shopFinder interface {
	FindByIDs(ctx context.Context, shopIDs []uuid.UUID) ([]models.Shop, error)
}

type marketReader interface {
	GetSettings(ctx context.Context) (*models.MarketSettings, error)
	ClosureWindows(ctx context.Context, from time.Time) ([]eligibility.Window, error)
}

// SubmitInput is the checkout request after transport-level validation.
type SubmitInput struct {
	DeliveryMethod  enums.DeliveryMethod
	DeliveryDate    time.Time
	DeliveryAddress string
	PaymentMethod   enums.PaymentMethod
	Note            string
}

// EligibilityQuery probes a slot without submitting.
type EligibilityQuery struct {
	DeliveryMethod enums.DeliveryMethod
	DeliveryDate   time.Time
}

// EligibilityResult mirrors the evaluator decision plus the suggested
// fallback date when the slot is rejected.
type EligibilityResult struct {
	Eligible      bool                   `json:"eligible"`
	Reason        eligibility.ReasonCode `json:"reason,omitempty"`
	ShopID        *uuid.UUID             `json:"shop_id,omitempty"`
	SuggestedDate *time.Time             `json:"suggested_date,omitempty"`
	Method        enums.DeliveryMethod   `json:"method"`
	Date          time.Time              `json:"date"`
}

// Service is the checkout orchestrator.
type Service interface {
	Submit(ctx context.Context, customerID uuid.UUID, input SubmitInput) (*models.Order, error)
	CheckEligibility(ctx context.Context, customerID uuid.UUID, query EligibilityQuery) (*EligibilityResult, error)
}

type service struct {
	carts   cart.Repository
	shops   shopFinder
	market  marketReader
	orders  orders.Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.CheckoutMetrics
	now     func() time.Time
}

// NewService builds the checkout orchestrator. Metrics may be nil.
func NewService(carts cart.Repository, shopsFinder shopFinder, market marketReader, ordersRepo orders.Repository, tx txRunner, publisher outboxPublisher, m *metrics.CheckoutMetrics) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if shopsFinder == nil {
		return nil, fmt.Errorf("shop finder required")
	}
	if market == nil {
		return nil, fmt.Errorf("market reader required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		carts:   carts,
		shops:   shopsFinder,
		market:  market,
		orders:  ordersRepo,
		tx:      tx,
		outbox:  publisher,
		metrics: m,
		now:     time.Now,
	}, nil
}

// Submit runs the checkout gates in order and creates the order with all
// lots pending. Any gate failure leaves the cart untouched.
func (s *service) Submit(ctx context.Context, customerID uuid.UUID, input SubmitInput) (*models.Order, error) {
	started := s.now()
	order, err := s.submit(ctx, customerID, input)
	s.metrics.ObserveCheckout(string(input.DeliveryMethod), s.now().Sub(started))
	if err != nil {
		s.metrics.IncSubmission(string(input.DeliveryMethod), "rejected")
		return nil, err
	}
	s.metrics.IncSubmission(string(input.DeliveryMethod), "accepted")
	return order, nil
}

func (s *service) submit(ctx context.Context, customerID uuid.UUID, input SubmitInput) (*models.Order, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if !input.DeliveryMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery method")
	}
	if input.DeliveryDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery date required")
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = enums.PaymentMethodCash
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	cart, err := s.carts.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	address := strings.TrimSpace(input.DeliveryAddress)
	if input.DeliveryMethod != enums.DeliveryMethodPickup && address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required")
	}

	groups := groupByShop(cart.Items)
	if input.DeliveryMethod == enums.DeliveryMethodShopDelivery && len(groups) > 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop delivery requires a single-shop cart")
	}

	shopRows, err := s.loadShops(ctx, groups)
	if err != nil {
		return nil, err
	}

	if err := s.checkEligibility(ctx, input.DeliveryMethod, input.DeliveryDate, shopRows); err != nil {
		return nil, err
	}

	settings, err := s.market.GetSettings(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load market settings")
	}
	shopSchedule := types.DefaultFeeSchedule()
	if input.DeliveryMethod == enums.DeliveryMethodShopDelivery {
		shopSchedule = fees.ResolveShopSchedule(shopRows[0])
	}

	subtotal := 0
	for _, group := range groups {
		subtotal += group.subtotalCents()
	}
	deliveryFee := fees.FeeFor(input.DeliveryMethod, subtotal, settings.DeliveryFee, shopSchedule)

	order := s.buildOrder(customerID, input, address, groups, shopRows, subtotal, deliveryFee)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.orders.WithTx(tx).CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := s.carts.WithTx(tx).MarkConverted(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "convert cart")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor: &outbox.ActorRef{
				UserID: customerID,
				Role:   string(enums.ActorRoleCustomer),
			},
			Data:       s.createdPayload(order),
			OccurredAt: s.now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CheckEligibility answers the slot probe against the customer's current
// cart, suggesting the next available date on rejection.
func (s *service) CheckEligibility(ctx context.Context, customerID uuid.UUID, query EligibilityQuery) (*EligibilityResult, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if !query.DeliveryMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery method")
	}
	if query.DeliveryDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery date required")
	}
	cart, err := s.carts.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	groups := groupByShop(cart.Items)
	if len(groups) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	shopRows, err := s.loadShops(ctx, groups)
	if err != nil {
		return nil, err
	}
	in, err := s.evaluatorInput(ctx, query.DeliveryMethod, query.DeliveryDate, shopRows)
	if err != nil {
		return nil, err
	}
	decision := eligibility.Evaluate(in)
	result := &EligibilityResult{
		Eligible: decision.Eligible,
		Reason:   decision.Reason,
		ShopID:   decision.ShopID,
		Method:   query.DeliveryMethod,
		Date:     query.DeliveryDate,
	}
	if !decision.Eligible {
		result.SuggestedDate = eligibility.NextAvailable(in, nextAvailableHorizonDays)
	}
	return result, nil
}

func (s *service) loadShops(ctx context.Context, groups []shopGroup) ([]models.Shop, error) {
	ids := make([]uuid.UUID, 0, len(groups))
	for _, group := range groups {
		ids = append(ids, group.ShopID)
	}
	rows, err := s.shops.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shops")
	}
	byID := make(map[uuid.UUID]models.Shop, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	ordered := make([]models.Shop, 0, len(ids))
	for _, id := range ids {
		shop, ok := byID[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		if shop.Status != enums.ShopStatusApproved {
			return nil, pkgerrors.New(pkgerrors.CodeGuard, "shop is not open for orders")
		}
		ordered = append(ordered, shop)
	}
	return ordered, nil
}

func (s *service) evaluatorInput(ctx context.Context, method enums.DeliveryMethod, date time.Time, shopRows []models.Shop) (eligibility.Input, error) {
	profiles := make([]eligibility.ShopProfile, 0, len(shopRows))
	for _, row := range shopRows {
		profiles = append(profiles, shops.Profile(row))
	}
	windows, err := s.market.ClosureWindows(ctx, s.now())
	if err != nil {
		return eligibility.Input{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load market closures")
	}
	return eligibility.Input{
		Method:         method,
		Date:           date,
		Now:            s.now(),
		Shops:          profiles,
		MarketClosures: windows,
	}, nil
}

func (s *service) checkEligibility(ctx context.Context, method enums.DeliveryMethod, date time.Time, shopRows []models.Shop) error {
	in, err := s.evaluatorInput(ctx, method, date, shopRows)
	if err != nil {
		return err
	}
	decision := eligibility.Evaluate(in)
	if decision.Eligible {
		return nil
	}
	s.metrics.IncRejection(string(decision.Reason))
	details := map[string]any{"reason": decision.Reason}
	if decision.ShopID != nil {
		details["shop_id"] = decision.ShopID.String()
	}
	if suggested := eligibility.NextAvailable(in, nextAvailableHorizonDays); suggested != nil {
		details["suggested_date"] = suggested.Format("2006-01-02")
	}
	return pkgerrors.New(pkgerrors.CodeEligibility, "requested slot is not available").WithDetails(details)
}

func (s *service) buildOrder(customerID uuid.UUID, input SubmitInput, address string, groups []shopGroup, shopRows []models.Shop, subtotal, deliveryFee int) *models.Order {
	shopNames := make(map[uuid.UUID]string, len(shopRows))
	for _, row := range shopRows {
		shopNames[row.ID] = row.Name
	}

	order := &models.Order{
		ID:               uuid.New(),
		OrderNumber:      newOrderNumber(s.now()),
		CustomerID:       customerID,
		DeliveryMethod:   input.DeliveryMethod,
		DeliveryDate:     input.DeliveryDate,
		PaymentMethod:    input.PaymentMethod,
		Status:           enums.OrderStatusPending,
		SubtotalCents:    subtotal,
		DeliveryFeeCents: deliveryFee,
		TotalCents:       subtotal + deliveryFee,
	}
	if address != "" {
		order.DeliveryAddress = &address
	}
	if note := strings.TrimSpace(input.Note); note != "" {
		order.Note = &note
	}

	for _, group := range groups {
		lot := models.ShopLot{
			ID:       uuid.New(),
			OrderID:  order.ID,
			ShopID:   group.ShopID,
			ShopName: shopNames[group.ShopID],
			Status:   enums.LotStatusPending,
		}
		for _, item := range group.Items {
			lot.Items = append(lot.Items, models.OrderItem{
				ID:             uuid.New(),
				LotID:          lot.ID,
				ProductID:      item.ProductID,
				Name:           item.Name,
				UnitPriceCents: item.UnitPriceCents,
				Qty:            item.Qty,
				Status:         enums.OrderItemStatusActive,
			})
		}
		order.Lots = append(order.Lots, lot)
	}
	return order
}

func (s *service) createdPayload(order *models.Order) payloads.OrderCreatedEvent {
	payload := payloads.OrderCreatedEvent{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		CustomerID:     order.CustomerID,
		DeliveryMethod: order.DeliveryMethod,
		DeliveryDate:   order.DeliveryDate,
		TotalCents:     order.TotalCents,
	}
	for _, lot := range order.Lots {
		payload.LotIDs = append(payload.LotIDs, lot.ID)
		payload.ShopIDs = append(payload.ShopIDs, lot.ShopID)
	}
	return payload
}

// newOrderNumber mints a human-readable unique order reference, e.g.
// SP-20260828-1A2B3C4D.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("SP-%s-%s", now.Format("20060102"), suffix)
}
