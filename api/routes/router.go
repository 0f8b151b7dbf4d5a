package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soukplace/soukplace-backend/api/controllers"
	"github.com/soukplace/soukplace-backend/api/middleware"
	"github.com/soukplace/soukplace-backend/internal/cart"
	checkoutsvc "github.com/soukplace/soukplace-backend/internal/checkout"
	"github.com/soukplace/soukplace-backend/internal/marketplace"
	"github.com/soukplace/soukplace-backend/internal/notifications"
	"github.com/soukplace/soukplace-backend/internal/orders"
	"github.com/soukplace/soukplace-backend/internal/shops"
	"github.com/soukplace/soukplace-backend/pkg/config"
	"github.com/soukplace/soukplace-backend/pkg/logger"
	pkgredis "github.com/soukplace/soukplace-backend/pkg/redis"
)

// Deps carries everything the router mounts. All fields are required unless
// noted on the handler that consumes them.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DBPinger      controllers.Pinger
	RedisPinger   controllers.Pinger
	Idempotency   pkgredis.IdempotencyStore
	CartService   cart.Service
	Checkout      checkoutsvc.Service
	Shops         shops.Service
	Marketplace   marketplace.Service
	OrdersRepo    orders.Repository
	Orders        orders.Service
	Notifications notifications.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisPinger))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Idempotency, logg))

		r.Route("/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(deps.CartService, logg))
			r.Post("/items", controllers.AddCartItem(deps.CartService, logg))
			r.Put("/items/{productID}", controllers.SetCartItemQty(deps.CartService, logg))
			r.Delete("/items/{productID}", controllers.RemoveCartItem(deps.CartService, logg))
			r.Delete("/", controllers.ClearCart(deps.CartService, logg))
		})

		r.Post("/v1/checkout", controllers.Checkout(deps.Checkout, logg))
		r.Get("/v1/checkout/eligibility", controllers.CheckoutEligibility(deps.Checkout, logg))

		r.Route("/v1/orders", func(r chi.Router) {
			r.Get("/", controllers.ListCustomerOrders(deps.OrdersRepo, logg))
			r.Get("/{orderID}", controllers.GetOrder(deps.Orders, logg))
			r.Post("/{orderID}/cancel", controllers.CancelOrder(deps.Orders, logg))
			r.Route("/{orderID}/lots/{lotID}", func(r chi.Router) {
				r.Post("/accept", controllers.AcceptLot(deps.Orders, logg))
				r.Post("/deposit", controllers.MarkLotDeposit(deps.Orders, logg))
				r.Post("/delivered", controllers.ConfirmLotDelivered(deps.Orders, logg))
				r.Post("/cancel", controllers.CancelLot(deps.Orders, logg))
				r.Post("/items/{itemID}/cancel", controllers.CancelItem(deps.Orders, logg))
			})
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Get("/unread-count", controllers.CountUnreadNotifications(deps.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})

		r.Post("/v1/shops", controllers.RegisterShop(deps.Shops, logg))
		r.Get("/v1/shops/{shopID}", controllers.GetShop(deps.Shops, logg))

		r.Route("/v1/shops/me", func(r chi.Router) {
			r.Use(middleware.RequireRole("shop", logg))
			r.Get("/", controllers.GetMyShop(deps.Shops, logg))
			r.Put("/schedule", controllers.UpdateShopSchedule(deps.Shops, logg))
			r.Put("/delivery-fee", controllers.SetShopDeliveryFee(deps.Shops, logg))
			r.Post("/closures", controllers.AddShopClosure(deps.Shops, logg))
			r.Delete("/closures/{closureID}", controllers.RemoveShopClosure(deps.Shops, logg))
			r.Get("/lots", controllers.ListShopLots(deps.OrdersRepo, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(deps.Idempotency, logg))

		r.Route("/v1/shops", func(r chi.Router) {
			r.Get("/", controllers.AdminListShops(deps.Shops, logg))
			r.Post("/{shopID}/approve", controllers.AdminApproveShop(deps.Shops, logg))
			r.Post("/{shopID}/suspend", controllers.AdminSuspendShop(deps.Shops, logg))
		})

		r.Route("/v1/market", func(r chi.Router) {
			r.Get("/settings", controllers.GetMarketSettings(deps.Marketplace, logg))
			r.Put("/delivery-fee", controllers.SetMarketDeliveryFee(deps.Marketplace, logg))
			r.Get("/closures", controllers.ListMarketClosures(deps.Marketplace, logg))
			r.Post("/closures", controllers.AddMarketClosure(deps.Marketplace, logg))
			r.Delete("/closures/{closureID}", controllers.RemoveMarketClosure(deps.Marketplace, logg))
		})

		r.Route("/v1/orders", func(r chi.Router) {
			r.Get("/deposit-queue", controllers.ListDepositQueue(deps.OrdersRepo, logg))
			r.Post("/{orderID}/lots/{lotID}/confirm-deposit", controllers.ConfirmLotDeposit(deps.Orders, logg))
		})
	})

	return r
}
