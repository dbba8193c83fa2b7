package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scrapmandi/scrapmandi-backend/api/controllers"
	webhookcontrollers "github.com/scrapmandi/scrapmandi-backend/api/controllers/webhooks"
	"github.com/scrapmandi/scrapmandi-backend/api/middleware"
	"github.com/scrapmandi/scrapmandi-backend/internal/listings"
	"github.com/scrapmandi/scrapmandi-backend/internal/orders"
	"github.com/scrapmandi/scrapmandi-backend/internal/payments"
	"github.com/scrapmandi/scrapmandi-backend/internal/pickups"
	"github.com/scrapmandi/scrapmandi-backend/internal/users"
	razorpaywebhook "github.com/scrapmandi/scrapmandi-backend/internal/webhooks/razorpay"
	"github.com/scrapmandi/scrapmandi-backend/pkg/config"
	"github.com/scrapmandi/scrapmandi-backend/pkg/db"
	"github.com/scrapmandi/scrapmandi-backend/pkg/logger"
	"github.com/scrapmandi/scrapmandi-backend/pkg/metrics"
	"github.com/scrapmandi/scrapmandi-backend/pkg/razorpay"
	"github.com/scrapmandi/scrapmandi-backend/pkg/redis"
)

// RouterParams bundle everything the HTTP surface depends on.
type RouterParams struct {
	Config *config.Config
	Logger *logger.Logger

	DB    *db.Client
	Redis *redis.Client

	Users    users.Service
	Listings listings.Service
	// ListingsRepo backs read-only category and admin lookups.
	ListingsRepo listings.Repository
	Orders       orders.Service
	OrdersRepo   orders.Repository
	Pickups      pickups.Service
	Resolver     payments.Resolver

	Razorpay       *razorpay.Client
	WebhookService *razorpaywebhook.Service
	WebhookGuard   *razorpaywebhook.IdempotencyGuard

	PaymentMetrics *metrics.PaymentMetrics
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	authRate := middleware.RateLimit("auth", p.Redis, cfg.RateLimit.AuthLimit, cfg.RateLimit.AuthWindow, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(authRate).Post("/register", controllers.AuthRegister(p.Users, logg))
		r.With(authRate).Post("/login", controllers.AuthLogin(p.Users, logg))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/razorpay", webhookcontrollers.RazorpayWebhook(p.WebhookService, p.Razorpay, p.WebhookGuard, p.PaymentMetrics, logg))
	})

	// Public storefront. Browse widens for authenticated callers, so the
	// auth here is optional rather than absent.
	r.Route("/api/v1/public", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))
		r.Get("/listings", controllers.BrowseListings(p.Listings, logg))
		r.Get("/listings/{listingId}", controllers.ListingDetail(p.Listings, logg))
		r.Get("/categories", controllers.CategoryList(p.ListingsRepo, logg))
		r.Get("/payments/key", controllers.ProviderKey(p.Razorpay, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/seller", func(r chi.Router) {
			r.Use(middleware.RequireRole("seller", logg))
			r.Post("/listings", controllers.SellerSubmitListing(p.Listings, logg))
			r.Get("/listings", controllers.SellerListings(p.Listings, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RequireRole("buyer", logg)).Post("/", controllers.InitiatePurchase(p.Orders, logg))
			r.Get("/", controllers.MyOrders(p.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(p.Orders, logg))
			r.Get("/{orderId}/pickup", controllers.PickupByOrder(p.Pickups, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/verify", controllers.VerifyPayment(p.Resolver, p.Razorpay, p.PaymentMetrics, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/listings", func(r chi.Router) {
			r.Get("/review", controllers.AdminReviewQueue(p.Listings, logg))
			r.Post("/{listingId}/approve", controllers.AdminApproveListing(p.Listings, logg))
			r.Post("/{listingId}/reject", controllers.AdminRejectListing(p.Listings, logg))
			r.Post("/{listingId}/inspection", controllers.AdminRecordInspection(p.Listings, logg))
			r.Post("/{listingId}/publish", controllers.AdminPublishListing(p.Listings, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/pending", controllers.AdminPendingSellers(p.Users, logg))
			r.Post("/{userId}/status", controllers.AdminSetUserStatus(p.Users, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrders(p.OrdersRepo, logg))
			r.Post("/{orderId}/advance", controllers.AdminAdvanceOrder(p.Orders, logg))
		})

		r.Route("/pickups", func(r chi.Router) {
			r.Post("/", controllers.AdminSchedulePickup(p.Pickups, logg))
			r.Post("/{pickupId}/status", controllers.AdminUpdatePickupStatus(p.Pickups, logg))
		})
	})

	return r
}
