package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/afkahka/kfccfk/api/controllers"
	"github.com/afkahka/kfccfk/api/middleware"
	addresssvc "github.com/afkahka/kfccfk/internal/address"
	catalogsvc "github.com/afkahka/kfccfk/internal/catalog"
	discountsvc "github.com/afkahka/kfccfk/internal/discount"
	membershipsvc "github.com/afkahka/kfccfk/internal/membership"
	userssvc "github.com/afkahka/kfccfk/internal/users"
	"github.com/afkahka/kfccfk/pkg/config"
	"github.com/afkahka/kfccfk/pkg/db"
	"github.com/afkahka/kfccfk/pkg/logger"
	pkgredis "github.com/afkahka/kfccfk/pkg/redis"
)

// Deps bundles everything the router wires into handlers. Idempotency
// overrides the Redis-backed settlement store when set; when nil the Redis
// client is used directly.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DBPinger    db.Pinger
	Redis       *pkgredis.Client
	Idempotency pkgredis.IdempotencyStore
	Membership  *membershipsvc.Service
	Rights      *membershipsvc.RightsService
	Discount    *discountsvc.Service
	Users       *userssvc.Service
	Addresses   *addresssvc.Service
	Catalog     *catalogsvc.Service
	MetricsPath http.Handler
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.CORS(),
	)

	idempotencyStore := deps.Idempotency
	if idempotencyStore == nil && deps.Redis != nil {
		idempotencyStore = deps.Redis
	}
	settlementTTL := 7 * 24 * time.Hour
	var redisPinger pkgredis.Pinger
	if deps.Redis != nil {
		redisPinger = deps.Redis
	}
	if deps.Config != nil && deps.Config.Loyalty.SettlementIdempotencyTTL > 0 {
		settlementTTL = deps.Config.Loyalty.SettlementIdempotencyTTL
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DBPinger, redisPinger))
	})

	metricsHandler := deps.MetricsPath
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, settlementTTL, deps.Logger))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.ListUsers(deps.Users, deps.Logger))
			r.Post("/", controllers.RegisterUser(deps.Users, deps.Logger))
			r.Get("/phone/{telephone}", controllers.GetUserByTelephone(deps.Users, deps.Logger))
			r.Get("/{userID}", controllers.GetUserProfile(deps.Users, deps.Logger))
			r.Patch("/{userID}", controllers.UpdateUserProfile(deps.Users, deps.Logger))
			r.Delete("/{userID}", controllers.DeleteUser(deps.Users, deps.Logger))

			r.Route("/{userID}/addresses", func(r chi.Router) {
				r.Get("/", controllers.ListAddresses(deps.Addresses, deps.Logger))
				r.Post("/", controllers.CreateAddress(deps.Addresses, deps.Logger))
				r.Get("/{addressID}", controllers.GetAddress(deps.Addresses, deps.Logger))
				r.Put("/{addressID}", controllers.UpdateAddress(deps.Addresses, deps.Logger))
				r.Delete("/{addressID}", controllers.DeleteAddress(deps.Addresses, deps.Logger))
			})
		})

		r.Get("/addresses/check-phone/{phoneNumber}", controllers.CheckAddressPhone(deps.Addresses, deps.Logger))

		r.Route("/members", func(r chi.Router) {
			r.Get("/levels", controllers.ListMemberLevels(deps.Membership, deps.Logger))
			r.Get("/levels/{levelType}/rights", controllers.ListLevelRights(deps.Rights, deps.Logger))
		})

		r.Route("/discounts", func(r chi.Router) {
			r.Post("/preview", controllers.PreviewDiscount(deps.Discount, deps.Users, deps.Logger))
			r.Get("/preview", controllers.PreviewDiscountQuery(deps.Discount, deps.Users, deps.Logger))
		})

		r.Post("/orders/{orderID}/paid", controllers.OrderPaid(deps.Membership, deps.Logger))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/categories", controllers.ListCategories(deps.Catalog, deps.Logger))
			r.Get("/categories/{categoryID}", controllers.GetCategory(deps.Catalog, deps.Logger))
			r.Get("/products", controllers.ListProducts(deps.Catalog, deps.Logger))
			r.Get("/products/{productID}", controllers.GetProduct(deps.Catalog, deps.Logger))
		})
	})

	return r
}
