package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omarashraf/kasher-backend/api/controllers"
	"github.com/omarashraf/kasher-backend/api/middleware"
	"github.com/omarashraf/kasher-backend/internal/auth"
	"github.com/omarashraf/kasher-backend/internal/catalog"
	"github.com/omarashraf/kasher-backend/internal/managers"
	"github.com/omarashraf/kasher-backend/internal/sales"
	"github.com/omarashraf/kasher-backend/internal/shops"
	"github.com/omarashraf/kasher-backend/internal/terminals"
	"github.com/omarashraf/kasher-backend/pkg/config"
	"github.com/omarashraf/kasher-backend/pkg/db"
	"github.com/omarashraf/kasher-backend/pkg/logger"
	"github.com/omarashraf/kasher-backend/pkg/metrics"
	"github.com/omarashraf/kasher-backend/pkg/redis"
)

// Deps bundles everything the router needs. Fields left nil degrade to
// 500 responses from the affected handlers instead of panics.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Registry *prometheus.Registry
	Metrics  *metrics.HTTPMetrics

	Auth      auth.Service
	Shops     shops.Service
	Managers  managers.Service
	Catalog   catalog.Service
	Sales     sales.Service
	Terminals terminals.Service
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
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(logg, deps.DB, deps.Redis))
	})
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/barcodes", func(r chi.Router) {
			r.Post("/complete", controllers.BarcodeComplete(logg))
			r.Post("/validate", controllers.BarcodeValidate(logg))
		})

		r.Route("/invites", func(r chi.Router) {
			r.Get("/", controllers.MyInviteList(deps.Managers, logg))
			r.Post("/{inviteID}/accept", controllers.MyInviteAccept(deps.Managers, logg))
			r.Post("/{inviteID}/decline", controllers.MyInviteDecline(deps.Managers, logg))
		})

		r.Route("/shops", func(r chi.Router) {
			r.Get("/", controllers.ShopList(deps.Shops, logg))
			r.Post("/", controllers.ShopCreate(deps.Shops, logg))

			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", controllers.ShopGet(deps.Shops, logg))
				r.Put("/", controllers.ShopUpdate(deps.Shops, logg))
				r.Delete("/", controllers.ShopDelete(deps.Shops, logg))

				r.Get("/dashboard", controllers.Dashboard(deps.Sales, logg))

				r.Route("/managers", func(r chi.Router) {
					r.Get("/", controllers.ManagerList(deps.Managers, logg))
					r.Post("/", controllers.ManagerInvite(deps.Managers, logg))
					r.Get("/invites", controllers.ManagerInviteList(deps.Managers, logg))
					r.Put("/{managerID}/permissions", controllers.ManagerUpdatePermissions(deps.Managers, logg))
					r.Delete("/{managerID}", controllers.ManagerRemove(deps.Managers, logg))
				})

				r.Route("/categories", func(r chi.Router) {
					r.Get("/", controllers.CategoryList(deps.Catalog, logg))
					r.Post("/", controllers.CategoryCreate(deps.Catalog, logg))
					r.Put("/{categoryID}", controllers.CategoryUpdate(deps.Catalog, logg))
					r.Delete("/{categoryID}", controllers.CategoryDelete(deps.Catalog, logg))
				})

				r.Route("/products", func(r chi.Router) {
					r.Get("/", controllers.ProductList(deps.Catalog, logg))
					r.Post("/", controllers.ProductCreate(deps.Catalog, logg))
					r.Get("/{productID}", controllers.ProductGet(deps.Catalog, logg))
					r.Put("/{productID}", controllers.ProductUpdate(deps.Catalog, logg))
					r.Delete("/{productID}", controllers.ProductDelete(deps.Catalog, logg))
					r.Post("/{productID}/variants", controllers.VariantAdd(deps.Catalog, logg))
					r.Get("/{productID}/stats", controllers.ProductStats(deps.Sales, logg))
				})

				r.Route("/variants", func(r chi.Router) {
					r.Get("/{variantID}", controllers.VariantGet(deps.Catalog, logg))
					r.Put("/{variantID}", controllers.VariantUpdate(deps.Catalog, logg))
					r.Delete("/{variantID}", controllers.VariantDelete(deps.Catalog, logg))
					r.Get("/{variantID}/stats", controllers.VariantStats(deps.Sales, logg))
					r.Post("/{variantID}/attribute-values/{valueID}", controllers.VariantAttributeAssign(deps.Catalog, logg))
					r.Delete("/{variantID}/attribute-values/{valueID}", controllers.VariantAttributeUnassign(deps.Catalog, logg))
				})

				r.Route("/attributes", func(r chi.Router) {
					r.Get("/", controllers.AttributeList(deps.Catalog, logg))
					r.Post("/", controllers.AttributeCreate(deps.Catalog, logg))
					r.Delete("/{attributeID}", controllers.AttributeDelete(deps.Catalog, logg))
					r.Post("/{attributeID}/values", controllers.AttributeValueAdd(deps.Catalog, logg))
					r.Delete("/attribute-values/{valueID}", controllers.AttributeValueDelete(deps.Catalog, logg))
				})

				r.Route("/sales", func(r chi.Router) {
					r.Get("/", controllers.SaleList(deps.Sales, logg))
					r.Post("/", controllers.SaleCreate(deps.Sales, logg))
					r.Get("/{saleID}", controllers.SaleGet(deps.Sales, logg))
					r.Delete("/{saleID}", controllers.SaleDelete(deps.Sales, logg))
					r.Post("/{saleID}/items", controllers.SaleItemAdd(deps.Sales, logg))
					r.Put("/{saleID}/items/{itemID}", controllers.SaleItemUpdate(deps.Sales, logg))
					r.Delete("/{saleID}/items/{itemID}", controllers.SaleItemRemove(deps.Sales, logg))
				})

				r.Route("/terminals", func(r chi.Router) {
					r.Get("/", controllers.TerminalList(deps.Terminals, logg))
					r.Post("/", controllers.TerminalCreate(deps.Terminals, logg))
					r.Delete("/{terminalID}", controllers.TerminalDelete(deps.Terminals, logg))
					r.Get("/{terminalID}/sync", controllers.TerminalSync(deps.Terminals, logg))
				})
			})
		})
	})

	return r
}
