package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pantrykit/pantry-backend/api/controllers"
	"github.com/pantrykit/pantry-backend/api/middleware"
	"github.com/pantrykit/pantry-backend/internal/cart"
	"github.com/pantrykit/pantry-backend/internal/items"
	"github.com/pantrykit/pantry-backend/internal/ledger"
	"github.com/pantrykit/pantry-backend/internal/recipes"
	"github.com/pantrykit/pantry-backend/internal/tags"
	"github.com/pantrykit/pantry-backend/internal/vendors"
	"github.com/pantrykit/pantry-backend/pkg/config"
	"github.com/pantrykit/pantry-backend/pkg/db"
	"github.com/pantrykit/pantry-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	metricsGatherer prometheus.Gatherer,
	itemService items.Service,
	ledgerService ledger.Service,
	cartService cart.Service,
	tagService tags.Service,
	vendorService vendors.Service,
	recipeService recipes.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins...),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if metricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/items", func(r chi.Router) {
		r.Post("/", controllers.ItemCreate(itemService, logg))
		r.Get("/", controllers.ItemList(itemService, logg))
		r.Route("/{itemId}", func(r chi.Router) {
			r.Get("/", controllers.ItemGet(itemService, logg))
			r.Patch("/", controllers.ItemUpdate(itemService, logg))
			r.Delete("/", controllers.ItemDelete(itemService, logg))
			r.Get("/status", controllers.ItemStatus(itemService, logg))

			r.Route("/events", func(r chi.Router) {
				r.Post("/", controllers.EventApply(ledgerService, logg))
				r.Post("/correction", controllers.EventCorrection(ledgerService, logg))
				r.Get("/", controllers.EventHistory(ledgerService, logg))
			})
		})
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", controllers.CartActive(cartService, logg))
		r.Post("/lines", controllers.CartAddLine(cartService, logg))
		r.Patch("/lines/{lineId}", controllers.CartSetLineQuantity(cartService, logg))
		r.Delete("/lines/{lineId}", controllers.CartRemoveLine(cartService, logg))
		r.Post("/checkout", controllers.CartCheckout(cartService, logg))
		r.Post("/abandon", controllers.CartAbandon(cartService, logg))
	})

	r.Route("/api/v1/tags", func(r chi.Router) {
		r.Post("/", controllers.TagCreate(tagService, logg))
		r.Get("/", controllers.TagList(tagService, logg))
		r.Route("/{tagId}", func(r chi.Router) {
			r.Get("/", controllers.TagGet(tagService, logg))
			r.Patch("/", controllers.TagUpdate(tagService, logg))
			r.Delete("/", controllers.TagDelete(tagService, logg))
		})
	})

	r.Route("/api/v1/tag-types", func(r chi.Router) {
		r.Post("/", controllers.TagTypeCreate(tagService, logg))
		r.Get("/", controllers.TagTypeList(tagService, logg))
		r.Route("/{tagTypeId}", func(r chi.Router) {
			r.Get("/", controllers.TagTypeGet(tagService, logg))
			r.Patch("/", controllers.TagTypeUpdate(tagService, logg))
			r.Delete("/", controllers.TagTypeDelete(tagService, logg))
		})
	})

	r.Route("/api/v1/vendors", func(r chi.Router) {
		r.Post("/", controllers.VendorCreate(vendorService, logg))
		r.Get("/", controllers.VendorList(vendorService, logg))
		r.Route("/{vendorId}", func(r chi.Router) {
			r.Get("/", controllers.VendorGet(vendorService, logg))
			r.Patch("/", controllers.VendorUpdate(vendorService, logg))
			r.Delete("/", controllers.VendorDelete(vendorService, logg))
		})
	})

	r.Route("/api/v1/recipes", func(r chi.Router) {
		r.Post("/", controllers.RecipeCreate(recipeService, logg))
		r.Get("/", controllers.RecipeList(recipeService, logg))
		r.Route("/{recipeId}", func(r chi.Router) {
			r.Get("/", controllers.RecipeGet(recipeService, logg))
			r.Patch("/", controllers.RecipeUpdate(recipeService, logg))
			r.Delete("/", controllers.RecipeDelete(recipeService, logg))
			r.Post("/use", controllers.RecipeUse(recipeService, logg))
		})
	})

	return r
}
