package http

import (
	"net/http"
	"time"

	_ "github.com/DRSN-tech/storefront/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const requestTimeout = 30 * time.Second

type Router struct {
	router      *chi.Mux
	logger      logger.Logger
	successPath string
	swaggerURL  string
}

func NewRouter(router *chi.Mux, logger logger.Logger, successPath, swaggerURL string) *Router {
	return &Router{
		router:      router,
		logger:      logger,
		successPath: successPath,
		swaggerURL:  swaggerURL,
	}
}

func (r *Router) Init(
	checkoutUC usecase.CheckoutUC,
	catalogUC usecase.CatalogUC,
	sitemapUC usecase.SitemapUC,
	blogUC usecase.BlogUC,
	orderUC usecase.OrderUC,
) {
	r.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(r.logger),
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
	)

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(r.swaggerURL),
	))

	checkoutHandler := NewCheckoutHandler(checkoutUC, r.successPath, r.logger)
	catalogHandler := NewCatalogHandler(catalogUC, r.logger)
	storefrontHandler := NewStorefrontHandler(sitemapUC, blogUC, orderUC, r.logger)

	// Обработчик сам отвечает 405 на всё, кроме POST.
	r.router.HandleFunc("/checkout", checkoutHandler.placeOrder)
	r.router.Get("/sitemap.xml", storefrontHandler.sitemap)

	r.router.Route("/api", func(api chi.Router) {
		registerCatalogRoutes(api, catalogHandler)
		api.Get("/blog", storefrontHandler.listPosts)
		registerAdminRoutes(api, catalogHandler, storefrontHandler)
	})
}

func registerCatalogRoutes(router chi.Router, h *CatalogHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.listProducts)
		pr.Get("/{productId}", h.getProduct)
		pr.Get("/{productId}/variants", h.getVariants)
	})
	router.Post("/checkout/price", h.quotePrice)
}

func registerAdminRoutes(router chi.Router, catalog *CatalogHandler, storefront *StorefrontHandler) {
	router.Route("/admin", func(admin chi.Router) {
		admin.Patch("/products/{productId}", catalog.updateProduct)
		admin.Post("/orders/{orderId}/cancel", storefront.cancelOrder)
		admin.Post("/sitemap/publish", storefront.publishSitemap)
	})
}

// requestLogger пишет одну строку на запрос: метод, путь, статус, длительность и request id.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.With("request_id", middleware.GetReqID(r.Context())).Infof(
				"%s %s -> %d (%d bytes) in %s",
				r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start),
			)
		})
	}
}
