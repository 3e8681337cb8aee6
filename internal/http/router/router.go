package router

import (
	"net/http"

	"github.com/garmentiq/revenue-forecast-api/internal/auth"
	"github.com/garmentiq/revenue-forecast-api/internal/config"
	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/garmentiq/revenue-forecast-api/internal/http/handler"
	"github.com/garmentiq/revenue-forecast-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/garmentiq/revenue-forecast-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg             *config.Config
	logger          *zap.Logger
	authMiddleware  *auth.Middleware
	rateLimiter     *middleware.RateLimiter
	healthHandler   *handler.HealthHandler
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler
	dataHandler     *handler.DataHandler
	forecastHandler *handler.ForecastHandler
	economicHandler *handler.EconomicHandler
	reportHandler   *handler.ReportHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	dataHandler *handler.DataHandler,
	forecastHandler *handler.ForecastHandler,
	economicHandler *handler.EconomicHandler,
	reportHandler *handler.ReportHandler,
) *Router {
	return &Router{
		cfg:             cfg,
		logger:          logger,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
		healthHandler:   healthHandler,
		authHandler:     authHandler,
		userHandler:     userHandler,
		dataHandler:     dataHandler,
		forecastHandler: forecastHandler,
		economicHandler: economicHandler,
		reportHandler:   reportHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger, rt.cfg.App.IsDevelopment()))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, &rt.cfg.App, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)
	r.Use(middleware.Timeout(rt.cfg.Server.RequestTimeoutDuration()))

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	// Probes
	r.Get("/health", rt.healthHandler.Live)
	r.Get("/health/db", rt.healthHandler.Database)
	r.Get("/health/ready", rt.healthHandler.Ready)

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes, with the stricter auth limit
		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimiter.LimitAuth)
			r.Post("/auth/register", rt.authHandler.Register)
			r.Post("/auth/login", rt.authHandler.Login)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(middleware.TagUser)

			r.Get("/auth/me", rt.authHandler.Me)

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile", rt.userHandler.GetProfile)
				r.Put("/profile", rt.userHandler.UpdateProfile)
			})

			r.Route("/data", func(r chi.Router) {
				r.Get("/", rt.dataHandler.List)
				r.Post("/", rt.dataHandler.Create)
				r.Get("/summary", rt.dataHandler.Summary)
				r.Post("/bulk", rt.dataHandler.Bulk)
				r.Get("/{id}", rt.dataHandler.Get)
				r.Put("/{id}", rt.dataHandler.Update)
				r.Delete("/{id}", rt.dataHandler.Delete)
			})

			r.Route("/forecasts", func(r chi.Router) {
				r.Get("/", rt.forecastHandler.List)
				r.Post("/", rt.forecastHandler.Generate)
				r.Get("/{id}", rt.forecastHandler.Get)
				r.Delete("/{id}", rt.forecastHandler.Delete)
			})

			r.Route("/economic", func(r chi.Router) {
				r.Get("/live", rt.economicHandler.Live)
				r.Get("/historical", rt.economicHandler.Historical)
				r.Get("/exchange-rates", rt.economicHandler.ExchangeRates)
				r.Get("/indicators", rt.economicHandler.Indicators)
				r.Get("/industry-data", rt.economicHandler.IndustryData)
				r.Get("/supply-chain", rt.economicHandler.SupplyChain)
				r.Get("/trade-policy", rt.economicHandler.TradePolicy)
				r.Get("/weather", rt.economicHandler.Weather)
				r.Get("/weather/{region}", rt.economicHandler.Weather)
				r.With(rt.authMiddleware.RequireRole(domain.RoleAdmin)).
					Post("/snapshots", rt.economicHandler.CaptureSnapshot)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/", rt.reportHandler.List)
				r.Post("/", rt.reportHandler.Generate)
				r.Get("/{id}", rt.reportHandler.Get)
				r.Get("/{id}/download", rt.reportHandler.Download)
				r.Delete("/{id}", rt.reportHandler.Delete)
			})
		})
	})

	return r
}
