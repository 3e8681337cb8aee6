package middleware

import (
	"net/http"

	"github.com/garmentiq/revenue-forecast-api/internal/config"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// CORS returns a CORS middleware configured from the application config.
// With no configured origins, development allows every origin and other environments allow none.
func CORS(cfg *config.CORSConfig, app *config.AppConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	options.AllowOriginFunc = originPolicy(cfg.AllowedOrigins, app, logger)
	if options.AllowOriginFunc == nil {
		options.AllowedOrigins = cfg.AllowedOrigins
	}
	return cors.Handler(options)
}

// originPolicy returns nil when the explicit origin list should be used
func originPolicy(origins []string, app *config.AppConfig, logger *zap.Logger) func(*http.Request, string) bool {
	allowAny := func(r *http.Request, origin string) bool { return origin != "" }

	for _, origin := range origins {
		if origin == "*" {
			if !app.IsDevelopment() {
				logger.Warn("CORS configured with wildcard origin outside development",
					zap.String("environment", app.Environment))
			}
			return allowAny
		}
	}

	if len(origins) > 0 {
		logger.Info("CORS configured with explicit origins", zap.Strings("origins", origins))
		return nil
	}

	if app.IsDevelopment() {
		logger.Info("CORS allows all origins in development")
		return allowAny
	}

	// an empty AllowedOrigins list means "*" to go-chi/cors, so deny explicitly
	logger.Warn("CORS has no allowed origins; cross-origin requests will be denied",
		zap.String("environment", app.Environment))
	return func(r *http.Request, origin string) bool { return false }
}
