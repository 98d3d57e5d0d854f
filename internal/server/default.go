package server

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/iota-uz/catalog-api/pkg/application"
	"github.com/iota-uz/catalog-api/pkg/configuration"
	"github.com/iota-uz/catalog-api/pkg/constants"
	"github.com/iota-uz/catalog-api/pkg/httpapi"
	"github.com/iota-uz/catalog-api/pkg/middleware"
	"github.com/iota-uz/catalog-api/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

// Default builds the catalog HTTP server. The logging middleware runs first so
// every later middleware and handler sees the request logger and root span.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	conf := options.Configuration
	app := options.Application

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, middleware.DefaultLoggerOptions()),
		middleware.TracedMiddleware("cors"),
		middleware.Cors(conf.AllowedOrigins()...),
	}
	if conf.RateLimit.Enabled {
		middlewares = append(middlewares,
			middleware.TracedMiddleware("rateLimit"),
			middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: conf.RateLimit.GlobalRPS,
				Store:             rateLimitStore(conf.RateLimit, options.Logger),
			}),
		)
	}
	middlewares = append(middlewares,
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, options.Pool),
		middleware.RequestParams(),
	)
	app.RegisterMiddleware(middlewares...)

	return server.NewHTTPServer(app, httpapi.NotFound(), httpapi.MethodNotAllowed()), nil
}

// rateLimitStore shares counters across replicas through redis when configured.
// An unusable redis URL degrades to per-process counters instead of failing startup.
func rateLimitStore(opts configuration.RateLimitOptions, logger *logrus.Logger) limiter.Store {
	if opts.Storage != "redis" {
		return middleware.NewMemoryStore()
	}
	store, err := middleware.NewRedisStore(opts.RedisURL)
	if err != nil {
		logger.WithError(err).WithField("storage", opts.Storage).Warn("rate limit store unavailable, using memory")
		return middleware.NewMemoryStore()
	}
	return store
}
