package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/parcelbox/parcel-service/internal/config"
	"github.com/parcelbox/parcel-service/internal/database"
	"github.com/parcelbox/parcel-service/internal/handler"
	"github.com/parcelbox/parcel-service/internal/middleware"
	"github.com/parcelbox/parcel-service/internal/redis"
	"github.com/parcelbox/parcel-service/internal/repository"
	"github.com/parcelbox/parcel-service/internal/service"
)

func newRouter(cfg *config.Config, db *database.DB, redisClient *redis.Client) chi.Router {
	parcelRepo := repository.NewParcelRepository(db.DB)
	parcelTypeRepo := repository.NewParcelTypeRepository(db.DB)

	parcelService := service.NewParcelService(db, parcelRepo, parcelTypeRepo)

	sessionMiddleware := middleware.NewSessionMiddleware(
		redis.NewSessionCache(redisClient), cfg.SessionTTL(), cfg.SessionCookieSecure,
	)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(cfg.SessionCookieSecure)

	var createLimit func(http.Handler) http.Handler
	if cfg.RateLimitPerMin > 0 {
		createLimit = middleware.NewRateLimitMiddleware(redisClient.Client, cfg.RateLimitPerMin).Handler
	}

	parcelHandler := handler.NewParcelHandler(parcelService, createLimit)
	healthHandler := handler.NewHealthHandler(
		handler.HealthCheck{Name: "database", Check: db.Ping},
		handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}},
	)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)
	r.Use(securityHeadersMiddleware.Handler)

	r.Get("/health", healthHandler.ServeHTTP)

	r.Route(cfg.APIPrefix, func(r chi.Router) {
		r.Use(sessionMiddleware.Handler)
		r.Mount("/", parcelHandler.Routes())
	})

	return r
}
