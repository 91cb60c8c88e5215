package main

import (
	"context"
	"log"
	"net/http"

	_ "paygate/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paygate/internal/cache"
	"paygate/internal/config"
	"paygate/internal/gateway"
	"paygate/internal/handler"
	"paygate/internal/metrics"
	"paygate/internal/router"
	"paygate/internal/session"
)

// @title Payroll Portal
// @version 1.0
// @description Session-gated portal for the payroll/HR system. Pages proxy the upstream payroll REST API.
// @host localhost:8080
// @BasePath /
// @schemes http
func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logger.Sync()

	// Session records live in Redis by default so sessions survive portal
	// restarts; SESSION_STORE=memory keeps everything in-process for dev.
	var newStore session.StoreFactory
	switch cfg.SessionStore {
	case "memory":
		backend := session.NewMemoryBackend()
		newStore = func(sid string) session.Store {
			return session.NewMemoryStore(backend, sid)
		}
	default:
		cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		newStore = func(sid string) session.Store {
			return session.NewRedisStore(cacheClient, sid)
		}
	}

	// The gateway's forced-logout callback evicts the session whose request
	// hit the 401/403; the registry does not exist yet, hence the indirection.
	var registry *session.Registry
	api := gateway.New(cfg.APIBaseURL, func(sid string) {
		if registry != nil && sid != "" {
			registry.Evict(context.Background(), sid)
		}
	}, logger)

	registry = session.NewRegistry(newStore, api, logger)
	metrics.TrackSessions(registry.Len)

	authHandler := handler.NewAuthHandler(registry, cfg.SessionCookie)
	pageHandler := handler.NewPageHandler(api)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, logger, registry, authHandler, pageHandler)

	logger.Info("portal listening",
		zap.String("port", cfg.ServerPort),
		zap.String("upstream", cfg.APIBaseURL))

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server start", zap.Error(err))
	}
}
