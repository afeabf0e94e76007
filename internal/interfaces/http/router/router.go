// Package router wires the HTTP handlers, middleware and routes.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tradebooks/backend/internal/infrastructure/config"
	"github.com/tradebooks/backend/internal/infrastructure/logger"
	"github.com/tradebooks/backend/internal/interfaces/http/handler"
	"github.com/tradebooks/backend/internal/interfaces/http/middleware"
)

// Handlers groups the handlers the router mounts
type Handlers struct {
	System     *handler.SystemHandler
	Document   *handler.DocumentHandler
	Cash       *handler.CashHandler
	Allocation *handler.AllocationHandler
	Product    *handler.ProductHandler
	Partner    *handler.PartnerHandler
}

// New builds the gin engine with middleware and all routes mounted
func New(cfg *config.Config, handlers Handlers, log *zap.Logger) (*gin.Engine, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, err
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			return nil, err
		}
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORS(),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	handlers.System.RegisterRoutes(engine)

	api := engine.Group("/api/v1")
	handlers.Document.RegisterRoutes(api)
	handlers.Cash.RegisterRoutes(api)
	handlers.Allocation.RegisterRoutes(api)
	handlers.Product.RegisterRoutes(api)
	handlers.Partner.RegisterRoutes(api)

	return engine, nil
}
