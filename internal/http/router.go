package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/atm360/backend/internal/auth"
	"github.com/atm360/backend/internal/config"
	"github.com/atm360/backend/internal/db"
	"github.com/atm360/backend/internal/http/handlers"
	"github.com/atm360/backend/internal/http/middleware"
	"github.com/atm360/backend/internal/models"
	"github.com/atm360/backend/internal/scoring"
	"github.com/atm360/backend/internal/service"

	_ "github.com/atm360/backend/docs"
)

func Router(cfg config.Config, store *db.Store, scorer scoring.Scorer, tokens *auth.Manager, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Auth:      tokens,
		Dispatch:  &service.DispatchService{Store: store, Scorer: scorer, Logger: logger, Timeout: cfg.ScorerTimeout},
		Alerts:    &service.AlertService{Store: store, Logger: logger},
		Reports:   &service.ReportService{Store: store},
		Telemetry: &service.TelemetryService{Store: store, Logger: logger},
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.POST("/auth/login", h.Login)

	protected := api.Group("")
	protected.Use(middleware.Protect(tokens, store))
	{
		protected.GET("/atms", h.AtmsList)
		protected.GET("/atms/telemetry", h.TelemetrySnapshot)
		protected.GET("/atms/:id", h.AtmDetails)
		protected.GET("/engineers", h.EngineersList)
		protected.GET("/tickets", h.TicketsList)
	}

	admin := protected.Group("")
	admin.Use(middleware.RestrictTo(models.RoleAdmin))
	{
		admin.POST("/atms", h.AtmCreate)
		admin.PATCH("/atms/:id", h.AtmUpdate)
		admin.DELETE("/atms/:id", h.AtmDelete)
		admin.PUT("/atms/:id/telemetry", h.TelemetryIngest)
		admin.POST("/tickets", h.TicketCreate)
		admin.POST("/dispatch/auto", h.DispatchAuto)
		admin.GET("/alerts/at-risk", h.AlertsAtRisk)
		admin.GET("/stats/kpi", h.StatsKPI)
	}

	engineer := protected.Group("")
	engineer.Use(middleware.RestrictTo(models.RoleEngineer, models.RoleAdmin))
	{
		engineer.PATCH("/tickets/:id/status", h.TicketStatusUpdate)
		engineer.POST("/tickets/:id/photo", h.TicketProofPhoto)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
