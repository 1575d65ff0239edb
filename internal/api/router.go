package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/insightdesk/access-directory/internal/api/handler"
	"github.com/insightdesk/access-directory/internal/core/ports"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The directory service and importer come in pre-wired; the raw mongo/redis
// handles are only used by the readiness probe.
func NewRouter(
	directory ports.DirectoryService,
	importer ports.Importer,
	db *mongo.Database,
	rdb *redis.Client,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("access_directory"))

	// --- Directory routes ---
	clientHandler := handler.NewClientHandler(directory)
	importHandler := handler.NewImportHandler(importer)

	e.POST("/v1/clients", clientHandler.Register)
	e.GET("/v1/clients", clientHandler.List)
	e.GET("/v1/clients/:username", clientHandler.Get)
	e.PUT("/v1/clients/:username", clientHandler.Edit)
	e.POST("/v1/clients/:username/reset-status", clientHandler.ResetStatus)
	e.POST("/v1/clients/:username/reset-password", clientHandler.ResetPassword)
	e.DELETE("/v1/clients/:username", clientHandler.Remove)
	e.POST("/v1/imports", importHandler.Import)

	// --- Health probes and metrics ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
