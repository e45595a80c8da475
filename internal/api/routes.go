// routes.go - Route registration helpers
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Pipeline          Ingester
	Formats           []models.FormatTag
	ContentTypes      []string
	Summarizer        Summarizer
	Store             storage.RecordStore
	Logger            *slog.Logger
	AllowFileDeletion bool
	Version           string
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Upload UploadHandler
	Files  FileHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.Version, deps.Formats, deps.ContentTypes),
		Upload: NewUploadHandler(deps.Pipeline, deps.Summarizer, deps.Store, deps.Logger),
		Files:  NewFileHandler(deps.Store, deps.AllowFileDeletion),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/api/health", handlers.Health.HandleHealth)

	// Ingestion entry point
	e.POST("/upload-file/", handlers.Upload.HandleUploadFile)

	filesGroup := e.Group("/api/files")
	filesGroup.GET("/recent", handlers.Files.HandleGetRecentFiles)
	filesGroup.GET("/:id", handlers.Files.HandleGetFile)
	filesGroup.DELETE("/:id", handlers.Files.HandleDeleteFile)
}

// MiddlewareOptions configures SetupMiddleware
type MiddlewareOptions struct {
	Logger         *slog.Logger
	EnableCORS     bool
	AllowOrigins   []string
	BodyLimitBytes int64
	LogRequests    bool
	ShowErrDetails bool
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, opts MiddlewareOptions) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e.HTTPErrorHandler = NewErrorHandler(logger, opts.ShowErrDetails)
	e.Use(middleware.Recover())

	if opts.LogRequests {
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogStatus:   true,
			LogURI:      true,
			LogMethod:   true,
			LogLatency:  true,
			LogError:    true,
			HandleError: true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				attrs := []any{
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency", v.Latency,
				}
				if v.Error != nil {
					logger.Warn("request", append(attrs, "error", v.Error.Error())...)
				} else {
					logger.Info("request", attrs...)
				}
				return nil
			},
		}))
	}

	if opts.BodyLimitBytes > 0 {
		// Plain byte count so echo and the config agree on units.
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dB", opts.BodyLimitBytes)))
	}

	if opts.EnableCORS {
		origins := opts.AllowOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
