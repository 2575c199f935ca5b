package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpHandlers "github.com/recipebox/core/internal/adapters/http"
	"github.com/recipebox/core/internal/adapters/repository"
	"github.com/recipebox/core/internal/application/services"
	"github.com/recipebox/core/internal/infrastructure/config"
	"github.com/recipebox/core/internal/infrastructure/logger"
	"github.com/recipebox/core/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo     *echo.Echo
	config   *config.Config
	logger   *logger.Logger
	registry *prometheus.Registry
}

// New creates a new server instance
func New(cfg *config.Config, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
	}

	var storeOpts []repository.FileStoreOption
	if cfg.Metrics.Enabled {
		server.registry = prometheus.NewRegistry()
		storeOpts = append(storeOpts, repository.WithMetrics(repository.NewMetrics(server.registry)))
	}
	if cfg.Store.Strict {
		storeOpts = append(storeOpts, repository.WithAtomicWrites())
	}

	// Initialize repositories
	store := repository.NewFileStore(cfg.Store.Path, storeOpts...)
	var recipeRepo ports.RecipeRepository
	if cfg.Store.Strict {
		recipeRepo = repository.NewSerializedRecipeRepository(store)
	} else {
		recipeRepo = repository.NewRecipeRepository(store)
	}

	ids, err := repository.NewIDGenerator(cfg.Store.IDStrategy)
	if err != nil {
		return nil, err
	}

	// Initialize services
	recipeService := services.NewRecipeService(recipeRepo, ids, appLogger.WithComponent("recipes"))

	// Initialize handlers
	recipeHandler := httpHandlers.NewRecipeHandler(recipeService, appLogger)
	staticHandler := httpHandlers.NewStaticHandler(cfg.Static.Dir, cfg.Static.Index, cfg.Static.Stylesheet, appLogger)

	// Setup middleware
	if err := server.setupMiddleware(); err != nil {
		return nil, err
	}

	// Setup metrics
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	// Setup routes
	server.setupRoutes(recipeHandler, staticHandler)

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() error {
	// Recovery middleware
	s.echo.Pre(middleware.Recover())

	// Request ID middleware
	s.echo.Pre(middleware.RequestID())

	// Logger middleware
	s.echo.Pre(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			reqLogger := s.logger.WithRequestID(values.RequestID)
			if values.Error != nil {
				reqLogger = reqLogger.WithError(values.Error)
			}

			reqLogger.LogHTTPRequest(
				values.Method,
				values.URI,
				values.UserAgent,
				values.RemoteIP,
				values.Status,
				float64(values.Latency.Nanoseconds())/1000000,
			)

			return nil
		},
	}))

	// CORS runs before routing so preflight requests to any path are answered
	s.echo.Pre(corsMiddleware(s.config.Security.CORSOrigin()))

	if s.config.Server.BodyLimit != "" {
		s.echo.Use(middleware.BodyLimit(s.config.Server.BodyLimit))
	}

	// Rate limiting middleware
	if s.config.Security.RateLimitEnabled {
		window := s.config.Security.RateLimitWindow
		if window <= 0 {
			return errors.New("rate limit window must be positive")
		}
		limit := rate.Limit(float64(s.config.Security.RateLimitRequests) / window.Seconds())

		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{Rate: limit, Burst: s.config.Security.RateLimitRequests, ExpiresIn: window},
			),
			IdentifierExtractor: func(ctx echo.Context) (string, error) {
				return ctx.RealIP(), nil
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return echo.NewHTTPError(http.StatusForbidden, "rate limit exceeded")
			},
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			},
		}))
	}

	return nil
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(recipeHandler *httpHandlers.RecipeHandler, staticHandler *httpHandlers.StaticHandler) {
	// Static assets
	s.echo.GET(indexPath, staticHandler.Index)
	s.echo.GET(stylesheetPath, staticHandler.Stylesheet)

	// Recipe routes. The id is the segment after /recipes, possibly empty;
	// anything deeper is ignored.
	s.echo.GET("/recipes", recipeHandler.ListRecipes)
	s.echo.POST("/recipes", recipeHandler.CreateRecipe)
	s.echo.PUT("/recipes/", recipeHandler.UpdateRecipe)
	s.echo.PUT("/recipes/:id", recipeHandler.UpdateRecipe)
	s.echo.PUT("/recipes/:id/*", recipeHandler.UpdateRecipe)
	s.echo.DELETE("/recipes/", recipeHandler.DeleteRecipe)
	s.echo.DELETE("/recipes/:id", recipeHandler.DeleteRecipe)
	s.echo.DELETE("/recipes/:id/*", recipeHandler.DeleteRecipe)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	s.registry.MustRegister(requestsTotal, requestDuration)

	// Custom metrics middleware
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			}

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	// Metrics endpoint
	metricsHandler := promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
	s.echo.GET(s.config.Metrics.Path, echo.WrapHandler(metricsHandler))
}

// ServeHTTP makes Server an http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler renders every error as {"error": message}
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  = http.StatusText(http.StatusInternalServerError)
		)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}

			// Unknown paths and unsupported methods on known paths look the same
			if he == echo.ErrNotFound || he == echo.ErrMethodNotAllowed {
				code = http.StatusNotFound
				msg = httpHandlers.MsgEndpointNotFound
			}
		}

		reqLogger := logger.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID))
		if code >= http.StatusInternalServerError {
			reqLogger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		// Send response
		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, httpHandlers.ErrorResponse{Error: msg})
			}
			if err != nil {
				reqLogger.Errorw("Error sending response", "error", err)
			}
		}
	}
}
