package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/focusflow/core/docs"
	httpHandlers "github.com/focusflow/core/internal/adapters/http"
	"github.com/focusflow/core/internal/adapters/repository"
	"github.com/focusflow/core/internal/application/services"
	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/infrastructure/cache"
	"github.com/focusflow/core/internal/infrastructure/config"
	"github.com/focusflow/core/internal/infrastructure/database"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/realtime"
)

// Server represents the HTTP server
type Server struct {
	echo       *echo.Echo
	config     *config.Config
	logger     *logger.Logger
	db         *database.DB
	redis      *cache.Redis
	dispatcher *services.Dispatcher
	hub        *realtime.Hub
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance
func New(cfg *config.Config, db *database.DB, redis *cache.Redis, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	// Repositories
	userRepo := repository.NewUserRepository(db.DB)
	authRepo := repository.NewAuthRepository(db.DB)
	taskRepo := repository.NewTaskRepository(db.DB)
	boardRepo := repository.NewBoardRepository(db.DB)
	routineRepo := repository.NewRoutineRepository(db.DB)
	notifRepo := repository.NewNotificationRepository(db.DB)
	collabRepo := repository.NewCollaborationRepository(db.DB)
	moodRepo := repository.NewMoodRepository(db.DB)

	// Services
	authService := services.NewAuthService(userRepo, authRepo, cfg.JWT, appLogger)
	userService := services.NewUserService(userRepo, appLogger)
	taskService := services.NewTaskService(taskRepo, redis, appLogger)
	boardService := services.NewBoardService(boardRepo, collabRepo, db, appLogger)
	routineService := services.NewRoutineService(routineRepo, boardRepo, appLogger)
	notifService := services.NewNotificationService(notifRepo, appLogger)
	collabService := services.NewCollaborationService(collabRepo, boardRepo, userRepo, notifRepo, db, appLogger)
	moodService := services.NewMoodService(moodRepo, appLogger)

	dispatcher := services.NewDispatcher(notifRepo, userRepo, redis, cfg.Notifications, appLogger)
	hub := realtime.NewHub(redis, cfg.Notifications.Channel, appLogger)

	// Handlers
	authHandler := httpHandlers.NewAuthHandler(authService, appLogger)
	userHandler := httpHandlers.NewUserHandler(userService, appLogger)
	taskHandler := httpHandlers.NewTaskHandler(taskService, appLogger)
	boardHandler := httpHandlers.NewBoardHandler(boardService, appLogger)
	routineHandler := httpHandlers.NewRoutineHandler(routineService, appLogger)
	notifHandler := httpHandlers.NewNotificationHandler(notifService, hub, appLogger)
	collabHandler := httpHandlers.NewCollaborationHandler(collabService, appLogger)
	moodHandler := httpHandlers.NewMoodHandler(moodService, appLogger)

	server := &Server{
		echo:       e,
		config:     cfg,
		logger:     appLogger,
		db:         db,
		redis:      redis,
		dispatcher: dispatcher,
		hub:        hub,
	}

	server.setupMiddleware()
	server.setupRoutes(
		authHandler, userHandler, taskHandler, boardHandler,
		routineHandler, notifHandler, collabHandler, moodHandler,
		authService,
	)

	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
	}))

	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(s.config.Security.RateLimitRequests), Burst: s.config.Security.RateLimitRequests, ExpiresIn: s.config.Security.RateLimitWindow},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}))

	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
	}))

	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
		// The websocket stream must outlive the request timeout.
		Skipper: func(c echo.Context) bool {
			return strings.HasSuffix(c.Path(), "/stream")
		},
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(
	authHandler *httpHandlers.AuthHandler,
	userHandler *httpHandlers.UserHandler,
	taskHandler *httpHandlers.TaskHandler,
	boardHandler *httpHandlers.BoardHandler,
	routineHandler *httpHandlers.RoutineHandler,
	notifHandler *httpHandlers.NotificationHandler,
	collabHandler *httpHandlers.CollaborationHandler,
	moodHandler *httpHandlers.MoodHandler,
	authService *services.AuthService,
) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Auth routes (public)
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.RefreshToken)
	authGroup.POST("/logout", authHandler.Logout, s.authMiddleware(authService))

	// User routes (authenticated)
	userGroup := v1.Group("/users", s.authMiddleware(authService))
	userGroup.GET("/me", userHandler.GetCurrentUser)
	userGroup.PUT("/me", userHandler.UpdateCurrentUser)
	userGroup.DELETE("/me", userHandler.DeactivateCurrentUser)
	userGroup.GET("/me/settings", userHandler.GetSettings)
	userGroup.PUT("/me/settings", userHandler.UpdateSettings)

	// Task routes (authenticated)
	taskGroup := v1.Group("/tasks", s.authMiddleware(authService))
	taskGroup.GET("", taskHandler.ListTasks)
	taskGroup.POST("", taskHandler.CreateTask)
	taskGroup.GET("/matrix", taskHandler.GetMatrix)
	taskGroup.GET("/due-soon", taskHandler.GetDueSoon)
	taskGroup.GET("/:id", taskHandler.GetTask)
	taskGroup.PUT("/:id", taskHandler.UpdateTask)
	taskGroup.DELETE("/:id", taskHandler.DeleteTask)
	taskGroup.POST("/:id/complete", taskHandler.CompleteTask)
	taskGroup.POST("/:id/move", taskHandler.MoveTask)

	// Board routes (authenticated)
	boardGroup := v1.Group("/boards", s.authMiddleware(authService))
	boardGroup.GET("", boardHandler.ListBoards)
	boardGroup.POST("", boardHandler.CreateBoard)
	boardGroup.GET("/shared", boardHandler.ListSharedBoards)
	boardGroup.GET("/:id", boardHandler.GetBoard)
	boardGroup.PUT("/:id", boardHandler.UpdateBoard)
	boardGroup.DELETE("/:id", boardHandler.DeleteBoard)
	boardGroup.POST("/:id/duplicate", boardHandler.DuplicateBoard)
	boardGroup.POST("/:id/steps", boardHandler.AddStep)
	boardGroup.PUT("/:id/steps/reorder", boardHandler.ReorderSteps)
	boardGroup.PUT("/:id/steps/:stepId", boardHandler.UpdateStep)
	boardGroup.DELETE("/:id/steps/:stepId", boardHandler.DeleteStep)
	boardGroup.POST("/:id/executions", boardHandler.StartExecution)
	boardGroup.GET("/:id/executions", boardHandler.ListExecutions)

	// Board sharing routes
	boardGroup.POST("/:id/share", collabHandler.ShareBoard)
	boardGroup.GET("/:id/invitations", collabHandler.ListBoardInvitations)
	boardGroup.GET("/:id/collaborators", collabHandler.ListCollaborators)
	boardGroup.PUT("/:id/collaborators/:userId", collabHandler.ChangeCollaboratorRole)
	boardGroup.DELETE("/:id/collaborators/:userId", collabHandler.RemoveCollaborator)
	boardGroup.GET("/:id/audit", collabHandler.GetAuditLog)

	// Execution routes (authenticated)
	execGroup := v1.Group("/executions", s.authMiddleware(authService))
	execGroup.GET("/:execId", boardHandler.GetExecution)
	execGroup.POST("/:execId/complete-step", boardHandler.CompleteStep)
	execGroup.POST("/:execId/skip-step", boardHandler.SkipStep)
	execGroup.POST("/:execId/pause", boardHandler.PauseExecution)
	execGroup.POST("/:execId/resume", boardHandler.ResumeExecution)
	execGroup.POST("/:execId/abandon", boardHandler.AbandonExecution)

	// Invitation routes (authenticated)
	invGroup := v1.Group("/invitations", s.authMiddleware(authService))
	invGroup.GET("", collabHandler.ListMyInvitations)
	invGroup.POST("/:id/accept", collabHandler.AcceptInvitation)
	invGroup.POST("/:id/decline", collabHandler.DeclineInvitation)

	// Routine routes (authenticated)
	routineGroup := v1.Group("/routines", s.authMiddleware(authService))
	routineGroup.GET("", routineHandler.ListRoutines)
	routineGroup.POST("", routineHandler.CreateRoutine)
	routineGroup.GET("/:id", routineHandler.GetRoutine)
	routineGroup.PUT("/:id", routineHandler.UpdateRoutine)
	routineGroup.DELETE("/:id", routineHandler.DeleteRoutine)
	routineGroup.POST("/:id/steps", routineHandler.AddStep)
	routineGroup.PUT("/:id/steps/:stepId", routineHandler.UpdateStep)
	routineGroup.DELETE("/:id/steps/:stepId", routineHandler.DeleteStep)
	routineGroup.POST("/:id/anchors/:anchorId", routineHandler.ApplyAnchor)
	routineGroup.GET("/:id/stats/:boardId", routineHandler.GetStats)

	// Anchor routes (authenticated)
	anchorGroup := v1.Group("/anchors", s.authMiddleware(authService))
	anchorGroup.GET("", routineHandler.ListAnchors)
	anchorGroup.POST("", routineHandler.CreateAnchor)
	anchorGroup.DELETE("/:id", routineHandler.DeleteAnchor)

	// Notification routes (authenticated)
	notifGroup := v1.Group("/notifications", s.authMiddleware(authService))
	notifGroup.GET("", notifHandler.ListNotifications)
	notifGroup.POST("", notifHandler.CreateNotification)
	notifGroup.GET("/stream", notifHandler.Stream)
	notifGroup.GET("/preferences", notifHandler.GetPreferences)
	notifGroup.PUT("/preferences", notifHandler.UpdatePreferences)
	notifGroup.POST("/read-all", notifHandler.MarkAllRead)
	notifGroup.POST("/:id/read", notifHandler.MarkRead)
	notifGroup.POST("/:id/dismiss", notifHandler.Dismiss)

	// Admin maintenance routes
	adminGroup := v1.Group("/admin", s.authMiddleware(authService), s.requireRole(entities.UserRoleAdmin))
	adminGroup.POST("/maintenance/purge-tokens", authHandler.PurgeExpiredTokens)

	// Mood routes (authenticated)
	moodGroup := v1.Group("/mood", s.authMiddleware(authService))
	moodGroup.GET("", moodHandler.ListEntries)
	moodGroup.POST("", moodHandler.RecordEntry)
	moodGroup.GET("/summary", moodHandler.GetSummary)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

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

	realtimeClients := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "realtime_connected_clients",
			Help: "Number of open realtime websocket connections",
		},
		func() float64 { return float64(s.hub.ClientCount()) },
	)

	registry.MustRegister(requestsTotal, requestDuration, realtimeClients)

	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

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

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	if err := s.db.HealthCheck(); err != nil {
		status = "error"
		checks["database"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "ok",
			"stats":  s.db.GetConnectionInfo(),
		}
	}

	if err := s.redis.Ping(c.Request().Context()); err != nil {
		status = "error"
		checks["redis"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["redis"] = map[string]interface{}{
			"status": "ok",
			"info":   s.redis.GetConnectionInfo(),
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
			"go":  "1.21",
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.db.Ping(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "database_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server along with the dispatcher and realtime hub
func (s *Server) Start(address string) error {
	ctx := context.Background()
	s.dispatcher.Start(ctx)
	s.hub.Start(ctx)

	s.logger.Info("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server and background workers
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	s.dispatcher.Stop()
	s.hub.Stop()

	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = he.Message
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else if e, ok := err.(validator.ValidationErrors); ok {
			code = http.StatusBadRequest
			msg = map[string]string{"message": "validation failed", "details": e.Error()}
		} else {
			msg = map[string]string{"message": http.StatusText(code)}
		}

		if code == http.StatusInternalServerError {
			logger.Error("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Error("Error sending response", "error", err)
			}
		}
	}
}
