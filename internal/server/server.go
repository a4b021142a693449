package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ozclean/submission-gateway/internal/config"
	"github.com/ozclean/submission-gateway/internal/handler"
	"github.com/ozclean/submission-gateway/internal/healthcheck"
	"github.com/ozclean/submission-gateway/internal/middleware"
	"github.com/ozclean/submission-gateway/internal/models"
	"github.com/ozclean/submission-gateway/internal/notify"
	"github.com/ozclean/submission-gateway/internal/ratelimit"
	"github.com/ozclean/submission-gateway/internal/repository"
	"github.com/ozclean/submission-gateway/internal/security"
	"github.com/ozclean/submission-gateway/internal/service"
	"github.com/ozclean/submission-gateway/internal/storage"
)

// Which rate-limit rule each submission type consumes. All quote
// variants share the "quote" budget.
var submissionActions = map[string]string{
	models.TypeResidentialQuote: "quote",
	models.TypeCommercialQuote:  "quote",
	models.TypeAirbnbQuote:      "quote",
	models.TypeJobApplication:   "job-application",
	models.TypeFeedback:         "feedback",
}

type Server struct {
	router     *gin.Engine
	config     *config.Config
	redis      *storage.RedisClient
	postgres   *storage.Postgres
	checker    *healthcheck.Checker
	httpServer *http.Server
}

func New(cfg *config.Config, redis *storage.RedisClient, postgres *storage.Postgres) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Repositories
	submissionRepo := repository.NewSubmissionRepository(postgres)
	eventRepo := repository.NewSecurityEventRepository(postgres)
	requestLogRepo := repository.NewRequestLogRepository(postgres)
	authRepo := repository.NewAuthRepository(postgres)
	apiKeyRepo := repository.NewAPIKeyRepository(postgres)

	// Collaborator clients
	team := notify.NewTelegramNotifier(cfg.Integrations.Telegram)
	webhook := notify.NewWebhookForwarder(cfg.Integrations.Webhook)
	email := notify.NewEmailClient(cfg.Integrations.Email)
	calendar := notify.NewCalendarClient(cfg.Integrations.Calendar)
	billing := notify.NewBillingClient(cfg.Integrations.Billing)

	// Services
	submissionService := service.NewSubmissionService(submissionRepo, team, webhook, email, calendar, billing)
	authService := service.NewAuthService(authRepo, cfg.Auth.JWTSecret, cfg.Auth.ExpiryHours)
	apiKeyService := service.NewAPIKeyService(apiKeyRepo, redis)
	analyticsService := service.NewAnalyticsService(requestLogRepo, eventRepo, submissionRepo)

	// Rate limiter over the shared Redis store, with the security gate
	// on top
	rules := make(map[string]ratelimit.Rule, len(cfg.RateLimits))
	for action, rule := range cfg.RateLimits {
		rules[action] = ratelimit.Rule{MaxRequests: rule.MaxRequests, Window: rule.Window()}
	}
	var store ratelimit.Store
	if redis != nil {
		store = ratelimit.NewRedisStore(redis)
	} else {
		store = ratelimit.NewMemoryStore()
	}
	limiter := ratelimit.NewFixedWindow(store, rules, rules["default"])
	gate := security.NewGate(
		limiter,
		cfg.Security.AllowedOrigins,
		cfg.Security.BotBlockDuration(),
		cfg.Security.SuspiciousBlockDuration(),
		eventRepo,
	)

	// Handlers
	submissionHandler := handler.NewSubmissionHandler(submissionService)
	adminHandler := handler.NewAdminHandler(submissionService, submissionRepo, eventRepo)
	authHandler := handler.NewAuthHandler(authService)
	apiKeyHandler := handler.NewAPIKeyHandler(apiKeyService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)

	middleware.InitRequestLogger(requestLogRepo, 1000)

	checker := healthcheck.NewChecker(healthcheck.Config{
		Endpoints: integrationEndpoints(cfg),
	})

	s := &Server{
		router:   router,
		config:   cfg,
		redis:    redis,
		postgres: postgres,
		checker:  checker,
	}

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.Security.AllowedOrigins))

	router.GET("/health", s.healthCheck)
	router.POST("/auth/login", authHandler.Login)

	submit := router.Group("/submit")
	for submissionType, action := range submissionActions {
		submit.POST("/"+submissionType, middleware.SecurityGate(gate, action), withType(submissionType, submissionHandler.Submit))
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AdminAuth(authService, apiKeyService))
	{
		admin.GET("/submissions", adminHandler.ListSubmissions)
		admin.GET("/submissions/:id", adminHandler.GetSubmission)
		admin.POST("/submissions/:id/approve", adminHandler.Approve)
		admin.POST("/submissions/:id/complete", adminHandler.Complete)
		admin.POST("/submissions/:id/request-review", adminHandler.RequestReview)
		admin.GET("/security-events", adminHandler.ListSecurityEvents)
		admin.GET("/analytics/summary", analyticsHandler.Summary)
		admin.POST("/analytics/cleanup", analyticsHandler.Cleanup)
		admin.POST("/keys", apiKeyHandler.Create)
		admin.GET("/keys", apiKeyHandler.List)
		admin.DELETE("/keys/:id", apiKeyHandler.Delete)
		admin.POST("/users", authHandler.Register)
	}

	return s
}

// The submit routes are registered per type rather than with a :type
// param so each route carries its own rate-limit action; the handler
// still reads the type from the path.
func withType(submissionType string, fn gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Params = append(c.Params, gin.Param{Key: "type", Value: submissionType})
		fn(c)
	}
}

func integrationEndpoints(cfg *config.Config) map[string]string {
	endpoints := make(map[string]string)
	if cfg.Integrations.Webhook.URL != "" {
		endpoints["webhook"] = cfg.Integrations.Webhook.URL
	}
	if cfg.Integrations.Email.BaseURL != "" {
		endpoints["email"] = cfg.Integrations.Email.BaseURL
	}
	if cfg.Integrations.Calendar.BaseURL != "" {
		endpoints["calendar"] = cfg.Integrations.Calendar.BaseURL
	}
	if cfg.Integrations.Billing.BaseURL != "" {
		endpoints["billing"] = cfg.Integrations.Billing.BaseURL
	}
	return endpoints
}

func (s *Server) healthCheck(c *gin.Context) {
	redisHealthy := true
	if s.redis != nil {
		if err := s.redis.Ping(c.Request.Context()); err != nil {
			redisHealthy = false
			log.Printf("Redis health check failed: %v", err)
		}
	}

	dbHealthy := true
	if err := s.postgres.Ping(c.Request.Context()); err != nil {
		dbHealthy = false
		log.Printf("Database health check failed: %v", err)
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !redisHealthy || !dbHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"service":   "submission-gateway",
		"timestamp": time.Now().Unix(),
		"checks": gin.H{
			"redis":        redisHealthy,
			"database":     dbHealthy,
			"integrations": s.checker.Statuses(),
		},
	})
}

func (s *Server) Run(addr string) error {
	s.checker.Start()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	log.Printf("Starting submission gateway on %s", addr)
	log.Printf("Environment: %s", s.config.Server.Environment)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.checker.Stop()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
