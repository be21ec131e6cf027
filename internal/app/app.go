package app

import (
	"net/http"

	"devplan/internal/config"
	"devplan/internal/middleware"
	"devplan/internal/modules/auth"
	"devplan/internal/modules/plan"
	"devplan/internal/modules/user"
	"devplan/internal/pkg/apperr"
	"devplan/internal/pkg/jwt"
	"devplan/internal/pkg/metrics"
	"devplan/internal/pkg/password"
	"devplan/internal/pkg/ratelimit"
	"devplan/internal/pkg/response"
	"devplan/internal/policy"
	"devplan/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the wired services and the HTTP router. It is built once per
// process and shared by every request.
type App struct {
	Router  *gin.Engine
	Auth    *auth.Service
	Users   *user.Service
	Plans   *plan.Service
	JWT     *jwt.Service
	Metrics *metrics.Metrics
}

// Deps are the process-level resources App is built from. Redis is optional.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	Redis    *redis.Client
	Registry *prometheus.Registry
}

func New(d Deps) *App {
	cfg := d.Config
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// Repositories
	userRepo := repository.NewUserRepository(d.DB)
	tokenRepo := repository.NewRefreshTokenRepository(d.DB)
	planRepo := repository.NewPlanRepository(d.DB)

	// Shared services
	jwtService := jwt.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	hasher := password.NewBcryptHasher(cfg.BcryptCost)
	m := metrics.New("devplan", reg)
	authz := policy.NewAuthorizer(planRepo, userRepo)
	authn := middleware.NewAuthenticator(jwtService)

	authService := auth.NewService(
		userRepo,
		tokenRepo,
		jwtService,
		hasher,
		cfg.RefreshTokenPepper,
		cfg.RefreshTTL,
		auth.WithEventRecorder(m),
		auth.WithLogger(log.Named("auth")),
	)
	userService := user.NewService(userRepo, authz, hasher, log.Named("user"))
	planService := plan.NewService(planRepo, authz, log.Named("plan"))

	loginLimiter := ratelimit.New(d.Redis, cfg.LoginRateLimit, cfg.LoginRateWindow, "login", log)
	refreshLimiter := ratelimit.New(d.Redis, cfg.LoginRateLimit*6, cfg.LoginRateWindow, "refresh", log)

	authHandler := auth.NewHandler(authService, loginLimiter, log)
	userHandler := user.NewHandler(userService, log)
	planHandler := plan.NewHandler(planService, log)

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(log),
		middleware.RequestLogger(log),
		middleware.Metrics(m),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.GET("/health-check", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	// Public routes
	authHandler.RegisterPublicRoutes(r, middleware.RateLimit(refreshLimiter, middleware.ClientIPKey))
	userHandler.RegisterRoutes(r, middleware.OptionalJWTAuth(authn), middleware.JWTAuth(authn))

	// Protected routes
	protected := r.Group("")
	protected.Use(middleware.JWTAuth(authn))
	{
		authHandler.RegisterProtectedRoutes(protected)
		planHandler.RegisterRoutes(protected)
	}

	r.NoRoute(func(c *gin.Context) {
		response.FromError(c, apperr.NotFound("route not found"), log)
	})

	return &App{
		Router:  r,
		Auth:    authService,
		Users:   userService,
		Plans:   planService,
		JWT:     jwtService,
		Metrics: m,
	}
}
