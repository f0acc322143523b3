package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"authgate/internal/config"
	"authgate/internal/cookies"
	"authgate/internal/limiter"
	"authgate/internal/middleware"
	"authgate/internal/repository"
	"authgate/internal/security"
	"authgate/internal/service"
)

type HandlerSet struct {
	log       zerolog.Logger
	cfg       *config.AppConfig
	auth      *service.AuthService
	users     *service.UserService
	transport cookies.Transport
	db        *pgxpool.Pool
	cache     *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, cfg *config.AppConfig) (HandlerSet, error) {
	minter, err := security.NewTokenMinter(
		cfg.Security.JWTSecret,
		cfg.Security.JWTAlgorithm,
		cfg.Security.AccessTokenTTL,
	)
	if err != nil {
		return HandlerSet{}, err
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	attempts := limiter.New(cache, cfg.Security.LoginMaxAttempts, cfg.Security.LoginWindow)

	auth := service.NewAuthService(userRepo, sessionRepo, minter, attempts, cfg.Security.RefreshTokenTTL, log)
	users := service.NewUserService(userRepo, sessionRepo, log)

	return HandlerSet{
		log:       log,
		cfg:       cfg,
		auth:      auth,
		users:     users,
		transport: cookies.NewTransport(cfg.Cookie),
		db:        db,
		cache:     cache,
	}, nil
}

func (h HandlerSet) Mount(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)

		protected := v1.Group("/auth")
		protected.Use(middleware.Auth(h.auth))
		protected.GET("/me", h.Me)

		users := v1.Group("/users")
		users.GET("", h.ListUsers)
		users.GET("/:username", h.GetUser)

		admin := v1.Group("/admin")
		admin.Use(
			middleware.Auth(h.auth),
			middleware.RequireSuperuser(),
		)
		admin.PATCH("/users/:id/status", h.SetUserStatus)
	}
}
