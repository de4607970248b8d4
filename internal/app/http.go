package app

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lfdantoni/dashboard-ai/internal/ai"
	authhandler "github.com/lfdantoni/dashboard-ai/internal/auth/handler"
	"github.com/lfdantoni/dashboard-ai/internal/auth/service"
	"github.com/lfdantoni/dashboard-ai/internal/auth/verifier"
	"github.com/lfdantoni/dashboard-ai/internal/config"
	"github.com/lfdantoni/dashboard-ai/internal/dashboard"
	"github.com/lfdantoni/dashboard-ai/internal/middleware"
	"github.com/lfdantoni/dashboard-ai/internal/user"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	userStore := user.NewPostgresStore(infra.DB)

	googleVerifier, err := verifier.NewGoogle(
		ctx,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	authService := service.New(googleVerifier, userStore)
	authHandler := authhandler.NewHandler(authService, googleVerifier, cfg.IsProduction())

	aiHandler := ai.NewHandler(ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel))
	dashboardHandler := dashboard.NewHandler(userStore)

	// Guards. RequireAuth must always run before RequireActions; the
	// ordering is fixed here, at registration time.
	authGuard := middleware.NewAuthGuard(googleVerifier, userStore)
	requireAuth := middleware.Gin(authGuard.RequireAuth)
	requireAI := middleware.Gin(middleware.RequireActions(user.ActionAI))

	throttle := middleware.NewThrottle(infra.Redis.Client)

	// ----------------------------
	// Router
	// ----------------------------

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// ----------------------------
	// Public Routes
	// ----------------------------

	router.GET("/", dashboard.Hello)
	router.GET("/api/health", dashboard.Health)

	authRoutes := router.Group("/auth")
	authRoutes.POST("/login",
		throttle.Limit("login", 5, cfg.ThrottleWindow),
		authHandler.Login,
	)
	authRoutes.POST("/logout",
		throttle.Limit("logout", 10, cfg.ThrottleWindow),
		authHandler.Logout,
	)
	authRoutes.GET("/verify",
		throttle.Limit("verify", 20, cfg.ThrottleWindow),
		requireAuth,
		authHandler.Verify,
	)

	if googleVerifier.SupportsCodeFlow() {
		authRoutes.GET("/google/login", authHandler.OAuthLogin)
		authRoutes.GET("/google/callback", authHandler.OAuthCallback)
	}

	// ----------------------------
	// Protected Routes
	// ----------------------------

	apiThrottle := throttle.Limit("api", cfg.ThrottleLimit, cfg.ThrottleWindow)

	aiRoutes := router.Group("/ai")
	aiRoutes.Use(apiThrottle, requireAuth, requireAI)
	aiRoutes.POST("/analyze", aiHandler.Analyze)

	dashboardRoutes := router.Group("/dashboard")
	dashboardRoutes.Use(apiThrottle, requireAuth)
	dashboardRoutes.GET("/info", dashboardHandler.Info)

	return router, infra.Close, nil
}
