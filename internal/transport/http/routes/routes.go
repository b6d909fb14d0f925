package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
	appLogger "github.com/arklim/social-platform-accounts/internal/infra/logger"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/transport/http/handlers"
	"github.com/arklim/social-platform-accounts/internal/transport/http/middleware"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Accounts  *usecase.AccountService
	TwoFactor *usecase.TwoFactorService
	Blacklist *usecase.BlacklistService
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	Services    ServiceSet
	Accounts    port.AccountRepository
	Tokens      *security.TokenIssuer
	RateLimiter *middleware.RateLimiter
	IPDenylist  middleware.IPDenylist
	Metrics     *middleware.HTTPMetrics
	Database    DatabaseChecker
	Cache       CacheChecker
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}
	r.Use(middleware.CORS([]string{"*"}))
	if deps.IPDenylist != nil {
		r.Use(middleware.IPGate(deps.IPDenylist, deps.Logger))
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(deps.Tokens, deps.Accounts,
		middleware.NotBlocked(),
		middleware.NotInTwoFactorLogin(),
	)
	requireChallenge := middleware.RequireChallenge(deps.Tokens, deps.Accounts)

	api := r.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(deps.Services.Accounts, deps.Tokens)
		twoFactorHandler := handlers.NewTwoFactorHandler(deps.Services.TwoFactor, deps.Services.Accounts, deps.Tokens)
		verificationHandler := handlers.NewVerificationHandler(deps.Services.Accounts)
		passwordHandler := handlers.NewPasswordHandler(deps.Services.Accounts, deps.Tokens)
		blacklistHandler := handlers.NewBlacklistHandler(deps.Services.Blacklist)

		auth := api.Group("/auth")
		{
			auth.POST("/signup", limit(deps, "signup", deps.Config.RateLimit.SignUpMaxAttempts), authHandler.SignUp)
			auth.POST("/signin", limit(deps, "signin", deps.Config.RateLimit.SignInMaxAttempts), authHandler.SignIn)
			auth.POST("/signout", requireAuth, authHandler.SignOut)
			auth.POST("/refresh", authHandler.Refresh)

			twoFactor := auth.Group("/2fa")
			{
				twoFactor.POST("/verify", requireChallenge, twoFactorHandler.Verify)
				twoFactor.POST("/resend", requireChallenge, twoFactorHandler.Resend)
				twoFactor.POST("/toggle", requireAuth, twoFactorHandler.Toggle)
			}

			verify := auth.Group("/verify")
			{
				verify.POST("/:info", requireAuth, verificationHandler.Verify)
				verify.POST("/:info/resend", requireAuth, verificationHandler.Resend)
			}

			password := auth.Group("/password")
			{
				password.POST("/recover", limit(deps, "recover", deps.Config.RateLimit.RecoverMaxAttempts), passwordHandler.Recover)
				password.POST("/reset", passwordHandler.Reset)
				password.POST("/change", requireAuth, passwordHandler.Change)
			}
		}

		probe := probeReporter(deps)
		requireAdmin := middleware.RequireAuth(deps.Tokens, deps.Accounts,
			middleware.NotBlocked(),
			middleware.NotInTwoFactorLogin(),
			middleware.RoleAtLeastWithProbe(domain.RoleAdmin, probe),
		)
		requireSuperAdmin := middleware.RequireAuth(deps.Tokens, deps.Accounts,
			middleware.NotBlocked(),
			middleware.NotInTwoFactorLogin(),
			middleware.RoleAtLeastWithProbe(domain.RoleSuperAdmin, probe),
		)

		admin := api.Group("/admin/blacklist")
		{
			admin.POST("/users/:id", requireAdmin, blacklistHandler.BlacklistUser)
			admin.GET("/users/:id", requireAdmin, blacklistHandler.GetEntry)
			admin.POST("/ips", requireSuperAdmin, blacklistHandler.BlacklistIP)
			admin.DELETE("/ips/:ip", requireSuperAdmin, blacklistHandler.WhitelistIP)
		}
	}

	return r
}

// limit builds a per-IP sliding-window rule; a nil limiter disables it.
func limit(deps Dependencies, name string, maxAttempts int) gin.HandlerFunc {
	if deps.RateLimiter == nil || maxAttempts <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return deps.RateLimiter.RateLimit(middleware.RateLimitRule{
		Name:       name,
		Limit:      maxAttempts,
		Window:     deps.Config.RateLimit.WindowDuration,
		Identifier: middleware.ClientIPIdentifier(),
	})
}

// probeReporter denies the source address of accounts probing privileged
// routes they do not hold the role for.
func probeReporter(deps Dependencies) func(ctx context.Context, ip string) {
	if deps.Services.Blacklist == nil {
		return nil
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, ip string) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := deps.Services.Blacklist.BlacklistIP(ctx, ip); err != nil {
			log.Error("blacklist probing ip",
				zap.String("ip", appLogger.MaskIP(ip)),
				zap.Error(err),
			)
		}
	}
}
