package handlers

import (
	"log/slog"
	"sync"

	"github.com/SscSPs/trustbridge_backend/cmd/docs"
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
	"github.com/SscSPs/trustbridge_backend/internal/middleware"
	"github.com/SscSPs/trustbridge_backend/internal/platform/config"
	"github.com/SscSPs/trustbridge_backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouteDeps carries the optional infrastructure the routes use. Nil fields
// switch the dependent feature off.
type RouteDeps struct {
	Chat    ChatTransport
	Redis   *redis.Client
	Posthog *utils.PosthogClientWrapper
}

var registerValidatorsOnce sync.Once

// registerValidators lets binding tags run against decimal.Decimal fields.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			slog.Warn("Binding validator is not go-playground/validator, decimal rules are not enforced")
			return
		}
		dto.RegisterDecimalType(v)
	})
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	deps RouteDeps,
) {
	registerValidators()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Register public authentication routes
	registerAuthRoutes(r, cfg, services, deps.Posthog)

	setupAPIV1Routes(r, cfg, services, deps)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the authenticated /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	deps RouteDeps,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))
	if deps.Posthog.IsInitialized() {
		v1.Use(middleware.PosthogMiddleware(deps.Posthog))
	}

	var idempotent []gin.HandlerFunc
	if deps.Redis != nil {
		idempotent = append(idempotent, middleware.IdempotencyMiddleware(deps.Redis, cfg.IdempotencyTTL))
	} else {
		slog.Warn("Idempotency store not configured, Idempotency-Key headers are not enforced")
	}

	registerUserRoutes(v1, services.User)
	registerValuationRoutes(v1)
	registerDealRoutes(v1, services.Deal, deps.Posthog)
	registerPaymentRoutes(v1, services.Payment, deps.Posthog, idempotent...)
	registerCollaborationRoutes(v1, services.Collaboration, deps.Posthog)
	registerChatRoutes(v1, services.Chat, deps.Chat)

	admin := v1.Group("/admin", middleware.RequireRole(domain.RoleAdmin))
	registerAdminRoutes(admin, services, idempotent...)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// withMiddleware returns a fresh handler chain so route registrations never
// share a backing array.
func withMiddleware(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(mw)+1)
	chain = append(chain, mw...)
	return append(chain, h)
}
