package handlers

import (
	"fmt"

	"github.com/SscSPs/academy_sponsorship/cmd/docs"
	"github.com/SscSPs/academy_sponsorship/internal/adapters/draft"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/SscSPs/academy_sponsorship/internal/middleware"
	"github.com/SscSPs/academy_sponsorship/internal/platform/config"
	"github.com/SscSPs/academy_sponsorship/internal/utils"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// posthogClient may be nil.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	posthogClient *utils.PosthogClientWrapper,
) error {
	r.GET("/", getHome)
	r.GET("/health", getHealth)

	drafts := DraftCookieConfig{
		Codec:  draft.NewCodec(cfg.DraftSecret, cfg.DraftRetention),
		Name:   cfg.DraftCookieName,
		Secure: cfg.IsProduction,
	}

	// Public identity redirect contract
	registerGoogleOAuthRoutes(r, NewGoogleOAuthHandler(services.Identity, cfg, drafts))

	if err := setupAPIV1Routes(r, cfg, services, drafts, posthogClient); err != nil {
		return err
	}

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group. Each sub-group carries the auth it needs: the
// donation flow accepts anonymous callers, donor reads need a token, operator routes need an
// admin token, and the webhook is authenticated by its signature.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	drafts DraftCookieConfig,
	posthogClient *utils.PosthogClientWrapper,
) error {
	checkoutLimiter, err := middleware.NewLimiter(cfg.CheckoutRateLimit)
	if err != nil {
		return fmt.Errorf("failed to configure checkout rate limit: %w", err)
	}

	v1 := r.Group("/api/v1")

	flow := v1.Group("",
		middleware.OptionalAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionCookieName),
		middleware.FunnelTracking(posthogClient),
	)
	registerDonationFlowRoutes(flow, services.DonationFlow, drafts, middleware.RateLimit(checkoutLimiter))

	registerPaymentWebhookRoutes(v1, services.Webhooks, services.Ledger)
	registerRecipientRoutes(v1, services.Ledger)

	donor := v1.Group("", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionCookieName))
	registerDonorRoutes(donor, services.Ledger, cfg.AdminSubjects)

	admin := v1.Group("/admin",
		middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionCookieName),
		middleware.AdminOnly(cfg.AdminSubjects),
	)
	registerReconciliationRoutes(admin, services.Reconciliation)

	return nil
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
