// Package app wires the shared HTTP routes for the coaching API.
package app

import (
	"time"

	"github.com/marvinrgb/argue-well-api/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the HTTP router: public health/auth/webhook routes plus
// a bearer-token-protected group for arguments, coach and billing.
func NewRouter() (*gin.Engine, error) {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	verifier, err := auth.NewVerifierFromEnv()
	if err != nil && !auth.AuthDisabled() {
		return nil, err
	}
	tokens = verifier

	router.GET("/health", Health)
	router.POST("/api/auth/register", Register)
	router.POST("/api/auth/login", Login)
	router.POST("/api/stripe/webhook", StripeWebhook)

	protected := router.Group("/")
	protected.Use(auth.Middleware(verifier, auth.MiddlewareConfig{}))
	protected.GET("/api/me", Me)
	protected.POST("/api/arguments", CreateArgument)
	protected.GET("/api/arguments", ListArguments)
	protected.GET("/api/arguments/:id", GetArgument)
	protected.PUT("/api/arguments/:id", UpdateArgument)
	protected.POST("/api/coach/analyze/:argumentId", AnalyzeArgument)
	protected.POST("/api/coach/devils-advocate/:argumentId", DevilsAdvocate)
	protected.POST("/api/billing/create-checkout-session", CreateCheckoutSession)
	protected.POST("/api/billing/portal-session", CreatePortalSession)
	protected.POST("/api/billing/update-plan", UpdateUserPlan)

	return router, nil
}
