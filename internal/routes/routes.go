package routes

import (
	"net/http"

	"microschool-crm/internal/handlers"
	"microschool-crm/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires the public endpoints and the authenticated API onto the
// engine.
func SetupRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/login", handlers.LoginHandler)
	r.POST("/logout", handlers.LogoutHandler)

	// Payment processor callback; authenticated by payload dedup, not session.
	r.POST("/webhooks/payment-processor", handlers.ProcessorWebhookHandler)

	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware())
	RegisterAPIRoutes(protected)
}
