package http

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/you/smart-dobi/internal/service"
)

// NewRouter mounts the public API under /api, mirroring the paths the
// deployed kiosk, dashboard and controllers already use.
func NewRouter(
	machines *MachineHandler,
	dashboard *DashboardHandler,
	auth *AuthHandler,
	authSvc *service.AuthService,
	corsOrigins string,
) *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware(corsOrigins))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "Smart Dobi API"})
		})

		api.GET("/machines", machines.List)
		api.GET("/machines/:id", machines.Get)
		api.POST("/machines/:id/start", machines.Start)
		api.POST("/machines/:id/verify-payment", machines.VerifyPayment)
		api.PUT("/machines/:id/status", machines.UpdateStatus)
		api.POST("/machines/:id/reminder", machines.Reminder)

		api.POST("/auth/session", auth.CreateSession)
		api.POST("/auth/logout", auth.Logout)

		secured := api.Group("")
		secured.Use(SessionAuth(authSvc))
		{
			secured.PATCH("/machines/:id/admin-status", machines.AdminStatus)
			secured.GET("/transactions", dashboard.Transactions)
			secured.GET("/dashboard/stats", dashboard.Stats)
			secured.GET("/auth/me", auth.Me)
		}
	}

	return r
}

func corsMiddleware(origins string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowCredentials = true
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Session-ID"}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	if origins == "*" {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = strings.Split(origins, ",")
	}
	return cors.New(cfg)
}
