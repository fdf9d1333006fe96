package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"greenledger/backend/config"
	"greenledger/backend/controllers"
	"greenledger/backend/middlewares"
)

func Register(r *gin.Engine, cfg config.Config, env controllers.Env) {
	r.HandleMethodNotAllowed = true
	r.NoMethod(controllers.MethodNotAllowed())

	r.GET("/health", controllers.Health())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/waitlist", controllers.JoinWaitlist(env))
		api.POST("/cloud-connection", controllers.CreateCloudConnection(env))

		if cfg.AdminEnabled() {
			api.POST("/admin/login", controllers.AdminLogin(env))

			admin := api.Group("/admin")
			admin.Use(middlewares.Auth(cfg.JWTSecret))
			admin.GET("waitlist", controllers.ListWaitlist(env))
			admin.GET("connections", controllers.ListConnections(env))
		}
	}
}
