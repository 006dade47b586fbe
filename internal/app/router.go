package app

import (
	"lsr_trainer_backend/docs"
	"lsr_trainer_backend/internal/config"
	"lsr_trainer_backend/internal/middleware"
	"lsr_trainer_backend/internal/model"
	"lsr_trainer_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	// 学员端
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/auth/profile", c.auth.Profile)

		authGroup.GET("/modules", c.catalog.ListModules)
		authGroup.GET("/modules/:module", c.catalog.GetModule)
		authGroup.GET("/modules/:module/exercises", c.catalog.ModuleExercises)

		sessions := authGroup.Group("/sessions/:module")
		{
			sessions.POST("", c.session.Start)
			sessions.GET("", c.session.Get)
			sessions.DELETE("", c.session.Abandon)
			sessions.POST("/select", c.session.SelectOption)
			sessions.POST("/playback-finished", c.session.PlaybackFinished)
			sessions.POST("/recording/begin", c.session.BeginRecording)
			sessions.POST("/recording/failed", c.session.FailRecording)
			sessions.POST("/recording/finish", c.session.FinishRecording)
			sessions.POST("/submit", c.session.Submit)
			sessions.POST("/advance", c.session.Advance)
		}

		authGroup.GET("/progress", c.progress.Overview)
		authGroup.GET("/progress/:module", c.progress.Module)
	}

	// 管理端：题库维护
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.auth.ListUsers)
		admin.GET("/catalog/modules/:module/exercises", c.catalog.ListExercises)
		admin.PUT("/catalog/modules/:module", c.catalog.UpdateModule)
		admin.POST("/catalog/exercises", c.catalog.CreateExercise)
		admin.PUT("/catalog/exercises/:id", c.catalog.UpdateExercise)
		admin.DELETE("/catalog/exercises/:id", c.catalog.DeleteExercise)
	}
}
