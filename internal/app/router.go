package app

import (
	"assessment_backend/docs"
	"assessment_backend/internal/config"
	"assessment_backend/internal/middleware"
	"assessment_backend/internal/model"
	"assessment_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 学员作答与学习进度
	learner := router.Group("/api")
	learner.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.RoleMiddleware(model.Learner))
	{
		learner.POST("/sections/:id/sessions", c.session.StartSession)
		learner.GET("/sections/:id/questions", c.session.GetQuestions)

		learner.GET("/sessions/:id", c.session.GetSession)
		learner.PUT("/sessions/:id/responses/:questionId", c.session.SaveAnswer)
		learner.POST("/sessions/:id/submit", c.session.Submit)
		learner.GET("/sessions/:id/review", c.session.Review)

		learner.GET("/courses/:id/progress", c.progress.GetCourseProgress)
		learner.POST("/topics/:id/video-done", c.progress.MarkVideoDone)
		learner.POST("/topics/:id/drill-done", c.progress.MarkDrillDone)
	}
}
