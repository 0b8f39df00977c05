package app

import (
	"coursehub_backend/docs"
	"coursehub_backend/internal/config"
	"coursehub_backend/internal/middleware"
	"coursehub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c, cfg)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		// 学员接口
		a.registerLearnerRoutes(authGroup, c)

		// 教师接口
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/categories", c.course.ListCategories)
		public.GET("/courses", middleware.OptionalAuthMiddleware(cfg.JWT.Secret), c.course.Catalogue)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	courses := rg.Group("/courses/:courseId")
	{
		courses.GET("/outline", c.course.GetOutline)
		courses.POST("/enroll", c.course.Enroll)
		courses.POST("/checkout", c.course.Checkout)

		courses.PUT("/modules/:moduleId/progress", c.progress.UpdateProgress)

		// 测评
		courses.GET("/modules/:moduleId/evaluations/:evaluationId", c.evaluation.GetEvaluation)
		courses.POST("/modules/:moduleId/evaluations/:evaluationId/results", c.evaluation.SubmitAttempt)
		courses.GET("/modules/:moduleId/evaluations/:evaluationId/results", c.evaluation.GetResults)
	}

	rg.GET("/dashboard/courses", c.course.DashboardCourses)
	rg.POST("/progress/batch", c.progress.BatchProgress)

	// 活动动态
	rg.GET("/events", c.event.ListEvents)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.TeacherMiddleware(a.teachers))
	{
		teacher.GET("/analytics", c.teacherCourse.GetAnalytics)

		// 活动
		teacher.POST("/events", c.event.CreateEvent)
		teacher.DELETE("/events/:eventId", c.event.DeleteEvent)

		// 课程管理
		teacher.POST("/courses", c.teacherCourse.CreateCourse)
		teacher.GET("/courses", c.teacherCourse.ListCourses)
		teacher.GET("/courses/:courseId", c.teacherCourse.GetCourse)
		teacher.PATCH("/courses/:courseId", c.teacherCourse.UpdateCourse)
		teacher.DELETE("/courses/:courseId", c.teacherCourse.DeleteCourse)
		teacher.PATCH("/courses/:courseId/publish", c.teacherCourse.PublishCourse)
		teacher.PATCH("/courses/:courseId/unpublish", c.teacherCourse.UnpublishCourse)
		teacher.POST("/courses/:courseId/image", c.teacherCourse.UploadImage)

		// 附件
		teacher.POST("/courses/:courseId/attachments", c.teacherCourse.AddAttachment)
		teacher.POST("/courses/:courseId/attachments/upload", c.teacherCourse.UploadAttachment)
		teacher.DELETE("/courses/:courseId/attachments/:attachmentId", c.teacherCourse.DeleteAttachment)

		// 模块管理
		modules := teacher.Group("/courses/:courseId/modules")
		{
			modules.POST("", c.teacherModule.CreateModule)
			modules.PUT("/reorder", c.teacherModule.ReorderModules)
			modules.GET("/:moduleId", c.teacherModule.GetModule)
			modules.PATCH("/:moduleId", c.teacherModule.UpdateModule)
			modules.DELETE("/:moduleId", c.teacherModule.DeleteModule)
			modules.PATCH("/:moduleId/publish", c.teacherModule.PublishModule)
			modules.PATCH("/:moduleId/unpublish", c.teacherModule.UnpublishModule)
			modules.POST("/:moduleId/video", c.teacherModule.UploadVideo)
		}

		// 测评管理
		evaluations := modules.Group("/:moduleId/evaluations")
		{
			evaluations.POST("", c.teacherEvaluation.CreateEvaluation)
			evaluations.GET("/:evaluationId", c.teacherEvaluation.GetEvaluation)
			evaluations.DELETE("/:evaluationId", c.teacherEvaluation.DeleteEvaluation)
			evaluations.PATCH("/:evaluationId/type", c.teacherEvaluation.ChangeType)
			evaluations.PATCH("/:evaluationId/max-attempts", c.teacherEvaluation.UpdateMaxAttempts)
			evaluations.PATCH("/:evaluationId/publish", c.teacherEvaluation.Publish)
			evaluations.PATCH("/:evaluationId/unpublish", c.teacherEvaluation.Unpublish)
			evaluations.POST("/:evaluationId/questions", c.teacherEvaluation.AddQuestion)
			evaluations.DELETE("/:evaluationId/questions/:questionId", c.teacherEvaluation.DeleteQuestion)
		}
	}
}
