package app

import (
	"fellowship_backend/docs"
	"fellowship_backend/internal/config"
	"fellowship_backend/internal/middleware"
	"fellowship_backend/internal/model"
	"fellowship_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 列表类：可选认证，游客可浏览
		public.GET("/achievements", middleware.TryAuthMiddleware(cfg), c.achievement.ListCatalog)
		public.GET("/leaderboard", middleware.TryAuthMiddleware(cfg), c.leaderboard.GetLeaderboard)
		public.GET("/leaderboard/archive", middleware.TryAuthMiddleware(cfg), c.leaderboard.GetArchive)
		public.GET("/cohorts/:id", middleware.TryAuthMiddleware(cfg), c.cohort.GetOverview)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		// 积分
		authGroup.GET("/points/me", c.points.GetMyPoints)

		// 成就
		authGroup.GET("/achievements/me", c.achievement.GetMyAchievements)
		authGroup.POST("/achievements/recheck", c.achievement.Recheck)

		// 排行榜
		authGroup.GET("/leaderboard/me", c.leaderboard.GetMyRank)

		// 学习内容
		authGroup.GET("/resources", c.content.ListResources)
		authGroup.POST("/resources/:id/complete", c.content.CompleteResource)
		authGroup.POST("/quizzes/submit", c.content.SubmitQuiz)

		// 社区
		authGroup.POST("/discussions", c.community.PostDiscussion)
		authGroup.POST("/discussions/:id/comments", c.community.PostComment)
		authGroup.POST("/chat/messages", c.community.PostChat)

		// 通知
		authGroup.GET("/notifications", c.notification.List)
		authGroup.POST("/notifications/:id/read", c.notification.MarkRead)

		// 实时抢答赛
		quiz := authGroup.Group("/live-quizzes")
		{
			quiz.GET("", c.liveQuiz.ListSessions)
			quiz.GET("/:id", c.liveQuiz.GetSession)
			quiz.POST("/:id/join", c.liveQuiz.Join)
			quiz.POST("/:id/answers", c.liveQuiz.SubmitAnswer)
			quiz.GET("/:id/standings", c.liveQuiz.GetStandings)
			quiz.GET("/:id/ws", c.liveQuiz.ServeWs)
		}

		// 带教接口（管理员天然放行）
		staff := authGroup.Group("")
		staff.Use(middleware.RoleMiddleware(model.Facilitator))
		{
			staff.POST("/resources", c.content.CreateResource)
			staff.POST("/discussions/:id/rate", c.community.RateDiscussion)
			staff.POST("/live-quizzes", c.liveQuiz.CreateSession)
			staff.POST("/live-quizzes/:id/start", c.liveQuiz.Start)
			staff.POST("/live-quizzes/:id/advance", c.liveQuiz.Advance)
			staff.POST("/live-quizzes/:id/cancel", c.liveQuiz.Cancel)
		}
	}

	// 管理员接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/points/adjust", c.points.AdjustPoints)
		admin.POST("/achievements/icon", c.achievement.UploadIcon)
		admin.POST("/cohorts", c.cohort.CreateCohort)
		admin.POST("/cohorts/:id/members", c.cohort.AssignUser)
		admin.POST("/leaderboard/archive", c.leaderboard.TriggerArchive)
	}
}
