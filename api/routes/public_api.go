package routes

import (
	"creatorhub/api/handlers"
	"creatorhub/api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func PublicApi(router *gin.Engine) *gin.RouterGroup {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api/v1/")
	{
		public.POST("auth/register", handlers.Register)
		public.POST("auth/login", handlers.Login)
	}

	authorized := router.Group("/api/v1/")
	authorized.Use(middleware.AuthMiddleware())
	{
		authorized.POST("auth/logout", handlers.Logout)

		// Лента
		authorized.GET("feeds", handlers.ListFeeds)
		authorized.POST("feeds/:feed_id/save", handlers.SaveFeed)
		authorized.POST("feeds/:feed_id/unsave", handlers.UnsaveFeed)
		authorized.POST("feeds/:feed_id/report", handlers.ReportFeed)

		// Кредиты
		authorized.GET("credits", handlers.GetCredits)
		authorized.POST("credits/award", handlers.AwardCredits)

		// Пользователь
		authorized.GET("users/saved", handlers.SavedFeeds)
		authorized.POST("users/profile/completed", handlers.ProfileCompleted)
	}

	admin := router.Group("/api/v1/")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("feeds/reported", handlers.ReportedFeeds)
		admin.POST("credits/add", handlers.AddCredits)
	}

	return authorized
}
