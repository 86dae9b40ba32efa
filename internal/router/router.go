package router

import (
	"launchpad/internal/handlers"
	"launchpad/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	launchHandler := handlers.NewLaunchHandler()
	projectHandler := handlers.NewProjectHandler()
	voteHandler := handlers.NewVoteHandler()
	winnersHandler := handlers.NewWinnersHandler()
	adminHandler := handlers.NewAdminHandler()

	api := r.Group("/api")

	// 公共路由 (Public Routes)
	api.GET("/launch/availability", launchHandler.GetAvailability)            // 某天剩余名额
	api.GET("/launch/availability/range", launchHandler.GetAvailabilityRange) // 日期范围名额
	api.GET("/projects/:slug", projectHandler.Detail)                         // 项目详情
	api.GET("/winners", winnersHandler.List)                                  // 某天获奖项目
	api.GET("/winners/check", winnersHandler.Check)                           // 某天是否有获奖项目

	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)

	// 支付回调（共享密钥鉴权，见 handler）
	api.POST("/payment/confirm", launchHandler.ConfirmPayment)
	api.POST("/payment/failed", launchHandler.FailPayment)

	// 登录用户路由 (Protected Routes)
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/projects", projectHandler.Create)
		authorized.PUT("/project/:id", projectHandler.Update)
		authorized.GET("/project/:id/status", projectHandler.Status)
		authorized.POST("/project/:id/upvote", voteHandler.Toggle)
		authorized.GET("/dashboard", projectHandler.Dashboard)
		authorized.POST("/launch/schedule", launchHandler.Schedule)
	}

	// 管理员路由 (Admin Routes)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/availability/free", adminHandler.FreeAvailability)
		admin.GET("/categories", adminHandler.ListCategories)
		admin.POST("/categories", adminHandler.AddCategory)
		admin.DELETE("/categories/:id", adminHandler.DeleteCategory)
		admin.POST("/lifecycle/ongoing", launchHandler.SweepOngoing)
		admin.POST("/lifecycle/launched", launchHandler.SweepLaunched)
	}
}
