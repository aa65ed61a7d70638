package router

import (
	"otodoki/internal/middleware"
	"otodoki/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.GET("/email-verification/:code", handler.VerifyEmail)
	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)
	users.POST("/refresh", handler.RefreshToken)

	users.POST("/logout", handler.Logout, authRequired)
	users.GET("/:id", handler.GetUserByID, authRequired, middleware.SelfOrAdmin())
}

func SetupSuggestionsRoutes(api *echo.Group, handler *rest.SuggestionsHandler, optionalAuth echo.MiddlewareFunc, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	suggestions := api.Group("/tracks/suggestions")
	suggestions.GET("", handler.GetSuggestions, optionalAuth)
	suggestions.GET("/stats", handler.GetQueueStats)

	queue := api.Group("/queue")
	queue.GET("/stats", handler.GetQueueStats)
	queue.GET("/health", handler.GetQueueHealth)

	worker := api.Group("/worker", authRequired, adminOnly)
	worker.GET("/stats", handler.GetWorkerStats)
	worker.POST("/trigger-refill", handler.TriggerRefill)
}

func SetupTrackRoutes(api *echo.Group, handler *rest.TrackHandler) {
	api.GET("/tracks/:id", handler.GetTrack)
}

func SetupHistoryRoutes(api *echo.Group, handler *rest.HistoryHandler, authRequired echo.MiddlewareFunc) {
	history := api.Group("/history", authRequired)

	history.POST("", handler.RecordPlay)
	history.GET("", handler.ListHistory)
}
