package router

import (
	"pickMyBook/internal/middleware"
	"pickMyBook/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)

	users.POST("/logout", handler.Logout, authRequired)
	users.GET("/:id", handler.GetUserByID, authRequired, middleware.SelfOrAdmin())
}

func SetupShelfRoutes(api *echo.Group, handler *rest.ShelfHandler, authRequired echo.MiddlewareFunc) {
	shelf := api.Group("/shelf", authRequired)

	shelf.GET("", handler.GetShelf)
	shelf.GET("/:id", handler.GetBookByID)
	shelf.POST("", handler.AddBook)
	shelf.PUT("/:id", handler.UpdateBook)
	shelf.PATCH("/:id/read", handler.MarkRead)
	shelf.DELETE("/:id", handler.RemoveBook)
}

func SetupRecommendRoutes(api *echo.Group, handler *rest.RecommendHandler, authRequired echo.MiddlewareFunc) {
	reco := api.Group("/recommendations", authRequired)

	reco.GET("", handler.Recommend)
	reco.GET("/debug", handler.DebugRecommend)
	reco.GET("/stats", handler.Stats)
	reco.POST("/feedback", handler.Feedback)
}

func SetupPolicyAdminRoutes(api *echo.Group, handler *rest.PolicyAdminHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin/policy", authRequired, adminOnly)

	admin.GET("", handler.GetPolicy)
	admin.PUT("", handler.TunePolicy)
}
