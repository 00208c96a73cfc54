package controllers

import (
	"sleep-tips/authentication"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes adds the API to the router
func RegisterRoutes(router gin.IRouter) {
	auth := authentication.TokenAuthMiddleware()

	// categories
	router.GET("/categories", ListCategories)
	router.POST("/categories", auth, AddCategory)
	router.PUT("/categories/:id", auth, UpdateCategory)
	router.DELETE("/categories/:id", auth, DeleteCategory)

	// tips
	router.GET("/tips", ListTips)
	router.GET("/tips/search", SearchTips)
	router.GET("/tips/:id", GetTip)
	router.POST("/tips", auth, AddTip)
	router.PUT("/tips/:id", auth, UpdateTip)
	router.DELETE("/tips/:id", auth, DeleteTip)
	router.POST("/tips/:id/publish", auth, PublishTip)
	router.DELETE("/tips/:id/publish", auth, UnpublishTip)
	router.GET("/tips/:id/views", GetViews)

	// ratings & rankings
	router.POST("/tips/:id/rating", auth, RateTip)
	router.DELETE("/tips/:id/rating", auth, RemoveRating)
	router.GET("/user/ratings", auth, GetUserRatings)
	router.GET("/rankings", ListRankings)

	// comments
	router.GET("/tips/:id/comments", ListComments)
	router.POST("/tips/:id/comments", auth, AddComment)
	router.PUT("/comments/:id", auth, UpdateComment)
	router.DELETE("/comments/:id", auth, DeleteComment)

	// monitoring of the view registry
	router.GET("/monitor/clients", auth, CountRequests)
	router.GET("/monitor/clients/dump", auth, DumpRequests)
	router.POST("/monitor/clients/flush", auth, FlushRequests)
}
