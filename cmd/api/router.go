package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yamdb-backend/internal/access"
	"yamdb-backend/internal/shared/middleware"
	"yamdb-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Identity(c.JWTManager, c.UserService))
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupCategoryRoutes(v1, c)
		setupGenreRoutes(v1, c)
		setupTitleRoutes(v1, c)
		setupReviewRoutes(v1, c)
		setupCommentRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/signup", c.AuthHandler.Signup)
		auth.POST("/token", c.AuthHandler.Token)
	}
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/users")

	self := middleware.Authorize(c.Evaluator, access.FamilySelf)
	users.GET("/me", self, c.UserHandler.Me)
	users.PATCH("/me", self, c.UserHandler.UpdateMe)

	accounts := middleware.Authorize(c.Evaluator, access.FamilyAccount)
	users.GET("", accounts, c.UserHandler.List)
	users.POST("", accounts, c.UserHandler.Create)
	users.GET("/:username", accounts, c.UserHandler.Get)
	users.PATCH("/:username", accounts, c.UserHandler.Update)
	users.DELETE("/:username", accounts, c.UserHandler.Delete)
}

// ========================================
// CATEGORY + GENRE ROUTES
// ========================================
func setupCategoryRoutes(v1 *gin.RouterGroup, c *container.Container) {
	categories := v1.Group("/categories")
	categories.Use(middleware.Authorize(c.Evaluator, access.FamilyCategory))
	{
		categories.GET("", c.CategoryHandler.List)
		categories.POST("", c.CategoryHandler.Create)
		categories.DELETE("/:slug", c.CategoryHandler.Delete)
	}
}

func setupGenreRoutes(v1 *gin.RouterGroup, c *container.Container) {
	genres := v1.Group("/genres")
	genres.Use(middleware.Authorize(c.Evaluator, access.FamilyGenre))
	{
		genres.GET("", c.GenreHandler.List)
		genres.POST("", c.GenreHandler.Create)
		genres.DELETE("/:slug", c.GenreHandler.Delete)
	}
}

// ========================================
// TITLE ROUTES
// ========================================
func setupTitleRoutes(v1 *gin.RouterGroup, c *container.Container) {
	titles := v1.Group("/titles")
	titles.Use(middleware.Authorize(c.Evaluator, access.FamilyTitle))
	{
		titles.GET("", c.TitleHandler.List)
		titles.POST("", c.TitleHandler.Create)
		titles.GET("/:title_id", c.TitleHandler.Get)
		titles.PATCH("/:title_id", c.TitleHandler.Update)
		titles.DELETE("/:title_id", c.TitleHandler.Delete)
	}
}

// ========================================
// REVIEW + COMMENT ROUTES
// ========================================
// Edits depend on who wrote the row, so these services authorize after loading it.
func setupReviewRoutes(v1 *gin.RouterGroup, c *container.Container) {
	reviews := v1.Group("/titles/:title_id/reviews")
	{
		reviews.GET("", c.ReviewHandler.List)
		reviews.POST("", c.ReviewHandler.Create)
		reviews.GET("/:review_id", c.ReviewHandler.Get)
		reviews.PATCH("/:review_id", c.ReviewHandler.Update)
		reviews.DELETE("/:review_id", c.ReviewHandler.Delete)
	}
}

func setupCommentRoutes(v1 *gin.RouterGroup, c *container.Container) {
	comments := v1.Group("/titles/:title_id/reviews/:review_id/comments")
	{
		comments.GET("", c.CommentHandler.List)
		comments.POST("", c.CommentHandler.Create)
		comments.GET("/:comment_id", c.CommentHandler.Get)
		comments.PATCH("/:comment_id", c.CommentHandler.Update)
		comments.DELETE("/:comment_id", c.CommentHandler.Delete)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
		defer cancel()

		status := gin.H{"database": "ok", "redis": "ok"}
		code := http.StatusOK

		if err := c.DB.HealthCheck(checkCtx); err != nil {
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if err := c.Redis.Ping(checkCtx); err != nil {
			// Redis is optional; report it without failing the probe.
			status["redis"] = err.Error()
		}

		ctx.JSON(code, status)
	}
}
