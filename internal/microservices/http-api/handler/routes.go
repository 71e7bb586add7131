package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers bundles everything mounted under /api/v1.
type Handlers struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Category *CategoryHandler
	Genre    *GenreHandler
	Title    *TitleHandler
	Review   *ReviewHandler
	Comment  *CommentHandler
	Health   *HealthHandler
}

// Mount registers the API on r. authenticate resolves the caller for every
// /api/v1 route; authLimit guards signup and token exchange.
func (h Handlers) Mount(r *gin.Engine, authenticate, authLimit gin.HandlerFunc) {
	if h.Health != nil {
		r.GET("/health", h.Health.Check)
	}

	v1 := r.Group("/api/v1", authenticate)

	h.Auth.RegisterRoutes(v1.Group("/auth"), authLimit)
	h.Users.RegisterRoutes(v1.Group("/users"))
	h.Category.RegisterRoutes(v1.Group("/categories"))
	h.Genre.RegisterRoutes(v1.Group("/genres"))

	titles := v1.Group("/titles")
	h.Title.RegisterRoutes(titles)

	reviews := titles.Group("/:title_id/reviews")
	h.Review.RegisterRoutes(reviews)
	h.Comment.RegisterRoutes(reviews.Group("/:review_id/comments"))
}
