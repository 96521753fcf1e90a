package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/aggiereview/aggiereview/internal/app/controllers"
	"github.com/aggiereview/aggiereview/internal/middleware"
)

// Controllers groups the handlers mounted under /api/v1
type Controllers struct {
	Auth    *controllers.AuthController
	Catalog *controllers.CatalogController
	Review  *controllers.ReviewController
}

// SetupRouter configures all application routes. writeLimiter guards the
// endpoints that send email or write reviews; nil disables it.
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	writeLimiter *middleware.RateLimiter,
) {
	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if writeLimiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{writeLimiter.Middleware(), h}
	}

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public catalog routes ---
	v1.GET("/departments", ctrl.Catalog.GetAllDepartments)

	professors := v1.Group("/professors")
	{
		professors.GET("", ctrl.Catalog.SearchProfessors)
		professors.GET("/:id", ctrl.Catalog.GetProfessor)
		professors.GET("/:id/reviews", ctrl.Catalog.GetProfessorReviews)
		professors.GET("/:id/courses", ctrl.Catalog.GetProfessorCourses)
	}

	courses := v1.Group("/courses")
	{
		courses.GET("", ctrl.Catalog.SearchCourses)
		courses.GET("/profile", ctrl.Catalog.GetCourseProfile)
	}

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/sign-up", limited(ctrl.Auth.SignUp)...)
		auth.POST("/sign-in", limited(ctrl.Auth.SignIn)...)
		auth.POST("/verify", limited(ctrl.Auth.VerifyCode)...)
		auth.POST("/resend-code", limited(ctrl.Auth.ResendCode)...)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/session", ctrl.Auth.Session)
		authenticated.POST("/auth/sign-out", ctrl.Auth.SignOut)

		authenticated.POST("/reviews", limited(ctrl.Review.SubmitReview)...)
		authenticated.DELETE("/reviews/:id", ctrl.Review.DeleteReview)

		authenticated.GET("/me/reviews", ctrl.Review.MyReviews)
		authenticated.GET("/me/account", ctrl.Review.MyAccount)
	}
}
