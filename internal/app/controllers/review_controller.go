package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aggiereview/aggiereview/internal/app/models/dto"
	"github.com/aggiereview/aggiereview/internal/app/services"
	"github.com/aggiereview/aggiereview/internal/middleware"
)

// ReviewController handles review writes and the signed-in user's pages
type ReviewController struct {
	reviews  *services.ReviewService
	accounts *services.AccountService
}

// NewReviewController creates a new ReviewController
func NewReviewController(svcs *services.Services) *ReviewController {
	return &ReviewController{
		reviews:  svcs.Review,
		accounts: svcs.Account,
	}
}

// SubmitReview creates a review
// @Summary Submit review
// @Description Stores a review and recomputes the professor's rating statistics
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitReviewRequest true "Review"
// @Success 201 {object} dto.APIResponse{data=models.Review} "Review submitted"
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid fields"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Professor not found"
// @Failure 409 {object} dto.ErrorResponse "Already reviewed this professor for this course"
// @Router /reviews [post]
func (c *ReviewController) SubmitReview(ctx *gin.Context) {
	var req dto.SubmitReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	review, err := c.reviews.Submit(ctx.Request.Context(), middleware.UserID(ctx), services.NewReview{
		ProfessorID:         req.ProfessorID,
		CourseID:            req.CourseID,
		Rating:              req.Rating,
		Difficulty:          req.Difficulty,
		WouldTakeAgain:      req.WouldTakeAgain,
		ForCredit:           req.ForCredit,
		AttendanceMandatory: req.AttendanceMandatory,
		GradeReceived:       req.GradeReceived,
		Comment:             req.Comment,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(review, "Review submitted"))
}

// DeleteReview removes one of the user's reviews
// @Summary Delete review
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} dto.APIResponse "Review deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Failure 404 {object} dto.ErrorResponse "Review not found"
// @Router /reviews/{id} [delete]
func (c *ReviewController) DeleteReview(ctx *gin.Context) {
	if err := c.reviews.Delete(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Review deleted"))
}

// MyReviews lists the signed-in user's reviews
// @Summary My reviews
// @Tags account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ReviewListResponse} "Reviews"
// @Router /me/reviews [get]
func (c *ReviewController) MyReviews(ctx *gin.Context) {
	reviews, err := c.reviews.ListByUser(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewListResponse(reviews), ""))
}

// MyAccount returns the account page
// @Summary My account
// @Tags account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AccountResponse} "Account"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /me/account [get]
func (c *ReviewController) MyAccount(ctx *gin.Context) {
	account, err := c.accounts.Get(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.AccountResponse{
		Profile:     dto.NewProfileResponse(account.Profile),
		ReviewCount: account.ReviewCount,
	}, ""))
}
