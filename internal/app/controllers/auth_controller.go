package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/aggiereview/aggiereview/internal/app/models/dto"
	"github.com/aggiereview/aggiereview/internal/app/services"
	"github.com/aggiereview/aggiereview/internal/middleware"
)

// AuthController handles sign-up, verification and sessions
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

func newSessionResponse(result *services.SessionResult) dto.SessionResponse {
	return dto.SessionResponse{
		Token: dto.TokenResponse{
			AccessToken: result.Session.AccessToken,
			TokenType:   "Bearer",
			ExpiresIn:   result.Session.ExpiresIn,
			ExpiresAt:   result.Session.ExpiresAt,
		},
		Profile: dto.NewProfileResponse(result.Profile),
	}
}

// SignUp registers a student account
// @Summary Sign up
// @Description Creates an account for an NC A&T student email and sends a six digit verification code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignUpRequest true "Account information"
// @Success 201 {object} dto.APIResponse{data=dto.SignUpResponse} "Verification code sent"
// @Failure 400 {object} dto.ErrorResponse "Invalid email, password or name"
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/sign-up [post]
func (c *AuthController) SignUp(ctx *gin.Context) {
	var req dto.SignUpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	profile, err := c.authService.SignUp(ctx.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.SignUpResponse{
		Profile: dto.NewProfileResponse(profile),
		Message: "Check your email for a verification code",
	}, "Account created"))
}

// SignIn starts a session
// @Summary Sign in
// @Description Authenticates a verified account and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignInRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Signed in"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Invalid email or password"
// @Failure 403 {object} dto.ErrorResponse "Email not verified"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/sign-in [post]
func (c *AuthController) SignIn(ctx *gin.Context) {
	var req dto.SignInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	result, err := c.authService.SignIn(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(newSessionResponse(result), "Signed in"))
}

// VerifyCode confirms the email address
// @Summary Verify email code
// @Description Redeems the emailed one-time code, marks the email verified and returns a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyCodeRequest true "Email and code"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Email verified"
// @Failure 400 {object} dto.ErrorResponse "Invalid or expired verification code"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/verify [post]
func (c *AuthController) VerifyCode(ctx *gin.Context) {
	var req dto.VerifyCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	result, err := c.authService.VerifyCode(ctx.Request.Context(), req.Email, req.Code)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(newSessionResponse(result), "Email verified"))
}

// ResendCode sends a new verification code
// @Summary Resend verification code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResendCodeRequest true "Email"
// @Success 200 {object} dto.APIResponse "Verification code sent"
// @Failure 400 {object} dto.ErrorResponse "Email already verified"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /auth/resend-code [post]
func (c *AuthController) ResendCode(ctx *gin.Context) {
	var req dto.ResendCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	if err := c.authService.ResendCode(ctx.Request.Context(), req.Email); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Verification code sent"))
}

// Session returns the signed-in profile
// @Summary Current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse} "Current profile"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /auth/session [get]
func (c *AuthController) Session(ctx *gin.Context) {
	profile, err := c.authService.CurrentSession(ctx.Request.Context(), middleware.AccessToken(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewProfileResponse(profile), ""))
}

// SignOut revokes the current token
// @Summary Sign out
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse "Signed out"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /auth/sign-out [post]
func (c *AuthController) SignOut(ctx *gin.Context) {
	if err := c.authService.SignOut(ctx.Request.Context(), middleware.AccessToken(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Debug().Str("userID", middleware.UserID(ctx)).Msg("User signed out")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Signed out"))
}
