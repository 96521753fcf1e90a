package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aggiereview/aggiereview/internal/app/controllers"
	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/app/models/dto"
	"github.com/aggiereview/aggiereview/internal/app/repositories"
	"github.com/aggiereview/aggiereview/internal/app/routes"
	"github.com/aggiereview/aggiereview/internal/app/services"
	"github.com/aggiereview/aggiereview/internal/middleware"
	"github.com/aggiereview/aggiereview/internal/pkg/auth"
	"github.com/aggiereview/aggiereview/internal/pkg/cache"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

type list[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type codeMailer struct {
	codes map[string]string
}

func (m *codeMailer) SendVerificationCode(toEmail, _, code string, _ time.Duration) error {
	m.codes[toEmail] = code
	return nil
}

type server struct {
	router    *gin.Engine
	repos     *repositories.Repositories
	mailer    *codeMailer
	course    models.Course
	professor models.Professor
}

func newServer(t *testing.T) *server {
	t.Helper()
	ctx := context.Background()

	repos := repositories.NewRepositories(repositories.NewMemoryStore())
	mailer := &codeMailer{codes: map[string]string{}}
	svcs := services.NewServices(repos, services.Options{
		JWT: auth.NewJWTService(auth.JWTConfig{
			SecretKey:      "controller-test-secret",
			AccessTokenExp: time.Hour,
			TokenIssuer:    "aggiereview-test",
		}),
		Mailer:    mailer,
		Cache:     cache.NewMemory(),
		Auth:      services.AuthConfig{PasswordCost: bcrypt.MinCost},
		SearchTTL: time.Minute,
		Logger:    zerolog.Nop(),
	})

	dept := models.Department{Name: "Computer Science", Code: "COMP"}
	require.NoError(t, repos.DepartmentRepository.Create(ctx, &dept))
	course := models.Course{Code: "COMP 285", Name: "Data Structures", DepartmentID: dept.ID}
	require.NoError(t, repos.CourseRepository.Create(ctx, &course))
	professors, err := repos.ProfessorRepository.CreateBatch(ctx, []models.Professor{
		{Name: "Dr. Kelvin Bryant", DepartmentID: &dept.ID},
	})
	require.NoError(t, err)

	router := gin.New()
	routes.SetupRouter(router, routes.Controllers{
		Auth:    controllers.NewAuthController(svcs.Auth, zerolog.Nop()),
		Catalog: controllers.NewCatalogController(svcs),
		Review:  controllers.NewReviewController(svcs),
	}, middleware.NewAuthMiddleware(svcs.Auth), nil)

	return &server{router: router, repos: repos, mailer: mailer, course: course, professor: professors[0]}
}

func (s *server) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// signIn creates and verifies an account and returns its access token
func (s *server) signIn(t *testing.T, email string) string {
	t.Helper()
	status, _ := s.do(t, http.MethodPost, "/api/v1/auth/sign-up", "", dto.SignUpRequest{
		Email: email, Password: "aggiepride", FullName: "Jordan Doe",
	})
	require.Equal(t, http.StatusCreated, status)

	status, env := s.do(t, http.MethodPost, "/api/v1/auth/verify", "", dto.VerifyCodeRequest{
		Email: email, Code: s.mailer.codes[email],
	})
	require.Equal(t, http.StatusOK, status)
	return decodeData[dto.SessionResponse](t, env).Token.AccessToken
}

func (s *server) review(rating int) dto.SubmitReviewRequest {
	return dto.SubmitReviewRequest{
		ProfessorID:    s.professor.ID,
		CourseID:       s.course.ID,
		Rating:         rating,
		Difficulty:     3,
		WouldTakeAgain: true,
		Comment:        "Clear lectures and fair exams all semester.",
	}
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/auth/sign-up", "", dto.SignUpRequest{
		Email: "jdoe@gmail.com", Password: "aggiepride", FullName: "Jordan Doe",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "You must use a valid NC A&T email (@aggies.ncat.edu)", env.Error.Message)

	status, env = s.do(t, http.MethodPost, "/api/v1/auth/sign-up", "", dto.SignUpRequest{
		Email: "jdoe@aggies.ncat.edu", Password: "aggiepride", FullName: "Jordan Doe",
	})
	require.Equal(t, http.StatusCreated, status)
	signUp := decodeData[dto.SignUpResponse](t, env)
	assert.False(t, signUp.Profile.EmailVerified)

	status, env = s.do(t, http.MethodPost, "/api/v1/auth/sign-in", "", dto.SignInRequest{
		Email: "jdoe@aggies.ncat.edu", Password: "aggiepride",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, dto.ErrorCodeEmailNotVerified, env.Error.Code)

	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/verify", "", dto.VerifyCodeRequest{
		Email: "jdoe@aggies.ncat.edu", Code: s.mailer.codes["jdoe@aggies.ncat.edu"],
	})
	require.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodPost, "/api/v1/auth/sign-in", "", dto.SignInRequest{
		Email: "jdoe@aggies.ncat.edu", Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = s.do(t, http.MethodPost, "/api/v1/auth/sign-in", "", dto.SignInRequest{
		Email: "JDoe@aggies.ncat.edu", Password: "aggiepride",
	})
	require.Equal(t, http.StatusOK, status)
	session := decodeData[dto.SessionResponse](t, env)
	assert.Equal(t, "Bearer", session.Token.TokenType)
	token := session.Token.AccessToken

	status, env = s.do(t, http.MethodGet, "/api/v1/auth/session", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "jdoe@aggies.ncat.edu", decodeData[dto.ProfileResponse](t, env).Email)

	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/sign-out", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodGet, "/api/v1/auth/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, dto.ErrorCodeRevokedToken, env.Error.Code)
}

func TestReviewRequiresSession(t *testing.T) {
	s := newServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/reviews", "", s.review(4))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, dto.ErrorCodeUnauthorized, env.Error.Code)
}

func TestSubmitReviewUnknownCourse(t *testing.T) {
	s := newServer(t)
	alice := s.signIn(t, "alice@aggies.ncat.edu")

	req := s.review(4)
	req.CourseID = "00000000-0000-0000-0000-000000000000"
	status, env := s.do(t, http.MethodPost, "/api/v1/reviews", alice, req)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeResourceNotFound, env.Error.Code)
	assert.Equal(t, "course not found", env.Error.Message)

	status, env = s.do(t, http.MethodGet, "/api/v1/professors/"+s.professor.ID+"/reviews", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decodeData[list[models.Review]](t, env).Items)
}

func TestSubmitReviewUpdatesProfessor(t *testing.T) {
	s := newServer(t)
	alice := s.signIn(t, "alice@aggies.ncat.edu")
	bob := s.signIn(t, "bob@aggies.ncat.edu")

	status, _ := s.do(t, http.MethodPost, "/api/v1/reviews", alice, s.review(5))
	require.Equal(t, http.StatusCreated, status)
	status, _ = s.do(t, http.MethodPost, "/api/v1/reviews", bob, s.review(2))
	require.Equal(t, http.StatusCreated, status)

	status, env := s.do(t, http.MethodPost, "/api/v1/reviews", alice, s.review(1))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "You have already reviewed this professor for this course", env.Error.Message)

	short := s.review(4)
	short.Comment = "too short"
	status, env = s.do(t, http.MethodPost, "/api/v1/reviews", alice, short)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "comment", env.Error.Field)

	status, env = s.do(t, http.MethodGet, "/api/v1/professors/"+s.professor.ID, "", nil)
	require.Equal(t, http.StatusOK, status)
	professor := decodeData[models.Professor](t, env)
	assert.Equal(t, 2, professor.TotalReviews)
	assert.InDelta(t, 3.5, professor.AverageRating, 0.001)
	assert.Equal(t, 100, professor.WouldTakeAgainPercent)

	status, env = s.do(t, http.MethodGet, "/api/v1/professors/"+s.professor.ID+"/reviews", "", nil)
	require.Equal(t, http.StatusOK, status)
	reviews := decodeData[list[models.Review]](t, env)
	require.Equal(t, 2, reviews.Total)
	assert.Equal(t, 2, reviews.Items[0].Rating, "newest first")

	status, env = s.do(t, http.MethodGet, "/api/v1/professors/"+s.professor.ID+"/courses", "", nil)
	require.Equal(t, http.StatusOK, status)
	courses := decodeData[list[models.Course]](t, env)
	require.Len(t, courses.Items, 1)
	assert.Equal(t, "COMP 285", courses.Items[0].Code)
}

func TestDeleteReview(t *testing.T) {
	s := newServer(t)
	alice := s.signIn(t, "alice@aggies.ncat.edu")
	bob := s.signIn(t, "bob@aggies.ncat.edu")

	status, env := s.do(t, http.MethodPost, "/api/v1/reviews", alice, s.review(4))
	require.Equal(t, http.StatusCreated, status)
	review := decodeData[models.Review](t, env)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/reviews/"+review.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = s.do(t, http.MethodGet, "/api/v1/me/account", alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), decodeData[dto.AccountResponse](t, env).ReviewCount)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/reviews/"+review.ID, alice, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodGet, "/api/v1/me/reviews", alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Zero(t, decodeData[list[models.Review]](t, env).Total)

	professor, err := s.repos.ProfessorRepository.GetByID(context.Background(), s.professor.ID)
	require.NoError(t, err)
	assert.Zero(t, professor.TotalReviews)
}

func TestCatalogRoutes(t *testing.T) {
	s := newServer(t)

	status, env := s.do(t, http.MethodGet, "/api/v1/departments", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, decodeData[list[models.Department]](t, env).Total)

	status, env = s.do(t, http.MethodGet, "/api/v1/professors?search=bryant", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, decodeData[list[models.Professor]](t, env).Total)

	status, env = s.do(t, http.MethodGet, "/api/v1/courses?search=data", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, decodeData[list[models.Course]](t, env).Total)

	status, env = s.do(t, http.MethodGet, "/api/v1/courses/profile?code="+url.QueryEscape("COMP 285"), "", nil)
	require.Equal(t, http.StatusOK, status)
	profile := decodeData[dto.CourseProfileResponse](t, env)
	assert.Equal(t, "Data Structures", profile.Course.Name)
	assert.Empty(t, profile.Reviews)

	status, env = s.do(t, http.MethodGet, "/api/v1/courses/profile", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "code", env.Error.Field)

	status, _ = s.do(t, http.MethodGet, "/api/v1/courses/profile?code=NOPE+999", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/professors/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
