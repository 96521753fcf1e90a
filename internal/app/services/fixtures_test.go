package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/app/repositories"
	"github.com/aggiereview/aggiereview/internal/pkg/auth"
	"github.com/aggiereview/aggiereview/internal/pkg/cache"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore/memstore"
)

type fixture struct {
	store    *memstore.Store
	repos    *repositories.Repositories
	services *Services
	mailer   *recordingMailer
	cache    *mapCache

	dept      models.Department
	course    models.Course
	course2   models.Course
	professor models.Professor
}

type sentCode struct {
	email, code string
}

type recordingMailer struct {
	sent []sentCode
	err  error
}

func (m *recordingMailer) SendVerificationCode(toEmail, _, code string, _ time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentCode{email: toEmail, code: code})
	return nil
}

func (m *recordingMailer) last() sentCode {
	return m.sent[len(m.sent)-1]
}

// mapCache is an in-process cache.Cache that ignores TTLs
type mapCache struct {
	values map[string]any
}

func newMapCache() *mapCache { return &mapCache{values: map[string]any{}} }

func (c *mapCache) Get(_ context.Context, key string, dest any) (bool, error) {
	v, ok := c.values[key]
	if !ok {
		return false, nil
	}
	switch d := dest.(type) {
	case *[]models.Professor:
		*d = v.([]models.Professor)
	case *[]models.Course:
		*d = v.([]models.Course)
	}
	return true, nil
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.values[key] = value
	return nil
}

func (c *mapCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.values[key]
	return ok, nil
}

func (c *mapCache) DeletePrefix(_ context.Context, prefix string) error {
	for k := range c.values {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.values, k)
		}
	}
	return nil
}

func (c *mapCache) Close() error { return nil }

var _ cache.Cache = (*mapCache)(nil)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := repositories.NewMemoryStore()
	repos := repositories.NewRepositories(store)
	mailer := &recordingMailer{}
	c := newMapCache()

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "aggiereview-test",
	})

	f := &fixture{
		store:  store,
		repos:  repos,
		mailer: mailer,
		cache:  c,
		services: NewServices(repos, Options{
			JWT:       jwtService,
			Mailer:    mailer,
			Cache:     c,
			Auth:      AuthConfig{PasswordCost: bcrypt.MinCost},
			SearchTTL: time.Minute,
			Logger:    zerolog.Nop(),
		}),
	}

	f.dept = models.Department{Name: "Computer Science", Code: "COMP"}
	require.NoError(t, repos.DepartmentRepository.Create(ctx, &f.dept))

	f.course = models.Course{Code: "COMP 285", Name: "Data Structures", DepartmentID: f.dept.ID}
	require.NoError(t, repos.CourseRepository.Create(ctx, &f.course))
	f.course2 = models.Course{Code: "COMP 167", Name: "Computer Programming I", DepartmentID: f.dept.ID}
	require.NoError(t, repos.CourseRepository.Create(ctx, &f.course2))

	professors, err := repos.ProfessorRepository.CreateBatch(ctx, []models.Professor{
		{Name: "Dr. Kelvin Bryant", DepartmentID: &f.dept.ID},
	})
	require.NoError(t, err)
	f.professor = professors[0]

	return f
}

func validReview(f *fixture, rating, difficulty int, again bool) NewReview {
	return NewReview{
		ProfessorID:    f.professor.ID,
		CourseID:       f.course.ID,
		Rating:         rating,
		Difficulty:     difficulty,
		WouldTakeAgain: again,
		Comment:        "Clear lectures and fair exams all semester.",
	}
}

func (f *fixture) reloadProfessor(t *testing.T) *models.Professor {
	t.Helper()
	p, err := f.repos.ProfessorRepository.GetByID(context.Background(), f.professor.ID)
	require.NoError(t, err)
	return p
}

func (f *fixture) createProfile(t *testing.T, email string) *models.Profile {
	t.Helper()
	p := &models.Profile{Email: email, FullName: "Aggie " + email, EmailVerified: true}
	require.NoError(t, f.repos.ProfileRepository.Create(context.Background(), p))
	return p
}
