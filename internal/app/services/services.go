package services

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aggiereview/aggiereview/internal/app/repositories"
	"github.com/aggiereview/aggiereview/internal/pkg/auth"
	"github.com/aggiereview/aggiereview/internal/pkg/cache"
	"github.com/aggiereview/aggiereview/internal/pkg/email"
)

// Services groups the application services handed to controllers
type Services struct {
	Auth       *AuthService
	Account    *AccountService
	Department *DepartmentService
	Professor  *ProfessorService
	Course     *CourseService
	Review     *ReviewService
}

// Options carries the non-repository dependencies of the services
type Options struct {
	JWT       *auth.JWTService
	Mailer    email.EmailService
	Cache     cache.Cache
	Auth      AuthConfig
	SearchTTL time.Duration
	Logger    zerolog.Logger
}

// NewServices wires every service on top of one set of repositories
func NewServices(repos *repositories.Repositories, opts Options) *Services {
	if opts.Cache == nil {
		opts.Cache = cache.Noop{}
	}
	log := opts.Logger
	recomputer := NewAggregateRecomputer(repos.ReviewRepository, repos.ProfessorRepository,
		log.With().Str("component", "aggregates").Logger())

	return &Services{
		Auth: NewAuthService(repos, opts.JWT, opts.Mailer, opts.Cache, opts.Auth,
			log.With().Str("component", "auth").Logger()),
		Account:    NewAccountService(repos),
		Department: NewDepartmentService(repos),
		Professor: NewProfessorService(repos, opts.Cache, opts.SearchTTL,
			log.With().Str("component", "professors").Logger()),
		Course: NewCourseService(repos, opts.Cache, opts.SearchTTL,
			log.With().Str("component", "courses").Logger()),
		Review: NewReviewService(repos, recomputer, opts.Cache,
			log.With().Str("component", "reviews").Logger()),
	}
}
