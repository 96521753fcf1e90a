package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/aggiereview/aggiereview/internal/app/controllers"
	appMigrations "github.com/aggiereview/aggiereview/internal/app/migrations"
	appRepos "github.com/aggiereview/aggiereview/internal/app/repositories"
	appRoutes "github.com/aggiereview/aggiereview/internal/app/routes"
	appServices "github.com/aggiereview/aggiereview/internal/app/services"
	"github.com/aggiereview/aggiereview/internal/config"
	"github.com/aggiereview/aggiereview/internal/db"
	appMiddleware "github.com/aggiereview/aggiereview/internal/middleware"
	pkgAuth "github.com/aggiereview/aggiereview/internal/pkg/auth"
	"github.com/aggiereview/aggiereview/internal/pkg/cache"
	"github.com/aggiereview/aggiereview/internal/pkg/email"
	"github.com/aggiereview/aggiereview/internal/pkg/helpers"
	"github.com/aggiereview/aggiereview/internal/pkg/logger"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
	"github.com/aggiereview/aggiereview/internal/seed"
)

// DefaultConfigPath is used when no config path is given
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	JWTService     *pkgAuth.JWTService
	Cache          cache.Cache
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	// WriteLimiter is nil when rate limiting is disabled
	WriteLimiter *appMiddleware.RateLimiter
	Logger       zerolog.Logger
}

// Close releases resources held by the dependencies
func (d *Dependencies) Close() {
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close cache")
		}
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		lgr := logger.Default()
		lgr.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(database, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// SeedDefaultData inserts the departments listed in the configured file. A
// failure is logged and startup continues.
func SeedDefaultData(ctx context.Context, cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) {
	if _, err := seed.CreateDefaultData(ctx, repos.DepartmentRepository, cfg.Importer.DepartmentsFile, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// SetupCache connects to redis when enabled. Without redis, or when it cannot be
// reached, an in-process cache is used.
func SetupCache(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) cache.Cache {
	if !cfg.Redis.Enabled {
		lgr.Info().Msg("Redis disabled, using in-process cache")
		return cache.NewMemory()
	}

	c, err := cache.NewRedisCache(ctx, cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
	})
	if err != nil {
		lgr.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, using in-process cache")
		return cache.NewMemory()
	}
	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis cache connected")
	return c
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, store recordstore.Store, c cache.Cache, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr, Cache: c}

	deps.Repos = appRepos.NewRepositories(store)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, logger.Component("email"))

	deps.Services = appServices.NewServices(deps.Repos, appServices.Options{
		JWT:    deps.JWTService,
		Mailer: mailer,
		Cache:  c,
		Auth: appServices.AuthConfig{
			InstitutionalDomain: cfg.Auth.InstitutionalDomain,
			CodeTTL:             helpers.ParseDuration(cfg.Auth.CodeTTL, 15*time.Minute),
		},
		SearchTTL: helpers.ParseDuration(cfg.Redis.SearchTTL, 5*time.Minute),
		Logger:    lgr,
	})

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.Services.Auth)
	if cfg.Server.RateLimit.Enabled {
		deps.WriteLimiter = appMiddleware.NewRateLimiter(cfg.Server.RateLimit.PerSecond, cfg.Server.RateLimit.Burst, 10*time.Minute)
	}

	deps.Controllers = appRoutes.Controllers{
		Auth:    appControllers.NewAuthController(deps.Services.Auth, lgr),
		Catalog: appControllers.NewCatalogController(deps.Services),
		Review:  appControllers.NewReviewController(deps.Services),
	}

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.WriteLimiter)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
