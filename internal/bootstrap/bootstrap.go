package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/Simoh8/pamoja-vote/internal/app/auth"
	appControllers "github.com/Simoh8/pamoja-vote/internal/app/controllers"
	appMigrations "github.com/Simoh8/pamoja-vote/internal/app/migrations"
	appRepos "github.com/Simoh8/pamoja-vote/internal/app/repositories"
	appRoutes "github.com/Simoh8/pamoja-vote/internal/app/routes"
	appServices "github.com/Simoh8/pamoja-vote/internal/app/services"
	"github.com/Simoh8/pamoja-vote/internal/config"
	"github.com/Simoh8/pamoja-vote/internal/db"
	appMiddleware "github.com/Simoh8/pamoja-vote/internal/middleware"
	pkgAuth "github.com/Simoh8/pamoja-vote/internal/pkg/auth"
	"github.com/Simoh8/pamoja-vote/internal/pkg/helpers"
	"github.com/Simoh8/pamoja-vote/internal/pkg/logger"
	"github.com/Simoh8/pamoja-vote/internal/pkg/otp"
	"github.com/Simoh8/pamoja-vote/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService   *appServices.AuthService
	UserService   *appServices.UserService
	CenterService appServices.CenterService
	SquadService  appServices.SquadService
	EventService  appServices.EventService
	InviteService appServices.InviteService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	Redis          *redis.Client
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupSentry initializes error reporting. Without a DSN the client is left
// unconfigured and captured events are dropped.
func SetupSentry(cfg *config.Config, lgr zerolog.Logger) error {
	if cfg.Sentry.DSN == "" {
		lgr.Info().Msg("Sentry DSN not set, error reporting disabled")
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		SampleRate:       cfg.Sentry.SampleRate,
		AttachStacktrace: true,
	}); err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}

	lgr.Info().Str("environment", cfg.Sentry.Environment).Msg("Sentry initialized")
	return nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, logger.Component("migrator"))
	if err := migrator.Migrate(ctx, appMigrations.Files()); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Seed.Enabled {
		if err := seed.CreateDefaultData(ctx, appRepos.NewCenterRepository(database), lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return database, nil
}

// SetupRedis connects the OTP throttle store. It returns nil when Redis is disabled.
func SetupRedis(cfg *config.Config, lgr zerolog.Logger) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		lgr.Info().Msg("Redis disabled, OTP requests are not throttled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")
	return client, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, redisClient *redis.Client, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr, Redis: redisClient}

	deps.Repos = appRepos.NewRepositories(database)
	repos := deps.Repos

	deps.AuthzService = appAuth.NewAuthorizationService(repos.SquadRepository, repos.SquadMemberRepository)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	var limiter otp.Limiter = otp.NoopLimiter{}
	if redisClient != nil {
		limiter = otp.NewRedisLimiter(redisClient,
			cfg.OTP.MaxRequests,
			helpers.ParseDuration(cfg.OTP.Window, 10*time.Minute),
			logger.Component("otp"))
	}

	deps.AuthService = appServices.NewAuthService(
		repos.UserRepository,
		repos.TokenRepository,
		deps.JWTService,
		appServices.AuthOptions{
			Checker:   otp.NewStaticChecker(cfg.OTP.StaticCode),
			Limiter:   limiter,
			ExposeOTP: cfg.OTP.ExposeCode,
		},
		logger.Component("auth"),
	)
	deps.UserService = appServices.NewUserService(repos.UserRepository, logger.Component("users"))
	deps.CenterService = appServices.NewCenterService(repos.CenterRepository, logger.Component("centers"))
	deps.SquadService = appServices.NewSquadService(
		repos.SquadRepository,
		repos.SquadMemberRepository,
		repos.CenterRepository,
		database,
		deps.AuthzService,
		appServices.SquadOptions{SingleMembership: cfg.Squads.SingleMembership},
		logger.Component("squads"),
	)
	deps.EventService = appServices.NewEventService(repos.EventRepository, repos.CenterRepository, deps.AuthzService, logger.Component("events"))
	deps.InviteService = appServices.NewInviteService(
		repos.InviteRepository,
		repos.SquadRepository,
		repos.EventRepository,
		deps.AuthzService,
		cfg.Invites.BaseURL,
		logger.Component("invites"),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, lgr)

	deps.Controllers = appRoutes.Controllers{
		Auth:   appControllers.NewAuthController(deps.AuthService, lgr),
		User:   appControllers.NewUserController(deps.UserService),
		Center: appControllers.NewCenterController(deps.CenterService, lgr),
		Squad:  appControllers.NewSquadController(deps.SquadService, lgr),
		Event:  appControllers.NewEventController(deps.EventService, lgr),
		Invite: appControllers.NewInviteController(deps.InviteService, lgr),
	}

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(appMiddleware.Sentry())
	router.Use(appMiddleware.RequestLogger(logger.Component("http")))
	router.Use(cors.New(corsConfig(cfg)))

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	origins := cfg.AllowedOrigins()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		// Credentials cannot be combined with a wildcard origin
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = origins
	}
	return corsCfg
}
