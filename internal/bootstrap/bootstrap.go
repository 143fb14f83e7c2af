package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	authz "github.com/yigit/edulearn/internal/app/auth"
	appControllers "github.com/yigit/edulearn/internal/app/controllers"
	appMigrations "github.com/yigit/edulearn/internal/app/migrations"
	appRepos "github.com/yigit/edulearn/internal/app/repositories"
	appRoutes "github.com/yigit/edulearn/internal/app/routes"
	appServices "github.com/yigit/edulearn/internal/app/services"
	"github.com/yigit/edulearn/internal/config"
	"github.com/yigit/edulearn/internal/db"
	appMiddleware "github.com/yigit/edulearn/internal/middleware"
	pkgAuth "github.com/yigit/edulearn/internal/pkg/auth"
	"github.com/yigit/edulearn/internal/pkg/cache"
	"github.com/yigit/edulearn/internal/pkg/email"
	"github.com/yigit/edulearn/internal/pkg/filestorage"
	"github.com/yigit/edulearn/internal/pkg/helpers"
	"github.com/yigit/edulearn/internal/pkg/logger"
	"github.com/yigit/edulearn/internal/pkg/websocket"
	"github.com/yigit/edulearn/internal/seed"
)

// ConfigPathEnv names the variable that overrides the config file location.
const ConfigPathEnv = "EDULEARN_CONFIG"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	Authorizer     *authz.Authorizer
	FileStorage    *filestorage.LocalStorage
	Cache          cache.Cache
	Hub            *websocket.Hub
	AuthMiddleware *appMiddleware.AuthMiddleware
	AuthLimiter    *appMiddleware.RateLimiter
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger

	closers []func() error
}

// Close releases resources opened while building dependencies.
func (d *Dependencies) Close() {
	for _, c := range d.closers {
		if err := c(); err != nil {
			d.Logger.Warn().Err(err).Msg("Error releasing dependency")
		}
	}
}

// ConfigPath resolves the config file location.
func ConfigPath() string {
	return config.GetEnv(ConfigPathEnv, filepath.Join("configs", "config.yaml"))
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(service string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(ConfigPath())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format, service))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and, when enabled, runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	if cfg.Database.AutoMigrate {
		if err := RunMigrations(cfg, lgr); err != nil {
			dbPool.Close()
			return nil, err
		}
		if _, err := seed.SeedFAQ(ctx, appRepos.NewFAQRepository(dbPool), lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to seed FAQ, proceeding anyway...")
		}
	}

	return dbPool, nil
}

// RunMigrations applies pending schema migrations.
func RunMigrations(cfg *config.Config, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	migrator, err := appMigrations.NewMigrator(cfg.GetPostgresConnectionString(), lgr)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// SetupCache connects to redis when configured and falls back to an in-process cache.
func SetupCache(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (cache.Cache, func() error) {
	if cfg.Redis.Addr == "" {
		lgr.Info().Msg("Redis not configured, using in-memory cache")
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, lgr)
	if err != nil {
		lgr.Warn().Err(err).Msg("Redis unavailable, using in-memory cache")
		return cache.NewMemoryCache(), nil
	}
	return rc, rc.Close
}

// BuildDependencies initializes application repositories, services, and controllers.
// The websocket hub runs until ctx is cancelled.
func BuildDependencies(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	var closeCache func() error
	deps.Cache, closeCache = SetupCache(ctx, cfg, lgr)
	if closeCache != nil {
		deps.closers = append(deps.closers, closeCache)
	}

	deps.Hub = websocket.NewHub(lgr.With().Str("component", "websocket").Logger())
	go deps.Hub.Run(ctx)

	deps.Authorizer = authz.NewAuthorizer()
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   strings.TrimRight(cfg.Server.BaseURL, "/"),
	}, lgr)

	loc := cfg.Location()
	r := deps.Repos

	authService := appServices.NewAuthService(
		r.UserRepository,
		r.TokenRepository,
		r.VerificationTokens,
		r.PasswordResetTokens,
		deps.JWTService,
		mailer,
		appServices.TokenLifetimes{
			Verification:  helpers.ParseDuration(cfg.Tokens.VerificationExpiration, 24*time.Hour),
			PasswordReset: helpers.ParseDuration(cfg.Tokens.PasswordResetExpiration, time.Hour),
		},
		lgr,
	)
	userService := appServices.NewUserService(r.UserRepository, r.TokenRepository, lgr)
	courseService := appServices.NewCourseService(r.CourseRepository, r.EnrollmentRepository, deps.FileStorage, deps.Authorizer, loc, lgr)
	enrollmentService := appServices.NewEnrollmentService(r.CourseRepository, r.EnrollmentRepository, r.AssignmentRepository, deps.Authorizer, loc, lgr)
	assignmentService := appServices.NewAssignmentService(
		r.CourseRepository, r.EnrollmentRepository, r.AssignmentRepository, r.SubmissionRepository,
		deps.FileStorage, deps.Authorizer, lgr,
	)
	classroomService := appServices.NewClassroomService(
		r.CourseRepository, r.EnrollmentRepository, r.CourseNoticeRepository, r.WeeklyContentRepository, r.QuestionRepository,
		deps.FileStorage, deps.Authorizer, lgr,
	)
	noticeService := appServices.NewNoticeService(r.NoticeRepository, deps.Authorizer, lgr)
	communityService := appServices.NewCommunityService(r.CommunityRepository, deps.Authorizer, lgr)
	messengerService := appServices.NewMessengerService(r.MessengerRepository, r.UserRepository, deps.Hub, deps.Authorizer, lgr)
	faqService := appServices.NewFAQService(
		r.FAQRepository, deps.Cache, helpers.ParseDuration(cfg.Redis.CacheTTL, 10*time.Minute), deps.Authorizer, lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, r.UserRepository)
	deps.AuthLimiter = appMiddleware.NewRateLimiter(cfg.Server.AuthRatePerMinute, cfg.Server.AuthRateBurst)

	wsHandler := websocket.NewHandler(deps.Hub, messengerService, cfg.Server.AllowedOrigins, lgr)

	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(authService, lgr),
		User:       appControllers.NewUserController(userService),
		Course:     appControllers.NewCourseController(courseService),
		Enrollment: appControllers.NewEnrollmentController(enrollmentService, loc),
		Assignment: appControllers.NewAssignmentController(assignmentService),
		Classroom:  appControllers.NewClassroomController(classroomService),
		Notice:     appControllers.NewNoticeController(noticeService),
		Community:  appControllers.NewCommunityController(communityService),
		Messenger:  appControllers.NewMessengerController(messengerService, wsHandler),
		FAQ:        appControllers.NewFAQController(faqService),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, dbPool *pgxpool.Pool, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr))
	router.Use(appMiddleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(appMiddleware.BodyLimit(cfg.Server.MaxUploadSizeBytes))
	router.MaxMultipartMemory = 8 << 20

	setupStaticFileServing(router, cfg, lgr)
	appRoutes.SetupSwagger(router, swaggerHost(cfg.Server.BaseURL))

	var pinger appRoutes.Pinger
	if dbPool != nil {
		pinger = dbPool
	}
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.AuthLimiter, pinger)

	return router
}

// setupStaticFileServing serves uploaded files under /uploads
func setupStaticFileServing(router *gin.Engine, cfg *config.Config, lgr zerolog.Logger) {
	uploadPath := cfg.Server.StoragePath

	if _, err := os.Stat(uploadPath); os.IsNotExist(err) {
		if err := os.MkdirAll(uploadPath, os.ModePerm); err != nil {
			lgr.Error().Err(err).Str("path", uploadPath).Msg("Failed to create uploads directory")
			return
		}
	}

	router.Static(strings.TrimSuffix(appServices.UploadsURLPrefix, "/"), uploadPath)
	lgr.Info().Str("path", uploadPath).Msg("Static file serving configured for uploads directory")
}

func swaggerHost(baseURL string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(baseURL, "https://"), "http://")
	return strings.TrimRight(host, "/")
}
