package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinical-records-api/config"
	deliveryHttp "clinical-records-api/internal/delivery/http"
	"clinical-records-api/internal/delivery/http/handler"
	"clinical-records-api/internal/delivery/http/middleware"
	"clinical-records-api/internal/domain/entity"
	domainRepo "clinical-records-api/internal/domain/repository"
	"clinical-records-api/internal/infrastructure/cache"
	"clinical-records-api/internal/infrastructure/database"
	"clinical-records-api/internal/infrastructure/migration"
	"clinical-records-api/internal/query"
	"clinical-records-api/internal/repository"
	"clinical-records-api/internal/service"
	"clinical-records-api/internal/usecase"
	"clinical-records-api/pkg/jwt"
	"clinical-records-api/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New(cfg *config.Config, log *logrus.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log}

	// Initialize database
	if cfg.Storage.Driver == config.StorageDriverPostgres {
		if cfg.DB.AutoMigrate {
			if err := Migrate(cfg, log, true); err != nil {
				return nil, err
			}
		}

		db, err := database.NewPostgresConnection(cfg.DB, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		app.DB = db
	} else {
		log.Warn("Using in-memory storage, data is lost on restart")
	}

	// Initialize Redis
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis, log)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
	}

	// Initialize all layers
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           app.initializeHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

// Migrate applies (up) or rolls back one step of (down) the embedded schema
// migrations.
func Migrate(cfg *config.Config, log *logrus.Logger, up bool) error {
	if cfg.Storage.Driver != config.StorageDriverPostgres {
		return fmt.Errorf("migrations need STORAGE_DRIVER=%s", config.StorageDriverPostgres)
	}

	migrator, err := migration.NewMigrator(cfg.DB.URL(), log)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if up {
		return migrator.Up()
	}
	return migrator.Down()
}

func (app *App) initializeHandler() http.Handler {
	cfg, log := app.Config, app.Log

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize audit trail
	var auditRepo domainRepo.AuditLogRepository
	if app.DB != nil {
		auditRepo = repository.NewAuditLogRepository(app.DB)
	} else {
		auditRepo = repository.NewMemoryAuditLogRepository()
	}
	auditService := service.NewAuditService(log, auditRepo)

	routes := []deliveryHttp.EntityRoute{
		{Path: "dunningletters", Handler: newEntityHandler[entity.DunningLetter](app, entity.DunningLetterSchema, customValidator, auditService)},
		{Path: "prescription", Handler: newEntityHandler[entity.Prescription](app, entity.PrescriptionSchema, customValidator, auditService)},
		{Path: "treatment", Handler: newEntityHandler[entity.Treatment](app, entity.TreatmentSchema, customValidator, auditService)},
	}

	auditLogHandler := handler.NewAuditLogHandler(usecase.NewAuditLogUsecase(log, auditRepo))

	// Initialize middleware
	var revocation service.TokenRevocationService
	if app.RedisClient != nil {
		revocation = service.NewTokenRevocationService(log, app.RedisClient)
	}
	authMiddleware := middleware.NewAuthMiddleware(jwtService, revocation, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins)
	loggingMiddleware := middleware.NewLoggingMiddleware(log)
	var metricsMiddleware *middleware.MetricsMiddleware
	if cfg.Metrics.Enabled {
		metricsMiddleware = middleware.NewMetricsMiddleware()
	}

	// Initialize router
	router := deliveryHttp.NewRouter(routes, auditLogHandler, authMiddleware, corsMiddleware, loggingMiddleware, metricsMiddleware, cfg.Metrics.Path)
	return router.Setup()
}

// newEntityHandler wires repository, usecase and handler of one entity type.
func newEntityHandler[T any, PT entity.Record[T]](
	app *App,
	schema *query.Schema[T],
	customValidator *validator.CustomValidator,
	auditService service.AuditService,
) *handler.EntityHandler[T] {
	var repo domainRepo.EntityRepository[T]
	if app.DB != nil {
		repo = repository.NewEntityRepository[T, PT](app.DB)
	} else {
		repo = repository.NewMemoryRepository[T, PT]()
	}
	if app.RedisClient != nil {
		repo = repository.NewCachedRepository(repo, app.RedisClient, app.Log, schema, app.Config.Redis.CacheTTL)
	}

	entityUsecase := usecase.NewEntityUsecase[T, PT](app.Log, repo, schema, customValidator, auditService, app.Config.Paging.MaxPageSize)
	return handler.NewEntityHandler(entityUsecase, customValidator, app.Log, app.Config.Paging.DefaultPageSize)
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() error {
	errCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s, storage: %s", app.Config.App.Env, app.Config.Storage.Driver)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-errCh:
		app.Close()
		return fmt.Errorf("failed to start server: %w", err)
	}

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
	return nil
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
