package container

import (
	"context"
	"fmt"

	"github.com/cofoundly/cofoundly-backend/internal/config"
	httpdelivery "github.com/cofoundly/cofoundly-backend/internal/delivery/http"
	"github.com/cofoundly/cofoundly-backend/internal/delivery/http/handler"
	"github.com/cofoundly/cofoundly-backend/internal/delivery/http/middleware"
	"github.com/cofoundly/cofoundly-backend/internal/infrastructure/database"
	"github.com/cofoundly/cofoundly-backend/internal/infrastructure/server"
	"github.com/cofoundly/cofoundly-backend/internal/notifier"
	"github.com/cofoundly/cofoundly-backend/internal/repository/postgres"
	"github.com/cofoundly/cofoundly-backend/internal/repository/redisrepo"
	"github.com/cofoundly/cofoundly-backend/internal/scheduler"
	"github.com/cofoundly/cofoundly-backend/internal/usecase/checkin"
	"github.com/cofoundly/cofoundly-backend/internal/usecase/discovery"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Log       *zap.Logger
	DB        *sqlx.DB
	Redis     *redis.Client
	Server    *server.Server
	CheckIns  *checkin.CheckInUseCase
	Reminders *scheduler.RedisReminderScheduler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, log *zap.Logger) (*Container, error) {
	// Initialize database
	db, err := database.NewPostgresDB(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize Redis
	redisClient, err := database.NewRedisClient(&cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize repositories
	checkInRepo := postgres.NewCheckInRepository(db)
	contactRepo := postgres.NewContactRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	presetRepo := redisrepo.NewPresetRepository(redisClient)

	// Initialize collaborators
	notif := notifier.NewRedisNotifier(redisClient, log)
	reminders := scheduler.NewRedisReminderScheduler(
		redisClient, cfg.Safety.ReminderPollInterval, log)

	// Initialize use cases
	checkInUseCase := checkin.NewCheckInUseCase(
		checkInRepo,
		contactRepo,
		notif,
		reminders,
		checkin.NewRealClock(),
		log,
		checkin.Options{
			WatchdogInterval: cfg.Safety.WatchdogInterval,
			GracePeriod:      cfg.Safety.GracePeriod,
			ReminderLead:     cfg.Safety.ReminderLead,
		},
	)

	discoveryUseCase := discovery.NewDiscoveryUseCase(
		profileRepo,
		presetRepo,
		log,
	)

	// Rebuild working sets and re-arm watchdogs from the store
	if err := checkInUseCase.Restore(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to restore check-ins: %w", err)
	}

	// Initialize handlers
	checkInHandler := handler.NewCheckInHandler(checkInUseCase)
	contactHandler := handler.NewContactHandler(contactRepo)
	discoveryHandler := handler.NewDiscoveryHandler(discoveryUseCase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.AccessSecret)

	// Initialize router
	router := httpdelivery.NewRouter(
		checkInHandler,
		contactHandler,
		discoveryHandler,
		authMiddleware,
	)

	// Setup routes
	ginRouter := router.Setup()

	// Initialize server
	srv := server.NewServer(&cfg.Server, ginRouter, log)

	return &Container{
		Config:    cfg,
		Log:       log,
		DB:        db,
		Redis:     redisClient,
		Server:    srv,
		CheckIns:  checkInUseCase,
		Reminders: reminders,
	}, nil
}

// Close closes all connections
func (c *Container) Close() error {
	c.CheckIns.Shutdown()
	c.Reminders.Stop()

	// Close Redis
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Warn("error closing redis", zap.Error(err))
		}
	}

	// Close database
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
