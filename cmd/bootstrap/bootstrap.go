package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-pharmacy-reservation/config"
	deliveryHttp "go-pharmacy-reservation/internal/delivery/http"
	"go-pharmacy-reservation/internal/delivery/http/handler"
	"go-pharmacy-reservation/internal/delivery/http/middleware"
	"go-pharmacy-reservation/internal/delivery/tcp"
	domainRepo "go-pharmacy-reservation/internal/domain/repository"
	"go-pharmacy-reservation/internal/infrastructure/cache"
	"go-pharmacy-reservation/internal/infrastructure/database"
	"go-pharmacy-reservation/internal/repository"
	"go-pharmacy-reservation/internal/service"
	"go-pharmacy-reservation/internal/store"
	"go-pharmacy-reservation/internal/usecase"
	"go-pharmacy-reservation/internal/wire"
	"go-pharmacy-reservation/pkg/jwt"
	"go-pharmacy-reservation/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Store       *store.Store
	TCPServer   *tcp.Server
	HTTPServer  *http.Server

	stockCache *service.StockCacheService
	sweeper    *service.ExpirySweeper
	scheduler  *service.CheckpointScheduler
}

// New creates a new App instance with all dependencies initialized
func New(configPath string) (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	log := setupLogger(cfg.App)
	app.Log = log
	wire.Logger = log
	log.Info("Configuration loaded successfully")

	ctx := context.Background()

	// Durable backing and audit trail
	var backing store.Backing
	audit := service.NewLogAuditService(log)
	auditLogRepo := repository.NewAuditLogRepository()
	if cfg.DB.Enabled {
		db, err := database.NewPostgresConnection(cfg.DB, log)
		if err != nil {
			return nil, err
		}
		app.DB = db
		if err := database.Migrate(db); err != nil {
			app.Close()
			return nil, err
		}
		backing = service.NewSnapshotService(
			db, log,
			repository.NewUserRepository(),
			repository.NewPharmacyRepository(),
			repository.NewMedicineRepository(),
			repository.NewReservationRepository(),
		)
		audit = service.NewAuditService(db, log, auditLogRepo)
	}

	// Stock cache
	var listener store.StockListener
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, log)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.RedisClient = redisClient
		app.stockCache = service.NewStockCacheService(redisClient, log)
		listener = app.stockCache
	}

	// Inventory store
	st := store.New(store.Options{
		HoldWindow: cfg.Reservation.HoldWindow,
		BcryptCost: cfg.Security.BcryptCost,
		Backing:    backing,
		Listener:   listener,
	})
	if err := st.Load(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load store: %w", err)
	}
	app.Store = st
	stats := st.Stats()
	log.Infof("Store loaded: %d users, %d pharmacies, %d medicines, %d reservations",
		stats.Users, stats.Pharmacies, stats.Medicines, stats.Reservations)

	if app.stockCache != nil {
		medicines := st.Snapshot().Medicines
		if err := app.stockCache.SyncOnStartup(ctx, medicines); err != nil {
			log.Warnf("Failed to sync stock cache on startup: %+v", err)
		}
	}

	// Initialize usecases
	jwtService := jwt.NewJWTService(cfg.JWT)
	authUsecase := usecase.NewAuthUsecase(st, log, audit, jwtService)
	userUsecase := usecase.NewUserUsecase(st, log, audit)
	pharmacyUsecase := usecase.NewPharmacyUsecase(st, log, audit)
	medicineUsecase := usecase.NewMedicineUsecase(st, log, audit)
	reservationUsecase := usecase.NewReservationUsecase(st, log, audit)

	if cfg.Seed.AdminPassword != "" {
		seeded, err := userUsecase.SeedAdmin(ctx, cfg.Seed.AdminUsername, cfg.Seed.AdminPassword)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to seed admin: %w", err)
		}
		if seeded {
			log.Infof("Seeded administrator %q", cfg.Seed.AdminUsername)
		}
	}

	// Protocol server
	customValidator := validator.NewValidator()
	router := tcp.NewRouter(
		log,
		tcp.NewAuthHandler(authUsecase, customValidator, log),
		tcp.NewUserHandler(userUsecase, customValidator, log),
		tcp.NewPharmacyHandler(pharmacyUsecase, customValidator, log),
		tcp.NewMedicineHandler(medicineUsecase, customValidator, log),
		tcp.NewReservationHandler(reservationUsecase, customValidator, log),
		tcp.NewAuthMiddleware(authUsecase, log),
	).Setup()
	tcpServer, err := tcp.NewServer(fmt.Sprintf(":%s", cfg.App.Port), cfg.Server, router, log)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.TCPServer = tcpServer

	// Operational HTTP endpoints
	app.HTTPServer = initializeHTTPServer(app, authUsecase, auditLogRepo)

	// Background jobs
	app.sweeper = service.NewExpirySweeper(st, audit, log, cfg.Reservation.SweepInterval)
	if app.DB != nil {
		scheduler, err := service.NewCheckpointScheduler(st, cfg.DB.CheckpointSchedule, log)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.scheduler = scheduler
	}

	return app, nil
}

// setupLogger builds the JSON logger, rotating to LOG_FILE when set.
func setupLogger(cfg config.AppConfig) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		}))
	} else {
		log.SetOutput(os.Stdout)
	}
	return log
}

func initializeHTTPServer(app *App, authUsecase usecase.AuthUsecase, auditLogRepo domainRepo.AuditLogRepository) *http.Server {
	var stockSource handler.StockSource
	if app.stockCache != nil {
		stockSource = app.stockCache
	}

	var auditLogHandler *handler.AuditLogHandler
	if app.DB != nil {
		auditLogHandler = handler.NewAuditLogHandler(usecase.NewAuditLogUsecase(app.DB, app.Log, auditLogRepo))
	}

	router := deliveryHttp.NewRouter(
		handler.NewHealthHandler(app.Store, app.TCPServer),
		handler.NewStockHandler(stockSource, app.Store, app.Log),
		auditLogHandler,
		middleware.NewAuthMiddleware(authUsecase, app.Log),
		middleware.NewCORSMiddleware(app.Config.App.CORSOrigin),
	)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Config.App.HealthPort),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Run serves until SIGINT/SIGTERM or a listener fails.
func (app *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return app.Serve(ctx)
}

// Serve runs both listeners and the background jobs until ctx is done or a
// listener fails, then shuts everything down and releases the app.
func (app *App) Serve(ctx context.Context) error {
	app.sweeper.Start()
	if app.scheduler != nil {
		app.scheduler.Start()
	}

	app.Log.Infof("Environment: %s", app.Config.App.Env)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := app.TCPServer.ListenAndServe(gctx); err != nil && !errors.Is(err, tcp.ErrServerClosed) {
			return fmt.Errorf("tcp server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		app.Log.Infof("HTTP server starting on port %s", app.Config.App.HealthPort)
		if err := app.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.shutdown()
		return nil
	})

	err := g.Wait()
	app.Close()
	app.Log.Info("Server shutdown complete")
	return err
}

// shutdown stops the background jobs and drains both listeners.
func (app *App) shutdown() {
	app.Log.Info("Shutting down server...")

	app.sweeper.Stop()
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.TCPServer.Shutdown(ctx); err != nil {
		app.Log.Errorf("TCP server forced to shutdown: %v", err)
	}
	if err := app.HTTPServer.Shutdown(ctx); err != nil {
		app.Log.Errorf("HTTP server forced to shutdown: %v", err)
	}
}

// Close flushes the store and releases connections (database, redis, etc.)
func (app *App) Close() {
	if app.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := app.Store.Close(ctx); err != nil {
			app.Log.Errorf("Failed to flush store: %v", err)
		}
		cancel()
		app.Store = nil
	}

	if app.stockCache != nil {
		app.stockCache.Stop()
		app.stockCache = nil
	}

	if app.DB != nil {
		if err := database.Close(app.DB); err != nil {
			app.Log.Warnf("Failed to close database: %v", err)
		}
		app.DB = nil
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
		app.RedisClient = nil
	}
}
