package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/exeat-management/api"
	"github.com/frahmantamala/exeat-management/internal"
	"github.com/frahmantamala/exeat-management/internal/auth"
	authPostgres "github.com/frahmantamala/exeat-management/internal/auth/postgres"
	"github.com/frahmantamala/exeat-management/internal/core/datamodel"
	"github.com/frahmantamala/exeat-management/internal/exeat"
	exeatPostgres "github.com/frahmantamala/exeat-management/internal/exeat/postgres"
	"github.com/frahmantamala/exeat-management/internal/profile"
	profilePostgres "github.com/frahmantamala/exeat-management/internal/profile/postgres"
	"github.com/frahmantamala/exeat-management/internal/revocation"
	revocationPostgres "github.com/frahmantamala/exeat-management/internal/revocation/postgres"
	"github.com/frahmantamala/exeat-management/internal/storage"
	"github.com/frahmantamala/exeat-management/internal/transport/rest"
	"github.com/frahmantamala/exeat-management/internal/user"
	userPostgres "github.com/frahmantamala/exeat-management/internal/user/postgres"
	"github.com/frahmantamala/exeat-management/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config  *internal.Config
	DB      *gorm.DB
	Router  *chi.Mux
	Sweeper *revocation.Sweeper
	Logger  *slog.Logger

	closers []func() error
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "driver", deps.Config.Database.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	var sweepDone <-chan struct{}
	if deps.Sweeper != nil {
		sweepDone = deps.Sweeper.Start(sweepCtx)
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			exitCode = 1
		}
	}

	stopSweep()
	if sweepDone != nil {
		<-sweepDone
	}
	deps.Close()

	deps.Logger.Info("Server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.Logger.Error("close error", "error", err)
		}
	}
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	ctx := context.Background()
	if _, err := api.Load(ctx); err != nil {
		return nil, err
	}

	db, err := initDB(ctx, config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Config:  config,
		DB:      db,
		Router:  chi.NewRouter(),
		Logger:  lg,
		closers: []func() error{sqlDB.Close},
	}

	if config.Security.Revocation.SweepEnabled {
		sweepDB, err := initSweepDB(config.Database)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to initialize sweep store: %w", err)
		}
		store := revocationPostgres.NewSweepStore(sweepDB)
		deps.closers = append(deps.closers, store.Close)
		deps.Sweeper = revocation.NewSweeper(store, config.Security.Revocation.SweepInterval, config.Security.Revocation.SweepTimeout, lg)
	}

	authService := auth.NewService(
		authPostgres.NewRepository(db),
		revocationPostgres.NewLedgerRepository(db),
		auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.AccessTokenDuration),
		config.Security.BCryptCost,
		lg,
	)
	profileService := profile.NewService(profilePostgres.NewProfileRepository(db), lg)
	userService := user.NewService(
		userPostgres.NewUserRepository(db),
		authService,
		profileService,
		storage.NewLocalStore(config.Storage.ProfilePictureDir),
		config.Storage.MaxProfilePictureSize,
		lg,
	)
	exeatService := exeat.NewService(exeatPostgres.NewExeatRepository(db), lg)

	rest.RegisterAllRoutes(deps.Router, rest.Routes{
		DB:             sqlDB,
		DBComponent:    config.Database.Driver,
		AuthHandler:    auth.NewHandler(authService),
		RBAC:           auth.NewRBACAuthorization(profileService, lg),
		UserHandler:    user.NewHandler(userService),
		ExeatHandler:   exeat.NewHandler(exeatService),
		OpenAPI:        api.Document(),
		StaticDir:      config.Storage.StaticDir,
		AllowedOrigins: config.Server.Origins(),
		Logger:         lg,
	})

	return deps, nil
}

// initDB opens the gorm connection for the configured driver. SQLite
// databases are migrated in place; postgres is migrated with goose.
func initDB(ctx context.Context, cfg internal.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case internal.DriverSQLite:
		dialector = sqlite.Open(cfg.Source)
	default:
		dialector = postgres.Open(cfg.Source)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == internal.DriverSQLite {
		// sqlite serialises writers; a single connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := internal.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.Driver == internal.DriverSQLite {
		err = datamodel.Migrate(ctx, db)
	} else {
		err = datamodel.SeedReferenceData(ctx, db)
	}
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to prepare schema: %w", err)
	}

	return db, nil
}
