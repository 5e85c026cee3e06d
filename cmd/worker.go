package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/exeat-management/internal"
	"github.com/frahmantamala/exeat-management/internal/revocation"
	revocationPostgres "github.com/frahmantamala/exeat-management/internal/revocation/postgres"
	"github.com/frahmantamala/exeat-management/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that run outside the HTTP server.`,
}

var sweeperWorkerCmd = &cobra.Command{
	Use:   "sweeper",
	Short: "Reclaim expired entries from the revoked token ledger",
	Long:  `Periodically delete revoked-token rows whose tokens have expired. With --once a single sweep runs and the command exits.`,
	Run: func(cmd *cobra.Command, args []string) {
		startSweeperWorker()
	},
}

var sweepOnce bool

func startSweeperWorker() {
	config, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logger.LoggerWrapper()

	db, err := initSweepDB(config.Database)
	if err != nil {
		logger.Error("failed to open sweep store", "error", err)
		os.Exit(1)
	}
	store := revocationPostgres.NewSweepStore(db)
	defer store.Close()

	sweeper := revocation.NewSweeper(store, config.Security.Revocation.SweepInterval, config.Security.Revocation.SweepTimeout, logger)

	if sweepOnce {
		removed, err := sweeper.SweepOnce(context.Background())
		if err != nil {
			os.Exit(1)
		}
		logger.Info("sweep complete", "removed", removed)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("sweeper worker is running. Press Ctrl+C to stop.", "interval", config.Security.Revocation.SweepInterval.String())
	<-sweeper.Start(ctx)
	logger.Info("sweeper worker shutdown complete")
}

// initSweepDB opens the sqlx pool the sweeper uses, separate from the gorm
// pool serving requests.
func initSweepDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	driver := "pgx"
	if cfg.Driver == internal.DriverSQLite {
		driver = "sqlite3"
	}

	db, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open sweep db connection: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

func init() {
	sweeperWorkerCmd.Flags().BoolVar(&sweepOnce, "once", false, "Run a single sweep and exit")

	workerCmd.AddCommand(sweeperWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
