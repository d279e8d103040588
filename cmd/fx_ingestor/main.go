package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/fx_rates_ingestor/cmd/docs"
	"github.com/SscSPs/fx_rates_ingestor/internal/adapters/bundesbank"
	"github.com/SscSPs/fx_rates_ingestor/internal/adapters/csvarchive"
	portsrepo "github.com/SscSPs/fx_rates_ingestor/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fx_rates_ingestor/internal/core/ports/services"
	"github.com/SscSPs/fx_rates_ingestor/internal/core/services"
	"github.com/SscSPs/fx_rates_ingestor/internal/handlers"
	"github.com/SscSPs/fx_rates_ingestor/internal/middleware"
	"github.com/SscSPs/fx_rates_ingestor/internal/platform/config"
	"github.com/SscSPs/fx_rates_ingestor/internal/repositories/database/pgsql"
	"github.com/SscSPs/fx_rates_ingestor/internal/repositories/database/sqlite"
	"github.com/SscSPs/fx_rates_ingestor/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	_ "github.com/jackc/pgx/v5/stdlib"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title FX Rates Ingestor API
// @version 1.0
// @description Triggers for the EUR reference rate archive import and the Bundesbank live refresh.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = middleware.WithLogger(ctx, logger)

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize store", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	container := services.NewServiceContainer(repos, services.Gateways{
		Archive: csvarchive.NewArchive(cfg.ArchiveDir),
		Source: bundesbank.NewClient(bundesbank.Config{
			URLTemplate:       cfg.BundesbankURLTemplate,
			Timeout:           cfg.FetchTimeout,
			CurrencyDimension: cfg.BundesbankCurrencyDimension,
		}),
		Pacer: bundesbank.NewPacer(cfg.FetchPacingInterval),
	})

	if cfg.RunMode == config.RunModeOnce {
		if !runOnce(ctx, cfg, container, logger) {
			closeStore()
			os.Exit(1)
		}
		return
	}

	if cfg.ImportOnStartup {
		importArchive(ctx, cfg, container, logger)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, cors)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	triggerLimiter, err := middleware.NewRateLimiter(cfg.TriggerRateLimit)
	if err != nil {
		logger.Error("Failed to create trigger rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container, triggerLimiter)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// openStore connects the configured store, applies migrations and returns its repositories.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StoreDriver == config.StoreDriverSQLite {
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		closeDB := func() {
			if cerr := db.Close(); cerr != nil {
				logger.Error("Error closing sqlite database", slog.String("error", cerr.Error()))
			}
		}
		if err := database.RunMigrations(db, database.DriverSQLite, logger); err != nil {
			closeDB()
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("SQLite store ready", slog.String("path", cfg.SQLitePath))
		return sqlite.NewRepositoryProvider(db), closeDB, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}

	// Migrations run on a temporary database/sql handle through the pgx stdlib driver.
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.PingContext(ctx); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}
	if err := database.RunMigrations(migrationDB, database.DriverPostgres, logger); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

func importArchive(ctx context.Context, cfg *config.Config, container *portssvc.ServiceContainer, logger *slog.Logger) bool {
	summary, err := container.Ingestion.ImportCSVDirectory(ctx, cfg.ArchiveDir)
	if err != nil {
		logger.Error("Archive import failed", slog.String("dir", cfg.ArchiveDir), slog.String("error", err.Error()))
		return false
	}
	logger.Info("Archive import finished",
		slog.Int("filesProcessed", summary.FilesProcessed),
		slog.Int("filesImported", summary.FilesImported),
		slog.Int("filesSkipped", summary.FilesSkipped),
		slog.Int("filesFailed", summary.FilesFailed),
		slog.Int("inserted", summary.Inserted),
		slog.Int("malformed", summary.Malformed),
		slog.Int("noValue", summary.NoValue),
	)
	return true
}

// runOnce imports the archive, refreshes every currency from the live source and returns.
func runOnce(ctx context.Context, cfg *config.Config, container *portssvc.ServiceContainer, logger *slog.Logger) bool {
	if !importArchive(ctx, cfg, container, logger) {
		return false
	}

	summary, err := container.Ingestion.RefreshAllFromLiveSource(ctx)
	if err != nil {
		logger.Error("Live refresh failed", slog.String("error", err.Error()))
		return false
	}
	logger.Info("Live refresh finished",
		slog.Int("currenciesProcessed", summary.CurrenciesProcessed),
		slog.Int("currenciesUpdated", summary.CurrenciesUpdated),
		slog.Int("currenciesFailed", summary.CurrenciesFailed),
		slog.Int("inserted", summary.Inserted),
		slog.Int("archiveFailures", summary.ArchiveFailures),
		slog.Any("failedCurrencies", summary.FailedCurrencies),
	)
	return true
}

func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
