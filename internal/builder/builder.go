package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/datavault-fs/knowledge-backend/internal/api"
	accessapi "github.com/datavault-fs/knowledge-backend/internal/api/access"
	costopsapi "github.com/datavault-fs/knowledge-backend/internal/api/costops"
	reportapi "github.com/datavault-fs/knowledge-backend/internal/api/report"
	searchapi "github.com/datavault-fs/knowledge-backend/internal/api/search"
	"github.com/datavault-fs/knowledge-backend/internal/config"
	"github.com/datavault-fs/knowledge-backend/internal/integration/nuclia"
	"github.com/datavault-fs/knowledge-backend/internal/pkg/validator"
	"github.com/datavault-fs/knowledge-backend/internal/repository"
	"github.com/datavault-fs/knowledge-backend/internal/usecase/access"
	"github.com/datavault-fs/knowledge-backend/internal/usecase/costops"
	"github.com/datavault-fs/knowledge-backend/internal/usecase/report"
	"github.com/datavault-fs/knowledge-backend/internal/usecase/search"
	"github.com/jackc/pgx/v5/pgxpool"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// vendorConnector is the union of the connector methods the usecases need.
// Both the real and the mock connector satisfy it.
type vendorConnector interface {
	search.VendorConnector
	costops.VendorConnector
}

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	db, usecases, err := buildUsecases(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize validators
	requestValidator := validator.NewValidator()
	logger.Info("Validators initialized")

	// Setup API handlers
	searchHandler := searchapi.NewHandler(usecases.search, usecases.access, requestValidator)
	accessHandler := accessapi.NewHandler(usecases.access, requestValidator)
	reportHandler := reportapi.NewHandler(usecases.report, requestValidator)
	costopsHandler := costopsapi.NewHandler(usecases.costops, requestValidator)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(searchHandler, accessHandler, reportHandler, costopsHandler, usecases.access, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}

// CLI bundles the usecases for the command line client.
type CLI struct {
	Search  *search.SearchUsecase
	Access  *access.AccessUsecase
	Report  *report.ReportUsecase
	CostOps *costops.CostOpsUsecase
	Logger  *zap.Logger

	db *pgxpool.Pool
}

// Close releases the resources held by the CLI.
func (c *CLI) Close() {
	if c.db != nil {
		c.db.Close()
	}
	_ = c.Logger.Sync()
}

// BuildCLI wires the usecases without an HTTP server.
func BuildCLI() (*CLI, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	db, usecases, err := buildUsecases(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &CLI{
		Search:  usecases.search,
		Access:  usecases.access,
		Report:  usecases.report,
		CostOps: usecases.costops,
		Logger:  logger,
		db:      db,
	}, nil
}

type usecaseSet struct {
	search  *search.SearchUsecase
	access  *access.AccessUsecase
	report  *report.ReportUsecase
	costops *costops.CostOpsUsecase
}

func buildUsecases(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, *usecaseSet, error) {
	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize repositories
	auditRepo := repository.NewAuditPostgres(db)
	sessionRepo := repository.NewAccessSessionPostgres(db)
	usageRepo := repository.NewUsagePostgres(db)
	hashRepo := repository.NewDocumentHashPostgres(db)
	savingRepo := repository.NewCostSavingPostgres(db)
	logger.Info("Repositories initialized")

	// Query cache for repeated vendor questions
	queryCache := gocache.New(cfg.QueryCacheCfg.TTL, cfg.QueryCacheCfg.CleanupInterval)

	// Initialize the vendor connector (with mock support)
	var connector vendorConnector
	if cfg.EnableMocks || cfg.NucliaCfg.APIKey == "" {
		logger.Info("Using mock vendor connector")
		connector = nuclia.NewMockConnector(logger)
	} else {
		logger.Info("Using real vendor connector", zap.String("zone", cfg.NucliaCfg.Zone))
		connector = nuclia.NewConnector(cfg.NucliaCfg, logger)
	}

	// Initialize use cases
	accessUC := access.NewUsecase(auditRepo, sessionRepo, cfg.SessionTTL, logger)

	searchUC := search.NewUsecase(
		cfg.KnowledgeBoxes,
		connector,
		accessUC,
		queryCache,
		usageRepo,
		savingRepo,
		cfg.Pricing,
		logger,
	)

	reportUC := report.NewUsecase(
		cfg.KnowledgeBoxes,
		connector,
		usageRepo,
		cfg.Pricing,
		logger,
	)

	costopsUC := costops.NewUsecase(
		usageRepo,
		hashRepo,
		savingRepo,
		connector,
		cfg.Pricing,
		logger,
	)
	logger.Info("Use cases initialized")

	return db, &usecaseSet{
		search:  searchUC,
		access:  accessUC,
		report:  reportUC,
		costops: costopsUC,
	}, nil
}
