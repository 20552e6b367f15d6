// Package app wires the catalogue store, resolver and services from config.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"gstrates/internal/config"
	"gstrates/internal/metrics"
	"gstrates/internal/normalize"
	"gstrates/internal/policy"
	"gstrates/internal/port"
	"gstrates/internal/reconcile"
	"gstrates/internal/repository/sqlstore"
	"gstrates/internal/resolver"
	"gstrates/internal/service"
	"gstrates/internal/storage/local"
	s3storage "gstrates/internal/storage/s3"
)

// App holds the wired service graph.
type App struct {
	DB        *sqlx.DB
	Catalogue port.RateCatalogue
	Metrics   *metrics.Collector
	Ingest    service.IngestService
	Rates     service.RateService
	Export    service.ExportService
	Tokens    service.TokenService
}

// New opens and migrates the database, then builds every service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := sqlstore.NewDB(&cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := sqlstore.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	a, err := build(ctx, cfg, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg *config.Config, db *sqlx.DB) (*App, error) {
	// Initialize repositories
	catalogueRepo := sqlstore.NewRateCatalogueRepo(db)
	historyRepo := sqlstore.NewRateHistoryRepo(db)
	calcLogRepo := sqlstore.NewCalculationLogRepo(db)

	// Initialize storage
	storage, bucket, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pol, err := policy.Load(cfg.Resolver.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	res := resolver.New(nil, pol, resolver.Options{
		TierSwitch: cfg.Resolver.TierSwitch,
		Accept:     cfg.Resolver.AcceptThreshold,
		TokenBonus: cfg.Resolver.TokenBonus,
		MinOverlap: cfg.Resolver.MinOverlap,
		TopK:       cfg.Resolver.TopK,
	})
	collector := metrics.New(catalogueRepo)

	// Initialize services
	ingestSvc := service.NewIngestService(
		catalogueRepo,
		reconcile.New(catalogueRepo, pol),
		normalize.New(cfg.Ingest.MaxKeywords),
		storage,
		collector,
		&cfg.Ingest,
		bucket,
	)
	rateSvc := service.NewRateService(catalogueRepo, historyRepo, calcLogRepo, res, collector, cfg.Tax.SplitRate)

	zap.L().Info("app.New: services ready",
		zap.String("db_driver", cfg.DB.Driver),
		zap.String("storage", cfg.Storage.Provider),
		zap.Int("policy_rules", len(pol.Rules)))

	return &App{
		DB:        db,
		Catalogue: catalogueRepo,
		Metrics:   collector,
		Ingest:    ingestSvc,
		Rates:     rateSvc,
		Export:    service.NewExportService(catalogueRepo),
		Tokens:    service.NewTokenService(&cfg.Auth),
	}, nil
}

func newStorage(ctx context.Context, cfg *config.Config) (port.ObjectStorage, string, error) {
	switch cfg.Storage.Provider {
	case "s3":
		client, err := s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return nil, "", fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		return client, cfg.S3.Bucket, nil
	case "local":
		store, err := local.NewLocalStore(cfg.Storage.LocalDir)
		if err != nil {
			return nil, "", fmt.Errorf("failed to initialize local storage: %w", err)
		}
		return store, "", nil
	case "", "none":
		return nil, "", nil
	default:
		return nil, "", fmt.Errorf("unsupported storage provider %q", cfg.Storage.Provider)
	}
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}
