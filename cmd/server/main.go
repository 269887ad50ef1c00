package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nutridiary/backend/config"
	httpDelivery "github.com/nutridiary/backend/internal/delivery/http"
	"github.com/nutridiary/backend/internal/domain"
	"github.com/nutridiary/backend/internal/infrastructure/cache"
	"github.com/nutridiary/backend/internal/infrastructure/external"
	"github.com/nutridiary/backend/internal/infrastructure/gormstore"
	"github.com/nutridiary/backend/internal/infrastructure/memstore"
	"github.com/nutridiary/backend/internal/infrastructure/openfoodfacts"
	"github.com/nutridiary/backend/internal/infrastructure/rekognition"
	"github.com/nutridiary/backend/internal/infrastructure/seedfile"
	"github.com/nutridiary/backend/internal/infrastructure/sqlite"
	"github.com/nutridiary/backend/internal/infrastructure/usda"
	"github.com/nutridiary/backend/internal/usecase"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogging(cfg.Server)

	log.Info().Str("environment", cfg.Server.Environment).Str("port", cfg.Server.Port).
		Msg("starting NutriDiary backend v1.0.0")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func setupLogging(server config.ServerConfig) {
	zerolog.TimeFieldFormat = time.RFC3339
	if server.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
}

func run(ctx context.Context, cfg *config.Config) error {
	// Initialize infrastructure dependencies
	catalog, closeCatalog, err := openCatalog(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	defer closeCatalog()

	diaryStore, goalsStore, closeDiary, err := openDiary(cfg.Diary)
	if err != nil {
		return err
	}
	defer closeDiary()

	memoryCache := cache.NewMemoryCache(cache.Options{CleanupInterval: 10 * time.Minute})
	defer func() {
		stats := memoryCache.Stats()
		log.Info().Str("component", "cache").Int("entries", stats.Entries).Int64("hits", stats.Hits).
			Int64("misses", stats.Misses).Int64("evictions", stats.Evictions).Msg("cache closed")
		memoryCache.Close()
	}()

	externalDB := buildExternal(cfg.External, memoryCache)

	classifier, err := buildClassifier(ctx, cfg.Classifier)
	if err != nil {
		return err
	}

	// Initialize usecase layer
	units := usecase.NewUnitConverter(usecase.UnitConfig{
		DefaultPieceGrams: cfg.Units.DefaultPieceGrams,
		PortionGrams:      cfg.Units.PortionGrams,
	})

	var autofiller *usecase.AutoFiller
	if cfg.Autofill.Enabled {
		autofiller = usecase.NewAutoFiller(catalog, externalDB, usecase.NewCategoryDefaults(cfg.Autofill.FallbackCategory))
	}

	foods := usecase.NewFoodService(catalog, externalDB, autofiller, usecase.FoodServiceConfig{
		ExternalThreshold:  cfg.Search.ExternalThreshold,
		DefaultLimit:       cfg.Search.DefaultLimit,
		MaxLimit:           cfg.Search.MaxLimit,
		EnableAutoFill:     cfg.Autofill.Enabled,
		EnableDebugLogging: !cfg.Server.IsProduction(),
	})
	if err := seedCatalog(ctx, foods, cfg.Catalog.SeedFile); err != nil {
		return err
	}
	mapper := usecase.NewLabelMapper(foods, usecase.NewQueryPreprocessor(!cfg.Server.IsProduction()))

	handler := httpDelivery.NewHandler(httpDelivery.Dependencies{
		Foods:   foods,
		Diary:   usecase.NewDiaryService(diaryStore, foods, units),
		Goals:   usecase.NewGoalsService(goalsStore, diaryStore),
		Recipes: usecase.NewRecipeService(foods, units),
		Recognition: usecase.NewRecognitionService(classifier, mapper, usecase.RecognitionConfig{
			MaxLabels:     cfg.Classifier.MaxLabels,
			MinConfidence: cfg.Classifier.MinConfidence,
		}),
		Units: units,
	})

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openCatalog(ctx context.Context, cfg config.CatalogConfig) (domain.CatalogStore, func(), error) {
	if cfg.Type != "sqlite" {
		log.Info().Str("component", "catalog").Msg("using in-memory catalog")
		return memstore.NewCatalogStore(), func() {}, nil
	}

	store, err := sqlite.Open(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}
	log.Info().Str("component", "catalog").Str("path", cfg.SQLitePath).Msg("using sqlite catalog")
	return store, func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Str("component", "catalog").Msg("close catalog")
		}
	}, nil
}

// seedCatalog imports path into the shared catalog; an empty path is a no-op
func seedCatalog(ctx context.Context, foods *usecase.FoodService, path string) error {
	if path == "" {
		return nil
	}
	raws, err := seedfile.Load(path)
	if err != nil {
		return fmt.Errorf("load catalog seed: %w", err)
	}
	report, err := foods.ImportCatalog(ctx, raws)
	if err != nil {
		return fmt.Errorf("import catalog seed: %w", err)
	}
	log.Info().Str("component", "catalog").Str("path", path).Int("records", len(raws)).
		Int("imported", report.Imported).Msg("catalog seeded")
	return nil
}

func openDiary(cfg config.DiaryConfig) (domain.DiaryStore, domain.GoalsStore, func(), error) {
	if cfg.Type == "memory" {
		log.Info().Str("component", "diary").Msg("using in-memory diary")
		return memstore.NewDiaryStore(), memstore.NewGoalsStore(), func() {}, nil
	}

	dialect := gormstore.DialectSQLite
	if cfg.Type == "postgres" {
		dialect = gormstore.DialectPostgres
	}
	db, err := gormstore.Open(dialect, cfg.DSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open diary: %w", err)
	}
	log.Info().Str("component", "diary").Str("dialect", dialect).Msg("using gorm diary")
	return gormstore.NewDiaryStore(db), gormstore.NewGoalsStore(db), func() {
		if err := gormstore.Close(db); err != nil {
			log.Warn().Err(err).Str("component", "diary").Msg("close diary database")
		}
	}, nil
}

// buildExternal returns nil when no external database is configured
func buildExternal(cfg config.ExternalConfig, c domain.CacheRepository) domain.ExternalFoodDatabase {
	var databases []external.NamedDatabase
	switch cfg.Provider {
	case "openfoodfacts":
		databases = append(databases, external.NamedDatabase{
			Name: "openfoodfacts", Database: openfoodfacts.NewClient(cfg.OpenFoodFactsBaseURL, cfg.Timeout),
		})
	case "usda":
		databases = append(databases, external.NamedDatabase{
			Name: "usda", Database: usda.NewClient(cfg.USDAAPIKey, cfg.USDABaseURL, cfg.Timeout),
		})
	case "chain":
		databases = append(databases,
			external.NamedDatabase{Name: "openfoodfacts", Database: openfoodfacts.NewClient(cfg.OpenFoodFactsBaseURL, cfg.Timeout)},
			external.NamedDatabase{Name: "usda", Database: usda.NewClient(cfg.USDAAPIKey, cfg.USDABaseURL, cfg.Timeout)},
		)
	default:
		log.Info().Str("component", "external").Msg("external nutrition database disabled")
		return nil
	}

	log.Info().Str("component", "external").Str("provider", cfg.Provider).Dur("cache_ttl", cfg.CacheTTL).
		Msg("external nutrition database configured")
	return external.NewCached(external.NewChain(databases...), c, cfg.CacheTTL)
}

// buildClassifier returns a nil classifier when recognition is disabled
func buildClassifier(ctx context.Context, cfg config.ClassifierConfig) (domain.Classifier, error) {
	if cfg.Type != "rekognition" {
		return nil, nil
	}
	classifier, err := rekognition.NewClassifier(ctx, rekognition.Config{
		Region:        cfg.Region,
		MaxLabels:     cfg.MaxLabels,
		MinConfidence: cfg.MinConfidence,
	})
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}
	log.Info().Str("component", "recognition").Str("region", cfg.Region).Msg("rekognition classifier configured")
	return classifier, nil
}
