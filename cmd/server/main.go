package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/collabmatch/backend/config"
	httpDelivery "github.com/collabmatch/backend/internal/delivery/http"
	"github.com/collabmatch/backend/internal/domain"
	"github.com/collabmatch/backend/internal/infrastructure/ai"
	"github.com/collabmatch/backend/internal/infrastructure/cache"
	"github.com/collabmatch/backend/internal/infrastructure/notion"
	"github.com/collabmatch/backend/internal/infrastructure/storage"
	"github.com/collabmatch/backend/internal/infrastructure/tabular"
	"github.com/collabmatch/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg.Server.Environment, cfg.Server.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting collabmatch backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port))

	if err := os.MkdirAll(cfg.Data.UploadDir, 0o755); err != nil {
		logger.Fatal("failed to create upload directory", zap.Error(err))
	}

	// Initialize infrastructure dependencies
	store, err := storage.New(cfg.Data.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close()

	memoryCache := cache.NewMemoryCache()
	reader := tabular.NewReader(logger)
	notionClient := notion.NewClient(cfg.Notion.BaseURL, cfg.Notion.DatabaseID, cfg.Notion.APIVersion, logger)
	summarizer := ai.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, logger)

	if cfg.AI.APIKey == "" {
		logger.Warn("no AI api key configured, profile summaries are disabled")
	}

	// Initialize usecase layer
	ingestService := usecase.NewIngestService(reader, domain.DefaultCatalog(), logger)
	matchingService := usecase.NewMatchingService(usecase.MatchConfig{
		MinResolveScore:       cfg.Matching.MinResolveScore,
		ProductMatchThreshold: cfg.Matching.ProductMatchThreshold,
	}, logger)
	collabService := usecase.NewCollabService(ingestService, matchingService, memoryCache, cfg.Cache.TTL, logger)
	profileService := usecase.NewProfileService(store, store, collabService, notionClient, summarizer, memoryCache, cfg.Cache.TTL, logger)

	// Load whatever is already in the upload directory so the API is
	// usable right after a restart
	if snapshot, err := collabService.Reload(cfg.Data.UploadDir, nil); err != nil {
		if errors.Is(err, domain.ErrDataDirMissing) {
			logger.Info("no data directory yet, waiting for first upload")
		} else {
			logger.Warn("initial data load failed", zap.Error(err))
		}
	} else {
		logger.Info("initial data load complete",
			zap.Int("contacts", snapshot.IdentityCount()),
			zap.Int("files_loaded", snapshot.FilesLoaded),
			zap.Int("files_skipped", snapshot.FilesSkipped))
	}

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(collabService, profileService, cfg, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
