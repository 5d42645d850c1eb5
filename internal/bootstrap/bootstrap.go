// Package bootstrap provides dependency initialization for the cleaning pipeline.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/tanush/cleanspeech/internal/config"
	"github.com/tanush/cleanspeech/internal/gemini"
	"github.com/tanush/cleanspeech/internal/job"
	"github.com/tanush/cleanspeech/internal/media"
	"github.com/tanush/cleanspeech/internal/plan"
	"github.com/tanush/cleanspeech/internal/storage"
)

// Dependencies holds all initialized dependencies for the application.
type Dependencies struct {
	CleanService *job.CleanService
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	// Initialize storage
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize Gemini client, used for both transcription and filler
	// classification
	geminiClient, err := gemini.NewClient(
		gemini.WithAPIKey(cfg.GeminiAPIKey),
		gemini.WithModel(cfg.GeminiModel),
	)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	// Initialize media processor
	processor := media.NewFFmpegProcessor(cfg.FFmpegPath)

	// Initialize job repository
	repo := job.NewMemoryRepository()

	// Initialize the edit plan builder. With LLM fillers disabled the
	// builder runs on the rule-based classifier alone.
	var classifier plan.Classifier
	if cfg.LLMFillers {
		classifier = plan.NewLLMClassifier(geminiClient)
	} else {
		logger.Info("LLM filler classification disabled, using rules only")
	}
	builder := plan.NewBuilder(classifier, logger)

	svc := job.NewCleanService(
		repo,
		processor,
		geminiClient,
		builder,
		store,
		logger,
	)

	return &Dependencies{
		CleanService: svc,
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.TempDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("temp_dir", cfg.TempDir),
	)
	return localStore, nil
}
