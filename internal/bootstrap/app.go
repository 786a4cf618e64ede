package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"cv-backend/internal/cvs"
	"cv-backend/internal/extract"
	"cv-backend/internal/llm"
	openai "cv-backend/internal/llm/openai"
	"cv-backend/internal/pipeline"
	"cv-backend/internal/queue"
	"cv-backend/internal/shared/config"
	"cv-backend/internal/shared/server"
	"cv-backend/internal/shared/storage/db"
	"cv-backend/internal/shared/storage/object"
	localstore "cv-backend/internal/shared/storage/object/local"
	s3store "cv-backend/internal/shared/storage/object/s3"
	"cv-backend/internal/shared/storage/photos"
)

// App holds shared dependencies for the API server and the queue worker.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Store     object.ObjectStore
	Photos    photos.PhotoStore
	Queue     queue.Client
	Repo      cvs.Repo
	LLM       llm.Client
	Processor *pipeline.Processor
	CVHandler *cvs.Handler

	// CVProcessor lets tests stand in for the real pipeline.
	CVProcessor CVProcessor
}

// CVProcessor runs the pipeline for a CV whose file is already in blob storage.
type CVProcessor interface {
	ProcessStored(ctx context.Context, cvID string) error
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:    app.Config,
		CVHandler: app.CVHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("CV_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	extract.ConfigureOCR(app.Config.OCRLanguage)

	var repo cvs.Repo
	if app.DB != nil {
		repo = &cvs.PGRepo{DB: app.DB}
	} else {
		repo = cvs.NewMemoryRepo()
	}

	app.Photos = photos.New(app.Store, app.Config.PhotoPrefix, strings.TrimSpace(os.Getenv("PHOTO_BASE_URL")))

	llmClient := llm.Client(llm.PlaceholderClient{})
	if app.Config.LLMEnabled && app.Config.LLMProvider == "openai" {
		openaiClient, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), app.Config.LLMModel)
		if err != nil {
			return err
		}
		llmClient = openaiClient
	}

	processor := &pipeline.Processor{
		Repo:       repo,
		Store:      app.Store,
		Photos:     app.Photos,
		LLM:        llmClient,
		LLMEnabled: app.Config.LLMEnabled,
		LLMConfig: llm.Config{
			Provider: app.Config.LLMProvider,
			Model:    app.Config.LLMModel,
			APIKey:   os.Getenv("OPENAI_API_KEY"),
		},
		ExtractionVersion: app.Config.ExtractionVer,
		TempDir:           app.Config.TempDir,
	}

	app.Repo = repo
	app.LLM = llmClient
	app.Processor = processor
	app.CVProcessor = processor

	var runner cvs.Runner = processor
	if app.Queue != nil {
		runner = &pipeline.Dispatcher{Queue: app.Queue, Local: processor}
	}
	app.CVHandler = cvs.NewHandler(repo, runner, app.Config.TempDir)
	return nil
}
