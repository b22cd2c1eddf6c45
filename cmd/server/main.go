package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swipevault/internal/config"
	"swipevault/internal/embeddings"
	"swipevault/internal/middleware"
	"swipevault/internal/rerank"
	"swipevault/internal/routes"
	"swipevault/internal/services"
	"swipevault/internal/storage"
	"swipevault/internal/unfurl"
	"swipevault/migrations"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrateCommand()
		return
	}
	if len(os.Args) > 1 && os.Args[1] == "export" {
		runExportCommand(os.Args[2:])
		return
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.MustLoad()
	cfg.PrintConfig()

	log.Println("Initializing database connection...")
	config.InitDB()
	defer func() {
		log.Println("Closing database connection...")
		config.Disconnect()
		if config.GetRedisClient() != nil {
			config.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrations.RunAllMigrations(ctx, config.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	if cfg.Redis.Enabled {
		if err := config.InitRedis(); err != nil {
			log.Printf("Redis unavailable, rate limiting and time-preference caching fall back to in-process/no-cache mode: %v", err)
		}
	}

	gin.SetMode(cfg.Server.Mode)

	fetcher := unfurl.NewFetcher()
	embeddingProvider := newEmbeddingProvider(cfg)
	storageProvider := newStorageProvider(cfg)
	reranker := rerank.New(cfg.Reranker.Enabled, cfg.Reranker.ModelPath)
	timePrefCache := services.NewTimePreferenceCache()

	svc := &routes.Services{
		AuthService:       services.NewAuthService(cfg.Session.Secret),
		LinksService:      services.NewLinksService(),
		IngestService:     services.NewIngestService(fetcher, embeddingProvider, storageProvider),
		EngagementService: services.NewEngagementService(timePrefCache),
		FeedService:       services.NewFeedService(reranker, timePrefCache),
	}

	authMiddleware := middleware.NewAuthMiddleware(config.DB, cfg.Session.Secret)
	middleware.InitValidator()

	apiRouter := routes.NewAPIRouter(svc, authMiddleware, fetcher)

	router := gin.New()
	setupGlobalMiddleware(router, cfg)
	routes.SetupRoutes(router, apiRouter)

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("swipevault starting on %s (mode: %s)", cfg.GetServerAddr(), cfg.Server.Mode)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	setupGracefulShutdown(server, cfg)
}

// setupGlobalMiddleware configures global middleware for the application.
func setupGlobalMiddleware(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())

	if cfg.Monitoring.EnableRequestLog {
		router.Use(middleware.Logger())
	}

	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})
}

// newEmbeddingProvider selects the Bedrock-backed embedder/categorizer when
// an embedding provider key and an AWS region are configured, falling back
// to a no-op provider otherwise.
func newEmbeddingProvider(cfg *config.Config) embeddings.Provider {
	if cfg.Embedding.ProviderKey == "" || cfg.AWS.Region == "" {
		log.Println("No embedding provider key or AWS region configured, embeddings/categorization disabled (noop provider)")
		return embeddings.NoopProvider{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	provider, err := embeddings.NewBedrockProvider(ctx, cfg.AWS.Region)
	if err != nil {
		log.Printf("Bedrock provider unavailable, falling back to noop: %v", err)
		return embeddings.NoopProvider{}
	}
	return provider
}

// newStorageProvider constructs the S3 image-storage backend when enabled,
// leaving images inline as base64 otherwise.
func newStorageProvider(cfg *config.Config) storage.StorageProvider {
	if !cfg.Upload.UseS3 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	provider, err := storage.NewS3Provider(ctx, storage.StorageConfig{
		Provider:    "s3",
		Region:      cfg.AWS.Region,
		Bucket:      cfg.AWS.S3Bucket,
		MaxFileSize: cfg.Upload.MaxImageSizeBytes,
	})
	if err != nil {
		log.Printf("S3 storage unavailable, images will be kept inline: %v", err)
		return nil
	}
	return provider
}

// setupGracefulShutdown blocks until an interrupt or SIGTERM is received,
// then drains in-flight requests within the server's shutdown timeout.
func setupGracefulShutdown(server *http.Server, cfg *config.Config) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// runMigrateCommand runs all pending migrations and exits, used by
// `swipevault migrate` deploy hooks.
func runMigrateCommand() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.MustLoad()
	config.InitDB()
	defer config.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout+30*time.Second)
	defer cancel()

	if err := migrations.RunAllMigrations(ctx, config.DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed successfully")
}

// runExportCommand streams the training-dataset JSONL used to retrain the
// reranker, used by `swipevault export` offline/cron jobs.
func runExportCommand(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	days := fs.Int("days", 30, "how many days of ranking events to include")
	outPath := fs.String("out", "", "output file path (default: stdout)")
	fs.Parse(args)

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.MustLoad()
	config.InitDB()
	defer config.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("Failed to create export file: %v", err)
		}
		defer f.Close()
		out = f
	}

	exportService := services.NewExportService()
	count, err := exportService.WriteTrainingDataset(ctx, out, *days)
	if err != nil {
		log.Fatalf("Export failed after %d rows: %v", count, err)
	}
	log.Printf("Exported %d training rows", count)
}
