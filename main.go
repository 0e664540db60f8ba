package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mustafabeshara/Dashboard2-sub006/config"
	"github.com/Mustafabeshara/Dashboard2-sub006/handler"
	"github.com/Mustafabeshara/Dashboard2-sub006/middleware"
	"github.com/Mustafabeshara/Dashboard2-sub006/pkg/logger"
	"github.com/Mustafabeshara/Dashboard2-sub006/service"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Provider keys may live in a local .env during development
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	minioSvc, err := service.NewMinioService(&cfg.Minio)
	if err != nil {
		slog.Error("failed to initialize MINIO service", "error", err)
		os.Exit(1)
	}

	if err := minioSvc.EnsureBucket(context.Background()); err != nil {
		slog.Error("failed to ensure MINIO bucket", "error", err)
		os.Exit(1)
	}

	// Provider priority is fixed: the vision/PDF-capable provider first
	anthropic := service.NewAnthropicProvider(&cfg.Providers.Anthropic)
	openai := service.NewOpenAIProvider(&cfg.Providers.OpenAI)
	invoker := service.NewInvoker(anthropic, openai)

	for _, p := range invoker.Providers() {
		slog.Info("provider registered", "provider", p.Name(), "configured", p.IsConfigured())
	}

	store := service.NewDocumentStore(&cfg.Store)
	extractor := service.NewTenderExtractor(invoker, &cfg.Extraction)
	notifier := service.LogNotifier{}
	uploadSvc := service.NewUploadService(store, minioSvc, extractor, notifier, &cfg.Extraction)
	bulkSvc := service.NewBulkService(uploadSvc, &cfg.Extraction)
	commands := service.NewCommandManager(service.DefaultMaxHistory)

	authHandler := handler.NewAuthHandler(cfg)
	documentHandler := handler.NewDocumentHandler(store, uploadSvc, commands, &cfg.Extraction)
	extractHandler := handler.NewExtractHandler(store, uploadSvc, bulkSvc, commands)
	undoRedoHandler := handler.NewUndoRedoHandler(commands)
	providerHandler := handler.NewProviderHandler(invoker)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(corsMiddleware())
	router.Use(middleware.RateLimit(100, time.Minute))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		protected.POST("/documents/upload", documentHandler.Upload)
		protected.GET("/documents", documentHandler.List)
		protected.GET("/documents/:id", documentHandler.Get)
		protected.GET("/documents/:id/status", documentHandler.GetStatus)
		protected.DELETE("/documents/:id", documentHandler.Delete)
		protected.POST("/documents/:id/review", extractHandler.ApproveReview)

		protected.POST("/tenders/extract", extractHandler.ExtractTender)
		protected.POST("/tenders/extract/bulk", extractHandler.BulkExtract)

		protected.GET("/undo-redo", undoRedoHandler.GetStatus)
		protected.POST("/undo-redo", undoRedoHandler.Execute)
		protected.DELETE("/undo-redo", undoRedoHandler.ClearHistory)

		protected.GET("/providers/status", providerHandler.GetStatus)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
