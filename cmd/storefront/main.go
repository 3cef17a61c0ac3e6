package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/watchworks/storefront/internal/cards"
	"github.com/watchworks/storefront/internal/cart"
	"github.com/watchworks/storefront/internal/catalog"
	"github.com/watchworks/storefront/internal/chat"
	"github.com/watchworks/storefront/internal/checkout"
	"github.com/watchworks/storefront/internal/httpx"
	"github.com/watchworks/storefront/internal/identity"
	"github.com/watchworks/storefront/internal/media"
	"github.com/watchworks/storefront/internal/orders"
	"github.com/watchworks/storefront/internal/pkg/cache"
	"github.com/watchworks/storefront/internal/pkg/config"
	"github.com/watchworks/storefront/internal/pkg/telemetry"
	"github.com/watchworks/storefront/internal/storage/sqlite"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	telemetry.InitLogger()

	ctx := context.Background()
	shutdownTracer, err := telemetry.SetupTracer(ctx, "storefront")
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer shutdownTracer(context.Background())

	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var catalogCache cache.Cache
	if cfg.RedisAddr != "" {
		catalogCache = cache.NewRedisCache(cfg.RedisAddr, "storefront")
	}

	catalogService := catalog.NewService(catalog.NewSQLRepository(db), catalogCache)
	cartService := cart.NewService(cart.NewSQLRepository(db))
	cardService := cards.NewService(cards.NewSQLRepository(db))
	orchestrator := checkout.NewTxOrchestrator(db)
	orderRepo := orders.NewSQLRepository(db)

	var chatClient *chat.Client
	if cfg.ChatEndpoint != "" {
		chatClient = chat.NewClient(cfg.ChatEndpoint, cfg.ChatAPIKey)
	}

	var uploader *media.Uploader
	if cfg.MediaUploadURL != "" {
		uploader = media.NewUploader(cfg.MediaUploadURL)
	}

	handler := httpx.NewHandler(
		catalogService, cartService, cardService, orchestrator, orderRepo, chatClient, uploader)
	router := httpx.NewRouter(handler, identity.BearerResolver{}, identity.NewAllowListPolicy(cfg.AdminUsers))

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		slog.Info("storefront listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
