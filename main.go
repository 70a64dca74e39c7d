package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/egannguyen/go-bookstore-backend/internal/config"
	deliveryhttp "github.com/egannguyen/go-bookstore-backend/internal/delivery/http"
	"github.com/egannguyen/go-bookstore-backend/internal/entity"
	"github.com/egannguyen/go-bookstore-backend/internal/mailer"
	"github.com/egannguyen/go-bookstore-backend/internal/messaging"
	"github.com/egannguyen/go-bookstore-backend/internal/messaging/kafka"
	"github.com/egannguyen/go-bookstore-backend/internal/repository/postgres"
	"github.com/egannguyen/go-bookstore-backend/internal/service"
	"github.com/egannguyen/go-bookstore-backend/internal/storage"

	rediscache "github.com/egannguyen/go-bookstore-backend/internal/cache"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	cfg := config.Load()

	// --- Database ---
	db, err := postgres.InitDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to init database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// --- Repositories ---
	orderStore := postgres.NewOrderStore(db)
	bookRepo := postgres.NewBookRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	userRepo := postgres.NewUserRepository(db)
	historyRepo := postgres.NewHistoryRepository(db)
	commentRepo := postgres.NewCommentRepository(db)
	supportRepo := postgres.NewSupportRepository(db)
	analyticsRepo := postgres.NewAnalyticsRepository(db)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := seedCatalog(ctx, categoryRepo, bookRepo); err != nil {
		slog.Error("Failed to seed catalog", "err", err)
		os.Exit(1)
	}

	// --- Messaging ---
	publisher, subscriber := kafka.NewKafkaBroker(cfg.KafkaBrokers)

	// --- Cache ---
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	cache := rediscache.NewRedisCache(redisClient)

	// --- External services ---
	mail := mailer.NewSMTPMailer(cfg.SMTP)
	uploader, err := storage.NewMinioStorage(cfg.Storage)
	if err != nil {
		slog.Error("Failed to init object storage", "err", err)
		os.Exit(1)
	}

	// --- Services ---
	userSvc := service.NewUserService(userRepo)
	authSvc := service.NewAuthService(userRepo, cfg.Auth)
	bookSvc := service.NewBookService(bookRepo, categoryRepo)
	categorySvc := service.NewCategoryService(categoryRepo)
	orderSvc := service.NewOrderService(orderStore, publisher)
	historySvc := service.NewHistoryService(historyRepo)
	commentSvc := service.NewCommentService(commentRepo, historyRepo, publisher)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, cache, cfg.CacheTTL)
	paymentSvc := service.NewPaymentService(cfg.Payment)
	supportSvc := service.NewSupportService(supportRepo, mail)

	// --- HTTP API ---
	handler := deliveryhttp.NewHandler(
		authSvc, userSvc, bookSvc, categorySvc, orderSvc,
		historySvc, commentSvc, analyticsSvc, paymentSvc, supportSvc,
		uploader,
	)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: deliveryhttp.EnableCORS(mux),
	}

	// Consumer: order confirmations are logged for the fulfilment team feed.
	go subscriber.Consume(ctx, messaging.TopicOrdersPlaced, "bookstore-fulfilment",
		func(ctx context.Context, payload []byte) error {
			var event entity.OrderPlaced
			if err := json.Unmarshal(payload, &event); err != nil {
				return err
			}
			slog.Info("Order placed",
				"order_id", event.OrderID,
				"user_id", event.UserID,
				"total_price", event.TotalPrice,
				"lines", len(event.Lines))
			return nil
		})

	go func() {
		slog.Info("HTTP server starting", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown error", "err", err)
	}
}
