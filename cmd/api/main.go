package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-inventory/internal/api"
	"github.com/sanosuguru/go-event-inventory/internal/api/handler"
	custommiddleware "github.com/sanosuguru/go-event-inventory/internal/api/middleware"
	"github.com/sanosuguru/go-event-inventory/internal/application"
	"github.com/sanosuguru/go-event-inventory/internal/config"
	"github.com/sanosuguru/go-event-inventory/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-event-inventory/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-inventory/internal/pkg/logger"
	"github.com/sanosuguru/go-event-inventory/internal/pkg/metrics"
	"github.com/sanosuguru/go-event-inventory/internal/worker"
)

func main() {
	cfg := config.Load()

	// ロガー初期化
	logger.Set(logger.NewLogger(cfg.Server.Env))
	defer logger.Sync()

	// メトリクス初期化
	m := metrics.Init()

	// PostgreSQL接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗しました", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	if cfg.Ledger.MigrationsPath != "" {
		if err := postgres.RunMigrations(db.DB, cfg.Ledger.MigrationsPath); err != nil {
			logger.Fatal("マイグレーションに失敗しました", zap.Error(err))
		}
	}

	// Redis接続
	redisClient, err := redisinfra.NewClient(&redisinfra.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("Redis接続に失敗しました", zap.Error(err))
	}
	defer redisClient.Close()

	// インフラ層
	lockManager := redisinfra.NewLockManager(redisClient)
	availabilityCache := redisinfra.NewAvailabilityCache(redisClient, cfg.Ledger.AvailabilityCacheTTL)
	txManager := postgres.NewTxManager(db)

	// リポジトリ
	eventRepo := postgres.NewEventRepository(db)
	tierRepo := postgres.NewTicketTypeRepository(db)
	regRepo := postgres.NewRegistrationRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)

	// アプリケーションサービス
	eventService := application.NewEventService(eventRepo, tierRepo)
	ledgerService := application.NewLedgerService(eventRepo, tierRepo, regRepo, availabilityCache)
	fulfillmentService := application.NewFulfillmentService(
		txManager, eventRepo, tierRepo, regRepo, ticketRepo,
		lockManager, availabilityCache, m,
	)

	// 支払いリマインダーワーカー起動
	reminder := worker.NewPendingPaymentReminder(
		ledgerService, m,
		cfg.Ledger.ReminderInterval,
		cfg.Ledger.PendingExpiry,
	)
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go reminder.Start(workerCtx)

	// Echoセットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	custommiddleware.SetupMiddleware(e)
	e.Use(custommiddleware.PrometheusMiddleware(m))

	// ルーティング
	eventHandler := handler.NewEventHandler(eventService)
	inventoryHandler := handler.NewInventoryHandler(ledgerService)
	fulfillmentHandler := handler.NewFulfillmentHandler(fulfillmentService)
	healthHandler := handler.NewHealthHandler()

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/events", eventHandler.Create)
	v1.GET("/events", eventHandler.List)
	v1.GET("/events/upcoming", eventHandler.ListUpcoming)
	v1.GET("/events/search", eventHandler.Search)
	v1.GET("/events/:id", eventHandler.GetByID)
	v1.PUT("/events/:id", eventHandler.Update)
	v1.DELETE("/events/:id", eventHandler.Delete)
	v1.POST("/events/:id/ticket-types", eventHandler.CreateTicketType)
	v1.GET("/events/:id/ticket-types", eventHandler.ListTicketTypes)

	v1.GET("/events/:id/capacity", inventoryHandler.AvailableCapacity)
	v1.GET("/events/:id/tickets-sold", inventoryHandler.TicketsSold)
	v1.GET("/events/:id/revenue", inventoryHandler.Revenue)
	v1.GET("/stats/categories", inventoryHandler.CategoryBreakdown)
	v1.GET("/stats/statuses", inventoryHandler.StatusBreakdown)
	v1.GET("/stats/top-events", inventoryHandler.TopEvents)
	v1.GET("/stats/pending", inventoryHandler.PendingOlderThan)
	v1.GET("/stats/payment-statuses", inventoryHandler.PaymentStatusByEvent)

	v1.POST("/registrations", fulfillmentHandler.Fulfill)
	v1.GET("/registrations/:id", fulfillmentHandler.GetRegistration)
	v1.POST("/registrations/:id/confirm", fulfillmentHandler.ConfirmPayment)
	v1.POST("/registrations/:id/fail", fulfillmentHandler.FailPayment)
	v1.POST("/registrations/:id/refund", fulfillmentHandler.RefundPayment)
	v1.GET("/registrations/:id/tickets", fulfillmentHandler.GetTickets)
	v1.POST("/tickets/:code/check-in", fulfillmentHandler.CheckIn)

	// Prometheusメトリクス（Basic認証付き）
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommiddleware.MetricsBasicAuth())

	// サーバー起動
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("サーバー起動", zap.String("addr", addr), zap.String("env", cfg.Server.Env))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	// ワーカー停止
	cancelWorker()
	reminder.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
