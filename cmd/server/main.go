package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fairprice/fairprice-backend/internal/config"
	"github.com/fairprice/fairprice-backend/internal/db"
	"github.com/fairprice/fairprice-backend/internal/events"
	"github.com/fairprice/fairprice-backend/internal/goroutine"
	httpHandlers "github.com/fairprice/fairprice-backend/internal/http/handlers"
	httpRouter "github.com/fairprice/fairprice-backend/internal/http/router"
	"github.com/fairprice/fairprice-backend/internal/logger"
	"github.com/fairprice/fairprice-backend/internal/mail"
	"github.com/fairprice/fairprice-backend/internal/repository"
	"github.com/fairprice/fairprice-backend/internal/service"
	"github.com/fairprice/fairprice-backend/internal/storage"
	"github.com/fairprice/fairprice-backend/internal/ws"
)

// autoReleaseInterval определяет, как часто фоновой процесс проверяет
// заказы с истёкшим окном автоматического релиза escrow.
const autoReleaseInterval = 10 * time.Minute

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	imageStorage, err := storage.NewImageStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers)
	defer publisher.Close()
	mailer := mail.NewOutbox(publisher)

	// Репозитории.
	orderRepo := repository.NewOrderRepository(dbConn)
	returnRepo := repository.NewReturnRepository(dbConn)
	disputeRepo := repository.NewDisputeRepository(dbConn)
	negotiationRepo := repository.NewNegotiationRepository(dbConn)
	couponRepo := repository.NewCouponRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	supportRepo := repository.NewSupportRepository(dbConn)
	payoutRepo := repository.NewPayoutRepository(dbConn)
	catalogRepo := repository.NewCatalogRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub()
	go hub.Run()

	// Сервисы.
	notificationService := service.NewNotificationService(notificationRepo, hub)

	couponService, err := service.NewCouponService(couponRepo, notificationService, publisher, cfg.CouponTTL)
	if err != nil {
		log.Fatalf("main: не удалось собрать сервис купонов: %v", err)
	}

	orderService, err := service.NewOrderService(
		orderRepo,
		catalogRepo,
		negotiationRepo,
		couponService,
		payoutRepo,
		disputeRepo,
		notificationService,
		publisher,
		mailer,
		cfg.EscrowReleaseWindow,
	)
	if err != nil {
		log.Fatalf("main: не удалось собрать сервис заказов: %v", err)
	}

	returnService := service.NewReturnService(returnRepo, orderRepo, notificationService, publisher)
	disputeService := service.NewDisputeService(disputeRepo, orderRepo, catalogRepo, payoutRepo, notificationService, publisher, mailer)
	negotiationService := service.NewNegotiationService(negotiationRepo, catalogRepo, notificationService, publisher)
	supportService := service.NewSupportService(supportRepo, notificationService)
	catalogService := service.NewCatalogService(catalogRepo)
	seedService := service.NewSeedService(catalogRepo)

	// Фоновый релиз escrow по истечении окна подтверждения.
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		ticker := time.NewTicker(autoReleaseInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				released, err := orderService.ReleaseDueEscrows(ctx, time.Now())
				if err != nil {
					logger.Log.Errorf("main: автоматический релиз escrow: %v", err)
					continue
				}
				if released > 0 {
					logger.Log.Infof("main: автоматически отпущено средств по %d заказам", released)
				}
			}
		}
	})

	// HTTP хэндлеры.
	orderHandler := httpHandlers.NewOrderHandler(orderService)
	returnHandler := httpHandlers.NewReturnHandler(returnService)
	disputeHandler := httpHandlers.NewDisputeHandler(disputeService)
	negotiationHandler := httpHandlers.NewNegotiationHandler(negotiationService)
	couponHandler := httpHandlers.NewCouponHandler(couponService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	supportHandler := httpHandlers.NewSupportHandler(supportService)
	catalogHandler := httpHandlers.NewCatalogHandler(catalogService)
	mediaHandler := httpHandlers.NewMediaHandler(imageStorage)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)
	seedHandler := httpHandlers.NewSeedHandler(seedService)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		orderHandler,
		returnHandler,
		disputeHandler,
		negotiationHandler,
		couponHandler,
		notificationHandler,
		supportHandler,
		catalogHandler,
		mediaHandler,
		wsHandler,
		healthHandler,
		seedHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
