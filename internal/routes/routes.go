package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-route/internal/authz"
	"service-route/internal/controllers"
	v1c "service-route/internal/integrations/1c"
	"service-route/internal/repositories"
	"service-route/internal/services"
	"service-route/pkg/config"
	"service-route/pkg/keylock"
	"service-route/pkg/middleware"
	"service-route/pkg/service"
)

type Loggers struct {
	Main    *zap.Logger
	Auth    *zap.Logger
	Request *zap.Logger
	Ledger  *zap.Logger
}

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, loggers *Loggers, cfg *config.Config) {
	ledgerClient := v1c.NewClient(cfg.Ledger.BaseURL, cfg.Ledger.APIKey, cfg.Ledger.Timeout, loggers.Ledger)
	initRouter(e, dbConn, redisClient, ledgerClient, jwtSvc, loggers, cfg)
}

func initRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	ledgerGateway services.LedgerGateway,
	jwtSvc service.JWTService,
	loggers *Loggers,
	cfg *config.Config,
) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	gatekeeper := authz.NewGatekeeper()
	authMW := middleware.NewAuthMiddleware(jwtSvc, gatekeeper, loggers.Auth)
	txManager := repositories.NewTxManager(dbConn)
	// Одна блокировка на процесс: все операции над заявкой идут через неё.
	locks := keylock.New()

	// --- 1. РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(dbConn, loggers.Main)
	requestRepo := repositories.NewRequestRepository(dbConn, loggers.Request)
	historyRepo := repositories.NewRequestHistoryRepository(dbConn, loggers.Request)
	reserveRepo := repositories.NewReservePartRepository(dbConn)
	customerRepo := repositories.NewCustomerRepository(dbConn)
	reportRepo := repositories.NewReportRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	// Цены и остатки для заказа и резерва читаются напрямую: синхронизация каталога
	// внешняя и кеш не сбрасывает. Кеш только для карточек в формах.
	catalogRepo := repositories.NewCatalogRepository(dbConn)
	cachedCatalogRepo := repositories.NewCachedCatalogRepository(catalogRepo, cacheRepo, cfg.Cache.CatalogTTL, loggers.Main)

	// --- 2. СЕРВИСЫ ---
	partsLedger := services.NewPartsLedger(reserveRepo, catalogRepo, cfg.Reservation.EnforceStock, loggers.Request)
	assembler := services.NewOrderAssembler(catalogRepo, customerRepo, ledgerGateway, cfg.Ledger.Timeout, loggers.Ledger)

	requestService := services.NewRequestService(txManager, requestRepo, reserveRepo, historyRepo, userRepo, catalogRepo, locks, loggers.Request)
	historyService := services.NewRequestHistoryService(historyRepo, loggers.Request)
	reservationService := services.NewReservationService(txManager, requestRepo, reserveRepo, historyRepo, partsLedger, locks, loggers.Request)
	completionService := services.NewCompletionService(txManager, requestRepo, historyRepo, partsLedger, assembler, locks, loggers.Request)
	paymentService := services.NewPaymentService(txManager, requestRepo, historyRepo, ledgerGateway, cfg.Ledger.Timeout, locks, loggers.Request)
	ledgerService := services.NewLedgerService(ledgerGateway, cfg.Ledger.Timeout, loggers.Ledger)
	reportService := services.NewReportService(reportRepo, loggers.Main)
	catalogService := services.NewCatalogService(userRepo, cachedCatalogRepo, loggers.Main)

	// --- 3. КОНТРОЛЛЕРЫ ---
	requestController := controllers.NewRequestController(requestService, historyService, gatekeeper, loggers.Request)
	reservePartController := controllers.NewReservePartController(reservationService, requestService, gatekeeper, loggers.Request)
	orderController := controllers.NewOrderController(completionService, paymentService, requestService, gatekeeper, loggers.Request)

	// --- 4. РОУТЕРЫ ---
	secureGroup := api.Group("", authMW.Auth)

	runRequestRouter(secureGroup, requestController, reservePartController, authMW)
	runOrderRouter(secureGroup, orderController, authMW)
	runReportRouter(secureGroup, reportService, loggers.Main, authMW)
	runLedgerRouter(secureGroup, ledgerService, loggers.Ledger, authMW)
	runCatalogRouter(secureGroup, catalogService, loggers.Main, authMW)

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
}
