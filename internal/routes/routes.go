package routes

import (
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"calibrify/internal/controllers"
	"calibrify/internal/repositories"
	"calibrify/internal/services"
	"calibrify/pkg/config"
	"calibrify/pkg/filestorage"
	"calibrify/pkg/middleware"
	"calibrify/pkg/service"
)

const healthCheckTimeout = 2 * time.Second

// Deps - внешние зависимости, которые создаёт main.
type Deps struct {
	DB          *pgxpool.Pool
	Redis       *redis.Client
	JWT         service.JWTService
	FileStorage filestorage.FileStorageInterface
	Registry    *prometheus.Registry
	Logger      *zap.Logger
	Config      *config.Config
}

func InitRouter(e *echo.Echo, deps Deps) {
	logger := deps.Logger
	cfg := deps.Config
	logger.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	loc := cfg.Location()
	clock := services.NewClock(loc)
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(deps.JWT, logger.Named("auth"))
	txManager := repositories.NewTxManager(deps.DB, logger.Named("tx"))
	cacheRepo := repositories.NewRedisCacheRepository(deps.Redis)
	domainMetrics := services.NewDomainMetrics(deps.Registry)

	// --- 1. РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(deps.DB, logger)
	equipmentRepo := repositories.NewEquipmentRepository(deps.DB, logger, loc)
	calibrationRepo := repositories.NewCalibrationRepository(deps.DB, logger, loc)
	maintenanceRepo := repositories.NewMaintenanceRepository(deps.DB, logger, loc)
	dashboardRepo := repositories.NewDashboardRepository(deps.DB, logger)
	reportRepo := repositories.NewReportRepository(deps.DB)

	// --- 2. СЕРВИСЫ ---
	base := services.NewBaseService(cacheRepo, logger)
	authService := services.NewAuthService(userRepo, cacheRepo, deps.JWT, cfg.Auth, logger.Named("auth"))
	userService := services.NewUserService(base, userRepo, logger)
	equipmentService := services.NewEquipmentService(base, txManager, equipmentRepo, calibrationRepo, maintenanceRepo, deps.FileStorage, clock, logger)
	equipmentImportService := services.NewEquipmentImportService(base, txManager, equipmentRepo, logger)
	calibrationService := services.NewCalibrationService(base, txManager, calibrationRepo, equipmentRepo, deps.FileStorage, domainMetrics, clock, logger)
	maintenanceService := services.NewMaintenanceService(base, txManager, maintenanceRepo, equipmentRepo, deps.FileStorage, domainMetrics, clock, logger)
	dashboardService := services.NewDashboardService(base, dashboardRepo, clock, cfg.Dashboard.CacheTTL, logger)
	reportService := services.NewReportService(reportRepo, clock, logger)
	healthService := services.NewHealthService(deps.DB, cacheRepo, healthCheckTimeout, logger)

	// --- 3. КОНТРОЛЛЕРЫ ---
	maxUpload := cfg.Storage.MaxUploadSizeMB
	authController := controllers.NewAuthController(authService, logger.Named("auth"))
	userController := controllers.NewUserController(userService, logger)
	equipmentController := controllers.NewEquipmentController(equipmentService, dashboardService, logger)
	equipmentImportController := controllers.NewEquipmentImportController(equipmentImportService, maxUpload, logger.Named("import"))
	calibrationController := controllers.NewCalibrationController(calibrationService, maxUpload, logger)
	maintenanceController := controllers.NewMaintenanceController(maintenanceService, maxUpload, logger)
	dashboardController := controllers.NewDashboardController(dashboardService, logger)
	reportController := controllers.NewReportController(reportService, clock, logger)
	healthController := controllers.NewHealthController(healthService)

	// --- 4. РОУТЕРЫ ---
	e.GET("/health", healthController.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, secureGroup, authController)
	runUserRouter(secureGroup, userController, authMW)
	runEquipmentRouter(secureGroup, equipmentController, equipmentImportController)
	runCalibrationRouter(secureGroup, calibrationController)
	runMaintenanceRouter(secureGroup, maintenanceController)
	runDashboardRouter(secureGroup, dashboardController)
	runReportRouter(secureGroup, reportController)

	logger.Info("INIT_ROUTER: Создание маршрутов завершено")
}
