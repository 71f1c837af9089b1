package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	_ "paycompliance/api/swagger" // swagger docs
	"paycompliance/internal/apperror"
	"paycompliance/internal/config"
	"paycompliance/internal/database"
	"paycompliance/internal/handler"
	"paycompliance/internal/messaging"
	"paycompliance/internal/middleware"
	"paycompliance/internal/payroll"
	"paycompliance/internal/repository"
	"paycompliance/internal/service"
	"paycompliance/internal/taxtable"
	"paycompliance/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// @title           Payroll & Overtime Compliance API
// @version         1.0
// @description     Gross-to-net payroll for multiple jurisdictions and an overtime request workflow with compliance caps.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	apperror.Init()

	registry, err := taxtable.Load(taxtable.SourceFor(cfg.TaxTablesDir))
	if err != nil {
		logger.Fatal("tax tables failed to load", zap.Error(err))
	}
	if err := registry.RequirePayroll(cfg.DefaultCountry, cfg.DefaultTaxYear); err != nil {
		logger.Fatal("default jurisdiction is not configured",
			zap.String("country", cfg.DefaultCountry),
			zap.Int("year", cfg.DefaultTaxYear),
			zap.Error(err),
		)
	}
	_, source := registry.LoadedAt()
	logger.Info("tax tables loaded", zap.String("source", source), zap.Int("tables", len(registry.Keys())))

	db, err := database.NewConnection(cfg.DSN(), logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}
	logger.Info("connected to PostgreSQL")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Notification fan-out
	wsHub := websocket.NewHub(logger)
	go wsHub.Run(ctx)
	notifiers := service.MultiNotifier{wsHub}

	if len(cfg.KafkaBrokers) > 0 {
		writer := messaging.NewWriter(cfg.KafkaBrokers)
		defer writer.Close()
		notifiers = append(notifiers, messaging.NewKafkaNotifier(writer, cfg.KafkaTopic, logger))
		logger.Info("kafka notifier enabled", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	rdb := newRedis(ctx, cfg, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	// Repository -> Service -> Handler
	txManager := repository.NewTransactionManager(db)
	overtimeRepo := repository.NewOvertimeRequestRepository(db)
	profileRepo := repository.NewEmployeeProfileRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	engine := payroll.NewEngine(registry)
	overtimeService := service.NewOvertimeService(txManager, overtimeRepo, profileRepo, auditRepo, registry, notifiers, logger)
	payrollService := service.NewPayrollService(engine, profileRepo, overtimeService, logger)
	taxTableService := service.NewTaxTableService(registry, auditRepo, logger)
	auditService := service.NewAuditService(auditRepo)

	auth := middleware.NewAuthenticator(cfg.Secret())

	overtimeHandler := handler.NewOvertimeHandler(overtimeService, auth, middleware.Idempotency(rdb, cfg.IdempotencyTTL, logger)).
		WithUserRateLimit(middleware.RateLimitByUser(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))
	payrollHandler := handler.NewPayrollHandler(payrollService, auth)
	taxTableHandler := handler.NewTaxTableHandler(taxTableService, auth)
	auditHandler := handler.NewAuditHandler(auditService, auth)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.IdempotencyHeader, middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.ContextLogger(logger))
	router.Use(middleware.RateLimitByIP(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, auth, c)
	})

	api := router.Group("")
	overtimeHandler.RegisterRoutes(api)
	payrollHandler.RegisterRoutes(api)
	taxTableHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	runServer(ctx, router, serverConfig{
		Port:         cfg.Port,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, logger)
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// newRedis returns nil when Redis is not configured or unreachable; the
// idempotency middleware then passes requests straight through.
func newRedis(ctx context.Context, cfg config.Config, logger *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, idempotency disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = rdb.Close()
		return nil
	}
	logger.Info("redis connected", zap.String("addr", cfg.RedisAddr))
	return rdb
}
