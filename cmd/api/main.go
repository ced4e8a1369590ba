package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "procurement/api/swagger" // swagger docs
	"procurement/internal/config"
	"procurement/internal/database"
	"procurement/internal/handler"
	"procurement/internal/logger"
	"procurement/internal/middleware"
	"procurement/internal/notify"
	"procurement/internal/repository"
	"procurement/internal/service"
	"procurement/internal/websocket"
	"procurement/internal/workflow"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Purchase Request Approval API
// @version         1.0
// @description     Dual-approval workflow for purchase requests with supplier quotes.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	envErr := godotenv.Load("configs/.env")

	cfg, err := config.Load()
	log := logger.Setup(os.Getenv("LOG_LEVEL"), true)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log = logger.Setup(cfg.LogLevel, !cfg.Release())
	if envErr != nil {
		log.Info().Msg("No configs/.env file found, using process environment")
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("Database connection failed")
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("Connected to database")

	// Purchase requests live under a single key, in the database or in redis
	var kv repository.KVStore
	switch cfg.StoreBackend {
	case config.StoreRedis:
		rdb, err := repository.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid REDIS_URL")
		}
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		kv = repository.NewRedisKVStore(rdb)
	default:
		kv = repository.NewGormKVStore(db)
	}
	log.Info().Str("backend", cfg.StoreBackend).Msg("Purchase request store selected")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log)
	go wsHub.Run(ctx)

	kafkaPublisher := notify.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
	if closer, ok := kafkaPublisher.(io.Closer); ok {
		defer closer.Close()
	}
	publisher := notify.NewMulti(wsHub, kafkaPublisher)

	// Set up dependencies (Repository -> Service -> Handler)
	secret := []byte(cfg.JWTSecret)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	userService := service.NewUserService(userRepo, txManager, secret, cfg.JWTTTL, log)
	auditService := service.NewAuditService(auditRepo)
	purchaseService := service.NewPurchaseService(
		workflow.NewStore(),
		repository.NewPurchaseRequestRepository(kv),
		auditRepo,
		publisher,
		log,
		cfg.DefaultCurrency,
	)

	if err := purchaseService.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load purchase requests")
	}
	if cfg.SeedDemoRequests {
		if err := purchaseService.SeedDemoRequests(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed demo purchase requests")
		}
	}
	if cfg.SeedDemoUsers {
		if err := userService.SeedDemoUsers(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed demo users")
		}
	}

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService, secret, cfg.JWTTTL, cfg.Release())
	purchaseHandler := handler.NewPurchaseRequestHandler(purchaseService, secret)
	auditHandler := handler.NewAuditHandler(auditService, secret)
	currencyHandler := handler.NewCurrencyHandler(secret)

	// Set up Gin Router
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, secret)
	})

	// API Routing
	userHandler.RegisterRoutes(router.Group(""))
	purchaseHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	currencyHandler.RegisterRoutes(router.Group(""))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	wsHub.Wait()
}
