package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agridash-backend/internal/auth"
	"agridash-backend/internal/cache"
	"agridash-backend/internal/config"
	"agridash-backend/internal/database"
	"agridash-backend/internal/db"
	"agridash-backend/internal/handlers"
	"agridash-backend/internal/health"
	h "agridash-backend/internal/http"
	"agridash-backend/internal/middleware"
	"agridash-backend/internal/monitoring"
	"agridash-backend/internal/repositories"
	"agridash-backend/internal/services"
)

func main() {
	var (
		migrateOnly = flag.Bool("migrate", false, "run database migrations and exit")
		portFlag    = flag.Int("port", 0, "override server port")
	)
	flag.Parse()

	cfg := config.Load()
	if *portFlag > 0 {
		cfg.Server.Port = *portFlag
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Fail fast if the database is unreachable at boot
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pool.Ping(ctx); err != nil {
			cancel()
			log.Fatalf("database unreachable: %v", err)
		}
		cancel()
	}

	migrator := database.NewMigrator(pool)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := migrator.RunMigrations(ctx); err != nil {
			cancel()
			log.Fatalf("migrations failed: %v", err)
		}
		cancel()
	}
	if *migrateOnly {
		log.Println("Migrations complete, exiting (-migrate)")
		os.Exit(0)
	}

	redisCache := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisCache.Close()

	jwtManager := auth.NewJWTManager(cfg)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	stockRepo := repositories.NewStockRepository(pool)
	saleRepo := repositories.NewSaleRepository(pool)
	notificationRepo := repositories.NewNotificationRepository(pool)

	// Services
	userService := services.NewUserService(userRepo, jwtManager)
	stockService := services.NewStockService(stockRepo, redisCache)
	notificationService := services.NewNotificationService(notificationRepo, redisCache)
	saleService := services.NewSaleService(saleRepo, stockService, notificationService)
	reportService := services.NewReportService(saleService)

	// Cross-instance feed fan-out: peer mutations arrive over Redis pub/sub
	// and refresh this instance's websocket subscribers too
	feedCtx, feedCancel := context.WithCancel(context.Background())
	defer feedCancel()
	go notificationService.ListenPeerEvents(feedCtx, redisCache.SubscribeNotificationEvents(feedCtx))

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	stockHandler := handlers.NewStockHandler(stockService, redisCache)
	saleHandler := handlers.NewSaleHandler(saleService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, jwtManager)
	reportHandler := handlers.NewReportHandler(reportService)

	healthChecker := health.NewHealthChecker(pool, redisCache)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)

	router := h.NewRouter(
		authHandler,
		stockHandler,
		saleHandler,
		notificationHandler,
		reportHandler,
		healthHandler,
		authMiddleware,
	)

	corsHandler := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsHandler(router)))

	// Optional ops dashboard on its own port
	if cfg.Monitoring.Enabled {
		ms := monitoring.NewMonitoringServer(pool, cfg.Monitoring.Port)
		go ms.Start()
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
