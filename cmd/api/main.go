package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"marketplace-backend/config"
	"marketplace-backend/internal/delivery/http/middleware"
	v1 "marketplace-backend/internal/delivery/http/v1"
	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/infrastructure/cache"
	"marketplace-backend/internal/infrastructure/events"
	"marketplace-backend/internal/infrastructure/lock"
	"marketplace-backend/internal/repository/postgres"
	"marketplace-backend/internal/usecase"
	"marketplace-backend/internal/workflow"
	pkgcache "marketplace-backend/pkg/cache"
	"marketplace-backend/pkg/logger"
	"marketplace-backend/pkg/storage"
	"marketplace-backend/pkg/utils"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const serviceName = "marketplace-api"

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	utils.SetSecret(cfg.JWTSecret)

	ctx := context.Background()

	pool, err := postgres.NewPgxPool(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("Connected to PostgreSQL")

	if cfg.ApplySchema {
		if err := postgres.ApplySchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply schema")
		}
	}

	// Repositories
	orderRepo := postgres.NewOrderRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	sellerRepo := postgres.NewSellerRepository(pool)
	withdrawRepo := postgres.NewWithdrawRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	contentRepo := postgres.NewContentRepository(pool)
	historyRepo := postgres.NewHistoryRepository(pool)
	txManager := postgres.NewTransactionManager(pool)

	// Default expiration 30m, cleanup every 60m
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)
	loader := pkgcache.NewLoader(memCache)

	var locker workflow.Locker = workflow.NewMemoryLocker()
	if cfg.RedisAddr != "" {
		rdb := lock.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, "lock:")
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis action locks")
	}

	hub := events.NewHub(cfg.AllowedOrigin)
	defer hub.Close()
	publisher := events.Fanout{hub}
	if cfg.AMQPURL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
		}
		defer rabbit.Close()
		publisher = append(publisher, rabbit)
	}

	store, err := storage.New(ctx, storage.Options{
		Driver:        cfg.StorageDriver,
		Endpoint:      cfg.S3Endpoint,
		Region:        cfg.S3Region,
		AccessKeyID:   cfg.S3AccessKeyID,
		AccessSecret:  cfg.S3AccessSecret,
		Bucket:        cfg.S3Bucket,
		PublicURL:     cfg.S3PublicURL,
		LocalDir:      cfg.LocalUploadDir,
		LocalURL:      cfg.LocalUploadURL,
		UploadTimeout: cfg.UploadTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	policy := domain.ParseStatusPolicy(cfg.OrderStatusPolicy)

	// --- Modules ---
	orderUC := usecase.NewOrderUsecase(orderRepo, productRepo, sellerRepo, historyRepo, txManager, loader, usecase.OrderConfig{
		Policy:      policy,
		EntityTTL:   cfg.CacheEntityTTL,
		ShippingFee: decimal.NewFromInt(cfg.ShippingFee),
	})
	statsUC := usecase.NewStatsUsecase(orderRepo, sellerRepo, withdrawRepo, reportRepo, loader, policy, cfg.CacheStatsTTL)
	sellerUC := usecase.NewSellerUsecase(sellerRepo, historyRepo, txManager, store, loader, cfg.CacheEntityTTL, cfg.PresignExpiry)
	withdrawUC := usecase.NewWithdrawUsecase(withdrawRepo, historyRepo, txManager, loader, cfg.VietQRBaseURL, cfg.CacheEntityTTL, cfg.CacheQRTTL)
	reportUC := usecase.NewReportUsecase(reportRepo, sellerRepo, historyRepo, txManager, loader, cfg.CacheEntityTTL)
	productUC := usecase.NewProductUsecase(productRepo, orderRepo, sellerRepo, txManager)
	contentUC := usecase.NewContentUsecase(contentRepo, loader, cfg.CacheEntityTTL)
	uploadUC := usecase.NewUploadUsecase(store)

	engine := workflow.NewEngine(locker, cfg.ActionLockTTL, loader.Cache(), publisher)
	engine.Register(domain.EntityOrder, orderUC.OrderHandler())
	engine.Register(domain.EntityCombo, orderUC.ComboHandler())
	engine.Register(domain.EntitySeller, sellerUC)
	engine.Register(domain.EntityWithdrawal, withdrawUC)
	engine.Register(domain.EntityReport, reportUC)

	mux := http.NewServeMux()
	v1.RegisterRoutes(mux, v1.Handlers{
		Action:   v1.NewActionHandler(engine),
		Config:   v1.NewConfigHandler(memCache, policy),
		Content:  v1.NewContentHandler(contentUC),
		Order:    v1.NewOrderHandler(orderUC, statsUC, engine),
		Seller:   v1.NewSellerHandler(sellerUC, engine),
		Withdraw: v1.NewWithdrawHandler(withdrawUC, engine),
		Report:   v1.NewReportHandler(reportUC, engine),
		Product:  v1.NewProductHandler(productUC),
		Upload:   v1.NewUploadHandler(uploadUC, cfg.MaxUploadSizeMB),
		Events:   hub,
		Health: func(w http.ResponseWriter, r *http.Request) {
			pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := pool.Ping(pingCtx); err != nil {
				utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "db": "unreachable"})
				return
			}
			utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "connected"})
		},
	})

	if local, ok := store.(*storage.LocalStorage); ok {
		mountLocalUploads(mux, cfg.LocalUploadURL, local.Dir())
	}

	// idle callers are dropped after 3 minutes
	rateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, 3*time.Minute)

	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = middleware.Compress(handler)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()
	logger.ServiceStart(serviceName, "v1", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	logger.ServiceStop(serviceName)
}

// mountLocalUploads serves the local upload dir. Identity documents stay admin-only.
func mountLocalUploads(mux *http.ServeMux, prefix, dir string) {
	prefix = "/" + strings.Trim(prefix, "/") + "/"
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	private := middleware.AuthMiddleware(middleware.AdminMiddleware(files))

	mux.Handle("GET "+prefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(strings.TrimPrefix(r.URL.Path, prefix), usecase.FolderIdentity+"/") {
			private.ServeHTTP(w, r)
			return
		}
		files.ServeHTTP(w, r)
	}))
}
