package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/orders-service/internal/auth"
	"github.com/vasiliy-maslov/orders-service/internal/cache"
	"github.com/vasiliy-maslov/orders-service/internal/config"
	"github.com/vasiliy-maslov/orders-service/internal/db"
	"github.com/vasiliy-maslov/orders-service/internal/handler"
	"github.com/vasiliy-maslov/orders-service/internal/handler/middleware"
	"github.com/vasiliy-maslov/orders-service/internal/lock"
	"github.com/vasiliy-maslov/orders-service/internal/port"
	"github.com/vasiliy-maslov/orders-service/internal/repository"
	"github.com/vasiliy-maslov/orders-service/internal/service"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "orders-service").Logger()

	log.Info().Msg("Orders service starting...")

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	pg, err := db.New(ctx, cfg.Postgres)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	redisClient, err := db.NewRedis(ctx, cfg.Redis)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close redis client")
		}
	}()

	newUnitOfWork := func() port.UnitOfWork { return repository.NewUnitOfWork(pg.Pool) }
	locker := lock.NewRedisLocker(redisClient)
	readCache := cache.NewRedisCache(redisClient)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	orderSvc := service.NewOrderService(newUnitOfWork, locker, readCache)
	productSvc := service.NewProductService(newUnitOfWork, readCache)
	customerSvc := service.NewCustomerService(newUnitOfWork, tokens)

	orderHandler := handler.NewOrderHandler(orderSvc)
	productHandler := handler.NewProductHandler(productSvc)
	customerHandler := handler.NewCustomerHandler(customerSvc)
	authHandler := handler.NewAuthHandler(customerSvc, tokens)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Idempotency(readCache))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	customerHandler.RegisterPublicRoutes(router)
	productHandler.RegisterPublicRoutes(router)
	authHandler.RegisterRoutes(router)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.Auth(tokens))
		orderHandler.RegisterRoutes(protected)
		productHandler.RegisterRoutes(protected)
		customerHandler.RegisterRoutes(protected)
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}

	log.Info().Msg("Orders service stopped gracefully.")
}
