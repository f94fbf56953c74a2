package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ando-storefront/internal/config"
	"ando-storefront/internal/db"
	"ando-storefront/internal/events"
	"ando-storefront/internal/httpserver"
	cartrepo "ando-storefront/internal/repository/cart"
	customerrepo "ando-storefront/internal/repository/customer"
	discountrepo "ando-storefront/internal/repository/discount"
	favoritesrepo "ando-storefront/internal/repository/favorites"
	orderrepo "ando-storefront/internal/repository/order"
	promorepo "ando-storefront/internal/repository/promo"
	tokenrepo "ando-storefront/internal/repository/token"
	customersvc "ando-storefront/internal/service/customer"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConnIdle, cfg.DBMaxConnLifetime)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	customerRepo := customerrepo.NewPostgres(dbpool)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	cartRepo := cartrepo.NewPostgres(dbpool)
	favoritesRepo := favoritesrepo.NewPostgres(dbpool)
	discountRepo := discountrepo.NewPostgres(dbpool)
	promoRepo := promorepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool)
	customerService := customersvc.New(customerRepo, discountRepo, tokenRepo)

	deps := httpserver.Deps{
		CustomerSvc:   customerService,
		CartRepo:      cartRepo,
		FavoritesRepo: favoritesRepo,
		DiscountRepo:  discountRepo,
		PromoRepo:     promoRepo,
		OrderRepo:     orderRepo,
		RetryAttempts: cfg.RetryAttempts,
		RetryBackoff:  cfg.RetryBackoff,
		DeliveryFee:   cfg.DeliveryFeeCents,
	}

	if cfg.RabbitURL != "" {
		conn := events.MustDialRabbit(cfg.RabbitURL)
		defer conn.Close()

		publisher, err := events.NewPublisher(conn)
		if err != nil {
			logger.Fatalf("init publisher: %v", err)
		}
		defer publisher.Close()
		deps.Publisher = publisher

		if err := events.StartOrderCompletedConsumer(ctx, conn, discountRepo, logger); err != nil {
			logger.Fatalf("start order.completed consumer: %v", err)
		}
	} else {
		logger.Printf("RABBITMQ_URL not set, order events disabled")
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, deps)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
