package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/blob"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/shop-service-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/profile"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/sequence"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/social"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("error", "shop-service")
		bootLogger.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.LogLevel, cfg.ServiceName)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("shop-service stopped")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			return err
		}
	}

	blobs, err := blob.NewFSStore(cfg.BlobDir, cfg.BlobBaseURL)
	if err != nil {
		return err
	}

	serverMetrics := metrics.NewServerMetrics()

	catalogRepo := catalog.NewPostgresRepository(pool)
	cartRepo := cart.NewPostgresRepository(pool)
	orderRepo := order.NewPostgresRepository(pool)
	tokens := auth.NewTokenStore(pool)

	// --- AMQP ---
	var publisher checkout.Publisher
	if cfg.PublishEvents {
		conn, err := events.Dial(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		p, err := events.NewPublisher(conn, sequence.NewRepository(pool))
		if err != nil {
			return err
		}
		defer func() {
			if err := p.Close(); err != nil {
				logger.Warn().Err(err).Msg("publisher close")
			}
		}()
		publisher = p
	} else {
		logger.Info().Msg("event publishing disabled")
	}

	engine := checkout.NewEngine(pool, cartRepo, orderRepo, publisher, serverMetrics, logger)

	// --- HTTP ---
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:         logger,
		ServiceName:    cfg.ServiceName,
		Metrics:        serverMetrics,
		Accounts:       tokens,
		Catalog:        catalogRepo,
		Images:         catalog.NewService(catalogRepo, blobs),
		Social:         social.NewPostgresRepository(pool),
		Carts:          cartRepo,
		Orders:         orderRepo,
		Checkout:       engine,
		Profiles:       profile.NewPostgresRepository(pool),
		Blobs:          blobs,
		BlobBaseURL:    cfg.BlobBaseURL,
		RequestTimeout: cfg.RequestTimeout,
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORSOrigins:    cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
	logger.Info().Msg("shutdown complete")
	return nil
}
