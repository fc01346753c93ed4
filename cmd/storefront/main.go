package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/cart"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/catalog"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/checkout"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/config"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/coupon"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/db"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/events"
	storefrontHttp "github.com/vasiliy-maslov/vastrika-storefront/internal/handler/http"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/identity"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/kv"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/order"
)

const (
	eventQueueSize       = 256
	eventDeliveryTimeout = 5 * time.Second
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogger(cfg)

	log.Info().Str("storage", cfg.Storage).Msg("Storefront starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer closeStore()

	publisher := newPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close event publisher")
		}
	}()

	seed, err := catalog.Seed()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read catalogue seed")
	}
	productRepo, err := catalog.NewRepository(ctx, store, nil, seed)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load products")
	}
	orderRepo, err := order.NewRepository(ctx, store, nil, order.DemoOrders())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load orders")
	}
	couponRepo, err := coupon.NewRepository(ctx, store, nil, coupon.DefaultCoupons())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load coupons")
	}

	shoppingCart := cart.New()
	session := identity.NewSession()
	catalogSvc := catalog.NewService(productRepo, shoppingCart)
	orderSvc := order.NewService(orderRepo, publisher)
	couponSvc := coupon.NewService(couponRepo)
	gateway := checkout.NewSimulatedGateway(cfg.Checkout.Delay, cfg.Checkout.FailureRate)
	flow := checkout.NewFlow(shoppingCart, orderSvc, session, gateway)

	router := storefrontHttp.NewRouter(storefrontHttp.Handlers{
		Products: storefrontHttp.NewProductHandler(catalogSvc),
		Cart:     storefrontHttp.NewCartHandler(shoppingCart, catalogSvc),
		Checkout: storefrontHttp.NewCheckoutHandler(flow),
		Orders:   storefrontHttp.NewOrderHandler(orderSvc, session),
		Coupons:  storefrontHttp.NewCouponHandler(couponSvc),
		Session:  storefrontHttp.NewSessionHandler(session),
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10*time.Second + cfg.Checkout.Delay,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not listen on %s: %w", cfg.App.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
	}

	log.Info().Msg("Storefront stopped gracefully.")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.IsDevelopment() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	log.Logger = log.With().Str("service", cfg.App.Name).Logger()
}

func openStore(ctx context.Context, cfg *config.Config) (kv.Store, func(), error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		if cfg.Postgres.Migrate {
			if err := db.Migrate(cfg.Postgres); err != nil {
				return nil, nil, err
			}
		}
		pg, err := db.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return kv.NewPostgresStore(pg.Pool), pg.Close, nil

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
		closeClient := func() {
			if err := client.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close redis client")
			}
		}
		return kv.NewRedisStore(client, cfg.Redis.KeyPrefix), closeClient, nil

	default:
		return kv.NewMemoryStore(), func() {}, nil
	}
}

func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.Kafka.Enabled() {
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("Publishing order events to Kafka")
		return events.NewAsyncPublisher(
			events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix),
			eventQueueSize,
			eventDeliveryTimeout,
		)
	}
	return events.NewLogPublisher(log.Logger)
}
