package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/IBM/sarama"
	"golang.org/x/sync/errgroup"

	listingapp "flatfinder/internal/app/handlers/listings"
	"flatfinder/internal/app/middleware"
	appoutbox "flatfinder/internal/app/outbox"
	authsvc "flatfinder/internal/app/services/auth"
	"flatfinder/internal/app/uow"
	"flatfinder/internal/app/wiring"
	domainauth "flatfinder/internal/domain/auth"
	domainuser "flatfinder/internal/domain/user"
	"flatfinder/internal/infra/broker/kafka"
	rediscache "flatfinder/internal/infra/cache/redis"
	"flatfinder/internal/infra/config"
	mongostore "flatfinder/internal/infra/db/mongo"
	"flatfinder/internal/infra/db/postgres"
	ginserver "flatfinder/internal/infra/http/gin"
	"flatfinder/internal/infra/obs"
	"flatfinder/internal/infra/outbox"
	"flatfinder/internal/infra/security"
	"flatfinder/internal/infra/storage/memory"
	"flatfinder/internal/infra/storage/s3"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "flatfinder:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := obs.NewLogger(cfg.Env)

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer st.close()

	sessions, idempotency, closeCache, err := openCache(ctx, cfg, st, logger)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer closeCache()

	producer, closeProducer, err := openProducer(cfg, logger)
	if err != nil {
		return fmt.Errorf("kafka: %w", err)
	}
	defer closeProducer()

	photos, err := openPhotoStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("s3: %w", err)
	}

	auth := &authsvc.Service{
		Users:      st.users,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	if _, err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("provision admin: %w", err)
	}

	buses := wiring.Build(wiring.Deps{
		UoWFactory:  st.factory,
		Outbox:      st.outbox,
		Idempotency: idempotency,
		Photos:      photos,
		Location:    cfg.BookingLocation,
		Logger:      logger,
	})

	if path := cfg.ListingFixtures; path != "" {
		if err := loadFixtures(ctx, st.factory, st.outbox, path, cfg.BookingLocation, logger); err != nil {
			logger.Warn("listing fixtures load failed", "error", err, "path", path)
		}
	}

	server := ginserver.NewServer(
		ginserver.ServerConfig{Env: cfg.Env, Addr: cfg.HTTPAddr},
		obs.Middleware{Logger: logger},
		obs.HealthHandlers{Checks: map[string]obs.ReadyCheck{"storage": st.ping}},
		ginserver.Handlers{
			Auth:           ginserver.AuthHandler{Service: auth, Logger: logger},
			Listing:        ginserver.ListingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
			Availability:   ginserver.AvailabilityHandler{Commands: buses.Commands, Queries: buses.Queries, Location: cfg.BookingLocation, Logger: logger},
			Booking:        ginserver.BookingHandler{Commands: buses.Commands, Queries: buses.Queries, Location: cfg.BookingLocation, Logger: logger},
			Complaint:      ginserver.ComplaintHandler{Commands: buses.Commands, Logger: logger},
			Admin:          ginserver.AdminHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
			AuthMiddleware: ginserver.AuthMiddleware{Service: auth, Logger: logger}.Handle,
		},
	)

	relay := &outbox.Worker{
		Store:       st.relay,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
		Logger:      logger.With("component", "outbox"),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return relay.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
		return nil
	})
	err = g.Wait()
	logger.Info("HTTP server stopped")
	return err
}

type storage struct {
	factory uow.UoWFactory
	outbox  appoutbox.Writer
	relay   outbox.Store
	users   domainuser.Repository
	ping    obs.ReadyCheck
	close   func()
	mongoDB *mongostore.Client
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageMongo:
		client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			_ = client.Close(context.Background())
			return nil, err
		}
		store := mongostore.NewOutboxStore(client.DB)
		return &storage{
			factory: mongostore.Factory{DB: client.DB},
			outbox:  store,
			relay:   store,
			users:   mongostore.NewUserRepository(client.DB),
			ping:    client.Ping,
			close:   func() { _ = client.Close(context.Background()) },
			mongoDB: client,
		}, nil
	case config.StoragePostgres:
		if cfg.PostgresMigrate {
			if err := postgres.RunMigrations(cfg.PostgresURL, logger); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		store := postgres.NewOutboxStore(pool)
		return &storage{
			factory: postgres.Factory{Pool: pool},
			outbox:  store,
			relay:   store,
			users:   postgres.NewUserRepository(pool),
			ping:    pool.Ping,
			close:   pool.Close,
		}, nil
	default:
		logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return &storage{
			factory: store,
			outbox:  store,
			relay:   store,
			users:   memory.NewUserRepository(),
			ping:    store.Ping,
			close:   func() {},
		}, nil
	}
}

// openCache prefers Redis. Without it, idempotency records go to Mongo when
// that is the store and to memory otherwise.
func openCache(ctx context.Context, cfg config.Config, st *storage, logger *slog.Logger) (domainauth.SessionStore, middleware.IdempotencyStore, func(), error) {
	if cfg.RedisAddr != "" {
		client, err := rediscache.Open(ctx, rediscache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return nil, nil, nil, err
		}
		return rediscache.NewSessionStore(client, "flatfinder:sess"),
			rediscache.NewIdempotencyStore(client, "flatfinder:idem", cfg.IdempotencyTTL),
			func() { _ = client.Close() },
			nil
	}
	logger.Info("REDIS_ADDR not set; sessions are kept in memory")
	if st.mongoDB != nil {
		return memory.NewSessionStore(), mongostore.NewIdempotencyStore(st.mongoDB.DB), func() {}, nil
	}
	return memory.NewSessionStore(), memory.NewIdempotencyStore(cfg.IdempotencyTTL), func() {}, nil
}

func openProducer(cfg config.Config, logger *slog.Logger) (outbox.Producer, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("KAFKA_BROKERS not set; outbox events are logged only")
		return kafka.LogProducer{Logger: logger.With("component", "events")}, func() {}, nil
	}
	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:  cfg.KafkaBrokers,
		ClientID: "flatfinder",
		Version:  sarama.V2_8_0_0,
	})
	if err != nil {
		return nil, nil, err
	}
	return producer, func() { _ = producer.Close() }, nil
}

func openPhotoStore(cfg config.Config, logger *slog.Logger) (listingapp.PhotoStore, error) {
	if cfg.S3Endpoint == "" {
		logger.Info("S3_ENDPOINT not set; photo uploads are disabled")
		return s3.Unconfigured{}, nil
	}
	return s3.NewPhotoStore(s3.Config{
		Endpoint:      cfg.S3Endpoint,
		UseSSL:        cfg.S3UseSSL,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.S3PublicEndpoint,
	}, logger)
}
