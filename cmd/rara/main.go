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

	"rara/internal/app/middleware"
	appoutbox "rara/internal/app/outbox"
	appschedule "rara/internal/app/schedule"
	"rara/internal/app/services/assistant"
	authsvc "rara/internal/app/services/auth"
	"rara/internal/app/uow"
	"rara/internal/app/wiring"
	domainmessaging "rara/internal/domain/messaging"
	"rara/internal/infra/ai"
	"rara/internal/infra/broker"
	"rara/internal/infra/broker/kafka"
	"rara/internal/infra/config"
	mongodb "rara/internal/infra/db/mongo"
	"rara/internal/infra/db/scylla"
	"rara/internal/infra/fixtures"
	ginserver "rara/internal/infra/http/gin"
	"rara/internal/infra/inbox"
	"rara/internal/infra/obs"
	infraoutbox "rara/internal/infra/outbox"
	"rara/internal/infra/schedule"
	"rara/internal/infra/security"
	"rara/internal/infra/storage/memory"
	redisstore "rara/internal/infra/storage/redis"
	"rara/internal/infra/storage/s3"
)

const bookingEvents = "booking.status_changed.v1"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("dev", "info").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	if cfg.SeedFixtures {
		if err := app.fixtures.Load(ctx); err != nil {
			logger.Warn("fixtures load failed", "error", err)
		}
	}
	app.start(ctx, cfg, logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, app.health, app.handlers)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "store", cfg.Store)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

// relayStore is what the command pipeline writes to and the relay drains.
type relayStore interface {
	appoutbox.Outbox
	infraoutbox.Store
}

type application struct {
	handlers ginserver.Handlers
	health   obs.Health
	fixtures fixtures.Loader
	buses    wiring.Buses
	outbox   relayStore
	inbox    inbox.Store
	limiter  *ginserver.RateLimiter
	closers  []func()
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{health: obs.Health{Checks: map[string]obs.Check{}}}

	var (
		factory     uow.UoWFactory
		idempotency middleware.IdempotencyStore
	)
	switch cfg.Store {
	case config.StoreMongo:
		client, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		app.closers = append(app.closers, func() { _ = client.Close(context.Background()) })
		if err := client.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		app.health.Checks["mongo"] = client.Ping
		factory = mongodb.Factory{DB: client.DB}
		app.outbox = infraoutbox.NewMongoStore(ctx, client.DB)
		app.inbox = inbox.NewMongoStore(ctx, client.DB, cfg.KafkaGroupID)
		idempotency = mongodb.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
	default:
		store := memory.NewStore()
		box := memory.NewOutbox()
		store.UseOutbox(box)
		factory = memory.Factory{Store: store}
		app.outbox = box
		app.inbox = memory.NewInbox()
		idempotency = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	}

	if cfg.RedisAddr != "" {
		client, err := redisstore.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() { _ = client.Close() })
		app.health.Checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		idempotency = redisstore.NewIdempotencyStore(client, cfg.IdempotencyTTL)
	}

	var conversations domainmessaging.Repository = memory.NewConversationRepository()
	if len(cfg.ScyllaHosts) > 0 {
		consistency, err := scylla.ParseConsistency(cfg.ScyllaConsistency)
		if err != nil {
			return nil, err
		}
		session, err := scylla.NewSession(ctx, scylla.Options{
			Hosts:       cfg.ScyllaHosts,
			Keyspace:    cfg.ScyllaKeyspace,
			Username:    cfg.ScyllaUsername,
			Password:    cfg.ScyllaPassword,
			Consistency: consistency,
			Timeout:     cfg.ScyllaTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("scylla: %w", err)
		}
		app.closers = append(app.closers, session.Close)
		app.health.Checks["scylla"] = func(ctx context.Context) error {
			return session.Query("SELECT now() FROM system.local").WithContext(ctx).Exec()
		}
		conversations = scylla.NewConversationRepository(session)
	}

	app.buses = wiring.NewBuses(wiring.Deps{
		UoWFactory:    factory,
		Outbox:        app.outbox,
		Idempotency:   idempotency,
		Conversations: conversations,
		Logger:        logger,
	})
	commandBus, queryBus := app.buses.Commands, app.buses.Queries

	passwords := security.BcryptHasher{}
	authService := &authsvc.Service{
		UoWFactory:  factory,
		Passwords:   passwords,
		Tokens:      security.JWTIssuer{Secret: cfg.SigningSecret(), TTL: cfg.JWTTTL, Issuer: "rara"},
		AdminEmails: cfg.AdminEmails,
		Logger:      logger,
	}
	authHandler := ginserver.AuthHandler{
		Service:    authService,
		State:      security.RandomTokenGenerator{},
		SuccessURL: cfg.AuthSuccessURL,
		Secure:     cfg.Env == "prod",
		Logger:     logger,
	}
	if google := security.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL); google != nil {
		authHandler.OAuth = google
	}

	var images ginserver.ImageStore = s3.NoopUploader{}
	if cfg.S3Endpoint != "" {
		client, err := s3.NewClient(s3.Options{
			Endpoint:      cfg.S3Endpoint,
			UseSSL:        cfg.S3UseSSL,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.S3PublicEndpoint,
		}, logger)
		if err != nil {
			return nil, err
		}
		app.health.Checks["s3"] = client.Ping
		images = client
	}

	assistantService := &assistant.Service{Queries: queryBus, Logger: logger}
	if generator := ai.NewClient(ai.Options{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.AITimeout,
	}); generator != nil {
		assistantService.Generator = generator
	}

	app.limiter = ginserver.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst, logger)
	app.handlers = ginserver.Handlers{
		Auth:      authHandler,
		Listing:   ginserver.ListingHandler{Commands: commandBus, Queries: queryBus, Images: images, Logger: logger},
		Review:    ginserver.ReviewHandler{Commands: commandBus, Queries: queryBus, Logger: logger},
		Block:     ginserver.BlockHandler{Commands: commandBus, Queries: queryBus, Logger: logger},
		Booking:   ginserver.BookingHandler{Commands: commandBus, Queries: queryBus, Logger: logger},
		Host:      ginserver.HostHandler{Queries: queryBus, Logger: logger},
		Admin:     ginserver.AdminHandler{Commands: commandBus, Queries: queryBus, Logger: logger},
		Chat:      ginserver.ChatHandler{Commands: commandBus, Queries: queryBus, Logger: logger},
		Assistant: ginserver.AssistantHandler{Service: assistantService, Validator: app.buses.Validator, Logger: logger},

		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
		RateLimit:      app.limiter.Limit(),
	}
	app.fixtures = fixtures.Loader{
		UoWFactory:    factory,
		Conversations: conversations,
		Passwords:     passwords,
		Logger:        logger,
	}
	return app, nil
}

// start launches the relay, the consumer, the scheduler and the probes. All
// of them stop with ctx.
func (a *application) start(ctx context.Context, cfg config.Config, logger *slog.Logger) {
	notifier := &broker.BookingNotifier{Commands: a.buses.Commands, Inbox: a.inbox, Logger: logger}

	var producer infraoutbox.Producer = broker.LocalProducer{Handler: notifier}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaProducer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Error("kafka producer unavailable, delivering events in process", "error", err)
		} else {
			a.closers = append(a.closers, func() { _ = kafkaProducer.Close() })
			producer = kafkaProducer
			a.consume(ctx, cfg, notifier, logger)
		}
	}

	worker := &infraoutbox.Worker{
		Store:       a.outbox,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Source:      "rara/api",
		Backoff:     cfg.RetryBackoff,
		Logger:      logger,
	}
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox worker stopped", "error", err)
		}
	}()

	if cfg.CompletionSweepEnabled {
		scheduler := schedule.NewCron(logger, time.Minute)
		sweep := &appschedule.CompletionSweep{Commands: a.buses.Commands, Every: cfg.CompletionSweepSpec, Logger: logger}
		if err := scheduler.Register(sweep); err != nil {
			logger.Error("completion sweep not scheduled", "error", err, "spec", cfg.CompletionSweepSpec)
		} else {
			go func() {
				if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("scheduler stopped", "error", err)
				}
			}()
		}
	}

	if cfg.GRPCHealthAddr != "" {
		go func() {
			if err := obs.ServeGRPCHealth(ctx, cfg.GRPCHealthAddr, a.health, 10*time.Second, logger); err != nil {
				logger.Error("grpc health stopped", "error", err)
			}
		}()
	}

	go a.limiter.Sweep(ctx, time.Minute)
}

func (a *application) consume(ctx context.Context, cfg config.Config, notifier *broker.BookingNotifier, logger *slog.Logger) {
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, nil, kafka.EventMessages{Next: notifier}, logger)
	if err != nil {
		logger.Error("kafka consumer unavailable", "error", err)
		return
	}
	a.closers = append(a.closers, func() { _ = consumer.Close() })
	topic := infraoutbox.TopicFor(cfg.KafkaTopicPrefix, bookingEvents)
	go func() {
		if err := consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("kafka consumer stopped", "error", err, "topic", topic)
		}
	}()
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
