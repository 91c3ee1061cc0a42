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

	"riderlink/internal/app/outbox"
	articlessvc "riderlink/internal/app/services/articles"
	authsvc "riderlink/internal/app/services/auth"
	chatsvc "riderlink/internal/app/services/chat"
	offerssvc "riderlink/internal/app/services/offers"
	riderssvc "riderlink/internal/app/services/riders"
	sponsorssvc "riderlink/internal/app/services/sponsors"
	domainarticle "riderlink/internal/domain/article"
	domainchat "riderlink/internal/domain/chat"
	domainoffer "riderlink/internal/domain/offer"
	"riderlink/internal/domain/profile"
	"riderlink/internal/domain/rider"
	"riderlink/internal/domain/sponsor"
	"riderlink/internal/infra/broker/kafka"
	"riderlink/internal/infra/config"
	mongodb "riderlink/internal/infra/db/mongo"
	ginserver "riderlink/internal/infra/http/gin"
	"riderlink/internal/infra/obs"
	infraoutbox "riderlink/internal/infra/outbox"
	"riderlink/internal/infra/security"
	"riderlink/internal/infra/session"
	"riderlink/internal/infra/storage/memory"
	"riderlink/internal/infra/storage/s3"

	"github.com/redis/go-redis/v9"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := obs.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	server := ginserver.NewServer(cfg,
		obs.Middleware{Logger: logger},
		obs.HealthHandlers{Ready: app.ready},
		app.handlers,
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", "error", err)
		}
	}()

	logger.Info("riderlink listening", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// application holds the wired handler set plus the background pieces main
// owns the lifecycle of.
type application struct {
	handlers ginserver.Handlers
	worker   *infraoutbox.Worker
	ready    func() error

	mongoClient *mongodb.Client
	producer    *kafka.Producer
	redisClient *redis.Client
}

type repositories struct {
	conversations domainchat.ConversationRepository
	messages      domainchat.MessageRepository
	riders        rider.Repository
	sponsors      sponsor.Repository
	offers        domainoffer.Repository
	articles      domainarticle.Repository
	outbox        outbox.Outbox
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{}

	var repos repositories
	switch cfg.StorageMode {
	case "memory":
		logger.Warn("running with in-memory storage, data will not survive restarts")
		repos = repositories{
			conversations: memory.NewConversationRepository(),
			messages:      memory.NewMessageRepository(),
			riders:        memory.NewRiderRepository(),
			sponsors:      memory.NewSponsorRepository(),
			offers:        memory.NewOfferRepository(),
			articles:      memory.NewArticleRepository(),
			outbox:        memory.NewOutbox(),
		}
	default:
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		app.mongoClient = client
		if err := mongodb.EnsureIndexes(ctx, client.DB); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		store := infraoutbox.NewStore(client.DB)
		repos = repositories{
			conversations: mongodb.NewConversationRepository(client.DB),
			messages:      mongodb.NewMessageRepository(client.DB),
			riders:        mongodb.NewRiderRepository(client.DB),
			sponsors:      mongodb.NewSponsorRepository(client.DB),
			offers:        mongodb.NewOfferRepository(client.DB),
			articles:      mongodb.NewArticleRepository(client.DB),
			outbox:        store,
		}
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return nil, fmt.Errorf("kafka producer: %w", err)
			}
			app.producer = producer
			app.worker = &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Logger:      logger,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
		} else {
			logger.Warn("no kafka brokers configured, outbox events will accumulate unsent")
		}
	}

	var revocations authsvc.RevocationStore
	if cfg.RedisAddr != "" {
		app.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		revocations = &session.RedisRevocationStore{Client: app.redisClient}
	} else {
		revocations = session.NewMemoryRevocationStore()
	}

	var uploader s3.Uploader
	s3Client, err := s3.NewClient(s3.Config{
		Endpoint:      cfg.S3Endpoint,
		UseSSL:        cfg.S3UseSSL,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.S3PublicEndpoint,
	}, logger)
	if err != nil {
		logger.Warn("object storage unavailable, avatar uploads disabled", "error", err)
		uploader = s3.NoopUploader{}
	} else {
		uploader = s3Client
	}

	directory := profile.Directory{Riders: repos.riders, Sponsors: repos.sponsors}
	encoder := outbox.JSONEventEncoder{}

	authService := &authsvc.Service{
		Riders:      repos.riders,
		Sponsors:    repos.sponsors,
		Passwords:   security.BcryptHasher{},
		Tokens:      security.JWTCodec{Secret: []byte(cfg.JWTSecret)},
		Revocations: revocations,
		SessionTTL:  cfg.SessionTTL,
		Logger:      logger,
	}
	chatService := &chatsvc.Service{
		Conversations: repos.conversations,
		Messages:      repos.messages,
		Profiles:      directory,
		Outbox:        repos.outbox,
		Encoder:       encoder,
		Logger:        logger,
	}
	riderService := &riderssvc.Service{Riders: repos.riders, Logger: logger}
	sponsorService := &sponsorssvc.Service{Sponsors: repos.sponsors}
	offerService := &offerssvc.Service{
		Offers:  repos.offers,
		Outbox:  repos.outbox,
		Encoder: encoder,
		Logger:  logger,
	}
	articleService := &articlessvc.Service{Articles: repos.articles}

	authMW := ginserver.AuthMiddleware{
		Service:    authService,
		CookieName: cfg.SessionCookie,
		Logger:     logger,
	}

	app.handlers = ginserver.Handlers{
		Auth: ginserver.AuthHandler{
			Service:    authService,
			Riders:     riderService,
			Sponsors:   sponsorService,
			CookieName: cfg.SessionCookie,
			Logger:     logger,
		},
		Chat:    ginserver.ChatHandler{Service: chatService, Logger: logger},
		Rider:   ginserver.RiderHandler{Service: riderService, Logger: logger},
		Sponsor: ginserver.SponsorHandler{Service: sponsorService, Logger: logger},
		Offer:   ginserver.OfferHandler{Service: offerService, Logger: logger},
		Article: ginserver.ArticleHandler{Service: articleService, Logger: logger},
		Upload: ginserver.UploadHandler{
			Uploader: uploader,
			Riders:   riderService,
			Sponsors: sponsorService,
			Logger:   logger,
		},
		AuthMiddleware: authMW.Handle,
	}
	return app, nil
}

func (a *application) close(logger *slog.Logger) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Error("kafka producer close", "error", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			logger.Error("redis close", "error", err)
		}
	}
	if a.mongoClient != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mongoClient.Close(closeCtx); err != nil {
			logger.Error("mongo disconnect", "error", err)
		}
	}
}
