package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/auth"
	"github.com/kinhub/kinhub/internal/config"
	"github.com/kinhub/kinhub/internal/email"
	"github.com/kinhub/kinhub/internal/events"
	"github.com/kinhub/kinhub/internal/handlers"
	"github.com/kinhub/kinhub/internal/livekit"
	"github.com/kinhub/kinhub/internal/llm"
	"github.com/kinhub/kinhub/internal/repository"
	"github.com/kinhub/kinhub/internal/routes"
	"github.com/kinhub/kinhub/internal/services"
	"github.com/kinhub/kinhub/internal/storage"
	"github.com/kinhub/kinhub/internal/tasks"
	"github.com/kinhub/kinhub/internal/utils"
	"github.com/kinhub/kinhub/internal/website"
	"github.com/kinhub/kinhub/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional, env overrides)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.App.Env != "production")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if cfg.JWT.Secret == "" {
		logger.Fatal("jwt.secret is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Mongo
	mongoClient, err := repository.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		logger.Fatalw("mongo connect failed", "error", err)
	}
	db := mongoClient.Database(cfg.Mongo.Database)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		logger.Fatalw("mongo indexes failed", "error", err)
	}

	users := repository.NewUserRepo(db)
	families := repository.NewFamilyRepo(db)
	memories := repository.NewMemoryRepo(db)
	albums := repository.NewAlbumRepo(db)
	eventRepo := repository.NewEventRepo(db)
	messages := repository.NewMessageRepo(db)
	notifications := repository.NewNotificationRepo(db)
	invitations := repository.NewInvitationRepo(db)
	members := repository.NewMemberRepo(db)

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatalw("redis connect failed", "addr", cfg.Redis.Addr, "error", err)
	}

	// Postgres website store, optional
	var siteStore *website.Store
	if cfg.Postgres.DSN != "" {
		siteStore, err = website.Open(cfg.Postgres.DSN)
		if err != nil {
			logger.Fatalw("postgres connect failed", "error", err)
		}
		if err := siteStore.Migrate(ctx); err != nil {
			logger.Fatalw("postgres migrate failed", "error", err)
		}
	} else {
		logger.Warn("postgres.dsn not set, website generator disabled")
	}

	// storage backends
	local, err := storage.NewLocalStore(cfg.Uploads.Dir, cfg.App.BaseURL)
	if err != nil {
		logger.Fatalw("uploads dir unavailable", "dir", cfg.Uploads.Dir, "error", err)
	}
	var systemS3 *storage.S3Store
	if cfg.S3.Configured() {
		systemS3, err = storage.NewS3Store(ctx, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey,
			cfg.S3.Bucket, cfg.S3.Region, cfg.S3.PublicRead)
		if err != nil {
			logger.Fatalw("s3 init failed", "error", err)
		}
	}
	var oauthConf *oauth2.Config
	if cfg.Google.Configured() {
		oauthConf = cfg.Google.OAuthConfig()
	}
	uploader := storage.NewUploader(local, systemS3, oauthConf, logger)

	// email provider chain: SendGrid, then SES, then log-only
	var sender email.Sender = &email.NoopSender{Logger: logger}
	switch {
	case cfg.Email.SendGridAPIKey != "":
		sender = email.NewSendGridSender(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	case cfg.Email.SESRegion != "":
		ses, serr := email.NewSESSender(ctx, cfg.Email.SESRegion, cfg.Email.FromEmail, cfg.Email.FromName)
		if serr != nil {
			logger.Fatalw("ses init failed", "error", serr)
		}
		sender = ses
	default:
		logger.Warn("no email provider configured, emails will be logged only")
	}
	sender = email.WithBreaker("email", sender)

	// side-effect plumbing
	queue := tasks.NewQueue(256, logger)
	hub := ws.NewHub()
	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)

	// services
	authSvc := &services.AuthService{
		Users:      users,
		Refresh:    auth.NewRedisRefreshStore(rdb),
		JWTSecret:  cfg.JWT.Secret,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}
	familySvc := &services.FamilyService{Families: families}
	mediaSvc := &services.MediaService{
		Users:    users,
		Uploader: uploader,
		SystemS3: systemS3 != nil,
		Logger:   logger,
	}
	notifier := &services.Notifier{
		Queue:     queue,
		Hub:       hub,
		Email:     sender,
		Users:     users,
		Notifs:    notifications,
		Events:    publisher,
		ClientURL: cfg.App.ClientURL,
		Logger:    logger,
	}
	migrationSvc := services.NewMigrationService(users, memories, albums, systemS3, oauthConf, logger)
	websiteSvc := &services.WebsiteService{
		Generator: &website.Generator{
			LLM: llm.NewClient(llm.Config{
				BaseURL: cfg.Ollama.BaseURL,
				Model:   cfg.Ollama.Model,
				Timeout: cfg.OllamaTimeout,
			}),
			OutputDir: cfg.Website.OutputDir,
		},
		Store:    siteStore,
		Families: familySvc,
	}

	h := &routes.Handlers{
		Auth:     &handlers.AuthHandler{Auth: authSvc},
		Families: &handlers.FamilyHandler{Families: familySvc, Users: users},
		Members: &handlers.MemberHandler{
			Members: members, Users: users, Families: familySvc, Notifier: notifier,
		},
		Memories: &handlers.MemoryHandler{
			Memories: memories, Users: users, Families: familySvc,
			Media: mediaSvc, Notifier: notifier, MaxSizeMB: cfg.Uploads.MaxSizeMB,
		},
		Albums: &handlers.AlbumHandler{
			Albums: albums, Users: users, Families: familySvc,
			Media: mediaSvc, MaxSizeMB: cfg.Uploads.MaxSizeMB,
		},
		Media: &handlers.MediaHandler{
			Users: users, Media: mediaSvc, SystemS3: systemS3,
			Migration: migrationSvc, MaxSizeMB: cfg.Uploads.MaxSizeMB,
		},
		Events: &handlers.EventHandler{
			Events: eventRepo, Users: users, Families: familySvc, Notifier: notifier,
		},
		Messages: &handlers.MessageHandler{
			Messages: messages, Users: users, Families: familySvc, Notifier: notifier,
		},
		Notifications: &handlers.NotificationHandler{Notifications: notifications},
		Invitations: &handlers.InvitationHandler{
			Invitations: invitations, Users: users, Families: familySvc,
			Email: sender, Queue: queue, ClientURL: cfg.App.ClientURL,
		},
		Drive: &handlers.DriveHandler{
			Users: users, OAuth: oauthConf,
			JWTSecret: cfg.JWT.Secret, ClientURL: cfg.App.ClientURL,
		},
		LiveKit: &handlers.LiveKitHandler{
			Minter: &livekit.TokenMinter{
				APIKey:    cfg.LiveKit.APIKey,
				APISecret: cfg.LiveKit.APISecret,
				TTL:       time.Duration(cfg.LiveKit.TTLHours) * time.Hour,
			},
			Rooms:    livekit.NewRedisRoomStore(rdb),
			Users:    users,
			Families: familySvc,
			Host:     cfg.LiveKit.Host,
		},
		Website: &handlers.WebsiteHandler{Websites: websiteSvc},
		Admin:   &handlers.AdminHandler{Users: users, Families: families},
		Email:   &handlers.EmailHandler{Email: sender},
		WS: &handlers.WSHandler{
			Hub: hub, Families: familySvc, JWTSecret: cfg.JWT.Secret,
		},
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          apperr.FiberHandler(logger),
		BodyLimit:             (cfg.Uploads.MaxSizeMB + 1) * 1024 * 1024 * cfg.Uploads.MaxPerBatch,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.App.ClientURL}))

	routes.Register(app, h, cfg.JWT.Secret, cfg.Uploads.Dir)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	go func() {
		logger.Infow("server listening", "addr", addr, "env", cfg.App.Env)
		if err := app.Listen(addr); err != nil {
			logger.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	_ = app.ShutdownWithContext(shutdownCtx)
	queue.Close()
	publisher.Close()
	if siteStore != nil {
		_ = siteStore.Close()
	}
	_ = rdb.Close()
	_ = mongoClient.Disconnect(shutdownCtx)
	logger.Info("server stopped")
}
