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

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"password-dashboard/internal/auth"
	"password-dashboard/internal/cache"
	"password-dashboard/internal/config"
	apphttp "password-dashboard/internal/http"
	"password-dashboard/internal/mailer"
	"password-dashboard/internal/repository/gormstore"
	"password-dashboard/internal/repository/sqlite"
	"password-dashboard/internal/service"
	"password-dashboard/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.SessionSecret) == "" {
		logger.Fatalf("auth session secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := gormstore.Open(gormstore.Options{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		DSN:    cfg.Database.DSN,
	})
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer gormstore.Close(db)

	if err := gormstore.Migrate(db); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}
	store := gormstore.NewStore(db)

	captureDB, err := sqlite.Open(cfg.Capture.Path)
	if err != nil {
		logger.Fatalf("open capture database: %v", err)
	}
	defer captureDB.Close()

	captureRepo := sqlite.NewCaptureRepository(captureDB)
	if err := captureRepo.Init(ctx); err != nil {
		logger.Fatalf("init capture repository: %v", err)
	}

	redisCache := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisCache.Close()
	if redisCache.Enabled() {
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warnf("redis unavailable, logout will not revoke sessions early: %v", err)
		} else {
			logger.Infof("using redis at %s", cfg.Redis.Addr)
		}
	}

	tokens := auth.NewJWTService(cfg.Auth.SessionSecret, auth.TokenTTLs{
		Session:  time.Duration(cfg.Auth.SessionTTLMinutes) * time.Minute,
		Remember: time.Duration(cfg.Auth.RememberDays) * 24 * time.Hour,
		Reset:    time.Duration(cfg.Auth.ResetTTLMinutes) * time.Minute,
	})

	sender, err := buildMailSender(cfg, logger)
	if err != nil {
		logger.Fatalf("setup mail: %v", err)
	}
	dispatcher := mailer.NewDispatcher(mailer.DispatcherConfig{
		Workers:   cfg.Mail.Workers,
		QueueSize: cfg.Mail.QueueSize,
		Logger:    logger,
	}, sender)
	dispatcher.Start(ctx)

	pictures, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	userService := service.NewUserService(store, dispatcher, pictures, logger)
	deps := apphttp.Dependencies{
		Users:         userService,
		Credentials:   service.NewCredentialService(store),
		Resets:        service.NewResetService(store, tokens, dispatcher, cfg.Server.BaseURL, logger),
		Sessions:      service.NewSessionService(tokens, auth.NewTokenStore(redisCache), userService, logger),
		Captures:      service.NewCaptureService(captureRepo),
		Logger:        logger,
		SecureCookies: cfg.Auth.SecureCookies,
	}
	if local, ok := pictures.(*storage.LocalService); ok {
		deps.PicturesDir = local.Root()
		deps.PicturesPrefix = local.URLPrefix()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(deps)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	dispatcher.Shutdown()

	logger.Info("bye")
}

func buildMailSender(cfg config.Config, logger *logrus.Logger) (mailer.Sender, error) {
	if !cfg.MailConfigured() {
		logger.Warn("mail server not configured, emails will be written to the log")
		return mailer.LogSender{Logger: logger}, nil
	}
	sender, err := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.Mail.Server,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.DefaultSender,
		UseTLS:   cfg.Mail.UseTLS,
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("sending mail through %s:%d", cfg.Mail.Server, cfg.Mail.Port)
	return sender, nil
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	switch strings.ToLower(cfg.Storage.Backend) {
	case "", "local":
		local, err := storage.NewLocalService(cfg.Storage.LocalDir, "/static/profile_pics")
		if err != nil {
			return nil, err
		}
		logger.Infof("storing profile pictures in %s", cfg.Storage.LocalDir)
		return local, nil
	case "s3":
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	svc, err := storage.NewS3Service(client, cfg.Storage.Bucket, cfg.Storage.KeyPrefix)
	if err != nil {
		return nil, err
	}
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return svc, nil
}
