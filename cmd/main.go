package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"splitpay-api/internal/clients"
	"splitpay-api/internal/config"
	"splitpay-api/internal/metrics"
	"splitpay-api/internal/repository"
	"splitpay-api/internal/service"
	"splitpay-api/internal/transport/rest"
	"splitpay-api/internal/transport/websocket"
	"splitpay-api/internal/validation"
	"splitpay-api/pkg/database/postgres"
	"splitpay-api/pkg/logging"
)

const (
	exportRetention = 30 * time.Minute
	cleanupInterval = 5 * time.Minute
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Setup()
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))
	if envErr != nil {
		slog.Info("no .env file found, using system env or defaults")
	}

	// amounts go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// top-level context which we can cancel on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := mustInitPostgres(ctx, cfg.Postgres)
	defer postgres.Close(db)

	if err := repository.Migrate(ctx, db); err != nil {
		fatal("migration error", err)
	}

	var profileCache service.ProfileCache
	redisClient := initRedis(ctx, cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
		profileCache = redisClient
	}

	storageClient, err := clients.NewLocalStorage(cfg.ExportDir, cfg.FilesPublicPrefix, cfg.ExternalURL)
	if err != nil {
		fatal("storage init error", err)
	}

	var uploader service.Uploader = storageClient
	if cfg.S3.Enabled {
		s3Client, err := clients.NewS3Client(ctx, clients.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			UseSSL:          cfg.S3.UseSSL,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
		})
		if err != nil {
			fatal("s3 init error", err)
		}
		uploader = s3Client
	}

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	var events clients.EventPublisher
	if cfg.NATSURL != "" {
		producer, err := clients.NewNATSProducer(cfg.NATSURL)
		if err != nil {
			slog.Warn("nats unavailable, notification events disabled", "error", err)
		} else {
			defer producer.Close()
			events = producer
		}
	}

	pusher := clients.NewOneSignalClient(clients.OneSignalConfig{
		AppID:   cfg.OneSignal.AppID,
		APIKey:  cfg.OneSignal.APIKey,
		URL:     cfg.OneSignal.URL,
		Timeout: cfg.NotifyTimeout,
	})
	if !pusher.Enabled() {
		slog.Warn("ONESIGNAL_APP_ID not set, push notifications are skipped")
	}
	dispatcher := clients.NewDispatcher(pusher, clients.NewWebSocketClient(wsHub), events)

	validator, err := validation.New()
	if err != nil {
		fatal("validator init error", err)
	}

	userRepo := repository.NewUserRepository(db)
	paymentRequestRepo := repository.NewPaymentRequestRepository(db)
	billRepo := repository.NewBillRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	directory := service.NewUserDirectory(userRepo, profileCache, cfg.ProfileCacheTTL)
	ledgerSvc := service.NewPaymentRequestService(paymentRequestRepo, directory, dispatcher, cfg.Location())

	handler := rest.NewHandler(rest.Services{
		Ledger:        ledgerSvc,
		Exports:       service.NewExportService(paymentRequestRepo, directory, storageClient, cfg.Location()),
		Users:         service.NewUserService(userRepo, directory),
		Bills:         service.NewBillService(billRepo, userRepo, directory, dispatcher),
		Notifications: service.NewNotificationService(directory, ledgerSvc, dispatcher),
		Transactions:  service.NewTransactionService(transactionRepo),
		Uploads:       service.NewUploadService(uploader),
		Validator:     validator,
	})
	router := handler.InitRouter()

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		rest.Success(w, "ok", map[string]string{"status": "up"})
	})
	router.Handle("/metrics", metrics.Handler())
	router.Get(strings.TrimRight(storageClient.PublicPrefix, "/")+"/{file}", rest.FileHandler(storageClient))

	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		userUUID := strings.TrimSpace(r.URL.Query().Get("userUUID"))
		if userUUID == "" {
			http.Error(w, "userUUID required", http.StatusBadRequest)
			return
		}
		slog.Info("ws connected", "user_uuid", userUUID)
		wsHub.HandleWebSocket(w, r, userUUID)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	// remove generated statements after the retention window
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := storageClient.CleanupOlderThan(exportRetention); err != nil {
					slog.Warn("storage cleanup error", "error", err)
				}
			}
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			fatal("HTTP server error", err)
		}
	case sig := <-stop:
		slog.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}

		// stops the websocket hub and the cleaner
		cancel()
		slog.Info("shutdown complete")
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func mustInitPostgres(ctx context.Context, cfg config.PostgresConfig) *sqlx.DB {
	db, err := postgres.NewPostgresConnection(ctx, postgres.ConnectionInfo{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.User,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
		Password: cfg.Password,
		MaxConns: cfg.MaxConns,
	})
	if err != nil {
		fatal("postgres init error", err)
	}
	return db
}

// initRedis returns nil when the cache is disabled or unreachable; profiles
// are then read straight from postgres.
func initRedis(ctx context.Context, cfg config.RedisConfig) *clients.RedisClient {
	if !cfg.Enabled {
		return nil
	}
	client, err := clients.NewRedisClient(ctx, clients.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		Prefix:      cfg.Prefix,
	})
	if err != nil {
		slog.Warn("redis unavailable, profile cache disabled", "error", err)
		return nil
	}
	return client
}
