package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"contracting/internal/audit"
	"contracting/internal/auth"
	"contracting/internal/blob"
	"contracting/internal/config"
	"contracting/internal/db"
	"contracting/internal/gateway"
	httpapi "contracting/internal/http"
	"contracting/internal/logging"
	"contracting/internal/printview"
	"contracting/internal/repository"
	"contracting/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	if _, err := db.RunMigrations(ctx, pool); err != nil {
		return err
	}

	gw := gateway.NewPostgres(pool)
	repo := repository.New(gw)

	authOpts := []auth.Option{auth.WithLogger(logger)}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, sessions are read from the database")
		} else {
			authOpts = append(authOpts, auth.WithCache(auth.NewRedisCache(client)))
		}
	}
	provider := auth.NewProvider(gw, cfg.JWTSecret, cfg.SessionTTL, authOpts...)
	if err := provider.EnsureUser(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}

	recorder := audit.NewRecorder(gw, audit.WithLogger(logger))

	svcOpts := []service.Option{
		service.WithAuditor(recorder),
		service.WithPrinter(printview.PDFRenderer{ChromePath: cfg.ChromePath}),
		service.WithCompany(cfg.CompanyName),
		service.WithLogger(logger),
	}
	if cfg.S3Endpoint != "" || cfg.S3AccessKeyID != "" {
		store, err := blob.NewS3(ctx, blob.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return err
		}
		svcOpts = append(svcOpts, service.WithBlobStore(store, cfg.AttachmentsBucket, cfg.SignedURLTTL))
	} else {
		logger.Warn().Msg("object storage is not configured, attachments are disabled")
	}
	svc := service.New(repo, svcOpts...)

	router := httpapi.NewRouter(httpapi.NewHandler(svc, provider), provider)
	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(func() {
			n, err := provider.PurgeExpired(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("purge expired sessions failed")
				return
			}
			logger.Debug().Int("count", n).Msg("purged expired sessions")
		}),
	)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("contracting api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		return scheduler.Shutdown()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("force close failed")
			}
		}
		if err := recorder.Close(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("audit queue not drained")
		}
		return nil
	})

	err = g.Wait()
	logger.Info().Msg("server shut down")
	return err
}
