//	@title			Inkpad Storage Gateway API
//	@version		1.0
//	@description	Object storage gateway for Inkpad assets: listing, uploads, signed URLs and metadata.
//
//	@host		localhost:8080
//	@BasePath	/api

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/inkpad/service/internal/asset"
	"github.com/inkpad/service/internal/config"
	"github.com/inkpad/service/internal/db"
	"github.com/inkpad/service/internal/files"
	"github.com/inkpad/service/internal/logger"
	"github.com/inkpad/service/internal/server"
	"github.com/inkpad/service/internal/storage"

	_ "github.com/inkpad/service/docs/swagger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	if !cfg.DotEnvLoaded {
		lg.Debug("no .env file found, using environment only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, lg)
	stop()
	if err != nil {
		lg.Error("server exited", zap.Error(err))
		_ = lg.Sync()
		log.Fatal(err)
	}
	lg.Info("server stopped")
	_ = lg.Sync()
}

// run serves the gateway until ctx is canceled. Every resource it opens is
// released before it returns.
func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	publicBase := cfg.StoragePublicBase
	if cfg.StorageDriver == storage.DriverMemory && publicBase == "" {
		publicBase = "http://localhost:" + cfg.Port + "/blobs"
	}

	store, err := storage.Open(ctx, storage.Options{
		Driver:     cfg.StorageDriver,
		Endpoint:   cfg.StorageEndpoint,
		AccessKey:  cfg.StorageAccessKey,
		SecretKey:  cfg.StorageSecretKey,
		Bucket:     cfg.StorageBucket,
		Region:     cfg.StorageRegion,
		PublicBase: publicBase,
		UseSSL:     cfg.StorageUseSSL,
		PathStyle:  cfg.StoragePathStyle,
		SigningKey: cfg.StorageSigningKey,
	}, lg)
	if err != nil {
		return fmt.Errorf("object storage init failed: %w", err)
	}

	// Wire dependencies: store → asset service → files service → handler
	var assetOpts []asset.Option
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL, lg)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(cfg.DatabaseURL, lg); err != nil {
			return fmt.Errorf("database migration failed: %w", err)
		}
		assetOpts = append(assetOpts, asset.WithRecorder(asset.NewRepository(pool)))
	} else {
		lg.Info("DATABASE_URL not set, upload index disabled")
	}

	assets := asset.NewService(store, lg, assetOpts...)
	filesSvc := files.NewService(store, assets)

	deps := server.Deps{
		Files:          files.NewHandler(filesSvc, lg, cfg.MaxUploadBytes),
		Logger:         lg,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if opener, ok := store.(storage.Opener); ok {
		deps.Blobs = files.NewBlobHandler(opener, lg)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.NewRouter(deps),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		lg.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.StorageDriver),
			zap.String("swagger", "http://localhost:"+cfg.Port+"/swagger/"),
		)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	lg.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
