package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"anoa.com/portalsekolah/internal/bootstrap"
	"anoa.com/portalsekolah/internal/config"
	"anoa.com/portalsekolah/internal/server"
	"anoa.com/portalsekolah/pkg/database"
	"anoa.com/portalsekolah/pkg/storage"
	"anoa.com/portalsekolah/pkg/telemetry"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
)

const serviceVersion = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:       cfg.OTelEndpoint,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: serviceVersion,
	})
	if err != nil {
		log.Fatalf("failed to set up telemetry: %v", err)
	}

	db := database.Connect()
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if cfg.IsDevelopment() || cfg.AdminPassword != "" {
		password := cfg.AdminPassword
		if password == "" {
			password = "admin123"
		}
		if err := bootstrap.SeedAdminUser(db, cfg.AdminEmail, password); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	redisClient := connectRedis(ctx, cfg.RedisURL)

	files, err := storage.NewCloudinaryStorage(cfg.CloudinaryUploadFolder)
	if err != nil {
		log.Printf("⚠️ Cloudinary unavailable, uploads disabled: %v", err)
		files = nil
	}

	srv := server.NewServer(server.Deps{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Files:  files,
		Meili:  connectMeili(cfg.MeiliSearchHost, cfg.MeiliMasterKey),
	})

	jobs := srv.Scheduler()
	jobs.Start()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Portal Sekolah listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server exited with error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	jobs.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
}

// connectRedis returns nil when REDIS_URL is empty or unreachable. Cache, rate limit,
// token revocation and realtime notifications are then skipped.
func connectRedis(ctx context.Context, redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("ℹ️ REDIS_URL not set, running without redis")
		return nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("⚠️ Invalid REDIS_URL: %v", err)
		return nil
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("⚠️ Redis unreachable, running without redis: %v", err)
		_ = client.Close()
		return nil
	}

	log.Println("✅ Connected to redis")
	return client
}

func connectMeili(host, key string) meilisearch.ServiceManager {
	if host == "" {
		return nil
	}
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}
	return meilisearch.New(host, meilisearch.WithAPIKey(key))
}
