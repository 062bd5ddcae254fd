package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/weifish0/file-upload-sys/internal/auth"
	"github.com/weifish0/file-upload-sys/internal/blob"
	"github.com/weifish0/file-upload-sys/internal/config"
	"github.com/weifish0/file-upload-sys/internal/gelf"
	"github.com/weifish0/file-upload-sys/internal/handler"
	"github.com/weifish0/file-upload-sys/internal/repository"
	"github.com/weifish0/file-upload-sys/internal/router"
	"github.com/weifish0/file-upload-sys/internal/service"
	"github.com/weifish0/file-upload-sys/internal/web"
)

func main() {
	godotenv.Load()

	cfg := config.Load()

	if cfg.GelfAddr != "" {
		gw, err := gelf.New(cfg.GelfAddr)
		if err != nil {
			log.Printf("Warning: GELF writer unavailable (%v), logging to stderr only", err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stderr, gw))
			log.Printf("GELF logging enabled, sending to %s", cfg.GelfAddr)
		}
	}

	ctx := context.Background()

	subs, admins, err := buildRepositories(ctx, cfg)
	if err != nil {
		log.Fatalf("Fatal: init store backend %q: %v", cfg.StoreBackend, err)
	}

	blobs, err := buildBlobStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Fatal: init blob backend %q: %v", cfg.BlobBackend, err)
	}

	authSvc := service.NewAuthService(admins)
	if err := authSvc.Bootstrap(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Fatal: bootstrap admin: %v", err)
	}

	subSvc := service.NewSubmissionService(subs, blobs)
	dashSvc := service.NewDashboardService(subs, blobs, cfg.PageSize)
	exportSvc := service.NewExportService(subs, blobs)

	sessions := auth.NewSessionManager(cfg.SessionSecret)
	tmpl := web.Templates()

	publicH := handler.NewPublicHandler(subSvc, sessions, tmpl)
	adminH := handler.NewAdminHandler(authSvc, dashSvc, exportSvc, sessions, tmpl)

	r := router.New(sessions, publicH, adminH, cfg.MaxUploadBytes)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Listening on %s (store=%s, blob=%s)", cfg.HTTPAddr, cfg.StoreBackend, cfg.BlobBackend)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Fatal: %v", err)
	}
}

func buildRepositories(ctx context.Context, cfg *config.Config) (repository.SubmissionRepository, repository.AdminRepository, error) {
	switch cfg.StoreBackend {
	case "mongo":
		db, err := repository.NewMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewMongoSubmissionRepository(db), repository.NewMongoAdminRepository(db), nil
	default:
		db, err := repository.NewPostgresDB(cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresSubmissionRepository(db), repository.NewPostgresAdminRepository(db), nil
	}
}

func buildBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.BlobBackend {
	case "minio":
		return blob.NewMinioStore(ctx, blob.MinioConfig{
			Endpoint:   cfg.MinioEndpoint,
			AccessKey:  cfg.MinioAccessKey,
			SecretKey:  cfg.MinioSecretKey,
			UseSSL:     cfg.MinioUseSSL,
			Bucket:     cfg.MinioBucket,
			PublicRead: cfg.MinioPublicRead,
		})
	default:
		return blob.NewFSStore(cfg.UploadDir)
	}
}
