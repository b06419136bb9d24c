package server

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fomo-campus/fomo-portal/internal/handler"
	"github.com/fomo-campus/fomo-portal/internal/repository"
	"github.com/fomo-campus/fomo-portal/internal/service"
	"github.com/fomo-campus/fomo-portal/pkg/cms"
	"github.com/fomo-campus/fomo-portal/pkg/config"
	"github.com/fomo-campus/fomo-portal/pkg/export"
)

const directoryNamespace = "directory"

// New builds the portal from configuration: CMS client, repositories,
// services and handlers mounted on a router.
func New(cfg *config.Config, rdb *redis.Client, log *zap.Logger) (*gin.Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	metrics := service.NewMetricsService()

	client, err := cms.New(cms.Options{
		BaseURL:      cfg.Backend.URL,
		MediaBaseURL: cfg.Backend.MediaBaseURL,
		Timeout:      cfg.Backend.Timeout,
		Logger:       log.Named("cms"),
		Observer:     metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("cms client: %w", err)
	}

	validate := validator.New()

	users := repository.NewUserRepository(client)
	colleges := repository.NewCollegeProfileRepository(client, log)
	students := repository.NewStudentProfileRepository(client, log)
	media := repository.NewMediaRepository(client)
	sessionsRepo := repository.NewSessionRepository(rdb)

	var cacheClient *redis.Client
	if cfg.Directory.CacheEnabled {
		cacheClient = rdb
	}
	cache := service.NewCacheService(
		repository.NewCacheRepository(cacheClient, directoryNamespace, log),
		metrics,
		cfg.Directory.CacheTTL,
		log,
		cfg.Directory.CacheEnabled,
	)

	sessionSvc := service.NewSessionService(sessionsRepo, users, service.SessionConfig{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
	}, validate, log)
	collegeSvc := service.NewCollegeProfileService(colleges, users, cache, validate, log)
	studentSvc := service.NewStudentProfileService(students, media, cache, validate, log)
	directorySvc := service.NewDirectoryService(students, collegeSvc, cache, service.DirectoryConfig{
		CacheTTL: cfg.Directory.CacheTTL,
		AssetURL: client.AssetURL,
	}, log, export.NewCSVExporter(), export.NewPDFExporter())

	checks := map[string]handler.Pinger{}
	if rdb != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	handlers := Handlers{
		Auth: handler.NewAuthHandler(sessionSvc, handler.CookieConfig{
			Name:   cfg.Session.CookieName,
			MaxAge: int(sessionSvc.TTL().Seconds()),
			Secure: cfg.Session.Secure,
		}, log),
		Home:           handler.NewHomeHandler(sessionSvc),
		CollegeProfile: handler.NewCollegeProfileHandler(collegeSvc, sessionSvc, 2*cfg.Backend.Timeout, log),
		Students:       handler.NewStudentsHandler(directorySvc, sessionSvc, log),
		StudentProfile: handler.NewStudentProfileHandler(studentSvc, cfg.Upload.MaxBytes),
		Metrics:        handler.NewMetricsHandler(metrics, checks, log),
	}

	return NewRouter(Options{
		Sessions:       sessionSvc,
		Metrics:        metrics,
		CookieName:     cfg.Session.CookieName,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         log,
	}, handlers), nil
}
