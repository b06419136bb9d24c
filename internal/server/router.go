// Package server assembles the portal's gin engine.
package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/fomo-campus/fomo-portal/internal/handler"
	"github.com/fomo-campus/fomo-portal/internal/middleware"
	"github.com/fomo-campus/fomo-portal/internal/service"
	"github.com/fomo-campus/fomo-portal/pkg/logger"
	corsmiddleware "github.com/fomo-campus/fomo-portal/pkg/middleware/cors"
	reqidmiddleware "github.com/fomo-campus/fomo-portal/pkg/middleware/requestid"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Auth           *handler.AuthHandler
	Home           *handler.HomeHandler
	CollegeProfile *handler.CollegeProfileHandler
	Students       *handler.StudentsHandler
	StudentProfile *handler.StudentProfileHandler
	Metrics        *handler.MetricsHandler
}

// Options configures NewRouter.
type Options struct {
	Sessions       *service.SessionService
	Metrics        *service.MetricsService
	CookieName     string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
}

// NewRouter wires middleware and routes. Page routes run behind
// RequireSession so visitors without a token never reach the CMS.
func NewRouter(opts Options, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	pages := r.Group("/")
	pages.Use(middleware.WithResponseMeta())
	pages.Use(middleware.Session(opts.Sessions, opts.CookieName, log))

	pages.GET("/", h.Home.Home)
	pages.POST("/auth/session", h.Auth.StartSession)
	pages.DELETE("/auth/session", h.Auth.EndSession)

	guarded := pages.Group("/")
	guarded.Use(middleware.RequireSession(opts.Metrics))

	guarded.POST("/auth/college-profile", h.CollegeProfile.Setup)

	colleges := guarded.Group("/colleges")
	colleges.GET("/profile", h.CollegeProfile.Show)
	colleges.DELETE("/profile", h.CollegeProfile.Delete)
	colleges.GET("/profile/status", h.CollegeProfile.Status)
	colleges.POST("/profile/edit", h.CollegeProfile.Edit)
	colleges.PATCH("/profile/draft", h.CollegeProfile.ChangeDraft)
	colleges.POST("/profile/cancel", h.CollegeProfile.Cancel)
	colleges.POST("/profile/save", h.CollegeProfile.Save)
	colleges.GET("/students", h.Students.List)
	colleges.GET("/students/export", h.Students.Export)

	profile := guarded.Group("/profile")
	profile.GET("", h.StudentProfile.Show)
	profile.POST("", h.StudentProfile.Create)
	profile.GET("/status", h.StudentProfile.Status)
	profile.POST("/media", h.StudentProfile.UploadMedia)
	profile.PUT("/:documentId", h.StudentProfile.Update)

	return r
}
