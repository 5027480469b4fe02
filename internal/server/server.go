package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/warblerhq/warbler/config"
	"github.com/warblerhq/warbler/internal/api"
	"github.com/warblerhq/warbler/internal/database"
	"github.com/warblerhq/warbler/internal/middleware"
	"github.com/warblerhq/warbler/internal/service"
)

// Server is the HTTP server around the assembled router.
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
}

// New assembles the router and wraps it in an HTTP server.
func New(db *gorm.DB, cfg *config.Config) *Server {
	router := NewRouter(db, cfg)
	return &Server{
		router: router,
		db:     db,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: router,
		},
	}
}

// NewRouter builds the gin engine with all middleware and routes. Redis and
// S3 are optional collaborators; without them the server runs with rate
// limiting and image upload disabled.
func NewRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	metrics := middleware.NewMetrics()

	users := service.NewUserService(db)
	auth := service.NewAuthService(db)
	messages := service.NewMessageService(db)
	likes := service.NewLikeService(db)
	feed := service.NewFeedService(db)

	sessions := middleware.NewSessionManager(cfg.SessionSecret, users)

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.NoCache(),
		metrics.Count(),
		sessions.Resolve(),
	)

	router.LoadHTMLGlob(cfg.TemplateGlob)
	router.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "404.html", gin.H{})
	})

	// Login rate limiting wants Redis; without it the credential forms run
	// unguarded, matching how the rest of the stack degrades.
	var authGuards []gin.HandlerFunc
	if cfg.RedisHost != "" || cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg)
		if err != nil {
			logrus.WithError(err).Warn("Redis unavailable, continuing without rate limiting")
		} else {
			limiter := middleware.NewLoginRateLimiter(redisClient)
			authGuards = append(authGuards, limiter.Limit(sessions))
		}
	}

	var images *service.ImageService
	if cfg.S3Bucket != "" {
		svc, err := service.NewImageService(context.Background(), cfg)
		if err != nil {
			logrus.WithError(err).Warn("S3 unavailable, continuing without image upload")
		} else {
			images = svc
		}
	}

	router.GET("/health", api.HealthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api.NewHomeHandler(feed, sessions).RegisterRoutes(router)
	api.NewAuthHandler(auth, sessions).RegisterRoutes(router, authGuards...)
	api.NewUserHandler(users, messages, likes, auth, images, sessions, metrics).RegisterRoutes(router)
	api.NewMessageHandler(messages, sessions, metrics).RegisterRoutes(router)

	return router
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	logrus.WithField("addr", s.http.Addr).Info("Starting server")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
