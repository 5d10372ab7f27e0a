package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/inspikalu/sol-capsule/app"
	"github.com/inspikalu/sol-capsule/models"

	log "github.com/sirupsen/logrus"
)

const (
	APIName = "api"

	shutdownTimeout = 10 * time.Second
)

// NewRouter wires the capsule and registry routes. Every capsule route keeps
// the wallet or nft address in the second segment.
func NewRouter(h *Handler, limiter *RateLimiter, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", h.HealthCheck)
	router.GET("/marketplace", h.Marketplace)

	capsules := router.Group("/capsules")
	{
		capsules.POST("", limiter.Middleware(), h.CreateCapsule)
		capsules.GET("/:address", h.ListCapsules)
		capsules.POST("/:address/toggle-listing", h.ToggleListing)
		capsules.GET("/:address/:nft/unlock", h.UnlockCapsule)
	}

	runs := router.Group("/runs")
	{
		runs.GET("/:id", h.GetRun)
		runs.POST("/:id/resume", limiter.Middleware(), h.ResumeRun)
	}

	return router
}

// Server runs the HTTP API as one of the process services.
type Server struct {
	httpServer *http.Server
	wg         *sync.WaitGroup

	healthMu sync.RWMutex
	health   models.ServiceHealth
}

var _ app.Service = &Server{}

func (s *Server) Start() {
	log.Info("[API] Listening on ", s.httpServer.Addr)
	s.setHealthy(true)
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("[API] Server error: ", err)
	}
	s.setHealthy(false)
	s.wg.Done()
}

func (s *Server) setHealthy(healthy bool) {
	s.healthMu.Lock()
	defer s.healthMu.Unlock()
	s.health.Healthy = healthy
	s.health.LastSyncTime = time.Now()
}

func (s *Server) Health() models.ServiceHealth {
	s.healthMu.RLock()
	defer s.healthMu.RUnlock()
	return s.health
}

func (s *Server) Stop() {
	log.Debug("[API] Stopping server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error("[API] Error shutting down server: ", err)
	}
}

func NewServer(wg *sync.WaitGroup, h *Handler) *Server {
	log.Debug("[API] Initializing api")

	gin.SetMode(gin.ReleaseMode)
	config := app.Config.API
	router := NewRouter(h, NewRateLimiter(config.CreateRatePerMin), config.AllowedOrigins)

	s := &Server{
		httpServer: &http.Server{
			Addr:              config.ListenAddress,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		wg:     wg,
		health: models.ServiceHealth{Name: APIName},
	}

	log.Info("[API] Initialized api")
	return s
}
