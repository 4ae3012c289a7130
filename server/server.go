package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"presenced/pkg/broadcast"
	"presenced/pkg/config"
	"presenced/pkg/health"
	"presenced/pkg/logger"
	"presenced/pkg/reaper"
	"presenced/pkg/registry"
)

// Server wires the registry, both transport adapters, the broadcaster,
// and the reaper into one process.
type Server struct {
	cfg         *config.ServerConfig
	log         *logger.Logger
	registry    *registry.Registry
	broadcaster *broadcast.Broadcaster
	reaper      *reaper.Reaper
	health      *health.Monitor

	httpServer *http.Server
	serverMu   sync.Mutex
	cancel     context.CancelFunc
	started    bool
	startedMu  sync.Mutex
}

// NewServer creates a server instance from configuration
func NewServer(cfg *config.ServerConfig) *Server {
	log := logger.Get()
	reg := registry.New()
	b := broadcast.New(reg, log)

	return &Server{
		cfg:         cfg,
		log:         log,
		registry:    reg,
		broadcaster: b,
		reaper:      reaper.New(reg, b, cfg.ReapInterval(), cfg.PollTimeout(), log),
		health:      health.NewMonitor(),
	}
}

// Registry exposes the record store, mainly for tests
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// Router builds the gin router with all transport endpoints registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(s.recoveryResponse())
	router.Use(CORSMiddleware())

	// Push transport
	router.GET("/ws", s.ginHandlePush)

	// Poll transport
	router.POST("/api/join", s.handlePollJoin)
	router.POST("/api/leave", s.handlePollLeave)
	router.GET("/api/users", s.handleUsers)
	router.GET("/api/health", s.handleHealth)

	return router
}

// Start runs the background sweeps and serves HTTP until Shutdown
func (s *Server) Start() error {
	s.startedMu.Lock()
	if s.started {
		s.log.WarnWith("server already started, skipping duplicate start")
		s.startedMu.Unlock()
		return nil
	}
	s.started = true
	s.startedMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.serverMu.Lock()
	s.cancel = cancel
	s.serverMu.Unlock()

	go s.reaper.Run(ctx)
	go s.livenessLoop(ctx)

	server := &http.Server{
		Addr:    s.cfg.Address,
		Handler: s.Router(),
	}

	s.serverMu.Lock()
	s.httpServer = server
	s.serverMu.Unlock()

	s.log.InfoWith("server starting", "address", s.cfg.Address)
	return server.ListenAndServe()
}

// Shutdown stops the background sweeps, drains the HTTP server, and
// closes every live push connection.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.InfoWith("initiating graceful shutdown")

	s.startedMu.Lock()
	s.started = false
	s.startedMu.Unlock()

	s.serverMu.Lock()
	httpServer := s.httpServer
	cancel := s.cancel
	s.serverMu.Unlock()

	if cancel != nil {
		cancel()
	}

	if httpServer != nil {
		if err := httpServer.Shutdown(ctx); err != nil {
			s.log.ErrorWithErr("error shutting down HTTP server", err)
			httpServer.Close()
		}
	}

	for _, rec := range s.registry.Snapshot() {
		if rec.Kind == registry.KindPush && rec.Conn != nil {
			if wc, ok := rec.Conn.(*wsConn); ok {
				wc.Close()
			}
		}
		s.registry.Remove(rec.Username)
	}

	s.log.InfoWith("graceful shutdown complete")
	return nil
}

// livenessLoop periodically logs that the relay is alive and how many
// clients it knows about, mirroring an operator heartbeat.
func (s *Server) livenessLoop(ctx context.Context) {
	interval := s.cfg.LivenessInterval()
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.log.InfoWith("server alive", "clients", s.registry.Len(), "uptime_seconds", s.health.Uptime())
		case <-ctx.Done():
			return
		}
	}
}

// recoveryResponse converts an unhandled panic in a poll handler into a
// generic server-error response instead of a dropped connection.
func (s *Server) recoveryResponse() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.log.ErrorWith("panic recovered in request handler", "path", c.Request.URL.Path, "panic", recovered)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "internal server error",
		})
	})
}

// CORSMiddleware allows browser-based poll clients from any origin
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
