// Package server exposes the confirmer over HTTP for a thin web form.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"trade-confirmer/internal/confirm"
	"trade-confirmer/internal/logging"
	"trade-confirmer/internal/security"
	"trade-confirmer/internal/store"
	"trade-confirmer/internal/trading"
)

// Options configures a Server.
type Options struct {
	CacheMaxCost int64
	SessionTTL   time.Duration
	CORSOrigin   string
	Generator    *confirm.Generator
	// Journal, when set, records every confirmation generated over HTTP.
	Journal store.Journal
	Logger  zerolog.Logger
}

// Server holds the router and the state shared by the handlers.
type Server struct {
	R        *gin.Engine
	Parses   *Cache
	Sessions *Cache
	Gen      *confirm.Generator
	Journal  store.Journal
	Logger   zerolog.Logger

	validator *security.InputValidator
	builder   trading.Builder
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewServer wires the router, caches and middleware.
func NewServer(opts Options) (*Server, error) {
	if opts.CacheMaxCost <= 0 {
		opts.CacheMaxCost = 1 << 20
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 8 * time.Hour
	}
	if opts.Generator == nil {
		opts.Generator = confirm.NewGenerator(confirm.DefaultOptions())
	}

	parses, err := NewCache(opts.CacheMaxCost, time.Hour)
	if err != nil {
		return nil, err
	}
	sessions, err := NewCache(opts.CacheMaxCost, opts.SessionTTL)
	if err != nil {
		parses.Close()
		return nil, err
	}

	g := gin.New()
	logger := opts.Logger

	// Request logging
	g.Use(func(cn *gin.Context) {
		start := time.Now()
		cn.Next()
		logging.LogRequest(logger, cn.Request.Method, cn.Request.URL.Path, cn.Writer.Status(), time.Since(start))
	})

	g.Use(gin.Recovery())

	// CORS
	corsOrigin := opts.CORSOrigin
	g.Use(func(cn *gin.Context) {
		origin := cn.GetHeader("Origin")
		cn.Writer.Header().Set("Vary", "Origin")
		cn.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		cn.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		cn.Writer.Header().Set("Access-Control-Max-Age", "86400")
		if corsOrigin == "*" {
			cn.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin != "" && origin == corsOrigin {
			cn.Writer.Header().Set("Access-Control-Allow-Origin", corsOrigin)
		}
		if cn.Request.Method == http.MethodOptions {
			cn.AbortWithStatus(http.StatusNoContent)
			return
		}
		cn.Next()
	})

	s := &Server{
		R:        g,
		Parses:   parses,
		Sessions: sessions,
		Gen:      opts.Generator,
		Journal:  opts.Journal,
		Logger:   logger,

		validator: security.NewInputValidator(),
		builder:   trading.NewBuilder(opts.Generator.Exchange()),
	}

	g.GET("/health", func(cn *gin.Context) { cn.JSON(http.StatusOK, gin.H{"ok": true}) })

	api := g.Group("/api")
	api.POST("/parse", s.parse)
	api.POST("/build", s.build)
	api.POST("/retype", s.retype)
	api.POST("/confirm", s.confirm)
	api.GET("/strategies", s.strategies)
	api.GET("/option-types", s.optionTypes)

	api.POST("/sessions", s.createSession)
	api.GET("/sessions/:id", s.getSession)
	api.DELETE("/sessions/:id", s.deleteSession)
	api.POST("/sessions/:id/parse", s.sessionParse)
	api.POST("/sessions/:id/retype", s.sessionRetype)
	api.PUT("/sessions/:id/legs/:n", s.sessionSetLeg)
	api.POST("/sessions/:id/solve", s.sessionSolve)
	api.POST("/sessions/:id/swap", s.sessionSwap)
	api.POST("/sessions/:id/confirm", s.sessionConfirm)

	return s, nil
}

// Close releases the caches.
func (s *Server) Close() {
	s.Parses.Close()
	s.Sessions.Close()
}

// ServeHTTP lets the server be mounted or tested directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.R.ServeHTTP(w, r)
}
