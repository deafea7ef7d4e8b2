// Package web is the UI layer: a gin server that owns session state, renders
// the question page, and exposes a small JSON API. The pipeline underneath is
// stateless; this layer supplies the prior answer, appends to history, and
// writes the interaction log.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docqa/config"
	"docqa/internal/adapter/webloader"
	"docqa/internal/chatlog"
	"docqa/internal/port"
	"docqa/internal/usecase"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server wires the pipeline into HTTP handlers.
type Server struct {
	cfg      *config.Config
	log      *slog.Logger
	chat     *chatlog.Logger
	sessions *SessionStore

	retriever port.Retriever
	backends  map[string]port.Generator
	ingest    *usecase.IngestUseCase
	loader    *webloader.Loader

	engine *gin.Engine
}

// NewServer builds the server. backends maps the config backend names to their
// generators; retriever may wrap a cache.
func NewServer(
	cfg *config.Config,
	log *slog.Logger,
	chat *chatlog.Logger,
	retriever port.Retriever,
	backends map[string]port.Generator,
	ingest *usecase.IngestUseCase,
	loader *webloader.Loader,
) (*Server, error) {
	s := &Server{
		cfg:       cfg,
		log:       log,
		chat:      chat,
		sessions:  NewSessionStore(),
		retriever: retriever,
		backends:  backends,
		ingest:    ingest,
		loader:    loader,
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	engine.SetHTMLTemplate(tmpl)

	engine.GET("/", s.indexPage)
	engine.POST("/ask", s.askForm)
	engine.GET("/healthz", s.health)

	api := engine.Group("/api")
	api.POST("/ask", s.askJSON)
	api.GET("/documents", s.listDocuments)
	api.POST("/documents", s.uploadDocument)

	s.engine = engine
	return s, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving", slog.String("addr", s.cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("took", time.Since(start)),
		)
	}
}

func (s *Server) backend(name string) (port.Generator, error) {
	if name == "" {
		name = s.cfg.Synthesis.Backend
	}
	gen, ok := s.backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %q", name)
	}
	return gen, nil
}
