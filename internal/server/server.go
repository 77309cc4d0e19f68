package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trungkien2003ntk/BookRetrieval/config"
	"github.com/trungkien2003ntk/BookRetrieval/internal/usecase"
)

// Searcher is the orchestration surface the HTTP layer depends on.
type Searcher interface {
	HasProduct(ctx context.Context, productID string) (bool, error)
	SearchByID(ctx context.Context, productID string, limit int) ([]string, error)
	SearchByImage(ctx context.Context, encodedImage string, limit int) ([]string, error)
}

var _ Searcher = (*usecase.SearchService)(nil)

// CollectionCounter exposes collection sizes for the health endpoints.
type CollectionCounter interface {
	Count(ctx context.Context) (int, error)
}

// Server serves the product retrieval API.
type Server struct {
	cfg     config.ServerConfig
	search  Searcher
	textCol CollectionCounter
	imgCol  CollectionCounter
	logger  *slog.Logger
	router  *gin.Engine
	started time.Time
}

// New wires the routes and middleware. Dependencies are constructed once at
// process start and injected here; the server owns no state of its own
// beyond the start timestamp used by the health probes.
func New(cfg config.ServerConfig, search Searcher, textCol, imgCol CollectionCounter, logger *slog.Logger) *Server {
	if cfg.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:     cfg,
		search:  search,
		textCol: textCol,
		imgCol:  imgCol,
		logger:  logger,
		router:  gin.New(),
		started: time.Now(),
	}

	s.router.Use(gin.Recovery(), RequestID())
	if cfg.CORS {
		s.router.Use(CORS())
	}

	product := s.router.Group("/product")
	{
		product.POST("/:product_id/related", s.handleRelatedByID)
		product.POST("/related-by-image", s.handleRelatedByImage)
	}

	s.router.GET("/health", s.handleHealth)
	s.router.GET("/health/detailed", s.handleHealthDetailed)
	s.router.GET("/ready", s.handleReady)
	s.router.GET("/startup", s.handleStartup)

	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("server listening", "addr", s.cfg.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
