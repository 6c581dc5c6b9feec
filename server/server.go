package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"rental-search/metrics"
	"rental-search/utils"
)

//go:embed templates/*.html
var templatesFS embed.FS

const headerRequestID = "X-Request-ID"

// Server serves the search page, the JSON API, health and metrics.
type Server struct {
	addr   string
	engine *gin.Engine
	logger *utils.Logger
}

// New builds the gin engine with all routes registered.
func New(addr string, searcher Searcher, logger *utils.Logger) *Server {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger.Zerolog()))
	r.Use(metrics.Middleware())
	r.SetHTMLTemplate(template.Must(
		template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html"),
	))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	NewHandler(searcher).RegisterRoutes(r)

	return &Server{addr: addr, engine: r, logger: logger}
}

// Handler exposes the engine for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("[server] Listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("[server] Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// requestLogger tags each request with an ID and logs it on completion.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(headerRequestID, reqID)

		c.Next()

		logger.Info().
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Int("status", c.Writer.Status()).
			Float64("latency_ms", float64(time.Since(start).Microseconds())/1000).
			Msg("request completed")
	}
}
