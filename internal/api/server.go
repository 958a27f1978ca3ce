package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"datagent/app"
	"datagent/domain/core"
	"datagent/domain/dataset"
	"datagent/internal"
	"datagent/internal/config"
	"datagent/internal/metrics"
	"datagent/internal/storage"
)

// DatasetService is the dataset side of the API
type DatasetService interface {
	Upload(ctx context.Context, filename, path string) (*app.UploadResult, error)
	History(ctx context.Context, id core.DatasetID) ([]*dataset.QueryRecord, error)
	Insights(ctx context.Context, id core.DatasetID) (*dataset.UsageInsights, error)
}

// QueryService answers natural language queries
type QueryService interface {
	Process(ctx context.Context, id core.DatasetID, query string) (*app.QueryResponse, error)
}

var (
	_ DatasetService = (*app.DatasetService)(nil)
	_ QueryService   = (*app.QueryService)(nil)
)

// Server holds the HTTP handlers
type Server struct {
	datasets DatasetService
	queries  QueryService
	uploads  *storage.LocalFileStorage
	metrics  *metrics.Recorder
	config   *config.Config
	logger   *slog.Logger
}

// NewServer creates the API server
func NewServer(cfg *config.Config, datasets DatasetService, queries QueryService, recorder *metrics.Recorder, logger *slog.Logger) *Server {
	return &Server{
		datasets: datasets,
		queries:  queries,
		uploads:  storage.NewLocalFileStorage(cfg.Paths.UploadFolder),
		metrics:  recorder,
		config:   cfg,
		logger:   internal.LoggerOr(logger),
	}
}

// Router builds the chi router
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Post("/upload", s.handleUpload)
		r.Post("/query", s.handleQuery)
		r.Route("/dataset/{id}", func(r chi.Router) {
			r.Get("/history", s.handleHistory)
			r.Get("/insights", s.handleInsights)
		})
	})
	return r
}

// requestLogger tags the request context with chi's request id and logs each request
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := internal.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		s.logger.InfoContext(ctx, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}
