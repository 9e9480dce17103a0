// Package httpapi exposes the chat search pipeline and catalog listing over HTTP.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	apperrors "smartshop-search/internal/common/errors"
	"smartshop-search/internal/common/logger"
	"smartshop-search/internal/common/observability"
	"smartshop-search/internal/models"
	composeresponse "smartshop-search/internal/pipeline/compose-response"
)

type ChatSearcher interface {
	Search(ctx context.Context, utterance string) (composeresponse.Envelope, error)
}

type Catalog interface {
	ListPaged(ctx context.Context, page, limit int) ([]models.Product, int, error)
	Ping(ctx context.Context) bool
}

type Options struct {
	// Production hides raw error detail from response bodies.
	Production       bool
	GeminiConfigured bool
	AllowedOrigin    string
	// MetricsHandler is mounted on /metrics when set.
	MetricsHandler http.Handler
}

type Server struct {
	opts    Options
	chat    ChatSearcher
	catalog Catalog
	obs     *observability.Observability
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

func NewServer(opts Options, chat ChatSearcher, catalog Catalog, obs *observability.Observability, log logger.Logger) *Server {
	log = log.WithFields(map[string]interface{}{"component": "httpapi"})
	return &Server{
		opts:    opts,
		chat:    chat,
		catalog: catalog,
		obs:     obs,
		errors:  apperrors.NewErrorHandler(log),
		logger:  log,
	}
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.RegisterRoutes(r)

	// mux skips route middleware for these two handlers.
	r.NotFoundHandler = s.accessLog(http.HandlerFunc(s.notFound))
	r.MethodNotAllowedHandler = s.accessLog(http.HandlerFunc(s.methodNotAllowed))
	r.Use(s.accessLog)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{s.opts.AllowedOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	})

	return s.requestID(s.recoverer(c.Handler(r)))
}

// RegisterRoutes wires every endpoint onto r.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/chat/client", s.chatHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/products", s.productsHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	if s.opts.MetricsHandler != nil {
		r.Handle("/metrics", s.opts.MetricsHandler).Methods(http.MethodGet)
	}
}
