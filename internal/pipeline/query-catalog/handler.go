package querycatalog

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/lib/pq"

	"smartshop-search/internal/common/logger"
	"smartshop-search/internal/common/metrics"
	"smartshop-search/internal/models"
	"smartshop-search/internal/pipeline/query-catalog/queries"
)

const Component = "query-catalog"

var (
	ErrStoreUnavailable = errors.New("STORE_UNAVAILABLE")
	ErrStoreError       = errors.New("STORE_ERROR")
)

type Handler struct {
	config *Config
	db     queries.Querier
	logger logger.Logger
}

func NewHandler(config *Config, db queries.Querier, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	if config.Timeout <= 0 {
		config.Timeout = LoadConfig().Timeout
	}
	if config.MaxPageLimit <= 0 {
		config.MaxPageLimit = LoadConfig().MaxPageLimit
	}
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": Component}),
	}
}

// Execute runs a built query with its arguments bound positionally.
func (h *Handler) Execute(ctx context.Context, q models.CatalogQuery) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	start := time.Now()
	products, err := queries.SearchProducts(ctx, h.db, q)
	metrics.CatalogQueryDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, h.fail(ctx, "search", err)
	}

	h.logger.Debug("catalog search executed", map[string]interface{}{
		"clauses":    len(q.Clauses),
		"rowCount":   len(products),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return products, nil
}

// ListPaged returns one page of the catalog ordered by id, and the total row
// count. page and limit are expected to be normalized already.
func (h *Handler) ListPaged(ctx context.Context, page, limit int) ([]models.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > h.config.MaxPageLimit {
		limit = h.config.MaxPageLimit
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	start := time.Now()
	products, err := queries.ListProducts(ctx, h.db, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, h.fail(ctx, "list", err)
	}

	total, err := queries.CountProducts(ctx, h.db)
	metrics.CatalogQueryDuration.WithLabelValues("list").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, 0, h.fail(ctx, "count", err)
	}

	return products, total, nil
}

// Ping reports whether the store answers a trivial query.
func (h *Handler) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	if err := queries.Ping(ctx, h.db); err != nil {
		h.logger.Warn("catalog ping failed", map[string]interface{}{"error": err.Error()})
		return false
	}
	return true
}

// EnsureSchema creates the products table if it does not exist yet.
func (h *Handler) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	if err := queries.EnsureProductsTable(ctx, h.db); err != nil {
		return h.fail(ctx, "schema", err)
	}
	h.logger.Info("products table ready", nil)
	return nil
}

func (h *Handler) fail(ctx context.Context, query string, err error) error {
	kind := ErrStoreError
	if isUnavailable(ctx, err) {
		kind = ErrStoreUnavailable
	}

	metrics.CatalogQueryErrorsTotal.WithLabelValues(query, kind.Error()).Inc()
	h.logger.Error("catalog query failed", map[string]interface{}{
		"query":     query,
		"errorCode": kind.Error(),
		"error":     err.Error(),
	})
	return fmt.Errorf("%w: %v", kind, err)
}

// isUnavailable separates "the store cannot be reached" from "the store
// rejected the statement".
func isUnavailable(ctx context.Context, err error) bool {
	if ctx.Err() != nil ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53", "57":
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return strings.Contains(err.Error(), "sql: database is closed")
}
