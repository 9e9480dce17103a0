package querycatalog

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"regexp"
	"syscall"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartshop-search/internal/common/logger"
	"smartshop-search/internal/models"
	buildquery "smartshop-search/internal/pipeline/build-query"
)

var productColumns = []string{"id", "name", "description", "price"}

func createTestConfig() *Config {
	return &Config{Timeout: time.Second, MaxPageLimit: 100}
}

func newMockHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewHandler(createTestConfig(), db, logger.NewTestLogger(t)), mock
}

func price(v float64) *float64 { return &v }

func TestHandler_Execute_BindsArgs(t *testing.T) {
	h, mock := newMockHandler(t)
	q := buildquery.Build(models.SearchIntent{Search: "chaussures de sport", MaxPrice: price(100)})

	mock.ExpectQuery(q.SQL).
		WithArgs("%chaussures de sport%", "%chaussures%", 100.0).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(2, "Running X", "Chaussures de sport légères", 59.9).
			AddRow(1, "Trail Pro", nil, 89.0))

	products, err := h.Execute(context.Background(), q)

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, models.Product{ID: 2, Name: "Running X", Description: "Chaussures de sport légères", Price: 59.9}, products[0])
	assert.Equal(t, "", products[1].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_EmptyResultIsEmptySlice(t *testing.T) {
	h, mock := newMockHandler(t)
	q := buildquery.Build(models.SearchIntent{Search: "xyzzy"})

	mock.ExpectQuery(q.SQL).WithArgs("%xyzzy%", "%xyzzy%").
		WillReturnRows(sqlmock.NewRows(productColumns))

	products, err := h.Execute(context.Background(), q)

	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestHandler_Execute_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, ErrStoreUnavailable},
		{"connection done", sql.ErrConnDone, ErrStoreUnavailable},
		{"deadline", context.DeadlineExceeded, ErrStoreUnavailable},
		{"pq connection failure", &pq.Error{Code: "08006", Message: "connection failure"}, ErrStoreUnavailable},
		{"pq admin shutdown", &pq.Error{Code: "57P01", Message: "terminating connection"}, ErrStoreUnavailable},
		{"pq undefined table", &pq.Error{Code: "42P01", Message: `relation "products" does not exist`}, ErrStoreError},
		{"pq syntax error", &pq.Error{Code: "42601", Message: "syntax error"}, ErrStoreError},
		{"unknown", errors.New("something odd"), ErrStoreError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock := newMockHandler(t)
			q := buildquery.Build(models.NeutralIntent())
			mock.ExpectQuery(q.SQL).WillReturnError(tt.err)

			products, err := h.Execute(context.Background(), q)

			assert.Nil(t, products)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHandler_Execute_ScanError(t *testing.T) {
	h, mock := newMockHandler(t)
	q := buildquery.Build(models.NeutralIntent())

	mock.ExpectQuery(q.SQL).
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow("not-a-number", "x", "y", 1.0))

	_, err := h.Execute(context.Background(), q)

	assert.ErrorIs(t, err, ErrStoreError)
}

func TestHandler_Execute_Timeout(t *testing.T) {
	h, mock := newMockHandler(t)
	h.config.Timeout = 20 * time.Millisecond
	q := buildquery.Build(models.NeutralIntent())

	mock.ExpectQuery(q.SQL).WillDelayFor(time.Second).
		WillReturnRows(sqlmock.NewRows(productColumns))

	_, err := h.Execute(context.Background(), q)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestHandler_ListPaged(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		wantLimit  int
		wantOffset int
	}{
		{"first page", 1, 10, 10, 0},
		{"third page of five", 3, 5, 5, 10},
		{"page below one", 0, 10, 10, 0},
		{"limit above cap", 2, 500, 100, 100},
		{"limit below one", 1, 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock := newMockHandler(t)

			mock.ExpectQuery(`SELECT id, name, description, price FROM products ORDER BY id LIMIT $1 OFFSET $2`).
				WithArgs(tt.wantLimit, tt.wantOffset).
				WillReturnRows(sqlmock.NewRows(productColumns).AddRow(1, "Chaise", "Bois", 45.0))
			mock.ExpectQuery(`SELECT COUNT(*) FROM products`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(23))

			products, total, err := h.ListPaged(context.Background(), tt.page, tt.limit)

			require.NoError(t, err)
			assert.Len(t, products, 1)
			assert.Equal(t, 23, total)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_ListPaged_CountFails(t *testing.T) {
	h, mock := newMockHandler(t)

	mock.ExpectQuery(`SELECT id, name, description, price FROM products ORDER BY id LIMIT $1 OFFSET $2`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(productColumns))
	mock.ExpectQuery(`SELECT COUNT(*) FROM products`).
		WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})

	_, _, err := h.ListPaged(context.Background(), 1, 10)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestHandler_Ping(t *testing.T) {
	h, mock := newMockHandler(t)

	mock.ExpectQuery(`SELECT 1`).WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	assert.True(t, h.Ping(context.Background()))

	mock.ExpectQuery(`SELECT 1`).WillReturnError(&pq.Error{Code: "57P03", Message: "the database system is starting up"})
	assert.False(t, h.Ping(context.Background()))
}

func TestHandler_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	h := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS products")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, h.EnsureSchema(context.Background()))

	mock.ExpectExec("CREATE TABLE").
		WillReturnError(&pq.Error{Code: "42501", Message: "permission denied"})
	assert.ErrorIs(t, h.EnsureSchema(context.Background()), ErrStoreError)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUnavailable(t *testing.T) {
	live := context.Background()
	expired, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want bool
	}{
		{"bad connection", live, driver.ErrBadConn, true},
		{"wrapped bad connection", live, fmt.Errorf("query: %w", driver.ErrBadConn), true},
		{"connection done", live, sql.ErrConnDone, true},
		{"connection reset", live, syscall.ECONNRESET, true},
		{"dial refused", live, &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
		{"too many connections", live, &pq.Error{Code: "53300"}, true},
		{"database closed", live, errors.New("sql: database is closed"), true},
		{"caller gave up", expired, errors.New("anything"), true},
		{"undefined column", live, &pq.Error{Code: "42703"}, false},
		{"invalid byte sequence", live, &pq.Error{Code: "22021"}, false},
		{"plain error", live, errors.New("sqlmock: no expectation"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnavailable(tt.ctx, tt.err))
		})
	}
}
