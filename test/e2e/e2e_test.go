// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartshop-search/internal/common/logger"
	"smartshop-search/internal/httpapi"
	chatsearch "smartshop-search/internal/pipeline/chat-search"
	extractintent "smartshop-search/internal/pipeline/extract-intent"
	parseintent "smartshop-search/internal/pipeline/parse-intent"
	querycatalog "smartshop-search/internal/pipeline/query-catalog"
)

var (
	db          *sql.DB
	redisClient *redis.Client
)

// scriptedCompleter answers with a fixed extraction per utterance.
type scriptedCompleter map[string]string

func (s scriptedCompleter) Complete(_ context.Context, req extractintent.CompletionRequest) (string, error) {
	for utterance, reply := range s {
		if strings.Contains(req.Prompt, `customer request: "`+utterance+`"`) {
			return reply, nil
		}
	}
	return "I am not sure.", nil
}

func TestMain(m *testing.M) {
	dsn := os.Getenv("E2E_DATABASE_DSN")
	if dsn == "" {
		fmt.Println("E2E_DATABASE_DSN not set, skipping e2e suite")
		os.Exit(0)
	}

	var err error
	db, err = sql.Open("postgres", dsn)
	if err != nil {
		panic(fmt.Sprintf("failed to open postgres: %v", err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		panic(fmt.Sprintf("failed to reach postgres: %v", err))
	}
	cancel()

	if addr := os.Getenv("E2E_REDIS_ADDRESS"); addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: addr})
	}

	code := m.Run()

	if redisClient != nil {
		redisClient.Close()
	}
	db.Close()
	os.Exit(code)
}

func setupPostgresTestData(t *testing.T, catalog *querycatalog.Handler) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, catalog.EnsureSchema(ctx))
	_, err := db.ExecContext(ctx, `TRUNCATE products RESTART IDENTITY`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO products (name, description, price) VALUES
		('Chaussures de sport Runner', 'Chaussures légères pour la course', 59.90),
		('Chaussures de sport Trail', 'Semelle crantée', 129.00),
		('Sandales', 'Pour l''été', 25.00),
		('Téléphone X', 'Écran 6 pouces', 499.00),
		('Stylo', NULL, 1.50)`)
	require.NoError(t, err)
}

func newStack(t *testing.T) (http.Handler, *querycatalog.Handler) {
	t.Helper()
	log := logger.NewTestLogger(t)

	catalog := querycatalog.NewHandler(querycatalog.LoadConfig(), db, log)
	extractor := extractintent.NewHandler(nil, scriptedCompleter{
		"Je cherche des chaussures de sport à moins de 100€": "```json\n{\"search\": \"chaussures de sport\", \"max_price\": 100}\n```",
		"Montre-moi des téléphones":                          `{"search": "téléphone", "max_price": null}`,
		"Bonjour":                                            `{"search": "", "max_price": null}`,
	}, log)

	var cache *chatsearch.IntentCache
	if redisClient != nil {
		cache = chatsearch.NewIntentCache(redisClient, time.Minute, log)
	}

	chat := chatsearch.NewService(chatsearch.Config{ExposeErrorDetail: true}, extractor,
		parseintent.NewHandler(nil, log), catalog, cache, log)

	srv := httpapi.NewServer(httpapi.Options{AllowedOrigin: "http://localhost:5173", GeminiConfigured: true},
		chat, catalog, nil, log)
	return srv.Handler(), catalog
}

func post(t *testing.T, h http.Handler, message string) (int, map[string]interface{}) {
	t.Helper()
	body, err := json.Marshal(map[string]string{"message": message})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/client", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestE2E_ChatSearch(t *testing.T) {
	h, catalog := newStack(t)
	setupPostgresTestData(t, catalog)

	t.Run("filtered search", func(t *testing.T) {
		status, body := post(t, h, "Je cherche des chaussures de sport à moins de 100€")

		assert.Equal(t, http.StatusOK, status)
		products := body["products"].([]interface{})
		require.Len(t, products, 1)
		assert.Equal(t, "Chaussures de sport Runner", products[0].(map[string]interface{})["name"])
	})

	t.Run("case-insensitive match", func(t *testing.T) {
		status, body := post(t, h, "Montre-moi des téléphones")

		assert.Equal(t, http.StatusOK, status)
		assert.Len(t, body["products"], 1)
	})

	t.Run("greeting lists cheapest first", func(t *testing.T) {
		status, body := post(t, h, "Bonjour")

		assert.Equal(t, http.StatusOK, status)
		products := body["products"].([]interface{})
		require.Len(t, products, 5)
		assert.Equal(t, "Stylo", products[0].(map[string]interface{})["name"])
		assert.Equal(t, map[string]interface{}{"search": nil, "max_price": nil}, body["filtersApplied"])
	})

	t.Run("unparseable extraction degrades", func(t *testing.T) {
		status, body := post(t, h, "asdfghjkl")

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["success"])
	})

	t.Run("injection attempt stays a literal", func(t *testing.T) {
		status, _ := post(t, h, "'; DROP TABLE products; --")
		assert.Equal(t, http.StatusOK, status)

		var count int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&count))
		assert.Equal(t, 5, count)
	})
}

func TestE2E_ProductsAndHealth(t *testing.T) {
	h, catalog := newStack(t)
	setupPostgresTestData(t, catalog)

	req := httptest.NewRequest(http.MethodGet, "/api/products?page=2&limit=2", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Data       []map[string]interface{} `json:"data"`
		Pagination map[string]int           `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Len(t, listing.Data, 2)
	assert.Equal(t, map[string]int{"page": 2, "limit": 2, "total": 5, "pages": 3}, listing.Pagination)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "healthy", "database": "connected", "gemini": "configured"}`, rec.Body.String())
}
