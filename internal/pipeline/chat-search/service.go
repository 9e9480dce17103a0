package chatsearch

import (
	"context"
	"errors"
	"time"

	apperrors "smartshop-search/internal/common/errors"
	"smartshop-search/internal/common/logger"
	"smartshop-search/internal/common/metrics"
	"smartshop-search/internal/models"
	buildquery "smartshop-search/internal/pipeline/build-query"
	extractintent "smartshop-search/internal/pipeline/extract-intent"
	composeresponse "smartshop-search/internal/pipeline/compose-response"
	parseintent "smartshop-search/internal/pipeline/parse-intent"
	querycatalog "smartshop-search/internal/pipeline/query-catalog"
)

type Extractor interface {
	Execute(ctx context.Context, utterance string) (string, error)
}

type Parser interface {
	Parse(raw string) parseintent.Result
}

type Catalog interface {
	Execute(ctx context.Context, q models.CatalogQuery) ([]models.Product, error)
}

type Config struct {
	// ExposeErrorDetail copies raw store errors into failure envelopes.
	ExposeErrorDetail bool
}

// Service runs one utterance through extraction, parsing, query building,
// catalog lookup and composition.
type Service struct {
	config    Config
	extractor Extractor
	parser    Parser
	catalog   Catalog
	cache     *IntentCache
	logger    logger.Logger
}

func NewService(config Config, extractor Extractor, parser Parser, catalog Catalog, cache *IntentCache, log logger.Logger) *Service {
	return &Service{
		config:    config,
		extractor: extractor,
		parser:    parser,
		catalog:   catalog,
		cache:     cache,
		logger:    log.WithFields(map[string]interface{}{"component": "chat-search"}),
	}
}

// Search answers an utterance. Extraction and parse failures degrade to the
// neutral intent. A catalog fault returns a failure envelope together with
// a *errors.StandardError carrying the HTTP classification.
func (s *Service) Search(ctx context.Context, utterance string) (composeresponse.Envelope, error) {
	start := time.Now()

	intent := s.resolveIntent(ctx, utterance)
	query := buildquery.Build(intent)

	products, err := s.catalog.Execute(ctx, query)
	if err != nil {
		stdErr := apperrors.NewStoreError(err)
		if errors.Is(err, querycatalog.ErrStoreUnavailable) {
			stdErr = apperrors.NewStoreUnavailableError(err)
		}

		detail := ""
		if s.config.ExposeErrorDetail {
			detail = err.Error()
		}

		metrics.ChatRequestsTotal.WithLabelValues("store_failure").Inc()
		return composeresponse.Failure(stdErr.Code, detail), stdErr
	}

	outcome := "matched"
	if len(products) == 0 {
		outcome = "empty"
	}
	metrics.ChatRequestsTotal.WithLabelValues(outcome).Inc()
	metrics.ProductsReturned.Observe(float64(len(products)))

	s.logger.Info("chat search served", map[string]interface{}{
		"search":      intent.Search,
		"hasMaxPrice": intent.HasMaxPrice(),
		"rowCount":    len(products),
		"durationMs":  time.Since(start).Milliseconds(),
	})

	return composeresponse.Success(products, intent), nil
}

func (s *Service) resolveIntent(ctx context.Context, utterance string) models.SearchIntent {
	if intent, ok := s.cache.Get(ctx, utterance); ok {
		return intent
	}

	raw, err := s.extractor.Execute(ctx, utterance)
	if err != nil {
		stdErr := apperrors.NewUpstreamError(err)
		if errors.Is(err, extractintent.ErrUpstreamUnavailable) {
			stdErr = apperrors.NewUpstreamUnavailableError(err)
		}
		return s.degrade(stdErr)
	}

	result := s.parser.Parse(raw)
	if result.IsFallback() {
		return s.degrade(apperrors.NewParseFailureError(result.Err))
	}

	s.cache.Set(ctx, utterance, result.Intent)
	return result.Intent
}

// degrade records an absorbed extraction failure and returns the neutral intent.
func (s *Service) degrade(stdErr *apperrors.StandardError) models.SearchIntent {
	metrics.IntentDegradedTotal.WithLabelValues(string(stdErr.Code)).Inc()

	fields := map[string]interface{}{
		"errorCode":     stdErr.Code,
		"errorCategory": apperrors.GetErrorCategory(stdErr.Code),
		"retryable":     stdErr.Retryable,
		"error":         stdErr.Details,
	}
	if apperrors.IsAbsorbed(stdErr.Code) {
		s.logger.Warn("using neutral intent", fields)
	} else {
		s.logger.Error("unexpected intent failure, using neutral intent", fields)
	}
	return models.NeutralIntent()
}
