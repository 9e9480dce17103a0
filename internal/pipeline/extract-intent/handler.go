package extractintent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartshop-search/internal/common/logger"
	"smartshop-search/internal/common/metrics"
)

const Component = "extract-intent"

var (
	ErrUpstreamUnavailable = errors.New("UPSTREAM_UNAVAILABLE")
	ErrUpstreamError       = errors.New("UPSTREAM_ERROR")
)

type Handler struct {
	config    *Config
	completer Completer
	logger    logger.Logger
}

func NewHandler(config *Config, completer Completer, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	if config.Timeout <= 0 {
		config.Timeout = LoadConfig().Timeout
	}
	return &Handler{
		config:    config,
		completer: completer,
		logger:    log.WithFields(map[string]interface{}{"component": Component}),
	}
}

// Execute asks the language service to extract intent from utterance and
// returns its raw text. The whole call, retries included, is bounded by
// Config.Timeout.
func (h *Handler) Execute(ctx context.Context, utterance string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	req := CompletionRequest{
		Prompt:          BuildPrompt(utterance),
		Temperature:     h.config.Temperature,
		MaxOutputTokens: h.config.MaxOutputTokens,
	}

	start := time.Now()
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", h.fail(fmt.Errorf("%w: %v", ErrUpstreamUnavailable, ctx.Err()), attempt)
			}
		}

		raw, err := h.completer.Complete(ctx, req)
		if err == nil {
			metrics.IntentExtractionsTotal.WithLabelValues("ok").Inc()
			h.logger.Debug("intent extracted", map[string]interface{}{
				"attempt":    attempt + 1,
				"durationMs": time.Since(start).Milliseconds(),
				"rawLength":  len(raw),
			})
			return raw, nil
		}
		lastErr = err

		// A blown deadline will not recover on retry.
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			if !errors.Is(err, ErrUpstreamUnavailable) {
				err = fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
			}
			return "", h.fail(err, attempt+1)
		}
	}

	if !errors.Is(lastErr, ErrUpstreamUnavailable) && !errors.Is(lastErr, ErrUpstreamError) {
		lastErr = fmt.Errorf("%w: %v", ErrUpstreamError, lastErr)
	}
	return "", h.fail(lastErr, h.config.MaxRetries+1)
}

func (h *Handler) fail(err error, attempts int) error {
	result := "upstream_error"
	if errors.Is(err, ErrUpstreamUnavailable) {
		result = "upstream_unavailable"
	}
	metrics.IntentExtractionsTotal.WithLabelValues(result).Inc()
	h.logger.Warn("intent extraction failed", map[string]interface{}{
		"error":    err.Error(),
		"result":   result,
		"attempts": attempts,
	})
	return err
}
