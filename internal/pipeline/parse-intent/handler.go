package parseintent

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"smartshop-search/internal/common/logger"
	"smartshop-search/internal/common/metrics"
	"smartshop-search/internal/models"
)

const Component = "parse-intent"

var (
	ErrEmptyOutput    = errors.New("PARSE_EMPTY_OUTPUT")
	ErrOutputTooLarge = errors.New("PARSE_OUTPUT_TOO_LARGE")
	ErrNotJSONObject  = errors.New("PARSE_NOT_JSON_OBJECT")
)

// fencePattern matches a markdown code fence with an optional language tag.
var fencePattern = regexp.MustCompile("```[A-Za-z0-9_+-]*")

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": Component}),
	}
}

// Parse turns raw extractor text into a SearchIntent. It never fails: any
// problem yields the neutral intent tagged as a fallback.
func (h *Handler) Parse(raw string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = h.fallback(raw, fmt.Errorf("%w: panic: %v", ErrNotJSONObject, r))
		}
	}()

	intent, err := h.decode(raw)
	if err != nil {
		return h.fallback(raw, err)
	}

	metrics.IntentParseTotal.WithLabelValues(string(OutcomeOK)).Inc()
	h.logger.Debug("intent parsed", map[string]interface{}{
		"search":      intent.Search,
		"hasMaxPrice": intent.MaxPrice != nil,
	})
	return Result{Intent: intent, Outcome: OutcomeOK}
}

func (h *Handler) fallback(raw string, err error) Result {
	metrics.IntentParseTotal.WithLabelValues(string(OutcomeFallback)).Inc()
	h.logger.Warn("extractor output rejected, using neutral intent", map[string]interface{}{
		"error": err.Error(),
		"raw":   truncate(raw, 200),
	})
	return Result{Intent: models.NeutralIntent(), Outcome: OutcomeFallback, Err: err}
}

func (h *Handler) decode(raw string) (models.SearchIntent, error) {
	if h.config.MaxInputBytes > 0 && len(raw) > h.config.MaxInputBytes {
		return models.SearchIntent{}, fmt.Errorf("%w: %d bytes", ErrOutputTooLarge, len(raw))
	}

	cleaned := Sanitize(raw)
	if cleaned == "" {
		return models.SearchIntent{}, ErrEmptyOutput
	}

	fields, err := decodeObject(cleaned)
	if err != nil {
		// Prose around the object: retry on the outermost brace span.
		span, ok := outermostObject(cleaned)
		if !ok {
			return models.SearchIntent{}, err
		}
		if fields, err = decodeObject(span); err != nil {
			return models.SearchIntent{}, err
		}
	}

	return models.NewSearchIntent(coerceSearch(fields["search"]), coercePrice(fields["max_price"])), nil
}

// Sanitize strips code fences and surrounding whitespace.
func Sanitize(raw string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(strings.TrimSpace(raw), ""))
}

func decodeObject(text string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSONObject, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: null", ErrNotJSONObject)
	}
	return fields, nil
}

func outermostObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	span := text[start : end+1]
	if span == text {
		return "", false
	}
	return span, true
}

func coerceSearch(raw json.RawMessage) string {
	var search string
	if err := json.Unmarshal(raw, &search); err != nil {
		return ""
	}
	return search
}

// coercePrice accepts JSON numbers and numeric strings; anything else,
// including negative or non-finite values, is treated as absent.
func coercePrice(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}

	var f float64
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil
		}
		f = parsed
	} else {
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return nil
		}
		parsed, err := num.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	}

	if !models.ValidPrice(f) {
		return nil
	}
	return &f
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
