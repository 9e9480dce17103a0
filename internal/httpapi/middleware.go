package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	apperrors "smartshop-search/internal/common/errors"
	composeresponse "smartshop-search/internal/pipeline/compose-response"
)

const RequestIDHeader = "X-Request-ID"

type ctxKey int

const requestIDKey ctxKey = iota

// RequestIDFrom returns the id assigned to the request, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err := fmt.Errorf("panic: %v", rec)
			s.logger.Error("handler panicked", map[string]interface{}{
				"error":     err.Error(),
				"path":      r.URL.Path,
				"requestId": RequestIDFrom(r.Context()),
			})
			writeJSON(w, http.StatusInternalServerError, composeresponse.Failure(apperrors.ErrCodeInternal, s.detail(err.Error())))
		}()
		next.ServeHTTP(w, r)
	})
}

// unmatchedRoute is the route label for requests no route accepted.
const unmatchedRoute = "unmatched"

// accessLog runs inside the router so the matched route template is known.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := unmatchedRoute
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		duration := time.Since(start)

		s.obs.RecordRequest(r.Context(), r.Method, route, rec.status, duration)
		s.logger.Info("request completed", map[string]interface{}{
			"method":     r.Method,
			"route":      route,
			"path":       r.URL.Path,
			"status":     rec.status,
			"durationMs": duration.Milliseconds(),
			"requestId":  RequestIDFrom(r.Context()),
		})
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
