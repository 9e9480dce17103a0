package httpapi

import (
	"io"
	"math"
	"net/http"
	"strconv"

	apperrors "smartshop-search/internal/common/errors"
	"smartshop-search/internal/common/validation"
	"smartshop-search/internal/models"
	composeresponse "smartshop-search/internal/pipeline/compose-response"
)

const (
	maxChatBodyBytes = 64 << 10

	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	messageListingFailed = "error while fetching products"
	messageRouteNotFound = "route not found"
	messageMethodInvalid = "method not allowed"
)

type productsResponse struct {
	Success    bool              `json:"success"`
	Data       []models.Product  `json:"data"`
	Pagination models.Pagination `json:"pagination"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Gemini   string `json:"gemini,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxChatBodyBytes))
	if err != nil {
		s.rejectChat(w, r, "request body too large or unreadable")
		return
	}

	utterance, result := validation.ValidateChatRequest(body)
	if !result.Valid {
		s.rejectChat(w, r, result.Error())
		return
	}

	env, err := s.chat.Search(r.Context(), utterance)
	if err != nil {
		_, status := s.errors.HandleRequestError(r.URL.Path, err)
		writeJSON(w, status, env)
		return
	}

	writeJSON(w, http.StatusOK, env)
}

func (s *Server) rejectChat(w http.ResponseWriter, r *http.Request, detail string) {
	stdErr, status := s.errors.HandleRequestError(r.URL.Path, apperrors.NewValidationError(detail))
	writeJSON(w, status, composeresponse.Failure(stdErr.Code, s.detail(detail)))
}

func (s *Server) productsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := positiveInt(q.Get("page"), defaultPage)
	limit := positiveInt(q.Get("limit"), defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}

	products, total, err := s.catalog.ListPaged(r.Context(), page, limit)
	if err != nil {
		s.errors.HandleRequestError(r.URL.Path, apperrors.NewStoreError(err))
		writeJSON(w, http.StatusInternalServerError, statusResponse{Success: false, Message: messageListingFailed})
		return
	}

	writeJSON(w, http.StatusOK, productsResponse{
		Success:    true,
		Data:       products,
		Pagination: models.NewPagination(page, limit, total),
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if !s.catalog.Ping(r.Context()) {
		writeJSON(w, http.StatusInternalServerError, healthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    s.detail("catalog store did not answer"),
		})
		return
	}

	gemini := "missing"
	if s.opts.GeminiConfigured {
		gemini = "configured"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "healthy",
		Database: "connected",
		Gemini:   gemini,
	})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.errors.HandleRequestError(r.URL.Path, apperrors.NewRouteNotFoundError(r.URL.Path))
	writeJSON(w, http.StatusNotFound, statusResponse{Success: false, Message: messageRouteNotFound})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.errors.HandleRequestError(r.URL.Path, apperrors.NewMethodNotAllowedError(r.Method))
	writeJSON(w, http.StatusMethodNotAllowed, statusResponse{Success: false, Message: messageMethodInvalid})
}

func (s *Server) detail(msg string) string {
	if s.opts.Production {
		return ""
	}
	return msg
}

// positiveInt parses raw, falling back to def when it is absent, not an
// integer or below one.
func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > math.MaxInt32 {
		return def
	}
	return n
}
