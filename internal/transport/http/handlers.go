package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/sharipovr/aws-url-shortener/internal/endpoint"
)

// MaxRequestBodySize is the maximum allowed request body size (1MB)
const MaxRequestBodySize = 1 << 20

// Handler holds the HTTP handlers for the URL shortener
type Handler struct {
	endpoints *endpoint.Endpoints
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(endpoints *endpoint.Endpoints, logger *zap.Logger) *Handler {
	return &Handler{
		endpoints: endpoints,
		logger:    logger,
	}
}

// CreateLink handles POST /urls
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		h.logger.Warn("failed to read request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, endpoint.MsgInvalidJSON)
		return
	}

	writeResponse(w, h.endpoints.CreateShortLink(r.Context(), body))
}

// GetLinkInfo handles GET /urls/{short_code}
func (h *Handler) GetLinkInfo(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, h.endpoints.GetLinkInfo(r.Context(), mux.Vars(r)["short_code"]))
}

// Redirect handles GET /{short_code}. The bare root resolves an empty code.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, h.endpoints.ResolveAndCount(r.Context(), mux.Vars(r)["short_code"]))
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, `{"status":"ok"}`)
}

// NotFound answers unknown routes with a JSON error
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}

// MethodNotAllowed answers known routes requested with the wrong method
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func writeResponse(w http.ResponseWriter, resp endpoint.Response) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	body, _ := json.Marshal(map[string]string{"error": message})
	writeJSON(w, status, string(body))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
