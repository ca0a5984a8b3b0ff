// Package endpoint turns service results into transport neutral responses
// shared by the HTTP server and the Lambda handler.
package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sharipovr/aws-url-shortener/internal/domain"
	"github.com/sharipovr/aws-url-shortener/internal/errx"
	"github.com/sharipovr/aws-url-shortener/internal/service"
)

// User facing error messages
const (
	MsgInvalidJSON    = "Invalid JSON in request body"
	MsgNotFound       = "Short URL not found"
	MsgInternalError  = "Internal server error"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

// Response is a status, header set and body ready to be written by a transport
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Endpoints assembles responses for the link operations
type Endpoints struct {
	svc     service.LinkService
	baseURL string
	logger  *zap.Logger
}

// New creates the endpoints. baseURL prefixes every returned short URL.
func New(svc service.LinkService, baseURL string, logger *zap.Logger) *Endpoints {
	return &Endpoints{
		svc:     svc,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// ShortURL returns the public URL of a short code
func (e *Endpoints) ShortURL(shortCode string) string {
	return e.baseURL + "/" + shortCode
}

// CreateShortLink handles a JSON create request body
func (e *Endpoints) CreateShortLink(ctx context.Context, body []byte) Response {
	originalURL, err := decodeCreateRequest(body)
	if err != nil {
		return e.errorResponse(err)
	}

	link, err := e.svc.CreateShortLink(ctx, originalURL)
	if err != nil {
		return e.errorResponse(err)
	}

	return e.jsonResponse(http.StatusCreated, domain.CreateLinkResponse{
		ShortCode:   link.ShortCode,
		ShortURL:    e.ShortURL(link.ShortCode),
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
	})
}

// ResolveAndCount redirects to the original URL and counts the visit
func (e *Endpoints) ResolveAndCount(ctx context.Context, shortCode string) Response {
	originalURL, err := e.svc.ResolveAndCount(ctx, shortCode)
	if err != nil {
		return e.errorResponse(err)
	}

	return Response{
		StatusCode: http.StatusMovedPermanently,
		Headers: map[string]string{
			"Location":      originalURL,
			"Cache-Control": "no-cache",
		},
		Body: nil,
	}
}

// GetLinkInfo describes a link including its click count
func (e *Endpoints) GetLinkInfo(ctx context.Context, shortCode string) Response {
	link, err := e.svc.GetLinkInfo(ctx, shortCode)
	if err != nil {
		return e.errorResponse(err)
	}

	return e.jsonResponse(http.StatusOK, domain.LinkInfoResponse{
		ShortCode:   link.ShortCode,
		ShortURL:    e.ShortURL(link.ShortCode),
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
		ClickCount:  link.ClickCount,
	})
}

// decodeCreateRequest extracts the url member of a create request.
// An empty body reads as an empty object.
func decodeCreateRequest(body []byte) (string, error) {
	const op = "endpoint.decodeCreateRequest"

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}

	// A map keeps member lookup case-sensitive: {"URL": ...} has no url
	var envelope map[string]json.RawMessage

	decoder := json.NewDecoder(bytes.NewReader(body))
	if err := decoder.Decode(&envelope); err != nil {
		return "", errx.E(op, errx.Invalid, errors.New(MsgInvalidJSON))
	}
	if decoder.More() {
		return "", errx.E(op, errx.Invalid, errors.New(MsgInvalidJSON))
	}

	rawURL := envelope["url"]
	if isFalsy(rawURL) {
		return "", errx.E(op, errx.Invalid, service.ErrURLRequired)
	}

	var originalURL string
	if err := json.Unmarshal(rawURL, &originalURL); err != nil {
		return "", errx.E(op, errx.Invalid, service.ErrMalformedURL)
	}

	return originalURL, nil
}

// isFalsy reports whether a JSON value is absent, null, false, zero or empty
func isFalsy(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`, "[]", "{}":
		return true
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n == 0
	}
	return false
}

func (e *Endpoints) errorResponse(err error) Response {
	switch errx.KindOf(err) {
	case errx.Invalid:
		return e.jsonResponse(http.StatusBadRequest, domain.ErrorResponse{Error: innermost(err).Error()})
	case errx.NotFound:
		return e.jsonResponse(http.StatusNotFound, domain.ErrorResponse{Error: MsgNotFound})
	default:
		e.logger.Error("request failed",
			zap.String("op", errx.OpOf(err)),
			zap.Stringer("kind", errx.KindOf(err)),
			zap.Error(err),
		)
		return e.jsonResponse(http.StatusInternalServerError, domain.ErrorResponse{Error: MsgInternalError})
	}
}

// innermost unwraps nested *errx.Error values down to the sentinel
func innermost(err error) error {
	for {
		var xe *errx.Error
		if !errors.As(err, &xe) || xe.Err == nil {
			return err
		}
		err = xe.Err
	}
}

func (e *Endpoints) jsonResponse(status int, v any) Response {
	body, err := json.Marshal(v)
	if err != nil {
		e.logger.Error("failed to encode JSON response", zap.Error(err))
		return Response{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{headerContentType: contentTypeJSON},
			Body:       []byte(`{"error":"` + MsgInternalError + `"}`),
		}
	}

	return Response{
		StatusCode: status,
		Headers:    map[string]string{headerContentType: contentTypeJSON},
		Body:       body,
	}
}
