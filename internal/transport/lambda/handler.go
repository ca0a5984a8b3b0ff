package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/sharipovr/aws-url-shortener/internal/endpoint"
)

// Resource paths as configured on the API Gateway
const (
	ResourceCreate   = "/urls"
	ResourceInfo     = "/urls/{short_code}"
	ResourceRedirect = "/{short_code}"
)

// Handler adapts API Gateway proxy events to the endpoints
type Handler struct {
	endpoints *endpoint.Endpoints
	logger    *zap.Logger
}

// NewHandler creates a new Lambda handler
func NewHandler(endpoints *endpoint.Endpoints, logger *zap.Logger) *Handler {
	return &Handler{
		endpoints: endpoints,
		logger:    logger,
	}
}

// Handle serves one API Gateway proxy request
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := h.logger.With(
		zap.String("request_id", req.RequestContext.RequestID),
		zap.String("method", req.HTTPMethod),
		zap.String("resource", req.Resource),
	)

	var resp endpoint.Response
	switch req.HTTPMethod {
	case http.MethodPost:
		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				logger.Warn("failed to decode base64 body", zap.Error(err))
				resp = jsonError(http.StatusBadRequest, endpoint.MsgInvalidJSON)
				break
			}
			body = decoded
		}
		resp = h.endpoints.CreateShortLink(ctx, body)

	case http.MethodGet:
		shortCode := req.PathParameters["short_code"]
		if req.Resource == ResourceInfo {
			resp = h.endpoints.GetLinkInfo(ctx, shortCode)
		} else {
			resp = h.endpoints.ResolveAndCount(ctx, shortCode)
		}

	default:
		resp = jsonError(http.StatusMethodNotAllowed, "Method not allowed")
	}

	logger.Info("lambda request", zap.Int("status", resp.StatusCode))

	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       string(resp.Body),
	}, nil
}

func jsonError(status int, message string) endpoint.Response {
	body, _ := json.Marshal(map[string]string{"error": message})
	return endpoint.Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}
