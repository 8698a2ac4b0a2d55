package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultClientTimeout = 10 * time.Second

const (
	checkAuthPath   = "/check-auth"
	sendMessagePath = "/send-message"
)

// SendRequest is the send-message payload understood by every endpoint.
type SendRequest struct {
	Phones  []string `json:"phones"`
	Message string   `json:"message"`
}

// SendResponse stores send call metadata for audit logging.
type SendResponse struct {
	StatusCode int
	Body       string
}

type authResponse struct {
	Authenticated bool `json:"authenticated"`
}

// Client is the outbound transport port shared by all endpoints in the pool.
type Client interface {
	// CheckAuth probes an endpoint's auth/health route. It never returns an
	// error: transport failures degrade to unhealthy.
	CheckAuth(ctx context.Context, endpoint string) bool
	// SendMessage delivers one message through the given endpoint.
	SendMessage(ctx context.Context, endpoint string, req SendRequest) (*SendResponse, error)
}

// HTTPClient is the resty-backed Client used against real endpoints.
type HTTPClient struct {
	client *resty.Client
	logger *zap.Logger
}

func NewHTTPClient(logger *zap.Logger) *HTTPClient {
	client := resty.New()
	client.SetTimeout(defaultClientTimeout)
	client.SetRetryCount(0)

	httpClient, _ := NewHTTPClientWithResty(client, logger)
	return httpClient
}

func NewHTTPClientWithResty(client *resty.Client, logger *zap.Logger) (*HTTPClient, error) {
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultClientTimeout)
	}
	client.SetRetryCount(0)

	return &HTTPClient{client: client, logger: logger}, nil
}

func (c *HTTPClient) CheckAuth(ctx context.Context, endpoint string) bool {
	if c == nil || c.client == nil {
		return false
	}

	var body authResponse
	response, err := c.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(strings.TrimRight(endpoint, "/") + checkAuthPath)
	if err != nil {
		c.logger.Warn("endpoint auth check failed",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return false
	}

	return response.StatusCode() == http.StatusOK && body.Authenticated
}

func (c *HTTPClient) SendMessage(ctx context.Context, endpoint string, req SendRequest) (*SendResponse, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("client is not initialized")
	}
	if len(req.Phones) == 0 {
		return nil, fmt.Errorf("at least one phone is required")
	}

	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(strings.TrimRight(endpoint, "/") + sendMessagePath)
	if err != nil {
		return nil, &ProviderError{
			Message:   "send request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}

	statusCode := response.StatusCode()
	responseBody := strings.TrimSpace(response.String())

	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return &SendResponse{
			StatusCode: statusCode,
			Body:       responseBody,
		}, nil
	}

	return nil, &ProviderError{
		StatusCode: statusCode,
		Message:    sendErrorMessage(statusCode, responseBody),
		Transient:  isTransientHTTPStatus(statusCode),
	}
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}

func sendErrorMessage(statusCode int, body string) string {
	base := fmt.Sprintf("endpoint returned status %d", statusCode)
	if body == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, body)
}
