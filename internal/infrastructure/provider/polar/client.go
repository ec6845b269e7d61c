package polar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	"github.com/jithinio/brillo-sub004/internal/domain/provider"
	"go.uber.org/zap"
)

const (
	productionBaseURL = "https://api.polar.sh/v1"
	sandboxBaseURL    = "https://sandbox-api.polar.sh/v1"

	defaultTimeout = 15 * time.Second
	pageLimit      = 100
)

// BaseURL returns the API root for a server name ("production" or "sandbox").
func BaseURL(server string) string {
	if strings.EqualFold(server, "sandbox") {
		return sandboxBaseURL
	}
	return productionBaseURL
}

// Client is a minimal Polar REST client authenticated with an organization access token.
type Client struct {
	baseURL     string
	accessToken string
	client      *http.Client
	logger      *zap.Logger
}

func NewClient(baseURL, accessToken string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// GET /customers/{id}
func (c *Client) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	var customer Customer
	if err := c.do(ctx, http.MethodGet, "/customers/"+url.PathEscape(id), nil, nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// GET /customers/?email=
func (c *Client) ListCustomersByEmail(ctx context.Context, email string) ([]Customer, error) {
	query := url.Values{}
	query.Set("email", email)
	query.Set("limit", "10")

	var page listResource[Customer]
	if err := c.do(ctx, http.MethodGet, "/customers/", query, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// POST /customers/
func (c *Client) CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*Customer, error) {
	var customer Customer
	if err := c.do(ctx, http.MethodPost, "/customers/", nil, req, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// GET /subscriptions/?customer_id=, every page
func (c *Client) ListSubscriptions(ctx context.Context, customerID string) ([]Subscription, error) {
	var subs []Subscription
	for pageNum := 1; ; pageNum++ {
		query := url.Values{}
		query.Set("customer_id", customerID)
		query.Set("limit", fmt.Sprint(pageLimit))
		query.Set("page", fmt.Sprint(pageNum))

		var page listResource[Subscription]
		if err := c.do(ctx, http.MethodGet, "/subscriptions/", query, nil, &page); err != nil {
			return nil, err
		}
		subs = append(subs, page.Items...)

		if len(page.Items) == 0 || pageNum >= page.Pagination.MaxPage {
			return subs, nil
		}
	}
}

// GET /subscriptions/{id}
func (c *Client) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	var sub Subscription
	if err := c.do(ctx, http.MethodGet, "/subscriptions/"+url.PathEscape(id), nil, nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// GET /products/
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprint(pageLimit))

	var page listResource[Product]
	if err := c.do(ctx, http.MethodGet, "/products/", query, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Code       string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("polar API returned %d: %s", e.StatusCode, e.Body)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	operation := strings.ToLower(method) + " " + strings.Trim(path, "/")

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return &provider.ProviderError{
				Provider:  entity.ProviderPolar,
				Operation: operation,
				Code:      "MARSHAL_ERROR",
				Message:   "Failed to prepare request",
				Err:       err,
			}
		}
		reader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &provider.ProviderError{
			Provider:  entity.ProviderPolar,
			Operation: operation,
			Code:      "REQUEST_ERROR",
			Message:   "Failed to create request",
			Err:       err,
		}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("Polar API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return &provider.ProviderError{
			Provider:  entity.ProviderPolar,
			Operation: operation,
			Code:      "API_ERROR",
			Message:   "Polar API request failed",
			Err:       err,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &provider.ProviderError{
			Provider:  entity.ProviderPolar,
			Operation: operation,
			Code:      "RESPONSE_ERROR",
			Message:   "Failed to read response",
			Err:       err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp apiError
		_ = json.Unmarshal(respBody, &errResp)

		c.logger.Warn("Polar API returned an error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("error", errResp.Error))

		statusErr := &StatusError{StatusCode: resp.StatusCode, Code: errResp.Error, Body: string(respBody)}
		return &provider.ProviderError{
			Provider:  entity.ProviderPolar,
			Operation: operation,
			Code:      errResp.Error,
			Message:   http.StatusText(resp.StatusCode),
			Err:       statusErr,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &provider.ProviderError{
			Provider:  entity.ProviderPolar,
			Operation: operation,
			Code:      "PARSE_ERROR",
			Message:   "Failed to parse response",
			Err:       err,
		}
	}
	return nil
}
