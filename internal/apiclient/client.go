package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clv-tracking-service/internal/model"
)

// ErrCustomerNotFound is returned when the API holds no record for the id.
var ErrCustomerNotFound = errors.New("customer not found in api")

// Client is a typed client for the customer API. Non-2xx responses and
// transport errors are reported identically as plain errors; callers
// treat both as sink failures.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the API at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// ListCustomers fetches customer records, optionally filtered by user.
func (c *Client) ListCustomers(ctx context.Context, userID string) ([]model.CustomerValueRecord, error) {
	url := c.baseURL + "/api/customers"
	if userID != "" {
		url += "?userId=" + userID
	}

	var resp model.CustomerListResponse
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Customers, nil
}

// GetCustomer finds one customer by id.
func (c *Client) GetCustomer(ctx context.Context, id string) (model.CustomerValueRecord, error) {
	customers, err := c.ListCustomers(ctx, "")
	if err != nil {
		return model.CustomerValueRecord{}, err
	}
	for _, customer := range customers {
		if customer.ID == id {
			return customer, nil
		}
	}
	return model.CustomerValueRecord{}, ErrCustomerNotFound
}

// AddCustomer creates a customer record.
func (c *Client) AddCustomer(ctx context.Context, record model.CustomerValueRecord) error {
	return c.do(ctx, http.MethodPost, c.baseURL+"/api/customers", record, nil)
}

// UpdateCustomer replaces the stored record's fields.
func (c *Client) UpdateCustomer(ctx context.Context, record model.CustomerValueRecord) error {
	return c.do(ctx, http.MethodPut, c.baseURL+"/api/customers/"+record.ID, record, nil)
}

// SendActivities uploads a consumed batch for server-side archival.
func (c *Client) SendActivities(ctx context.Context, req model.ActivityBatchRequest) error {
	return c.do(ctx, http.MethodPost, c.baseURL+"/api/activities", req, nil)
}

// Health probes the API health endpoint.
func (c *Client) Health(ctx context.Context) (model.HealthResponse, error) {
	var resp model.HealthResponse
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/api/health", nil, &resp); err != nil {
		return model.HealthResponse{}, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: unexpected status %d", method, url, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
