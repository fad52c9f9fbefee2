// Package remote is the HTTP client for the restaurant backend. Every call
// is a single request/response; the only automatic retry is one token
// refresh after a 401. All other failures surface to the caller, which is
// expected to fall back on local state.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mealpoint/possync/internal/models"
)

var (
	ErrUnauthorized = errors.New("remote: unauthorized")
	ErrNotFound     = errors.New("remote: not found")
)

// TokenRefresher exchanges a refresh token for a fresh access token.
type TokenRefresher interface {
	Refresh(ctx context.Context) (string, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	refresher  TokenRefresher

	mu    sync.Mutex
	token string
}

func NewClient(baseURL, token string, timeout time.Duration, refresher TokenRefresher) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		refresher:  refresher,
		token:      token,
	}
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// do sends one request, retrying exactly once with a refreshed token after
// a 401. The response body is decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.send(ctx, method, path, body, c.currentToken())
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if c.refresher == nil {
			return ErrUnauthorized
		}
		token, err := c.refresher.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("%w: token refresh failed: %v", ErrUnauthorized, err)
		}
		c.setToken(token)
		resp, err = c.send(ctx, method, path, body, token)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("remote: %s %s returned %d: %s", method, path, resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("remote: failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.httpClient.Do(req)
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (string, error) {
	var resp CreateOrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) UpdateOrder(ctx context.Context, orderID string, req UpdateOrderRequest) error {
	return c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(orderID), req, nil)
}

func (c *Client) UpdateItemStatus(ctx context.Context, orderID, itemID, status string) error {
	path := "/orders/" + url.PathEscape(orderID) + "/items/" + url.PathEscape(itemID) + "/status"
	return c.do(ctx, http.MethodPut, path, UpdateItemStatusRequest{Status: status}, nil)
}

func (c *Client) CompletePayment(ctx context.Context, orderID string, req CompletePaymentRequest) error {
	return c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/complete-payment", req, nil)
}

func (c *Client) ListOrders(ctx context.Context, status string, limit, offset int) ([]*models.Order, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	path := "/orders"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var resp ListOrdersResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (c *Client) OccupyTable(ctx context.Context, tableID, orderID string) error {
	return c.do(ctx, http.MethodPut, "/tables/"+url.PathEscape(tableID)+"/occupy", OccupyTableRequest{OrderID: orderID}, nil)
}

func (c *Client) VacateTable(ctx context.Context, tableID string) error {
	return c.do(ctx, http.MethodPut, "/tables/"+url.PathEscape(tableID)+"/vacant", nil, nil)
}

func (c *Client) FetchMenu(ctx context.Context) (*MenuResponse, error) {
	var resp MenuResponse
	if err := c.do(ctx, http.MethodGet, "/menu", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
