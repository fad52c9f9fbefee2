package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	Token string `json:"token"`
}

// APIRefresher implements TokenRefresher against the backend's own refresh
// endpoint. A refresh failure means the session is gone; the caller logs
// the user out rather than retrying.
type APIRefresher struct {
	baseURL      string
	refreshToken string
	httpClient   *http.Client
}

func NewAPIRefresher(baseURL, refreshToken string, timeout time.Duration) *APIRefresher {
	return &APIRefresher{
		baseURL:      strings.TrimRight(baseURL, "/"),
		refreshToken: refreshToken,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

func (r *APIRefresher) Refresh(ctx context.Context) (string, error) {
	data, err := json.Marshal(refreshRequest{RefreshToken: r.refreshToken})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/auth/refresh", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token refresh returned %d", resp.StatusCode)
	}

	var body refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode refresh response: %w", err)
	}
	return body.Token, nil
}
