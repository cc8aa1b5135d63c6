// Package zalo talks to the Zalo mini-app identity provider.
package zalo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client fetches user profiles from the Zalo graph API. The access token is
// passed as a request header, never as a query parameter.
type Client struct {
	userInfoURL string
	httpClient  *http.Client
}

// NewClient constructs a Client for the given user-info endpoint.
func NewClient(userInfoURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		userInfoURL: userInfoURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// UserInfoResponse is the provider payload. Error is zero on success; any
// other value means the token could not be verified.
type UserInfoResponse struct {
	Error   int    `json:"error"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

// AvatarURL extracts the nested picture URL.
func (r UserInfoResponse) AvatarURL() string {
	return r.Picture.Data.URL
}

// GetUserInfo resolves the profile behind an access token.
func (c *Client) GetUserInfo(ctx context.Context, accessToken string) (*UserInfoResponse, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build zalo request: %w", err)
	}
	req.Header.Set("access_token", accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("call zalo user info: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, nil, fmt.Errorf("read zalo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, raw, fmt.Errorf("zalo user info status %d", resp.StatusCode)
	}

	var info UserInfoResponse
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, raw, fmt.Errorf("decode zalo response: %w", err)
	}

	return &info, raw, nil
}
