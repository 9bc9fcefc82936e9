package follow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPChecker calls the social graph service over its internal HTTP API.
type HTTPChecker struct {
	baseURL string
	client  *http.Client
}

func NewHTTPChecker(baseURL string) *HTTPChecker {
	return &HTTPChecker{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 3 * time.Second},
	}
}

var _ Checker = (*HTTPChecker)(nil)

type mutualFollowResponse struct {
	Mutual bool `json:"mutual"`
}

func (c *HTTPChecker) IsMutualFollow(ctx context.Context, userA, userB string) (bool, error) {
	q := url.Values{}
	q.Set("user_a", userA)
	q.Set("user_b", userB)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/internal/follows/mutual?"+q.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("follow: build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("follow: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("follow: unexpected status %d", resp.StatusCode)
	}

	var out mutualFollowResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("follow: decode response: %w", err)
	}
	return out.Mutual, nil
}
