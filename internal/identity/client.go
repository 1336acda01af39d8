package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserDetails is the identity-service view of a user needed for reports.
type UserDetails struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	CategoryName string `json:"category_name"`
}

// Client calls the identity service's internal lookup endpoints. Every call
// forwards the caller's own bearer token; there is no service-to-service
// secret.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates an identity service client.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// FetchEmail resolves a user's email address. Unlike FetchUserDetails it
// propagates failures: a notification must not be silently mis-addressed.
func (c *Client) FetchEmail(ctx context.Context, userID uuid.UUID, token string) (string, error) {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.get(ctx, fmt.Sprintf("%s/users/%s/email", c.baseURL, userID), token, &body); err != nil {
		return "", fmt.Errorf("fetch email for user %s: %w", userID, err)
	}
	return body.Email, nil
}

// FetchUserDetails resolves a user's name and category. Failures are logged
// and swallowed: report rendering tolerates missing names, so a nil result
// stands in for an unreachable identity service.
func (c *Client) FetchUserDetails(ctx context.Context, userID uuid.UUID, token string) *UserDetails {
	var details UserDetails
	if err := c.get(ctx, fmt.Sprintf("%s/users/%s/details", c.baseURL, userID), token, &details); err != nil {
		c.logger.Warn("fetch user details failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil
	}
	return &details
}

// ResolveUsers resolves details for a set of users. The result map has one
// entry per distinct id; a nil value means the lookup failed for that user.
// The current implementation calls per id; the interface leaves room for a
// multi-get or cache without changing callers.
func (c *Client) ResolveUsers(ctx context.Context, ids []uuid.UUID, token string) map[uuid.UUID]*UserDetails {
	resolved := make(map[uuid.UUID]*UserDetails, len(ids))
	for _, id := range ids {
		if _, seen := resolved[id]; seen {
			continue
		}
		resolved[id] = c.FetchUserDetails(ctx, id, token)
	}
	return resolved
}

func (c *Client) get(ctx context.Context, url, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity service status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
