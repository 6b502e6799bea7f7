// Package provider implements the uniform identity-provider capability the
// linking orchestrator is written against: one implementation per external
// OAuth provider, each a thin client over golang.org/x/oauth2 plus the
// provider's user-info API.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/questfit/questfit-server/internal/models"
)

// Classified provider failures. Neither is retried internally: authorization
// codes are single-use at the provider, so a retry can never succeed.
var (
	ErrExchangeFailed      = errors.New("authorization code exchange failed")
	ErrIdentityFetchFailed = errors.New("provider identity fetch failed")
)

// callTimeout bounds every outbound provider call.
const callTimeout = 10 * time.Second

// IdentityProvider is the capability exposed by each external OAuth provider.
// Implementations hold no local state beyond configuration.
type IdentityProvider interface {
	// Name returns the provider identifier (e.g. "fitbit", "github").
	Name() string
	// AuthCodeURL returns the authorization URL with state embedded verbatim
	// as the state query parameter. State transits the user's browser and
	// must be treated as attacker-visible and replayable.
	AuthCodeURL(state string) string
	// ExchangeCode exchanges the authorization code for provider tokens.
	ExchangeCode(ctx context.Context, code string) (*models.ProviderTokens, error)
	// FetchIdentity fetches the provider's identity for an access token.
	FetchIdentity(ctx context.Context, accessToken string) (*models.ProviderIdentity, error)
}

// getJSON performs an authorized GET and decodes the JSON response body.
func getJSON(ctx context.Context, url, accessToken string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request to %s failed with status: %s", url, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}
