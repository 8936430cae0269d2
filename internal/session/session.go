package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"signline/internal/config"
	"signline/internal/gateway"
)

// versionMarker splits an account base URL into the host the gateway should
// use. The provider advertises base URLs shaped like
// https://region.host/restapi/v2/accounts/123; everything from the version
// segment on is re-added per call.
const versionMarker = "/v2"

// Session is the authenticated, account-resolved context for provider calls.
// It is bound to one account and is not safe to share across concurrent
// callers; open separate sessions instead.
type Session struct {
	AccountID string
	BaseURL   string
	Client    *gateway.Client
}

// Account is one tenant context offered by the login response.
type Account struct {
	AccountID string `json:"accountId"`
	Name      string `json:"name,omitempty"`
	BaseURL   string `json:"baseUrl"`
	IsDefault string `json:"isDefault,omitempty"`
}

type loginResponse struct {
	LoginAccounts []Account `json:"loginAccounts"`
}

// AuthenticationError reports a rejected login or an unusable account list.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return "authentication failed: " + e.Reason
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// Manager authenticates against the provider and resolves the active
// account. One Authenticate call per client lifetime is expected.
type Manager struct {
	Config     *config.Config
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a manager for the given provider config.
func New(cfg *config.Config) *Manager {
	return &Manager{Config: cfg, Timeout: 30 * time.Second}
}

// Authenticate logs in with the legacy credential header and returns a
// session pointed at the resolved account host.
func (m *Manager) Authenticate(ctx context.Context) (*Session, error) {
	login := gateway.NewWithAuth(m.Config.Host, m.Config)
	login.HTTPClient = m.HTTPClient
	login.Timeout = m.timeout()

	body, _, err := login.Call(ctx, http.MethodPost, "/authentication/login", nil, nil, nil)
	if err != nil {
		return nil, &AuthenticationError{Reason: "login rejected", Err: err}
	}
	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &AuthenticationError{Reason: "malformed login response", Err: err}
	}
	return m.sessionFor(resp.LoginAccounts)
}

// sessionFor selects the account and rebuilds the gateway client against
// the host the login response advertises. The advertised base URL is
// authoritative over the configured host; the provider routes accounts to
// regional endpoints.
func (m *Manager) sessionFor(accounts []Account) (*Session, error) {
	account, err := SelectAccount(accounts, m.Config.AccountID)
	if err != nil {
		return nil, err
	}
	host := ResolveHost(account.BaseURL)
	client := gateway.NewWithAuth(host, m.Config)
	client.HTTPClient = m.HTTPClient
	client.Timeout = m.timeout()
	return &Session{
		AccountID: account.AccountID,
		BaseURL:   host,
		Client:    client,
	}, nil
}

// SelectAccount prefers the account matching wantID and falls back to the
// first returned account when no id matches. The fallback is deliberate,
// observed provider-client behavior; it is not an error.
func SelectAccount(accounts []Account, wantID string) (Account, error) {
	if len(accounts) == 0 {
		return Account{}, &AuthenticationError{Reason: "no accounts returned"}
	}
	for _, a := range accounts {
		if a.AccountID == wantID {
			return a, nil
		}
	}
	return accounts[0], nil
}

// ResolveHost strips the API version path suffix from an account base URL.
func ResolveHost(baseURL string) string {
	host, _, _ := strings.Cut(baseURL, versionMarker)
	return host
}

func (m *Manager) timeout() time.Duration {
	if m.Timeout > 0 {
		return m.Timeout
	}
	return 30 * time.Second
}
