package session

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"signline/internal/config"
	"signline/internal/gateway"
)

// Account server endpoints for the token grant, by environment.
const (
	authHostProduction = "https://account.esign.net"
	authHostDevelop    = "https://account-d.esign.net"
)

type accessToken struct {
	Token  string `json:"access_token"`
	Type   string `json:"token_type"`
	Expiry int    `json:"expires_in"`
}

type userInfo struct {
	Sub      string `json:"sub"`
	Email    string `json:"email"`
	Accounts []struct {
		AccountID   string `json:"account_id"`
		IsDefault   bool   `json:"is_default"`
		AccountName string `json:"account_name"`
		BaseURI     string `json:"base_uri"`
	} `json:"accounts"`
}

// AuthenticateJWT performs the RS256 token grant: a signed assertion is
// exchanged for an access token, then the account list is read from the
// account server. Account selection and host re-resolution follow the same
// rules as the legacy login.
func (m *Manager) AuthenticateJWT(ctx context.Context) (*Session, error) {
	token, err := m.fetchToken(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := m.fetchAccounts(ctx, token)
	if err != nil {
		return nil, err
	}
	account, err := SelectAccount(accounts, m.Config.AccountID)
	if err != nil {
		return nil, err
	}
	host := ResolveHost(account.BaseURL)
	client := gateway.New(host)
	client.Headers = map[string]string{"Authorization": "Bearer " + token}
	client.HTTPClient = m.HTTPClient
	client.Timeout = m.timeout()
	return &Session{
		AccountID: account.AccountID,
		BaseURL:   host,
		Client:    client,
	}, nil
}

func (m *Manager) fetchToken(ctx context.Context) (string, error) {
	jc := m.Config.JWT
	keyData, err := os.ReadFile(jc.PrivateKeyPath)
	if err != nil {
		return "", &AuthenticationError{Reason: "read private key", Err: err}
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(keyData)
	if err != nil {
		return "", &AuthenticationError{Reason: "parse private key", Err: err}
	}
	now := time.Now()
	assertion := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   jc.IntegrationKey,
		"sub":   jc.UserID,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"aud":   strings.TrimPrefix(strings.TrimPrefix(m.authHost(), "https://"), "http://"),
		"scope": "signature impersonation",
	})
	signed, err := assertion.SignedString(key)
	if err != nil {
		return "", &AuthenticationError{Reason: "sign assertion", Err: err}
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {signed},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.authHost()+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := m.httpClient().Do(req)
	if err != nil {
		return "", &AuthenticationError{Reason: "token request failed", Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &AuthenticationError{Reason: "token grant rejected", Err: &gateway.APIError{StatusCode: resp.StatusCode, Body: string(body)}}
	}
	var token accessToken
	if err := json.Unmarshal(body, &token); err != nil {
		return "", &AuthenticationError{Reason: "malformed token response", Err: err}
	}
	if token.Token == "" {
		return "", &AuthenticationError{Reason: "empty access token"}
	}
	return token.Token, nil
}

func (m *Manager) fetchAccounts(ctx context.Context, token string) ([]Account, error) {
	auth := gateway.New(m.authHost())
	auth.Headers = map[string]string{"Authorization": "Bearer " + token}
	auth.HTTPClient = m.HTTPClient
	auth.Timeout = m.timeout()
	body, _, err := auth.Call(ctx, http.MethodGet, "/oauth/userinfo", nil, nil, nil)
	if err != nil {
		return nil, &AuthenticationError{Reason: "userinfo request failed", Err: err}
	}
	var info userInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, &AuthenticationError{Reason: "malformed userinfo response", Err: err}
	}
	accounts := make([]Account, 0, len(info.Accounts))
	for _, a := range info.Accounts {
		accounts = append(accounts, Account{AccountID: a.AccountID, Name: a.AccountName, BaseURL: a.BaseURI})
	}
	return accounts, nil
}

func (m *Manager) authHost() string {
	if m.Config.JWT.AuthHost != "" {
		return strings.TrimRight(m.Config.JWT.AuthHost, "/")
	}
	if m.Config.Environment == config.EnvProduction {
		return authHostProduction
	}
	return authHostDevelop
}

func (m *Manager) httpClient() *http.Client {
	if m.HTTPClient != nil {
		return m.HTTPClient
	}
	return &http.Client{Timeout: m.timeout()}
}
