// Package users covers the account-scoped user management operations that
// share the envelope session context.
package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"signline/internal/config"
	"signline/internal/gateway"
	"signline/internal/session"
)

// ProviderError reports a response that does not match the documented
// shape, such as a create response without the new user list.
type ProviderError struct {
	Reason string
}

func (e *ProviderError) Error() string { return "unexpected provider response: " + e.Reason }

// User is one account member as listed by the provider.
type User struct {
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	Email      string `json:"email"`
	UserStatus string `json:"userStatus,omitempty"`
	UserType   string `json:"userType,omitempty"`
}

// ListResponse is the paged user listing.
type ListResponse struct {
	Users         []User `json:"users"`
	ResultSetSize string `json:"resultSetSize,omitempty"`
	TotalSetSize  string `json:"totalSetSize,omitempty"`
	StartPosition string `json:"startPosition,omitempty"`
	EndPosition   string `json:"endPosition,omitempty"`
}

// NewUser is one user row in a create request.
type NewUser struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

// CreateRequest is the create-users payload.
type CreateRequest struct {
	NewUsers []NewUser `json:"newUsers"`
}

type createResponse struct {
	NewUsers []struct {
		UserID string `json:"userId"`
	} `json:"newUsers"`
}

// Service performs user operations scoped to one session's account.
type Service struct {
	Session *session.Session
	Config  *config.Config
}

// List is a read-only passthrough of the account's user listing.
func (s *Service) List(ctx context.Context, query url.Values) (ListResponse, error) {
	var resp ListResponse
	body, _, err := s.Session.Client.Call(ctx, http.MethodGet, s.usersPath(), query, nil, nil)
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return resp, &ProviderError{Reason: "malformed user list"}
	}
	return resp, nil
}

// Create adds users to the account and returns the first created user's
// id. The request goes through a freshly derived client context; the
// shared session client may carry different default headers.
func (s *Service) Create(ctx context.Context, req CreateRequest) (string, error) {
	client := s.createClient()
	body, _, err := client.Call(ctx, http.MethodPost, s.usersPath(), nil, req, nil)
	if err != nil {
		return "", err
	}
	var resp createResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &ProviderError{Reason: "malformed create response"}
	}
	if len(resp.NewUsers) == 0 || resp.NewUsers[0].UserID == "" {
		return "", &ProviderError{Reason: "create response has no new users"}
	}
	return resp.NewUsers[0].UserID, nil
}

// Delete removes one user from the account. An absent id is an explicit
// no-op returning false, not an error.
func (s *Service) Delete(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	payload := map[string]any{
		"users": []map[string]string{{"userId": userID}},
	}
	client := s.createClient()
	if _, _, err := client.Call(ctx, http.MethodDelete, s.usersPath(), nil, payload, nil); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) usersPath() string {
	return fmt.Sprintf("/v2/accounts/%s/users", s.Session.AccountID)
}

// createClient derives a client with the legacy credential headers plus the
// fixed content type, independent of the session's default headers.
func (s *Service) createClient() *gateway.Client {
	client := gateway.NewWithAuth(s.Session.BaseURL, s.Config)
	client.HTTPClient = s.Session.Client.HTTPClient
	client.Timeout = s.Session.Client.Timeout
	return client.WithHeaders(map[string]string{
		"X-ESign-SDK":  "Go",
		"Content-Type": "application/json",
	})
}
