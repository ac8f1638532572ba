package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	userInfoTimeout = 10 * time.Second
	// maxErrorBody caps how much of a failed response ends up in the error
	maxErrorBody = 512
)

// Auth0UserInfo is the profile returned by the identity provider
type Auth0UserInfo struct {
	Sub      string `json:"sub"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
}

// UserInfoProvider fetches the profile behind an access token
type UserInfoProvider interface {
	GetUserInfo(ctx context.Context, accessToken string) (*Auth0UserInfo, error)
}

// Auth0Service reads staff and customer profiles from Auth0
type Auth0Service struct {
	endpoint   string
	httpClient *http.Client
}

// Auth0Option customizes an Auth0Service
type Auth0Option func(*Auth0Service)

// WithHTTPClient replaces the default client
func WithHTTPClient(client *http.Client) Auth0Option {
	return func(s *Auth0Service) {
		s.httpClient = client
	}
}

// NewAuth0Service creates a profile client for domain. A domain with a
// scheme is used as-is, which lets tests point it at a local server.
func NewAuth0Service(domain string, opts ...Auth0Option) *Auth0Service {
	s := &Auth0Service{
		endpoint:   userInfoURL(domain),
		httpClient: &http.Client{Timeout: userInfoTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func userInfoURL(domain string) string {
	domain = strings.TrimSuffix(strings.TrimSpace(domain), "/")
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "https://" + domain
	}
	return domain + "/userinfo"
}

// GetUserInfo calls /userinfo with the caller's access token
func (s *Auth0Service) GetUserInfo(ctx context.Context, accessToken string) (*Auth0UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call userinfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("userinfo endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var info Auth0UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	info.normalize()

	return &info, nil
}

// normalize trims the profile and falls back to the nickname when the
// provider has no display name
func (u *Auth0UserInfo) normalize() {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Name = strings.TrimSpace(u.Name)
	u.Nickname = strings.TrimSpace(u.Nickname)
	if u.Name == "" {
		u.Name = u.Nickname
	}
}
