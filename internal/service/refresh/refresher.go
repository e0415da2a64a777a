package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meridianlabs/meridian-desk/internal/token"
	transporthttp "github.com/meridianlabs/meridian-desk/internal/transport/http"
	"github.com/meridianlabs/meridian-desk/internal/utils"
)

//go:generate $MOCKGEN -source=refresher.go -destination=mocks/refresher_mock.go

const (
	// tokenEndpointPath is the OAuth token endpoint relative to each host.
	tokenEndpointPath = "/oauth2/token"

	grantTypeRefreshToken = "refresh_token"

	// oauthErrorInvalidGrant marks a refresh token the server will never
	// accept again. Every other error code is treated as transient.
	oauthErrorInvalidGrant = "invalid_grant"
)

// ErrRefreshTokenExpired means the server permanently rejected the refresh
// token. The only way forward is a full interactive sign-on.
var ErrRefreshTokenExpired = errors.New("refresh token is no longer accepted")

// Result is a freshly minted token pair.
type Result struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Refresher exchanges a refresh token for a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, host, refreshToken string) (*Result, error)
}

// HTTPRefresher talks to each host's OAuth token endpoint directly.
type HTTPRefresher struct {
	client *http.Client
}

// NewHTTPRefresher creates a Refresher with request logging and a stable
// User-Agent on every call.
func NewHTTPRefresher(userAgent string, maxLogLength uint64) *HTTPRefresher {
	transport := transporthttp.NewLogTransport(http.DefaultTransport, maxLogLength)
	transport = transporthttp.NewUserAgentInjector(transport,
		utils.NewSimpleUserAgentProvider(userAgent))

	return &HTTPRefresher{
		client: &http.Client{
			Timeout:   transporthttp.DefaultTimeout,
			Transport: transport,
		},
	}
}

// tokenResponse is the success shape of the token endpoint.
// expires_in is in seconds.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// tokenError is the failure shape of the token endpoint.
type tokenError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Refresh posts a refresh_token grant to host's token endpoint.
// An invalid_grant response maps to ErrRefreshTokenExpired; network and
// server errors are returned as-is so the caller can retry.
func (r *HTTPRefresher) Refresh(ctx context.Context, host, refreshToken string) (*Result, error) {
	endpoint := fmt.Sprintf("https://%s%s", host, tokenEndpointPath)

	form := url.Values{
		"grant_type":    {grantTypeRefreshToken},
		"refresh_token": {refreshToken},
	}

	request, err := http.NewRequestWithContext(ctx,
		http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build refresh request: %w", err)
	}

	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := r.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("refresh request to '%s' failed: %w", host, err)
	}

	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read refresh response from '%s': %w", host, err)
	}

	if response.StatusCode != http.StatusOK {
		return nil, classifyFailure(host, response.StatusCode, body)
	}

	var parsed tokenResponse
	if err = json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse refresh response from '%s': %w", host, err)
	}

	if parsed.AccessToken == "" {
		return nil, fmt.Errorf("refresh response from '%s' has no access token", host)
	}

	result := &Result{
		AccessToken:  parsed.AccessToken,
		RefreshToken: parsed.RefreshToken,
		ExpiresIn:    time.Duration(parsed.ExpiresIn) * time.Second,
	}

	// Some providers omit the rotated refresh token, keep the old one.
	if result.RefreshToken == "" {
		result.RefreshToken = refreshToken
	}

	// Same for expires_in, assume the default lifetime.
	if result.ExpiresIn <= 0 {
		result.ExpiresIn = token.DefaultTokenLifetime
	}

	return result, nil
}

// classifyFailure separates the one terminal OAuth error from everything else.
func classifyFailure(host string, statusCode int, body []byte) error {
	var oauthErr tokenError
	if err := json.Unmarshal(body, &oauthErr); err == nil &&
		oauthErr.Error == oauthErrorInvalidGrant {
		return fmt.Errorf("host '%s': %s: %w",
			host, oauthErr.ErrorDescription, ErrRefreshTokenExpired)
	}

	return fmt.Errorf("host '%s' returned status %d on refresh", host, statusCode)
}
