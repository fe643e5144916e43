package google

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const (
	// CalendarScope grants full access to Google Calendar.
	CalendarScope = "https://www.googleapis.com/auth/calendar"

	// DefaultTokenEndpoint is the Google OAuth2 token endpoint.
	DefaultTokenEndpoint = "https://oauth2.googleapis.com/token"

	// jwtBearerGrantType is the OAuth2 grant type for JWT-bearer assertions.
	jwtBearerGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	// assertionLifetime is the validity window claimed in the signed assertion.
	// Google rejects assertions claiming more than one hour.
	assertionLifetime = time.Hour

	// defaultExchangeTimeout bounds the outbound token-exchange call.
	defaultExchangeTimeout = 30 * time.Second
)

// AuthError reports a signing or token-exchange failure. For upstream
// rejections it carries the HTTP status and response body for diagnostics.
type AuthError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %v", e.Err)
	}
	return fmt.Sprintf("auth: token endpoint returned status %d: %s", e.StatusCode, e.Body)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// TokenProvider supplies OAuth2 access tokens for outbound Google API calls.
type TokenProvider interface {
	// AccessToken returns a valid access token for the service account.
	AccessToken(ctx context.Context) (*oauth2.Token, error)
}

// TokenSourceConfig holds optional settings for a TokenSource.
type TokenSourceConfig struct {
	// Scope is the OAuth2 scope to request (default: CalendarScope).
	Scope string

	// Endpoint overrides the token endpoint (default: the key file's
	// token_uri, falling back to DefaultTokenEndpoint).
	Endpoint string

	// HTTPClient is used for the token exchange (default: a client with a
	// bounded timeout).
	HTTPClient *http.Client
}

// TokenSource mints short-lived access tokens for a service account by
// signing an RS256 JWT assertion and exchanging it via the JWT-bearer grant.
// Every call re-signs and re-exchanges; wrap in a CachingTokenProvider to
// reuse tokens across requests.
//
// TokenSource implements both TokenProvider and oauth2.TokenSource.
type TokenSource struct {
	key      *ServiceAccountKey
	signer   *rsa.PrivateKey
	scope    string
	endpoint string
	client   *http.Client

	// now is overridable for tests
	now func() time.Time
}

// NewTokenSource creates a TokenSource for the given service-account key.
// The private key is parsed eagerly so a malformed key fails fast.
func NewTokenSource(key *ServiceAccountKey, cfg TokenSourceConfig) (*TokenSource, error) {
	if key == nil {
		return nil, fmt.Errorf("service account key cannot be nil")
	}
	signer, err := key.rsaKey()
	if err != nil {
		return nil, err
	}

	scope := cfg.Scope
	if scope == "" {
		scope = CalendarScope
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = key.TokenURI
	}
	if endpoint == "" {
		endpoint = DefaultTokenEndpoint
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultExchangeTimeout}
	}

	return &TokenSource{
		key:      key,
		signer:   signer,
		scope:    scope,
		endpoint: endpoint,
		client:   client,
		now:      time.Now,
	}, nil
}

// tokenResponse is the JSON body returned by the token endpoint.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// AccessToken signs a fresh assertion and exchanges it for an access token.
func (s *TokenSource) AccessToken(ctx context.Context) (*oauth2.Token, error) {
	now := s.now()

	assertion, err := s.signAssertion(now)
	if err != nil {
		return nil, &AuthError{Err: err}
	}

	form := url.Values{
		"grant_type": {jwtBearerGrantType},
		"assertion":  {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("failed to build token request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("token exchange failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("failed to read token response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &AuthError{Err: fmt.Errorf("failed to parse token response: %w", err)}
	}
	if tr.AccessToken == "" {
		return nil, &AuthError{StatusCode: resp.StatusCode, Body: "token response missing access_token"}
	}

	tokenType := tr.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tokenType,
		Expiry:      now.Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}

// Token implements oauth2.TokenSource so the source can back an oauth2
// transport directly.
func (s *TokenSource) Token() (*oauth2.Token, error) {
	return s.AccessToken(context.Background())
}

// signAssertion builds and signs the JWT-bearer assertion for the service
// account. Claims follow the Google service-account flow: iss is the client
// email, scope the requested API scope, aud the token endpoint, and the
// validity window is [iat, iat+1h] in Unix seconds.
func (s *TokenSource) signAssertion(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   s.key.ClientEmail,
		"scope": s.scope,
		"aud":   s.endpoint,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.signer)
	if err != nil {
		return "", fmt.Errorf("failed to sign assertion: %w", err)
	}
	return assertion, nil
}
