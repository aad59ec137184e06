package reddit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// DefaultTokenURL is the password-grant endpoint for script applications
const DefaultTokenURL = "https://www.reddit.com/api/v1/access_token"

// tokens are refreshed this long before the server-reported expiry
const expiryLeeway = 60 * time.Second

// Credentials identify a script application and the account it acts for
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// Complete reports whether every field needed for the password grant is set
func (c Credentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.Username != "" && c.Password != ""
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
	Error       string `json:"error"`
}

// TokenSource exchanges credentials for bearer tokens and caches them
// until shortly before they expire
type TokenSource struct {
	http     *resty.Client
	creds    Credentials
	tokenURL string
	token    string
	expiry   time.Time
	now      func() time.Time
}

// NewTokenSource creates a token source for the given credentials.
// An empty tokenURL selects DefaultTokenURL.
func NewTokenSource(creds Credentials, tokenURL, userAgent string, timeout time.Duration) *TokenSource {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	client := resty.New().
		SetHeader("User-Agent", userAgent).
		SetTimeout(timeout)

	return &TokenSource{
		http:     client,
		creds:    creds,
		tokenURL: tokenURL,
		now:      time.Now,
	}
}

// Token returns a valid bearer token, requesting a new one if needed
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	if ts.token != "" && ts.now().Before(ts.expiry) {
		return ts.token, nil
	}

	res, err := ts.http.R().
		SetContext(ctx).
		SetBasicAuth(ts.creds.ClientID, ts.creds.ClientSecret).
		SetFormData(map[string]string{
			"grant_type": "password",
			"username":   ts.creds.Username,
			"password":   ts.creds.Password,
		}).
		SetResult(&tokenResponse{}).
		Post(ts.tokenURL)
	if err != nil {
		return "", fmt.Errorf("failed to request access token: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("access token request rejected: %s", res.Status())
	}

	tok, ok := res.Result().(*tokenResponse)
	if !ok || tok == nil {
		return "", fmt.Errorf("failed to decode access token response")
	}
	if tok.Error != "" {
		return "", fmt.Errorf("access token request rejected: %s", tok.Error)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("access token response has no token")
	}

	ts.token = tok.AccessToken
	ts.expiry = ts.now().Add(time.Duration(tok.ExpiresIn)*time.Second - expiryLeeway)

	logrus.Debugf("Obtained access token (scope=%q, expires in %ds)", tok.Scope, tok.ExpiresIn)
	return ts.token, nil
}
