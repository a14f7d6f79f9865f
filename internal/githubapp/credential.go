// Package githubapp authenticates as a GitHub App installation.
//
// A Credential signs a short lived App JWT with the App private key and
// exchanges it for an installation access token.
package githubapp

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"git.home.luguber.info/inful/jervis/internal/config"
	jerrors "git.home.luguber.info/inful/jervis/internal/foundation/errors"
	"git.home.luguber.info/inful/jervis/internal/retry"
	"git.home.luguber.info/inful/jervis/internal/security"
)

const (
	// GitHub rejects App JWTs valid for more than ten minutes and tolerates
	// little clock drift, so the token is backdated.
	jwtBackdate = 60 * time.Second
	jwtLifetime = 9 * time.Minute

	defaultAPIURL = "https://api.github.com/"
)

// Token is an installation access token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Credential holds what is needed to act as one App installation.
type Credential struct {
	appID          int64
	installationID int64
	key            *rsa.PrivateKey
	apiURL         string

	errs       *jerrors.Factory
	retry      retry.Policy
	httpClient *http.Client
	now        func() time.Time
	privateKey []byte
}

// Option configures NewCredential.
type Option func(*Credential)

// WithErrors reports failures through errs.
func WithErrors(errs *jerrors.Factory) Option {
	return func(c *Credential) {
		if errs != nil {
			c.errs = errs
		}
	}
}

// WithHTTPClient sends API requests through client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Credential) { c.httpClient = client }
}

// WithRetryPolicy controls how transient API failures are retried.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Credential) { c.retry = p }
}

// WithPrivateKey uses pemBytes instead of reading PrivateKeyFile.
func WithPrivateKey(pemBytes []byte) Option {
	return func(c *Credential) { c.privateKey = pemBytes }
}

// WithClock replaces time.Now when signing JWTs.
func WithClock(now func() time.Time) Option {
	return func(c *Credential) { c.now = now }
}

// NewCredential validates cfg and decodes the App private key.
func NewCredential(cfg config.GitHubAppConfig, opts ...Option) (*Credential, error) {
	c := &Credential{
		appID:          cfg.AppID,
		installationID: cfg.InstallationID,
		apiURL:         cfg.APIURL,
		errs:           jerrors.Default(),
		retry:          retry.DefaultPolicy(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.apiURL == "" {
		c.apiURL = defaultAPIURL
	}

	switch {
	case c.appID <= 0:
		return nil, c.errs.GitHubApp("An App ID is required.")
	case c.installationID <= 0:
		return nil, c.errs.GitHubApp("An installation ID is required.")
	case c.privateKey == nil && cfg.PrivateKeyFile == "":
		return nil, c.errs.GitHubApp("A private key file is required.")
	}

	if c.privateKey == nil {
		data, err := os.ReadFile(cfg.PrivateKeyFile)
		if err != nil {
			return nil, c.errs.GitHubApp("Could not read private key " + cfg.PrivateKeyFile + ".").WithCause(err)
		}
		c.privateKey = data
	}
	kp, err := security.DecodeKeyPair(c.privateKey, security.WithErrors(c.errs))
	if err != nil {
		return nil, c.errs.GitHubApp("Could not decode the App private key.").WithCause(err)
	}
	c.key = kp.PrivateKey()
	c.privateKey = nil
	return c, nil
}

// AppID returns the App the credential authenticates as.
func (c *Credential) AppID() int64 { return c.appID }

// InstallationID returns the installation tokens are issued for.
func (c *Credential) InstallationID() int64 { return c.installationID }

// JWT returns an RS256 App JWT valid from now-60s to now+9m.
func (c *Credential) JWT(now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    strconv.FormatInt(c.appID, 10),
		IssuedAt:  jwt.NewNumericDate(now.Add(-jwtBackdate)),
		ExpiresAt: jwt.NewNumericDate(now.Add(jwtLifetime)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.key)
	if err != nil {
		return "", c.errs.GitHubApp("Could not sign the App JWT.").WithCause(err)
	}
	return signed, nil
}

// InstallationToken exchanges an App JWT for an installation access token.
func (c *Credential) InstallationToken(ctx context.Context) (*Token, error) {
	jwt, err := c.JWT(c.now())
	if err != nil {
		return nil, err
	}

	client, err := c.client(ctx, jwt)
	if err != nil {
		return nil, err
	}
	var tok *github.InstallationToken
	err = c.retry.Do(ctx, transient, func(ctx context.Context) error {
		var err error
		tok, _, err = client.Apps.CreateInstallationToken(ctx, c.installationID, nil)
		return err
	})
	if err != nil {
		return nil, c.errs.GitHubApp(fmt.Sprintf("Requesting a token for installation %d failed.", c.installationID)).WithCause(err)
	}
	if tok.GetToken() == "" {
		return nil, c.errs.GitHubApp(fmt.Sprintf("GitHub returned an empty token for installation %d.", c.installationID))
	}
	return &Token{Value: tok.GetToken(), ExpiresAt: tok.GetExpiresAt().Time}, nil
}

func (c *Credential) client(ctx context.Context, jwt string) (*github.Client, error) {
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: jwt})
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	base := c.apiURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, c.errs.GitHubApp("API URL " + c.apiURL + " is invalid.").WithCause(err)
	}
	client.BaseURL = u
	return client, nil
}

// transient reports failures worth retrying: server errors, rate limits and
// transport errors. Client errors such as a rejected JWT are permanent.
func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return true
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		return respErr.Response != nil && respErr.Response.StatusCode >= http.StatusInternalServerError
	}
	return true
}
