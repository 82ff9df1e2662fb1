package jira

import (
	"net/url"
	"strings"
	"time"
)

// AuthType represents the type of authentication to use.
type AuthType string

// Authentication types supported by the Jira client.
const (
	AuthAnonymous AuthType = "anonymous" // no Authorization header
	AuthAPIToken  AuthType = "api_token" // login + API token, sent as Basic
	AuthPAT       AuthType = "pat"       // Personal Access Token, sent as Bearer
)

// Config holds the configuration for the Jira client.
type Config struct {
	// URL is the base URL of the Jira instance.
	// For Cloud: https://your-domain.atlassian.net
	// For Server: https://jira.your-company.com
	URL string

	// Cloud selects the Cloud flavour of the user endpoints (accountId
	// instead of username).
	Cloud bool

	Login    string
	APIToken string
	PAT      string

	// MaxResults caps issue searches and user lookups.
	MaxResults int

	Timeout    time.Duration
	MaxRetries int
	RetryWait  time.Duration
}

// DefaultConfig returns a Config with default HTTP settings and no URL.
func DefaultConfig() Config {
	return Config{
		MaxResults: 50,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryWait:  time.Second,
	}
}

// AuthType returns the authentication method implied by the credentials. A
// PAT wins over a login and API token.
func (c *Config) AuthType() AuthType {
	switch {
	case c.PAT != "":
		return AuthPAT
	case c.Login != "" && c.APIToken != "":
		return AuthAPIToken
	default:
		return AuthAnonymous
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return ErrConfigURLRequired
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" {
		return ErrConfigURLInvalid
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return ErrConfigURLInvalid
	}
	if (c.Login == "") != (c.APIToken == "") {
		return ErrConfigAPITokenAuth
	}
	return nil
}

// NormalizeURL adds an https scheme to bare hosts and drops trailing slashes.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	return strings.TrimRight(raw, "/")
}

// IsCloudURL reports whether raw points at an Atlassian Cloud site.
func IsCloudURL(raw string) bool {
	u, err := url.Parse(NormalizeURL(raw))
	if err != nil {
		return false
	}
	return strings.HasSuffix(u.Hostname(), ".atlassian.net")
}
