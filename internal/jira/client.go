package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
	"github.com/Baarsgaard/jig/internal/ticket"
)

const apiPrefix = "/rest/api/latest"

// Client provides access to the Jira REST API.
type Client struct {
	cfg     Config
	baseURL string
	http    *retryablehttp.Client
	logger  *slog.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client. Bearer authentication wraps
// its transport.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.http.HTTPClient = httpClient
	}
}

// WithLogger sets the logger used for request and retry diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Jira client.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	cfg.URL = NormalizeURL(cfg.URL)
	if err := cfg.Validate(); err != nil {
		return nil, jigerrors.Wrap(err, jigerrors.KindInvalidArgs, "invalid jira configuration").
			WithSuggestion("Create a config with: jig init")
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultConfig().MaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.MaxRetries
	if cfg.RetryWait > 0 {
		rc.RetryWaitMin = cfg.RetryWait
		rc.RetryWaitMax = 10 * cfg.RetryWait
	}
	rc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	// Non-2xx responses are turned into errors by checkError.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		cfg:     cfg,
		baseURL: cfg.URL,
		http:    rc,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	rc.Logger = c.logger

	if cfg.AuthType() == AuthPAT {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, rc.HTTPClient)
		bearer := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.PAT}))
		bearer.Timeout = rc.HTTPClient.Timeout
		rc.HTTPClient = bearer
	}

	return c, nil
}

// BaseURL returns the normalized Jira URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// BrowseURL returns the web URL of an issue.
func (c *Client) BrowseURL(key ticket.Key) string {
	return c.baseURL + "/browse/" + key.String()
}

// SearchIssues runs a JQL query and returns at most MaxResults tickets.
// ErrNoIssues is returned for an empty result.
func (c *Client) SearchIssues(ctx context.Context, jql string) ([]ticket.Ticket, error) {
	body := searchRequest{
		JQL:        jql,
		MaxResults: c.cfg.MaxResults,
		Fields:     []string{"summary"},
	}
	var resp SearchResponse
	if err := c.do(ctx, http.MethodPost, "/search", nil, body, &resp); err != nil {
		return nil, err
	}

	tickets := make([]ticket.Ticket, 0, len(resp.Issues))
	for _, issue := range resp.Issues {
		t, err := issue.Ticket()
		if err != nil {
			c.logger.Debug("skipping issue with malformed key", "key", issue.Key)
			continue
		}
		tickets = append(tickets, t)
	}
	if len(tickets) == 0 {
		return nil, jigerrors.Wrap(ErrNoIssues, jigerrors.KindNotFound, "no issues match %q", jql)
	}
	return tickets, nil
}

// GetIssue retrieves an issue by key.
func (c *Client) GetIssue(ctx context.Context, key ticket.Key) (ticket.Ticket, error) {
	var issue Issue
	q := url.Values{"fields": {"summary"}}
	if err := c.do(ctx, http.MethodGet, "/issue/"+key.String(), q, nil, &issue); err != nil {
		return ticket.Ticket{}, err
	}
	return issue.Ticket()
}

// GetTransitions returns the transitions available on an issue.
func (c *Client) GetTransitions(ctx context.Context, key ticket.Key) ([]Transition, error) {
	var resp transitionsResponse
	q := url.Values{"expand": {"transitions.fields"}}
	if err := c.do(ctx, http.MethodGet, "/issue/"+key.String()+"/transitions", q, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Transitions) == 0 {
		return nil, jigerrors.Wrap(ErrNoTransitions, jigerrors.KindNotFound, "no transitions for %s", key)
	}
	return resp.Transitions, nil
}

// TransitionIssue moves an issue through the transition with the given ID.
func (c *Client) TransitionIssue(ctx context.Context, key ticket.Key, transitionID string) error {
	var body transitionRequest
	body.Transition.ID = transitionID
	return c.do(ctx, http.MethodPost, "/issue/"+key.String()+"/transitions", nil, body, nil)
}

// AddComment posts a plain-text comment.
func (c *Client) AddComment(ctx context.Context, key ticket.Key, text string) error {
	if strings.TrimSpace(text) == "" {
		return jigerrors.InvalidArgs("comment is empty")
	}
	return c.do(ctx, http.MethodPost, "/issue/"+key.String()+"/comment", nil, commentRequest{Body: text}, nil)
}

// AddWorklog logs work on an issue.
func (c *Client) AddWorklog(ctx context.Context, key ticket.Key, wl Worklog) error {
	if wl.Started == "" {
		wl.Started = FormatTime(time.Now())
	}
	return c.do(ctx, http.MethodPost, "/issue/"+key.String()+"/worklog", nil, wl, nil)
}

// AssignableUsers searches users that can be assigned to an issue. query
// matches login, display name or email and may be empty.
func (c *Client) AssignableUsers(ctx context.Context, key ticket.Key, query string) ([]User, error) {
	q := url.Values{
		"issueKey":   {key.String()},
		"maxResults": {strconv.Itoa(c.cfg.MaxResults)},
	}
	if c.cfg.Cloud {
		q.Set("query", query)
	} else {
		q.Set("username", query)
	}

	var users []User
	if err := c.do(ctx, http.MethodGet, "/user/assignable/search", q, nil, &users); err != nil {
		return nil, err
	}

	active := users[:0]
	for _, u := range users {
		if u.Active {
			active = append(active, u)
		}
	}
	if len(active) == 0 {
		return nil, jigerrors.Wrap(ErrNoUsers, jigerrors.KindNotFound, "no assignable users match %q", query)
	}
	return active, nil
}

// AssignIssue assigns an issue to a user.
func (c *Client) AssignIssue(ctx context.Context, key ticket.Key, u User) error {
	body := assignRequest{Name: u.Name}
	if c.cfg.Cloud {
		body = assignRequest{AccountID: u.AccountID}
	}
	return c.do(ctx, http.MethodPut, "/issue/"+key.String()+"/assignee", nil, body, nil)
}

// do sends a request to endpoint under the API prefix. in is JSON-encoded when
// non-nil, out is decoded from a 2xx response when non-nil.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, in, out any) error {
	u := c.baseURL + apiPrefix + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return jigerrors.WrapInternal(err, "encode %s request", endpoint)
		}
		body = bytes.NewReader(b)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return jigerrors.WrapInternal(err, "build %s request", endpoint)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.AuthType() == AuthAPIToken {
		req.SetBasicAuth(c.cfg.Login, c.cfg.APIToken)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return jigerrors.Wrap(err, jigerrors.KindRemote, "jira request %s %s failed", method, endpoint).
			WithSuggestion(fmt.Sprintf("Check that %s is reachable", c.baseURL))
	}
	defer func() { _ = resp.Body.Close() }()
	c.logger.Debug("jira request", "method", method, "endpoint", endpoint, "status", resp.StatusCode, "elapsed", time.Since(start))

	if err := checkError(resp, endpoint); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return jigerrors.Wrap(err, jigerrors.KindRemote, "decode %s response", endpoint)
	}
	return nil
}
