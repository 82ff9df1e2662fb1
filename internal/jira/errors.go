package jira

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
)

// Configuration errors.
var (
	ErrConfigURLRequired  = errors.New("jira url is required")
	ErrConfigURLInvalid   = errors.New("jira url must be an absolute http(s) url")
	ErrConfigAPITokenAuth = errors.New("api_token auth requires both user_login and api_token")
)

// Result errors.
var (
	ErrNoIssues      = errors.New("query returned no issues")
	ErrNoTransitions = errors.New("issue has no available transitions")
	ErrNoUsers       = errors.New("no assignable users found")
)

// APIError represents an error response from the Jira API.
type APIError struct {
	StatusCode    int               `json:"-"`
	ErrorMessages []string          `json:"errorMessages,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
	Endpoint      string            `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.ErrorMessages) > 0 {
		return fmt.Sprintf("jira api error (%d): %s", e.StatusCode, e.ErrorMessages[0])
	}
	if len(e.Errors) > 0 {
		fields := make([]string, 0, len(e.Errors))
		for f := range e.Errors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		return fmt.Sprintf("jira api error (%d): %s: %s", e.StatusCode, fields[0], e.Errors[fields[0]])
	}
	return fmt.Sprintf("jira api error (%d) at %s", e.StatusCode, e.Endpoint)
}

// IsNotFound returns true if this is a 404 error.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized returns true if this is a 401 or 403 error.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// checkError turns a non-2xx response into a *jigerrors.Error wrapping an
// *APIError. The response body is consumed but not closed.
func checkError(resp *http.Response, endpoint string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = json.Unmarshal(body, apiErr)

	e := jigerrors.Wrap(apiErr, jigerrors.KindFromHTTPStatus(resp.StatusCode), "jira request %s failed", endpoint)
	if apiErr.IsUnauthorized() {
		e.WithSuggestion("Check user_login/api_token or pat_token with: jig configs")
	}
	return e
}
