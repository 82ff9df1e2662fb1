package jira

import (
	"time"

	"github.com/Baarsgaard/jig/internal/ticket"
)

// TimeFormat is the timestamp layout Jira accepts for worklog start times. It
// rejects RFC 3339 offsets containing a colon.
const TimeFormat = "2006-01-02T15:04:05.000-0700"

// FormatTime formats t for Jira.
func FormatTime(t time.Time) string {
	return t.Format(TimeFormat)
}

// Issue is the subset of a Jira issue jig reads.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self,omitempty"`
	Fields IssueFields `json:"fields"`
}

// IssueFields holds the requested issue fields.
type IssueFields struct {
	Summary string `json:"summary"`
}

// Ticket converts the issue into a ticket snapshot. Issues whose key does not
// parse return a MalformedKey error.
func (i Issue) Ticket() (ticket.Ticket, error) {
	k, err := ticket.Extract(i.Key)
	if err != nil {
		return ticket.Ticket{}, err
	}
	return ticket.Ticket{Key: k, Summary: i.Fields.Summary}, nil
}

type searchRequest struct {
	JQL        string   `json:"jql"`
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields"`
}

// SearchResponse is the response from a JQL search.
type SearchResponse struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// Transition is a workflow transition available on an issue.
type Transition struct {
	ID     string                     `json:"id"`
	Name   string                     `json:"name"`
	To     *Status                    `json:"to,omitempty"`
	Fields map[string]TransitionField `json:"fields,omitempty"`
}

func (t Transition) String() string {
	if t.To != nil && t.To.Name != "" && t.To.Name != t.Name {
		return t.Name + " → " + t.To.Name
	}
	return t.Name
}

// RequiredFields returns the names of fields the transition screen requires.
func (t Transition) RequiredFields() []string {
	var out []string
	for id, f := range t.Fields {
		if f.Required {
			name := f.Name
			if name == "" {
				name = id
			}
			out = append(out, name)
		}
	}
	return out
}

// TransitionField describes a field on a transition screen.
type TransitionField struct {
	Required bool   `json:"required"`
	Name     string `json:"name"`
}

// Status represents an issue status.
type Status struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type transitionsResponse struct {
	Transitions []Transition `json:"transitions"`
}

type transitionRequest struct {
	Transition struct {
		ID string `json:"id"`
	} `json:"transition"`
}

type commentRequest struct {
	Body string `json:"body"`
}

// Worklog is a work log entry to post on an issue.
type Worklog struct {
	Comment          string `json:"comment,omitempty"`
	Started          string `json:"started"`
	TimeSpentSeconds int64  `json:"timeSpentSeconds"`
}

// User is an assignable Jira user. Server installations identify users by
// Name, Cloud by AccountID.
type User struct {
	Name         string `json:"name,omitempty"`
	AccountID    string `json:"accountId,omitempty"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress,omitempty"`
	Active       bool   `json:"active"`
}

func (u User) String() string {
	switch {
	case u.EmailAddress != "":
		return u.DisplayName + " <" + u.EmailAddress + ">"
	case u.Name != "":
		return u.DisplayName + " (" + u.Name + ")"
	default:
		return u.DisplayName
	}
}

type assignRequest struct {
	Name      string `json:"name,omitempty"`
	AccountID string `json:"accountId,omitempty"`
}
