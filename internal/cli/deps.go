package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/Baarsgaard/jig/internal/config"
	"github.com/Baarsgaard/jig/internal/db"
	jigerrors "github.com/Baarsgaard/jig/internal/errors"
	"github.com/Baarsgaard/jig/internal/jira"
	"github.com/Baarsgaard/jig/internal/prompt"
	"github.com/Baarsgaard/jig/internal/repo"
	"github.com/Baarsgaard/jig/internal/ticket"
)

// jiraAPI is the part of the Jira client the commands use.
type jiraAPI interface {
	SearchIssues(ctx context.Context, jql string) ([]ticket.Ticket, error)
	GetIssue(ctx context.Context, key ticket.Key) (ticket.Ticket, error)
	GetTransitions(ctx context.Context, key ticket.Key) ([]jira.Transition, error)
	TransitionIssue(ctx context.Context, key ticket.Key, transitionID string) error
	AddComment(ctx context.Context, key ticket.Key, text string) error
	AddWorklog(ctx context.Context, key ticket.Key, wl jira.Worklog) error
	AssignableUsers(ctx context.Context, key ticket.Key, query string) ([]jira.User, error)
	AssignIssue(ctx context.Context, key ticket.Key, u jira.User) error
	BrowseURL(key ticket.Key) string
}

// gitRepo is the part of the repository accessor the commands use.
type gitRepo interface {
	CurrentBranch() (string, error)
	FirstExisting(candidates ...string) (string, bool)
	LocalBranches() ([]string, error)
	Checkout(ctx context.Context, name string, create bool) error
	HooksPath() (string, error)
	InstallHook(name, target string, overwrite bool) (string, error)
}

// prompter is the part of the terminal prompts the commands use.
type prompter interface {
	prompt.Selector
	Input(title, initial string, required bool) (string, error)
	Password(title string) (string, error)
	Confirm(question string, def bool) (bool, error)
}

// Factories, replaced in tests.
var (
	newJiraClient = func(cfg *config.Config) (jiraAPI, error) {
		if err := cfg.RequireJira(); err != nil {
			return nil, err
		}
		c, err := jira.NewClient(cfg.JiraConfig(), jira.WithLogger(slog.Default()))
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	openRepo = func() (gitRepo, error) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, jigerrors.WrapInternal(err, "failed to determine working directory")
		}
		r, err := repo.Open(wd)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	newPrompter = func() prompter {
		return prompt.New()
	}

	openCache = func(path string) (*db.DB, error) {
		return db.Open(path)
	}
)

// cache opens the ticket cache. The cache is optional, so failures are logged
// and nil is returned; callers must handle a nil cache.
func cache(cfg *config.Config) *db.DB {
	d, err := openCache(cfg.CachePath)
	if err != nil {
		slog.Warn("ticket cache unavailable", "err", err)
		return nil
	}
	return d
}

// currentBranch returns the checked out branch, or "" outside a repository.
func currentBranch() string {
	r, err := openRepo()
	if err != nil {
		return ""
	}
	branch, err := r.CurrentBranch()
	if err != nil {
		return ""
	}
	return branch
}
