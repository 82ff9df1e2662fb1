package cli

import (
	"context"
	"log/slog"

	"github.com/Baarsgaard/jig/internal/common"
	"github.com/Baarsgaard/jig/internal/config"
	"github.com/Baarsgaard/jig/internal/db"
	jigerrors "github.com/Baarsgaard/jig/internal/errors"
	"github.com/Baarsgaard/jig/internal/prompt"
	"github.com/Baarsgaard/jig/internal/ticket"
)

// resolver finds the ticket a command acts on: an explicit key, the key in
// the current branch, or one picked from the configured queries. Tickets read
// from Jira are written to the cache, and the cache answers when Jira can't.
type resolver struct {
	cfg    *config.Config
	client jiraAPI
	cache  *db.DB
	prompt prompt.Selector
}

func newResolver(cfg *config.Config, client jiraAPI, cache *db.DB, p prompt.Selector) *resolver {
	return &resolver{cfg: cfg, client: client, cache: cache, prompt: p}
}

// parseKey validates a key given on the command line.
func parseKey(arg string) (ticket.Key, error) {
	key, err := ticket.Extract(arg)
	if err != nil {
		return "", jigerrors.Wrap(err, jigerrors.KindInvalidArgs, "invalid issue key %q", arg).
			WithSuggestion(SuggestCheckKey)
	}
	return key, nil
}

// resolve returns the full ticket for arg, or for branch when arg is empty, or
// prompts for one when neither holds a key.
func (r *resolver) resolve(ctx context.Context, arg, branch string) (ticket.Ticket, error) {
	if arg != "" {
		key, err := parseKey(arg)
		if err != nil {
			return ticket.Ticket{}, err
		}
		return r.lookup(ctx, key)
	}
	if key, err := ticket.Extract(branch); err == nil {
		return r.lookup(ctx, key)
	}
	return r.pick(ctx)
}

// resolveKey is like resolve but trusts keys from arg and branch without
// asking Jira for the summary.
func (r *resolver) resolveKey(ctx context.Context, arg, branch string) (ticket.Key, error) {
	if arg != "" {
		return parseKey(arg)
	}
	if key, err := ticket.Extract(branch); err == nil {
		return key, nil
	}
	t, err := r.pick(ctx)
	if err != nil {
		return "", err
	}
	return t.Key, nil
}

// lookup fetches the ticket for key, falling back to the cached summary when
// Jira is unreachable.
func (r *resolver) lookup(ctx context.Context, key ticket.Key) (ticket.Ticket, error) {
	t, err := r.client.GetIssue(ctx, key)
	if err == nil {
		r.remember(t)
		return t, nil
	}
	if !jigerrors.Is(err, jigerrors.KindRemote) || r.cache == nil {
		return ticket.Ticket{}, err
	}

	cached, cerr := r.cache.Tickets().Get(key)
	if cerr != nil {
		return ticket.Ticket{}, err
	}
	slog.Warn("jira unreachable, using cached summary", "key", key, "fetched", common.FormatAge(cached.FetchedAt))
	return cached.Ticket, nil
}

// query runs issue_query, then retry_query when the first one fails or finds
// nothing, then falls back to recently cached tickets.
func (r *resolver) query(ctx context.Context) ([]ticket.Ticket, error) {
	tickets, err := r.client.SearchIssues(ctx, r.cfg.IssueQuery)
	if err != nil || len(tickets) == 0 {
		slog.Debug("issue query found nothing, trying retry query", "err", err)
		tickets, err = r.client.SearchIssues(ctx, r.cfg.RetryQuery)
	}
	if err == nil {
		if r.cache != nil {
			if cerr := r.cache.Tickets().UpsertAll(tickets); cerr != nil {
				slog.Warn("failed to cache tickets", "err", cerr)
			}
		}
		return tickets, nil
	}
	if r.cache == nil {
		return nil, err
	}

	recent, cerr := r.cache.Tickets().Recent(r.cfg.MaxQueryResults)
	if cerr != nil || len(recent) == 0 {
		return nil, err
	}
	slog.Warn("jira query failed, showing cached tickets", "err", err, "newest", common.FormatAge(recent[0].FetchedAt))
	out := make([]ticket.Ticket, len(recent))
	for i, c := range recent {
		out[i] = c.Ticket
	}
	return out, nil
}

// pick lets the user choose among the query results.
func (r *resolver) pick(ctx context.Context) (ticket.Ticket, error) {
	tickets, err := r.query(ctx)
	if err != nil {
		return ticket.Ticket{}, err
	}
	return prompt.Choose(r.prompt, "Jira issue:", tickets)
}

func (r *resolver) remember(t ticket.Ticket) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Tickets().Upsert(t); err != nil {
		slog.Warn("failed to cache ticket", "key", t.Key, "err", err)
	}
}
