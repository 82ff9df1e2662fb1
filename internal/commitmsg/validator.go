// Package commitmsg implements the commit-msg hook: every commit message is
// rewritten to start with exactly one Jira issue key, taken from the current
// branch name when possible.
package commitmsg

import (
	"context"
	"regexp"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
	"github.com/Baarsgaard/jig/internal/ticket"
)

// ConformancePattern is the shape every rewritten commit message must have.
const ConformancePattern = `^[A-Z]{2,}-[0-9]+ [A-Z0-9].*$`

// SkipSuggestion is attached to every rejection.
const SkipSuggestion = "Skip the check with: git commit --no-verify"

var (
	conformanceRegex = regexp.MustCompile(`(?s)` + ConformancePattern)

	// Commits git or its users generate that must keep their subject intact
	// for autosquash, revert and merge tooling.
	boilerplateRegex = regexp.MustCompile(`^(?:(squash|fixup|amend|Revert)!?|Merge )`)
)

// DetachedHead is the branch name reported while rebasing or on a detached HEAD.
const DetachedHead = "HEAD"

// Policy holds the hook settings from the [hooks] config table.
type Policy struct {
	AllowBranchMissingKey bool
	AllowKeyMismatch      bool
}

// Selector asks for a ticket when neither the branch nor the message names one.
type Selector func(ctx context.Context) (ticket.Ticket, error)

// Result is the outcome of a successful validation.
type Result struct {
	Message string
	Changed bool
	Key     ticket.Key
	Rule    string // description of the rule that matched, empty on pass-through
}

// Validator rewrites commit messages according to its Policy.
type Validator struct {
	policy   Policy
	selector Selector
}

// NewValidator returns a Validator. selector may be nil, in which case a
// branch and message without keys is rejected even when the policy allows
// keyless branches.
func NewValidator(policy Policy, selector Selector) *Validator {
	return &Validator{policy: policy, selector: selector}
}

// Validate checks msg against the key in branch and returns the corrected
// message. Rebase states and boilerplate commits pass through unchanged.
func (v *Validator) Validate(ctx context.Context, branch, msg string) (Result, error) {
	switch {
	case branch == "":
		return Result{}, jigerrors.BranchState("current branch name is empty").
			WithSuggestion(SkipSuggestion)
	case branch == DetachedHead:
		return Result{Message: msg}, nil
	case boilerplateRegex.MatchString(msg):
		return Result{Message: msg}, nil
	}

	in := newCase(branch, msg)
	rule := findRule(in)
	if rule == nil {
		// Unreachable: the rule table covers every combination.
		return Result{}, jigerrors.Internal("no commit-msg rule for branch %q", branch)
	}
	if rule.RequirePolicy != nil && !rule.RequirePolicy(v.policy) {
		return Result{}, rule.Reject(in).WithSuggestion(SkipSuggestion)
	}

	key, body, err := rule.Apply(ctx, v, in)
	if err != nil {
		return Result{}, withSuggestion(err)
	}

	final := key.String() + " " + capitalize(body.String())
	if !conformanceRegex.MatchString(final) {
		return Result{}, jigerrors.ConformanceViolation("commit message does not conform to %s", ConformancePattern).
			WithDetails("pattern", ConformancePattern).
			WithDetails("message", final).
			WithSuggestion(SkipSuggestion)
	}

	return Result{
		Message: final,
		Changed: final != msg,
		Key:     key,
		Rule:    rule.Description,
	}, nil
}

func withSuggestion(err error) error {
	if e, ok := err.(*jigerrors.Error); ok && e.Suggestion == "" {
		return e.WithSuggestion(SkipSuggestion)
	}
	return err
}
