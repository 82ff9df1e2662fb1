package commitmsg

import (
	"context"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
	"github.com/Baarsgaard/jig/internal/ticket"
)

// presence describes whether a key was found in the branch or the message.
type presence int

const (
	absent presence = iota
	present
)

func (p presence) String() string {
	if p == present {
		return "key"
	}
	return "no key"
}

func presenceOf(ok bool) presence {
	if ok {
		return present
	}
	return absent
}

// commitCase is the input to the rule table.
type commitCase struct {
	branch    string
	branchKey ticket.Key
	msg       message
	msgKey    ticket.Key

	branchHas presence
	msgHas    presence
}

func newCase(branch, raw string) commitCase {
	c := commitCase{branch: branch, msg: parseMessage(raw)}
	if k, err := ticket.Extract(branch); err == nil {
		c.branchKey = k
		c.branchHas = present
	}
	k, ok := c.msg.key()
	c.msgKey = k
	c.msgHas = presenceOf(ok)
	return c
}

// Rule is one row of the commit-msg decision table.
type Rule struct {
	Branch  presence
	Message presence

	// When narrows the row further. nil matches always.
	When func(c commitCase) bool

	// RequirePolicy gates the row on a config setting. When it returns false
	// the commit is rejected with Reject.
	RequirePolicy func(p Policy) bool
	Reject        func(c commitCase) *jigerrors.Error

	// Apply returns the key to prefix and the message body to follow it.
	Apply func(ctx context.Context, v *Validator, c commitCase) (ticket.Key, message, error)

	Description string
}

// rules is evaluated top to bottom, the first matching row wins. Every
// combination of branch and message presence is covered.
var rules = []Rule{
	{
		Branch:      present,
		Message:     absent,
		Apply:       prefixBranchKey,
		Description: "Branch key prefixed onto message",
	},
	{
		Branch:        present,
		Message:       present,
		When:          func(c commitCase) bool { return c.branchKey != c.msgKey },
		RequirePolicy: func(p Policy) bool { return p.AllowKeyMismatch },
		Reject: func(c commitCase) *jigerrors.Error {
			return jigerrors.KeyMismatch("issue key %s in commit message does not match %s in the branch name", c.msgKey, c.branchKey).
				WithDetails("branch_key", c.branchKey.String()).
				WithDetails("message_key", c.msgKey.String())
		},
		Apply:       moveMessageKeyToFront,
		Description: "Mismatching message key kept and moved to the front",
	},
	{
		Branch:      present,
		Message:     present,
		When:        func(c commitCase) bool { return c.msg.startsWith(c.msgKey) },
		Apply:       moveMessageKeyToFront,
		Description: "Leading key normalized",
	},
	{
		Branch:      present,
		Message:     present,
		Apply:       moveMessageKeyToFront,
		Description: "Key moved to the front of the message",
	},
	{
		Branch:        absent,
		Message:       present,
		RequirePolicy: func(p Policy) bool { return p.AllowBranchMissingKey },
		Reject:        missingBranchKey,
		Apply:         moveMessageKeyToFront,
		Description:   "Message key adopted on a branch without a key",
	},
	{
		Branch:        absent,
		Message:       absent,
		RequirePolicy: func(p Policy) bool { return p.AllowBranchMissingKey },
		Reject:        missingBranchKey,
		Apply:         selectKey,
		Description:   "Selected issue key prefixed onto message",
	},
}

func findRule(c commitCase) *Rule {
	for i := range rules {
		r := &rules[i]
		if r.Branch != c.branchHas || r.Message != c.msgHas {
			continue
		}
		if r.When != nil && !r.When(c) {
			continue
		}
		return r
	}
	return nil
}

// Rules returns a copy of the decision table, in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

func missingBranchKey(c commitCase) *jigerrors.Error {
	return jigerrors.MissingKey("issue key not found in branch name %q, create branches with: jig branch", c.branch)
}

func prefixBranchKey(_ context.Context, _ *Validator, c commitCase) (ticket.Key, message, error) {
	return c.branchKey, c.msg.trimLeft(), nil
}

// moveMessageKeyToFront strips a leading key, or removes the key wherever it
// appears, so it can be prefixed exactly once.
func moveMessageKeyToFront(_ context.Context, _ *Validator, c commitCase) (ticket.Key, message, error) {
	if c.msg.startsWith(c.msgKey) {
		return c.msgKey, c.msg.stripLeadingKey(c.msgKey), nil
	}
	return c.msgKey, c.msg.removeKey(c.msgKey), nil
}

func selectKey(ctx context.Context, v *Validator, c commitCase) (ticket.Key, message, error) {
	if v.selector == nil {
		return "", message{}, missingBranchKey(c)
	}
	t, err := v.selector(ctx)
	if err != nil {
		return "", message{}, err
	}
	if t.Key == "" {
		return "", message{}, jigerrors.MissingKey("no issue selected")
	}
	return t.Key, c.msg.trimLeft(), nil
}
