// Package branchname builds git branch names from Jira tickets.
//
// A branch name starts with the ticket key followed by a sanitized summary, for
// example "JB-1_Example_summary". Names are bounded so they stay readable in
// git output, and every name is checked to still contain its ticket key.
package branchname

import (
	"strings"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
	"github.com/Baarsgaard/jig/internal/ticket"
)

// MaxStemLength is the maximum length, in characters, of the key and summary
// part of a branch name.
const MaxStemLength = 50

type modeKind int

const (
	modeDefault modeKind = iota
	modeShort
	modeSuffix
	modeOverwrite
)

// Mode selects how a branch name is built from a ticket.
type Mode struct {
	kind modeKind
	text string
}

// Default names the branch "{key} {summary}".
func Default() Mode { return Mode{kind: modeDefault} }

// Short names the branch after the key alone.
func Short() Mode { return Mode{kind: modeShort} }

// WithSuffix appends text to the default name. When the result would exceed
// MaxStemLength the summary is cut first, then the suffix, but never the key.
func WithSuffix(text string) Mode { return Mode{kind: modeSuffix, text: text} }

// Overwrite names the branch "{key} {text}", ignoring the summary.
func Overwrite(text string) Mode { return Mode{kind: modeOverwrite, text: text} }

func (m Mode) String() string {
	switch m.kind {
	case modeShort:
		return "short"
	case modeSuffix:
		return "suffix(" + m.text + ")"
	case modeOverwrite:
		return "overwrite(" + m.text + ")"
	default:
		return "default"
	}
}

// ModeFromFlags resolves the branch command's flags into a Mode. At most one
// of short, suffix and name may be set. alwaysShort flips the meaning of
// short so a configured preference can be overridden per invocation.
func ModeFromFlags(short bool, suffix, name string, alwaysShort bool) (Mode, error) {
	set := 0
	for _, on := range []bool{short, suffix != "", name != ""} {
		if on {
			set++
		}
	}
	if set > 1 {
		return Mode{}, jigerrors.UsageConflict("--short, --append and --name are mutually exclusive")
	}

	switch {
	case suffix != "":
		return WithSuffix(suffix), nil
	case name != "":
		return Overwrite(name), nil
	case short != alwaysShort:
		return Short(), nil
	default:
		return Default(), nil
	}
}

// Synthesize returns the branch name for t in the given mode. The result always
// contains t.Key; a MalformedKey error is returned when it would not.
func Synthesize(t ticket.Ticket, mode Mode) (string, error) {
	var name string
	switch mode.kind {
	case modeShort:
		name = t.Key.String()
	case modeOverwrite:
		name = Sanitize(cutStem(t.Key, mode.text))
	case modeSuffix:
		name = Sanitize(appendSuffix(cutStem(t.Key, t.Summary), t.Key, mode.text))
	default:
		name = Sanitize(cutStem(t.Key, t.Summary))
	}

	got, err := ticket.Extract(name)
	if err != nil {
		return "", err
	}
	if got != t.Key {
		return "", jigerrors.MalformedKey("branch name %q resolves to %s, not %s", name, got, t.Key)
	}
	return name, nil
}

// cutStem sanitizes before the cut to keep as much text as possible. Callers
// sanitize again after it so the cut cannot leave a trailing separator behind.
func cutStem(key ticket.Key, text string) string {
	raw := key.String()
	if text = strings.TrimSpace(text); text != "" {
		raw += " " + text
	}
	return truncate(Sanitize(raw), MaxStemLength)
}

// appendSuffix joins stem and suffix with no separator. The suffix is capped
// so the key and the character after it survive, then the stem is cut by the
// overflow. The joined name is at most MaxStemLength+1 characters long.
func appendSuffix(stem string, key ticket.Key, suffix string) string {
	keyLen := runeLen(key.String())
	if keyLen+1+runeLen(suffix) > MaxStemLength {
		suffix = truncate(suffix, MaxStemLength-keyLen)
	}
	if runeLen(stem)+runeLen(suffix) > MaxStemLength {
		stem = truncate(stem, MaxStemLength+1-runeLen(suffix))
	}
	return stem + suffix
}
