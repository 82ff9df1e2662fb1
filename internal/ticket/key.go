// Package ticket holds Jira issue keys and the ticket snapshot used to name
// branches and prefix commit messages.
package ticket

import (
	"regexp"
	"strings"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
)

// keyRegex finds keys like "JB-1" or "WEBAPP-42" anywhere in a string.
// The input is uppercased before matching.
var keyRegex = regexp.MustCompile(`[A-Z]{2,}-[0-9]+`)

// Key is a Jira issue key in PROJECT-NUMBER form. Keys are always uppercase.
type Key string

// Extract returns the first issue key found in text. Matching is case
// insensitive, the returned key is uppercase. A MalformedKey error is returned
// when text holds no key.
func Extract(text string) (Key, error) {
	match := keyRegex.FindString(strings.ToUpper(text))
	if match == "" {
		return "", jigerrors.MalformedKey("no issue key found in %q (expected PROJECT-NUMBER)", text)
	}
	return Key(match), nil
}

// FindAll returns every key in text in order of appearance, uppercased.
func FindAll(text string) []Key {
	matches := keyRegex.FindAllString(strings.ToUpper(text), -1)
	keys := make([]Key, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, Key(m))
	}
	return keys
}

func (k Key) String() string {
	return string(k)
}

// Ticket is a read-only snapshot of an issue as returned by a query.
type Ticket struct {
	Key     Key
	Summary string
}

// String renders the ticket the way selection prompts list it.
func (t Ticket) String() string {
	if t.Summary == "" {
		return t.Key.String()
	}
	return t.Key.String() + " " + t.Summary
}
