package branchname

import (
	"strings"
	"unicode/utf8"
)

// disallowed characters are replaced with an underscore. Control characters
// and DEL are handled separately in replaceDisallowed.
const disallowed = " :~^?*[\\'\"<>"

// collapsible runs are reduced to a single occurrence.
var collapsible = []struct{ from, to string }{
	{"..", "."},
	{"__", "_"},
	{"--", "-"},
	{"//", "/"},
}

// removable sequences are dropped entirely.
var removable = []string{"${", "@{"}

// Sanitize rewrites name into a legal git ref name. It is a fixed point:
// Sanitize(Sanitize(s)) == Sanitize(s) for every s.
//
// The rules, applied in order and repeated until nothing changes:
//   - spaces, control characters and : ~ ^ ? * [ \ ' " < > become _
//   - runs of . _ - and / collapse to one
//   - ${ and @{ are removed
//   - .lock/ becomes /
//   - /. becomes /
//   - leading and trailing . / _ and a trailing .lock are stripped
func Sanitize(name string) string {
	// Every pass after the first only shortens the string, so this bound is
	// never reached before a fixed point.
	limit := len(name) + 2
	for i := 0; i < limit; i++ {
		next := sanitizePass(name)
		if next == name {
			break
		}
		name = next
	}
	return name
}

func sanitizePass(s string) string {
	s = replaceDisallowed(s)
	for _, c := range collapsible {
		s = replaceUntilStable(s, c.from, c.to)
	}
	for _, r := range removable {
		s = replaceUntilStable(s, r, "")
	}
	s = replaceUntilStable(s, ".lock/", "/")
	s = strings.ReplaceAll(s, "/.", "/")
	return trimEdges(s)
}

func replaceDisallowed(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(disallowed, r) {
			return '_'
		}
		return r
	}, s)
}

// replaceUntilStable replaces old with new until old no longer occurs.
// new must be shorter than old so the loop terminates.
func replaceUntilStable(s, old, new string) string {
	for strings.Contains(s, old) {
		s = strings.ReplaceAll(s, old, new)
	}
	return s
}

func trimEdges(s string) string {
	for {
		trimmed := strings.TrimRight(s, "./_")
		trimmed = strings.TrimSuffix(trimmed, ".lock")
		trimmed = strings.TrimLeft(trimmed, "./_")
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
