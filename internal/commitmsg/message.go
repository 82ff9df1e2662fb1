package commitmsg

import (
	"regexp"
	"slices"
	"strings"

	"github.com/Baarsgaard/jig/internal/ticket"
)

const (
	commentPrefix = "#"
	scissorsLine  = "# ------------------------ >8 ------------------------"
)

var multiSpace = regexp.MustCompile(` {2,}`)

// message is a commit message split into the part git keeps and the part git
// strips during cleanup. Only the kept part is searched and rewritten.
type message struct {
	lines    []string
	scissors string // everything from the scissors line on, verbatim
}

func parseMessage(raw string) message {
	var m message
	if i := strings.Index(raw, scissorsLine); i >= 0 {
		m.scissors = raw[i:]
		raw = raw[:i]
	}
	m.lines = strings.Split(raw, "\n")
	return m
}

func (m message) String() string {
	return strings.Join(m.lines, "\n") + m.scissors
}

// content returns the message without comment lines.
func (m message) content() string {
	kept := make([]string, 0, len(m.lines))
	for _, l := range m.lines {
		if !isComment(l) {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

// key returns the first issue key in the non-comment part of the message.
func (m message) key() (ticket.Key, bool) {
	k, err := ticket.Extract(m.content())
	if err != nil {
		return "", false
	}
	return k, true
}

// startsWith reports whether the first non-blank text of the message is key,
// not followed by another digit.
func (m message) startsWith(key ticket.Key) bool {
	body := strings.TrimLeft(m.content(), " \t\r\n")
	k := key.String()
	if len(body) < len(k) || !strings.EqualFold(body[:len(k)], k) {
		return false
	}
	rest := body[len(k):]
	return rest == "" || rest[0] < '0' || rest[0] > '9'
}

// stripLeadingKey removes key and any colons or whitespace that follow it from
// the start of the message.
func (m message) stripLeadingKey(key ticket.Key) message {
	out := m.trimLeft()
	i := out.firstContentLine()
	if i < 0 {
		return out
	}
	line := strings.TrimLeft(out.lines[i], " \t\r")
	k := key.String()
	if len(line) < len(k) || !strings.EqualFold(line[:len(k)], k) {
		return out
	}
	out.lines[i] = strings.TrimLeft(line[len(k):], ": \t")
	if out.lines[i] == "" {
		out.lines = append(out.lines[:i], out.lines[i+1:]...)
		return out.trimLeft()
	}
	return out
}

// removeKey deletes every occurrence of key from non-comment lines, including
// brackets or parentheses wrapped around it and a trailing colon. An occurrence
// counts only where the extractor would also read key: no letter directly
// before it and no digit directly after it.
func (m message) removeKey(key ticket.Key) message {
	re := regexp.MustCompile(`(?i)[\[(]?(` + regexp.QuoteMeta(key.String()) + `)[\])]?:?`)
	out := message{lines: make([]string, len(m.lines)), scissors: m.scissors}
	for i, l := range m.lines {
		if isComment(l) || !slices.Contains(ticket.FindAll(l), key) {
			out.lines[i] = l
			continue
		}
		l = cutKey(l, re)
		l = multiSpace.ReplaceAllString(l, " ")
		out.lines[i] = strings.TrimSpace(l)
	}
	return out.trimLeft()
}

// cutKey removes the matches of re whose key group stands alone.
func cutKey(line string, re *regexp.Regexp) string {
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringSubmatchIndex(line, -1) {
		start, end, keyStart, keyEnd := loc[0], loc[1], loc[2], loc[3]
		if keyStart > 0 && isASCIILetter(line[keyStart-1]) {
			continue
		}
		if keyEnd < len(line) && isDigit(line[keyEnd]) {
			continue
		}
		b.WriteString(line[last:start])
		last = end
	}
	b.WriteString(line[last:])
	return b.String()
}

func isASCIILetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// trimLeft drops leading blank lines and leading whitespace of the first line.
func (m message) trimLeft() message {
	out := message{lines: append([]string(nil), m.lines...), scissors: m.scissors}
	for len(out.lines) > 1 && strings.TrimSpace(out.lines[0]) == "" {
		out.lines = out.lines[1:]
	}
	if len(out.lines) > 0 {
		out.lines[0] = strings.TrimLeft(out.lines[0], " \t\r")
	}
	return out
}

// firstContentLine returns the index of the first non-blank, non-comment line.
func (m message) firstContentLine() int {
	for i, l := range m.lines {
		if !isComment(l) && strings.TrimSpace(l) != "" {
			return i
		}
	}
	return -1
}

// capitalize upper-cases a leading lowercase ASCII letter.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}

func isComment(line string) bool {
	return strings.HasPrefix(line, commentPrefix)
}
