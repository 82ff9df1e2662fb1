package jira

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
)

var durationRegex = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)([wdhm]?)$`)

// Seconds per worklog unit. A day is a default Jira Cloud working day and a
// week is five of them.
var unitSeconds = map[string]float64{
	"":  60,
	"m": 60,
	"h": 60 * 60,
	"d": 8 * 60 * 60,
	"w": 5 * 8 * 60 * 60,
}

// ParseDuration converts a worklog duration such as "90", "1.5h", "2d" or "1W"
// into seconds. A missing unit means minutes.
func ParseDuration(s string) (int64, error) {
	m := durationRegex.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0, jigerrors.InvalidArgs("malformed worklog duration %q", s).
			WithSuggestion("Use a number with an optional unit: 30, 45m, 1.5h, 2d, 1w")
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, jigerrors.Wrap(err, jigerrors.KindInvalidArgs, "malformed worklog duration %q", s)
	}
	seconds := int64(math.Round(n * unitSeconds[m[2]]))
	if seconds <= 0 {
		return 0, jigerrors.InvalidArgs("worklog duration %q must be positive", s)
	}
	return seconds, nil
}
