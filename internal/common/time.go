// Package common holds small helpers shared by the CLI commands.
package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
)

// DayLayout is the date format accepted and shown by ParseDay.
const DayLayout = "2006-01-02"

// FormatAge returns a human-readable age string for a timestamp.
// Examples: "just now", "5m ago", "3h ago", "2d ago"
func FormatAge(t time.Time) string {
	return FormatDuration(time.Since(t))
}

// FormatDuration returns a human-readable string for a duration.
// Examples: "just now", "5m ago", "3h ago", "2d ago"
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		return fmt.Sprintf("%dm ago", mins)
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		return fmt.Sprintf("%dh ago", hours)
	}
	days := int(d.Hours() / 24)
	return fmt.Sprintf("%dd ago", days)
}

// ParseDay resolves a worklog day relative to now and returns that day at
// now's time of day. Accepted forms: "" or "today", "yesterday", "-N" for N
// days ago, and YYYY-MM-DD. Days in the future are rejected.
func ParseDay(input string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(input))

	var day time.Time
	switch {
	case s == "" || s == "today":
		return now, nil
	case s == "yesterday":
		day = now.AddDate(0, 0, -1)
	case strings.HasPrefix(s, "-"):
		n, err := strconv.Atoi(s[1:])
		if err != nil || n < 0 {
			return time.Time{}, invalidDay(input)
		}
		day = now.AddDate(0, 0, -n)
	default:
		d, err := time.ParseInLocation(DayLayout, s, now.Location())
		if err != nil {
			return time.Time{}, invalidDay(input)
		}
		day = time.Date(d.Year(), d.Month(), d.Day(),
			now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())
	}

	if day.After(now) {
		return time.Time{}, jigerrors.InvalidArgs("worklog date %s is in the future", day.Format(DayLayout))
	}
	return day, nil
}

func invalidDay(input string) *jigerrors.Error {
	return jigerrors.InvalidArgs("malformed date %q", input).
		WithSuggestion("Use today, yesterday, -N (days ago) or YYYY-MM-DD")
}
