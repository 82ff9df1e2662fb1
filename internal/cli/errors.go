package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
)

// ExitCode returns the exit code for any error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return jigerrors.GetCLIExitCode(err)
}

// FormatErrorMessage returns the formatted error with details and suggestion
// if available.
func FormatErrorMessage(err error) string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(err.Error())

	var jerr *jigerrors.Error
	if !errors.As(err, &jerr) {
		return b.String()
	}

	if len(jerr.Details) > 0 {
		keys := make([]string, 0, len(jerr.Details))
		for k := range jerr.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "\n  %s: %v", k, jerr.Details[k])
		}
	}
	if jerr.Suggestion != "" {
		b.WriteString("\n\nSuggestion: ")
		b.WriteString(jerr.Suggestion)
	}
	return b.String()
}

// Common suggestions
const (
	SuggestCheckKey    = "Check the issue key format. It should be like PROJ-123."
	SuggestInstallHook = "Install the hook with: jig hook"
)
