package cli

import (
	"os"
	"os/exec"
	"runtime"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
)

// browserCommand returns the command that opens url: $BROWSER when set,
// otherwise the platform's opener.
func browserCommand(url string) (string, []string) {
	if b := os.Getenv("BROWSER"); b != "" {
		return b, []string{url}
	}
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// openBrowser starts a browser on url without waiting for it. Replaced in
// tests.
var openBrowser = func(url string) error {
	name, args := browserCommand(url)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return jigerrors.WrapInternal(err, "failed to start %s", name).
			WithSuggestion("Open it manually: " + url)
	}
	go cmd.Wait()
	return nil
}
