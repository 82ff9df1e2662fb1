package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Baarsgaard/jig/internal/cli"
	"github.com/Baarsgaard/jig/internal/commitmsg"
)

func main() {
	// git runs the hook through a symlink named after it.
	if name := filepath.Base(os.Args[0]); name == commitmsg.HookName {
		os.Exit(cli.RunHook(name, os.Args[1:]))
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatErrorMessage(err))
		os.Exit(cli.ExitCode(err))
	}
}
