package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Baarsgaard/jig/internal/commitmsg"
	"github.com/Baarsgaard/jig/internal/config"
	jigerrors "github.com/Baarsgaard/jig/internal/errors"
	"github.com/Baarsgaard/jig/internal/logging"
	"github.com/Baarsgaard/jig/internal/prompt"
	"github.com/Baarsgaard/jig/internal/repo"
	"github.com/Baarsgaard/jig/internal/ticket"
)

var (
	hookForce bool
	hookRules bool
)

func init() {
	hookCmd.Flags().BoolVarP(&hookForce, "force", "f", false, "Replace an existing commit-msg hook without asking")
	hookCmd.Flags().BoolVar(&hookRules, "rules", false, "Print the rules the hook applies instead of installing it")
	rootCmd.AddCommand(hookCmd)
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Install jig as the commit-msg hook",
	Long: `Install jig as the commit-msg hook of the current repository.

The hook is a symlink to the jig binary named commit-msg in core.hooksPath, or
in .git/hooks when core.hooksPath is not set. When invoked as commit-msg, jig
puts the issue key from the branch name at the front of every commit message.

An existing hook is only replaced after confirmation, or with --force.`,
	Args: cobra.NoArgs,
	RunE: runHookInstall,
}

// executable is replaced in tests.
var executable = os.Executable

func runHookInstall(cmd *cobra.Command, args []string) error {
	if hookRules {
		printRules()
		return nil
	}

	r, err := openRepo()
	if err != nil {
		return err
	}
	path, err := installHook(r, newPrompter(), hookForce)
	if err != nil {
		return err
	}
	OutputLine("Installed %s hook at %s", commitmsg.HookName, path)
	return nil
}

func installHook(r gitRepo, p prompter, force bool) (string, error) {
	exe, err := executable()
	if err != nil {
		return "", jigerrors.WrapInternal(err, "failed to locate the jig binary")
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	path, err := r.InstallHook(commitmsg.HookName, exe, force)
	if err == nil || !errors.Is(err, repo.ErrHookExists) {
		return path, err
	}

	ok, perr := p.Confirm(fmt.Sprintf("%s exists. Replace it?", path), false)
	if perr != nil {
		return "", jigerrors.Wrap(perr, jigerrors.KindInvalidArgs, "%s exists and could not ask to replace it", path).
			WithSuggestion("Replace it with: jig hook --force")
	}
	if !ok {
		return "", jigerrors.General("kept existing hook at %s", path)
	}
	return r.InstallHook(commitmsg.HookName, exe, true)
}

// printRules lists the decision table in evaluation order. Rows gated by a
// hooks setting are marked.
func printRules() {
	for i, rule := range commitmsg.Rules() {
		gate := ""
		if rule.RequirePolicy != nil {
			gate = " (needs [hooks] setting)"
		}
		OutputLine("%d. branch: %-6s message: %-6s %s%s", i+1, rule.Branch, rule.Message, rule.Description, gate)
	}
}

// RunHook runs jig as a git hook named name with git's arguments and returns
// the process exit code. Failures are printed to stderr.
func RunHook(name string, args []string) int {
	if err := runHook(context.Background(), name, args); err != nil {
		fmt.Fprintln(os.Stderr, FormatErrorMessage(err))
		return 1
	}
	return 0
}

func runHook(ctx context.Context, name string, args []string) error {
	if name != commitmsg.HookName {
		return jigerrors.InvalidArgs("unsupported hook %q", name)
	}
	if len(args) < 1 {
		return jigerrors.InvalidArgs("%s hook expects the commit message file as its first argument", name)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.Init(logging.Options{NoColor: cfg.NoColor})

	r, err := openRepo()
	if err != nil {
		return err
	}

	validator := commitmsg.NewValidator(cfg.Policy(), hookSelector(cfg))
	return commitmsg.NewHook(validator, r, slog.Default()).Run(ctx, args[0])
}

// hookSelector picks a ticket for commits where neither the branch nor the
// message has a key. git hooks get no usable stdin, so the prompt reads the
// terminal directly.
func hookSelector(cfg *config.Config) commitmsg.Selector {
	return func(ctx context.Context) (ticket.Ticket, error) {
		client, err := newJiraClient(cfg)
		if err != nil {
			return ticket.Ticket{}, err
		}
		c := cache(cfg)
		defer c.Close()
		return newResolver(cfg, client, c, hookPrompter()).pick(ctx)
	}
}

// hookPrompter is replaced in tests.
var hookPrompter = func() prompt.Selector {
	return prompt.NewTTY()
}
