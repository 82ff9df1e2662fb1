package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Baarsgaard/jig/internal/branchname"
	"github.com/Baarsgaard/jig/internal/db"
	"github.com/Baarsgaard/jig/internal/ticket"
)

var (
	branchShort  bool
	branchAppend string
	branchName   string
)

func init() {
	branchCmd.Flags().BoolVarP(&branchShort, "short", "s", false, "Only use the issue key as branch name (inverts always_short_branch_names)")
	branchCmd.Flags().StringVarP(&branchAppend, "append", "a", "", "Append text to the generated branch name")
	branchCmd.Flags().StringVarP(&branchName, "name", "n", "", "Use text instead of the issue summary")
	rootCmd.AddCommand(branchCmd)
}

var branchCmd = &cobra.Command{
	Use:     "branch [KEY]",
	Aliases: []string{"b"},
	Short:   "Create or switch to the branch for an issue",
	Long: `Create or switch to the branch for a Jira issue.

Without KEY the issue is picked from issue_query (or retry_query when that
finds nothing). The branch is named "<KEY>_<summary>", sanitized and bounded
in length. If a branch for the issue already exists it is checked out instead.

Examples:
  jig branch JB-1            # JB-1_Example_summary
  jig branch JB-1 --short    # JB-1
  jig branch JB-1 -a _v2     # JB-1_Example_summary_v2
  jig branch JB-1 -n spike   # JB-1_spike`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBranch,
}

type branchResult struct {
	Branch  string `json:"branch"`
	Key     string `json:"key"`
	Created bool   `json:"created"`
}

func runBranch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	mode, err := branchname.ModeFromFlags(branchShort, branchAppend, branchName, cfg.AlwaysShortBranchNames)
	if err != nil {
		return err
	}

	r, err := openRepo()
	if err != nil {
		return err
	}

	c := cache(cfg)
	defer c.Close()

	var t ticket.Ticket
	if len(args) == 1 && mode == branchname.Short() {
		// The summary isn't needed, so don't ask Jira for it.
		key, err := parseKey(args[0])
		if err != nil {
			return err
		}
		t = ticket.Ticket{Key: key}
	} else {
		client, err := newJiraClient(cfg)
		if err != nil {
			return err
		}
		t, err = newResolver(cfg, client, c, newPrompter()).resolve(ctx, argOrEmpty(args), "")
		if err != nil {
			return err
		}
	}

	name, err := branchname.Synthesize(t, mode)
	if err != nil {
		return err
	}

	candidates := []string{name}
	if c != nil {
		if recorded, err := c.Branches().Names(t.Key); err == nil {
			candidates = append(candidates, recorded...)
		}
	}
	candidates = append(candidates, t.Key.String())

	existing, found := r.FirstExisting(candidates...)
	target := name
	if found {
		target = existing
	}
	slog.Debug("checking out branch", "branch", target, "create", !found, "mode", mode.String())
	if err := r.Checkout(ctx, target, !found); err != nil {
		return err
	}
	recordBranch(c, target, t.Key)

	if IsJSON() {
		data, _ := json.MarshalIndent(branchResult{Branch: target, Key: t.Key.String(), Created: !found}, "", "  ")
		fmt.Fprintln(stdout, string(data))
		return nil
	}
	if found {
		OutputLine("Switched to branch %s", target)
	} else {
		OutputLine("Created branch %s", target)
	}
	return nil
}

func recordBranch(c *db.DB, name string, key ticket.Key) {
	if c == nil {
		return
	}
	if err := c.Branches().Record(name, key); err != nil {
		slog.Warn("failed to record branch", "branch", name, "err", err)
	}
}

func argOrEmpty(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
