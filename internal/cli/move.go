package cli

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Baarsgaard/jig/internal/jira"
	"github.com/Baarsgaard/jig/internal/prompt"
)

func init() {
	rootCmd.AddCommand(moveCmd)
}

var moveCmd = &cobra.Command{
	Use:     "move [KEY]",
	Aliases: []string{"m"},
	Short:   "Move an issue to another status",
	Long: `Move a Jira issue through one of its available workflow transitions.

Without KEY the issue comes from the current branch name, or is picked from
issue_query. With one_transition_auto_move set, an issue with a single
available transition moves without asking.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMove,
}

func runMove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	client, err := newJiraClient(cfg)
	if err != nil {
		return err
	}
	c := cache(cfg)
	defer c.Close()

	p := newPrompter()
	key, err := newResolver(cfg, client, c, p).resolveKey(ctx, argOrEmpty(args), currentBranch())
	if err != nil {
		return err
	}

	transitions, err := client.GetTransitions(ctx, key)
	if err != nil {
		return err
	}

	var tr jira.Transition
	if len(transitions) == 1 && cfg.OneTransitionAutoMove {
		tr = transitions[0]
	} else if tr, err = prompt.Choose(p, "Move to:", transitions); err != nil {
		return err
	}

	if required := tr.RequiredFields(); len(required) > 0 {
		slog.Warn("transition has required fields jig does not fill", "transition", tr.Name, "fields", strings.Join(required, ", "))
	}
	if err := client.TransitionIssue(ctx, key, tr.ID); err != nil {
		return err
	}
	OutputLine("Moved %s: %s", key, tr)
	return nil
}
