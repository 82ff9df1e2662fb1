package cli

import (
	"github.com/spf13/cobra"

	"github.com/Baarsgaard/jig/internal/jira"
	"github.com/Baarsgaard/jig/internal/prompt"
)

func init() {
	rootCmd.AddCommand(assignCmd)
}

var assignCmd = &cobra.Command{
	Use:     "assign [KEY] [USER]",
	Aliases: []string{"a"},
	Short:   "Assign an issue to a user",
	Long: `Assign a Jira issue to one of its assignable users.

USER narrows the search by login, name or email. Without KEY the issue comes
from the current branch name, or is picked from issue_query.

Examples:
  jig assign              # pick the user for the branch's issue
  jig assign JB-1 alice`,
	Args: cobra.MaximumNArgs(2),
	RunE: runAssign,
}

func runAssign(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	client, err := newJiraClient(cfg)
	if err != nil {
		return err
	}
	c := cache(cfg)
	defer c.Close()

	var query string
	if len(args) == 2 {
		query = args[1]
	}

	p := newPrompter()
	key, err := newResolver(cfg, client, c, p).resolveKey(ctx, argOrEmpty(args), currentBranch())
	if err != nil {
		return err
	}

	users, err := client.AssignableUsers(ctx, key, query)
	if err != nil {
		return err
	}

	var user jira.User
	if len(users) == 1 && query != "" {
		user = users[0]
	} else if user, err = prompt.Choose(p, "Assign to:", users); err != nil {
		return err
	}

	if err := client.AssignIssue(ctx, key, user); err != nil {
		return err
	}
	OutputLine("Assigned %s to %s", key, user.DisplayName)
	return nil
}
