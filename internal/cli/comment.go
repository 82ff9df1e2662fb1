package cli

import (
	"strings"

	"github.com/spf13/cobra"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
)

var commentMessage string

func init() {
	commentCmd.Flags().StringVarP(&commentMessage, "message", "m", "", "Comment text (prompted for when absent)")
	rootCmd.AddCommand(commentCmd)
}

var commentCmd = &cobra.Command{
	Use:     "comment [KEY]",
	Aliases: []string{"c"},
	Short:   "Post a comment on an issue",
	Long: `Post a plain-text comment on a Jira issue.

Without KEY the issue comes from the current branch name, or is picked from
issue_query.

Examples:
  jig comment -m "Ready for review"
  jig comment JB-1 -m "Blocked on JB-2"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runComment,
}

func runComment(cmd *cobra.Command, args []string) error {
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

	text := commentMessage
	if !cmd.Flags().Changed("message") {
		text, err = p.Input("Issue comment:", "", true)
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(text) == "" {
		return jigerrors.InvalidArgs("comment is empty")
	}

	if err := client.AddComment(ctx, key, text); err != nil {
		return err
	}
	OutputLine("Comment posted on %s", key)
	return nil
}
