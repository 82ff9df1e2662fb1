package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Baarsgaard/jig/internal/common"
	"github.com/Baarsgaard/jig/internal/jira"
)

var (
	worklogComment       string
	worklogPromptComment bool
	worklogDate          bool
)

// now is replaced in tests.
var now = time.Now

func init() {
	worklogCmd.Flags().StringVarP(&worklogComment, "comment", "c", "", "Worklog comment; -c \"\" skips enable_comment_prompts")
	worklogCmd.Flags().BoolVarP(&worklogPromptComment, "prompt-comment", "p", false, "Prompt for the worklog comment")
	worklogCmd.Flags().BoolVarP(&worklogDate, "date", "d", false, "Ask for the date (inverts always_confirm_date)")
	rootCmd.AddCommand(worklogCmd)
}

var worklogCmd = &cobra.Command{
	Use:     "log DURATION [KEY]",
	Aliases: []string{"l"},
	Short:   "Log work on an issue",
	Long: `Log time spent on a Jira issue.

DURATION is a number with an optional unit: m (minutes, the default), h, d
(8 hours) or w (5 days). Decimals are allowed: 1.5h, 0.5d.

Without KEY the issue comes from the current branch name, or is picked from
issue_query.

Examples:
  jig log 30            # 30 minutes on the branch's issue
  jig log 1.5h JB-1
  jig log 2h -c "Pairing on the parser"
  jig log 1d --date     # ask which day`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runWorklog,
}

func runWorklog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	seconds, err := jira.ParseDuration(args[0])
	if err != nil {
		return err
	}

	client, err := newJiraClient(cfg)
	if err != nil {
		return err
	}
	c := cache(cfg)
	defer c.Close()

	p := newPrompter()
	var keyArg string
	if len(args) == 2 {
		keyArg = args[1]
	}
	key, err := newResolver(cfg, client, c, p).resolveKey(ctx, keyArg, currentBranch())
	if err != nil {
		return err
	}

	comment := worklogComment
	if worklogPromptComment || (!cmd.Flags().Changed("comment") && cfg.EnableCommentPrompts) {
		comment, err = p.Input("Worklog comment:", worklogComment, false)
		if err != nil {
			return err
		}
	}

	started := now()
	if worklogDate != cfg.AlwaysConfirmDate {
		answer, err := p.Input("Worklog date (today, yesterday, -N, YYYY-MM-DD):", started.Format(common.DayLayout), false)
		if err != nil {
			return err
		}
		if started, err = common.ParseDay(answer, started); err != nil {
			return err
		}
	}

	wl := jira.Worklog{
		Comment:          comment,
		Started:          jira.FormatTime(started),
		TimeSpentSeconds: seconds,
	}
	if err := client.AddWorklog(ctx, key, wl); err != nil {
		return err
	}
	OutputLine("Logged %s on %s (%s)", args[0], key, started.Format(common.DayLayout))
	return nil
}
