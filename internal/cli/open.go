package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:     "open [KEY]",
	Aliases: []string{"o"},
	Short:   "Open an issue in the browser",
	Long: `Open a Jira issue in the browser named by $BROWSER, or the system default.

Without KEY the issue comes from the current branch name, or is picked from
issue_query.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOpen,
}

func runOpen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	client, err := newJiraClient(cfg)
	if err != nil {
		return err
	}
	c := cache(cfg)
	defer c.Close()

	key, err := newResolver(cfg, client, c, newPrompter()).resolveKey(ctx, argOrEmpty(args), currentBranch())
	if err != nil {
		return err
	}

	url := client.BrowseURL(key)
	if err := openBrowser(url); err != nil {
		return err
	}
	OutputLine("%s", url)
	return nil
}
