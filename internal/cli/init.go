package cli

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Baarsgaard/jig/internal/backup"
	"github.com/Baarsgaard/jig/internal/config"
	jigerrors "github.com/Baarsgaard/jig/internal/errors"
	"github.com/Baarsgaard/jig/internal/jira"
)

var (
	initAll   bool
	initLocal bool
)

func init() {
	initCmd.Flags().BoolVarP(&initAll, "all", "a", false, "Also ask for every optional setting")
	initCmd.Flags().BoolVarP(&initLocal, "local", "l", false, "Write the workspace config (.jig.toml) instead of the global one")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a jig config interactively",
	Long: `Create a jig config interactively.

This command:
- Asks for the Jira URL and credentials (opening the token page in $BROWSER)
- Offers to install the commit-msg hook in the current repository
- Writes the config atomically, readable only by you

Use --all to also set queries, limits and behaviour toggles.
Use --local to write <repo root>/.jig.toml instead of the global config.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return jigerrors.WrapInternal(err, "failed to determine working directory")
	}
	path := config.GlobalPath()
	if initLocal {
		path = config.WorkspacePath(config.FindWorkspace(wd))
	}

	p := newPrompter()
	if _, err := os.Stat(path); err == nil {
		ok, err := p.Confirm(fmt.Sprintf("%s exists. Overwrite it?", path), false)
		if err != nil {
			return err
		}
		if !ok {
			return jigerrors.General("kept existing config at %s", path)
		}
	}

	cfg, err := promptConfig(p, initAll)
	if err != nil {
		return err
	}

	if ok, err := p.Confirm("Install the commit-msg hook in this repository?", true); err == nil && ok {
		if r, err := openRepo(); err != nil {
			ErrorOutput("Warning: hook not installed: %v\n%s\n", err, SuggestInstallHook)
		} else if hookPath, err := installHook(r, p, false); err != nil {
			ErrorOutput("Warning: hook not installed: %v\n%s\n", err, SuggestInstallHook)
		} else {
			OutputLine("Installed hook at %s", hookPath)
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if saved, err := backup.NewManager(path, backup.DefaultMaxCount).Backup(); err != nil {
		return err
	} else if saved != "" {
		OutputLine("Backed up previous config to %s", saved)
	}
	if err := cfg.Write(path); err != nil {
		return err
	}
	OutputLine("Wrote config: %s", path)
	return nil
}

// promptConfig asks for the settings of a new config.
func promptConfig(p prompter, all bool) (*config.Config, error) {
	cfg := config.DefaultConfig()

	raw, err := p.Input("Jira URL (scheme defaults to https):", "", true)
	if err != nil {
		return nil, err
	}
	if cfg.JiraURL, err = baseURL(raw); err != nil {
		return nil, err
	}

	if err := promptCredentials(p, cfg); err != nil {
		return nil, err
	}
	if !all {
		return cfg, nil
	}

	if cfg.IssueQuery, err = p.Input("Issue query:", cfg.IssueQuery, true); err != nil {
		return nil, err
	}
	if cfg.RetryQuery, err = p.Input("Retry query:", cfg.RetryQuery, true); err != nil {
		return nil, err
	}
	if cfg.MaxQueryResults, err = promptInt(p, "Maximum query results:", cfg.MaxQueryResults); err != nil {
		return nil, err
	}
	if cfg.JiraTimeoutSeconds, err = promptInt(p, "Request timeout (seconds):", cfg.JiraTimeoutSeconds); err != nil {
		return nil, err
	}

	toggles := []struct {
		question string
		dst      *bool
	}{
		{"Always use only the issue key as branch name?", &cfg.AlwaysShortBranchNames},
		{"Always ask for the worklog date?", &cfg.AlwaysConfirmDate},
		{"Always ask for a worklog comment?", &cfg.EnableCommentPrompts},
		{"Pick the transition automatically when there is only one?", &cfg.OneTransitionAutoMove},
		{"Hook: allow commits on branches without an issue key?", &cfg.Hooks.AllowBranchMissingIssueKey},
		{"Hook: allow commit message keys that differ from the branch key?", &cfg.Hooks.AllowBranchAndCommitMsgMismatch},
	}
	for _, tg := range toggles {
		if *tg.dst, err = p.Confirm(tg.question, *tg.dst); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// promptCredentials asks for an API token and login on Jira Cloud, or a
// Personal Access Token elsewhere, after opening the page that issues it.
func promptCredentials(p prompter, cfg *config.Config) error {
	cloud := jira.IsCloudURL(cfg.JiraURL)
	tokenPage := cfg.JiraURL + "/secure/ViewProfile.jspa"
	if cloud {
		tokenPage = "https://id.atlassian.com/manage-profile/security/api-tokens"
	}
	if err := openBrowser(tokenPage); err != nil {
		OutputLine("Create a token here: %s", tokenPage)
	}

	token, err := p.Password("Auth token:")
	if err != nil {
		return err
	}
	if !cloud {
		cfg.PATToken = token
		return nil
	}

	cfg.APIToken = token
	cfg.UserLogin, err = p.Input("Login email:", "", true)
	return err
}

// baseURL reduces raw to scheme://host[:port], defaulting the scheme to https.
func baseURL(raw string) (string, error) {
	u, err := url.Parse(jira.NormalizeURL(raw))
	if err != nil || u.Host == "" {
		return "", jigerrors.InvalidArgs("%q is not a valid URL", raw)
	}
	return u.Scheme + "://" + u.Host, nil
}

func promptInt(p prompter, title string, def int) (int, error) {
	answer, err := p.Input(title, strconv.Itoa(def), true)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || n <= 0 {
		return 0, jigerrors.InvalidArgs("%q is not a positive number", answer)
	}
	return n, nil
}
