// Package config provides configuration file and environment variable support for jig.
//
// Configuration priority (highest to lowest):
//  1. Command-line flags
//  2. Environment variables (JIG_*)
//  3. Workspace config file (<repo root>/.jig.toml)
//  4. Global config file ($XDG_CONFIG_HOME/jig/config.toml)
//  5. Built-in defaults
//
// The workspace file overrides the global one key by key, so a repository can
// change a single query without repeating credentials.
package config

import (
	"bytes"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/atomic"

	"github.com/Baarsgaard/jig/internal/commitmsg"
	jigerrors "github.com/Baarsgaard/jig/internal/errors"
	"github.com/Baarsgaard/jig/internal/jira"
)

const (
	// WorkspaceFile is the name of the per-repository config file.
	WorkspaceFile = ".jig.toml"

	DefaultIssueQuery = "assignee = currentUser() ORDER BY updated DESC"
	DefaultRetryQuery = "reporter = currentUser() ORDER BY updated DESC"
)

// HooksConfig controls the commit-msg hook.
type HooksConfig struct {
	// AllowBranchMissingIssueKey lets commits through on branches without an
	// issue key. The key then comes from the message or an issue prompt.
	AllowBranchMissingIssueKey bool `toml:"allow_branch_missing_issue_key"`

	// AllowBranchAndCommitMsgMismatch keeps a message key that differs from
	// the branch key instead of rejecting the commit.
	AllowBranchAndCommitMsgMismatch bool `toml:"allow_branch_and_commit_msg_mismatch"`
}

// Config represents the jig configuration.
type Config struct {
	// JiraURL is the base URL of the Jira instance.
	JiraURL string `toml:"jira_url"`

	// Cloud selects Jira Cloud API semantics. Unset means "detect from the
	// URL" (hosts ending in atlassian.net).
	Cloud *bool `toml:"cloud,omitempty"`

	// UserLogin and APIToken authenticate with HTTP Basic. Both or neither.
	UserLogin string `toml:"user_login,omitempty"`
	APIToken  string `toml:"api_token,omitempty"`

	// PATToken is a Personal Access Token sent as a Bearer token.
	PATToken string `toml:"pat_token,omitempty"`

	// JiraTimeoutSeconds bounds each HTTP request.
	// Default: 10
	JiraTimeoutSeconds int `toml:"jira_timeout_seconds"`

	// IssueQuery is the JQL used to list issues to pick from.
	IssueQuery string `toml:"issue_query"`

	// RetryQuery is used when IssueQuery returns nothing.
	RetryQuery string `toml:"retry_query"`

	// MaxQueryResults caps the number of issues a query returns.
	// Default: 50
	MaxQueryResults int `toml:"max_query_results"`

	AlwaysShortBranchNames bool `toml:"always_short_branch_names"`

	// AlwaysConfirmDate prompts for the worklog date when --date is absent.
	// Default: true
	AlwaysConfirmDate bool `toml:"always_confirm_date"`

	EnableCommentPrompts  bool `toml:"enable_comment_prompts"`
	OneTransitionAutoMove bool `toml:"one_transition_auto_move"`

	// CachePath is the SQLite ticket cache. Empty means the default location.
	CachePath string `toml:"cache_path,omitempty"`

	NoColor bool `toml:"no_color"`

	Hooks HooksConfig `toml:"hooks"`

	// Sources lists the files that were read, lowest priority first.
	Sources []string `toml:"-"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		JiraTimeoutSeconds: 10,
		IssueQuery:         DefaultIssueQuery,
		RetryQuery:         DefaultRetryQuery,
		MaxQueryResults:    50,
		AlwaysConfirmDate:  true,
	}
}

// GlobalPath returns the global config file path.
func GlobalPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "jig", "config.toml")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "jig", "config.toml")
}

// WorkspacePath returns the workspace config file path for root.
func WorkspacePath(root string) string {
	if root == "" {
		return ""
	}
	return filepath.Join(root, WorkspaceFile)
}

// FindWorkspace returns the first directory at or above dir containing .git,
// or dir itself when there is none.
func FindWorkspace(dir string) string {
	for path := dir; ; {
		if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return dir
		}
		path = parent
	}
}

// Load loads the global config, the workspace config of the repository
// containing the working directory, and environment overrides.
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, jigerrors.WrapInternal(err, "failed to determine working directory")
	}
	return LoadFromPaths(GlobalPath(), WorkspacePath(FindWorkspace(wd)))
}

// LoadFromPaths loads the given files in order, each overriding the keys the
// previous ones set, then applies environment overrides. Missing files are
// skipped.
func LoadFromPaths(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, jigerrors.Wrap(err, jigerrors.KindInvalidArgs, "failed to parse config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, jigerrors.InvalidArgs("unknown keys in config %s: %s", path, strings.Join(keys, ", ")).
				WithSuggestion("Compare with the sample printed by: jig configs --sample")
		}
		cfg.Sources = append(cfg.Sources, path)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies environment variable overrides to the config.
func (c *Config) applyEnv() {
	strVars := map[string]*string{
		"JIG_JIRA_URL":    &c.JiraURL,
		"JIG_USER_LOGIN":  &c.UserLogin,
		"JIG_API_TOKEN":   &c.APIToken,
		"JIG_PAT_TOKEN":   &c.PATToken,
		"JIG_ISSUE_QUERY": &c.IssueQuery,
		"JIG_RETRY_QUERY": &c.RetryQuery,
		"JIG_CACHE_PATH":  &c.CachePath,
	}
	for name, dst := range strVars {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("JIG_MAX_QUERY_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxQueryResults = n
		}
	}
	if v := os.Getenv("JIG_JIRA_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.JiraTimeoutSeconds = n
		}
	}
	if v := os.Getenv("JIG_CLOUD"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Cloud = &b
		}
	}

	// JIG_NO_COLOR - any value means true
	if _, ok := os.LookupEnv("JIG_NO_COLOR"); ok {
		c.NoColor = true
	}
}

// Validate checks the values that can be checked without contacting Jira.
// Missing credentials are not an error here; RequireJira reports them when a
// command needs the client.
func (c *Config) Validate() error {
	if c.JiraURL != "" {
		u, err := url.Parse(jira.NormalizeURL(c.JiraURL))
		if err != nil || u.Host == "" {
			return jigerrors.InvalidArgs("jira_url %q is not a valid URL", c.JiraURL)
		}
	}
	if (c.UserLogin == "") != (c.APIToken == "") {
		if c.UserLogin == "" {
			return jigerrors.InvalidArgs("'user_login' missing, required with api_token")
		}
		return jigerrors.InvalidArgs("'api_token' missing, required with user_login")
	}
	if c.MaxQueryResults <= 0 {
		return jigerrors.InvalidArgs("max_query_results must be positive, got %d", c.MaxQueryResults)
	}
	if c.JiraTimeoutSeconds <= 0 {
		return jigerrors.InvalidArgs("jira_timeout_seconds must be positive, got %d", c.JiraTimeoutSeconds)
	}
	return nil
}

// RequireJira reports whether the config can build a Jira client.
func (c *Config) RequireJira() error {
	if c.JiraURL == "" {
		return jigerrors.InvalidArgs("jira_url is not configured").
			WithSuggestion("Create a config with: jig init")
	}
	if c.APIToken == "" && c.PATToken == "" {
		return jigerrors.InvalidArgs("neither api_token nor pat_token is configured").
			WithSuggestion("Create a config with: jig init")
	}
	return nil
}

// IsCloud reports whether Jira Cloud semantics apply.
func (c *Config) IsCloud() bool {
	if c.Cloud != nil {
		return *c.Cloud
	}
	return jira.IsCloudURL(c.JiraURL)
}

// JiraConfig converts the config into Jira client settings.
func (c *Config) JiraConfig() jira.Config {
	cfg := jira.DefaultConfig()
	cfg.URL = c.JiraURL
	cfg.Cloud = c.IsCloud()
	cfg.Login = c.UserLogin
	cfg.APIToken = c.APIToken
	cfg.PAT = c.PATToken
	cfg.MaxResults = c.MaxQueryResults
	cfg.Timeout = time.Duration(c.JiraTimeoutSeconds) * time.Second
	return cfg
}

// Policy returns the commit-msg hook policy.
func (c *Config) Policy() commitmsg.Policy {
	return commitmsg.Policy{
		AllowBranchMissingKey: c.Hooks.AllowBranchMissingIssueKey,
		AllowKeyMismatch:      c.Hooks.AllowBranchAndCommitMsgMismatch,
	}
}

// Encode renders the config as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, jigerrors.WrapInternal(err, "failed to encode config")
	}
	return buf.Bytes(), nil
}

// Write writes the config to path atomically, creating parent directories.
// The file is readable only by the owner since it may hold tokens.
func (c *Config) Write(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return jigerrors.WrapInternal(err, "failed to create config directory")
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return jigerrors.WrapInternal(err, "failed to write config %s", path)
	}
	if err := os.Chmod(path, 0600); err != nil {
		return jigerrors.WrapInternal(err, "failed to restrict config permissions")
	}
	return nil
}

// Location describes a config file candidate.
type Location struct {
	Name   string
	Path   string
	Exists bool
}

// Locations returns the global and workspace config file candidates for the
// workspace containing dir.
func Locations(dir string) []Location {
	locs := []Location{
		{Name: "global", Path: GlobalPath()},
		{Name: "workspace", Path: WorkspacePath(FindWorkspace(dir))},
	}
	for i := range locs {
		if locs[i].Path == "" {
			continue
		}
		_, err := os.Stat(locs[i].Path)
		locs[i].Exists = err == nil
	}
	return locs
}

// EnvVars returns the names of the supported environment variables, sorted.
func EnvVars() []string {
	vars := []string{
		"JIG_JIRA_URL", "JIG_USER_LOGIN", "JIG_API_TOKEN", "JIG_PAT_TOKEN",
		"JIG_ISSUE_QUERY", "JIG_RETRY_QUERY", "JIG_CACHE_PATH",
		"JIG_MAX_QUERY_RESULTS", "JIG_JIRA_TIMEOUT_SECONDS", "JIG_CLOUD",
		"JIG_NO_COLOR", "JIG_LOG_LEVEL",
	}
	sort.Strings(vars)
	return vars
}

// SampleConfig returns a sample configuration file content.
func SampleConfig() string {
	return `# jig configuration file
# Global:    $XDG_CONFIG_HOME/jig/config.toml
# Workspace: <repository root>/.jig.toml (overrides global key by key)
#
# Configuration priority (highest to lowest):
#   1. Command-line flags
#   2. Environment variables (JIG_*)
#   3. Workspace config file
#   4. Global config file
#   5. Built-in defaults

# Jira base URL
# Environment: JIG_JIRA_URL
jira_url = "https://your-domain.atlassian.net"

# Jira Cloud API semantics. Detected from the URL when unset.
# Environment: JIG_CLOUD
# cloud = true

# API token authentication (Basic). Both or neither.
# Environment: JIG_USER_LOGIN, JIG_API_TOKEN
# user_login = "you@example.com"
# api_token = "..."

# Personal Access Token authentication (Bearer). Wins over api_token.
# Environment: JIG_PAT_TOKEN
# pat_token = "..."

# Seconds to wait for Jira to respond
# Default: 10
# jira_timeout_seconds = 10

# JQL used to list issues to pick from, and the fallback when it finds nothing
# issue_query = "assignee = currentUser() ORDER BY updated DESC"
# retry_query = "reporter = currentUser() ORDER BY updated DESC"

# Maximum issues returned by a query
# Default: 50
# max_query_results = 50

# Use only the issue key as branch name. Invert with 'branch --short'.
# always_short_branch_names = false

# Prompt for the worklog date when --date is not given
# always_confirm_date = true

# Prompt for a worklog comment when -c is not given
# enable_comment_prompts = false

# Pick the transition automatically when only one is available
# one_transition_auto_move = false

# SQLite ticket cache. Default: $XDG_CACHE_HOME/jig/cache.db
# cache_path = "/path/to/cache.db"

# Disable colored output
# Environment: JIG_NO_COLOR (any value = true), NO_COLOR
# no_color = false

[hooks]
# Allow commits on branches without an issue key
# allow_branch_missing_issue_key = false

# Keep a commit message key that differs from the branch key
# allow_branch_and_commit_msg_mismatch = false
`
}
