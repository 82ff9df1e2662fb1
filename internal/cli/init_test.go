package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Baarsgaard/jig/internal/config"
	jigerrors "github.com/Baarsgaard/jig/internal/errors"
)

func TestBaseURL(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"jira.example.com", "https://jira.example.com", false},
		{"https://jira.example.com/", "https://jira.example.com", false},
		{"http://localhost:8080/secure/Dashboard.jspa", "http://localhost:8080", false},
		{"  acme.atlassian.net  ", "https://acme.atlassian.net", false},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := baseURL(tt.raw)
			if tt.wantErr {
				assert.True(t, jigerrors.Is(err, jigerrors.KindInvalidArgs))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPromptConfig(t *testing.T) {
	t.Run("server uses a personal access token", func(t *testing.T) {
		e := newTestEnv(t)
		e.prompt.inputs = []string{"jira.example.com/"}
		e.prompt.passwords = []string{"pat-123"}

		cfg, err := promptConfig(e.prompt, false)
		require.NoError(t, err)
		assert.Equal(t, "https://jira.example.com", cfg.JiraURL)
		assert.Equal(t, "pat-123", cfg.PATToken)
		assert.Empty(t, cfg.APIToken)
		assert.Equal(t, []string{"https://jira.example.com/secure/ViewProfile.jspa"}, e.opened)
	})

	t.Run("cloud uses api token and login", func(t *testing.T) {
		e := newTestEnv(t)
		e.prompt.inputs = []string{"acme.atlassian.net", "me@acme.com"}
		e.prompt.passwords = []string{"tok"}

		cfg, err := promptConfig(e.prompt, false)
		require.NoError(t, err)
		assert.Equal(t, "tok", cfg.APIToken)
		assert.Equal(t, "me@acme.com", cfg.UserLogin)
		assert.Empty(t, cfg.PATToken)
		require.NoError(t, cfg.Validate())
	})

	t.Run("all settings", func(t *testing.T) {
		e := newTestEnv(t)
		e.prompt.inputs = []string{"jira.example.com", "project = JB", "reporter = currentUser()", "20", "5"}
		e.prompt.passwords = []string{"pat"}
		e.prompt.confirms = []bool{true, false, true, true, true, false}

		cfg, err := promptConfig(e.prompt, true)
		require.NoError(t, err)
		assert.Equal(t, "project = JB", cfg.IssueQuery)
		assert.Equal(t, 20, cfg.MaxQueryResults)
		assert.Equal(t, 5, cfg.JiraTimeoutSeconds)
		assert.True(t, cfg.AlwaysShortBranchNames)
		assert.False(t, cfg.AlwaysConfirmDate)
		assert.True(t, cfg.OneTransitionAutoMove)
		assert.True(t, cfg.Hooks.AllowBranchMissingIssueKey)
		assert.False(t, cfg.Hooks.AllowBranchAndCommitMsgMismatch)
	})

	t.Run("rejects a non-numeric limit", func(t *testing.T) {
		e := newTestEnv(t)
		e.prompt.inputs = []string{"jira.example.com", "q", "r", "lots"}
		e.prompt.passwords = []string{"pat"}

		_, err := promptConfig(e.prompt, true)
		assert.True(t, jigerrors.Is(err, jigerrors.KindInvalidArgs))
	})
}

func TestInitCmd(t *testing.T) {
	e := newTestEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	e.prompt.inputs = []string{"jira.example.com"}
	e.prompt.passwords = []string{"pat-123"}
	e.prompt.confirms = []bool{false}

	out, err := e.run("init")
	require.NoError(t, err)

	path := config.GlobalPath()
	assert.Equal(t, filepath.Join(filepath.Dir(path), "config.toml"), path)
	assert.Contains(t, out, "Wrote config: "+path)

	cfg, err := config.LoadFromPaths(path)
	require.NoError(t, err)
	assert.Equal(t, "https://jira.example.com", cfg.JiraURL)
	assert.Equal(t, "pat-123", cfg.PATToken)

	t.Run("existing config kept when declined", func(t *testing.T) {
		e.prompt.confirms = []bool{false}
		_, err := e.run("init")
		require.Error(t, err)
		assert.Empty(t, e.prompt.confirms)
	})

	t.Run("overwrite backs up the previous config", func(t *testing.T) {
		e.prompt.confirms = []bool{true, false}
		e.prompt.inputs = []string{"other.example.com"}
		e.prompt.passwords = []string{"pat-456"}

		out, err := e.run("init")
		require.NoError(t, err)
		assert.Contains(t, out, "Backed up previous config to "+path+".bak.1")

		old, err := config.LoadFromPaths(path + ".bak.1")
		require.NoError(t, err)
		assert.Equal(t, "https://jira.example.com", old.JiraURL)

		cfg, err := config.LoadFromPaths(path)
		require.NoError(t, err)
		assert.Equal(t, "https://other.example.com", cfg.JiraURL)
	})
}

func TestInitCmd_InstallsHook(t *testing.T) {
	e := newTestEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	exe := fakeExecutable(t)
	e.prompt.inputs = []string{"jira.example.com"}
	e.prompt.passwords = []string{"pat-123"}
	e.prompt.confirms = []bool{true}

	out, err := e.run("init")
	require.NoError(t, err)
	assert.Equal(t, exe, e.repo.hooks["commit-msg"])
	assert.Contains(t, out, "Installed hook at")
}
