package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
	"github.com/Baarsgaard/jig/internal/jira"
	"github.com/Baarsgaard/jig/internal/ticket"
)

func TestBranchCmd(t *testing.T) {
	t.Run("creates branch named after the summary", func(t *testing.T) {
		e := newTestEnv(t)
		e.jira.issues["JB-1"] = ticket.Ticket{Key: "JB-1", Summary: "Example summary"}

		out, err := e.run("branch", "JB-1")
		require.NoError(t, err)
		assert.Equal(t, "Created branch JB-1_Example_summary\n", out)
		assert.Equal(t, "JB-1_Example_summary", e.repo.checkedOut)
		assert.True(t, e.repo.created)

		names, err := e.openCache().Branches().Names("JB-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"JB-1_Example_summary"}, names)
	})

	t.Run("switches to an existing branch for the key", func(t *testing.T) {
		e := newTestEnv(t)
		e.jira.issues["JB-1"] = ticket.Ticket{Key: "JB-1", Summary: "Example summary"}
		e.repo.branches["JB-1"] = true

		out, err := e.run("branch", "JB-1")
		require.NoError(t, err)
		assert.Equal(t, "Switched to branch JB-1\n", out)
		assert.Equal(t, "JB-1", e.repo.checkedOut)
		assert.False(t, e.repo.created)
	})

	t.Run("switches to a recorded branch", func(t *testing.T) {
		e := newTestEnv(t)
		e.jira.issues["JB-1"] = ticket.Ticket{Key: "JB-1", Summary: "Renamed since"}
		require.NoError(t, e.openCache().Branches().Record("JB-1_Old_summary", "JB-1"))
		e.repo.branches["JB-1_Old_summary"] = true

		_, err := e.run("branch", "JB-1")
		require.NoError(t, err)
		assert.Equal(t, "JB-1_Old_summary", e.repo.checkedOut)
	})

	t.Run("short mode skips jira", func(t *testing.T) {
		e := newTestEnv(t)

		_, err := e.run("branch", "jb-1", "--short")
		require.NoError(t, err)
		assert.Equal(t, "JB-1", e.repo.checkedOut)
		assert.Zero(t, e.jira.getCalls)
	})

	t.Run("name and append", func(t *testing.T) {
		e := newTestEnv(t)
		e.jira.issues["JB-1"] = ticket.Ticket{Key: "JB-1", Summary: "Example summary"}

		_, err := e.run("branch", "JB-1", "-n", "spike")
		require.NoError(t, err)
		assert.Equal(t, "JB-1_spike", e.repo.checkedOut)

		_, err = e.run("branch", "JB-1", "-a", "_v2")
		require.NoError(t, err)
		assert.Equal(t, "JB-1_Example_summary_v2", e.repo.checkedOut)
	})

	t.Run("conflicting flags", func(t *testing.T) {
		e := newTestEnv(t)
		_, err := e.run("branch", "JB-1", "--short", "--name", "x")
		assert.True(t, jigerrors.Is(err, jigerrors.KindUsageConflict))
		assert.Equal(t, 2, ExitCode(err))
		assert.Empty(t, e.repo.checkedOut)
	})

	t.Run("picks from the issue query", func(t *testing.T) {
		e := newTestEnv(t)
		e.jira.search[e.cfg.IssueQuery] = tickets("JB-1", "First", "JB-2", "Second one")
		e.prompt.selections = []int{1}

		_, err := e.run("branch")
		require.NoError(t, err)
		assert.Equal(t, "JB-2_Second_one", e.repo.checkedOut)
	})

	t.Run("json", func(t *testing.T) {
		e := newTestEnv(t)
		e.jira.issues["JB-1"] = ticket.Ticket{Key: "JB-1", Summary: "Example summary"}

		out, err := e.run("branch", "JB-1", "--json")
		require.NoError(t, err)

		var got branchResult
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, branchResult{Branch: "JB-1_Example_summary", Key: "JB-1", Created: true}, got)
	})
}

func TestCommentCmd(t *testing.T) {
	t.Run("message flag", func(t *testing.T) {
		e := newTestEnv(t)
		e.repo.branch = "JB-7_Fix_parser"

		out, err := e.run("comment", "-m", "Ready for review")
		require.NoError(t, err)
		assert.Equal(t, "Comment posted on JB-7\n", out)
		assert.Equal(t, ticket.Key("JB-7"), e.jira.commentKey)
		assert.Equal(t, "Ready for review", e.jira.comment)
	})

	t.Run("prompted", func(t *testing.T) {
		e := newTestEnv(t)
		e.prompt.inputs = []string{"Typed comment"}

		_, err := e.run("c", "JB-2")
		require.NoError(t, err)
		assert.Equal(t, ticket.Key("JB-2"), e.jira.commentKey)
		assert.Equal(t, "Typed comment", e.jira.comment)
	})

	t.Run("empty comment", func(t *testing.T) {
		e := newTestEnv(t)
		_, err := e.run("comment", "JB-2", "-m", "  ")
		assert.True(t, jigerrors.Is(err, jigerrors.KindInvalidArgs))
		assert.Empty(t, e.jira.comment)
	})
}

func TestWorklogCmd(t *testing.T) {
	t.Run("branch issue today", func(t *testing.T) {
		e := newTestEnv(t)
		e.repo.branch = "JB-3_Parser"

		out, err := e.run("log", "1.5h")
		require.NoError(t, err)
		assert.Equal(t, "Logged 1.5h on JB-3 (2026-03-12)\n", out)
		require.NotNil(t, e.jira.worklog)
		assert.Equal(t, ticket.Key("JB-3"), e.jira.worklogKey)
		assert.Equal(t, jira.Worklog{
			Started:          jira.FormatTime(testNow),
			TimeSpentSeconds: 5400,
		}, *e.jira.worklog)
	})

	t.Run("comment and date", func(t *testing.T) {
		e := newTestEnv(t)
		e.prompt.inputs = []string{"yesterday"}

		out, err := e.run("log", "30", "JB-4", "-c", "Pairing", "--date")
		require.NoError(t, err)
		assert.Equal(t, "Logged 30 on JB-4 (2026-03-11)\n", out)
		assert.Equal(t, "Pairing", e.jira.worklog.Comment)
		assert.Equal(t, jira.FormatTime(testNow.AddDate(0, 0, -1)), e.jira.worklog.Started)
		assert.EqualValues(t, 1800, e.jira.worklog.TimeSpentSeconds)
	})

	t.Run("comment prompts enabled", func(t *testing.T) {
		e := newTestEnv(t)
		e.cfg.EnableCommentPrompts = true
		e.prompt.inputs = []string{"Prompted"}

		_, err := e.run("log", "1h", "JB-4")
		require.NoError(t, err)
		assert.Equal(t, "Prompted", e.jira.worklog.Comment)
	})

	t.Run("empty comment flag skips prompt", func(t *testing.T) {
		e := newTestEnv(t)
		e.cfg.EnableCommentPrompts = true

		_, err := e.run("log", "1h", "JB-4", "-c", "")
		require.NoError(t, err)
		assert.Empty(t, e.jira.worklog.Comment)
	})

	t.Run("future date", func(t *testing.T) {
		e := newTestEnv(t)
		e.prompt.inputs = []string{"2026-03-13"}

		_, err := e.run("log", "1h", "JB-4", "-d")
		assert.True(t, jigerrors.Is(err, jigerrors.KindInvalidArgs))
		assert.Nil(t, e.jira.worklog)
	})

	t.Run("malformed duration", func(t *testing.T) {
		e := newTestEnv(t)
		_, err := e.run("log", "soon", "JB-4")
		assert.True(t, jigerrors.Is(err, jigerrors.KindInvalidArgs))
	})
}

func TestMoveCmd(t *testing.T) {
	transitions := []jira.Transition{
		{ID: "11", Name: "Start", To: &jira.Status{Name: "In Progress"}},
		{ID: "21", Name: "Done"},
	}

	t.Run("prompted", func(t *testing.T) {
		e := newTestEnv(t)
		e.jira.transitions = transitions
		e.prompt.selections = []int{0}

		out, err := e.run("move", "JB-5")
		require.NoError(t, err)
		assert.Equal(t, "11", e.jira.transitioned)
		assert.Equal(t, "Moved JB-5: Start → In Progress\n", out)
		assert.Equal(t, []string{"Start → In Progress", "Done"}, e.prompt.options[0])
	})

	t.Run("single transition moves automatically", func(t *testing.T) {
		e := newTestEnv(t)
		e.cfg.OneTransitionAutoMove = true
		e.jira.transitions = transitions[1:]

		_, err := e.run("m", "JB-5")
		require.NoError(t, err)
		assert.Equal(t, "21", e.jira.transitioned)
		assert.Empty(t, e.prompt.titles)
	})

	t.Run("single transition still asks without auto move", func(t *testing.T) {
		e := newTestEnv(t)
		e.jira.transitions = transitions[1:]
		e.prompt.selections = []int{0}

		_, err := e.run("move", "JB-5")
		require.NoError(t, err)
		assert.Equal(t, []string{"Move to:"}, e.prompt.titles)
	})
}

func TestAssignCmd(t *testing.T) {
	alice := jira.User{Name: "alice", DisplayName: "Alice", Active: true}
	bob := jira.User{Name: "bob", DisplayName: "Bob", Active: true}

	t.Run("single match is assigned directly", func(t *testing.T) {
		e := newTestEnv(t)
		e.jira.users = []jira.User{alice}

		out, err := e.run("assign", "JB-6", "ali")
		require.NoError(t, err)
		assert.Equal(t, "ali", e.jira.usersQuery)
		assert.Equal(t, &alice, e.jira.assigned)
		assert.Equal(t, "Assigned JB-6 to Alice\n", out)
	})

	t.Run("several matches are prompted", func(t *testing.T) {
		e := newTestEnv(t)
		e.jira.users = []jira.User{alice, bob}
		e.prompt.selections = []int{1}

		_, err := e.run("assign", "JB-6")
		require.NoError(t, err)
		assert.Equal(t, &bob, e.jira.assigned)
	})
}

func TestOpenCmd(t *testing.T) {
	e := newTestEnv(t)
	e.repo.branch = "JB-8_Docs"

	out, err := e.run("open")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://jira.example.com/browse/JB-8"}, e.opened)
	assert.Equal(t, "https://jira.example.com/browse/JB-8\n", out)
}

func TestConfigsCmd_Sample(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.run("configs", "--sample")
	require.NoError(t, err)
	assert.Contains(t, out, "jira_url")
	assert.Contains(t, out, "[hooks]")
}

func TestVersionCmd(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.run("version", "--json")
	require.NoError(t, err)

	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, Version, info.Version)
	assert.Empty(t, info.Cache, "the cache does not exist yet")

	e.openCache()
	out, err = e.run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache: "+e.cfg.CachePath+" (schema v1)")
}

func TestCacheCmd(t *testing.T) {
	t.Run("prune forgets deleted branches", func(t *testing.T) {
		e := newTestEnv(t)
		c := e.openCache()
		require.NoError(t, c.Branches().Record("JB-1_Gone", "JB-1"))
		require.NoError(t, c.Branches().Record("master", "JB-2"))

		out, err := e.run("cache", "prune", "--dry-run")
		require.NoError(t, err)
		assert.Contains(t, out, "Would remove 1 branch record(s)")

		all, err := c.Branches().All()
		require.NoError(t, err)
		assert.Len(t, all, 2)

		out, err = e.run("cache", "prune")
		require.NoError(t, err)
		assert.Contains(t, out, "Removed 1 branch record(s)")

		all, err = c.Branches().All()
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "master", all[0].Name)
	})

	t.Run("clear deletes the file", func(t *testing.T) {
		e := newTestEnv(t)
		require.NoError(t, e.openCache().Close())

		out, err := e.run("cache", "clear")
		require.NoError(t, err)
		assert.Equal(t, "Deleted "+e.cfg.CachePath+"\n", out)

		_, err = e.run("cache", "clear")
		assert.True(t, jigerrors.Is(err, jigerrors.KindNotFound))
	})
}
