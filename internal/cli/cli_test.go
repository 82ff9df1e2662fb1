package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/Baarsgaard/jig/internal/config"
	"github.com/Baarsgaard/jig/internal/db"
	jigerrors "github.com/Baarsgaard/jig/internal/errors"
	"github.com/Baarsgaard/jig/internal/jira"
	"github.com/Baarsgaard/jig/internal/prompt"
	"github.com/Baarsgaard/jig/internal/repo"
	"github.com/Baarsgaard/jig/internal/ticket"
)

// fakeJira records what the commands send and answers from canned data.
type fakeJira struct {
	issues    map[ticket.Key]ticket.Ticket
	getErr    error
	getCalls  int
	search    map[string][]ticket.Ticket
	searchErr map[string]error
	searched  []string

	transitions  []jira.Transition
	transitioned string

	commentKey ticket.Key
	comment    string

	worklogKey ticket.Key
	worklog    *jira.Worklog

	users      []jira.User
	usersQuery string
	assigned   *jira.User
}

func (f *fakeJira) SearchIssues(_ context.Context, jql string) ([]ticket.Ticket, error) {
	f.searched = append(f.searched, jql)
	if err := f.searchErr[jql]; err != nil {
		return nil, err
	}
	return f.search[jql], nil
}

func (f *fakeJira) GetIssue(_ context.Context, key ticket.Key) (ticket.Ticket, error) {
	f.getCalls++
	if f.getErr != nil {
		return ticket.Ticket{}, f.getErr
	}
	t, ok := f.issues[key]
	if !ok {
		return ticket.Ticket{}, jigerrors.NotFound("issue %s not found", key)
	}
	return t, nil
}

func (f *fakeJira) GetTransitions(_ context.Context, _ ticket.Key) ([]jira.Transition, error) {
	return f.transitions, nil
}

func (f *fakeJira) TransitionIssue(_ context.Context, _ ticket.Key, transitionID string) error {
	f.transitioned = transitionID
	return nil
}

func (f *fakeJira) AddComment(_ context.Context, key ticket.Key, text string) error {
	f.commentKey, f.comment = key, text
	return nil
}

func (f *fakeJira) AddWorklog(_ context.Context, key ticket.Key, wl jira.Worklog) error {
	f.worklogKey, f.worklog = key, &wl
	return nil
}

func (f *fakeJira) AssignableUsers(_ context.Context, _ ticket.Key, query string) ([]jira.User, error) {
	f.usersQuery = query
	return f.users, nil
}

func (f *fakeJira) AssignIssue(_ context.Context, _ ticket.Key, u jira.User) error {
	f.assigned = &u
	return nil
}

func (f *fakeJira) BrowseURL(key ticket.Key) string {
	return "https://jira.example.com/browse/" + key.String()
}

// fakeRepo is a repository with an in-memory branch list and hooks directory.
type fakeRepo struct {
	branch   string
	branches map[string]bool

	checkedOut string
	created    bool

	hooksDir string
	hooks    map[string]string
}

func (f *fakeRepo) CurrentBranch() (string, error) {
	return f.branch, nil
}

func (f *fakeRepo) FirstExisting(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if f.branches[c] {
			return c, true
		}
	}
	return "", false
}

func (f *fakeRepo) LocalBranches() ([]string, error) {
	names := make([]string, 0, len(f.branches))
	for name := range f.branches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeRepo) Checkout(_ context.Context, name string, create bool) error {
	f.checkedOut, f.created = name, create
	return nil
}

func (f *fakeRepo) HooksPath() (string, error) {
	return f.hooksDir, nil
}

func (f *fakeRepo) InstallHook(name, target string, overwrite bool) (string, error) {
	path := filepath.Join(f.hooksDir, name)
	if current, ok := f.hooks[name]; ok && current != target && !overwrite {
		return path, jigerrors.Wrap(repo.ErrHookExists, jigerrors.KindInvalidArgs, "%s already exists", path)
	}
	f.hooks[name] = target
	return path, nil
}

// fakePrompter answers prompts from scripted queues and fails when a queue
// runs dry, so unexpected prompts show up as errors.
type fakePrompter struct {
	selections []int
	inputs     []string
	passwords  []string
	confirms   []bool

	titles  []string
	options [][]string
}

func (f *fakePrompter) Select(title string, options []string) (int, error) {
	f.titles = append(f.titles, title)
	f.options = append(f.options, options)
	if len(f.selections) == 0 {
		return 0, jigerrors.General("unexpected select %q", title)
	}
	i := f.selections[0]
	f.selections = f.selections[1:]
	return i, nil
}

func (f *fakePrompter) Input(title, _ string, _ bool) (string, error) {
	f.titles = append(f.titles, title)
	if len(f.inputs) == 0 {
		return "", jigerrors.General("unexpected input %q", title)
	}
	s := f.inputs[0]
	f.inputs = f.inputs[1:]
	return s, nil
}

func (f *fakePrompter) Password(title string) (string, error) {
	f.titles = append(f.titles, title)
	if len(f.passwords) == 0 {
		return "", jigerrors.General("unexpected password %q", title)
	}
	s := f.passwords[0]
	f.passwords = f.passwords[1:]
	return s, nil
}

func (f *fakePrompter) Confirm(question string, _ bool) (bool, error) {
	f.titles = append(f.titles, question)
	if len(f.confirms) == 0 {
		return false, jigerrors.General("unexpected confirm %q", question)
	}
	b := f.confirms[0]
	f.confirms = f.confirms[1:]
	return b, nil
}

// testEnv replaces every factory the commands use with fakes and restores
// them when the test ends.
type testEnv struct {
	t      *testing.T
	cfg    *config.Config
	jira   *fakeJira
	repo   *fakeRepo
	prompt *fakePrompter
	opened []string
	out    *bytes.Buffer
}

var testNow = time.Date(2026, 3, 12, 14, 30, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.JiraURL = "https://jira.example.com"
	cfg.PATToken = "secret"
	cfg.AlwaysConfirmDate = false
	cfg.CachePath = filepath.Join(dir, "cache.db")

	e := &testEnv{
		t:   t,
		cfg: cfg,
		jira: &fakeJira{
			issues:    map[ticket.Key]ticket.Ticket{},
			search:    map[string][]ticket.Ticket{},
			searchErr: map[string]error{},
		},
		repo: &fakeRepo{
			branch:   "master",
			branches: map[string]bool{"master": true},
			hooksDir: filepath.Join(dir, "hooks"),
			hooks:    map[string]string{},
		},
		prompt: &fakePrompter{},
		out:    new(bytes.Buffer),
	}

	origLoad, origJira, origRepo, origPrompt := loadConfig, newJiraClient, openRepo, newPrompter
	origHookPrompt, origBrowser, origNow, origOut := hookPrompter, openBrowser, now, stdout
	t.Cleanup(func() {
		loadConfig, newJiraClient, openRepo, newPrompter = origLoad, origJira, origRepo, origPrompt
		hookPrompter, openBrowser, now, stdout = origHookPrompt, origBrowser, origNow, origOut
		globalConfig = nil
		resetFlags(rootCmd)
	})

	loadConfig = func() (*config.Config, error) { return e.cfg, nil }
	newJiraClient = func(*config.Config) (jiraAPI, error) { return e.jira, nil }
	openRepo = func() (gitRepo, error) { return e.repo, nil }
	newPrompter = func() prompter { return e.prompt }
	hookPrompter = func() prompt.Selector { return e.prompt }
	openBrowser = func(url string) error {
		e.opened = append(e.opened, url)
		return nil
	}
	now = func() time.Time { return testNow }
	stdout = e.out

	return e
}

// run executes the root command with args and returns what it printed.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	resetFlags(rootCmd)
	globalConfig = nil
	e.out.Reset()

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return e.out.String(), err
}

// openCache opens the cache the commands wrote to.
func (e *testEnv) openCache() *db.DB {
	e.t.Helper()
	d, err := db.Open(e.cfg.CachePath)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { d.Close() })
	return d
}

// resetFlags puts every flag back to its default, since cobra keeps flag
// values between executions of the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func tickets(pairs ...string) []ticket.Ticket {
	out := make([]ticket.Ticket, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, ticket.Ticket{Key: ticket.Key(pairs[i]), Summary: pairs[i+1]})
	}
	return out
}
