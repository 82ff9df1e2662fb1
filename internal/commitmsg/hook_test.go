package commitmsg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBranch struct {
	name string
	err  error
}

func (f fakeBranch) CurrentBranch() (string, error) {
	return f.name, f.err
}

func writeMsg(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "COMMIT_EDITMSG")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readMsg(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestHookRun_RewritesFile(t *testing.T) {
	path := writeMsg(t, "fix the thing\n")
	hook := NewHook(NewValidator(Policy{}, nil), fakeBranch{name: "AB-42-fix-thing"}, nil)

	require.NoError(t, hook.Run(context.Background(), path))
	assert.Equal(t, "AB-42 Fix the thing\n", readMsg(t, path))
}

func TestHookRun_UnchangedFile(t *testing.T) {
	path := writeMsg(t, "AB-42 Fix the thing\n")
	before, err := os.Stat(path)
	require.NoError(t, err)

	hook := NewHook(NewValidator(Policy{}, nil), fakeBranch{name: "AB-42-fix-thing"}, nil)
	require.NoError(t, hook.Run(context.Background(), path))

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, os.SameFile(before, after), "file should not be replaced")
	assert.Equal(t, "AB-42 Fix the thing\n", readMsg(t, path))
}

func TestHookRun_RejectionLeavesFile(t *testing.T) {
	path := writeMsg(t, "AB-99 did something\n")
	hook := NewHook(NewValidator(Policy{}, nil), fakeBranch{name: "AB-42-fix-thing"}, nil)

	err := hook.Run(context.Background(), path)
	require.Error(t, err)
	assert.True(t, jigerrors.Is(err, jigerrors.KindKeyMismatch))
	assert.Equal(t, "AB-99 did something\n", readMsg(t, path))
}

func TestHookRun_BranchError(t *testing.T) {
	path := writeMsg(t, "fix\n")
	hook := NewHook(NewValidator(Policy{}, nil), fakeBranch{err: errors.New("not a git repository")}, nil)

	err := hook.Run(context.Background(), path)
	require.Error(t, err)
	assert.True(t, jigerrors.Is(err, jigerrors.KindBranchState))
}

func TestHookRun_MissingFile(t *testing.T) {
	hook := NewHook(NewValidator(Policy{}, nil), fakeBranch{name: "AB-1"}, nil)

	err := hook.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, jigerrors.Is(err, jigerrors.KindInternal))
}
