package backup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestNewManager_DefaultMaxCount(t *testing.T) {
	m := NewManager("/etc/jig/config.toml", 0)
	assert.Equal(t, DefaultMaxCount, m.maxCount)
	assert.Equal(t, "/etc/jig/config.toml.bak.2", m.backupPath(2))
}

func TestBackup_NoFile(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "config.toml"), 3)

	backupPath, err := m.Backup()
	require.NoError(t, err)
	assert.Empty(t, backupPath, "should not create backup when the file doesn't exist")
}

func TestBackup_FirstBackup(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "jira_url = \"https://a\"\n")
	m := NewManager(path, 3)

	backupPath, err := m.Backup()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml.bak.1"), backupPath)
	assert.Equal(t, "jira_url = \"https://a\"\n", readFile(t, backupPath))
}

func TestBackup_PreservesPermissions(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "secret")

	backupPath, err := NewManager(path, 3).Backup()
	require.NoError(t, err)

	info, err := os.Stat(backupPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestBackup_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "v1")
	m := NewManager(path, 3)

	for _, content := range []string{"v1", "v2", "v3", "v4"} {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		_, err := m.Backup()
		require.NoError(t, err)
	}

	backups, err := m.List()
	require.NoError(t, err)
	require.Len(t, backups, 3, "oldest backup beyond max count is dropped")
	assert.Equal(t, "v4", readFile(t, backups[0]))
	assert.Equal(t, "v3", readFile(t, backups[1]))
	assert.Equal(t, "v2", readFile(t, backups[2]))
}

func TestBackup_MaxCountOfOne(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "old")
	m := NewManager(path, 1)

	_, err := m.Backup()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("new"), 0o600))
	_, err = m.Backup()
	require.NoError(t, err)

	backups, err := m.List()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, "new", readFile(t, backups[0]))
}

func TestList_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "x")
	for _, name := range []string{"config.toml.bak.x", "other.toml.bak.1", "config.toml.bak.0"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml.bak.2"), nil, 0o600))

	backups, err := NewManager(path, 3).List()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "config.toml.bak.2")}, backups)
}
