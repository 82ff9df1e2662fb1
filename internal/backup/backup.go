// Package backup keeps rotating copies of files jig is about to overwrite.
//
// Backups sit next to the original and are named <file>.bak.1, <file>.bak.2,
// and so on, where 1 is the most recent.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
)

// DefaultMaxCount is how many backups of a file are kept.
const DefaultMaxCount = 3

// Manager handles backups of a single file.
type Manager struct {
	path     string
	prefix   string
	maxCount int
}

// NewManager creates a backup manager for path keeping at most maxCount
// backups. maxCount below 1 means DefaultMaxCount.
func NewManager(path string, maxCount int) *Manager {
	if maxCount < 1 {
		maxCount = DefaultMaxCount
	}
	return &Manager{
		path:     path,
		prefix:   filepath.Base(path) + ".bak.",
		maxCount: maxCount,
	}
}

// Backup copies the file to <file>.bak.1 after rotating older backups.
// Returns the backup path, or "" when there is no file to back up.
func (m *Manager) Backup() (string, error) {
	info, err := os.Stat(m.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", jigerrors.WrapInternal(err, "failed to stat %s", m.path)
	}

	if err := m.rotate(); err != nil {
		return "", err
	}

	backupPath := m.backupPath(1)
	if err := copyFile(m.path, backupPath, info.Mode().Perm()); err != nil {
		return "", err
	}
	return backupPath, nil
}

// List returns the existing backups, newest first.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(filepath.Dir(m.path))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, jigerrors.WrapInternal(err, "failed to read %s", filepath.Dir(m.path))
	}

	var numbers []int
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, m.prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(name, m.prefix))
		if err != nil || n < 1 {
			continue
		}
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	paths := make([]string, len(numbers))
	for i, n := range numbers {
		paths[i] = m.backupPath(n)
	}
	return paths, nil
}

func (m *Manager) backupPath(n int) string {
	return filepath.Join(filepath.Dir(m.path), fmt.Sprintf("%s%d", m.prefix, n))
}

// rotate shifts bak.N to bak.N+1, oldest first, dropping what would exceed
// maxCount.
func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}

	for i := len(backups) - 1; i >= 0; i-- {
		path := backups[i]
		n, _ := strconv.Atoi(strings.TrimPrefix(filepath.Base(path), m.prefix))

		if n+1 > m.maxCount {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return jigerrors.WrapInternal(err, "failed to delete old backup %s", path)
			}
			continue
		}
		if err := os.Rename(path, m.backupPath(n+1)); err != nil {
			return jigerrors.WrapInternal(err, "failed to rotate backup %s", path)
		}
	}
	return nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	f, err := os.Open(src)
	if err != nil {
		return jigerrors.WrapInternal(err, "failed to open %s", src)
	}
	defer f.Close()

	if err := atomic.WriteFile(dst, f); err != nil {
		return jigerrors.WrapInternal(err, "failed to write backup %s", dst)
	}
	if err := os.Chmod(dst, perm); err != nil {
		return jigerrors.WrapInternal(err, "failed to set permissions on %s", dst)
	}
	return nil
}
