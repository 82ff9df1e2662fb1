package repo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/config"
	"github.com/natefinch/atomic"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
)

// ErrHookExists is returned by InstallHook when a different file already
// occupies the hook path and overwrite was not requested.
var ErrHookExists = errors.New("hook already exists")

// HooksPath returns the directory git runs hooks from: core.hooksPath from the
// repository or global config, otherwise <gitdir>/hooks. A relative
// core.hooksPath is resolved against the working tree root.
func (r *Repository) HooksPath() (string, error) {
	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return "", jigerrors.WrapInternal(err, "failed to read git config")
	}

	p := strings.TrimSpace(cfg.Raw.Section("core").Option("hooksPath"))
	if p == "" {
		return filepath.Join(r.gitDir(), "hooks"), nil
	}
	return resolvePath(p, r.root)
}

func resolvePath(p, base string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", jigerrors.WrapInternal(err, "failed to expand %s", p)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	return filepath.Clean(p), nil
}

// InstallHook links name in the hooks directory to target and returns the
// hook's path. An existing link to target is left alone. Any other existing
// file is replaced only when overwrite is set, otherwise ErrHookExists is
// returned. The link is swapped in atomically.
func (r *Repository) InstallHook(name, target string, overwrite bool) (string, error) {
	dir, err := r.HooksPath()
	if err != nil {
		return "", err
	}
	return installLink(dir, name, target, overwrite)
}

func installLink(dir, name, target string, overwrite bool) (string, error) {
	hookPath := filepath.Join(dir, name)

	if current, err := os.Readlink(hookPath); err == nil && current == target {
		return hookPath, nil
	}
	if _, err := os.Lstat(hookPath); err == nil && !overwrite {
		return hookPath, jigerrors.Wrap(ErrHookExists, jigerrors.KindInvalidArgs, "%s already exists", hookPath).
			WithSuggestion("Replace it with: jig hook --force")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", jigerrors.WrapInternal(err, "failed to create hooks directory %s", dir)
	}

	tmp := hookPath + ".jig-tmp"
	_ = os.Remove(tmp)
	if err := os.Symlink(target, tmp); err != nil {
		return "", jigerrors.WrapInternal(err, "failed to link %s", hookPath).
			WithDetails("target", target)
	}
	if err := atomic.ReplaceFile(tmp, hookPath); err != nil {
		_ = os.Remove(tmp)
		return "", jigerrors.WrapInternal(err, "failed to install %s", hookPath)
	}
	return hookPath, nil
}
