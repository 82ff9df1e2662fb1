package commitmsg

import (
	"context"
	"log/slog"
	"os"
	"strings"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
	"github.com/natefinch/atomic"
)

// HookName is the git hook jig installs itself as.
const HookName = "commit-msg"

// BranchReader reports the name of the currently checked out branch.
type BranchReader interface {
	CurrentBranch() (string, error)
}

// Hook runs a Validator against a commit message file.
type Hook struct {
	validator *Validator
	branches  BranchReader
	logger    *slog.Logger
}

// NewHook returns a Hook. A nil logger falls back to slog.Default().
func NewHook(v *Validator, branches BranchReader, logger *slog.Logger) *Hook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hook{validator: v, branches: branches, logger: logger}
}

// Run validates the message in path and rewrites the file when the message
// changed. On error the file is left untouched.
func (h *Hook) Run(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return jigerrors.WrapInternal(err, "failed to read commit message file %s", path)
	}

	branch, err := h.branches.CurrentBranch()
	if err != nil {
		return jigerrors.Wrap(err, jigerrors.KindBranchState, "failed to read current branch").
			WithSuggestion(SkipSuggestion)
	}

	res, err := h.validator.Validate(ctx, branch, string(raw))
	if err != nil {
		h.logger.Debug("commit message rejected", "branch", branch, "kind", jigerrors.GetKind(err).String())
		return err
	}
	if !res.Changed {
		h.logger.Debug("commit message unchanged", "branch", branch)
		return nil
	}

	h.logger.Debug("commit message rewritten", "branch", branch, "key", res.Key.String(), "rule", res.Rule)
	if err := atomic.WriteFile(path, strings.NewReader(res.Message)); err != nil {
		return jigerrors.WrapInternal(err, "failed to write commit message file %s", path)
	}
	return nil
}
