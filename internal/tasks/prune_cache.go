// Package tasks provides maintenance task runners for jig.
package tasks

import (
	"fmt"
	"time"

	"github.com/Baarsgaard/jig/internal/db"
)

// DefaultMaxAge is how long a cached ticket is kept after it was last fetched.
const DefaultMaxAge = 30 * 24 * time.Hour

// PruneResult represents the result of running the prune task.
type PruneResult struct {
	Cutoff          time.Time `json:"cutoff"`
	Tickets         int64     `json:"tickets"`
	Branches        []string  `json:"branches,omitempty"`
	BranchesChecked bool      `json:"branches_checked"`
	DryRun          bool      `json:"dry_run"`
}

// CachePruner removes stale entries from the ticket cache.
type CachePruner struct {
	tickets  *db.TicketRepo
	branches *db.BranchRepo
	now      func() time.Time
}

// NewCachePruner creates a new CachePruner.
func NewCachePruner(cache *db.DB) *CachePruner {
	return &CachePruner{
		tickets:  cache.Tickets(),
		branches: cache.Branches(),
		now:      time.Now,
	}
}

// Prune removes tickets fetched more than maxAge ago and branch records whose
// branch is not in localBranches. A nil localBranches leaves branch records
// alone, which is what callers outside a repository want.
// If dryRun is true, it reports what would be removed without making changes.
func (p *CachePruner) Prune(maxAge time.Duration, localBranches []string, dryRun bool) (*PruneResult, error) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	result := &PruneResult{
		Cutoff:          p.now().Add(-maxAge),
		BranchesChecked: localBranches != nil,
		DryRun:          dryRun,
	}

	var err error
	if dryRun {
		result.Tickets, err = p.tickets.CountBefore(result.Cutoff)
	} else {
		result.Tickets, err = p.tickets.Prune(result.Cutoff)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to prune tickets: %w", err)
	}

	if localBranches == nil {
		return result, nil
	}

	exists := make(map[string]bool, len(localBranches))
	for _, name := range localBranches {
		exists[name] = true
	}
	recorded, err := p.branches.All()
	if err != nil {
		return nil, fmt.Errorf("failed to list recorded branches: %w", err)
	}
	for _, b := range recorded {
		if !exists[b.Name] {
			result.Branches = append(result.Branches, b.Name)
		}
	}

	if dryRun || len(result.Branches) == 0 {
		return result, nil
	}
	if _, err := p.branches.Forget(result.Branches...); err != nil {
		return nil, fmt.Errorf("failed to forget branches: %w", err)
	}
	return result, nil
}
