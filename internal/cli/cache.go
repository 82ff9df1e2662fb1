package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Baarsgaard/jig/internal/db"
	jigerrors "github.com/Baarsgaard/jig/internal/errors"
	"github.com/Baarsgaard/jig/internal/tasks"
)

var (
	pruneMaxAge = tasks.DefaultMaxAge
	pruneDryRun bool
)

func init() {
	cachePruneCmd.Flags().DurationVar(&pruneMaxAge, "max-age", tasks.DefaultMaxAge, "Drop tickets not fetched for this long")
	cachePruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "Show what would be removed without removing it")

	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local ticket cache",
	Long: `Manage the local ticket cache.

jig keeps the summaries of tickets it has seen and the branches it created in
a SQLite cache. The cache answers when Jira is unreachable and lets "jig branch"
find branches named after an older summary.`,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove stale tickets and branches that no longer exist",
	Args:  cobra.NoArgs,
	RunE:  runCachePrune,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the ticket cache",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	c, err := openCache(cfg.CachePath)
	if err != nil {
		return err
	}
	defer c.Close()

	// Outside a repository there is nothing to compare recorded branches with.
	var local []string
	if r, err := openRepo(); err == nil {
		if local, err = r.LocalBranches(); err != nil {
			return err
		}
		if local == nil {
			local = []string{}
		}
	} else {
		slog.Debug("not in a repository, keeping branch records", "err", err)
	}

	result, err := tasks.NewCachePruner(c).Prune(pruneMaxAge, local, pruneDryRun)
	if err != nil {
		return jigerrors.WrapInternal(err, "failed to prune cache")
	}

	if IsJSON() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(stdout, string(data))
		return nil
	}

	verb := "Removed"
	if result.DryRun {
		verb = "Would remove"
	}
	OutputLine("%s %d ticket(s) fetched before %s", verb, result.Tickets, result.Cutoff.Format("2006-01-02"))
	if result.BranchesChecked {
		OutputLine("%s %d branch record(s)", verb, len(result.Branches))
		for _, name := range result.Branches {
			VerboseOutput("  %s\n", name)
		}
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	path := GetConfig().CachePath
	if path == "" {
		path = db.DefaultPath()
	}
	if err := db.Delete(path); err != nil {
		return jigerrors.Wrap(err, jigerrors.KindNotFound, "failed to delete cache %s", path)
	}
	OutputLine("Deleted %s", path)
	return nil
}
