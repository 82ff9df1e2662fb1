package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Baarsgaard/jig/internal/db"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of jig, build date, Go version, and ticket cache information.`,
	RunE:  runVersion,
}

type versionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Cache     string `json:"cache,omitempty"`
	Schema    int64  `json:"schema_version,omitempty"`
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := versionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	cachePath := GetConfig().CachePath
	if cachePath == "" {
		cachePath = db.DefaultPath()
	}
	if _, err := os.Stat(cachePath); err == nil {
		info.Cache = cachePath
		if database, err := openCache(cachePath); err == nil {
			defer database.Close()
			if version, err := db.MigrationStatus(database.DB); err == nil {
				info.Schema = version
			}
		}
	}

	if IsJSON() {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal version info: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
		return nil
	}

	// Compact format matching --version: jig v0.1.0 (9f61316, 2026-02-02)
	fmt.Fprintf(stdout, "jig %s (%s, %s)\n", info.Version, shortCommit(), shortDate())
	fmt.Fprintf(stdout, "Go: %s\n", info.GoVersion)
	fmt.Fprintf(stdout, "Platform: %s\n", info.Platform)

	if info.Cache != "" {
		fmt.Fprintf(stdout, "Cache: %s (schema v%d)\n", info.Cache, info.Schema)
	} else {
		fmt.Fprintln(stdout, "Cache: not created yet")
	}

	return nil
}
