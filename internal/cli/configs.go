package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Baarsgaard/jig/internal/config"
	"github.com/Baarsgaard/jig/internal/db"
	jigerrors "github.com/Baarsgaard/jig/internal/errors"
)

var configsSample bool

func init() {
	configsCmd.Flags().BoolVar(&configsSample, "sample", false, "Print a commented sample config")
	rootCmd.AddCommand(configsCmd)
}

var configsCmd = &cobra.Command{
	Use:   "configs",
	Short: "Show where jig reads its config from",
	Long: `Show the config files jig reads, lowest priority first, and whether
each exists. Environment variables override both files.`,
	Args: cobra.NoArgs,
	RunE: runConfigs,
}

type configsResult struct {
	Files []config.Location `json:"files"`
	Cache string            `json:"cache"`
	Env   []string          `json:"env"`
}

func runConfigs(cmd *cobra.Command, args []string) error {
	if configsSample {
		fmt.Fprint(stdout, config.SampleConfig())
		return nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return jigerrors.WrapInternal(err, "failed to determine working directory")
	}

	cachePath := GetConfig().CachePath
	if cachePath == "" {
		cachePath = db.DefaultPath()
	}
	result := configsResult{
		Files: config.Locations(wd),
		Cache: cachePath,
		Env:   config.EnvVars(),
	}

	if IsJSON() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(stdout, string(data))
		return nil
	}

	for _, loc := range result.Files {
		status := "missing"
		if loc.Exists {
			status = "found"
		}
		OutputLine("%-10s %s (%s)", loc.Name+":", loc.Path, status)
	}
	OutputLine("%-10s %s", "cache:", result.Cache)
	VerboseOutput("env:       %v\n", result.Env)
	return nil
}
