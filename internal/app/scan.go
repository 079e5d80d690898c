package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/driftscan/internal/config"
	"github.com/blackwell-systems/driftscan/internal/discover"
	"github.com/blackwell-systems/driftscan/internal/gitx"
	"github.com/blackwell-systems/driftscan/internal/output"
	"github.com/blackwell-systems/driftscan/internal/scan"
)

var (
	scanFlagDepth    int
	scanFlagNoFetch  bool
	scanFlagBranches bool
)

func init() {
	rootCmd.Flags().IntVar(&scanFlagDepth, "depth", config.DefaultDepth, "Maximum search depth below the root (0 checks only the root)")
	rootCmd.Flags().BoolVar(&scanFlagNoFetch, "no-fetch", false, "Skip fetching remotes, evaluate local remote-tracking refs as-is")
	rootCmd.Flags().BoolVar(&scanFlagBranches, "branches", false, "List the names of branches lacking an upstream")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Root: positional argument, then config, then the current directory.
	root := cfg.Root
	if len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		root, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
	}

	// Depth: flag when given, config otherwise.
	depth := cfg.Depth
	if cmd.Flags().Changed("depth") {
		depth = scanFlagDepth
	}
	if depth < 0 {
		return fmt.Errorf("depth must be non-negative, got %d", depth)
	}

	repos, err := discover.Repos(root, discover.Options{
		MaxDepth: depth,
		SkipDirs: cfg.SkipDirs,
	})
	if err != nil {
		return err
	}

	if !cfg.Output.Color {
		output.SetNoColor(true)
	}
	renderer := output.NewRenderer(os.Stdout)

	if len(repos) == 0 {
		// Nothing found is a clean completion, not an error.
		renderer.WriteNoRepos(root, depth)
		return nil
	}

	if flagVerbose {
		fmt.Printf("scanning %d repositories under %s\n\n", len(repos), root)
	}

	scanner := scan.New(
		scan.Options{
			Fetch:          !scanFlagNoFetch,
			ListNoUpstream: scanFlagBranches,
		},
		func(dir string) gitx.Runner {
			return gitx.New(dir, gitx.Options{
				FetchTimeout:   cfg.FetchTimeout,
				CommandTimeout: cfg.CommandTimeout,
			})
		},
	)

	sum := scanner.Run(cmd.Context(), repos, renderer.WriteReport)
	renderer.WriteSummary(sum)
	return nil
}
