package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tgaibot/tgaibot/internal/cleanup"
	"github.com/tgaibot/tgaibot/internal/config"
)

func cleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove downloaded files, the cache directory, and log files",
		Long: `Remove the bot's disposable working-directory artifacts:

  downloads  regular files inside the downloads directory (subdirectories kept)
  cache      the cache directory, recursively
  logs       *.log files in the current directory

Each category is purged independently; running clean twice is harmless.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cleaner := cleanerFromConfig(cmd)

			fmt.Println("=== tgaibot cleanup ===")
			err := cleaner.Run(os.Stdout)

			if pause, _ := cmd.Flags().GetBool("pause"); pause {
				fmt.Print("Press Enter to continue...")
				_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
			}
			return err
		},
	}
	cmd.Flags().Bool("pause", false, "Wait for Enter before exiting")
	return cmd
}

// cleanerFromConfig builds a Cleaner from the configuration when one is
// available, falling back to the default layout. clean works without a
// config file on purpose.
func cleanerFromConfig(cmd *cobra.Command) *cleanup.Cleaner {
	cleaner := cleanup.New()

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.FindPath()
	}
	if path == "" {
		return cleaner
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; using default directories\n", err)
		return cleaner
	}

	cleaner.DownloadsDir = cfg.Downloads.Dir
	cleaner.CacheDir = cfg.Cleanup.CacheDir
	cleaner.LogSuffix = cfg.Cleanup.LogSuffix
	return cleaner
}
