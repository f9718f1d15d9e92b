// Package main is the entry point for the tgaibot CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tgaibot/tgaibot/pkg/app"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tgaibot",
		Short:         "A self-hosted Telegram AI assistant backed by OpenRouter",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	root.PersistentFlags().String("log-level", "", "Override log level (debug, info, warn, error)")

	root.AddCommand(versionCmd(), startCmd(), cleanCmd(), configCmd(), serviceCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("tgaibot %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the bot and serve until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(runParams(cmd))
		},
	}
}

// runParams assembles app.RunParams from the persistent flags.
func runParams(cmd *cobra.Command) app.RunParams {
	cfgPath, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")
	return app.RunParams{
		ConfigPath: cfgPath,
		Version:    version,
		LogLevel:   logLevel,
	}
}
