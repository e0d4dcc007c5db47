package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"bskyarchive/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bskyarchive",
	Short: "Archive a Bluesky author feed into static monthly HTML pages",
	Long: `bskyarchive fetches every post of a Bluesky account and writes a static
site grouped by calendar month, ready for GitHub Pages or Vercel.

Features:
  - Public API by default, no credentials needed
  - Optional authenticated fetching with a cached session
  - App password storage in the system keychain
  - One folder per month with a client-side sort toggle
  - style.css refreshed every build, user.css left to the site owner

Point BLUESKY_HANDLE at the account (no leading "@") and run 'bskyarchive build'.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet || logLevel == "error" {
			ui.SetQuiet(true)
		}
	},
}

// Execute runs the root command and exits non-zero on error
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default search: ./.bskyarchive.yaml, ~/.config/bskyarchive/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.SetVersionTemplate(`bskyarchive {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
