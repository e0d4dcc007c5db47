package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bskyarchive/pkg/archive"
	"bskyarchive/pkg/auth"
	"bskyarchive/pkg/bluesky"
	"bskyarchive/pkg/config"
	"bskyarchive/pkg/feed"
	"bskyarchive/pkg/logger"
	"bskyarchive/pkg/render"
	"bskyarchive/pkg/throttle"
	"bskyarchive/pkg/ui"
)

var (
	// Build command flags
	buildHandle  string
	buildOutput  string
	buildVersion string
	useSession   bool
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build [handle]",
	Short: "Fetch the author feed and generate the static site",
	Long: `Fetch every post of the configured Bluesky account and write the
month-grouped static site into the output directory.

The handle comes from the argument, the --handle flag, BLUESKY_HANDLE, or the
config file, in that order of preference. By default the public API is used
and no credentials are required. With --session the authenticated feed is
read instead, using the app password stored via 'bskyarchive auth login' or
BLUESKY_APP_PASSWORD.`,
	Example: `  # Build from the public API
  bskyarchive build yourname.bsky.social

  # Build into a custom directory
  bskyarchive build yourname.bsky.social --output ./public

  # Build through an authenticated session
  bskyarchive build yourname.bsky.social --session`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildHandle, "handle", "", "Bluesky handle to archive (no leading '@')")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output directory for the generated site (default: ./docs)")
	buildCmd.Flags().StringVar(&buildVersion, "build-version", "", "cache-buster appended to asset URLs (default: GITHUB_SHA or epoch)")
	buildCmd.Flags().BoolVar(&useSession, "session", false, "fetch through an authenticated session instead of the public API")
}

func runBuild(cmd *cobra.Command, args []string) error {
	flags := make(map[string]interface{})
	if len(args) > 0 {
		flags["handle"] = strings.TrimSpace(args[0])
	} else if buildHandle != "" {
		flags["handle"] = strings.TrimSpace(buildHandle)
	}
	if buildOutput != "" {
		flags["output"] = buildOutput
	}
	if buildVersion != "" {
		flags["build-version"] = buildVersion
	}
	if useSession {
		flags["session"] = true
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Configuration error", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	log := logger.GetLogger()

	ui.PrintInfo("Archiving", cfg.Bluesky.Handle)

	client := bluesky.NewClient(cfg.Fetch.RequestTimeout, log)

	source, err := buildSource(cfg, client, log)
	if err != nil {
		ui.PrintError("Failed to set up feed source", err.Error())
		os.Exit(1)
	}

	pacer := throttle.New(cfg.Fetch.PageDelay)
	fetcher := feed.NewFetcher(source, cfg.Fetch.PageSize, pacer, log)

	items, err := fetcher.FetchAll(context.Background())
	if err != nil {
		ui.PrintError("Fetch failed", err.Error())
		os.Exit(1)
	}

	posts, dropped := archive.ClassifyAll(items)
	if dropped > 0 {
		log.WithField("dropped", dropped).Warn("feed items skipped during classification")
	}

	arc := archive.Group(posts)

	renderer, err := render.NewRenderer(cfg.Output.Directory, cfg.BuildVersion(), log)
	if err != nil {
		ui.PrintError("Renderer setup failed", err.Error())
		os.Exit(1)
	}
	if err := renderer.Render(arc); err != nil {
		ui.PrintError("Render failed", err.Error())
		os.Exit(1)
	}

	logger.LogBuildSummary(cfg.Bluesky.Handle, len(posts), len(arc.Keys), cfg.Output.Directory)
	ui.PrintSuccess(fmt.Sprintf("Built %d posts into %d month folders at %s",
		len(posts), len(arc.Keys), cfg.Output.Directory))
	return nil
}

// buildSource selects the public or authenticated feed source
func buildSource(cfg *config.Config, client *bluesky.Client, log logger.Logger) (feed.Source, error) {
	if !cfg.Bluesky.UseSession {
		return feed.NewPublicSource(client, cfg.Bluesky.PublicAPI, cfg.Bluesky.Handle, log), nil
	}

	password := cfg.Bluesky.AppPassword
	if password == "" {
		manager, err := auth.NewManager()
		if err != nil {
			return nil, err
		}
		creds, err := manager.Retrieve(cfg.Bluesky.Handle)
		if err != nil {
			return nil, fmt.Errorf("no app password for %s: set BLUESKY_APP_PASSWORD or run 'bskyarchive auth login'", cfg.Bluesky.Handle)
		}
		password = creds.AppPassword
	}

	cache := auth.NewSessionCache(cfg.SessionFilePath())
	return feed.NewSessionSource(client, cfg.Bluesky.SessionAPI, cfg.Bluesky.Handle, password, cache, log), nil
}
