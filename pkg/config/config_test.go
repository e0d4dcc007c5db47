package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	// Test default values
	if config.Fetch.PageSize != 100 {
		t.Errorf("Expected default page size to be 100, got %d", config.Fetch.PageSize)
	}

	if config.Fetch.PageDelay != 200*time.Millisecond {
		t.Errorf("Expected default page delay to be 200ms, got %s", config.Fetch.PageDelay)
	}

	if config.Output.Directory != "./docs" {
		t.Errorf("Expected default output directory to be ./docs, got %s", config.Output.Directory)
	}

	if config.Bluesky.PublicAPI != "https://public.api.bsky.app/xrpc" {
		t.Errorf("Expected default public API base, got %s", config.Bluesky.PublicAPI)
	}

	if config.Bluesky.UseSession {
		t.Error("Expected session mode to be off by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	// Set test environment variables
	os.Setenv("BLUESKY_HANDLE", "someone.bsky.social")
	os.Setenv("BLUESKY_APP_PASSWORD", "abcd-efgh-ijkl-mnop")
	os.Setenv("GITHUB_SHA", "deadbeef")
	os.Setenv("BSKYARCHIVE_OUTPUT_DIR", "/tmp/test-archive")
	os.Setenv("BSKYARCHIVE_PAGE_SIZE", "50")
	os.Setenv("BSKYARCHIVE_LOG_LEVEL", "debug")

	defer func() {
		// Clean up environment variables
		os.Unsetenv("BLUESKY_HANDLE")
		os.Unsetenv("BLUESKY_APP_PASSWORD")
		os.Unsetenv("GITHUB_SHA")
		os.Unsetenv("BSKYARCHIVE_OUTPUT_DIR")
		os.Unsetenv("BSKYARCHIVE_PAGE_SIZE")
		os.Unsetenv("BSKYARCHIVE_LOG_LEVEL")
	}()

	config := DefaultConfig()
	err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	// Test loaded values
	if config.Bluesky.Handle != "someone.bsky.social" {
		t.Errorf("Expected handle to be someone.bsky.social, got %s", config.Bluesky.Handle)
	}

	if config.Bluesky.AppPassword != "abcd-efgh-ijkl-mnop" {
		t.Errorf("Expected app password to be loaded, got %s", config.Bluesky.AppPassword)
	}

	if config.Output.BuildVersion != "deadbeef" {
		t.Errorf("Expected build version to be deadbeef, got %s", config.Output.BuildVersion)
	}

	if config.Output.Directory != "/tmp/test-archive" {
		t.Errorf("Expected output directory to be /tmp/test-archive, got %s", config.Output.Directory)
	}

	if config.Fetch.PageSize != 50 {
		t.Errorf("Expected page size to be 50, got %d", config.Fetch.PageSize)
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
bluesky:
  handle: archived.bsky.social
  use_session: true
fetch:
  page_size: 25
output:
  directory: ./site
logging:
  level: warn
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if config.Bluesky.Handle != "archived.bsky.social" {
		t.Errorf("Expected handle archived.bsky.social, got %s", config.Bluesky.Handle)
	}
	if !config.Bluesky.UseSession {
		t.Error("Expected session mode to be enabled")
	}
	if config.Fetch.PageSize != 25 {
		t.Errorf("Expected page size 25, got %d", config.Fetch.PageSize)
	}
	if config.Output.Directory != "./site" {
		t.Errorf("Expected output directory ./site, got %s", config.Output.Directory)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("Expected log level warn, got %s", config.Logging.Level)
	}
}

func TestLoadFromFileSearchesDotfile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
	defer os.Chdir(wd)

	content := "bluesky:\n  handle: dotfile.bsky.social\n"
	if err := os.WriteFile(filepath.Join(dir, ".bskyarchive.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(""); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if config.Bluesky.Handle != "dotfile.bsky.social" {
		t.Errorf("Expected handle dotfile.bsky.social, got %s", config.Bluesky.Handle)
	}
}

func TestValidate(t *testing.T) {
	config := DefaultConfig()
	config.Bluesky.Handle = "someone.bsky.social"

	if err := config.Validate(); err != nil {
		t.Errorf("Expected valid config, got error: %v", err)
	}
}

func TestValidateMissingHandle(t *testing.T) {
	config := DefaultConfig()

	err := config.Validate()
	if err == nil {
		t.Fatal("Expected validation error for missing handle")
	}
	if !strings.Contains(err.Error(), "handle is required") {
		t.Errorf("Expected handle error, got: %v", err)
	}
}

func TestValidateLeadingAt(t *testing.T) {
	config := DefaultConfig()
	config.Bluesky.Handle = "@someone.bsky.social"

	err := config.Validate()
	if err == nil {
		t.Fatal("Expected validation error for leading '@'")
	}
}

func TestValidatePageSize(t *testing.T) {
	tests := []struct {
		name     string
		pageSize int
		wantErr  bool
	}{
		{"valid minimum", 1, false},
		{"valid maximum", 100, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"over limit", 101, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.Bluesky.Handle = "someone.bsky.social"
			config.Fetch.PageSize = tt.pageSize

			err := config.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("Expected error for page size %d", tt.pageSize)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error for page size %d: %v", tt.pageSize, err)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"handle":  "flagged.bsky.social",
		"session": true,
		"output":  "/tmp/out",
	}
	config.MergeCommandLineFlags(flags)

	if config.Bluesky.Handle != "flagged.bsky.social" {
		t.Errorf("Expected flag handle to win, got %s", config.Bluesky.Handle)
	}
	if !config.Bluesky.UseSession {
		t.Error("Expected session flag to enable session mode")
	}
	if config.Output.Directory != "/tmp/out" {
		t.Errorf("Expected output /tmp/out, got %s", config.Output.Directory)
	}
}

func TestSessionFilePath(t *testing.T) {
	config := DefaultConfig()
	config.Bluesky.SessionFile = "/tmp/session.json"

	if got := config.SessionFilePath(); got != "/tmp/session.json" {
		t.Errorf("Expected explicit session file path, got %s", got)
	}

	config.Bluesky.SessionFile = ""
	if got := config.SessionFilePath(); !strings.HasSuffix(got, filepath.Join("bskyarchive", "session.json")) {
		t.Errorf("Expected default session file under config dir, got %s", got)
	}
}

func TestBuildVersionFallback(t *testing.T) {
	config := DefaultConfig()

	// No configured version: falls back to epoch seconds, never empty.
	if config.BuildVersion() == "" {
		t.Error("Expected non-empty build version fallback")
	}

	config.Output.BuildVersion = "abc123"
	if config.BuildVersion() != "abc123" {
		t.Errorf("Expected configured build version, got %s", config.BuildVersion())
	}
}
