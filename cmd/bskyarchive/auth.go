package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bskyarchive/pkg/auth"
	"bskyarchive/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored Bluesky app password",
	Long: `Manage the app password used for authenticated feed fetching.

The password is stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (BLUESKY_HANDLE / BLUESKY_APP_PASSWORD)

Use an app password from Settings > Privacy and security > App passwords,
never your account password.`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [handle]",
	Short: "Store an app password securely",
	Long: `Store a Bluesky app password in the system keychain or encrypted file.

You will be prompted for the handle (if not provided) and the app password.
Create one at Settings > Privacy and security > App passwords in the Bluesky
app; it looks like xxxx-xxxx-xxxx-xxxx.`,
	Example: `  # Interactive login
  bskyarchive auth login

  # Login with handle
  bskyarchive auth login yourname.bsky.social`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout <handle>",
	Short: "Remove the stored app password",
	Args:  cobra.ExactArgs(1),
	Run:   runLogout,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status <handle>",
	Short: "Show whether an app password is stored for a handle",
	Args:  cobra.ExactArgs(1),
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var handle string
	if len(args) > 0 {
		handle = strings.TrimSpace(args[0])
	} else {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Handle (e.g. yourname.bsky.social): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read handle", err.Error())
			os.Exit(1)
		}
		handle = strings.TrimSpace(line)
	}

	handle = strings.TrimPrefix(handle, "@")
	if handle == "" {
		ui.PrintError("A handle is required")
		os.Exit(1)
	}

	fmt.Print("App password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		ui.PrintError("Failed to read password", err.Error())
		os.Exit(1)
	}

	password := strings.TrimSpace(string(passwordBytes))
	if password == "" {
		ui.PrintError("An app password is required")
		os.Exit(1)
	}

	creds := &auth.Credentials{
		Handle:       handle,
		AppPassword:  password,
		LastModified: time.Now().UTC(),
	}
	if err := manager.Store(creds); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("App password stored for %s", handle))
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	handle := strings.TrimPrefix(strings.TrimSpace(args[0]), "@")
	if err := manager.Delete(handle); err != nil {
		ui.PrintError("Failed to remove credentials", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Removed stored app password for %s", handle))
}

func runStatus(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	handle := strings.TrimPrefix(strings.TrimSpace(args[0]), "@")
	if manager.Exists(handle) {
		ui.PrintInfo("Status", fmt.Sprintf("app password stored for %s", handle))
	} else {
		ui.PrintWarning("No stored app password", handle)
	}
}
