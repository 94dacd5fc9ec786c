package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage operator settings",
	Long: `View and change operator-local settings such as API credentials.

Settings live in a TOML file under the teatrofeed home directory,
separate from the run configuration: keys and tokens belong to the
operator, not to a deployment.

Known keys:
  gcal.api_key    Google Calendar API key for gcal sources
  github.token    GitHub token for 'teatrofeed publish'`,
	RunE: runSettingsList,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Store a setting",
	Long: `Stores a setting and persists it immediately.

When the value is omitted it is prompted for, and secrets are read
without echo. The values 'true' and 'false' are stored as booleans
and whole numbers as integers.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	settings, err := openSettings()
	if err != nil {
		return err
	}

	keys := settings.Keys()
	if len(keys) == 0 {
		cmd.Printf("No settings stored yet (%s)\n", settings.Path())
		return nil
	}

	cmd.Printf("Settings from %s\n\n", settings.Path())
	for _, key := range keys {
		value, _ := settings.Get(key)
		cmd.Printf("  %s = %s\n", key, displayValue(key, value))
	}
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	settings, err := openSettings()
	if err != nil {
		return err
	}

	value, ok := settings.Get(args[0])
	if !ok {
		return fmt.Errorf("setting %q is not set", args[0])
	}

	cmd.Println(displayValue(args[0], value))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	settings, err := openSettings()
	if err != nil {
		return err
	}

	key := args[0]
	var raw string
	if len(args) == 2 {
		raw = args[1]
	} else {
		cmd.Printf("Enter value for %s: ", key)
		if isSecretKey(key) {
			raw = readPassword()
			cmd.Println()
		} else {
			raw = readLine(bufio.NewReader(os.Stdin))
		}
		if raw == "" {
			return errors.New("no value entered")
		}
	}

	value := coerceValue(raw)
	if err := settings.Set(key, value); err != nil {
		return fmt.Errorf("saving setting: %w", err)
	}

	cmd.Printf("Set %s = %s\n", key, displayValue(key, value))
	return nil
}

// coerceValue keeps booleans and whole numbers typed so GetBool and
// numeric reads survive the round trip through the TOML file.
func coerceValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

// displayValue renders a stored value, masking secrets.
func displayValue(key string, value any) string {
	s := fmt.Sprintf("%v", value)
	if isSecretKey(key) {
		return maskAPIKey(s)
	}
	return s
}

// isSecretKey reports whether a key holds a credential that must not
// be echoed in full.
func isSecretKey(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "key") || strings.Contains(k, "token") ||
		strings.Contains(k, "secret") || strings.Contains(k, "password")
}

// Helper functions.

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func readPassword() string {
	// Try to read the password without echo.
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fall back to regular input.
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
