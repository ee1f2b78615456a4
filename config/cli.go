package config

import (
	"os"
	"path/filepath"
	"strings"
)

// CLIConfig configures the admin CLI's local session slot.
type CLIConfig struct {
	// StateFile holds the CLI's session record between invocations.
	StateFile string `env:"CLI_STATE_FILE" envDefault:""`
}

// Sanitize fills in the default state file under the user's home directory.
func (c *CLIConfig) Sanitize() {
	if c.StateFile = strings.TrimSpace(c.StateFile); c.StateFile == "" {
		c.StateFile = DefaultStateFile()
	}
}

// DefaultStateFile returns $HOME/.kjconnect/state.json, or a relative
// fallback when the home directory is unknown.
func DefaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".kjconnect", "state.json")
	}
	return filepath.Join(home, ".kjconnect", "state.json")
}
