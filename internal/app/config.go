package app

import (
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/interstitial/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "interstitial"), nil
}

// EnsureConfigDir creates the config directory and a commented default
// config.yaml, unless either config.yaml or config.toml already exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err == nil {
		return nil
	}
	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0600)
	}
	return nil
}

const defaultConfig = `# interstitial configuration
# Run: interstitial --help

# Optional: override the SQLite database location.
# Can also be set via INTERSTITIAL_DB_PATH or --db-path.
# db_path: ~/.config/interstitial/interstitial.db

# Base URL of the interrupt service (the "is required" and "record" endpoints).
# backend_url: http://127.0.0.1:8081

# Named in the notice shown when a choice could not be saved.
# support_contact: techhelp@cru.org

# Browser context whose suppression marker "run" reads and writes.
# browser_context: default

# Interrupts in priority order (first wins). Omit to use the built-in set:
# sra, credit-card-security-policy, piu.
# interrupts:
#   - id: sra
#     title: Statement of Responsibility
#     body: Please review and affirm the statement of responsibility.
#     style_class: sra
#     choices: [agree, disagree]
#     acknowledge: true
#     update_path: sraupdate
`
