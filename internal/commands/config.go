package commands

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/interstitial/internal/app"
	"github.com/dotcommander/interstitial/internal/output"
)

// NewConfigCmd groups settings inspection commands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate settings",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(newConfigSchemaCmd())
	cmd.AddCommand(newConfigValidateCmd())
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema for config.yaml / config.toml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := app.SettingsSchema()
			if err != nil {
				return cmdErr(err)
			}
			return output.PrintSuccess(json.RawMessage(raw))
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a settings file (default: the first config file found)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				found, err := firstSettingsFile()
				if err != nil {
					return cmdErr(err)
				}
				path = found
			}
			if err := app.ValidateSettingsFile(path); err != nil {
				return cmdErr(err)
			}
			type resp struct {
				Path  string `json:"path"`
				Valid bool   `json:"valid"`
			}
			return output.PrintSuccess(resp{Path: path, Valid: true})
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print effective settings after defaults and environment overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return cmdErr(err)
			}
			return output.PrintSuccess(settings)
		},
	}
}

// firstSettingsFile prefers the file settings were loaded from, then the
// first candidate that exists.
func firstSettingsFile() (string, error) {
	if _, err := app.LoadSettings(); err == nil && app.SettingsSource() != "" {
		return app.SettingsSource(), nil
	}
	candidates, err := app.SettingsCandidates()
	if err != nil {
		return "", err
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no settings file found; pass a path")
}
