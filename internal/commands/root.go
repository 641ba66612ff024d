package commands

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dotcommander/interstitial/internal/app"
	"github.com/dotcommander/interstitial/internal/output"
)

// Execute runs the CLI application.
func Execute(version string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	root := newRootCmd(version)

	err := root.Execute()
	if err != nil {
		var pe printedError
		if !errors.As(err, &pe) {
			slog.Error("command failed", "error", err.Error())
		}
	}
	return err
}

func newRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "interstitial",
		Short:         "Show mandatory interrupt prompts at most once per day",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				return printVersion(version)
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureConfigDir(); err != nil {
				return err
			}
			if _, err := app.LoadEnv(); err != nil {
				return err
			}

			// Wire --db-path into app-level resolver.
			if dbPath, err := cmd.Flags().GetString("db-path"); err == nil && dbPath != "" {
				app.SetDBPathOverride(dbPath)
			}

			return nil
		},
	}

	root.SetGlobalNormalizationFunc(dashedFlagNames)
	root.PersistentFlags().String("db-path", "", "Override database path")
	root.PersistentFlags().String("context", "", "Browser context key (default: $INTERSTITIAL_CONTEXT or browser_context setting)")
	root.Flags().BoolP("version", "v", false, "version for interstitial")

	root.AddCommand(NewRunCmd())
	root.AddCommand(NewMarkerCmd())
	root.AddCommand(NewDefinitionsCmd())
	root.AddCommand(NewServeCmd())
	root.AddCommand(NewConfigCmd())
	root.AddCommand(NewStatusCmd())
	root.AddCommand(newVersionCmd(version))

	return root
}

// dashedFlagNames accepts setting-style spellings such as --db_path.
func dashedFlagNames(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func printVersion(version string) error {
	type resp struct {
		Version string `json:"version"`
	}
	return output.PrintSuccess(resp{Version: version})
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(version)
		},
	}
}
