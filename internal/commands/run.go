package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/interstitial/internal/actions"
	"github.com/dotcommander/interstitial/internal/interrupt"
	"github.com/dotcommander/interstitial/internal/output"
	"github.com/dotcommander/interstitial/internal/presenter"
	"github.com/dotcommander/interstitial/internal/remote"
)

// NewRunCmd creates the run command: one pipeline run, as on a page load.
func NewRunCmd() *cobra.Command {
	var (
		backendURL string
		forceTTY   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the interrupt pipeline once for this browser context",
		Long: `Checks the suppression marker, asks the interrupt service which prompts
are required, and shows at most one of them. Prompts are drawn on stderr;
the run report is printed as JSON on stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return cmdErr(err)
			}
			if backendURL != "" {
				settings.BackendURL = backendURL
			}

			ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client := remote.New(remote.Config{
				BaseURL:        settings.BackendURL,
				BrowserContext: settings.BrowserContext,
				Timeout:        time.Duration(settings.HTTPTimeoutSeconds) * time.Second,
				UpdatePaths:    actions.UpdatePaths(settings.Interrupts),
			})
			term := presenter.NewTerminal(os.Stdin, os.Stderr, presenter.WithForce(forceTTY))

			return withDB(func(db *DB) error {
				report, err := actions.RunPipeline(ctx, db, actions.PipelineOptions{
					BrowserContext: settings.BrowserContext,
					SupportContact: settings.SupportContact,
					Interrupts:     settings.Interrupts,
					Transport:      client,
					Presenter:      term,
					Notifier:       interrupt.WriterNotifier{W: os.Stderr},
				})
				if err != nil {
					return err
				}
				return output.PrintSuccess(report)
			})
		},
	}

	cmd.Flags().StringVar(&backendURL, "backend-url", "", "Interrupt service base URL (default: backend_url setting)")
	cmd.Flags().BoolVar(&forceTTY, "force-tty", false, "Draw prompts even when stdin is not a terminal")

	return cmd
}

func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
