package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dotcommander/interstitial/internal/actions"
	"github.com/dotcommander/interstitial/internal/app"
	"github.com/dotcommander/interstitial/internal/backend"
)

// NewServeCmd runs the reference interrupt service.
func NewServeCmd() *cobra.Command {
	var (
		listen   string
		required []string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local interrupt service backed by the SQLite database",
		Long: `Serves the required and record endpoints the pipeline talks to, plus
cookie marker endpoints at /interrupt/marker. A type stays required for a
browser context until an "agree" status is recorded for it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return cmdErr(err)
			}
			if listen == "" {
				listen = settings.ListenAddr
			}
			if len(required) == 0 {
				required = interruptIDs(settings.Interrupts)
			}

			ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withDB(func(db *DB) error {
				srv := backend.New(db, backend.Config{
					Required:    required,
					UpdatePaths: actions.UpdatePaths(settings.Interrupts),
				})
				return srv.Serve(ctx, listen)
			})
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default: listen_addr setting)")
	cmd.Flags().StringSliceVar(&required, "require", nil, "Interrupt types the service tracks (default: every configured interrupt)")
	return cmd
}

func interruptIDs(interrupts []app.InterruptSettings) []string {
	ids := make([]string, len(interrupts))
	for i, in := range interrupts {
		ids[i] = in.ID
	}
	return ids
}
