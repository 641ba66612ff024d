package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/interstitial/internal/actions"
	"github.com/dotcommander/interstitial/internal/models"
	"github.com/dotcommander/interstitial/internal/output"
)

// NewMarkerCmd creates the marker command group.
func NewMarkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marker",
		Short: "Inspect and manage the daily suppression marker",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(newMarkerStatusCmd())
	cmd.AddCommand(newMarkerSetCmd())
	cmd.AddCommand(newMarkerClearCmd())
	cmd.AddCommand(newMarkerGCCmd())
	return cmd
}

func newMarkerStatusCmd() *cobra.Command {
	var (
		all       bool
		showTable bool
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the pipeline is suppressed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return cmdErr(err)
			}
			return withDB(func(db *DB) error {
				ctx := contextOrBackground(cmd)
				now := time.Now()
				if !all {
					st, err := actions.MarkerStatus(ctx, db, settings.BrowserContext, now)
					if err != nil {
						return err
					}
					if showTable {
						return printMarkerTable([]*models.MarkerStatus{st})
					}
					return output.PrintSuccess(st)
				}
				list, err := actions.ListMarkerStatuses(ctx, db, now)
				if err != nil {
					return err
				}
				if showTable {
					return printMarkerTable(list)
				}
				return output.PrintSuccess(list)
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "List markers for every browser context")
	cmd.Flags().BoolVar(&showTable, "table", false, "Render as a table instead of JSON")
	return cmd
}

func printMarkerTable(list []*models.MarkerStatus) error {
	rows := make([][]string, 0, len(list))
	for _, st := range list {
		expires := "-"
		if st.ExpiresAt != nil {
			expires = st.ExpiresAt.Local().Format(time.RFC3339)
		}
		suppressed := "no"
		if st.Suppressed {
			suppressed = "yes"
		}
		rows = append(rows, []string{st.ContextKey, suppressed, expires, st.Remaining})
	}
	return output.PrintTable(os.Stdout, []string{"Context", "Suppressed", "Expires", "Remaining"}, rows, nil)
}

func newMarkerSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Suppress the pipeline for the next 24 hours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return cmdErr(err)
			}
			return withDB(func(db *DB) error {
				st, err := actions.SetMarker(contextOrBackground(cmd), db, settings.BrowserContext, time.Now())
				if err != nil {
					return err
				}
				return output.PrintSuccess(st)
			})
		},
	}
}

func newMarkerClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the marker so the next run evaluates prompts again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return cmdErr(err)
			}
			return withDB(func(db *DB) error {
				res, err := actions.ClearMarker(contextOrBackground(cmd), db, settings.BrowserContext)
				if err != nil {
					return err
				}
				return output.PrintSuccess(res)
			})
		},
	}
}

func newMarkerGCCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Delete expired markers for every browser context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *DB) error {
				res, err := actions.PruneMarkers(contextOrBackground(cmd), db, time.Now())
				if err != nil {
					return err
				}
				return output.PrintSuccess(res)
			})
		},
	}
}
