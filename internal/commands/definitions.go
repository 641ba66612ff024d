package commands

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotcommander/interstitial/internal/actions"
	"github.com/dotcommander/interstitial/internal/output"
)

// NewDefinitionsCmd lists configured interrupts in priority order.
func NewDefinitionsCmd() *cobra.Command {
	var showTable bool
	cmd := &cobra.Command{
		Use:   "definitions",
		Short: "List configured interrupts in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return cmdErr(err)
			}
			views := actions.ListDefinitions(settings.Interrupts)
			if !showTable {
				return output.PrintSuccess(views)
			}

			rows := make([][]string, 0, len(views))
			for _, v := range views {
				ack := "-"
				if v.Acknowledge {
					ack = v.UpdatePath
				}
				rows = append(rows, []string{
					strconv.Itoa(v.Priority), v.ID, v.Title, v.StyleClass,
					strings.Join(v.Choices, ", "), ack,
				})
			}
			return output.PrintTable(os.Stdout,
				[]string{"#", "ID", "Title", "Style", "Choices", "Acknowledge"},
				rows, []output.Align{output.AlignRight})
		},
	}
	cmd.Flags().BoolVar(&showTable, "table", false, "Render as a table instead of JSON")
	return cmd
}
